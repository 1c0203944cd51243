package models

import "time"

// Tenant is one isolated client organization. Its inventory data lives in a
// dedicated Postgres schema named SchemaName; the tenant row itself (and its
// domains and memberships) live in the shared public schema.
type Tenant struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"size:100;not null;unique"`
	SchemaName string    `gorm:"size:63;not null;uniqueIndex"`
	CreatedOn  time.Time `gorm:"autoCreateTime"`

	Domains     []Domain           `gorm:"constraint:OnDelete:CASCADE"`
	Memberships []TenantMembership `gorm:"constraint:OnDelete:CASCADE"`
}

// Domain is a routable hostname bound to exactly one tenant. Requests are
// routed to a tenant by matching the request host against this table.
type Domain struct {
	ID        uint   `gorm:"primaryKey"`
	Domain    string `gorm:"size:253;not null;uniqueIndex"`
	TenantID  uint   `gorm:"index;not null"`
	IsPrimary bool   `gorm:"not null;default:false"`
}

// TenantMembership grants one user access to one tenant. The pair is unique.
// IsActiveForUser marks the user's current default tenant; it is a UI hint
// and is not enforced as exclusive.
type TenantMembership struct {
	ID              uint `gorm:"primaryKey"`
	UserID          uint `gorm:"not null;uniqueIndex:idx_memberships_user_tenant"`
	User            User
	TenantID        uint `gorm:"not null;uniqueIndex:idx_memberships_user_tenant"`
	Tenant          Tenant
	IsActiveForUser bool `gorm:"not null;default:false"`
}
