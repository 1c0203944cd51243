package warehouse

import "encoding/json"

// Nullable is a PATCH body field that can tell an explicit JSON null apart
// from an omitted key: Set reports whether the key was present at all, and
// Value is nil when it was null. A plain pointer cannot make that distinction,
// which matters for nullable columns that the client must be able to clear.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}
