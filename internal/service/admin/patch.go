package admin

import (
	"bytes"
	"encoding/json"
)

// PatchField is an optional update value. Set is true only when the field was
// present in the request with a non-null value.
type PatchField[T any] struct {
	Value T
	Set   bool
}

func (f *PatchField[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(b, &f.Value); err != nil {
		return err
	}
	f.Set = true
	return nil
}

func Set[T any](v T) PatchField[T] {
	return PatchField[T]{Value: v, Set: true}
}

// ProfilePatch names every admin profile field that can be updated.
type ProfilePatch struct {
	Name  PatchField[string] `json:"name"`
	Email PatchField[string] `json:"email"`
}

func (p ProfilePatch) Empty() bool {
	return !p.Name.Set && !p.Email.Set
}

// Fields returns the stored document fields the patch changes.
func (p ProfilePatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Name.Set {
		fields["name"] = p.Name.Value
	}
	if p.Email.Set {
		fields["email"] = p.Email.Value
	}
	return fields
}
