package alloy

import "reflect"

// ComponentKey identifies a requestable component: an interface type or a
// concrete type. Keys are compared by type identity, never by name.
type ComponentKey = reflect.Type

// Key returns the ComponentKey for T. For interface types use the pointer
// trick implicitly handled here:
//
//	alloy.Key[Mailer]()   // interface key
//	alloy.Key[*Config]()  // concrete key
func Key[T any]() ComponentKey {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// KeyOf returns the ComponentKey for a live value. Interfaces cannot be
// recovered from a value; prefer Key[T] where the static type is known.
func KeyOf(v any) ComponentKey {
	return reflect.TypeOf(v)
}

// keyName returns a stable human-readable name for a key, used in errors
// and log fields.
func keyName(k ComponentKey) string {
	if k == nil {
		return "<nil>"
	}
	return k.String()
}
