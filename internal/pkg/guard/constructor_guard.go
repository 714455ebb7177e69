// Package guard provides a small helper for enforcing constructor usage on
// value types. Embedding a ConstructorGuard and calling Validate lets a type
// distinguish a properly constructed instance from a zero value.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the guard belongs
// to a zero-value instance and no custom error was supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as created through its constructor.
// The zero value is an unconstructed guard.
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a constructed guard. Call this from the owning
// type's constructor.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard. For a zero-value guard it
// returns notConstructedErr, or ErrDefaultConstructorGuard when nil.
func (g ConstructorGuard) Validate(notConstructedErr error) error {
	if g.isConstructed {
		return nil
	}
	if notConstructedErr == nil {
		return ErrDefaultConstructorGuard
	}
	return notConstructedErr
}
