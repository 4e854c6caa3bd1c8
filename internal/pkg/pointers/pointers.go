package pointers

import "github.com/google/uuid"

func Int(v int) *int              { return &v }
func String(v string) *string     { return &v }
func UUID(v uuid.UUID) *uuid.UUID { return &v }

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
