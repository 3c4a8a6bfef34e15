package utilities

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// DerefZero returns the value pointed to by p, or the zero value if p is nil.
func DerefZero[T any](p *T) T {
	if p != nil {
		return *p
	}
	var zero T
	return zero
}

// Clone returns a pointer to a copy of the value pointed to by p, or nil if p is nil.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Equal reports whether both pointers are nil or point to equal values.
func Equal[T comparable](a, b *T) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}
