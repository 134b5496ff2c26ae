package utils

// Ptr returns a pointer to v.
//
// Example:
//
//	temperature := utils.Ptr(float32(0.2))
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
