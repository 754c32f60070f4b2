package patch

// Coalesce returns the value pointed to by ptr if it's not nil, otherwise returns fallback
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

// Field is a three-state patch value for nullable columns: left unset it
// keeps the current value, otherwise it overwrites with a value or clears
// to nil. A plain *T cannot distinguish "keep" from "clear".
type Field[T any] struct {
	set   bool
	value *T
}

func Keep[T any]() Field[T] {
	return Field[T]{}
}

func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: &v}
}

func Clear[T any]() Field[T] {
	return Field[T]{set: true}
}

func (f Field[T]) IsSet() bool {
	return f.set
}

// Apply resolves the patch against the current value.
func (f Field[T]) Apply(current *T) *T {
	if !f.set {
		return current
	}
	return f.value
}
