package patch

// Coalesce returns the value pointed to by ptr if it's not nil, otherwise returns fallback
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

// Override returns ptr when it is set, otherwise the current pointer.
func Override[T any](ptr, current *T) *T {
	if ptr != nil {
		return ptr
	}
	return current
}

// Clearable is Override with an explicit reset to nil.
func Clearable[T any](clear bool, ptr, current *T) *T {
	if clear {
		return nil
	}
	return Override(ptr, current)
}
