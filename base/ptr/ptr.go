package ptr

// String return a pointer to the input value
func String(value string) *string {
	return &value
}

// Uint64 return a pointer to the input value
func Uint64(value uint64) *uint64 {
	return &value
}

// Bool return a pointer to the input value
func Bool(value bool) *bool {
	return &value
}

// NonEmptyString returns nil for an empty string
func NonEmptyString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
