package domain

// Zero securely overwrites a byte slice with zeros to clear sensitive data from memory.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// IsZero reports whether every byte of b is zero.
func IsZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
