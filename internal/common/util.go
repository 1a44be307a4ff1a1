package common

// WipeByteArray overwrites b with zeros. Used for raw provider tokens read
// from the terminal once they have been handed to the identity provider.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
