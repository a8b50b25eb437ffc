package common

// WipeByteArray overwrites b with zeroes. Used for password buffers once
// they have been hashed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
