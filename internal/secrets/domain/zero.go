package domain

// Zero overwrites key material in place. Callers zero every buffer that held a
// raw key once it has been handed to the cipher.
func Zero(b []byte) {
	clear(b)
}
