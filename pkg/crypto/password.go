package crypto

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash at the default cost. Passwords are
// hashed once at registration; the plaintext is never stored.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// ComparePassword checks plain against hash, returning bcrypt's
// mismatch error when they differ.
func ComparePassword(hash []byte, plain string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain))
}
