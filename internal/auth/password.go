package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the user table was seeded with.
const bcryptCost = 10

// HashPassword produces a salted one-way digest of the plaintext.
// Output differs between calls; compare only through CheckPassword.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plain matches the stored digest.
// A mismatch is a plain false, never an error.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
