package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLen is enforced on signup, password change and reset redemption.
const MinPasswordLen = 6

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.  Legacy
// rows imported from the previous system may carry the $2y$ bcrypt prefix;
// the Go implementation treats it the same as $2a$, so no rewrite is needed.
func VerifyPassword(hash, plain string) bool {
	if len(hash) > 3 && hash[:3] == "$2y" {
		hash = "$2a" + hash[3:]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
