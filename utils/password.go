package utils

import "golang.org/x/crypto/bcrypt"

// Local account password bounds. bcrypt refuses inputs longer than 72 bytes.
const (
	MinPasswordLen = 6
	MaxPasswordLen = 72
)

// PasswordCost is the bcrypt work factor for new hashes. Tests lower it.
var PasswordCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password for storage on the user row.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	return string(hash), err
}

// CheckPassword reports whether plain matches the stored hash. Accounts
// without a hash never match.
func CheckPassword(hash, plain string) bool {
	return hash != "" && bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
