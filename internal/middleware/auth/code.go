package auth

import "golang.org/x/crypto/bcrypt"

// HashCode creates a bcrypt hash of a confirmation code so the plaintext
// never reaches the database.
func HashCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyCode reports whether code matches the stored hash. An empty hash
// never matches.
func VerifyCode(hashedCode, code string) bool {
	if hashedCode == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(code)) == nil
}
