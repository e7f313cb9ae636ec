package accounts

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// GeneratePIN returns a random six digit PIN.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("accounts: generate pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// HashPIN hashes a plaintext PIN with bcrypt.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("accounts: hash pin: %w", err)
	}
	return string(hash), nil
}

// VerifyPIN reports whether the plaintext PIN matches the stored hash.
func VerifyPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// uniquePIN draws PINs until one collides with none of the existing hashes.
// The scan is O(issued PINs) per approval, which is fine at door-controller
// scale but a known ceiling if the principal population grows large.
func uniquePIN(existing []string) (string, error) {
	for {
		candidate, err := GeneratePIN()
		if err != nil {
			return "", err
		}
		collision := false
		for _, hash := range existing {
			if VerifyPIN(hash, candidate) {
				collision = true
				break
			}
		}
		if !collision {
			return candidate, nil
		}
	}
}
