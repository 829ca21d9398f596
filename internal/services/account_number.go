package services

import (
	"crypto/rand"

	"github.com/nairabank/backend/internal/models"
)

// GenerateAccountNumber produces a 10-digit account number: nine
// cryptographically random digits followed by a Luhn check digit.
// Uniqueness is the storage layer's concern; callers regenerate and
// retry when the insert trips the unique constraint.
func GenerateAccountNumber() (string, error) {
	buf := make([]byte, models.AccountNumberLength-1)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	digits := make([]byte, 0, models.AccountNumberLength)
	for _, b := range buf {
		digits = append(digits, '0'+b%10)
	}

	check := luhnCheckDigit(digits)
	return string(append(digits, '0'+byte(check))), nil
}

// luhnCheckDigit computes the digit that makes the Luhn sum of the
// sequence a multiple of 10, doubling every second digit from the
// rightmost.
func luhnCheckDigit(digits []byte) int {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}
