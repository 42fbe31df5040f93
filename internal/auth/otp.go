package auth

import "crypto/rand"

// GenerateOTP returns a numeric one-time passcode of n digits.
func GenerateOTP(n int) (string, error) {
	bytes := make([]byte, n)

	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	otp := make([]byte, n)
	for i := 0; i < n; i++ {
		otp[i] = '0' + (bytes[i] % 10)
	}

	return string(otp), nil
}
