package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const loginCodeLength = 6

func NewRefreshToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32 // 256 бит по умолчанию
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateLoginCode — 6-значный код для входа по почте.
// Только crypto/rand: код должен быть непредсказуем снаружи.
func GenerateLoginCode() (string, error) {
	const digits = "0123456789"
	b := make([]byte, loginCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("generate login code: %w", err)
		}
		b[i] = digits[n.Int64()]
	}
	return string(b), nil
}
