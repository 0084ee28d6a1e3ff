package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateLoginCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := GenerateLoginCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			require.True(t, ch >= '0' && ch <= '9', "код состоит только из цифр: %q", code)
		}
		seen[code] = true
	}
	// 200 кодов из миллиона вариантов: совпадения возможны, но не все подряд
	require.Greater(t, len(seen), 150)
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(32)
	require.NoError(t, err)
	require.Len(t, a, 64) // hex

	b, err := NewRefreshToken(0) // дефолт 32 байта
	require.NoError(t, err)
	require.Len(t, b, 64)
	require.NotEqual(t, a, b)
}
