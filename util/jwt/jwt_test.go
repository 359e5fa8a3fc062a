package jwt

import (
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, token, secret string) (*jwtlib.Token, error) {
	t.Helper()
	return jwtlib.Parse(token, func(tok *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
}

func TestIssue_ClaimsRoundTrip(t *testing.T) {
	token, err := Issue("test-secret", 7, "ada@example.com", "USER", 1)
	require.NoError(t, err)

	tok, err := parse(t, token, "test-secret")
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwtlib.MapClaims)
	require.True(t, ok)
	require.Equal(t, float64(7), claims["sub"])
	require.Equal(t, "ada@example.com", claims["email"])
	require.Equal(t, "USER", claims["role"])
	require.NotEmpty(t, claims["exp"])
}

func TestIssue_WrongSecretRejected(t *testing.T) {
	token, err := Issue("test-secret", 7, "ada@example.com", "USER", 1)
	require.NoError(t, err)

	_, err = parse(t, token, "other-secret")
	require.Error(t, err)
}
