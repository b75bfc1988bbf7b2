package matching

import (
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpr(t *testing.T) {
	e, err := CompileExpr(`method == "POST" && params.id == "7" && len(body) > 0`)
	require.NoError(t, err)
	assert.Equal(t, `method == "POST" && params.id == "7" && len(body) > 0`, e.String())

	ok, err := e.Eval(map[string]interface{}{
		"method": "POST",
		"params": map[string]string{"id": "7"},
		"body":   "{}",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Eval(map[string]interface{}{
		"method": "GET",
		"params": map[string]string{"id": "7"},
		"body":   "{}",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompileExpr_Invalid(t *testing.T) {
	_, err := CompileExpr(`method ==`)
	assert.Error(t, err)

	_, err = CompileExpr(`"not a bool"`)
	assert.Error(t, err)
}

func TestMatchBearerClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"admin": true,
		"level": 3,
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+signed)

	assert.True(t, MatchBearerClaim(headers, "sub", "user-1"))
	assert.True(t, MatchBearerClaim(headers, "admin", true))
	assert.True(t, MatchBearerClaim(headers, "level", 3))
	assert.False(t, MatchBearerClaim(headers, "sub", "user-2"))
	assert.False(t, MatchBearerClaim(headers, "scope", "read"))

	assert.False(t, MatchBearerClaim(http.Header{}, "sub", "user-1"))

	bad := http.Header{}
	bad.Set("Authorization", "Bearer not-a-token")
	assert.False(t, MatchBearerClaim(bad, "sub", "user-1"))

	basic := http.Header{}
	basic.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.False(t, MatchBearerClaim(basic, "sub", "user-1"))
}
