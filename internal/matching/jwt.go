package matching

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// MatchBearerClaim checks a claim of the bearer token in the Authorization
// header. The signature is not verified.
func MatchBearerClaim(headers http.Header, claim string, expected interface{}) bool {
	auth := headers.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return false
	}

	actual, ok := claims[claim]
	if !ok {
		return false
	}
	return valuesEqual(actual, expected)
}
