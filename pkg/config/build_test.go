package config

import (
	"errors"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/fakereq/pkg/fake"
)

func mustParse(t *testing.T, content string) *Fixture {
	t.Helper()
	f, err := Parse([]byte(content), "test.yaml")
	require.NoError(t, err)
	return f
}

func dispatch(t *testing.T, h *fake.Handler, method, uri, body string, header map[string]string) (*fake.Response, error) {
	t.Helper()
	var b []byte
	if body != "" {
		b = []byte(body)
	}
	req, err := fake.NewRequest(method, uri, b)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return h.Dispatch(req)
}

func TestApply_MatchesLikeBuilderAPI(t *testing.T) {
	f := mustParse(t, `
expectations:
  - method: GET
    uri: /users/{id}
    match:
      headers:
        Accept: application/json
      query:
        expand: profile
    response:
      status: 200
      headers:
        Content-Type: application/json
      template: '{"id":"{{request.params.id}}"}'
  - method: POST
    uri: https://api.example.com/orders
    match:
      jsonPath:
        $.total: 150
        $.coupon:
          exists: false
      jsonSchema:
        type: object
        required: [total]
      expr: headers["X-Tenant"] == "acme"
    response:
      status: 201
      json:
        id: order-1
`)

	h := fake.New()
	require.NoError(t, f.Apply(h))
	require.Len(t, h.Pending(), 2)

	resp, err := dispatch(t, h, "GET", "/users/7?expand=profile", "", map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"id":"7"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	_, err = dispatch(t, h, "POST", "https://api.example.com/orders", `{"total":150,"coupon":"X"}`, map[string]string{"X-Tenant": "acme"})
	require.ErrorIs(t, err, fake.ErrUnhandledRequest)

	resp, err = dispatch(t, h, "POST", "https://api.example.com/orders", `{"total":150}`, map[string]string{"X-Tenant": "acme"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.JSONEq(t, `{"id":"order-1"}`, string(resp.Body))

	assert.True(t, h.IsEmpty())
}

func TestApply_BodyMatchers(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "admin": true}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		match  string
		body   string
		header map[string]string
	}{
		{"body", "body: exact", "exact", nil},
		{"body contains", "bodyContains: needle", "hay needle hay", nil},
		{"body pattern", `bodyPattern: '^\d{3}$'`, "123", nil},
		{"xml path", "xmlPath:\n        //status: ok", "<r><status>ok</status></r>", nil},
		{"graphql", "graphqlOperation: Viewer", `{"query":"query Viewer { viewer { id } }"}`, nil},
		{"bearer claims", "bearerClaims:\n        sub: user-1\n        admin: true", "", map[string]string{"Authorization": "Bearer " + token}},
		{"json schema string", `jsonSchema: '{"type":"array"}'`, "[1,2]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustParse(t, "- method: POST\n  uri: /x\n  match:\n      "+tt.match+"\n")
			h := fake.New()
			require.NoError(t, f.Apply(h))

			_, err := dispatch(t, h, "POST", "/x", tt.body, tt.header)
			require.NoError(t, err)
			assert.True(t, h.IsEmpty())
		})
	}
}

func TestApply_OrderIsFirstFit(t *testing.T) {
	f := mustParse(t, `
- method: GET
  uri: /items/{id}
  response:
    body: first
- method: GET
  uri: /items/1
  response:
    body: second
`)
	h := fake.New()
	require.NoError(t, f.Apply(h))

	resp, err := dispatch(t, h, "GET", "/items/1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", string(resp.Body))

	resp, err = dispatch(t, h, "GET", "/items/1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", string(resp.Body))
}

func TestApply_AllowUnexpected(t *testing.T) {
	f := mustParse(t, `
allowUnexpected: true
expectations:
  - method: GET
    uri: /known
`)
	h := fake.New()
	require.NoError(t, f.Apply(h))

	resp, err := dispatch(t, h, "DELETE", "/unknown", "", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, h.Pending(), 1)
}

func TestApply_InvalidRegistersNothing(t *testing.T) {
	f := mustParse(t, `
- method: GET
  uri: /ok
- method: POST
  uri: /bad
  match:
    bodyPattern: '['
`)
	h := fake.New()
	err := f.Apply(h)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "test.yaml: expectations[1]", verr.Field)
	assert.True(t, h.IsEmpty())
}
