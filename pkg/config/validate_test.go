package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
	}{
		{
			name:      "valid",
			content:   "- method: GET\n  uri: /a\n",
			wantField: "",
		},
		{
			name:      "no expectations",
			content:   "allowUnexpected: true\n",
			wantField: "test.yaml: expectations",
		},
		{
			name:      "bad method",
			content:   "- method: FETCH\n  uri: /a\n",
			wantField: "test.yaml: expectations[0].method",
		},
		{
			name:      "missing uri",
			content:   "- method: GET\n",
			wantField: "test.yaml: expectations[0].uri",
		},
		{
			name:      "bad uri",
			content:   "- method: GET\n  uri: 'https:///nohost'\n",
			wantField: "test.yaml: expectations[0].uri",
		},
		{
			name:      "bad header name",
			content:   "- method: GET\n  uri: /a\n  match:\n    headers:\n      'Bad Header': x\n",
			wantField: "test.yaml: expectations[0].match.headers",
		},
		{
			name:      "bad status",
			content:   "- method: GET\n  uri: /a\n  response:\n    status: 42\n",
			wantField: "test.yaml: expectations[0].response.status",
		},
		{
			name:      "exclusive body fields",
			content:   "- method: GET\n  uri: /a\n  response:\n    body: x\n    json: {a: 1}\n",
			wantField: "test.yaml: expectations[0].response",
		},
		{
			name:      "bad expression names the expectation",
			content:   "- name: orders\n  method: GET\n  uri: /a\n  match:\n    expr: 'method =='\n",
			wantField: "test.yaml: expectations[0](orders)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mustParse(t, tt.content).Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	f := mustParse(t, `
- method: FETCH
  uri: /a
- method: GET
  response:
    status: 1000
`)
	err := f.Validate()
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 3)
}
