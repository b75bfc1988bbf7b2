package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/fakereq/pkg/logging"
)

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	jsonOutput = false
	logLevel = "info"
	logFormat = "text"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		jsonOutput = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validFixture = `
expectations:
  - method: GET
    uri: /users/{id}
    response:
      status: 200
      template: '{"id":"{{request.params.id}}"}'
`

const invalidFixture = `
- method: FETCH
  uri: /a
- method: GET
  uri: /b
  match:
    bodyPattern: '['
`

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fakereq dev")

	out, err = runCLI(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, "good.yaml", validFixture)
	bad := writeFixture(t, dir, "nested/bad.yaml", invalidFixture)

	t.Run("valid file", func(t *testing.T) {
		out, err := runCLI(t, "validate", good)
		require.NoError(t, err)
		assert.Contains(t, out, "FILE")
		assert.Contains(t, out, good)
		assert.Contains(t, out, "ok")
	})

	t.Run("invalid file lists every problem", func(t *testing.T) {
		out, err := runCLI(t, "validate", bad)
		require.ErrorIs(t, err, ErrInvalidFixtures)
		assert.Contains(t, out, "invalid")
		assert.Contains(t, out, "expectations[0].method")
		assert.Contains(t, out, "expectations[1]")
	})

	t.Run("glob with json output", func(t *testing.T) {
		out, err := runCLI(t, "validate", "--json", filepath.Join(dir, "**", "*.yaml"))
		require.ErrorIs(t, err, ErrInvalidFixtures)

		var results []validateResult
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.True(t, results[0].Valid)
		assert.False(t, results[1].Valid)
		assert.Len(t, results[1].Errors, 2)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := runCLI(t, "validate", filepath.Join(dir, "*.json"))
		assert.ErrorIs(t, err, ErrNoFixtures)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := runCLI(t, "validate")
		assert.Error(t, err)
	})
}

func startServe(t *testing.T, paths []string, allowUnexpected bool) (string, *bytes.Buffer, context.CancelFunc, <-chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, &out, ln, logging.Nop(), paths, allowUnexpected)
	}()
	return "http://" + ln.Addr().String(), &out, cancel, done
}

func waitServe(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
		return nil
	}
}

func TestServe_AllMet(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "users.yaml", validFixture)
	baseURL, out, cancel, done := startServe(t, []string{path}, false)

	resp, err := http.Get(baseURL + "/users/42")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"42"}`, string(body))

	cancel()
	require.NoError(t, waitServe(t, done))
	assert.Contains(t, out.String(), "All expectations met (1 calls).")
}

func TestServe_ReportsUnmet(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "users.yaml", validFixture)
	baseURL, out, cancel, done := startServe(t, []string{path}, false)

	resp, err := http.Get(baseURL + "/orders")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	cancel()
	err = waitServe(t, done)
	require.ErrorIs(t, err, ErrUnmetExpectations)
	assert.Contains(t, out.String(), "unhandled request: GET /orders")
	assert.Contains(t, out.String(), `A GET request to "/users/{id}" was expected.`)
}

func TestServe_AllowUnexpected(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "users.yaml", validFixture)
	baseURL, _, cancel, done := startServe(t, []string{path}, true)

	resp, err := http.Get(baseURL + "/anything")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(baseURL + "/users/1")
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	require.NoError(t, waitServe(t, done))
}

func TestServe_InvalidFixture(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "bad.yaml", invalidFixture)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = runServe(context.Background(), io.Discard, ln, logging.Nop(), []string{path}, false)
	assert.Error(t, err)
}
