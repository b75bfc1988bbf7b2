package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
// Unset variables without a default expand to "".
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}

// Parse decodes fixture content. source names the origin in error messages.
func Parse(data []byte, source string) (*Fixture, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("fixture is empty: %s", source)
	}

	expanded := ExpandEnvVars(string(data))

	var f Fixture
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, fmt.Errorf("parsing YAML %s: %w", source, err)
	}
	f.Source = source
	return &f, nil
}

// LoadFile reads and parses one fixture file.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("permission denied: %s", path)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(data, path)
}

// LoadGlob loads every file matching pattern, in lexical order.
// Supports ** for recursive directory matching. No match is not an error.
func LoadGlob(pattern string) ([]*Fixture, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	fixtures := make([]*Fixture, 0, len(matches))
	for _, match := range matches {
		f, err := LoadFile(match)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// LoadPaths loads each argument as a glob when it contains glob
// metacharacters and as a plain file otherwise. A plain file must exist.
func LoadPaths(paths ...string) ([]*Fixture, error) {
	var fixtures []*Fixture
	for _, p := range paths {
		if isGlob(p) {
			loaded, err := LoadGlob(p)
			if err != nil {
				return nil, err
			}
			fixtures = append(fixtures, loaded...)
			continue
		}

		f, err := LoadFile(filepath.Clean(p))
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
