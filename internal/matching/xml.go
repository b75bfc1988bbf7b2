package matching

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// XMLPath compiles an etree path (e.g. "//user/name" or "./Envelope/Body/*")
// into a body matcher. With an empty expected value the element only has to
// exist; otherwise its trimmed text must equal expected.
func XMLPath(path, expected string) (BodyMatcher, error) {
	compiled, err := etree.CompilePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid XML path %q: %w", path, err)
	}

	return func(body []byte) bool {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(body); err != nil {
			return false
		}
		for _, el := range doc.FindElementsPath(compiled) {
			if expected == "" || strings.TrimSpace(el.Text()) == expected {
				return true
			}
		}
		return false
	}, nil
}
