// Package idgen mints the opaque identifiers handed out by the server.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Kind names what an identifier refers to; it becomes the id's prefix.
type Kind string

// KindLoad identifies one changelog load.
const KindLoad Kind = "ld"

const (
	alphabet  = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomLen = 10
)

// New returns "<kind>-" followed by randomLen alphanumeric characters.
func New(kind Kind) (string, error) {
	suffix, err := nanoid.Generate(alphabet, randomLen)
	if err != nil {
		return "", fmt.Errorf("generating %s id: %w", kind, err)
	}
	return string(kind) + "-" + suffix, nil
}

func NewLoadID() (string, error) {
	return New(KindLoad)
}

// Parse splits id into its kind and reports whether the random part has
// the shape New produces.
func Parse(id string) (Kind, bool) {
	kind, suffix, ok := strings.Cut(id, "-")
	if !ok || kind == "" || len(suffix) != randomLen {
		return "", false
	}
	for _, r := range suffix {
		if !strings.ContainsRune(alphabet, r) {
			return "", false
		}
	}
	return Kind(kind), true
}
