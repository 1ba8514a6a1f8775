// Package naming picks sequential output file names such as AQ_0007.png.
package naming

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Allocator numbers files of the form <Prefix><n><Suffix>, n zero padded to
// Width digits.
type Allocator struct {
	Prefix string
	Suffix string
	Width  int
}

func Default() Allocator {
	return Allocator{Prefix: "AQ_", Suffix: ".png", Width: 4}
}

// Index parses the number out of name. The number is the run after Prefix
// up to the next "_" or ".", so AQ_0009_edit.png counts as 9. ok is false
// when name lacks Prefix or Suffix or that run is not all decimal digits.
func (a Allocator) Index(name string) (n int, ok bool) {
	if !strings.HasPrefix(name, a.Prefix) || !strings.HasSuffix(name, a.Suffix) {
		return 0, false
	}
	if len(name) < len(a.Prefix)+len(a.Suffix) {
		return 0, false
	}
	rest := name[len(a.Prefix):]
	digits, _, _ := strings.Cut(rest, "_")
	digits, _, _ = strings.Cut(digits, ".")
	if digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Next returns one more than the highest index among names, or 1.
func (a Allocator) Next(names []string) int {
	highest := 0
	for _, name := range names {
		if n, ok := a.Index(name); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func (a Allocator) Format(n int) string {
	return fmt.Sprintf("%s%0*d%s", a.Prefix, a.Width, n, a.Suffix)
}

// Allocate lists dir and returns the next free file name (not a path).
// Directories are ignored. Callers that may race with other processes
// must serialize Allocate and the following write themselves.
func (a Allocator) Allocate(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return a.Format(a.Next(names)), nil
}
