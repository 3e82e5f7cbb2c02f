// Package filex contains helpers for handling untrusted file names and for
// preparing storage directories.
package filex

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,16}$`)

// SafeExt returns the lower-cased extension of name, or "" when the extension
// contains anything but ASCII letters and digits. The result is safe to embed
// in storage keys and paths.
func SafeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// EscapeName percent-encodes name the way browsers' encodeURIComponent does,
// which keeps it safe inside a quoted Content-Disposition parameter.
func EscapeName(name string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// EnsureDir creates dir (and parents) on fs if it does not exist yet.
func EnsureDir(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
