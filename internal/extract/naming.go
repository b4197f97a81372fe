package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// maxNameBytes is the common per-component limit of mainstream filesystems.
	maxNameBytes = 255

	// collisionReserve leaves room for a " (n)" suffix within maxNameBytes.
	collisionReserve = 12

	// maxCollisions bounds the suffix search for a single folder.
	maxCollisions = 1 << 16
)

var (
	// ErrTooManyCollisions is returned when no free suffix is found for a folder.
	ErrTooManyCollisions = errors.New("too many folder name collisions")

	reservedDeviceName = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	onlyDots           = regexp.MustCompile(`^\.+$`)
)

// Sanitize makes name safe to use as a single path component on Windows,
// macOS and Linux. The result may be empty.
func Sanitize(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == utf8.RuneError:
		case strings.ContainsRune(`/\?<>:*|"`, r):
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()

	if onlyDots.MatchString(out) || reservedDeviceName.MatchString(out) {
		return ""
	}
	out = strings.TrimRight(out, ". ")

	return truncate(out, maxNameBytes)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// FolderName derives the output folder name for an object. The class is
// appended in brackets unless the name already matches it.
func FolderName(displayName, className string) string {
	safe := Sanitize(displayName)
	if safe == "" {
		safe = Sanitize(className)
	}
	if safe == "" {
		safe = "_"
	}
	if strings.EqualFold(safe, className) {
		return truncate(safe, maxNameBytes-collisionReserve)
	}

	suffix := fmt.Sprintf(" [%s]", Sanitize(className))
	budget := maxNameBytes - collisionReserve - len(suffix)
	if budget < 1 {
		return truncate(safe, maxNameBytes-collisionReserve)
	}
	return strings.TrimRight(truncate(safe, budget), ". ") + suffix
}

// createUniqueDir creates parent/base, or parent/"base (n)" with the
// smallest free n starting at 1. os.Mkdir is the create-if-absent step, so
// concurrent siblings that pick the same candidate simply move on to the
// next one.
func createUniqueDir(parent, base string) (string, error) {
	for i := 0; i < maxCollisions; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s (%d)", base, i)
		}
		dir := filepath.Join(parent, name)

		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrTooManyCollisions, base, parent)
}
