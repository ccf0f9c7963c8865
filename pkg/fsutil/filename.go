package fsutil

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxFileNameBytes keeps names under the common 255-byte limit with room for
// an extension.
const maxFileNameBytes = 200

// SanitizeFileName turns a document title into a file name that is valid on
// Windows, macOS and Linux. Path separators and reserved characters become
// underscores; control characters are dropped.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}

	out := trimName(b.String())
	if len(out) > maxFileNameBytes {
		out = trimName(truncateUTF8(out, maxFileNameBytes))
	}
	if out == "" {
		return "_"
	}
	return out
}

// trimName strips leading and trailing dots and white space.
func trimName(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r == '.' || unicode.IsSpace(r) })
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ArtifactFileName returns "<sanitised title>.<ext>".
func ArtifactFileName(title, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return SanitizeFileName(title)
	}
	return SanitizeFileName(title) + "." + SanitizeFileName(ext)
}

// WithDocumentID returns "<stem> (<id>)<ext>" for name, keeping the extension
// and the length limit. It is used when two documents would share a file name.
func WithDocumentID(name, id string) string {
	if id == "" {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) > 16 {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	suffix := " (" + SanitizeFileName(id) + ")" + ext

	room := maxFileNameBytes - len(suffix)
	if room < 1 {
		room = 1
	}
	stem = trimName(truncateUTF8(stem, room))
	if stem == "" {
		stem = "_"
	}
	return stem + suffix
}
