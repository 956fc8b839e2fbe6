package upload

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

// SanitizeFilename lowercases the name and replaces every character
// outside [a-z0-9._-] with an underscore, producing a name safe to use
// in a storage key or URL path.
func SanitizeFilename(name string) string {
	return strings.ToLower(unsafeFilenameChars.ReplaceAllString(name, "_"))
}

// NewObjectKey builds the storage key for an uploaded file:
// a millisecond timestamp prefix plus the sanitized original filename.
// Uniqueness rests on the timestamp; collisions are not probed for.
func NewObjectKey(filename string) string {
	return objectKeyAt(time.Now(), filename)
}

func objectKeyAt(t time.Time, filename string) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), SanitizeFilename(filename))
}
