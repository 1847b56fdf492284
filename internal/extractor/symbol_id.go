package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildStableComponentID creates a deterministic component ID.
// The ID is derived from the file location and the component name, so it
// survives edits to the component body.
func BuildStableComponentID(doc *ComponentDoc) string {
	if doc == nil {
		return ""
	}

	lang := strings.TrimSpace(doc.Language)
	if lang == "" {
		lang = "unknown"
	}

	dir := filepath.ToSlash(filepath.Dir(doc.Filepath))
	if dir == "" || dir == "." {
		dir = "_"
	}

	name := canonicalize(doc.Name)
	if name == "" {
		name = "_"
	}

	fingerprint := strings.Join([]string{
		lang,
		filepath.ToSlash(doc.Filepath),
		name,
	}, "|")

	sum := sha256.Sum256([]byte(fingerprint))
	short := hex.EncodeToString(sum[:8])
	return fmt.Sprintf("%s/%s:component:%s:%s", lang, dir, name, short)
}

// ContentHash fingerprints file content for change detection.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
