package pathresolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

// ErrInvalidSlug is returned for slugs that cannot form a path segment.
var ErrInvalidSlug = errors.ValidationError("invalid slug").Build()

const fallbackSlug = "page"

// Slugify turns a title into a slug: accents are stripped, letters are
// lowercased, and every run of other characters becomes a single hyphen.
func Slugify(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}
	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}

// ValidateSlug checks that slug is usable as a single path segment.
func ValidateSlug(slug string) error {
	switch {
	case slug == "", slug == ".", slug == "..":
		return ErrInvalidSlug.WithContext("slug", slug)
	case strings.Contains(slug, "/"):
		return ErrInvalidSlug.WithContext("slug", slug).WithContext("reason", "contains '/'")
	case strings.IndexFunc(slug, unicode.IsSpace) >= 0:
		return ErrInvalidSlug.WithContext("slug", slug).WithContext("reason", "contains whitespace")
	}
	return nil
}
