// Package treepath encodes tree positions as materialized paths: fixed-width
// segments over an ordered alphabet, one segment per level, so that string
// order equals sibling order and ancestry is a string prefix.
package treepath

import (
	"strings"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

const (
	// DefaultAlphabet is base 36 in ascending ASCII order.
	DefaultAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// DefaultStepLen is the width of one path segment.
	DefaultStepLen = 4

	parkRune = '~'
)

var (
	// ErrCapacityExceeded is returned when a sibling index does not fit in one segment.
	ErrCapacityExceeded = errors.StructuralViolation("path segment capacity exceeded").Build()
	// ErrInvalidPath is returned for paths that are not made of whole segments of the alphabet.
	ErrInvalidPath = errors.StructuralViolation("invalid materialized path").Build()
	// ErrInvalidCodec is returned by New for unusable alphabets or widths.
	ErrInvalidCodec = errors.ConfigError("invalid path codec").Build()
)

// Codec converts between sibling indexes and path segments.
type Codec struct {
	alphabet string
	steplen  int
	max      int
	digits   [128]int
}

// Default is the base-36, width-4 codec (1,679,615 children per parent).
var Default = MustNew(DefaultAlphabet, DefaultStepLen)

// New builds a codec. The alphabet must be strictly ascending ASCII and must
// not contain the park character '~'.
func New(alphabet string, steplen int) (*Codec, error) {
	if len(alphabet) < 2 || steplen < 1 {
		return nil, ErrInvalidCodec.WithContext("alphabet", alphabet).WithContext("steplen", steplen)
	}
	c := &Codec{alphabet: alphabet, steplen: steplen}
	for i := range c.digits {
		c.digits[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		ch := alphabet[i]
		if ch >= 128 || ch == parkRune || (i > 0 && ch <= alphabet[i-1]) {
			return nil, ErrInvalidCodec.WithContext("alphabet", alphabet)
		}
		c.digits[ch] = i
	}
	limit := 1
	for range steplen {
		if limit > (1<<31)/len(alphabet) {
			return nil, ErrInvalidCodec.WithContext("steplen", steplen)
		}
		limit *= len(alphabet)
	}
	c.max = limit - 1
	return c, nil
}

// MustNew is New that panics on error. Intended for package-level codecs.
func MustNew(alphabet string, steplen int) *Codec {
	c, err := New(alphabet, steplen)
	if err != nil {
		panic(err)
	}
	return c
}

// StepLen returns the segment width.
func (c *Codec) StepLen() int { return c.steplen }

// Max returns the largest sibling index a segment can hold. Index 0 is unused
// so that the first child is always "…0001".
func (c *Codec) Max() int { return c.max }

// Segment encodes a 1-based sibling index.
func (c *Codec) Segment(index int) (string, error) {
	if index < 1 || index > c.max {
		return "", ErrCapacityExceeded.WithContext("index", index).WithContext("max", c.max)
	}
	base := len(c.alphabet)
	buf := make([]byte, c.steplen)
	for i := c.steplen - 1; i >= 0; i-- {
		buf[i] = c.alphabet[index%base]
		index /= base
	}
	return string(buf), nil
}

// Encode returns the path of the index-th child of parentPath ("" for the root level).
func (c *Codec) Encode(parentPath string, index int) (string, error) {
	seg, err := c.Segment(index)
	if err != nil {
		return "", err
	}
	return parentPath + seg, nil
}

// Index decodes the sibling index of the last segment of path.
func (c *Codec) Index(path string) (int, error) {
	if err := c.Validate(path); err != nil {
		return 0, err
	}
	seg := path[len(path)-c.steplen:]
	base := len(c.alphabet)
	n := 0
	for i := 0; i < len(seg); i++ {
		n = n*base + c.digits[seg[i]]
	}
	return n, nil
}

// Depth is the number of segments in path.
func (c *Codec) Depth(path string) int {
	return len(path) / c.steplen
}

// Parent returns the parent path, or "" for root-level and empty paths.
func (c *Codec) Parent(path string) string {
	if len(path) <= c.steplen {
		return ""
	}
	return path[:len(path)-c.steplen]
}

// Ancestors returns the proper ancestor paths of path, root first.
func (c *Codec) Ancestors(path string) []string {
	depth := c.Depth(path)
	if depth <= 1 {
		return nil
	}
	out := make([]string, 0, depth-1)
	for d := 1; d < depth; d++ {
		out = append(out, path[:d*c.steplen])
	}
	return out
}

// IsDescendant reports whether path lies strictly below ancestor.
func (c *Codec) IsDescendant(path, ancestor string) bool {
	return len(path) > len(ancestor) && strings.HasPrefix(path, ancestor)
}

// IsChild reports whether path is exactly one level below parent.
func (c *Codec) IsChild(path, parent string) bool {
	return len(path) == len(parent)+c.steplen && strings.HasPrefix(path, parent)
}

// Validate checks that path is non-empty, made of whole segments, and uses only
// alphabet characters.
func (c *Codec) Validate(path string) error {
	if path == "" || len(path)%c.steplen != 0 {
		return ErrInvalidPath.WithContext("path", path)
	}
	for i := 0; i < len(path); i++ {
		ch := path[i]
		if ch >= 128 || c.digits[ch] < 0 {
			return ErrInvalidPath.WithContext("path", path)
		}
	}
	return nil
}

// ParkPrefix returns a root-level segment outside the alphabet. It sorts
// after every valid segment and never collides with a stored path, so a
// subtree can be detached under it while a move is in progress.
func (c *Codec) ParkPrefix() string {
	return strings.Repeat(string(parkRune), c.steplen)
}
