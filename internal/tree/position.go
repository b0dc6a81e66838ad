package tree

import "strings"

// Position places a node relative to a target node.
type Position string

const (
	FirstChild Position = "first-child"
	LastChild  Position = "last-child"
	Left       Position = "left"
	Right      Position = "right"
)

// ParsePosition accepts the canonical names case-insensitively.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidPosition.WithContext("position", s)
	}
	return p, nil
}

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	switch p {
	case FirstChild, LastChild, Left, Right:
		return true
	}
	return false
}

func (p Position) isChild() bool {
	return p == FirstChild || p == LastChild
}
