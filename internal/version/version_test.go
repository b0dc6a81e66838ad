package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "pagetree v1.2.0 (commit 0123456789ab, built 2026-01-02)",
		format("v1.2.0", "0123456789abcdef0123", "2026-01-02"))
	assert.Equal(t, "pagetree dev (commit unknown, built unknown)", format("dev", "", ""))
}

func TestStringNamesTheBinary(t *testing.T) {
	assert.True(t, strings.HasPrefix(String(), "pagetree "))
}
