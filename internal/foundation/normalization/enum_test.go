package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

type color string

const (
	red  color = "red"
	blue color = "blue"
)

var colors = NewEnum("color", map[string]color{"red": red, "Blue": blue, "azure": blue}, red)

func TestEnumParse(t *testing.T) {
	for raw, want := range map[string]color{"red": red, " RED ": red, "blue": blue, "Azure": blue} {
		got, err := colors.Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := colors.Parse("green")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, []string{"azure", "blue", "red"}, ce.Context()["valid"])
}

func TestEnumOr(t *testing.T) {
	assert.Equal(t, blue, colors.Or("BLUE"))
	assert.Equal(t, red, colors.Or("green"))
	assert.Equal(t, red, colors.Or(""))
}

func TestLanguageCode(t *testing.T) {
	assert.Equal(t, "pt-br", LanguageCode("pt_BR"))
	assert.Equal(t, "pt-br", LanguageCode(" PT-br "))
	assert.Equal(t, "en", LanguageCode("EN"))
	assert.Empty(t, LanguageCode("  "))
}
