package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Daigo", "daigo"},
		{"strips inner whitespace", "Angry Bird", "angrybird"},
		{"strips padding and tabs", "  MenaRD\t", "menard"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestSplitAliases(t *testing.T) {
	t.Run("pipe delimited list", func(t *testing.T) {
		assert.Equal(t, []string{"Tokido", "Machine"}, SplitAliases("Tokido|Machine"))
	})

	t.Run("drops empty segments", func(t *testing.T) {
		assert.Equal(t, []string{"Punk"}, SplitAliases("|Punk| "))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, SplitAliases(""))
	})
}
