package utils

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "banana", tp.TruncateText("banana", 0))
	assert.Equal(t, "banana", tp.TruncateText("banana", 10))
	assert.Equal(t, "ban", tp.TruncateText("banana", 3))

	// "maçã" is 6 bytes; cutting at 3 would split "ç"
	out := tp.TruncateText("maçã", 3)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "ma", out)
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "banana", tp.SanitizeUTF8("banana"))
	assert.Equal(t, "banana", tp.SanitizeUTF8("ban\xffana"))
}

func TestNormalizeLabel(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	decomposed := norm.NFD.String("  maçã ")
	assert.Equal(t, "maçã", tp.NormalizeLabel(decomposed, 255))
	assert.Equal(t, "Granny", tp.NormalizeLabel(" Granny Smith", 6))
	assert.Equal(t, "", tp.NormalizeLabel("  ", 255))
}
