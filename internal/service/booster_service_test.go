package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderBoosterTemplate(t *testing.T) {
	text := RenderBoosterTemplate(
		"{{name}} just bought the {{package}} plan {{time}}",
		"Emma", "Pro", "5 minutes ago",
	)
	assert.Equal(t, "Emma just bought the Pro plan 5 minutes ago", text)
}

func TestRenderBoosterTemplate_UnknownPlaceholderPassesThrough(t *testing.T) {
	text := RenderBoosterTemplate("{{name}} likes {{color}}", "Emma", "Pro", "now")
	assert.Equal(t, "Emma likes {{color}}", text)
}

func TestRenderBoosterTemplate_RepeatedPlaceholders(t *testing.T) {
	text := RenderBoosterTemplate("{{name}} and {{name}}", "Emma", "Pro", "now")
	assert.Equal(t, "Emma and Emma", text)
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Already-Slugged  ", "already-slugged"},
		{"Ten Tips for Etsy Sellers!", "ten-tips-for-etsy-sellers"},
		{"---trim---", "trim"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeSlug(tt.in), "input %q", tt.in)
	}
}
