package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBaseHref(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"index.md", ""},
		{filepath.Join("posts", "a.md"), "../"},
		{filepath.Join("posts", "a", "b.md"), "../../"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeBaseHref(tt.rel), tt.rel)
	}
}

func TestSlashPath(t *testing.T) {
	assert.Equal(t, "blog/a.md", SlashPath(filepath.Join("blog", "a.md")))
	assert.Equal(t, "blog/a.md", SlashPath(filepath.Join("blog", ".", "x", "..", "a.md")))
	assert.Equal(t, "a.md", SlashPath("a.md"))
}
