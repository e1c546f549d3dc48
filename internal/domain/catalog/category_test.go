package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"T-Shirts", "t-shirts"},
		{"  HOME   decor ", "home decor"},
		{"ÉCOLE", "école"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldName(tt.in))
		})
	}
	assert.Equal(t, FoldName("wall ART"), FoldName("Wall Art"))
}

func TestNewCategory(t *testing.T) {
	t.Run("builds key and slug", func(t *testing.T) {
		c, err := NewCategory("  Home   Decor ", false)
		require.NoError(t, err)
		assert.Equal(t, "Home Decor", c.Name)
		assert.Equal(t, "home decor", c.NameKey)
		assert.Equal(t, "home-decor", c.Slug)
		assert.False(t, c.IsFallback)
		assert.NotEmpty(t, c.ID)
	})

	t.Run("fallback category", func(t *testing.T) {
		c, err := NewCategory(FallbackCategoryName, true)
		require.NoError(t, err)
		assert.True(t, c.IsFallback)
		assert.Equal(t, "other", c.NameKey)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewCategory("   ", false)
		assert.Error(t, err)
	})
}
