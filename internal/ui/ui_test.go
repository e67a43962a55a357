package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStyles(t *testing.T) {
	th := DarkTheme()
	s := NewStyles(th)

	assert.Equal(t, th, s.Theme)
	assert.Equal(t, th.Border, s.Panel.GetBorderTopForeground())
	assert.Equal(t, th.BorderFocused, s.PanelFocused.GetBorderTopForeground())
	assert.Equal(t, th.Pending, s.Pending.GetForeground())
	assert.Equal(t, th.Required, s.FieldRequired.GetForeground())
	assert.Equal(t, th.Error, s.FormError.GetForeground())
	assert.True(t, s.Pending.GetItalic())
}

func TestClampCursor(t *testing.T) {
	assert.Equal(t, 0, ClampCursor(3, 0))
	assert.Equal(t, 0, ClampCursor(-1, 5))
	assert.Equal(t, 4, ClampCursor(9, 5))
	assert.Equal(t, 2, ClampCursor(2, 5))
}

func TestScrollOffset(t *testing.T) {
	tests := []struct {
		name                    string
		cursor, offset, visible int
		want                    int
	}{
		{"inside window", 3, 2, 5, 2},
		{"above window", 1, 2, 5, 1},
		{"below window", 9, 2, 5, 5},
		{"no rows visible", 4, 0, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrollOffset(tt.cursor, tt.offset, tt.visible))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "…", Truncate("hello", 1))
	assert.Equal(t, "a b c", OneLine("a\n b\t\tc "))
	assert.Equal(t, "a | c", JoinHorizontal(" | ", "a", "", "c"))
}
