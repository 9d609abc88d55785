package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []string{"ctrl+c", "esc"}, km.Quit.Keys())
	assert.Equal(t, []string{"enter"}, km.Send.Keys())
	assert.Equal(t, []string{"ctrl+l"}, km.Clear.Keys())
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	assert.Len(t, help, 4)
	assert.Equal(t, "ask", help[0].Help().Desc)
	assert.Equal(t, "quit", help[3].Help().Desc)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		key  string
		want bool
	}{
		{"esc", true},
		{"ctrl+c", true},
		{"q", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.key, km.Quit))
		})
	}
}
