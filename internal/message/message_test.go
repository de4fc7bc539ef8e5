package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWithSeconds substitutes the threshold and translates colors.
func TestWithSeconds(t *testing.T) {
	t.Parallel()

	got := WithSeconds("&cMobs will be cleared in &l%seconds%&r seconds!", 10)
	require.Equal(t, "§cMobs will be cleared in §l10§r seconds!", got)
}

// TestWithCount substitutes the removed count and leaves other placeholders alone.
func TestWithCount(t *testing.T) {
	t.Parallel()

	got := WithCount("&A%count% mobs removed (%seconds%)", 3)
	require.Equal(t, "§a3 mobs removed (%seconds%)", got)
}

// TestTranslateColors leaves ampersands that do not start a code untouched.
func TestTranslateColors(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Tom & Jerry &z &", TranslateColors("Tom & Jerry &z &"))
	require.Equal(t, "§4red", TranslateColors("&4red"))
}

// TestStrip removes both code forms.
func TestStrip(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Removed 3 mobs & more", Strip("§aRemoved &l3§r mobs & more"))
}
