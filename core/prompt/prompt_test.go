package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiSongInterpolatesLanguage(t *testing.T) {
	p := MultiSong("Hindi", "", "", false)
	assert.Contains(t, p, "All songs must be in **Hindi**.")
	assert.Contains(t, p, "THREE different songs")
	assert.Contains(t, p, `{"songs": [{Song_title, Artist}, {Song_title, Artist}, {Song_title, Artist}]}`)
}

// The API accepts a genre field but the three-song text never mentions it.
// Keep it that way until there is a product decision; the single-song text
// is where genre shows up.
func TestMultiSongDoesNotRenderGenre(t *testing.T) {
	p := MultiSong("English", "Bollywood", "", false)
	assert.NotContains(t, p, "Bollywood")
	assert.NotContains(t, p, "preferred genre")
}

func TestMultiSongContextBlock(t *testing.T) {
	withCtx := MultiSong("English", "", "me with my brother", false)
	assert.Contains(t, withCtx, `**User Context:** The user has provided this context about the image: "me with my brother".`)

	withoutCtx := MultiSong("English", "", "", false)
	assert.NotContains(t, withoutCtx, "**User Context:**")
}

func TestGroundingBlockOnlyWhenGrounded(t *testing.T) {
	grounded := MultiSong("English", "", "", true)
	assert.Contains(t, grounded, "**Web Search:**")
	assert.Contains(t, grounded, "English-language music")
	assert.Contains(t, grounded, "recency qualifier")

	ungrounded := MultiSong("English", "", "", false)
	assert.NotContains(t, ungrounded, "**Web Search:**")
}

func TestSingleSongRendersGenreAndSummary(t *testing.T) {
	p := SingleSong("English", "Lo-fi", "", false)
	assert.Contains(t, p, "The song must be in **English**. The preferred genre is Lo-fi.")
	assert.Contains(t, p, "Summary: A concise paragraph (2-3 sentences)")
	assert.Contains(t, p, "suggest a single song")
}

func TestSingleSongEmptyGenreOmitsGenreText(t *testing.T) {
	p := SingleSong("English", "", "", false)
	assert.NotContains(t, p, "preferred genre")
}

func TestConvertBatchEmbedsCuratorText(t *testing.T) {
	raw := "1. Blue by Eiffel 65 - fits the cool tones\n2. Yellow by Coldplay"
	p := ConvertBatch(raw)
	assert.Contains(t, p, raw)
	assert.Contains(t, p, "exactly 3 song objects")
}

func TestPromptsAreDeterministic(t *testing.T) {
	a := MultiSong("English", "Pop", "sunset at the beach", true)
	b := MultiSong("English", "Pop", "sunset at the beach", true)
	assert.Equal(t, a, b)
}

func TestVerbatimInterpolation(t *testing.T) {
	// Inputs are not sanitized; whatever the caller sends lands in the text.
	p := MultiSong("Klingon <xml>", "", "", false)
	assert.True(t, strings.Contains(p, "**Klingon <xml>**"))
}
