package gemini

import (
	"context"
	"errors"
	"testing"

	"snapfm/core/prompt"
	"snapfm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBatchJSON = `{"songs": [
  {"Song_title": "Blue", "Artist": "Eiffel 65"},
  {"Song_title": "Yellow", "Artist": "Coldplay"},
  {"Song_title": "Back in Black", "Artist": "AC/DC"}
]}`

type scripted struct {
	text string
	err  error
}

// fakeCall replays scripted responses and records every request it saw.
type fakeCall struct {
	script   []scripted
	requests []genRequest
}

func (f *fakeCall) generate(_ context.Context, req genRequest) (string, error) {
	f.requests = append(f.requests, req)
	if len(f.script) == 0 {
		return "", errors.New("no scripted response left")
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.text, next.err
}

func multiInput(grounded bool) tierInput {
	prefs := model.Preferences{Language: "English"}
	in := tierInput{
		image:          []byte{0xFF, 0xD8, 0xFF},
		mimeType:       "image/jpeg",
		fallbackPrompt: multiPrompt(prefs),
		convert:        prompt.ConvertBatch,
		schema:         batchSchema(),
		parse:          parseBatch,
	}
	if grounded {
		in.groundedPrompt = groundedMultiPrompt(true, prefs)
	}
	return in
}

func TestGroundedThenConvertSucceeds(t *testing.T) {
	call := &fakeCall{script: []scripted{
		{text: "I'd go with Blue by Eiffel 65, Yellow by Coldplay and Back in Black by AC/DC."},
		{text: validBatchJSON},
	}}

	songs, err := runTiers(context.Background(), call, multiInput(true))
	require.NoError(t, err)
	require.Len(t, songs, 3)
	assert.Equal(t, "Blue", songs[0].Title)
	assert.Equal(t, "Eiffel 65", songs[0].Artist)

	require.Len(t, call.requests, 2)

	grounded := call.requests[0]
	assert.True(t, grounded.grounded)
	assert.NotEmpty(t, grounded.image)
	assert.NotEmpty(t, grounded.system)
	assert.Nil(t, grounded.schema)
	assert.InDelta(t, groundedTemperature, grounded.temperature, 0.001)

	convert := call.requests[1]
	assert.False(t, convert.grounded)
	assert.Empty(t, convert.image, "conversion is text-only")
	assert.NotNil(t, convert.schema)
	assert.Contains(t, convert.prompt, "Eiffel 65", "conversion prompt embeds the curator text")
	assert.InDelta(t, convertTemperature, convert.temperature, 0.001)
}

func TestGroundedFailureSkipsStraightToFallback(t *testing.T) {
	call := &fakeCall{script: []scripted{
		{err: errors.New("search tool unavailable")},
		{text: validBatchJSON},
	}}

	songs, err := runTiers(context.Background(), call, multiInput(true))
	require.NoError(t, err)
	require.Len(t, songs, 3)

	// No conversion call happened; the second call is the direct structured one.
	require.Len(t, call.requests, 2)
	fallback := call.requests[1]
	assert.False(t, fallback.grounded)
	assert.NotEmpty(t, fallback.image)
	assert.NotNil(t, fallback.schema)
	assert.InDelta(t, fallbackTemperature, fallback.temperature, 0.001)
}

func TestEmptyGroundedTextTreatedAsFailure(t *testing.T) {
	call := &fakeCall{script: []scripted{
		{text: "   \n"},
		{text: validBatchJSON},
	}}

	songs, err := runTiers(context.Background(), call, multiInput(true))
	require.NoError(t, err)
	require.Len(t, songs, 3)
	require.Len(t, call.requests, 2)
	assert.NotEmpty(t, call.requests[1].image, "second call must be the direct fallback, not conversion")
}

func TestShortConversionFallsThroughToFallback(t *testing.T) {
	call := &fakeCall{script: []scripted{
		{text: "Two songs only: Blue by Eiffel 65 and Yellow by Coldplay."},
		{text: `{"songs": [{"Song_title": "Blue", "Artist": "Eiffel 65"}, {"Song_title": "Yellow", "Artist": "Coldplay"}]}`},
		{text: validBatchJSON},
	}}

	songs, err := runTiers(context.Background(), call, multiInput(true))
	require.NoError(t, err)
	assert.Len(t, songs, 3, "the short list must not be returned")
	assert.Len(t, call.requests, 3)
}

func TestAllTiersExhaustedReturnsGenerationError(t *testing.T) {
	lastErr := errors.New("quota exceeded")
	call := &fakeCall{script: []scripted{
		{err: errors.New("grounded transport error")},
		{err: lastErr},
	}}

	songs, err := runTiers(context.Background(), call, multiInput(true))
	assert.Nil(t, songs, "no partial list on terminal failure")

	var genErr *model.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, genErr.Cause, lastErr, "the terminal error carries the last tier's cause")
}

func TestGroundingDisabledUsesOnlyFallback(t *testing.T) {
	call := &fakeCall{script: []scripted{
		{text: validBatchJSON},
	}}

	songs, err := runTiers(context.Background(), call, multiInput(false))
	require.NoError(t, err)
	require.Len(t, songs, 3)
	require.Len(t, call.requests, 1)
	assert.False(t, call.requests[0].grounded)
	assert.NotNil(t, call.requests[0].schema)
}

func TestNoGroundedTextLeaksIntoResult(t *testing.T) {
	call := &fakeCall{script: []scripted{
		{text: "CURATOR-ONLY NOTES that must never surface"},
		{err: errors.New("conversion refused")},
		{text: validBatchJSON},
	}}

	songs, err := runTiers(context.Background(), call, multiInput(true))
	require.NoError(t, err)
	for _, s := range songs {
		assert.NotContains(t, s.Title, "CURATOR")
		assert.NotContains(t, s.Artist, "CURATOR")
	}
}

func TestParseBatchCapsAtThree(t *testing.T) {
	songs, err := parseBatch(`{"songs": [
	  {"Song_title": "A", "Artist": "1"},
	  {"Song_title": "B", "Artist": "2"},
	  {"Song_title": "C", "Artist": "3"},
	  {"Song_title": "D", "Artist": "4"}
	]}`)
	require.NoError(t, err)
	require.Len(t, songs, 3)
	assert.Equal(t, "C", songs[2].Title)
}

func TestParseBatchKeepsDuplicates(t *testing.T) {
	songs, err := parseBatch(`{"songs": [
	  {"Song_title": "Blue", "Artist": "Eiffel 65"},
	  {"Song_title": "Blue", "Artist": "Eiffel 65"},
	  {"Song_title": "Blue", "Artist": "Eiffel 65"}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, songs[0], songs[1])
	assert.Equal(t, songs[1], songs[2])
}

func TestParseBatchStripsCodeFences(t *testing.T) {
	songs, err := parseBatch("```json\n" + validBatchJSON + "\n```")
	require.NoError(t, err)
	assert.Len(t, songs, 3)
}

func TestParseBatchRejectsShortAndMalformed(t *testing.T) {
	_, err := parseBatch(`{"songs": []}`)
	assert.Error(t, err)

	_, err = parseBatch("not json at all")
	assert.Error(t, err)
}

func TestParseSingle(t *testing.T) {
	songs, err := parseSingle(`{"Song_title": "Blue", "Artist": "Eiffel 65", "Summary": "Cool tones, cool song."}`)
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "Cool tones, cool song.", songs[0].Rationale)

	_, err = parseSingle(`{"Song_title": "Blue", "Artist": ""}`)
	assert.Error(t, err)
}
