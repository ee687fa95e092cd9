package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"snapfm/core/prompt"
	"snapfm/logger"
	"snapfm/model"

	"google.golang.org/genai"
)

// batchSize is how many songs the multi-song mode must yield.
const batchSize = 3

// Sampling leans creative for the grounded pass, deterministic for the
// conversion pass, and middle-of-the-road for the direct fallback.
const (
	groundedTemperature = 0.9
	convertTemperature  = 0.1
	fallbackTemperature = 0.4
)

var errEmptyResponse = errors.New("empty response from model")

type tierState int

const (
	tryGrounded tierState = iota
	tryConvert
	tryFallback
)

// tierInput parameterizes the strategy machine for multi- and single-song
// modes. An empty groundedPrompt disables the grounded tier entirely.
type tierInput struct {
	image          []byte
	mimeType       string
	groundedPrompt string
	fallbackPrompt string
	convert        func(curatorText string) string
	schema         *genai.Schema
	parse          func(text string) ([]model.RawSuggestion, error)
}

// runTiers drives the generation strategy: a grounded free-text attempt whose
// output a second call converts into the schema, then a direct ungrounded
// structured call as the final fallback. The first tier to produce a valid
// batch wins. Grounded text is never returned as-is; its shape is not
// trustworthy. Only the fallback's failure aborts, and that failure carries
// the last underlying error.
func runTiers(ctx context.Context, call caller, in tierInput) ([]model.RawSuggestion, error) {
	state := tryGrounded
	if in.groundedPrompt == "" {
		state = tryFallback
	}

	var curatorText string

	for {
		switch state {
		case tryGrounded:
			text, err := call.generate(ctx, genRequest{
				prompt:      in.groundedPrompt,
				system:      prompt.SystemInstruction(),
				image:       in.image,
				mimeType:    in.mimeType,
				grounded:    true,
				temperature: groundedTemperature,
			})
			if err == nil && strings.TrimSpace(text) == "" {
				err = errEmptyResponse
			}
			if err != nil {
				logger.Warn("grounded generation failed, trying direct fallback", logger.ErrorField(err))
				state = tryFallback
				continue
			}
			curatorText = text
			state = tryConvert

		case tryConvert:
			text, err := call.generate(ctx, genRequest{
				prompt:      in.convert(curatorText),
				schema:      in.schema,
				temperature: convertTemperature,
			})
			if err == nil {
				songs, perr := in.parse(text)
				if perr == nil {
					return songs, nil
				}
				err = perr
			}
			logger.Warn("structured conversion failed, trying direct fallback", logger.ErrorField(err))
			state = tryFallback

		case tryFallback:
			text, err := call.generate(ctx, genRequest{
				prompt:      in.fallbackPrompt,
				image:       in.image,
				mimeType:    in.mimeType,
				schema:      in.schema,
				temperature: fallbackTemperature,
			})
			if err == nil {
				songs, perr := in.parse(text)
				if perr == nil {
					return songs, nil
				}
				err = perr
			}
			return nil, &model.GenerationError{Cause: err}
		}
	}
}

func multiPrompt(prefs model.Preferences) string {
	return prompt.MultiSong(prefs.Language, prefs.Genre, prefs.Context, false)
}

func groundedMultiPrompt(grounded bool, prefs model.Preferences) string {
	if !grounded {
		return ""
	}
	return prompt.MultiSong(prefs.Language, prefs.Genre, prefs.Context, true)
}

func singlePrompt(prefs model.Preferences) string {
	return prompt.SingleSong(prefs.Language, prefs.Genre, prefs.Context, false)
}

func groundedSinglePrompt(grounded bool, prefs model.Preferences) string {
	if !grounded {
		return ""
	}
	return prompt.SingleSong(prefs.Language, prefs.Genre, prefs.Context, true)
}

func batchSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"songs": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"Song_title": {Type: genai.TypeString},
						"Artist":     {Type: genai.TypeString},
					},
					Required: []string{"Song_title", "Artist"},
				},
			},
		},
		Required: []string{"songs"},
	}
}

func singleSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"Song_title": {Type: genai.TypeString},
			"Artist":     {Type: genai.TypeString},
			"Summary":    {Type: genai.TypeString},
		},
		Required: []string{"Song_title", "Artist", "Summary"},
	}
}

// parseBatch validates the multi-song shape and caps the batch at batchSize.
// Duplicate titles are left alone; the prompt discourages them but nothing
// downstream requires uniqueness.
func parseBatch(text string) ([]model.RawSuggestion, error) {
	var payload struct {
		Songs []model.RawSuggestion `json:"songs"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &payload); err != nil {
		return nil, fmt.Errorf("response is not valid song JSON: %w", err)
	}
	if len(payload.Songs) < batchSize {
		return nil, fmt.Errorf("model returned %d songs, need at least %d", len(payload.Songs), batchSize)
	}
	return payload.Songs[:batchSize], nil
}

func parseSingle(text string) ([]model.RawSuggestion, error) {
	var song model.RawSuggestion
	if err := json.Unmarshal([]byte(cleanJSON(text)), &song); err != nil {
		return nil, fmt.Errorf("response is not valid song JSON: %w", err)
	}
	if strings.TrimSpace(song.Title) == "" || strings.TrimSpace(song.Artist) == "" {
		return nil, errors.New("model returned a song without title or artist")
	}
	return []model.RawSuggestion{song}, nil
}

// cleanJSON strips markdown code fences that models wrap JSON in even when
// asked not to.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
