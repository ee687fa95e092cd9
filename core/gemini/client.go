package gemini

import (
	"context"
	"strings"
	"time"

	"snapfm/config"
	"snapfm/core/prompt"
	"snapfm/model"

	"google.golang.org/genai"
)

// genRequest describes one model invocation. The zero value of optional
// fields means "not used" (no image, no system instruction, free-text output).
type genRequest struct {
	prompt      string
	system      string
	image       []byte
	mimeType    string
	grounded    bool
	schema      *genai.Schema
	temperature float32
}

// caller is the low-level generation capability the tier machine runs on.
type caller interface {
	generate(ctx context.Context, req genRequest) (string, error)
}

// Client talks to the Gemini API and produces song suggestions from images.
type Client struct {
	api      *genai.Client
	model    string
	grounded bool
	timeout  time.Duration
}

// NewClient builds the Gemini client. A missing API key fails here, not at
// first use.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, &model.ConfigError{Missing: "GOOGLE_API_KEY"}
	}

	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		api:      api,
		model:    cfg.GeminiModel,
		grounded: cfg.GeminiGrounding,
		timeout:  time.Duration(cfg.GeminiTimeout) * time.Second,
	}, nil
}

// SuggestSongs produces the three-song batch for one image.
func (c *Client) SuggestSongs(ctx context.Context, image []byte, mimeType string, prefs model.Preferences) ([]model.RawSuggestion, error) {
	return runTiers(ctx, c, tierInput{
		image:          image,
		mimeType:       mimeType,
		groundedPrompt: groundedMultiPrompt(c.grounded, prefs),
		fallbackPrompt: multiPrompt(prefs),
		convert:        prompt.ConvertBatch,
		schema:         batchSchema(),
		parse:          parseBatch,
	})
}

// SuggestSong produces a single suggestion with a summary, used by the CLI.
func (c *Client) SuggestSong(ctx context.Context, image []byte, mimeType string, prefs model.Preferences) (*model.RawSuggestion, error) {
	songs, err := runTiers(ctx, c, tierInput{
		image:          image,
		mimeType:       mimeType,
		groundedPrompt: groundedSinglePrompt(c.grounded, prefs),
		fallbackPrompt: singlePrompt(prefs),
		convert:        prompt.ConvertSingle,
		schema:         singleSchema(),
		parse:          parseSingle,
	})
	if err != nil {
		return nil, err
	}
	return &songs[0], nil
}

func (c *Client) generate(ctx context.Context, req genRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var parts []*genai.Part
	if len(req.image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.image, req.mimeType))
	}
	parts = append(parts, genai.NewPartFromText(req.prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	genCfg := &genai.GenerateContentConfig{
		Temperature: ptr(req.temperature),
	}
	if req.system != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.system)},
		}
	}
	if req.grounded {
		genCfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.schema != nil {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = req.schema
	}

	resp, err := c.api.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return "", err
	}
	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func ptr[T any](v T) *T {
	return &v
}
