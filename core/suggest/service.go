// Package suggest runs the photo-to-songs pipeline: generation, then
// per-song catalog resolution with graceful degradation.
package suggest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"snapfm/logger"
	"snapfm/model"
)

const searchBaseURL = "https://www.google.com/search?q="

// Generator produces raw suggestions from an image.
type Generator interface {
	SuggestSongs(ctx context.Context, image []byte, mimeType string, prefs model.Preferences) ([]model.RawSuggestion, error)
	SuggestSong(ctx context.Context, image []byte, mimeType string, prefs model.Preferences) (*model.RawSuggestion, error)
}

// TrackSearcher resolves one (title, artist) pair against the catalog.
// (nil, nil) means no match.
type TrackSearcher interface {
	SearchTrack(ctx context.Context, title, artist string) (*model.CatalogRecord, error)
}

// Service ties the generator and the catalog together.
type Service struct {
	generator Generator
	searcher  TrackSearcher // nil marks every entry spotify_error, the service still answers
}

func NewService(generator Generator, searcher TrackSearcher) *Service {
	return &Service{generator: generator, searcher: searcher}
}

// Suggest generates the three-song batch for an image and resolves each
// entry. The response keeps generation order; catalog trouble degrades
// individual entries, never the request. It fails only when generation fails
// or when every generated entry was malformed.
func (s *Service) Suggest(ctx context.Context, image []byte, mimeType string, prefs model.Preferences) (*model.SuggestResponse, error) {
	raw, err := s.generator.SuggestSongs(ctx, image, mimeType, prefs)
	if err != nil {
		return nil, err
	}

	songs := s.resolveAll(ctx, raw)
	if len(songs) == 0 {
		return nil, model.ErrNoValidSuggestions
	}

	logger.Info("processed song suggestions",
		logger.Int("generated", len(raw)),
		logger.Int("returned", len(songs)))
	return &model.SuggestResponse{Songs: songs}, nil
}

// SuggestOne is the single-song variant used by the CLI. Same pipeline,
// cardinality one, summary included.
func (s *Service) SuggestOne(ctx context.Context, image []byte, mimeType string, prefs model.Preferences) (*model.ResolvedSuggestion, error) {
	raw, err := s.generator.SuggestSong(ctx, image, mimeType, prefs)
	if err != nil {
		return nil, err
	}
	if raw == nil || strings.TrimSpace(raw.Title) == "" || strings.TrimSpace(raw.Artist) == "" {
		return nil, model.ErrNoValidSuggestions
	}

	resolved := s.resolve(ctx, *raw)
	return &resolved, nil
}

// resolveAll fans the batch out to the catalog concurrently and reassembles
// it in generation order. Malformed entries are logged and dropped.
func (s *Service) resolveAll(ctx context.Context, raw []model.RawSuggestion) []model.ResolvedSuggestion {
	slots := make([]*model.ResolvedSuggestion, len(raw))

	var wg sync.WaitGroup
	for i, entry := range raw {
		if strings.TrimSpace(entry.Title) == "" || strings.TrimSpace(entry.Artist) == "" {
			logger.Warn("skipping song with missing title or artist", logger.Int("index", i))
			continue
		}
		wg.Add(1)
		go func(i int, entry model.RawSuggestion) {
			defer wg.Done()
			r := s.resolve(ctx, entry)
			slots[i] = &r
		}(i, entry)
	}
	wg.Wait()

	songs := make([]model.ResolvedSuggestion, 0, len(raw))
	for _, r := range slots {
		if r != nil {
			songs = append(songs, *r)
		}
	}
	return songs
}

// resolve maps one raw suggestion to a response entry. It always returns a
// value; any catalog error only marks the entry failed.
func (s *Service) resolve(ctx context.Context, entry model.RawSuggestion) model.ResolvedSuggestion {
	out := model.ResolvedSuggestion{
		SongTitle:       entry.Title,
		Artist:          entry.Artist,
		Summary:         entry.Rationale,
		GoogleSearchURL: SearchURL(entry.Title, entry.Artist),
	}

	var record *model.CatalogRecord
	if s.searcher != nil {
		var err error
		record, err = s.searcher.SearchTrack(ctx, entry.Title, entry.Artist)
		if err != nil {
			logger.Warn("spotify search failed",
				logger.String("title", entry.Title),
				logger.String("artist", entry.Artist),
				logger.ErrorField(err))
			record = nil
		}
	}

	if record == nil {
		out.SpotifyError = true
		return out
	}

	out.SpotifyURL = &record.PublicURL
	out.SpotifyID = &record.CatalogID
	if record.PreviewURL != "" {
		out.PreviewURL = &record.PreviewURL
	}
	return out
}

// SearchURL builds the deterministic web-search fallback link for a song.
func SearchURL(title, artist string) string {
	query := fmt.Sprintf("%s %s song", title, artist)
	return searchBaseURL + url.QueryEscape(query)
}
