package spotify

import (
	"context"
	"fmt"
	"strings"

	"snapfm/logger"
	"snapfm/model"

	"github.com/zmb3/spotify/v2"
)

// SearchTrack resolves one (title, artist) pair to at most one catalog
// record. Query variants are tried in order and the first hit wins; a
// variant's transport or parse failure only moves on to the next variant.
// (nil, nil) means no variant matched, which is not an error.
func (c *Client) SearchTrack(ctx context.Context, title, artist string) (*model.CatalogRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: track name cannot be empty", model.ErrInvalidArgument)
	}
	artist = strings.TrimSpace(artist)

	api, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	for _, query := range queryVariants(title, artist) {
		record, err := c.searchOnce(ctx, api, query)
		if err != nil {
			logger.Warn("spotify search variant failed",
				logger.String("query", query),
				logger.ErrorField(err))
			continue
		}
		if record != nil {
			return record, nil
		}
		logger.Debug("no tracks found for query", logger.String("query", query))
	}

	return nil, nil
}

// queryVariants builds the ordered list of search queries. Field-qualified
// lookups are precise but brittle when the model's artist string does not
// match the catalog's formatting; the free-text form trades precision for
// recall, and a title-only lookup is the last resort. Multi-artist strings
// like "A, B" qualify on the first name only.
func queryVariants(title, artist string) []string {
	var variants []string
	if artist != "" {
		if first, _, found := strings.Cut(artist, ","); found {
			variants = append(variants, fmt.Sprintf("track:%s artist:%s", title, strings.TrimSpace(first)))
		} else {
			variants = append(variants, fmt.Sprintf("track:%s artist:%s", title, artist))
		}
		variants = append(variants, title+" "+artist)
	} else {
		variants = append(variants, title)
	}
	variants = append(variants, "track:"+title)
	return variants
}

func (c *Client) searchOnce(ctx context.Context, api *spotify.Client, query string) (*model.CatalogRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, err
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, nil
	}
	return recordFromTrack(&result.Tracks.Tracks[0]), nil
}

func recordFromTrack(t *spotify.FullTrack) *model.CatalogRecord {
	rec := &model.CatalogRecord{
		CatalogID:      string(t.ID),
		CanonicalTitle: t.Name,
		PreviewURL:     t.PreviewURL,
		PublicURL:      t.ExternalURLs["spotify"],
	}
	if len(t.Artists) > 0 {
		rec.CanonicalArtist = t.Artists[0].Name
	} else {
		rec.CanonicalArtist = "Unknown"
	}
	return rec
}
