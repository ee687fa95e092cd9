package model

// RawSuggestion represents one song pick as returned by the generative model,
// before any catalog lookup. Not persisted.
type RawSuggestion struct {
	Title     string `json:"Song_title"`
	Artist    string `json:"Artist"`
	Rationale string `json:"Summary,omitempty"` // only populated in single-song mode
}

// CatalogRecord represents one matched track in the music catalog.
// At most one per query; nil means no match.
type CatalogRecord struct {
	CatalogID       string
	CanonicalTitle  string
	CanonicalArtist string
	PreviewURL      string // may be empty, catalog does not always expose previews
	PublicURL       string
}

// ResolvedSuggestion is one entry of the API response. Nullable fields are
// pointers so missing catalog metadata marshals as JSON null.
type ResolvedSuggestion struct {
	SongTitle       string  `json:"song_title"`
	Artist          string  `json:"artist"`
	Summary         string  `json:"summary"`
	SpotifyURL      *string `json:"spotify_url"`
	PreviewURL      *string `json:"preview_url"`
	SpotifyID       *string `json:"spotify_id"`
	GoogleSearchURL string  `json:"google_search_url"`
	SpotifyError    bool    `json:"spotify_error"`
}

// SuggestResponse is the top-level body returned by POST /suggest-song.
type SuggestResponse struct {
	Songs []ResolvedSuggestion `json:"songs"`
}

// Preferences carries the optional request fields that shape the prompt.
type Preferences struct {
	Language string
	Genre    string
	Context  string
}
