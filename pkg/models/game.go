package models

import "fmt"

// Game is the canonical, merged form of one VR title, combining whatever the
// local manifests and the online catalog know about it.
//
// ID is the only join key between sources; a record without an ID is an
// intermediate value and must not be persisted or merged.
type Game struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"` // HTML-safe rich text
	Version     string       `json:"version,omitempty"`
	ReleaseDate *ReleaseDate `json:"release_date,omitempty"`

	// CommunityScore is the aggregated star rating scaled to 0-100.
	CommunityScore int `json:"community_score,omitempty"`

	IsInstalled      bool   `json:"is_installed"`
	InstallDirectory string `json:"install_directory,omitempty"`
	InstallSize      string `json:"install_size,omitempty"`

	// Local file paths or remote URLs.
	Icon            string `json:"icon,omitempty"`
	CoverImage      string `json:"cover_image,omitempty"`
	BackgroundImage string `json:"background_image,omitempty"`

	// BackgroundImageURLs holds every candidate background the catalog
	// offered, in case the chosen one goes stale.
	BackgroundImageURLs []string `json:"background_image_urls,omitempty"`

	Features   PropertySet `json:"features,omitempty"`
	Platforms  PropertySet `json:"platforms,omitempty"`
	Developers PropertySet `json:"developers,omitempty"`
	Publishers PropertySet `json:"publishers,omitempty"`
	Genres     PropertySet `json:"genres,omitempty"`
	AgeRatings PropertySet `json:"age_ratings,omitempty"`
	Tags       PropertySet `json:"tags,omitempty"`

	Links []Link `json:"links,omitempty"`

	// Source is the branding label of the store this record came from
	// ("Oculus" or "Meta").
	Source string `json:"source,omitempty"`
}

// Link is one ordered (label, URL) pair; duplicates are allowed.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ReleaseDate is a calendar date without a timezone.
type ReleaseDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (d ReleaseDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// NewGame returns an empty record stamped with the given source label.
func NewGame(source string) *Game {
	return &Game{Source: source}
}

// AddLink appends a link; unlike the property sets, links keep duplicates.
func (g *Game) AddLink(label, url string) {
	if url == "" {
		return
	}
	g.Links = append(g.Links, Link{Label: label, URL: url})
}
