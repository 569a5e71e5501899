package oculus

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StorePageData is what the public store page itself gives away. This was
// the original metadata source before the graph endpoints were found and
// survives as a fallback when they fail.
type StorePageData struct {
	Name          string
	Description   string
	AverageRating float64 // out of 5, 0 when absent
	ImageURL      string

	GameModes      []string
	PlayerModes    []string
	TrackingModes  []string
	Controllers    []string
	Platforms      []string
	Genres         []string
	Languages      []string
	Version        string
	DeveloperText  string
	PublisherText  string
	Website        string
	ReleaseDateRaw string
	SpaceRequired  string
	AgeRatings     []string
}

type storePageJSON struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Image           []string `json:"image"`
	AggregateRating *struct {
		RatingValue float64 `json:"ratingValue"`
	} `json:"aggregateRating"`
}

// ScrapeStorePage extracts metadata from the store page HTML: the json-ld
// meta block plus the app-details key/value rows.
func ScrapeStorePage(pageHTML string, logger *log.Logger) (*StorePageData, error) {
	if logger == nil {
		logger = log.Default()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse store page: %w", err)
	}

	data := &StorePageData{}
	found := false

	if content, ok := doc.Find(`meta[name="json-ld"]`).Attr("content"); ok {
		var ld storePageJSON
		if err := json.Unmarshal([]byte(html.UnescapeString(content)), &ld); err != nil {
			logger.Printf("[oculus] bad json-ld block: %v", err)
		} else {
			found = true
			data.Name = ld.Name
			data.Description = ld.Description
			if len(ld.Image) > 0 {
				data.ImageURL = ld.Image[0]
			}
			if ld.AggregateRating != nil {
				data.AverageRating = ld.AggregateRating.RatingValue
			}
		}
	}

	doc.Find("div.app-details-row").Each(func(_ int, row *goquery.Selection) {
		key := strings.TrimSpace(row.Find("div.app-details-row__left").Text())
		value := strings.TrimSpace(row.Find("div.app-details-row__right").Text())
		if key == "" || value == "" {
			return
		}
		found = true

		switch key {
		case "Game Modes":
			data.GameModes = splitDetails(value)
		case "Supported Player Modes":
			data.PlayerModes = splitDetails(value)
		case "Supported Tracking Modes":
			data.TrackingModes = splitDetails(value)
		case "Supported Controllers":
			data.Controllers = splitDetails(value)
		case "Supported Platforms":
			data.Platforms = splitDetails(value)
		case "Genres":
			data.Genres = splitDetails(value)
		case "Languages":
			data.Languages = splitDetails(value)
		case "Version", "Version + Release Notes":
			data.Version = value
		case "Developer":
			data.DeveloperText = value
		case "Publisher":
			data.PublisherText = value
		case "Website":
			data.Website = value
		case "Release Date":
			data.ReleaseDateRaw = value
		case "Space Required":
			data.SpaceRequired = value
		}
	})

	doc.Find("div.app-age-rating-icon__text").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			data.AgeRatings = append(data.AgeRatings, text)
		}
	})

	if !found {
		return nil, fmt.Errorf("store page has no metadata blocks")
	}
	return data, nil
}

func splitDetails(value string) []string {
	parts := strings.Split(value, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
