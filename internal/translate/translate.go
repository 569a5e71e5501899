package translate

import (
	"log"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"vrhub/internal/oculus"
	"vrhub/pkg/models"
	"vrhub/pkg/utils"
)

// Translator deterministically maps one catalog metadata node onto a game
// record. When a manifest-derived base record is supplied it is mutated in
// place so install data survives remote enrichment.
type Translator struct {
	tables Tables
	logger *log.Logger
	randN  func(n int) int // uniform screenshot pick, swappable in tests
}

func New(tables Tables, logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.Default()
	}
	return &Translator{
		tables: tables,
		logger: logger,
		randN:  rand.Intn,
	}
}

// Apply fills base (or a fresh record when base is nil) from node.
func (t *Translator) Apply(node *oculus.Node, base *models.Game, cfg utils.ImportConfig) *models.Game {
	g := base
	if g == nil {
		g = models.NewGame(cfg.Branding)
	}

	if g.ID == "" {
		g.ID = node.ID
	}
	if node.DisplayName != "" {
		g.Name = node.DisplayName
	}
	g.Description = CleanDescription(node.DisplayLongDescription)

	if node.LatestSupportedBinary != nil {
		g.Version = node.LatestSupportedBinary.Version
		if node.LatestSupportedBinary.TotalInstalledSpace != "" {
			g.InstallSize = node.LatestSupportedBinary.TotalInstalledSpace
		} else {
			g.InstallSize = node.LatestSupportedBinary.RequiredSpaceAdjusted
		}
	}

	if node.ReleaseInfo != nil {
		g.ReleaseDate = ParseReleaseDate(node.ReleaseInfo.DisplayDate)
	}

	g.CommunityScore = Score(node.RatingAggregates)

	t.applyFeatures(node, g)
	t.applyPlatforms(node, g)

	for _, dev := range SplitCompanies(node.DeveloperName) {
		g.Developers.Add(dev)
	}
	for _, pub := range SplitCompanies(node.PublisherName) {
		g.Publishers.Add(pub)
	}
	for _, genre := range node.GenreNames {
		g.Genres.Add(genre)
	}
	if node.IarcCert != nil && node.IarcCert.IarcRating != nil {
		g.AgeRatings.Add(node.IarcCert.IarcRating.AgeRatingText)
	}

	if tag := t.comfortTag(node.ComfortRating); tag != "" {
		g.Tags.Add(tag)
	}

	if g.Icon == "" && node.IconImage != nil {
		g.Icon = node.IconImage.URI
	}
	t.applyBackground(node, g, cfg.BackgroundSource)

	g.AddLink(cfg.Branding+" Store Page", oculus.StoreURL(g.ID))
	if node.WebsiteURL != "" {
		g.AddLink("Website", node.WebsiteURL)
	}

	return g
}

// Score collapses a star-rating histogram to a 0-100 community score using
// integer truncation: sum(star*count)*20 / sum(count).
func Score(histogram []oculus.StarRating) int {
	total := 0
	weighted := 0
	for _, h := range histogram {
		total += h.Count
		weighted += h.StarRating * h.Count
	}
	if total == 0 {
		return 0
	}

	score := weighted * 20 / total
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

var releaseDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02/01/2006",
}

// ParseReleaseDate parses the human-readable display date the API returns.
// The format varies by locale and API revision; anything unparsable yields
// nil rather than an error.
func ParseReleaseDate(display string) *models.ReleaseDate {
	display = strings.TrimSpace(display)
	if display == "" {
		return nil
	}
	for _, layout := range releaseDateLayouts {
		if parsed, err := time.Parse(layout, display); err == nil {
			return &models.ReleaseDate{
				Year:  parsed.Year(),
				Month: int(parsed.Month()),
				Day:   parsed.Day(),
			}
		}
	}
	return nil
}

var legalSuffix = regexp.MustCompile(`(?i)^(llc|ltd|inc|gmbh)\.?$`)

// SplitCompanies splits a developer/publisher field that may list several
// companies separated by ", " or " / ". A fragment that is only a legal
// suffix came from a trailing ", Ltd." and is dropped rather than becoming a
// bogus company.
func SplitCompanies(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	value = strings.ReplaceAll(value, " / ", ", ")
	parts := strings.Split(value, ", ")

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || legalSuffix.MatchString(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (t *Translator) comfortTag(token string) string {
	if token == "" {
		return ""
	}
	label, ok := t.tables.Comfort[token]
	if !ok {
		t.logger.Printf("[translate] unknown comfort rating token %q", token)
		return ""
	}
	return "VR Comfort: " + label
}

func (t *Translator) applyFeatures(node *oculus.Node, g *models.Game) {
	g.Features.Add("VR")

	for _, mode := range node.UserInteractionModeNames {
		if mapped, ok := t.tables.InteractionModes[mode]; ok {
			g.Features.Add(mapped)
		} else {
			t.logger.Printf("[translate] unknown interaction mode %q", mode)
			g.Features.Add(mode)
		}
	}

	for _, mode := range node.SupportedPlayerModes {
		if mapped, ok := t.tables.PlayerModes[mode]; ok {
			g.Features.Add(mapped)
		} else {
			t.logger.Printf("[translate] dropping unknown player mode %q", mode)
		}
	}

	for _, device := range node.SupportedInputDeviceNames {
		if mapped, ok := t.tables.InputDevices[device]; ok {
			g.Features.Add(mapped)
		} else {
			// the API already sends display names here
			g.Features.Add(device)
		}
	}
}

func (t *Translator) applyPlatforms(node *oculus.Node, g *models.Game) {
	for _, token := range node.SupportedHmdPlatforms {
		if mapped, ok := t.tables.HmdPlatforms[token]; ok {
			g.Platforms.Add(mapped)
		} else {
			t.logger.Printf("[translate] unknown HMD platform %q", token)
			g.Platforms.Add(token)
		}
	}
	if node.Platform == "PC" {
		g.Platforms.AddSpec("pc_windows")
	}
}

func (t *Translator) applyBackground(node *oculus.Node, g *models.Game, source utils.BackgroundSource) {
	var hero, trailer string
	if node.Hero != nil {
		hero = node.Hero.URI
	}
	if node.Trailer != nil && node.Trailer.Thumbnail != nil {
		trailer = node.Trailer.Thumbnail.URI
	}

	var screenshots []string
	for _, s := range node.Screenshots {
		if s.URI != "" {
			screenshots = append(screenshots, s.URI)
		}
	}

	g.BackgroundImageURLs = g.BackgroundImageURLs[:0]
	if hero != "" {
		g.BackgroundImageURLs = append(g.BackgroundImageURLs, hero)
	}
	if trailer != "" {
		g.BackgroundImageURLs = append(g.BackgroundImageURLs, trailer)
	}
	g.BackgroundImageURLs = append(g.BackgroundImageURLs, screenshots...)

	var screenshot string
	if len(screenshots) > 0 {
		screenshot = screenshots[t.randN(len(screenshots))]
	}

	// whatever the preference, hero is the last resort
	switch source {
	case utils.BackgroundScreenshots:
		g.BackgroundImage = firstNonEmpty(screenshot, trailer, hero)
	case utils.BackgroundHero:
		g.BackgroundImage = firstNonEmpty(hero, trailer, screenshot)
	default: // trailer thumbnail
		g.BackgroundImage = firstNonEmpty(trailer, screenshot, hero)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
