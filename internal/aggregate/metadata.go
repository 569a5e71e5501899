package aggregate

import (
	"context"

	"vrhub/internal/oculus"
	"vrhub/internal/translate"
	"vrhub/pkg/models"
	"vrhub/pkg/utils"
)

// Metadata produces the fullest record available for one title: the catalog
// node applied over the local manifest base, falling back to scraping the
// public store page, falling back to the manifest alone. Returns nil only
// when the title is unknown both online and on disk.
func (a *Aggregator) Metadata(ctx context.Context, cfg utils.ImportConfig, appID string) *models.Game {
	var base *models.Game
	if cfg.ImportManifests {
		base = a.Manifests.ResolveGame(ctx, appID, cfg)
	}

	raw, err := a.Client.GetMetadata(ctx, appID, false)
	if err != nil {
		a.Logger.Printf("[metadata] catalog fetch for %s failed: %v", appID, err)
		return a.scrapeFallback(ctx, cfg, appID, base)
	}

	node, err := oculus.ParseMetadata(raw)
	if err != nil {
		a.Logger.Printf("[metadata] catalog response for %s unreadable: %v", appID, err)
		return a.scrapeFallback(ctx, cfg, appID, base)
	}
	if node == nil {
		a.Logger.Printf("[metadata] %s has no catalog entry", appID)
		return a.scrapeFallback(ctx, cfg, appID, base)
	}

	return a.Translator.Apply(node, base, cfg)
}

func (a *Aggregator) scrapeFallback(ctx context.Context, cfg utils.ImportConfig, appID string, base *models.Game) *models.Game {
	fetcher, ok := a.Client.(oculus.StorePageFetcher)
	if !ok {
		return base
	}

	pageHTML, err := fetcher.GetStorePage(ctx, appID)
	if err != nil {
		a.Logger.Printf("[metadata] store page for %s unavailable: %v", appID, err)
		return base
	}
	page, err := oculus.ScrapeStorePage(pageHTML, a.Logger)
	if err != nil {
		a.Logger.Printf("[metadata] store page for %s: %v", appID, err)
		return base
	}

	return applyStorePage(page, base, cfg, appID)
}

// applyStorePage maps scraped page data onto a record, mirroring what the
// translator does for catalog nodes.
func applyStorePage(page *oculus.StorePageData, base *models.Game, cfg utils.ImportConfig, appID string) *models.Game {
	g := base
	if g == nil {
		g = models.NewGame(cfg.Branding)
		g.ID = appID
	}

	if page.Name != "" {
		g.Name = page.Name
	}
	if page.Description != "" {
		g.Description = page.Description
	}
	g.Version = page.Version
	g.InstallSize = page.SpaceRequired
	if page.AverageRating > 0 {
		g.CommunityScore = int(page.AverageRating * 20)
	}
	g.ReleaseDate = translate.ParseReleaseDate(page.ReleaseDateRaw)

	g.Features.Add("VR")
	for _, mode := range page.GameModes {
		g.Features.Add(mode)
	}
	for _, mode := range page.PlayerModes {
		g.Features.Add(mode)
	}
	for _, platform := range page.Platforms {
		g.Platforms.Add(platform)
	}
	for _, genre := range page.Genres {
		g.Genres.Add(genre)
	}
	for _, rating := range page.AgeRatings {
		g.AgeRatings.Add(rating)
	}
	for _, dev := range translate.SplitCompanies(page.DeveloperText) {
		g.Developers.Add(dev)
	}
	for _, pub := range translate.SplitCompanies(page.PublisherText) {
		g.Publishers.Add(pub)
	}

	if g.BackgroundImage == "" {
		g.BackgroundImage = page.ImageURL
	}
	g.AddLink(cfg.Branding+" Store Page", oculus.StoreURL(g.ID))
	if page.Website != "" {
		g.AddLink("Website", page.Website)
	}

	return g
}
