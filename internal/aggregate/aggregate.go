package aggregate

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"vrhub/internal/manifest"
	"vrhub/internal/oculus"
	"vrhub/internal/sync"
	"vrhub/internal/translate"
	"vrhub/pkg/models"
	"vrhub/pkg/utils"
)

// GameStore is the persistence surface the aggregator needs: membership
// checks for new-title detection and a bulk save at the end of a run.
type GameStore interface {
	Has(ctx context.Context, id string) (bool, error)
	SaveAll(ctx context.Context, games []models.Game) error
}

// EventSink receives import progress events. *sync.Hub satisfies it.
type EventSink interface {
	BroadcastEvent(ev sync.ImportEvent)
}

// Notifier announces newly discovered titles to subscribed peers.
type Notifier interface {
	BroadcastNewGame(id, name string)
}

// Aggregator reconciles the three views of a library (online entitlements,
// on-disk manifests, the stored catalog) into one record set keyed by app id.
type Aggregator struct {
	Manifests  *manifest.Repository
	Client     oculus.Client
	Translator *translate.Translator
	Store      GameStore // optional
	Events     EventSink // optional
	Notifier   Notifier  // optional
	Logger     *log.Logger
}

func New(repo *manifest.Repository, client oculus.Client, tr *translate.Translator, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		Manifests:  repo,
		Client:     client,
		Translator: tr,
		Logger:     logger,
	}
}

// Import runs one full library pass. The online entitlement lists are
// fetched first so their descriptive fields win; manifests then contribute
// install state, and ids nobody has seen before get a one-off name lookup.
// Every id appears at most once in the result.
//
// A cancelled context stops the run between titles and returns whatever was
// gathered, without error. A missing login skips the online half and returns
// the local results alongside oculus.ErrNotAuthenticated so callers can
// distinguish "log in again" from a broken run.
func (a *Aggregator) Import(ctx context.Context, cfg utils.ImportConfig) ([]models.Game, error) {
	runID := uuid.NewString()
	start := time.Now()
	a.emit(sync.ImportEvent{Type: sync.EventImportStarted, RunID: runID})

	byID := make(map[string]*models.Game)
	var order []string
	var runErr error

	if cfg.ImportAnyOnline() {
		if err := a.importOnline(ctx, cfg, byID, &order); err != nil {
			if errors.Is(err, oculus.ErrNotAuthenticated) {
				a.Logger.Printf("[import] not logged in, continuing with local data only")
				runErr = err
			} else {
				a.Logger.Printf("[import] online import failed: %v", err)
			}
		}
	}

	if cfg.ImportManifests && ctx.Err() == nil {
		a.importLocal(ctx, cfg, byID, &order)
	}

	games := make([]models.Game, 0, len(order))
	newCount := 0
	for _, id := range order {
		g := byID[id]
		games = append(games, *g)

		isNew := true
		if a.Store != nil {
			if has, err := a.Store.Has(ctx, g.ID); err == nil && has {
				isNew = false
			}
		}
		if isNew {
			newCount++
			if a.Notifier != nil {
				a.Notifier.BroadcastNewGame(g.ID, g.Name)
			}
		}
		a.emit(sync.ImportEvent{
			Type:      sync.EventImportGame,
			RunID:     runID,
			GameID:    g.ID,
			Name:      g.Name,
			Installed: g.IsInstalled,
			New:       isNew,
		})
	}

	if a.Store != nil && len(games) > 0 && ctx.Err() == nil {
		if err := a.Store.SaveAll(ctx, games); err != nil {
			a.Logger.Printf("[import] saving catalog: %v", err)
		}
	}

	a.emit(sync.ImportEvent{
		Type:       sync.EventImportFinished,
		RunID:      runID,
		Total:      len(games),
		NewCount:   newCount,
		DurationMS: time.Since(start).Milliseconds(),
	})
	a.Logger.Printf("[import] run %s finished: %d titles (%d new) in %s",
		runID, len(games), newCount, time.Since(start).Round(time.Millisecond))

	return games, runErr
}

func (a *Aggregator) importOnline(ctx context.Context, cfg utils.ImportConfig, byID map[string]*models.Game, order *[]string) error {
	token, err := a.Client.GetAccessToken(ctx)
	if err != nil {
		return err
	}

	for _, bucket := range oculus.EnabledBuckets(cfg) {
		if ctx.Err() != nil {
			return nil
		}

		raw, err := a.Client.GetLibrary(ctx, token, bucket.DocID)
		if err != nil {
			a.Logger.Printf("[import] %s entitlements unavailable: %v", bucket.Name, err)
			continue
		}
		items, err := oculus.ParseLibrary(raw)
		if err != nil {
			a.Logger.Printf("[import] %s entitlements unreadable: %v", bucket.Name, err)
			continue
		}

		for _, item := range items {
			if ctx.Err() != nil {
				return nil
			}
			if _, ok := byID[item.ID]; ok {
				continue
			}
			g := models.NewGame(cfg.Branding)
			g.ID = item.ID
			g.Name = item.DisplayName
			if item.Platform == "PC" {
				g.Platforms.AddSpec("pc_windows")
			}
			if item.Cover != nil {
				g.CoverImage = item.Cover.URI
			}
			byID[item.ID] = g
			*order = append(*order, item.ID)
		}
		a.Logger.Printf("[import] %s bucket: %d entitlements", bucket.Name, len(items))
	}
	return nil
}

// importLocal folds manifest records into the online set. Install state
// always comes from disk; everything descriptive stays as the catalog said.
func (a *Aggregator) importLocal(ctx context.Context, cfg utils.ImportConfig, byID map[string]*models.Game, order *[]string) {
	for _, local := range a.Manifests.Games(ctx, cfg, false) {
		if ctx.Err() != nil {
			return
		}
		local := local

		if existing, ok := byID[local.ID]; ok {
			existing.IsInstalled = local.IsInstalled
			existing.InstallDirectory = local.InstallDirectory
			if existing.Icon == "" {
				existing.Icon = local.Icon
			}
			if existing.CoverImage == "" {
				existing.CoverImage = local.CoverImage
			}
			continue
		}

		// not in any entitlement list: likely a fresh install the catalog
		// hasn't caught up with, so the manifest's canonical name is all we
		// have until one metadata lookup fixes it
		a.enrichName(ctx, &local)
		byID[local.ID] = &local
		*order = append(*order, local.ID)
	}
}

// enrichName replaces a manifest canonical name with the store display name,
// paying for the locale round trip so the name is stable. Any failure keeps
// the manifest name.
func (a *Aggregator) enrichName(ctx context.Context, g *models.Game) {
	if a.Store != nil {
		if has, err := a.Store.Has(ctx, g.ID); err == nil && has {
			// already cataloged under its proper name
			return
		}
	}

	raw, err := a.Client.GetMetadata(ctx, g.ID, true)
	if err != nil {
		a.Logger.Printf("[import] name lookup for %s failed: %v", g.ID, err)
		return
	}
	node, err := oculus.ParseMetadata(raw)
	if err != nil || node == nil {
		a.Logger.Printf("[import] no catalog entry for %s, keeping manifest name %q", g.ID, g.Name)
		return
	}
	if node.DisplayName != "" {
		g.Name = node.DisplayName
	}
}

func (a *Aggregator) emit(ev sync.ImportEvent) {
	if a.Events != nil {
		a.Events.BroadcastEvent(ev)
	}
}
