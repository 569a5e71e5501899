package manifest

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"vrhub/pkg/models"
	"vrhub/pkg/utils"
)

// filenames come in pairs like Foo.json / Foo_assets.json; stripping the
// suffix groups both under one logical manifest
var normalizeFilename = regexp.MustCompile(`(_assets)?\.json$`)

// Repository discovers locally known titles by reading manifest files from
// every library root plus the central installation's CoreData.
type Repository struct {
	paths  PathProvider
	logger *log.Logger
}

func NewRepository(paths PathProvider, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Default()
	}
	return &Repository{paths: paths, logger: logger}
}

// Manifests yields one manifest per unique app id: library roots first (in
// order, first seen wins), then the central manifest store for titles that
// are owned but not installed. Cancellation is polled between roots and
// files; whatever was gathered so far is returned.
func (r *Repository) Manifests(ctx context.Context, installedOnly bool) []*Manifest {
	roots := r.paths.LibraryPaths()
	if len(roots) == 0 && r.paths.InstallPath() == "" {
		r.logger.Printf("[manifest] cannot ascertain library or installation locations")
		return nil
	}

	seen := make(map[string]bool)
	var out []*Manifest

	for _, root := range roots {
		if ctx.Err() != nil {
			return out
		}
		for _, m := range r.readManifestDir(ctx, root) {
			if seen[m.AppID] {
				continue
			}
			seen[m.AppID] = true
			m.LibraryBasePath = root
			out = append(out, m)
		}
	}

	if installedOnly || ctx.Err() != nil {
		return out
	}
	installDir := r.paths.InstallPath()
	if installDir == "" {
		return out
	}

	// titles owned online but not installed only exist here
	coreData := filepath.Join(installDir, "CoreData")
	if _, err := os.Stat(filepath.Join(coreData, "Manifests")); err != nil {
		return out
	}
	for _, m := range r.readManifestDir(ctx, coreData) {
		if seen[m.AppID] {
			continue
		}
		seen[m.AppID] = true
		out = append(out, m)
	}

	return out
}

func (r *Repository) readManifestDir(ctx context.Context, base string) []*Manifest {
	dir := filepath.Join(base, "Manifests")

	entries, err := os.ReadDir(dir)
	if err != nil {
		r.logger.Printf("[manifest] cannot list %s: %v", dir, err)
		return nil
	}

	// group the main and _assets variants of each title together
	groups := make(map[string][]string)
	var order []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := normalizeFilename.ReplaceAllString(name, "")
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], name)
	}

	var out []*Manifest
	for _, key := range order {
		if ctx.Err() != nil {
			return out
		}

		// prefer the non-assets manifest: if the title is installed, only
		// that one carries install data
		fileName := groups[key][0]
		for _, candidate := range groups[key] {
			if !strings.HasSuffix(candidate, "_assets.json") {
				fileName = candidate
				break
			}
		}

		path := filepath.Join(dir, fileName)
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Printf("[manifest] cannot read %s: %v", path, err)
			continue
		}

		m, err := Parse(data)
		if err != nil {
			r.logger.Printf("[manifest] skipping %s: %v", path, err)
			continue
		}

		// the client also writes manifests for non-store software it has
		// seen running; those never belong in the library
		if m.ThirdParty || m.AppID == "" {
			continue
		}

		m.CanonicalName = strings.TrimSuffix(m.CanonicalName, "_assets")
		out = append(out, m)
	}

	return out
}

// Games maps discovered manifests to game records. With minimal set, only
// identifier, name and install state are filled (fast path for a first
// import); otherwise store assets are resolved into icon/cover paths.
func (r *Repository) Games(ctx context.Context, cfg utils.ImportConfig, minimal bool) []models.Game {
	manifests := r.Manifests(ctx, false)

	out := make([]models.Game, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, *r.gameFromManifest(m, cfg, minimal))
	}
	return out
}

// Resolve returns the first manifest matching the id, or nil.
func (r *Repository) Resolve(ctx context.Context, appID string, installedOnly bool) *Manifest {
	for _, m := range r.Manifests(ctx, installedOnly) {
		if m.AppID == appID {
			return m
		}
	}
	return nil
}

// ResolveGame is Resolve followed by the manifest-to-record mapping.
func (r *Repository) ResolveGame(ctx context.Context, appID string, cfg utils.ImportConfig) *models.Game {
	m := r.Resolve(ctx, appID, false)
	if m == nil {
		return nil
	}
	return r.gameFromManifest(m, cfg, false)
}

func (r *Repository) gameFromManifest(m *Manifest, cfg utils.ImportConfig, minimal bool) *models.Game {
	exe := m.ExecutableFullPath()
	installed := exe != "" && fileExists(exe)

	g := models.NewGame(cfg.Branding)
	g.ID = m.AppID
	g.Name = m.CanonicalName
	g.IsInstalled = installed
	if installed {
		g.InstallDirectory = m.InstallationPath()
	}

	if minimal {
		return g
	}

	icon := r.assetPath(m.CanonicalName, "icon_image.jpg")
	if icon == "" && installed {
		// store icon missing from the asset cache; the executable has one
		icon = exe
	}
	g.Icon = icon
	g.CoverImage = r.assetPath(m.CanonicalName, "cover_square_image.jpg")

	return g
}

// assetPath looks up a cached store asset for the title, returning "" when
// the cache has none.
func (r *Repository) assetPath(canonicalName, fileName string) string {
	installDir := r.paths.InstallPath()
	if installDir == "" {
		return ""
	}
	path := filepath.Join(installDir, "CoreData", "Software", "StoreAssets", canonicalName+"_assets", fileName)
	if !fileExists(path) {
		return ""
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
