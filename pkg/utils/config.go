package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("VRHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("VRHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "vrhub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("VRHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

// BackgroundSource selects which catalog image becomes the background.
type BackgroundSource string

const (
	BackgroundHero        BackgroundSource = "hero"
	BackgroundTrailer     BackgroundSource = "trailer"
	BackgroundScreenshots BackgroundSource = "screenshots"
)

// ImportConfig is the immutable per-run configuration for one import pass.
// It is read once from the environment and passed by value; runtime toggles
// never mutate a running import.
type ImportConfig struct {
	// Local discovery.
	LibraryPaths []string // library roots holding Software/ + Manifests/
	OculusPath   string   // central client installation directory

	ImportManifests bool

	// Online entitlement buckets.
	ImportRift   bool
	ImportQuest  bool
	ImportGearGo bool

	// Entitlement query doc ids rotate upstream, so they stay configurable.
	RiftDocID   string
	QuestDocID  string
	GearGoDocID string

	BackgroundSource BackgroundSource

	// Branding affects the source property and generated store-link text
	// ("Oculus" or "Meta").
	Branding string

	// Optional JSON file overriding the translator token tables.
	TokenTablesPath string
}

func LoadImportConfig() ImportConfig {
	cfg := ImportConfig{
		LibraryPaths:     splitPaths(os.Getenv("VRHUB_LIBRARY_PATHS")),
		OculusPath:       os.Getenv("VRHUB_OCULUS_PATH"),
		ImportManifests:  envBool("VRHUB_IMPORT_MANIFESTS", true),
		ImportRift:       envBool("VRHUB_IMPORT_RIFT", false),
		ImportQuest:      envBool("VRHUB_IMPORT_QUEST", false),
		ImportGearGo:     envBool("VRHUB_IMPORT_GEARGO", false),
		RiftDocID:        envString("VRHUB_RIFT_DOC_ID", "4850747515044496"),
		QuestDocID:       envString("VRHUB_QUEST_DOC_ID", "4850747515044496"),
		GearGoDocID:      envString("VRHUB_GEARGO_DOC_ID", "4850747515044496"),
		BackgroundSource: BackgroundSource(envString("VRHUB_BACKGROUND_SOURCE", string(BackgroundTrailer))),
		Branding:         envString("VRHUB_BRANDING", "Oculus"),
		TokenTablesPath:  os.Getenv("VRHUB_TOKEN_TABLES"),
	}

	switch cfg.BackgroundSource {
	case BackgroundHero, BackgroundTrailer, BackgroundScreenshots:
	default:
		cfg.BackgroundSource = BackgroundTrailer
	}

	return cfg
}

// ImportAnyOnline reports whether at least one entitlement bucket is enabled.
func (c ImportConfig) ImportAnyOnline() bool {
	return c.ImportRift || c.ImportQuest || c.ImportGearGo
}

func splitPaths(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
