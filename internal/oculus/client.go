package oculus

import (
	"context"
	"errors"

	"vrhub/pkg/utils"
)

// ErrNotAuthenticated means online import is enabled but no valid access
// token could be obtained. Callers branch on this with errors.Is so it can
// be surfaced as "log in again" rather than a generic import failure.
var ErrNotAuthenticated = errors.New("oculus: not authenticated")

// Client is the capability surface of the unofficial catalog API. Transport
// errors surface as-is; nothing here retries.
type Client interface {
	// GetMetadata fetches the per-title metadata document. setLocale trades
	// an extra round trip for locale-independent (en_US) field values;
	// callers set it for first-import naming accuracy.
	GetMetadata(ctx context.Context, appID string, setLocale bool) (string, error)

	// GetLibrary fetches the owned-entitlement document for one platform
	// bucket.
	GetLibrary(ctx context.Context, accessToken, docID string) (string, error)

	// GetAccessToken yields the browser-session token, or
	// ErrNotAuthenticated when the session has none.
	GetAccessToken(ctx context.Context) (string, error)
}

// StorePageFetcher is implemented by clients that can also return the raw
// store page HTML, enabling the scrape fallback.
type StorePageFetcher interface {
	GetStorePage(ctx context.Context, appID string) (string, error)
}

// Bucket is one platform family of entitlements.
type Bucket struct {
	Name  string
	DocID string
}

// EnabledBuckets expands the run configuration into the bucket list to
// fetch, in a fixed order.
func EnabledBuckets(cfg utils.ImportConfig) []Bucket {
	var out []Bucket
	if cfg.ImportRift {
		out = append(out, Bucket{Name: "rift", DocID: cfg.RiftDocID})
	}
	if cfg.ImportQuest {
		out = append(out, Bucket{Name: "quest", DocID: cfg.QuestDocID})
	}
	if cfg.ImportGearGo {
		out = append(out, Bucket{Name: "gear-go", DocID: cfg.GearGoDocID})
	}
	return out
}

// StoreURL is the public store page for a title.
func StoreURL(appID string) string {
	return "https://www.meta.com/en-us/experiences/" + appID + "/"
}
