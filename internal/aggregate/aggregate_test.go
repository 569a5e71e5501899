package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrhub/internal/manifest"
	"vrhub/internal/oculus"
	"vrhub/internal/sync"
	"vrhub/internal/translate"
	"vrhub/pkg/models"
	"vrhub/pkg/utils"
)

type fakeClient struct {
	tokenErr      error
	libraries     map[string]string // docID -> raw response
	metadata      map[string]string // appID -> raw response
	metadataErr   error
	storePage     string
	storePageErr  error
	metadataCalls []string
}

func (f *fakeClient) GetAccessToken(ctx context.Context) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "token", nil
}

func (f *fakeClient) GetLibrary(ctx context.Context, accessToken, docID string) (string, error) {
	raw, ok := f.libraries[docID]
	if !ok {
		return "", fmt.Errorf("no such doc %s", docID)
	}
	return raw, nil
}

func (f *fakeClient) GetMetadata(ctx context.Context, appID string, setLocale bool) (string, error) {
	f.metadataCalls = append(f.metadataCalls, appID)
	if f.metadataErr != nil {
		return "", f.metadataErr
	}
	raw, ok := f.metadata[appID]
	if !ok {
		return `{"data":{}}`, nil
	}
	return raw, nil
}

func (f *fakeClient) GetStorePage(ctx context.Context, appID string) (string, error) {
	if f.storePageErr != nil {
		return "", f.storePageErr
	}
	return f.storePage, nil
}

type fakeStore struct {
	existing map[string]bool
	saved    []models.Game
	saveErr  error
}

func (f *fakeStore) Has(ctx context.Context, id string) (bool, error) {
	return f.existing[id], nil
}

func (f *fakeStore) SaveAll(ctx context.Context, games []models.Game) error {
	f.saved = append(f.saved, games...)
	return f.saveErr
}

type eventRecorder struct {
	events []sync.ImportEvent
}

func (r *eventRecorder) BroadcastEvent(ev sync.ImportEvent) {
	r.events = append(r.events, ev)
}

type notifyRecorder struct {
	announced []string
}

func (r *notifyRecorder) BroadcastNewGame(id, name string) {
	r.announced = append(r.announced, id)
}

func libraryJSON(ids ...string) string {
	edges := ""
	for i, id := range ids {
		if i > 0 {
			edges += ","
		}
		edges += fmt.Sprintf(`{"node":{"item":{"id":%q,"display_name":"Online %s"}}}`, id, id)
	}
	return fmt.Sprintf(`{"data":{"viewer":{"user":{
		"active_pc_entitlements":{"edges":[%s]},
		"active_android_entitlements":{"edges":[]}
	}}}}`, edges)
}

func metadataJSON(id, name string) string {
	return fmt.Sprintf(`{"data":{"node":{"id":%q,"display_name":%q}}}`, id, name)
}

func writeManifestFile(t *testing.T, root, canonical, appID, launchFile string) {
	t.Helper()
	dir := filepath.Join(root, "Manifests")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := fmt.Sprintf(`{"appId":%q,"canonicalName":%q,"launchFile":%q}`, appID, canonical, launchFile)
	require.NoError(t, os.WriteFile(filepath.Join(dir, canonical+".json"), []byte(body), 0o644))
}

func testAggregator(t *testing.T, root string, client oculus.Client) *Aggregator {
	t.Helper()
	repo := manifest.NewRepository(manifest.StaticPaths{Libraries: []string{root}}, log.Default())
	return New(repo, client, translate.New(translate.DefaultTables(), log.Default()), log.Default())
}

func importConfig() utils.ImportConfig {
	return utils.ImportConfig{
		ImportManifests: true,
		ImportRift:      true,
		RiftDocID:       "rift-doc",
		Branding:        "Oculus",
	}
}

func TestImportMergesOnlineAndLocal(t *testing.T) {
	root := t.TempDir()
	writeManifestFile(t, root, "beta-game", "B", "bin/beta.exe")
	writeManifestFile(t, root, "gamma-game", "C", "")

	exeDir := filepath.Join(root, "Software", "beta-game", "bin")
	require.NoError(t, os.MkdirAll(exeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(exeDir, "beta.exe"), []byte("x"), 0o755))

	client := &fakeClient{
		libraries: map[string]string{"rift-doc": libraryJSON("A", "B")},
		metadata:  map[string]string{"C": metadataJSON("C", "Gamma Proper")},
	}
	store := &fakeStore{existing: map[string]bool{}}
	events := &eventRecorder{}
	notifier := &notifyRecorder{}

	agg := testAggregator(t, root, client)
	agg.Store = store
	agg.Events = events
	agg.Notifier = notifier

	result, err := agg.Import(context.Background(), importConfig())
	require.NoError(t, err)
	require.Len(t, result, 3)

	byID := map[string]models.Game{}
	for _, g := range result {
		_, dup := byID[g.ID]
		require.False(t, dup, "id %s appears twice", g.ID)
		byID[g.ID] = g
	}

	// online-only title
	assert.Equal(t, "Online A", byID["A"].Name)
	assert.False(t, byID["A"].IsInstalled)

	// merged title: online name wins, install state is local
	assert.Equal(t, "Online B", byID["B"].Name)
	assert.True(t, byID["B"].IsInstalled)
	assert.Equal(t, filepath.Join(root, "Software", "beta-game"), byID["B"].InstallDirectory)

	// manifest-only title got the one-off name lookup
	assert.Equal(t, "Gamma Proper", byID["C"].Name)
	assert.Equal(t, []string{"C"}, client.metadataCalls)

	// everything was persisted and announced
	assert.Len(t, store.saved, 3)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, notifier.announced)

	require.NotEmpty(t, events.events)
	assert.Equal(t, sync.EventImportStarted, events.events[0].Type)
	last := events.events[len(events.events)-1]
	assert.Equal(t, sync.EventImportFinished, last.Type)
	assert.Equal(t, 3, last.Total)
	assert.Equal(t, 3, last.NewCount)

	gameEvents := 0
	for _, ev := range events.events {
		if ev.Type == sync.EventImportGame {
			gameEvents++
			assert.Equal(t, events.events[0].RunID, ev.RunID)
		}
	}
	assert.Equal(t, 3, gameEvents)
}

func TestImportNameLookupFailureKeepsManifestName(t *testing.T) {
	root := t.TempDir()
	writeManifestFile(t, root, "delta-game", "D", "")

	client := &fakeClient{metadataErr: errors.New("boom")}
	agg := testAggregator(t, root, client)

	result, err := agg.Import(context.Background(), importConfig())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "delta-game", result[0].Name)
}

func TestImportSkipsLookupForKnownTitles(t *testing.T) {
	root := t.TempDir()
	writeManifestFile(t, root, "known-game", "K", "")

	client := &fakeClient{}
	store := &fakeStore{existing: map[string]bool{"K": true}}

	agg := testAggregator(t, root, client)
	agg.Store = store

	result, err := agg.Import(context.Background(), importConfig())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Empty(t, client.metadataCalls)

	// already cataloged, so nothing counts as new
	notifier := &notifyRecorder{}
	agg.Notifier = notifier
	_, _ = agg.Import(context.Background(), importConfig())
	assert.Empty(t, notifier.announced)
}

func TestImportNotAuthenticatedReturnsLocalPartial(t *testing.T) {
	root := t.TempDir()
	writeManifestFile(t, root, "local-game", "L", "")

	client := &fakeClient{tokenErr: oculus.ErrNotAuthenticated}
	agg := testAggregator(t, root, client)

	result, err := agg.Import(context.Background(), importConfig())
	require.ErrorIs(t, err, oculus.ErrNotAuthenticated)
	require.Len(t, result, 1)
	assert.Equal(t, "L", result[0].ID)
}

func TestImportTransportFailureDegradesToLocal(t *testing.T) {
	root := t.TempDir()
	writeManifestFile(t, root, "local-game", "L", "")

	client := &fakeClient{tokenErr: errors.New("connection refused")}
	agg := testAggregator(t, root, client)

	result, err := agg.Import(context.Background(), importConfig())
	require.NoError(t, err)
	require.Len(t, result, 1)
}

func TestImportCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeManifestFile(t, root, "local-game", "L", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{libraries: map[string]string{"rift-doc": libraryJSON("A")}}
	store := &fakeStore{existing: map[string]bool{}}
	agg := testAggregator(t, root, client)
	agg.Store = store

	result, err := agg.Import(ctx, importConfig())
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, store.saved)
}

func TestMetadataPrefersCatalogNode(t *testing.T) {
	root := t.TempDir()
	writeManifestFile(t, root, "meta-game", "M", "")

	client := &fakeClient{
		metadata: map[string]string{"M": metadataJSON("M", "Meta Proper")},
	}
	agg := testAggregator(t, root, client)

	g := agg.Metadata(context.Background(), importConfig(), "M")
	require.NotNil(t, g)
	assert.Equal(t, "Meta Proper", g.Name)
	// the manifest base record is what the node was applied over
	assert.Equal(t, "M", g.ID)
}

func TestMetadataFallsBackToStorePage(t *testing.T) {
	client := &fakeClient{
		metadataErr: errors.New("graph down"),
		storePage: `<html><head><meta name="json-ld" content="{&quot;name&quot;:&quot;Scraped Title&quot;}"/></head>` +
			`<body></body></html>`,
	}
	agg := testAggregator(t, t.TempDir(), client)

	g := agg.Metadata(context.Background(), importConfig(), "S")
	require.NotNil(t, g)
	assert.Equal(t, "Scraped Title", g.Name)
	assert.Equal(t, "S", g.ID)
}

func TestMetadataFallsBackToManifest(t *testing.T) {
	root := t.TempDir()
	writeManifestFile(t, root, "offline-game", "O", "")

	client := &fakeClient{
		metadataErr:  errors.New("graph down"),
		storePageErr: errors.New("store down"),
	}
	agg := testAggregator(t, root, client)

	g := agg.Metadata(context.Background(), importConfig(), "O")
	require.NotNil(t, g)
	assert.Equal(t, "offline-game", g.Name)
}

func TestMetadataUnknownEverywhere(t *testing.T) {
	client := &fakeClient{
		metadataErr:  errors.New("graph down"),
		storePageErr: errors.New("store down"),
	}
	agg := testAggregator(t, t.TempDir(), client)

	assert.Nil(t, agg.Metadata(context.Background(), importConfig(), "nope"))
}
