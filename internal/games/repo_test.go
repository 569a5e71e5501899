package games

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrhub/pkg/database"
	"vrhub/pkg/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection would otherwise see its own empty database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateFrom(db, "../../docs/schema.sql"))
	return db
}

func sampleGame(id, name string) models.Game {
	g := models.Game{
		ID:               id,
		Name:             name,
		Description:      "<b>desc</b>",
		Version:          "1.0",
		ReleaseDate:      &models.ReleaseDate{Year: 2019, Month: 10, Day: 9},
		CommunityScore:   89,
		IsInstalled:      true,
		InstallDirectory: `C:\Oculus\Software\` + id,
		InstallSize:      "5 GB",
		Source:           "Oculus",
	}
	g.Features.Add("VR")
	g.Platforms.Add("Oculus Rift")
	g.Platforms.AddSpec("pc_windows")
	g.Developers.Add("Initech")
	g.Tags.Add("VR Comfort: Moderate")
	g.AddLink("Oculus Store Page", "https://www.meta.com/en-us/experiences/"+id+"/")
	return g
}

func TestUpsertRoundTrip(t *testing.T) {
	repo := NewRepo(testDB(t))
	ctx := context.Background()

	in := sampleGame("101", "First Title")
	require.NoError(t, repo.Upsert(ctx, in))

	out, err := repo.GetByID(ctx, "101")
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Description, out.Description)
	assert.Equal(t, 89, out.CommunityScore)
	assert.True(t, out.IsInstalled)
	require.NotNil(t, out.ReleaseDate)
	assert.Equal(t, "2019-10-09", out.ReleaseDate.String())
	assert.Equal(t, []string{"VR"}, out.Features.Names())
	assert.True(t, out.Platforms.ContainsSpec("pc_windows"))
	assert.Equal(t, []string{"Initech"}, out.Developers.Names())
	require.Len(t, out.Links, 1)
	assert.Equal(t, "Oculus Store Page", out.Links[0].Label)
}

func TestUpsertReplaces(t *testing.T) {
	repo := NewRepo(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sampleGame("101", "Old Name")))

	updated := sampleGame("101", "New Name")
	updated.IsInstalled = false
	require.NoError(t, repo.Upsert(ctx, updated))

	out, err := repo.GetByID(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "New Name", out.Name)
	assert.False(t, out.IsInstalled)

	total, err := repo.Count(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestUpsertRejectsMissingID(t *testing.T) {
	repo := NewRepo(testDB(t))
	assert.Error(t, repo.Upsert(context.Background(), models.Game{Name: "nameless"}))
}

func TestSaveAllAndHas(t *testing.T) {
	repo := NewRepo(testDB(t))
	ctx := context.Background()

	games := []models.Game{
		sampleGame("1", "Alpha"),
		sampleGame("2", "Beta"),
	}
	require.NoError(t, repo.SaveAll(ctx, games))

	has, err := repo.Has(ctx, "1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.Has(ctx, "404")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestListFilters(t *testing.T) {
	repo := NewRepo(testDB(t))
	ctx := context.Background()

	installed := sampleGame("1", "Asgard's Wrath")
	notInstalled := sampleGame("2", "Beat Saber")
	notInstalled.IsInstalled = false
	notInstalled.Platforms = models.PropertySet{{Name: "Oculus Quest"}}
	require.NoError(t, repo.SaveAll(ctx, []models.Game{installed, notInstalled}))

	all, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// ordered by name
	assert.Equal(t, "Asgard's Wrath", all[0].Name)

	yes := true
	installedOnly, err := repo.List(ctx, ListQuery{Installed: &yes})
	require.NoError(t, err)
	require.Len(t, installedOnly, 1)
	assert.Equal(t, "1", installedOnly[0].ID)

	byKeyword, err := repo.List(ctx, ListQuery{Q: "saber"})
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	assert.Equal(t, "2", byKeyword[0].ID)

	byPlatform, err := repo.List(ctx, ListQuery{Platforms: []string{"quest"}})
	require.NoError(t, err)
	require.Len(t, byPlatform, 1)
	assert.Equal(t, "2", byPlatform[0].ID)

	total, err := repo.Count(ctx, ListQuery{Installed: &yes})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestGetByIDMissing(t *testing.T) {
	repo := NewRepo(testDB(t))
	out, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, out)
}
