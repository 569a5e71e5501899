package oculus

import (
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrhub/pkg/utils"
)

func testImportConfig() utils.ImportConfig {
	return utils.ImportConfig{
		RiftDocID:   "1",
		QuestDocID:  "2",
		GearGoDocID: "3",
	}
}

const storePageFixture = `<!DOCTYPE html>
<html>
<head>
<meta name="json-ld" content="{&quot;name&quot;:&quot;Example Title&quot;,&quot;description&quot;:&quot;A fine game.&quot;,&quot;image&quot;:[&quot;https://cdn/cover.jpg&quot;],&quot;aggregateRating&quot;:{&quot;ratingValue&quot;:4.5}}"/>
</head>
<body>
<div class="app-details-row"><div class="app-details-row__left">Game Modes</div><div class="app-details-row__right">Single User</div></div>
<div class="app-details-row"><div class="app-details-row__left">Supported Player Modes</div><div class="app-details-row__right">Sitting, Standing</div></div>
<div class="app-details-row"><div class="app-details-row__left">Supported Platforms</div><div class="app-details-row__right">Oculus Rift, Oculus Rift S</div></div>
<div class="app-details-row"><div class="app-details-row__left">Genres</div><div class="app-details-row__right">Action, Adventure</div></div>
<div class="app-details-row"><div class="app-details-row__left">Version</div><div class="app-details-row__right">1.2.3</div></div>
<div class="app-details-row"><div class="app-details-row__left">Developer</div><div class="app-details-row__right">Initech, Ltd.</div></div>
<div class="app-details-row"><div class="app-details-row__left">Publisher</div><div class="app-details-row__right">Initech</div></div>
<div class="app-details-row"><div class="app-details-row__left">Release Date</div><div class="app-details-row__right">Oct 9, 2019</div></div>
<div class="app-details-row"><div class="app-details-row__left">Space Required</div><div class="app-details-row__right">5.2 GB</div></div>
<div class="app-age-rating-icon__text">PEGI 12</div>
</body>
</html>`

func TestScrapeStorePage(t *testing.T) {
	data, err := ScrapeStorePage(storePageFixture, log.Default())
	require.NoError(t, err)

	assert.Equal(t, "Example Title", data.Name)
	assert.Equal(t, "A fine game.", data.Description)
	assert.Equal(t, "https://cdn/cover.jpg", data.ImageURL)
	assert.InDelta(t, 4.5, data.AverageRating, 0.001)

	assert.Equal(t, []string{"Single User"}, data.GameModes)
	assert.Equal(t, []string{"Sitting", "Standing"}, data.PlayerModes)
	assert.Equal(t, []string{"Oculus Rift", "Oculus Rift S"}, data.Platforms)
	assert.Equal(t, []string{"Action", "Adventure"}, data.Genres)
	assert.Equal(t, "1.2.3", data.Version)
	assert.Equal(t, "Initech, Ltd.", data.DeveloperText)
	assert.Equal(t, "Initech", data.PublisherText)
	assert.Equal(t, "Oct 9, 2019", data.ReleaseDateRaw)
	assert.Equal(t, "5.2 GB", data.SpaceRequired)
	assert.Equal(t, []string{"PEGI 12"}, data.AgeRatings)
}

func TestScrapeStorePageNoMetadata(t *testing.T) {
	_, err := ScrapeStorePage(`<html><body><p>login required</p></body></html>`, log.Default())
	assert.Error(t, err)
}
