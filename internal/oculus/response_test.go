package oculus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadataNodeWrapper(t *testing.T) {
	raw := `{"data":{"node":{
		"id":"123",
		"display_name":"Example Title",
		"comfort_rating":"COMFORTABLE_FOR_MOST",
		"supported_platforms_i18n":["RIFT"],
		"quality_rating_histogram_aggregate_all":[
			{"star_rating":5,"count":10},
			{"star_rating":1,"count":2}
		],
		"release_info":{"display_date":"Oct 9, 2019"},
		"latest_supported_binary":{"version":"2.0","total_installed_space":"5 GB"},
		"trailer":{"uri":"https://cdn/t.mp4","thumbnail":{"uri":"https://cdn/t.jpg"}}
	}}}`

	node, err := ParseMetadata(raw)
	require.NoError(t, err)
	require.NotNil(t, node)

	assert.Equal(t, "123", node.ID)
	assert.Equal(t, "Example Title", node.DisplayName)
	assert.Equal(t, "COMFORTABLE_FOR_MOST", node.ComfortRating)
	assert.Equal(t, []string{"RIFT"}, node.SupportedHmdPlatforms)
	require.Len(t, node.RatingAggregates, 2)
	assert.Equal(t, 5, node.RatingAggregates[0].StarRating)
	assert.Equal(t, 10, node.RatingAggregates[0].Count)
	require.NotNil(t, node.ReleaseInfo)
	assert.Equal(t, "Oct 9, 2019", node.ReleaseInfo.DisplayDate)
	require.NotNil(t, node.Trailer)
	assert.Equal(t, "https://cdn/t.jpg", node.Trailer.Thumbnail.URI)
}

func TestParseMetadataItemWrapper(t *testing.T) {
	node, err := ParseMetadata(`{"data":{"item":{"id":"456","display_name":"Item Title"}}}`)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "456", node.ID)
}

func TestParseMetadataUnknownID(t *testing.T) {
	node, err := ParseMetadata(`{"data":{}}`)
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestParseMetadataBadJSON(t *testing.T) {
	_, err := ParseMetadata(`{`)
	assert.Error(t, err)
}

func TestParseLibrary(t *testing.T) {
	raw := `{"data":{"viewer":{"user":{
		"active_pc_entitlements":{"edges":[
			{"node":{"item":{"id":"1","display_name":"PC Title","platform":"PC"}}},
			{"node":{"item":null}},
			{"node":{"item":{"id":"","display_name":"ignored"}}}
		]},
		"active_android_entitlements":{"edges":[
			{"node":{"item":{"id":"2","display_name":"Quest Title","platform":"ANDROID_6DOF"}}}
		]}
	}}}}`

	items, err := ParseLibrary(raw)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "PC Title", items[0].DisplayName)
	assert.Equal(t, "2", items[1].ID)
}

func TestEnabledBuckets(t *testing.T) {
	cfg := testImportConfig()
	assert.Empty(t, EnabledBuckets(cfg))

	cfg.ImportRift = true
	cfg.ImportGearGo = true
	buckets := EnabledBuckets(cfg)
	require.Len(t, buckets, 2)
	assert.Equal(t, "rift", buckets[0].Name)
	assert.Equal(t, "gear-go", buckets[1].Name)
}

func TestStoreURL(t *testing.T) {
	assert.Equal(t, "https://www.meta.com/en-us/experiences/42/", StoreURL("42"))
}
