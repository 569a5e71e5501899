package oculus

import (
	"encoding/json"
	"fmt"
)

// Node is the per-title metadata document. The API has shipped this under
// both data.node and data.item over the years; ParseMetadata accepts either
// and decodes into this one shape.
type Node struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	Platform      string `json:"platform"`
	CanonicalName string `json:"canonicalName"`
	AppName       string `json:"appName"`

	DisplayLongDescription      string `json:"display_long_description"`
	LongDescriptionUsesMarkdown bool   `json:"long_description_uses_markdown"`

	PublisherName string `json:"publisher_name"`
	DeveloperName string `json:"developer_name"`

	SupportedPlayerModes      []string   `json:"supported_player_modes"`
	SupportedHmdPlatforms     []string   `json:"supported_platforms_i18n"`
	SupportedInputDeviceNames []string   `json:"supported_input_device_names"`
	UserInteractionModeNames  []string   `json:"user_interaction_mode_names"`
	GenreNames                []string   `json:"genre_names"`
	SupportedInAppLanguages   []NameItem `json:"supported_in_app_languages"`

	IarcCert              *IarcCertification `json:"iarc_cert"`
	ComfortRating         string             `json:"comfort_rating"`
	RatingAggregates      []StarRating       `json:"quality_rating_histogram_aggregate_all"`
	LatestSupportedBinary *VersionData       `json:"latest_supported_binary"`
	ReleaseInfo           *ReleaseInfo       `json:"release_info"`
	WebsiteURL            string             `json:"website_url"`

	Hero        *URIItem  `json:"hero"`
	IconImage   *URIItem  `json:"icon_image"`
	Screenshots []URIItem `json:"screenshots"`
	Trailer     *Trailer  `json:"trailer"`
}

type URIItem struct {
	URI string `json:"uri"`
}

type Trailer struct {
	URI       string   `json:"uri"`
	Thumbnail *URIItem `json:"thumbnail"`
}

type NameItem struct {
	Name string `json:"name"`
}

type IarcCertification struct {
	IarcRating *IarcRating `json:"iarc_rating"`
}

type IarcRating struct {
	AgeRatingText string `json:"age_rating_text"`
}

type VersionData struct {
	Version               string `json:"version"`
	ChangeLog             string `json:"change_log"`
	TotalInstalledSpace   string `json:"total_installed_space"`
	RequiredSpaceAdjusted string `json:"required_space_adjusted"`
}

type ReleaseInfo struct {
	DisplayDate string `json:"display_date"`
}

type StarRating struct {
	StarRating int `json:"star_rating"`
	Count      int `json:"count"`
}

// ParseMetadata decodes a metadata response. A response with neither node
// nor item (the API returns {"data":{}} for unknown ids) yields nil, nil.
func ParseMetadata(raw string) (*Node, error) {
	var resp struct {
		Data struct {
			Node *Node `json:"node"`
			Item *Node `json:"item"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode metadata response: %w", err)
	}
	if resp.Data.Item != nil {
		return resp.Data.Item, nil
	}
	return resp.Data.Node, nil
}

// LibraryItem is one owned title from an entitlement response.
type LibraryItem struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Platform    string   `json:"platform"`
	IsReleased  string   `json:"is_released"`
	Cover       *URIItem `json:"cover_landscape_image"`
}

// ParseLibrary flattens an entitlement response's PC and Android edge lists
// into one item slice.
func ParseLibrary(raw string) ([]LibraryItem, error) {
	type edge struct {
		Node struct {
			Item *LibraryItem `json:"item"`
		} `json:"node"`
	}
	type entitlements struct {
		Edges []edge `json:"edges"`
	}
	var resp struct {
		Data struct {
			Viewer struct {
				User struct {
					ActivePCEntitlements      entitlements `json:"active_pc_entitlements"`
					ActiveAndroidEntitlements entitlements `json:"active_android_entitlements"`
				} `json:"user"`
			} `json:"viewer"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode library response: %w", err)
	}

	var out []LibraryItem
	for _, group := range []entitlements{
		resp.Data.Viewer.User.ActivePCEntitlements,
		resp.Data.Viewer.User.ActiveAndroidEntitlements,
	} {
		for _, e := range group.Edges {
			if e.Node.Item == nil || e.Node.Item.ID == "" {
				continue
			}
			out = append(out, *e.Node.Item)
		}
	}
	return out, nil
}
