package translate

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tables holds the token→display lookup tables for every classification the
// translator performs. The upstream token sets have changed between API
// revisions (e.g. "Sitting" vs "SITTING"), so the tables are data, not code:
// defaults ship here and a JSON file can override or extend any of them.
type Tables struct {
	// Comfort maps comfort-rating tokens to their display label.
	Comfort map[string]string `json:"comfort"`
	// HmdPlatforms maps headset codenames to product names. Unknown tokens
	// pass through verbatim.
	HmdPlatforms map[string]string `json:"hmd_platforms"`
	// InteractionModes maps user-interaction modes to feature names.
	// Unknown tokens pass through verbatim.
	InteractionModes map[string]string `json:"interaction_modes"`
	// PlayerModes maps play-posture tokens to feature names. Unknown tokens
	// are dropped.
	PlayerModes map[string]string `json:"player_modes"`
	// InputDevices maps input-device names to feature names. Unknown tokens
	// fall back to the display name the API already supplies.
	InputDevices map[string]string `json:"input_devices"`
}

func DefaultTables() Tables {
	return Tables{
		Comfort: map[string]string{
			"COMFORTABLE_FOR_MOST": "Comfortable",
			"COMFORTABLE_FOR_SOME": "Moderate",
			"COMFORTABLE_FOR_FEW":  "Intense",
			"NOT_RATED":            "Unrated",
		},
		HmdPlatforms: map[string]string{
			"RIFT":      "Oculus Rift",
			"LAGUNA":    "Oculus Rift S",
			"MONTEREY":  "Oculus Quest",
			"HOLLYWOOD": "Oculus Quest 2",
			"EUREKA":    "Meta Quest 3",
			"PANTHER":   "Meta Quest 3S",
			"SEACLIFF":  "Meta Quest Pro",
			"PACIFIC":   "Oculus Go",
			"GEARVR":    "Gear VR",
			// the i18n field already carries product names on newer
			// revisions; map them onto themselves to keep them stable
			"Oculus Rift":   "Oculus Rift",
			"Oculus Rift S": "Oculus Rift S",
		},
		InteractionModes: map[string]string{
			"Single User": "Single Player",
			"Multi User":  "Multiplayer",
			"Co-op":       "Co-Op",
		},
		PlayerModes: map[string]string{
			"SITTING":    "VR Seated",
			"STANDING":   "VR Standing",
			"ROOM_SCALE": "VR Room-Scale",
			// older API revisions sent mixed case
			"Sitting":    "VR Seated",
			"Standing":   "VR Standing",
			"Room-scale": "VR Room-Scale",
		},
		InputDevices: map[string]string{
			"Touch Controllers":  "VR Motion Controllers",
			"Oculus Touch":       "VR Motion Controllers",
			"Touch":              "VR Motion Controllers",
			"Motion Controllers": "VR Motion Controllers",
		},
	}
}

// LoadTables returns the defaults overlaid with entries from the given JSON
// file. An empty path returns the defaults unchanged.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("read token tables: %w", err)
	}

	var overrides Tables
	if err := json.Unmarshal(b, &overrides); err != nil {
		return tables, fmt.Errorf("decode token tables: %w", err)
	}

	merge(tables.Comfort, overrides.Comfort)
	merge(tables.HmdPlatforms, overrides.HmdPlatforms)
	merge(tables.InteractionModes, overrides.InteractionModes)
	merge(tables.PlayerModes, overrides.PlayerModes)
	merge(tables.InputDevices, overrides.InputDevices)

	return tables, nil
}

func merge(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
