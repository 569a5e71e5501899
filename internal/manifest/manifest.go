package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Manifest is one parsed launch-configuration file from a library's
// Manifests directory. The Oculus client writes two files per title: the
// main manifest (carries install data) and an "_assets" variant (never
// does).
type Manifest struct {
	AppID            string
	LaunchFile       string
	LaunchParameters string
	CanonicalName    string
	ThirdParty       bool
	LibraryBasePath  string
}

type manifestJSON struct {
	AppID            string `json:"appId"`
	LaunchFile       string `json:"launchFile"`
	LaunchParameters string `json:"launchParameters"`
	CanonicalName    string `json:"canonicalName"`
	ThirdParty       bool   `json:"thirdParty"`
}

// Parse deserializes one manifest file. Launch file paths are stored with
// forward slashes regardless of platform and are normalized here.
func Parse(data []byte) (*Manifest, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("manifest is empty")
	}

	var raw manifestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &Manifest{
		AppID:            raw.AppID,
		LaunchFile:       filepath.FromSlash(raw.LaunchFile),
		LaunchParameters: raw.LaunchParameters,
		CanonicalName:    raw.CanonicalName,
		ThirdParty:       raw.ThirdParty,
	}, nil
}

// InstallationPath is where the title's files live under its library root.
// Empty when the manifest came from the central (uninstalled) store.
func (m *Manifest) InstallationPath() string {
	if m.LibraryBasePath == "" {
		return ""
	}
	return filepath.Join(m.LibraryBasePath, "Software", m.CanonicalName)
}

// ExecutableFullPath is the absolute launch target, or empty when the title
// has no install data.
func (m *Manifest) ExecutableFullPath() string {
	install := m.InstallationPath()
	if install == "" || m.LaunchFile == "" {
		return ""
	}
	return filepath.Join(install, m.LaunchFile)
}
