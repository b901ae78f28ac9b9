package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
)

// AllowListManifest is the standalone, versioned form of the legacy
// allow-list. Keeping it in its own file lets the list be reviewed and
// versioned independently of the rest of the build layout.
type AllowListManifest struct {
	Version string   `yaml:"version"`
	Legacy  []string `yaml:"legacy"`
}

// LoadAllowList reads an allow-list manifest. The version key is required.
func LoadAllowList(path string) (*AllowListManifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, derrors.ConfigNotFound(path)
	}
	if err != nil {
		return nil, derrors.ConfigInvalid(path, err)
	}

	var m AllowListManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, derrors.ConfigInvalid(path, fmt.Errorf("unmarshal allow-list: %w", err))
	}
	if m.Version == "" {
		return nil, derrors.ValidationFailed("allow_list.version", "allow-list manifest must declare a version").
			WithContext("path", path)
	}
	if m.Legacy == nil {
		m.Legacy = []string{}
	}
	return &m, nil
}
