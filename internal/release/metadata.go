package release

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultMetadataFile is read when no file is given.
const DefaultMetadataFile = "pyproject.toml"

var (
	// ErrVersionNotFound is returned when no version key holds a value.
	ErrVersionNotFound = errors.New("version not found")
	// ErrUnsupportedMetadata is returned for file types other than TOML,
	// YAML and JSON.
	ErrUnsupportedMetadata = errors.New("unsupported metadata file type")
)

// versionKeys are tried in order.
var versionKeys = []string{"version", "project.version", "tool.poetry.version"}

var metadataTypes = map[string]string{
	".toml": "toml",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
}

// ReadVersion returns the trimmed version from the metadata file at path.
func ReadVersion(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultMetadataFile
	}

	configType, ok := metadataTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMetadata, path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)

	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read metadata %s: %w", path, err)
	}

	for _, key := range versionKeys {
		if version := strings.TrimSpace(v.GetString(key)); version != "" {
			return version, nil
		}
	}

	return "", fmt.Errorf("%w in %s (looked for %s)", ErrVersionNotFound, path, strings.Join(versionKeys, ", "))
}
