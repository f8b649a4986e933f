package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/a3tai/mcp-order-reader/internal/extractor"
)

// LoadKeywords reads a keyword override file. The format follows the file
// extension (yaml, json, toml). Lists the file leaves out keep their
// defaults.
func LoadKeywords(path string) (*extractor.Keywords, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read keywords file %s: %w", path, err)
	}

	var custom extractor.Keywords
	if err := v.Unmarshal(&custom); err != nil {
		return nil, fmt.Errorf("failed to decode keywords file %s: %w", path, err)
	}

	merged := custom.Merge(extractor.DefaultKeywords())
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("keywords file %s: %w", path, err)
	}
	return &merged, nil
}
