package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/haolun/policygraph-backend/internal/domain"
)

// LoadThresholdProfiles reads named threshold presets from a YAML file:
//
//	strict:
//	  min_policies: 10
//	  min_distinct_tools: 5
//	lenient:
//	  min_policies: 1
//
// An empty path means no profiles.
func LoadThresholdProfiles(path string) (map[string]domain.ThresholdConfig, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read threshold profiles: %w", err)
	}
	var profiles map[string]domain.ThresholdConfig
	if err := yaml.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("parse threshold profiles: %w", err)
	}
	return profiles, nil
}
