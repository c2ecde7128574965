package config

import (
	"encoding/json"

	"github.com/carverauto/mco-registration/pkg/models"
)

// SanitizeForLog marshals cfg with every `sensitive:"true"` field removed so
// the effective configuration can be written to logs.
func SanitizeForLog(cfg interface{}) ([]byte, error) {
	if cfg == nil {
		return nil, nil
	}

	safeData, err := models.FilterSensitiveFields(cfg)
	if err != nil {
		return nil, err
	}

	return json.Marshal(safeData)
}
