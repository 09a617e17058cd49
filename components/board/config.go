package board

import (
	"go.viam.com/utils"
)

// Config selects a board model and carries its model specific attributes.
type Config struct {
	Model      string                 `json:"model"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.Model == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "model")
	}
	return nil
}
