// Package config defines the structures to configure a sensor and the board it is wired to.
package config

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/ultrasonic/components/board"
	"go.viam.com/ultrasonic/components/sensor/ultrasonic"
)

// A Config describes the configuration of one ultrasonic sensor.
type Config struct {
	ConfigFilePath string            `json:"-"`
	Board          board.Config      `json:"board"`
	Sensor         ultrasonic.Config `json:"sensor"`
	Debug          bool              `json:"debug,omitempty"`
}

// Validate ensures all parts of the config are valid. The board model must already be registered.
func (c *Config) Validate() error {
	if err := c.Board.Validate("board"); err != nil {
		return err
	}
	if !isRegistered(c.Board.Model) {
		return goutils.NewConfigValidationError("board",
			errors.Errorf("unknown model %q, expected one of %v", c.Board.Model, board.RegisteredModels()))
	}
	return c.Sensor.Validate("sensor")
}

func isRegistered(model string) bool {
	for _, registered := range board.RegisteredModels() {
		if registered == model {
			return true
		}
	}
	return false
}
