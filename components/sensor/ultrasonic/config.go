package ultrasonic

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Config is used for converting config attributes.
type Config struct {
	TriggerPin    string `json:"trigger_pin"`
	EchoPin       string `json:"echo_pin,omitempty"`
	TimeoutUs     uint   `json:"timeout_us,omitempty"`
	MaxDistanceCm uint   `json:"max_distance_cm,omitempty"`
	Unit          string `json:"unit,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.TriggerPin == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "trigger_pin")
	}
	if conf.TimeoutUs != 0 && conf.MaxDistanceCm != 0 {
		return errors.Errorf("%s: only one of timeout_us and max_distance_cm may be set", path)
	}
	if conf.Unit != "" {
		if _, err := ParseUnit(conf.Unit); err != nil {
			return errors.Wrapf(err, "%s.unit", path)
		}
	}
	return nil
}

func (conf *Config) options() ([]Option, error) {
	opts := []Option{WithEchoPin(conf.EchoPin)}
	switch {
	case conf.TimeoutUs != 0:
		opts = append(opts, WithTimeout(conf.TimeoutUs))
	case conf.MaxDistanceCm != 0:
		opts = append(opts, WithMaxDistance(conf.MaxDistanceCm))
	}
	if conf.Unit != "" {
		unit, err := ParseUnit(conf.Unit)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithUnit(unit))
	}
	return opts, nil
}
