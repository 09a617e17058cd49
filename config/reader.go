package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/ultrasonic/logging"
)

// Read reads a config from the given file. Environment variables such as ${TRIGGER_PIN} are
// expanded before the file is decoded.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	conf := Config{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&conf); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to validate Config")
	}
	logger.Debugw("read config", "path", originalPath, "board", conf.Board.Model, "trigger_pin", conf.Sensor.TriggerPin)
	return &conf, nil
}
