// Package board defines the pin I/O collaborator consumed by the ultrasonic driver: boards that
// hand out named GPIO pins together with the clock used to time them.
package board

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/ultrasonic/logging"
)

// A Board hands out GPIO pins by name.
type Board interface {
	// GPIOPinByName returns a GPIOPin by name.
	GPIOPinByName(name string) (GPIOPin, error)

	// Clock returns the timebase readings on this board are measured against.
	Clock() Clock

	// Close releases every pin handed out by the board.
	Close(ctx context.Context) error
}

// A Constructor builds a board of a registered model from its raw attributes.
type Constructor func(ctx context.Context, attributes map[string]interface{}, logger logging.Logger) (Board, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// RegisterModel registers a board model. It panics if the model is registered twice.
func RegisterModel(model string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[model]; ok {
		panic(errors.Errorf("board model %q already registered", model))
	}
	registry[model] = constructor
}

// RegisteredModels returns the names of every registered board model, sorted.
func RegisteredModels() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	models := make([]string, 0, len(registry))
	for model := range registry {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// New constructs a board of the given model.
func New(ctx context.Context, conf Config, logger logging.Logger) (Board, error) {
	registryMu.RLock()
	constructor, ok := registry[conf.Model]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown board model %q", conf.Model)
	}
	b, err := constructor(ctx, conf.Attributes, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build %q board", conf.Model)
	}
	return b, nil
}
