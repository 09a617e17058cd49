package utils

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// TransformAttributeMapToStruct decodes loosely typed attributes, usually straight out of a JSON
// file, into the struct pointed to by to. Struct fields are matched by their json tags.
func TransformAttributeMapToStruct(to interface{}, attributes map[string]interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           to,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return errors.Wrap(err, "cannot create attribute decoder")
	}
	if err := decoder.Decode(attributes); err != nil {
		return errors.Wrapf(err, "cannot decode attributes into %T", to)
	}
	return nil
}
