package tools

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Unmarshaler lets a config type decode itself from the raw value.
type Unmarshaler interface {
	Unmarshal(from reflect.Value) error
}

func UnmarshalInterfaceHookFunc() mapstructure.DecodeHookFuncValue {
	return func(from reflect.Value, to reflect.Value) (any, error) {
		ptr := reflect.New(to.Type())
		u, ok := ptr.Interface().(Unmarshaler)
		if !ok {
			return from.Interface(), nil
		}
		err := u.Unmarshal(from)
		if err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}
}

func NewMapStructureDecoderConfig() *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: UnmarshalInterfaceHookFunc(),
		Squash:     true,
		TagName:    "config",
	}
}

func NewMapStructureDecoderFromConfig(config *mapstructure.DecoderConfig) *mapstructure.Decoder {
	decoder, _ := mapstructure.NewDecoder(config)
	return decoder
}

func NewMapStructureDecoder() *mapstructure.Decoder {
	return NewMapStructureDecoderFromConfig(NewMapStructureDecoderConfig())
}

func NewMapStructureDecoderWithResult(result any) *mapstructure.Decoder {
	decoderConfig := NewMapStructureDecoderConfig()
	decoderConfig.Result = result
	return NewMapStructureDecoderFromConfig(decoderConfig)
}
