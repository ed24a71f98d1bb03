package types

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Listable accepts either a single value or a list in config files.
type Listable[T any] []T

func (l *Listable[T]) Unmarshal(from reflect.Value) error {
	var v []T
	err := mapstructure.Decode(from.Interface(), &v)
	if err == nil {
		*l = v
		return nil
	}
	var singleItem T
	err = mapstructure.Decode(from.Interface(), &singleItem)
	if err != nil {
		return err
	}
	*l = []T{singleItem}
	return nil
}
