package types

import (
	"fmt"
	"reflect"
	"time"
)

type TimeDuration time.Duration

// Unmarshal accepts "90s"-style strings or a plain number of seconds.
func (t *TimeDuration) Unmarshal(from reflect.Value) error {
	switch from.Kind() {
	case reflect.String:
		d, err := time.ParseDuration(from.String())
		if err != nil {
			return err
		}
		*t = TimeDuration(d)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		*t = TimeDuration(time.Duration(from.Int()) * time.Second)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		*t = TimeDuration(time.Duration(from.Uint()) * time.Second)
	case reflect.Float32, reflect.Float64:
		*t = TimeDuration(from.Float() * float64(time.Second))
	default:
		return fmt.Errorf("invalid duration: %v", from.Interface())
	}
	return nil
}

func (t TimeDuration) String() string {
	return time.Duration(t).String()
}
