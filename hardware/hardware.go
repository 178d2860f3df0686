package hardware

import (
	"errors"
)

// HumiditySensor samples temperature and humidity; Measure refreshes the
// values returned by Temperature and Humidity.
type HumiditySensor interface {
	Measure() error
	Temperature() float64
	Humidity() float64
}

// LightSensor returns the raw light value in the sensor's native range
type LightSensor interface {
	Read() (int, error)
}

// Output is a binary indicator line
type Output interface {
	On() error
	Off() error
	Value() bool
}

// Board bundles the station's inputs and indicator outputs
type Board struct {
	Climate HumiditySensor
	Light   LightSensor
	Red     Output
	Yellow  Output
	Green   Output

	closers []func() error
}

// Close releases the underlying devices in reverse acquisition order
func (b *Board) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
