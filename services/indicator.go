package services

import (
	"errors"
	"fmt"

	"weatherstation/hardware"
	"weatherstation/models"

	"go.uber.org/zap"
)

// IndicatorDriver owns the red, yellow and green status lights. At most one
// is lit at a time.
type IndicatorDriver struct {
	outputs map[models.IndicatorColor]hardware.Output
	logger  *zap.Logger
}

func NewIndicatorDriver(red, yellow, green hardware.Output, logger *zap.Logger) *IndicatorDriver {
	return &IndicatorDriver{
		outputs: map[models.IndicatorColor]hardware.Output{
			models.IndicatorRed:    red,
			models.IndicatorYellow: yellow,
			models.IndicatorGreen:  green,
		},
		logger: logger,
	}
}

// SetIndicators clears all three lights and then lights the one mapped from q
func (d *IndicatorDriver) SetIndicators(q models.Quality) error {
	if err := d.ClearAll(); err != nil {
		return err
	}

	color := models.ColorFor(q)
	if err := d.outputs[color].On(); err != nil {
		return newFault(FaultOutput, "indicator "+string(color), err)
	}

	d.logger.Debug("Indicator set",
		zap.String("quality", string(q)),
		zap.String("color", string(color)))
	return nil
}

// ClearAll switches every light off, attempting all three even if one fails
func (d *IndicatorDriver) ClearAll() error {
	var errs []error
	for _, color := range []models.IndicatorColor{models.IndicatorRed, models.IndicatorYellow, models.IndicatorGreen} {
		if err := d.outputs[color].Off(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", color, err))
		}
	}
	if len(errs) > 0 {
		return newFault(FaultOutput, "clear indicators", errors.Join(errs...))
	}
	return nil
}

// Active reports which light is on, or IndicatorNone
func (d *IndicatorDriver) Active() models.IndicatorColor {
	for _, color := range []models.IndicatorColor{models.IndicatorRed, models.IndicatorYellow, models.IndicatorGreen} {
		if d.outputs[color].Value() {
			return color
		}
	}
	return models.IndicatorNone
}
