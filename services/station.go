package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatherstation/hardware"
	"weatherstation/models"

	"go.uber.org/zap"
)

// Notifier reacts to each uploaded record
type Notifier interface {
	Notify(record models.Record) error
}

type StationConfig struct {
	DeviceID    string
	HistoryPath string
	LatestPath  string
	Interval    time.Duration
}

// Station runs the read, classify, indicate, upload, sleep loop. It owns its
// sensors and indicators for the lifetime of the process.
type Station struct {
	cfg        StationConfig
	climate    hardware.HumiditySensor
	light      hardware.LightSensor
	classifier *Classifier
	indicators *IndicatorDriver
	store      RecordStore
	mirrors    []Mirror
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time

	readings int
}

// CycleReport describes what one iteration produced
type CycleReport struct {
	Reading        models.Reading
	Classification models.Classification
	Record         models.Record
	Indicator      models.IndicatorColor
	History        Result
	Latest         Result
}

func NewStation(cfg StationConfig, climate hardware.HumiditySensor, light hardware.LightSensor,
	classifier *Classifier, indicators *IndicatorDriver, store RecordStore, logger *zap.Logger) *Station {
	return &Station{
		cfg:        cfg,
		climate:    climate,
		light:      light,
		classifier: classifier,
		indicators: indicators,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// AddMirror registers a secondary sink that receives every record
func (s *Station) AddMirror(m Mirror) {
	s.mirrors = append(s.mirrors, m)
}

func (s *Station) SetNotifier(n Notifier) {
	s.notifier = n
}

// Readings returns how many iterations have been attempted
func (s *Station) Readings() int {
	return s.readings
}

// Run loops until ctx is cancelled, then switches every indicator off.
// Iteration failures are logged and retried after the same interval.
func (s *Station) Run(ctx context.Context) error {
	s.logger.Info("Weather station started",
		zap.String("device_id", s.cfg.DeviceID),
		zap.Duration("interval", s.cfg.Interval),
		zap.String("light_profile", s.classifier.Profile().Name),
		zap.String("history_path", s.cfg.HistoryPath),
		zap.String("latest_path", s.cfg.LatestPath),
	)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return s.stop()
		}

		s.readings++
		if _, err := s.RunCycle(ctx); err != nil {
			s.logFaults(err)
		}

		timer.Reset(s.cfg.Interval)
		select {
		case <-ctx.Done():
			return s.stop()
		case <-timer.C:
		}
	}
}

func (s *Station) stop() error {
	err := s.indicators.ClearAll()
	s.logger.Info("Weather station stopped", zap.Int("total_readings", s.readings))
	return err
}

// RunCycle performs one READ, CLASSIFY, INDICATE, UPLOAD pass. A sensor
// fault ends the pass early; later faults are collected and joined.
func (s *Station) RunCycle(ctx context.Context) (*CycleReport, error) {
	reading, err := s.read()
	if err != nil {
		return nil, newFault(FaultSensor, "read sensors", err)
	}

	classification := s.classifier.Classify(reading.Temperature, reading.Humidity, reading.LightRaw)
	record := models.NewRecord(reading, classification, s.cfg.DeviceID)
	report := &CycleReport{
		Reading:        reading,
		Classification: classification,
		Record:         record,
	}

	var errs []error
	if err := s.indicators.SetIndicators(classification.WeatherQuality); err != nil {
		errs = append(errs, err)
	}
	report.Indicator = s.indicators.Active()

	s.logger.Info("Weather reading",
		zap.Int("reading", s.readings),
		zap.Float64("temperature", reading.Temperature),
		zap.Float64("humidity", reading.Humidity),
		zap.Int("light_raw", reading.LightRaw),
		zap.String("light_level", string(classification.LightLevel)),
		zap.String("weather_condition", string(classification.WeatherCondition)),
		zap.String("weather_quality", string(classification.WeatherQuality)),
		zap.String("outfit", classification.Outfit),
		zap.String("indicator", string(report.Indicator)),
	)

	report.History = s.store.Push(ctx, s.cfg.HistoryPath, record)
	if report.History.Success {
		s.logger.Info("Reading uploaded", zap.String("path", s.cfg.HistoryPath))
	} else {
		errs = append(errs, report.History.Err())
	}

	report.Latest = s.store.Set(ctx, s.cfg.LatestPath, record)
	if report.Latest.Success {
		s.logger.Debug("Latest reading updated", zap.String("path", s.cfg.LatestPath))
	} else {
		errs = append(errs, report.Latest.Err())
	}

	for _, m := range s.mirrors {
		if err := m.Publish(ctx, record); err != nil {
			errs = append(errs, newFault(FaultTransport, "mirror "+m.Name(), err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(record); err != nil {
			errs = append(errs, newFault(FaultTransport, "notify", err))
		}
	}

	return report, errors.Join(errs...)
}

func (s *Station) read() (models.Reading, error) {
	if err := s.climate.Measure(); err != nil {
		return models.Reading{}, fmt.Errorf("climate sensor: %w", err)
	}
	lightRaw, err := s.light.Read()
	if err != nil {
		return models.Reading{}, fmt.Errorf("light sensor: %w", err)
	}
	return models.NewReading(s.climate.Temperature(), s.climate.Humidity(), lightRaw, s.now()), nil
}

// logFaults logs each fault of a joined iteration error with its kind
func (s *Station) logFaults(err error) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	for _, e := range errs {
		var fault *Fault
		if errors.As(e, &fault) {
			s.logger.Warn("Iteration failed",
				zap.Int("reading", s.readings),
				zap.String("kind", string(fault.Kind)),
				zap.String("op", fault.Op),
				zap.Error(fault.Err))
			continue
		}
		s.logger.Warn("Iteration failed", zap.Int("reading", s.readings), zap.Error(e))
	}
}
