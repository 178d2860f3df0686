package services

import (
	"context"
	"errors"
	"fmt"

	"weatherstation/config"
	"weatherstation/hardware"

	"go.uber.org/zap"
)

// OpenRecordStore builds the store selected by STORE_BACKEND. The returned
// close function is always safe to call.
func OpenRecordStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (RecordStore, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendAdmin:
		store, err := NewAdminStore(ctx, cfg.FirebaseDbUrl, cfg.FirebaseServiceAccountJSON, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StoreBackendREST:
		logger.Info("Using REST store", zap.String("url", cfg.FirebaseDbUrl), zap.Bool("auth", cfg.FirebaseSecret != ""))
		return NewRESTStore(cfg.FirebaseDbUrl, cfg.FirebaseSecret, logger), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// OpenBoard selects simulated or real hardware by HARDWARE_MODE
func OpenBoard(cfg *config.Config, profile LightProfile, logger *zap.Logger) (*hardware.Board, error) {
	switch cfg.HardwareMode {
	case config.HardwarePeriph:
		return hardware.OpenPeriph(hardware.PeriphOptions{
			BME280Address:  cfg.BME280Address,
			ADS1115Address: cfg.ADS1115Address,
			LightChannel:   cfg.LightADCChannel,
			RedPin:         cfg.LedRedPin,
			YellowPin:      cfg.LedYellowPin,
			GreenPin:       cfg.LedGreenPin,
		}, logger)
	case config.HardwareSimulator:
		logger.Info("Using simulated hardware", zap.Int("light_max", profile.SimulatedMax()))
		return hardware.NewSimulator(logger, profile.SimulatedMax()), nil
	default:
		return nil, fmt.Errorf("unknown hardware mode %q", cfg.HardwareMode)
	}
}

// mirrorOpener connects one configured mirror
type mirrorOpener struct {
	name string
	open func() (Mirror, error)
}

// OpenMirrors connects every configured mirror independently. It returns the
// mirrors that connected together with the joined errors of those that did not.
func OpenMirrors(cfg *config.Config, logger *zap.Logger) ([]Mirror, error) {
	var openers []mirrorOpener

	if cfg.MQTTBroker != "" {
		openers = append(openers, mirrorOpener{name: "mqtt", open: func() (Mirror, error) {
			return NewMQTTMirror(cfg.MQTTBroker, cfg.DeviceID, cfg.MQTTUser, cfg.MQTTPass, cfg.MQTTTopic, logger)
		}})
	}

	if cfg.RabbitMQURL != "" {
		openers = append(openers, mirrorOpener{name: "rabbitmq", open: func() (Mirror, error) {
			return NewRabbitMQMirror(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey, cfg.DeviceID, logger)
		}})
	}

	return openMirrors(openers)
}

func openMirrors(openers []mirrorOpener) ([]Mirror, error) {
	var mirrors []Mirror
	var errs []error

	for _, o := range openers {
		m, err := o.open()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s mirror: %w", o.name, err))
			continue
		}
		mirrors = append(mirrors, m)
	}

	return mirrors, errors.Join(errs...)
}

func CloseMirrors(mirrors []Mirror) error {
	var errs []error
	for _, m := range mirrors {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", m.Name(), err))
		}
	}
	return errors.Join(errs...)
}
