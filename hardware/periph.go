package hardware

import (
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// PeriphOptions selects the devices wired to a Linux single-board computer
type PeriphOptions struct {
	BME280Address  uint16
	ADS1115Address uint16
	LightChannel   int
	RedPin         string
	YellowPin      string
	GreenPin       string
}

var adsChannels = []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

// OpenPeriph initializes the host drivers and opens the BME280 climate
// sensor, the ADS1115 light channel and the three LED pins.
func OpenPeriph(opts PeriphOptions, logger *zap.Logger) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	board := &Board{}

	bus, err := i2creg.Open("") // default bus, usually /dev/i2c-1
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	board.closers = append(board.closers, bus.Close)

	env, err := bmxx80.NewI2C(bus, opts.BME280Address, &bmxx80.DefaultOpts)
	if err != nil {
		board.Close()
		return nil, fmt.Errorf("bme280 at 0x%x: %w", opts.BME280Address, err)
	}
	board.closers = append(board.closers, env.Halt)
	board.Climate = &bmeClimate{dev: env}

	if opts.LightChannel < 0 || opts.LightChannel >= len(adsChannels) {
		board.Close()
		return nil, fmt.Errorf("invalid ads1115 channel %d", opts.LightChannel)
	}
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: opts.ADS1115Address})
	if err != nil {
		board.Close()
		return nil, fmt.Errorf("ads1115 at 0x%x: %w", opts.ADS1115Address, err)
	}
	board.closers = append(board.closers, adc.Halt)

	// 4.096V full scale covers a 3.3V photoresistor divider.
	pin, err := adc.PinForChannel(adsChannels[opts.LightChannel], 4096*physic.MilliVolt, 128*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		board.Close()
		return nil, fmt.Errorf("ads1115 channel %d: %w", opts.LightChannel, err)
	}
	board.closers = append(board.closers, pin.Halt)
	board.Light = &adsLight{pin: pin}

	leds := []struct {
		name string
		dst  *Output
	}{
		{opts.RedPin, &board.Red},
		{opts.YellowPin, &board.Yellow},
		{opts.GreenPin, &board.Green},
	}
	for _, led := range leds {
		p := gpioreg.ByName(led.name)
		if p == nil {
			board.Close()
			return nil, fmt.Errorf("gpio pin %q not found", led.name)
		}
		if err := p.Out(gpio.Low); err != nil {
			board.Close()
			return nil, fmt.Errorf("gpio pin %q: %w", led.name, err)
		}
		*led.dst = &gpioOutput{pin: p}
	}

	logger.Info("Hardware initialized",
		zap.String("bme280", fmt.Sprintf("0x%x", opts.BME280Address)),
		zap.String("ads1115", fmt.Sprintf("0x%x", opts.ADS1115Address)),
		zap.Int("light_channel", opts.LightChannel),
		zap.Strings("leds", []string{opts.RedPin, opts.YellowPin, opts.GreenPin}),
	)
	return board, nil
}

type bmeClimate struct {
	dev         *bmxx80.Dev
	temperature float64
	humidity    float64
}

func (b *bmeClimate) Measure() error {
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		return fmt.Errorf("bme280 sense: %w", err)
	}
	b.temperature = env.Temperature.Celsius()
	b.humidity = float64(env.Humidity) / float64(physic.PercentRH)
	return nil
}

func (b *bmeClimate) Temperature() float64 {
	return b.temperature
}

func (b *bmeClimate) Humidity() float64 {
	return b.humidity
}

type adsLight struct {
	pin ads1x15.PinADC
}

// Read rescales the single-ended 15-bit conversion to the 0-65535 range
// used by the light profiles.
func (a *adsLight) Read() (int, error) {
	sample, err := a.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("ads1115 read: %w", err)
	}
	raw := int(sample.Raw)
	if raw < 0 {
		raw = 0
	}
	raw *= 2
	if raw > 65535 {
		raw = 65535
	}
	return raw, nil
}

type gpioOutput struct {
	pin gpio.PinIO
}

func (g *gpioOutput) On() error {
	return g.pin.Out(gpio.High)
}

func (g *gpioOutput) Off() error {
	return g.pin.Out(gpio.Low)
}

func (g *gpioOutput) Value() bool {
	return g.pin.Read() == gpio.High
}
