package hardware

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// SimulatedPin is an in-memory Output that logs its transitions
type SimulatedPin struct {
	name   string
	value  bool
	logger *zap.Logger
}

func NewSimulatedPin(name string, logger *zap.Logger) *SimulatedPin {
	return &SimulatedPin{name: name, logger: logger}
}

func (p *SimulatedPin) On() error {
	p.value = true
	p.logger.Debug("Simulated LED on", zap.String("pin", p.name))
	return nil
}

func (p *SimulatedPin) Off() error {
	p.value = false
	p.logger.Debug("Simulated LED off", zap.String("pin", p.name))
	return nil
}

func (p *SimulatedPin) Value() bool {
	return p.value
}

func (p *SimulatedPin) Name() string {
	return p.name
}

// SimulatedClimate produces temperature and humidity values fluctuating
// around a comfortable indoor range.
type SimulatedClimate struct {
	rng         *rand.Rand
	temperature float64
	humidity    float64
}

func NewSimulatedClimate(rng *rand.Rand) *SimulatedClimate {
	return &SimulatedClimate{
		rng:         rng,
		temperature: 20,
		humidity:    50,
	}
}

func (s *SimulatedClimate) Measure() error {
	s.temperature = round1(15 + s.rng.Float64()*15) // 15-30°C
	s.humidity = round1(30 + s.rng.Float64()*50)    // 30-80%
	return nil
}

func (s *SimulatedClimate) Temperature() float64 {
	return s.temperature
}

func (s *SimulatedClimate) Humidity() float64 {
	return s.humidity
}

// SimulatedLight returns uniformly distributed raw values in [min, max]
type SimulatedLight struct {
	rng      *rand.Rand
	min, max int
}

func NewSimulatedLight(rng *rand.Rand, min, max int) *SimulatedLight {
	if max < min {
		min, max = max, min
	}
	return &SimulatedLight{rng: rng, min: min, max: max}
}

func (s *SimulatedLight) Read() (int, error) {
	return s.min + s.rng.Intn(s.max-s.min+1), nil
}

// NewSimulator builds a Board backed entirely by in-memory devices.
// lightMax bounds the simulated raw light value.
func NewSimulator(logger *zap.Logger, lightMax int) *Board {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Board{
		Climate: NewSimulatedClimate(rng),
		Light:   NewSimulatedLight(rng, 0, lightMax),
		Red:     NewSimulatedPin("red", logger),
		Yellow:  NewSimulatedPin("yellow", logger),
		Green:   NewSimulatedPin("green", logger),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
