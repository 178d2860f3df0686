package main

import (
	"context"
	"flag"
	"os"
	"time"

	"weatherstation/config"
	"weatherstation/hardware"
	"weatherstation/models"
	"weatherstation/services"

	"go.uber.org/zap"
)

var (
	pause      = flag.Duration("pause", time.Second, "Pause between steps (LED hold time scales with it)")
	skipStore  = flag.Bool("skip-store", false, "Skip the steps that talk to the remote store")
	climateRun = flag.Int("climate-readings", 3, "Number of climate sensor readings")
	lightRun   = flag.Int("light-readings", 5, "Number of light sensor readings")
)

// selfTest runs each component check in turn and counts failures
type selfTest struct {
	cfg      *config.Config
	board    *hardware.Board
	profile  services.LightProfile
	store    services.RecordStore
	logger   *zap.Logger
	failures int
}

func main() {
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load configuration; store settings only matter when the store steps run
	load := config.LoadConfig
	if *skipStore {
		load = config.LoadHardwareConfig
	}
	cfg, err := load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	profile, err := services.LightProfileByName(cfg.LightProfile)
	if err != nil {
		logger.Fatal("Invalid light profile", zap.Error(err))
	}

	board, err := services.OpenBoard(cfg, profile, logger)
	if err != nil {
		logger.Fatal("Failed to initialize hardware", zap.Error(err))
	}
	defer board.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st := &selfTest{cfg: cfg, board: board, profile: profile, logger: logger}

	if !*skipStore {
		store, closeStore, err := services.OpenRecordStore(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize store", zap.Error(err))
		}
		defer closeStore()
		st.store = store
	}

	logger.Info("Weather station self-test started",
		zap.String("hardware", cfg.HardwareMode),
		zap.String("light_profile", profile.Name))

	st.testLEDs()
	st.testClimateSensor()
	st.testLightSensor()
	if st.store != nil {
		st.testStore(ctx)
	}
	st.testWeatherLogic()
	if st.store != nil {
		st.testIntegrated(ctx)
	}

	if st.failures > 0 {
		logger.Error("Self-test finished with failures", zap.Int("failures", st.failures))
		board.Close()
		os.Exit(1)
	}
	logger.Info("All self-tests completed")
}

func (st *selfTest) fail(step string, err error) {
	st.failures++
	st.logger.Error("Self-test step failed", zap.String("step", step), zap.Error(err))
}

func (st *selfTest) testLEDs() {
	st.logger.Info("1. Testing LEDs")

	leds := []struct {
		name string
		out  hardware.Output
	}{
		{"red", st.board.Red},
		{"yellow", st.board.Yellow},
		{"green", st.board.Green},
	}

	for _, led := range leds {
		st.logger.Info("Testing LED", zap.String("led", led.name))
		if err := led.out.On(); err != nil {
			st.fail("led "+led.name, err)
			continue
		}
		time.Sleep(*pause)
		if err := led.out.Off(); err != nil {
			st.fail("led "+led.name, err)
		}
		time.Sleep(*pause / 2)
	}

	st.logger.Info("Testing all LEDs together")
	for _, led := range leds {
		if err := led.out.On(); err != nil {
			st.fail("led "+led.name, err)
		}
	}
	time.Sleep(2 * *pause)
	for _, led := range leds {
		if err := led.out.Off(); err != nil {
			st.fail("led "+led.name, err)
		}
	}
}

func (st *selfTest) testClimateSensor() {
	st.logger.Info("2. Testing climate sensor")

	for i := 1; i <= *climateRun; i++ {
		if err := st.board.Climate.Measure(); err != nil {
			st.fail("climate sensor", err)
			continue
		}
		temp := st.board.Climate.Temperature()
		humidity := st.board.Climate.Humidity()
		st.logger.Info("Climate reading",
			zap.Int("reading", i),
			zap.Float64("temperature", temp),
			zap.Float64("humidity", humidity))

		if temp < -40 || temp > 80 {
			st.logger.Warn("Temperature seems unrealistic", zap.Float64("temperature", temp))
		}
		if humidity < 0 || humidity > 100 {
			st.logger.Warn("Humidity is out of range", zap.Float64("humidity", humidity))
		}
		time.Sleep(2 * *pause)
	}
}

func (st *selfTest) testLightSensor() {
	st.logger.Info("3. Testing light sensor")

	for i := 1; i <= *lightRun; i++ {
		raw, err := st.board.Light.Read()
		if err != nil {
			st.fail("light sensor", err)
			continue
		}
		st.logger.Info("Light reading",
			zap.Int("reading", i),
			zap.Int("raw", raw),
			zap.Float64("voltage", st.profile.Voltage(raw, 3.3)),
			zap.String("level", string(st.profile.Level(raw))))
		time.Sleep(*pause)
	}
}

func (st *selfTest) testStore(ctx context.Context) {
	st.logger.Info("4. Testing store connection")

	result := st.store.Push(ctx, "test_readings", map[string]any{
		"test":      true,
		"timestamp": time.Now().Unix(),
		"message":   "Test from weather station",
	})
	if result.Success {
		st.logger.Info("Store push succeeded")
	} else {
		st.fail("store push", result.Err())
	}

	result = st.store.Set(ctx, "test_latest", map[string]any{
		"status": "testing",
		"time":   time.Now().Unix(),
	})
	if result.Success {
		st.logger.Info("Store set succeeded")
	} else {
		st.fail("store set", result.Err())
	}
}

func (st *selfTest) testWeatherLogic() {
	st.logger.Info("5. Testing weather logic")

	scenarios := []struct {
		temp, humidity float64
		want           models.Quality
	}{
		{0, 50, models.QualityBad},   // too cold
		{40, 50, models.QualityBad},  // too hot
		{20, 90, models.QualityBad},  // too humid
		{8, 60, models.QualityOkay},  // cool
		{32, 60, models.QualityOkay}, // warm
		{25, 75, models.QualityOkay}, // humid
		{22, 55, models.QualityNice},
	}

	for _, sc := range scenarios {
		got := services.WeatherQuality(sc.temp, sc.humidity)
		fields := []zap.Field{
			zap.Float64("temperature", sc.temp),
			zap.Float64("humidity", sc.humidity),
			zap.String("quality", string(got)),
		}
		if got != sc.want {
			st.failures++
			st.logger.Error("Unexpected weather quality", append(fields, zap.String("want", string(sc.want)))...)
			continue
		}
		st.logger.Info("Weather quality ok", fields...)
	}
}

func (st *selfTest) testIntegrated(ctx context.Context) {
	st.logger.Info("6. Testing integrated system")

	indicators := services.NewIndicatorDriver(st.board.Red, st.board.Yellow, st.board.Green, st.logger)
	station := services.NewStation(services.StationConfig{
		DeviceID:    st.cfg.DeviceID,
		HistoryPath: "integrated_test",
		LatestPath:  "test_latest",
		Interval:    st.cfg.ReadInterval,
	}, st.board.Climate, st.board.Light, services.NewClassifier(st.profile), indicators, st.store, st.logger)

	report, err := station.RunCycle(ctx)
	if err != nil {
		st.fail("integrated cycle", err)
	}
	if report != nil {
		st.logger.Info("Integrated cycle finished",
			zap.String("weather_quality", string(report.Classification.WeatherQuality)),
			zap.String("indicator", string(report.Indicator)),
			zap.Bool("history_uploaded", report.History.Success),
			zap.Bool("latest_uploaded", report.Latest.Success))
	}

	// Keep the indicator on long enough to see it
	time.Sleep(3 * *pause)
	if err := indicators.ClearAll(); err != nil {
		st.fail("clear indicators", err)
	}
}
