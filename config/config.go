package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendREST  = "rest"
	StoreBackendAdmin = "admin"

	HardwareSimulator = "simulator"
	HardwarePeriph    = "periph"

	LightProfileU16    = "u16"
	LightProfileLegacy = "legacy"
)

type Config struct {
	FirebaseDbUrl              string
	FirebaseSecret             string
	FirebaseServiceAccountJSON string
	StoreBackend               string
	HistoryPath                string
	LatestPath                 string

	DeviceID     string
	ReadInterval time.Duration
	LogLevel     string

	HardwareMode    string
	LightProfile    string
	LedRedPin       string
	LedYellowPin    string
	LedGreenPin     string
	BME280Address   uint16
	ADS1115Address  uint16
	LightADCChannel int

	// Optional telemetry mirrors and alerting
	MQTTBroker         string
	MQTTTopic          string
	MQTTUser           string
	MQTTPass           string
	RabbitMQURL        string
	RabbitMQExchange   string
	RabbitMQRoutingKey string
	TelegramBotToken   string
	TelegramChatID     string
	AlertCooldown      time.Duration
}

func LoadConfig() (*Config, error) {
	return load(true)
}

// LoadHardwareConfig is LoadConfig for tools that never touch the store.
// Store settings are read but not required.
func LoadHardwareConfig() (*Config, error) {
	return load(false)
}

func load(requireStore bool) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	deviceID := getEnv("DEVICE_ID", "weather-station")

	config := &Config{
		FirebaseDbUrl:              strings.TrimRight(getEnv("FIREBASE_DB_URL", ""), "/"),
		FirebaseSecret:             getEnv("FIREBASE_SECRET", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		StoreBackend:               strings.ToLower(getEnv("STORE_BACKEND", StoreBackendREST)),
		HistoryPath:                getEnv("HISTORY_PATH", "weather_readings"),
		LatestPath:                 getEnv("LATEST_PATH", "latest_reading"),
		DeviceID:                   deviceID,
		LogLevel:                   strings.ToLower(getEnv("LOG_LEVEL", "info")),
		HardwareMode:               strings.ToLower(getEnv("HARDWARE_MODE", HardwareSimulator)),
		LightProfile:               strings.ToLower(getEnv("LIGHT_PROFILE", LightProfileU16)),
		LedRedPin:                  getEnv("LED_RED_PIN", "GPIO17"),
		LedYellowPin:               getEnv("LED_YELLOW_PIN", "GPIO27"),
		LedGreenPin:                getEnv("LED_GREEN_PIN", "GPIO22"),
		MQTTBroker:                 getEnv("MQTT_BROKER", ""),
		MQTTTopic:                  getEnv("MQTT_TOPIC", fmt.Sprintf("stations/%s/telemetry", deviceID)),
		MQTTUser:                   getEnv("MQTT_USER", ""),
		MQTTPass:                   getEnv("MQTT_PASS", ""),
		RabbitMQURL:                getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:           getEnv("RABBITMQ_EXCHANGE", "weather"),
		RabbitMQRoutingKey:         getEnv("RABBITMQ_ROUTING_KEY", "weather.reading"),
		TelegramBotToken:           getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:             getEnv("TELEGRAM_CHAT_ID", ""),
	}

	var err error
	if config.ReadInterval, err = getEnvDuration("READ_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if config.ReadInterval <= 0 {
		return nil, fmt.Errorf("READ_INTERVAL must be positive, got %v", config.ReadInterval)
	}
	if config.AlertCooldown, err = getEnvDuration("ALERT_COOLDOWN", 30*time.Minute); err != nil {
		return nil, err
	}
	if config.BME280Address, err = getEnvAddress("BME280_ADDRESS", "0x76"); err != nil {
		return nil, err
	}
	if config.ADS1115Address, err = getEnvAddress("ADS1115_ADDRESS", "0x48"); err != nil {
		return nil, err
	}
	if config.LightADCChannel, err = getEnvInt("LIGHT_ADC_CHANNEL", 0); err != nil {
		return nil, err
	}
	if config.LightADCChannel < 0 || config.LightADCChannel > 3 {
		return nil, fmt.Errorf("LIGHT_ADC_CHANNEL must be between 0 and 3, got %d", config.LightADCChannel)
	}

	if err := config.validate(requireStore); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate(requireStore bool) error {
	if requireStore {
		if err := c.validateStore(); err != nil {
			return err
		}
	}

	switch c.HardwareMode {
	case HardwareSimulator, HardwarePeriph:
	default:
		return fmt.Errorf("invalid HARDWARE_MODE %q (allowed: simulator, periph)", c.HardwareMode)
	}

	switch c.LightProfile {
	case LightProfileU16, LightProfileLegacy:
	default:
		return fmt.Errorf("invalid LIGHT_PROFILE %q (allowed: u16, legacy)", c.LightProfile)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", c.LogLevel)
	}

	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// getEnvAddress parses an I2C address; hex (0x76) and decimal are accepted.
func getEnvAddress(key, defaultValue string) (uint16, error) {
	value := getEnv(key, defaultValue)
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint16(addr), nil
}

func (c *Config) validateStore() error {
	switch c.StoreBackend {
	case StoreBackendREST:
		if c.FirebaseDbUrl == "" {
			return fmt.Errorf("FIREBASE_DB_URL is required")
		}
	case StoreBackendAdmin:
		if c.FirebaseDbUrl == "" || c.FirebaseServiceAccountJSON == "" {
			return fmt.Errorf("FIREBASE_DB_URL and FIREBASE_SERVICE_ACCOUNT_JSON are required for the admin backend")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (allowed: rest, admin)", c.StoreBackend)
	}
	return nil
}
