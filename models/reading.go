package models

import (
	"time"
)

// Reading is one raw sample from the station sensors
type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	LightRaw    int     `json:"light_raw"`
	Timestamp   int64   `json:"timestamp"`
}

// NewReading stamps the sample with t in seconds since epoch
func NewReading(temperature, humidity float64, lightRaw int, t time.Time) Reading {
	return Reading{
		Temperature: temperature,
		Humidity:    humidity,
		LightRaw:    lightRaw,
		Timestamp:   t.Unix(),
	}
}

// Quality is the three-tier comfort verdict
type Quality string

const (
	QualityBad  Quality = "bad"
	QualityOkay Quality = "okay"
	QualityNice Quality = "nice"
)

// LightLevel is a descriptive band of the raw light value
type LightLevel string

const (
	LightVeryDark   LightLevel = "Very Dark"
	LightDark       LightLevel = "Dark"
	LightDim        LightLevel = "Dim"
	LightLight      LightLevel = "Light"
	LightBright     LightLevel = "Bright"
	LightVeryBright LightLevel = "Very Bright"
)

// Rank orders light levels from darkest (0) to brightest; unknown levels rank -1
func (l LightLevel) Rank() int {
	switch l {
	case LightVeryDark:
		return 0
	case LightDark:
		return 1
	case LightDim:
		return 2
	case LightLight:
		return 3
	case LightBright:
		return 4
	case LightVeryBright:
		return 5
	default:
		return -1
	}
}

// IsBright reports whether sunglasses are warranted
func (l LightLevel) IsBright() bool {
	return l == LightBright || l == LightVeryBright
}

// WeatherCondition is the temperature-only description
type WeatherCondition string

const (
	ConditionVeryCold WeatherCondition = "Very Cold"
	ConditionCold     WeatherCondition = "Cold"
	ConditionMild     WeatherCondition = "Mild"
	ConditionWarm     WeatherCondition = "Warm"
	ConditionHot      WeatherCondition = "Hot"
)

// Classification is derived from a Reading and lives for one loop iteration
type Classification struct {
	LightLevel       LightLevel       `json:"light_level"`
	WeatherCondition WeatherCondition `json:"weather_condition"`
	WeatherQuality   Quality          `json:"weather_quality"`
	Outfit           string           `json:"outfit_recommendation"`
}

// Record is the JSON document written to the remote store
type Record struct {
	Timestamp            int64            `json:"timestamp"`
	Temperature          float64          `json:"temperature"`
	Humidity             float64          `json:"humidity"`
	LightRaw             int              `json:"light_raw"`
	LightLevel           LightLevel       `json:"light_level"`
	WeatherCondition     WeatherCondition `json:"weather_condition"`
	WeatherQuality       Quality          `json:"weather_quality"`
	OutfitRecommendation string           `json:"outfit_recommendation"`
	Device               string           `json:"device,omitempty"`
}

// NewRecord flattens a reading and its classification into the uploaded document
func NewRecord(r Reading, c Classification, device string) Record {
	return Record{
		Timestamp:            r.Timestamp,
		Temperature:          r.Temperature,
		Humidity:             r.Humidity,
		LightRaw:             r.LightRaw,
		LightLevel:           c.LightLevel,
		WeatherCondition:     c.WeatherCondition,
		WeatherQuality:       c.WeatherQuality,
		OutfitRecommendation: c.Outfit,
		Device:               device,
	}
}

// Time returns the record timestamp as a time.Time
func (r *Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// IndicatorColor names one of the three status lights
type IndicatorColor string

const (
	IndicatorNone   IndicatorColor = ""
	IndicatorRed    IndicatorColor = "red"
	IndicatorYellow IndicatorColor = "yellow"
	IndicatorGreen  IndicatorColor = "green"
)

// ColorFor maps a quality verdict to its light; anything other than bad or okay is green
func ColorFor(q Quality) IndicatorColor {
	switch q {
	case QualityBad:
		return IndicatorRed
	case QualityOkay:
		return IndicatorYellow
	default:
		return IndicatorGreen
	}
}

// GetQualityEmoji returns the emoji used in alerts and console summaries
func GetQualityEmoji(q Quality) string {
	switch q {
	case QualityBad:
		return "🔴"
	case QualityOkay:
		return "🟡"
	case QualityNice:
		return "🟢"
	default:
		return "⚫"
	}
}
