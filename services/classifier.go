package services

import (
	"fmt"
	"math"
	"strings"

	"weatherstation/config"
	"weatherstation/models"
)

// LightBand covers raw values up to and including Max
type LightBand struct {
	Max   int
	Level models.LightLevel
}

// LightProfile is an ordered set of bands for one ADC resolution
type LightProfile struct {
	Name  string
	Bands []LightBand
}

var (
	// U16LightProfile buckets 16-bit ADC readings (0-65535)
	U16LightProfile = LightProfile{
		Name: config.LightProfileU16,
		Bands: []LightBand{
			{Max: 5000, Level: models.LightVeryDark},
			{Max: 15000, Level: models.LightDark},
			{Max: 30000, Level: models.LightDim},
			{Max: 50000, Level: models.LightBright},
			{Max: math.MaxInt, Level: models.LightVeryBright},
		},
	}

	// LegacyLightProfile buckets the narrow 200-800 range of the first deployments
	LegacyLightProfile = LightProfile{
		Name: config.LightProfileLegacy,
		Bands: []LightBand{
			{Max: 299, Level: models.LightVeryDark},
			{Max: 399, Level: models.LightDark},
			{Max: 499, Level: models.LightDim},
			{Max: 599, Level: models.LightLight},
			{Max: 699, Level: models.LightBright},
			{Max: math.MaxInt, Level: models.LightVeryBright},
		},
	}
)

// LightProfileByName returns the named profile
func LightProfileByName(name string) (LightProfile, error) {
	switch name {
	case config.LightProfileU16:
		return U16LightProfile, nil
	case config.LightProfileLegacy:
		return LegacyLightProfile, nil
	default:
		return LightProfile{}, fmt.Errorf("unknown light profile %q", name)
	}
}

// Level returns the first band containing raw
func (p LightProfile) Level(raw int) models.LightLevel {
	for _, band := range p.Bands {
		if raw <= band.Max {
			return band.Level
		}
	}
	return p.Bands[len(p.Bands)-1].Level
}

// SimulatedMax is the upper bound used when simulating this profile's sensor
func (p LightProfile) SimulatedMax() int {
	if len(p.Bands) < 2 {
		return 65535
	}
	// one band's width past the last finite edge
	last := p.Bands[len(p.Bands)-2].Max
	prev := 0
	if len(p.Bands) > 2 {
		prev = p.Bands[len(p.Bands)-3].Max
	}
	return min(last+(last-prev), 65535)
}

// Voltage converts raw to volts against vref, treating SimulatedMax as full scale
func (p LightProfile) Voltage(raw int, vref float64) float64 {
	full := p.SimulatedMax()
	raw = max(0, min(raw, full))
	return float64(raw) * vref / float64(full)
}

// WeatherQuality applies the comfort rules in priority order: bad, then okay, then nice
func WeatherQuality(temp, humidity float64) models.Quality {
	switch {
	case temp < 5 || temp > 35:
		return models.QualityBad
	case humidity > 80:
		return models.QualityBad
	case temp < 10 || temp > 30:
		return models.QualityOkay
	case humidity > 70:
		return models.QualityOkay
	default:
		return models.QualityNice
	}
}

// WeatherDescription bands temperature alone
func WeatherDescription(temp float64) models.WeatherCondition {
	switch {
	case temp < 5:
		return models.ConditionVeryCold
	case temp < 15:
		return models.ConditionCold
	case temp < 25:
		return models.ConditionMild
	case temp < 30:
		return models.ConditionWarm
	default:
		return models.ConditionHot
	}
}

// OutfitRecommendation joins the base clothing with humidity and light extras
func OutfitRecommendation(temp, humidity float64, light models.LightLevel) string {
	var outfit []string

	switch {
	case temp < 5:
		outfit = append(outfit, "Heavy coat, warm layers")
	case temp < 15:
		outfit = append(outfit, "Jacket or sweater")
	case temp < 25:
		outfit = append(outfit, "Light jacket or long sleeves")
	default:
		outfit = append(outfit, "T-shirt or light clothing")
	}

	if humidity > 70 {
		outfit = append(outfit, "breathable fabric")
	}
	if light.IsBright() {
		outfit = append(outfit, "sunglasses")
	}

	return strings.Join(outfit, ", ")
}

type Classifier struct {
	profile LightProfile
}

func NewClassifier(profile LightProfile) *Classifier {
	return &Classifier{
		profile: profile,
	}
}

// Profile returns the light profile in use
func (c *Classifier) Profile() LightProfile {
	return c.profile
}

// Classify derives every category from one reading. It has no error cases:
// implausible values fall into the nearest band.
func (c *Classifier) Classify(temp, humidity float64, lightRaw int) models.Classification {
	light := c.profile.Level(lightRaw)
	return models.Classification{
		LightLevel:       light,
		WeatherCondition: WeatherDescription(temp),
		WeatherQuality:   WeatherQuality(temp, humidity),
		Outfit:           OutfitRecommendation(temp, humidity, light),
	}
}
