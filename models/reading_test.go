package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestColorFor(t *testing.T) {
	tests := []struct {
		q    Quality
		want IndicatorColor
	}{
		{QualityBad, IndicatorRed},
		{QualityOkay, IndicatorYellow},
		{QualityNice, IndicatorGreen},
		{Quality("unknown"), IndicatorGreen},
	}
	for _, tt := range tests {
		if got := ColorFor(tt.q); got != tt.want {
			t.Errorf("ColorFor(%q) = %q, want %q", tt.q, got, tt.want)
		}
	}
}

func TestLightLevelRankIsOrdered(t *testing.T) {
	levels := []LightLevel{LightVeryDark, LightDark, LightDim, LightLight, LightBright, LightVeryBright}
	for i := 1; i < len(levels); i++ {
		if levels[i].Rank() <= levels[i-1].Rank() {
			t.Errorf("%q should rank above %q", levels[i], levels[i-1])
		}
	}
	if LightLevel("Dusk").Rank() != -1 {
		t.Error("unknown level should rank -1")
	}
	if !LightBright.IsBright() || !LightVeryBright.IsBright() || LightLight.IsBright() {
		t.Error("only Bright and Very Bright count as bright")
	}
}

func TestRecordDocumentKeys(t *testing.T) {
	reading := NewReading(22, 55, 620, time.Unix(1700000000, 0))
	record := NewRecord(reading, Classification{
		LightLevel:       LightVeryDark,
		WeatherCondition: ConditionMild,
		WeatherQuality:   QualityNice,
		Outfit:           "Light jacket or long sleeves",
	}, "")

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	want := map[string]any{
		"timestamp":             float64(1700000000),
		"temperature":           float64(22),
		"humidity":              float64(55),
		"light_raw":             float64(620),
		"light_level":           "Very Dark",
		"weather_condition":     "Mild",
		"weather_quality":       "nice",
		"outfit_recommendation": "Light jacket or long sleeves",
	}
	for key, v := range want {
		if doc[key] != v {
			t.Errorf("%s = %v, want %v", key, doc[key], v)
		}
	}
	if _, ok := doc["device"]; ok {
		t.Error("empty device should be omitted")
	}
	if !record.Time().Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Time() = %v", record.Time())
	}
}
