package services

import (
	"errors"
	"testing"

	"weatherstation/hardware"
	"weatherstation/models"

	"go.uber.org/zap"
)

type fakeOutput struct {
	value  bool
	onErr  error
	offErr error
}

func (f *fakeOutput) On() error {
	if f.onErr != nil {
		return f.onErr
	}
	f.value = true
	return nil
}

func (f *fakeOutput) Off() error {
	if f.offErr != nil {
		return f.offErr
	}
	f.value = false
	return nil
}

func (f *fakeOutput) Value() bool { return f.value }

func newTestIndicators() (*IndicatorDriver, []hardware.Output) {
	red := hardware.NewSimulatedPin("red", zap.NewNop())
	yellow := hardware.NewSimulatedPin("yellow", zap.NewNop())
	green := hardware.NewSimulatedPin("green", zap.NewNop())
	return NewIndicatorDriver(red, yellow, green, zap.NewNop()), []hardware.Output{red, yellow, green}
}

func TestSetIndicatorsMutualExclusion(t *testing.T) {
	tests := []struct {
		quality models.Quality
		lit     int
		color   models.IndicatorColor
	}{
		{models.QualityBad, 0, models.IndicatorRed},
		{models.QualityOkay, 1, models.IndicatorYellow},
		{models.QualityNice, 2, models.IndicatorGreen},
	}

	driver, outputs := newTestIndicators()
	// cycle through every quality twice to check stale lights are cleared
	for round := 0; round < 2; round++ {
		for _, tt := range tests {
			if err := driver.SetIndicators(tt.quality); err != nil {
				t.Fatalf("SetIndicators(%q) returned error: %v", tt.quality, err)
			}
			active := 0
			for i, out := range outputs {
				if out.Value() {
					active++
					if i != tt.lit {
						t.Fatalf("quality %q lit output %d, want %d", tt.quality, i, tt.lit)
					}
				}
			}
			if active != 1 {
				t.Fatalf("quality %q: %d outputs active, want exactly 1", tt.quality, active)
			}
			if got := driver.Active(); got != tt.color {
				t.Fatalf("Active() = %q, want %q", got, tt.color)
			}
		}
	}
}

func TestSetIndicatorsIsIdempotent(t *testing.T) {
	driver, _ := newTestIndicators()

	for i := 0; i < 3; i++ {
		if err := driver.SetIndicators(models.QualityOkay); err != nil {
			t.Fatalf("SetIndicators returned error: %v", err)
		}
	}
	if got := driver.Active(); got != models.IndicatorYellow {
		t.Fatalf("Active() = %q, want yellow", got)
	}
}

func TestClearAll(t *testing.T) {
	driver, _ := newTestIndicators()
	_ = driver.SetIndicators(models.QualityBad)

	if err := driver.ClearAll(); err != nil {
		t.Fatalf("ClearAll returned error: %v", err)
	}
	if got := driver.Active(); got != models.IndicatorNone {
		t.Fatalf("Active() = %q after ClearAll, want none", got)
	}
}

func TestSetIndicatorsOutputFault(t *testing.T) {
	broken := &fakeOutput{onErr: errors.New("gpio busy")}
	driver := NewIndicatorDriver(&fakeOutput{}, &fakeOutput{}, broken, zap.NewNop())

	err := driver.SetIndicators(models.QualityNice)
	var fault *Fault
	if !errors.As(err, &fault) || fault.Kind != FaultOutput {
		t.Fatalf("expected output fault, got %v", err)
	}
}

func TestClearAllAttemptsEveryOutput(t *testing.T) {
	red := &fakeOutput{value: true, offErr: errors.New("stuck")}
	yellow := &fakeOutput{value: true}
	green := &fakeOutput{value: true}
	driver := NewIndicatorDriver(red, yellow, green, zap.NewNop())

	if err := driver.ClearAll(); err == nil {
		t.Fatal("expected error from stuck output")
	}
	if yellow.value || green.value {
		t.Fatal("healthy outputs should still be cleared")
	}
}
