package signal

import (
	"math"
	"testing"
)

func TestRGBToHSGrayIsZeroSaturation(t *testing.T) {
	_, s := rgbToHS(128, 128, 128)
	if s != 0 {
		t.Errorf("expected zero saturation for a gray pixel, got %v", s)
	}
}

func TestRGBToHSPureRed(t *testing.T) {
	h, s := rgbToHS(255, 0, 0)
	if math.Abs(h) > 0.001 {
		t.Errorf("expected hue 0 for pure red, got %v", h)
	}
	if math.Abs(s-1.0) > 0.001 {
		t.Errorf("expected saturation 1 for pure red, got %v", s)
	}
}

func TestHueSatHistogramNormalizesToOne(t *testing.T) {
	rgb := make([]byte, 4*3)
	for i := range rgb {
		rgb[i] = byte(i * 10)
	}
	hist := hueSatHistogram(rgb)
	sum := 0.0
	for _, v := range hist {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("expected histogram to sum to 1, got %v", sum)
	}
}

func TestL1DistanceIdenticalIsZero(t *testing.T) {
	a := []float64{0.1, 0.2, 0.3}
	if d := l1Distance(a, a); d != 0 {
		t.Errorf("expected 0 distance for identical histograms, got %v", d)
	}
}

func TestMeanAbsDiffIdenticalFramesIsZero(t *testing.T) {
	a := []byte{10, 20, 30, 40}
	if d := meanAbsDiff(a, a); d != 0 {
		t.Errorf("expected 0 diff for identical frames, got %v", d)
	}
}

func TestMeanAbsDiff(t *testing.T) {
	a := []byte{10, 20}
	b := []byte{0, 50}
	got := meanAbsDiff(a, b)
	want := (10.0 + 30.0) / 2
	if got != want {
		t.Errorf("meanAbsDiff() = %v, want %v", got, want)
	}
}

func TestNormalizeScalesByMax(t *testing.T) {
	values := []float64{0, 2, 4}
	normalize(values)
	if values[2] != 1.0 {
		t.Errorf("expected max value to normalize to 1.0, got %v", values[2])
	}
	if values[1] != 0.5 {
		t.Errorf("expected mid value to normalize to 0.5, got %v", values[1])
	}
}

func TestNormalizeAllZeroLeavesUnchanged(t *testing.T) {
	values := []float64{0, 0, 0}
	normalize(values)
	for _, v := range values {
		if v != 0 {
			t.Errorf("expected all-zero signal to stay zero, got %v", v)
		}
	}
}

func TestParseRMSLevels(t *testing.T) {
	output := []byte(
		"frame:0 pts:0\nlavfi.astats.Overall.RMS_level=-20.5\n" +
			"frame:1 pts:1\nlavfi.astats.Overall.RMS_level=-inf\n" +
			"frame:2 pts:2\nlavfi.astats.Overall.RMS_level=-15.0\n",
	)
	levels, err := parseRMSLevels(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	if levels[1] != 0 {
		t.Errorf("expected -inf to parse as 0, got %v", levels[1])
	}
}

func TestParseRMSLevelsMalformedValueFails(t *testing.T) {
	output := []byte("lavfi.astats.Overall.RMS_level=not-a-number\n")
	if _, err := parseRMSLevels(output); err == nil {
		t.Error("expected an error for a malformed RMS value")
	}
}
