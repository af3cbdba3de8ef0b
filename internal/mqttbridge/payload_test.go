package mqttbridge

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	airgradient "github.com/joshp123/airgradient-golang"
)

func floatPtr(v float64) *float64 { return &v }

func TestNewReading(t *testing.T) {
	measures := &airgradient.Measures{
		SignalStrength:  -48,
		SerialNumber:    "84fce612f644",
		BootCount:       28,
		FirmwareVersion: "3.1.1",
		Model:           "I-9PSL",
		CO2:             floatPtr(620),
		PM02:            floatPtr(7),
		PM02Raw:         floatPtr(10),
		Temperature:     floatPtr(24.9),
	}

	at := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	reading := NewReading(measures, at)

	if reading.SerialNumber != "84fce612f644" {
		t.Fatalf("unexpected serial: %q", reading.SerialNumber)
	}
	if reading.ModelName != "AirGradient ONE" {
		t.Fatalf("unexpected model name: %q", reading.ModelName)
	}
	if reading.PM02 == nil || *reading.PM02 != 7 {
		t.Fatalf("unexpected pm02: %v", reading.PM02)
	}
	if !reading.CollectedAt.Equal(at) {
		t.Fatalf("unexpected timestamp: %v", reading.CollectedAt)
	}

	if got := reading.Topic("airgradient"); got != "airgradient/84fce612f644/measures" {
		t.Fatalf("unexpected topic: %q", got)
	}

	// Absent sensors are omitted from the published document.
	payload, err := json.Marshal(reading)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(payload), "noxIndex") {
		t.Fatalf("expected absent nox index to be omitted: %s", payload)
	}
	if !strings.Contains(string(payload), `"rco2":620`) {
		t.Fatalf("expected co2 in payload: %s", payload)
	}
}
