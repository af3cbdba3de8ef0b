package airgradient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const currentMeasuresBody = `{
	"wifi": -48,
	"serialno": "84fce612f644",
	"rco2": 620,
	"pm01": 2,
	"pm02": 10,
	"pm10": 3,
	"pm003Count": 270,
	"atmp": 25.75,
	"atmpCompensated": 24.9,
	"rhum": 43,
	"rhumCompensated": 48,
	"pm02Compensated": 7,
	"tvocIndex": 140,
	"tvocRaw": 30883,
	"noxIndex": 1,
	"noxRaw": 16359,
	"bootCount": 28,
	"boot": 28,
	"ledMode": "co2",
	"firmwareVersion": "3.1.1",
	"model": "I-9PSL"
}`

const measuresAfterBootBody = `{
	"wifi": -52,
	"serialno": "84fce612f644",
	"boot": 0,
	"firmwareVersion": "3.0.10",
	"rco2": null,
	"pm02": null,
	"atmp": null,
	"rhum": null,
	"tvoc_raw": null,
	"nox_raw": null
}`

const configBody = `{
	"country": "DE",
	"pmStandard": "ugm3",
	"ledBarMode": "co2",
	"displayBrightness": 100,
	"abcDays": 8,
	"tvocLearningOffset": 12,
	"noxLearningOffset": 12,
	"ledBarBrightness": 100,
	"temperatureUnit": "c",
	"configurationControl": "both",
	"postDataToAirGradient": true
}`

const configShortFormBody = `{
	"country": "DE",
	"pmStandard": "ugm3",
	"ledBarMode": "co2",
	"abcDays": 8,
	"temperatureUnit": "c",
	"configurationControl": "both",
	"postDataToAirGradient": true
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func assertHeaders(t *testing.T, r *http.Request) {
	t.Helper()

	if got := r.Header.Get("User-Agent"); got != "GoAirGradient/"+Version {
		t.Fatalf("unexpected User-Agent: %q", got)
	}
	if got := r.Header.Get("Accept"); got != "application/json" {
		t.Fatalf("unexpected Accept: %q", got)
	}
}

func TestCurrentMeasures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/measures/current" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		assertHeaders(t, r)
		_, _ = io.WriteString(w, currentMeasuresBody)
	})

	measures, err := client.CurrentMeasures(context.Background())
	if err != nil {
		t.Fatalf("CurrentMeasures: %v", err)
	}

	if measures.SerialNumber != "84fce612f644" {
		t.Fatalf("unexpected serial: %q", measures.SerialNumber)
	}
	if measures.SignalStrength != -48 {
		t.Fatalf("unexpected signal strength: %d", measures.SignalStrength)
	}
	if measures.BootCount != 28 {
		t.Fatalf("unexpected boot count: %d", measures.BootCount)
	}
	if measures.FirmwareVersion != "3.1.1" {
		t.Fatalf("unexpected firmware: %q", measures.FirmwareVersion)
	}
	if measures.Model != "I-9PSL" {
		t.Fatalf("unexpected model: %q", measures.Model)
	}
	if measures.CO2 == nil || *measures.CO2 != 620 {
		t.Fatalf("unexpected co2: %v", measures.CO2)
	}

	// Compensated values win the canonical fields, raw wire values stay.
	if measures.PM02 == nil || *measures.PM02 != 7 {
		t.Fatalf("unexpected pm02: %v", measures.PM02)
	}
	if measures.PM02Raw == nil || *measures.PM02Raw != 10 {
		t.Fatalf("unexpected raw pm02: %v", measures.PM02Raw)
	}
	if measures.Temperature == nil || *measures.Temperature != 24.9 {
		t.Fatalf("unexpected temperature: %v", measures.Temperature)
	}
	if measures.TemperatureRaw == nil || *measures.TemperatureRaw != 25.75 {
		t.Fatalf("unexpected raw temperature: %v", measures.TemperatureRaw)
	}
	if measures.Humidity == nil || *measures.Humidity != 48 {
		t.Fatalf("unexpected humidity: %v", measures.Humidity)
	}
	if measures.HumidityRaw == nil || *measures.HumidityRaw != 43 {
		t.Fatalf("unexpected raw humidity: %v", measures.HumidityRaw)
	}
}

func TestCurrentMeasuresAfterBoot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, measuresAfterBootBody)
	})

	measures, err := client.CurrentMeasures(context.Background())
	if err != nil {
		t.Fatalf("CurrentMeasures: %v", err)
	}

	// Boot counter arrives under its legacy key here.
	if measures.BootCount != 0 {
		t.Fatalf("unexpected boot count: %d", measures.BootCount)
	}
	if measures.CO2 != nil {
		t.Fatalf("expected nil co2, got %v", *measures.CO2)
	}
	if measures.PM02 != nil || measures.Temperature != nil || measures.Humidity != nil {
		t.Fatalf("expected nil canonical readings: %+v", measures)
	}
	if measures.Model != "" {
		t.Fatalf("expected empty model, got %q", measures.Model)
	}
}

func TestConfig(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/config" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		assertHeaders(t, r)
		_, _ = io.WriteString(w, configBody)
	})

	cfg, err := client.Config(context.Background())
	if err != nil {
		t.Fatalf("Config: %v", err)
	}

	if cfg.Country != "DE" {
		t.Fatalf("unexpected country: %q", cfg.Country)
	}
	if cfg.PmStandard != PmStandardUGM3 {
		t.Fatalf("unexpected pm standard: %q", cfg.PmStandard)
	}
	if cfg.LedBarMode != LedBarModeCO2 {
		t.Fatalf("unexpected led bar mode: %q", cfg.LedBarMode)
	}
	if cfg.ABCDays != 8 {
		t.Fatalf("unexpected abc days: %d", cfg.ABCDays)
	}
	if cfg.TemperatureUnit != TemperatureUnitCelsius {
		t.Fatalf("unexpected temperature unit: %q", cfg.TemperatureUnit)
	}
	if cfg.ConfigurationControl != ConfigurationControlBoth {
		t.Fatalf("unexpected configuration control: %q", cfg.ConfigurationControl)
	}
	if !cfg.PostDataToAirGradient {
		t.Fatal("expected sharing enabled")
	}
	if cfg.DisplayBrightness == nil || *cfg.DisplayBrightness != 100 {
		t.Fatalf("unexpected display brightness: %v", cfg.DisplayBrightness)
	}
	if cfg.NOxLearningOffset == nil || *cfg.NOxLearningOffset != 12 {
		t.Fatalf("unexpected nox offset: %v", cfg.NOxLearningOffset)
	}
}

func TestConfigShortForm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, configShortFormBody)
	})

	cfg, err := client.Config(context.Background())
	if err != nil {
		t.Fatalf("Config: %v", err)
	}

	if cfg.DisplayBrightness != nil || cfg.LedBarBrightness != nil {
		t.Fatalf("expected nil brightness fields: %+v", cfg)
	}
	if cfg.NOxLearningOffset != nil || cfg.TVOCLearningOffset != nil {
		t.Fatalf("expected nil learning offsets: %+v", cfg)
	}
}

func TestConfigMissingRequiredField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"pmStandard":"ugm3"}`)
	})

	_, err := client.Config(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if parseErr.Field != "country" {
		t.Fatalf("unexpected missing field: %q", parseErr.Field)
	}
	if !errors.Is(err, Err) {
		t.Fatal("expected error to match base Err")
	}
}

func TestUnexpectedServerResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "plain/text")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "Yes")
	})

	_, err := client.CurrentMeasures(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %T: %v", err, err)
	}
	if connErr.Details["Content-Type"] != "plain/text" {
		t.Fatalf("unexpected content type detail: %q", connErr.Details["Content-Type"])
	}
	if connErr.Details["response"] != "Yes" {
		t.Fatalf("unexpected response detail: %q", connErr.Details["response"])
	}
	if !errors.Is(err, Err) {
		t.Fatal("expected error to match base Err")
	}
}

func TestRequestTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = io.WriteString(w, currentMeasuresBody)
	})
	client.timeout = 20 * time.Millisecond

	_, err := client.CurrentMeasures(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %T: %v", err, err)
	}
	if !strings.Contains(connErr.Reason, "timeout") {
		t.Fatalf("expected timeout reason, got %q", connErr.Reason)
	}
}

func TestSetTemperatureUnit(t *testing.T) {
	var requests int
	var body string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Method != http.MethodPut || r.URL.Path != "/config" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		assertHeaders(t, r)
		payload, _ := io.ReadAll(r.Body)
		body = string(payload)
		_, _ = io.WriteString(w, "{}")
	})

	if err := client.SetTemperatureUnit(context.Background(), TemperatureUnitCelsius); err != nil {
		t.Fatalf("SetTemperatureUnit: %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected exactly one request, got %d", requests)
	}
	if body != `{"temperatureUnit":"c"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestSetterValidation(t *testing.T) {
	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	ctx := context.Background()
	if err := client.SetTemperatureUnit(ctx, TemperatureUnit("kelvin")); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if err := client.SetDisplayBrightness(ctx, 150); err == nil {
		t.Fatal("expected error for out-of-range brightness")
	}
	if err := client.SetLedBarMode(ctx, LedBarMode("disco")); err == nil {
		t.Fatal("expected error for unsupported mode")
	}
	if err := client.SetCO2AutomaticBaselineCalibration(ctx, -1); err == nil {
		t.Fatal("expected error for negative interval")
	}
}

func TestLatestFirmwareVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sensors/airgradient:84fce612f644/generic/os/firmware" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		assertHeaders(t, r)
		_, _ = io.WriteString(w, `{"targetVersion":"3.1.9"}`)
	}))
	defer server.Close()

	client, err := NewClient("192.0.2.1")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()
	client.firmwareHost = server.URL

	version, err := client.LatestFirmwareVersion(context.Background(), "84fce612f644")
	if err != nil {
		t.Fatalf("LatestFirmwareVersion: %v", err)
	}
	if version != "3.1.9" {
		t.Fatalf("unexpected version: %q", version)
	}
}

func TestSessionOwnership(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, currentMeasuresBody)
	}))
	defer server.Close()
	host := strings.TrimPrefix(server.URL, "http://")

	// No supplied session: one is created lazily and owned.
	owned, err := NewClient(host)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if owned.httpClient != nil {
		t.Fatal("session should not exist before first request")
	}
	if _, err := owned.CurrentMeasures(context.Background()); err != nil {
		t.Fatalf("CurrentMeasures: %v", err)
	}
	if owned.httpClient == nil || !owned.ownsSession {
		t.Fatal("expected lazily created owned session")
	}
	owned.Close()

	// Supplied session: never owned, Close leaves it alone.
	external := &http.Client{}
	supplied, err := NewClient(host, WithHTTPClient(external))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := supplied.CurrentMeasures(context.Background()); err != nil {
		t.Fatalf("CurrentMeasures: %v", err)
	}
	if supplied.ownsSession {
		t.Fatal("supplied session must not be owned")
	}
	supplied.Close()

	// The external session keeps working after Close.
	if _, err := supplied.CurrentMeasures(context.Background()); err != nil {
		t.Fatalf("CurrentMeasures after Close: %v", err)
	}
}
