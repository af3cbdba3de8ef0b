// Package airgradient is a client for the local HTTP API of AirGradient
// air-quality monitors, plus the AirGradient cloud firmware lookup.
package airgradient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Version is reported in the User-Agent header of every request.
const Version = "1.2.0"

const (
	defaultTimeout      = 10 * time.Second
	defaultFirmwareHost = "https://hw.airgradient.com"
	userAgent           = "GoAirGradient/" + Version
)

// Client talks to a single AirGradient device. Measurement and config
// calls go to the device's local address over plain HTTP; firmware
// lookups go to the fixed cloud host.
type Client struct {
	host         string
	httpClient   *http.Client
	timeout      time.Duration
	firmwareHost string
	ownsSession  bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient supplies an external HTTP client. Close never tears
// down a supplied client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout overrides the per-request timeout (default 10s).
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient builds a client for the device at host (IP or hostname, no
// scheme). The HTTP session is created lazily on first use unless one
// was supplied.
func NewClient(host string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("airgradient host is required")
	}

	c := &Client{
		host:         host,
		timeout:      defaultTimeout,
		firmwareHost: defaultFirmwareHost,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) session() *http.Client {
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
		c.ownsSession = true
	}
	return c.httpClient
}

// request performs one HTTP round trip. A relative target is joined onto
// the device base URL; an absolute URL passes through unchanged. The body
// is returned as-is on status 200 regardless of declared content type.
func (c *Client) request(ctx context.Context, method, target string, body any) (string, error) {
	endpoint := target
	if !strings.Contains(target, "://") {
		joined, err := url.JoinPath("http://"+c.host, target)
		if err != nil {
			return "", &ConnectionError{Reason: "communication error", Cause: err}
		}
		endpoint = joined
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return "", &ConnectionError{Reason: "communication error", Cause: err}
		}
		reader = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return "", &ConnectionError{Reason: "communication error", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.session().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &ConnectionError{
				Reason: fmt.Sprintf("timeout waiting for %s", endpoint),
				Cause:  err,
			}
		}
		return "", &ConnectionError{Reason: "communication error", Cause: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ConnectionError{Reason: "communication error", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ConnectionError{
			Reason: fmt.Sprintf("unexpected response from %s: status %d", endpoint, resp.StatusCode),
			Details: map[string]string{
				"Content-Type": resp.Header.Get("Content-Type"),
				"response":     string(payload),
			},
		}
	}

	return string(payload), nil
}

// CurrentMeasures reads the device's current sensor snapshot.
func (c *Client) CurrentMeasures(ctx context.Context) (*Measures, error) {
	response, err := c.request(ctx, http.MethodGet, "measures/current", nil)
	if err != nil {
		return nil, err
	}
	return ParseMeasures([]byte(response))
}

// RawCurrentMeasures returns the measurement payload untouched, for
// snapshotting and diagnostics.
func (c *Client) RawCurrentMeasures(ctx context.Context) ([]byte, error) {
	response, err := c.request(ctx, http.MethodGet, "measures/current", nil)
	if err != nil {
		return nil, err
	}
	return []byte(response), nil
}

// Config reads the device's current settings. The result is never
// cached; the device stays the source of truth.
func (c *Client) Config(ctx context.Context) (*Config, error) {
	response, err := c.request(ctx, http.MethodGet, "config", nil)
	if err != nil {
		return nil, err
	}
	return ParseConfig([]byte(response))
}

// RawConfig returns the config payload untouched.
func (c *Client) RawConfig(ctx context.Context) ([]byte, error) {
	response, err := c.request(ctx, http.MethodGet, "config", nil)
	if err != nil {
		return nil, err
	}
	return []byte(response), nil
}

// LatestFirmwareVersion asks the AirGradient cloud for the newest
// firmware version available for the given device serial.
func (c *Client) LatestFirmwareVersion(ctx context.Context, serial string) (string, error) {
	target := fmt.Sprintf("%s/sensors/airgradient:%s/generic/os/firmware", c.firmwareHost, serial)
	response, err := c.request(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	check, err := ParseVersionCheck([]byte(response))
	if err != nil {
		return "", err
	}
	return check.TargetVersion, nil
}

// setConfig writes exactly one config field. The device applies it
// immediately; there is no batching.
func (c *Client) setConfig(ctx context.Context, field string, value any) error {
	_, err := c.request(ctx, http.MethodPut, "config", map[string]any{field: value})
	return err
}

// SetPmStandard sets the particulate-matter display standard.
func (c *Client) SetPmStandard(ctx context.Context, standard PmStandard) error {
	if !standard.valid() {
		return fmt.Errorf("unsupported pm standard %q", standard)
	}
	return c.setConfig(ctx, "pmStandard", standard)
}

// SetTemperatureUnit sets the display temperature unit.
func (c *Client) SetTemperatureUnit(ctx context.Context, unit TemperatureUnit) error {
	if !unit.valid() {
		return fmt.Errorf("unsupported temperature unit %q", unit)
	}
	return c.setConfig(ctx, "temperatureUnit", unit)
}

// SetConfigurationControl sets which authority may change device
// configuration.
func (c *Client) SetConfigurationControl(ctx context.Context, control ConfigurationControl) error {
	if !control.valid() {
		return fmt.Errorf("unsupported configuration control %q", control)
	}
	return c.setConfig(ctx, "configurationControl", control)
}

// SetLedBarMode sets what the LED bar visualizes.
func (c *Client) SetLedBarMode(ctx context.Context, mode LedBarMode) error {
	if !mode.valid() {
		return fmt.Errorf("unsupported led bar mode %q", mode)
	}
	return c.setConfig(ctx, "ledBarMode", mode)
}

// RequestCO2Calibration asks the device to run a one-shot CO2 baseline
// calibration.
func (c *Client) RequestCO2Calibration(ctx context.Context) error {
	return c.setConfig(ctx, "co2CalibrationRequested", true)
}

// RequestLedBarTest asks the device to run a one-shot LED bar test.
func (c *Client) RequestLedBarTest(ctx context.Context) error {
	return c.setConfig(ctx, "ledBarTestRequested", true)
}

// SetDisplayBrightness sets display brightness in percent.
func (c *Client) SetDisplayBrightness(ctx context.Context, brightness int) error {
	if brightness < 0 || brightness > 100 {
		return fmt.Errorf("display brightness %d out of range 0-100", brightness)
	}
	return c.setConfig(ctx, "displayBrightness", brightness)
}

// SetLedBarBrightness sets LED bar brightness in percent.
func (c *Client) SetLedBarBrightness(ctx context.Context, brightness int) error {
	if brightness < 0 || brightness > 100 {
		return fmt.Errorf("led bar brightness %d out of range 0-100", brightness)
	}
	return c.setConfig(ctx, "ledBarBrightness", brightness)
}

// EnableSharingData toggles uploading measurements to the AirGradient
// cloud.
func (c *Client) EnableSharingData(ctx context.Context, enable bool) error {
	return c.setConfig(ctx, "postDataToAirGradient", enable)
}

// SetCO2AutomaticBaselineCalibration sets the automatic baseline
// calibration interval in days.
func (c *Client) SetCO2AutomaticBaselineCalibration(ctx context.Context, days int) error {
	if days < 0 {
		return fmt.Errorf("abc interval %d days is negative", days)
	}
	return c.setConfig(ctx, "abcDays", days)
}

// SetNOxLearningOffset sets the NOx sensor learning offset.
func (c *Client) SetNOxLearningOffset(ctx context.Context, offset int) error {
	return c.setConfig(ctx, "noxLearningOffset", offset)
}

// SetTVOCLearningOffset sets the TVOC sensor learning offset.
func (c *Client) SetTVOCLearningOffset(ctx context.Context, offset int) error {
	return c.setConfig(ctx, "tvocLearningOffset", offset)
}

// Close releases the HTTP session, but only one the client created
// itself. Caller-supplied sessions are left alone.
func (c *Client) Close() {
	if c.ownsSession && c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}
