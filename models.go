package airgradient

import "encoding/json"

// PmStandard selects the particulate-matter scale shown on the display.
type PmStandard string

const (
	PmStandardUGM3  PmStandard = "ugm3"
	PmStandardUSAQI PmStandard = "us-aqi"
)

func (s PmStandard) valid() bool {
	switch s {
	case PmStandardUGM3, PmStandardUSAQI:
		return true
	}
	return false
}

// TemperatureUnit selects the unit shown on the display.
type TemperatureUnit string

const (
	TemperatureUnitCelsius    TemperatureUnit = "c"
	TemperatureUnitFahrenheit TemperatureUnit = "f"
)

func (u TemperatureUnit) valid() bool {
	switch u {
	case TemperatureUnitCelsius, TemperatureUnitFahrenheit:
		return true
	}
	return false
}

// ConfigurationControl names the authority allowed to change device
// configuration.
type ConfigurationControl string

const (
	ConfigurationControlCloud ConfigurationControl = "cloud"
	ConfigurationControlLocal ConfigurationControl = "local"
	// ConfigurationControlBoth is what firmware reports before either
	// authority has claimed the device. Kept opaque.
	ConfigurationControlBoth ConfigurationControl = "both"
)

func (c ConfigurationControl) valid() bool {
	switch c {
	case ConfigurationControlCloud, ConfigurationControlLocal, ConfigurationControlBoth:
		return true
	}
	return false
}

// LedBarMode selects what the LED bar visualizes.
type LedBarMode string

const (
	LedBarModeOff LedBarMode = "off"
	LedBarModeCO2 LedBarMode = "co2"
	LedBarModePM  LedBarMode = "pm"
)

func (m LedBarMode) valid() bool {
	switch m {
	case LedBarModeOff, LedBarModeCO2, LedBarModePM:
		return true
	}
	return false
}

// Measures is one snapshot of the device's current readings. Sensor
// fields are nil when the firmware or model does not report them; nil
// never means zero. For PM2.5, temperature and humidity the canonical
// field holds the firmware-compensated value when one was reported, with
// the plain wire value kept on the Raw variant.
type Measures struct {
	SignalStrength  int
	SerialNumber    string
	BootCount       int
	FirmwareVersion string
	Model           string

	CO2         *float64
	PM01        *float64
	PM02        *float64
	PM10        *float64
	PM003Count  *float64
	TVOCIndex   *float64
	TVOCRaw     *float64
	NOxIndex    *float64
	NOxRaw      *float64
	Temperature *float64
	Humidity    *float64

	PM02Raw        *float64
	TemperatureRaw *float64
	HumidityRaw    *float64

	PM02Compensated        *float64
	TemperatureCompensated *float64
	HumidityCompensated    *float64
}

// Config is the device's current settings. The device is the source of
// truth: a Config is never cached across calls. Pointer fields are not
// reported by the short-form firmware variant.
type Config struct {
	Country               string
	PmStandard            PmStandard
	LedBarMode            LedBarMode
	ABCDays               int
	TemperatureUnit       TemperatureUnit
	ConfigurationControl  ConfigurationControl
	PostDataToAirGradient bool

	DisplayBrightness  *int
	LedBarBrightness   *int
	NOxLearningOffset  *int
	TVOCLearningOffset *int
}

// VersionCheck is the cloud's answer to a firmware lookup.
type VersionCheck struct {
	TargetVersion string
}

// Wire-key aliases, preferred spelling first. Firmware releases renamed
// several keys; listing every accepted spelling here keeps version skew
// a data change.
var (
	aliasBootCount       = []string{"bootCount", "boot"}
	aliasFirmwareVersion = []string{"firmwareVersion", "firmware"}
	aliasTVOCRaw         = []string{"tvocRaw", "tvoc_raw"}
	aliasNOxRaw          = []string{"noxRaw", "nox_raw"}
	aliasTargetVersion   = []string{"targetVersion", "target"}
)

// payload is a decoded JSON object before field resolution. Unknown keys
// are simply never looked up.
type payload map[string]json.RawMessage

func decodePayload(record string, data []byte) (payload, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &ParseError{Record: record, Cause: err}
	}
	return p, nil
}

func (p payload) lookup(keys []string) (json.RawMessage, bool) {
	for _, key := range keys {
		if raw, ok := p[key]; ok && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

func (p payload) requiredString(record string, keys []string) (string, error) {
	raw, ok := p.lookup(keys)
	if !ok {
		return "", &ParseError{Record: record, Field: keys[0]}
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", &ParseError{Record: record, Field: keys[0], Cause: err}
	}
	return value, nil
}

func (p payload) requiredInt(record string, keys []string) (int, error) {
	raw, ok := p.lookup(keys)
	if !ok {
		return 0, &ParseError{Record: record, Field: keys[0]}
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, &ParseError{Record: record, Field: keys[0], Cause: err}
	}
	return value, nil
}

func (p payload) requiredBool(record string, keys []string) (bool, error) {
	raw, ok := p.lookup(keys)
	if !ok {
		return false, &ParseError{Record: record, Field: keys[0]}
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, &ParseError{Record: record, Field: keys[0], Cause: err}
	}
	return value, nil
}

func (p payload) optionalString(record string, keys []string) (string, error) {
	raw, ok := p.lookup(keys)
	if !ok {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", &ParseError{Record: record, Field: keys[0], Cause: err}
	}
	return value, nil
}

func (p payload) optionalFloat(record string, keys []string) (*float64, error) {
	raw, ok := p.lookup(keys)
	if !ok {
		return nil, nil
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &ParseError{Record: record, Field: keys[0], Cause: err}
	}
	return &value, nil
}

func (p payload) optionalInt(record string, keys []string) (*int, error) {
	raw, ok := p.lookup(keys)
	if !ok {
		return nil, nil
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &ParseError{Record: record, Field: keys[0], Cause: err}
	}
	return &value, nil
}

// ParseMeasures decodes a /measures/current payload into a Measures
// snapshot, resolving key aliases and reconciling compensated readings.
func ParseMeasures(data []byte) (*Measures, error) {
	const record = "measures"

	p, err := decodePayload(record, data)
	if err != nil {
		return nil, err
	}

	m := &Measures{}
	if m.SignalStrength, err = p.requiredInt(record, []string{"wifi"}); err != nil {
		return nil, err
	}
	if m.SerialNumber, err = p.requiredString(record, []string{"serialno"}); err != nil {
		return nil, err
	}
	if m.BootCount, err = p.requiredInt(record, aliasBootCount); err != nil {
		return nil, err
	}
	if m.FirmwareVersion, err = p.requiredString(record, aliasFirmwareVersion); err != nil {
		return nil, err
	}
	if m.Model, err = p.optionalString(record, []string{"model"}); err != nil {
		return nil, err
	}
	if m.CO2, err = p.optionalFloat(record, []string{"rco2"}); err != nil {
		return nil, err
	}
	if m.PM01, err = p.optionalFloat(record, []string{"pm01"}); err != nil {
		return nil, err
	}
	if m.PM02Raw, err = p.optionalFloat(record, []string{"pm02"}); err != nil {
		return nil, err
	}
	if m.PM10, err = p.optionalFloat(record, []string{"pm10"}); err != nil {
		return nil, err
	}
	if m.PM003Count, err = p.optionalFloat(record, []string{"pm003Count"}); err != nil {
		return nil, err
	}
	if m.TVOCIndex, err = p.optionalFloat(record, []string{"tvocIndex"}); err != nil {
		return nil, err
	}
	if m.TVOCRaw, err = p.optionalFloat(record, aliasTVOCRaw); err != nil {
		return nil, err
	}
	if m.NOxIndex, err = p.optionalFloat(record, []string{"noxIndex"}); err != nil {
		return nil, err
	}
	if m.NOxRaw, err = p.optionalFloat(record, aliasNOxRaw); err != nil {
		return nil, err
	}
	if m.TemperatureRaw, err = p.optionalFloat(record, []string{"atmp"}); err != nil {
		return nil, err
	}
	if m.HumidityRaw, err = p.optionalFloat(record, []string{"rhum"}); err != nil {
		return nil, err
	}
	if m.PM02Compensated, err = p.optionalFloat(record, []string{"pm02Compensated"}); err != nil {
		return nil, err
	}
	if m.TemperatureCompensated, err = p.optionalFloat(record, []string{"atmpCompensated"}); err != nil {
		return nil, err
	}
	if m.HumidityCompensated, err = p.optionalFloat(record, []string{"rhumCompensated"}); err != nil {
		return nil, err
	}

	reconcileMeasures(m)
	return m, nil
}

// reconcileMeasures fills the canonical PM2.5, temperature and humidity
// fields, preferring the firmware-compensated value when one is present.
func reconcileMeasures(m *Measures) {
	m.PM02 = m.PM02Raw
	if m.PM02Compensated != nil {
		m.PM02 = m.PM02Compensated
	}
	m.Temperature = m.TemperatureRaw
	if m.TemperatureCompensated != nil {
		m.Temperature = m.TemperatureCompensated
	}
	m.Humidity = m.HumidityRaw
	if m.HumidityCompensated != nil {
		m.Humidity = m.HumidityCompensated
	}
}

// ParseConfig decodes a /config payload. Brightness and learning-offset
// fields stay nil on short-form firmware; every other field is required.
func ParseConfig(data []byte) (*Config, error) {
	const record = "config"

	p, err := decodePayload(record, data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if cfg.Country, err = p.requiredString(record, []string{"country"}); err != nil {
		return nil, err
	}
	pmStandard, err := p.requiredString(record, []string{"pmStandard"})
	if err != nil {
		return nil, err
	}
	cfg.PmStandard = PmStandard(pmStandard)
	ledBarMode, err := p.requiredString(record, []string{"ledBarMode"})
	if err != nil {
		return nil, err
	}
	cfg.LedBarMode = LedBarMode(ledBarMode)
	if cfg.ABCDays, err = p.requiredInt(record, []string{"abcDays"}); err != nil {
		return nil, err
	}
	temperatureUnit, err := p.requiredString(record, []string{"temperatureUnit"})
	if err != nil {
		return nil, err
	}
	cfg.TemperatureUnit = TemperatureUnit(temperatureUnit)
	configurationControl, err := p.requiredString(record, []string{"configurationControl"})
	if err != nil {
		return nil, err
	}
	cfg.ConfigurationControl = ConfigurationControl(configurationControl)
	if cfg.PostDataToAirGradient, err = p.requiredBool(record, []string{"postDataToAirGradient"}); err != nil {
		return nil, err
	}
	if cfg.DisplayBrightness, err = p.optionalInt(record, []string{"displayBrightness"}); err != nil {
		return nil, err
	}
	if cfg.LedBarBrightness, err = p.optionalInt(record, []string{"ledBarBrightness"}); err != nil {
		return nil, err
	}
	if cfg.NOxLearningOffset, err = p.optionalInt(record, []string{"noxLearningOffset"}); err != nil {
		return nil, err
	}
	if cfg.TVOCLearningOffset, err = p.optionalInt(record, []string{"tvocLearningOffset"}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseVersionCheck decodes a cloud firmware-lookup payload.
func ParseVersionCheck(data []byte) (*VersionCheck, error) {
	const record = "version check"

	p, err := decodePayload(record, data)
	if err != nil {
		return nil, err
	}

	target, err := p.requiredString(record, aliasTargetVersion)
	if err != nil {
		return nil, err
	}
	return &VersionCheck{TargetVersion: target}, nil
}
