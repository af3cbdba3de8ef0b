package mqttbridge

import (
	"fmt"
	"time"

	airgradient "github.com/joshp123/airgradient-golang"
)

// Reading is the JSON document published for each poll. Field names
// follow the device's own camelCase convention; absent sensors are
// omitted rather than published as zero.
type Reading struct {
	SerialNumber    string    `json:"serialNumber"`
	Model           string    `json:"model,omitempty"`
	ModelName       string    `json:"modelName,omitempty"`
	FirmwareVersion string    `json:"firmwareVersion"`
	BootCount       int       `json:"bootCount"`
	SignalStrength  int       `json:"signalStrength"`
	CO2             *float64  `json:"rco2,omitempty"`
	PM01            *float64  `json:"pm01,omitempty"`
	PM02            *float64  `json:"pm02,omitempty"`
	PM02Raw         *float64  `json:"pm02Raw,omitempty"`
	PM10            *float64  `json:"pm10,omitempty"`
	PM003Count      *float64  `json:"pm003Count,omitempty"`
	TVOCIndex       *float64  `json:"tvocIndex,omitempty"`
	TVOCRaw         *float64  `json:"tvocRaw,omitempty"`
	NOxIndex        *float64  `json:"noxIndex,omitempty"`
	NOxRaw          *float64  `json:"noxRaw,omitempty"`
	Temperature     *float64  `json:"atmp,omitempty"`
	TemperatureRaw  *float64  `json:"atmpRaw,omitempty"`
	Humidity        *float64  `json:"rhum,omitempty"`
	HumidityRaw     *float64  `json:"rhumRaw,omitempty"`
	CollectedAt     time.Time `json:"collectedAt"`
}

// NewReading maps a reconciled snapshot onto the publish payload.
func NewReading(m *airgradient.Measures, at time.Time) Reading {
	modelName, _ := airgradient.ModelName(m.Model)
	return Reading{
		SerialNumber:    m.SerialNumber,
		Model:           m.Model,
		ModelName:       modelName,
		FirmwareVersion: m.FirmwareVersion,
		BootCount:       m.BootCount,
		SignalStrength:  m.SignalStrength,
		CO2:             m.CO2,
		PM01:            m.PM01,
		PM02:            m.PM02,
		PM02Raw:         m.PM02Raw,
		PM10:            m.PM10,
		PM003Count:      m.PM003Count,
		TVOCIndex:       m.TVOCIndex,
		TVOCRaw:         m.TVOCRaw,
		NOxIndex:        m.NOxIndex,
		NOxRaw:          m.NOxRaw,
		Temperature:     m.Temperature,
		TemperatureRaw:  m.TemperatureRaw,
		Humidity:        m.Humidity,
		HumidityRaw:     m.HumidityRaw,
		CollectedAt:     at,
	}
}

// Topic is where the reading is published, keyed by device serial.
func (r Reading) Topic(prefix string) string {
	return fmt.Sprintf("%s/%s/measures", prefix, r.SerialNumber)
}
