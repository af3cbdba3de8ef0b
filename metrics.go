package airgradient

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector scrapes the device once per Collect and exposes the
// reconciled snapshot as prometheus gauges. Absent readings export
// nothing.
type Collector struct {
	client *Client

	scrapeSuccess prometheus.Gauge
	lastSuccess   prometheus.Gauge
	info          *prometheus.GaugeVec

	wifiRssiDbm        prometheus.Gauge
	co2Ppm             prometheus.Gauge
	pm01Ugm3           prometheus.Gauge
	pm02Ugm3           prometheus.Gauge
	pm02RawUgm3        prometheus.Gauge
	pm10Ugm3           prometheus.Gauge
	pm003CountPerDl    prometheus.Gauge
	tvocIndex          prometheus.Gauge
	tvocRaw            prometheus.Gauge
	noxIndex           prometheus.Gauge
	noxRaw             prometheus.Gauge
	tempCelsius        prometheus.Gauge
	tempRawCelsius     prometheus.Gauge
	humidityPercent    prometheus.Gauge
	humidityRawPercent prometheus.Gauge
	bootCount          prometheus.Gauge
}

// NewCollector builds a collector bound to one device client.
func NewCollector(client *Client) *Collector {
	return &Collector{
		client: client,
		scrapeSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_scrape_success",
			Help: "Last scrape success (1=ok, 0=error)",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_last_success_timestamp_seconds",
			Help: "Last successful scrape timestamp (epoch seconds)",
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "airgradient_info",
			Help: "AirGradient device info",
		}, []string{"serial", "model", "model_name", "firmware"}),
		wifiRssiDbm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_wifi_rssi_dbm",
			Help: "WiFi signal strength (dBm)",
		}),
		co2Ppm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_co2_ppm",
			Help: "CO2 concentration (ppm)",
		}),
		pm01Ugm3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_pm01_ugm3",
			Help: "PM1.0 concentration (ug/m3)",
		}),
		pm02Ugm3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_pm02_ugm3",
			Help: "PM2.5 concentration, compensated when available (ug/m3)",
		}),
		pm02RawUgm3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_pm02_raw_ugm3",
			Help: "PM2.5 concentration as reported by the sensor (ug/m3)",
		}),
		pm10Ugm3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_pm10_ugm3",
			Help: "PM10 concentration (ug/m3)",
		}),
		pm003CountPerDl: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_pm003_count_per_dl",
			Help: "Particle count 0.3um per dL",
		}),
		tvocIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_tvoc_index",
			Help: "TVOC index",
		}),
		tvocRaw: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_tvoc_raw",
			Help: "TVOC raw value",
		}),
		noxIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_nox_index",
			Help: "NOx index",
		}),
		noxRaw: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_nox_raw",
			Help: "NOx raw value",
		}),
		tempCelsius: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_temperature_celsius",
			Help: "Temperature, compensated when available (celsius)",
		}),
		tempRawCelsius: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_temperature_raw_celsius",
			Help: "Temperature as reported by the sensor (celsius)",
		}),
		humidityPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_humidity_percent",
			Help: "Relative humidity, compensated when available (%)",
		}),
		humidityRawPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_humidity_raw_percent",
			Help: "Relative humidity as reported by the sensor (%)",
		}),
		bootCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airgradient_boot_count",
			Help: "Boot counter",
		}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.scrapeSuccess.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.info.Describe(ch)
	c.wifiRssiDbm.Describe(ch)
	c.co2Ppm.Describe(ch)
	c.pm01Ugm3.Describe(ch)
	c.pm02Ugm3.Describe(ch)
	c.pm02RawUgm3.Describe(ch)
	c.pm10Ugm3.Describe(ch)
	c.pm003CountPerDl.Describe(ch)
	c.tvocIndex.Describe(ch)
	c.tvocRaw.Describe(ch)
	c.noxIndex.Describe(ch)
	c.noxRaw.Describe(ch)
	c.tempCelsius.Describe(ch)
	c.tempRawCelsius.Describe(ch)
	c.humidityPercent.Describe(ch)
	c.humidityRawPercent.Describe(ch)
	c.bootCount.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if c.client == nil {
		c.scrapeSuccess.Set(0)
		c.collectAll(ch)
		return
	}

	measures, err := c.client.CurrentMeasures(ctx)
	if err != nil {
		c.scrapeSuccess.Set(0)
		c.collectAll(ch)
		return
	}

	c.scrapeSuccess.Set(1)
	c.lastSuccess.Set(float64(time.Now().Unix()))

	c.info.Reset()
	modelName, _ := ModelName(measures.Model)
	c.info.With(prometheus.Labels{
		"serial":     measures.SerialNumber,
		"model":      measures.Model,
		"model_name": modelName,
		"firmware":   measures.FirmwareVersion,
	}).Set(1)

	c.wifiRssiDbm.Set(float64(measures.SignalStrength))
	c.bootCount.Set(float64(measures.BootCount))
	setGauge(c.co2Ppm, measures.CO2)
	setGauge(c.pm01Ugm3, measures.PM01)
	setGauge(c.pm02Ugm3, measures.PM02)
	setGauge(c.pm02RawUgm3, measures.PM02Raw)
	setGauge(c.pm10Ugm3, measures.PM10)
	setGauge(c.pm003CountPerDl, measures.PM003Count)
	setGauge(c.tvocIndex, measures.TVOCIndex)
	setGauge(c.tvocRaw, measures.TVOCRaw)
	setGauge(c.noxIndex, measures.NOxIndex)
	setGauge(c.noxRaw, measures.NOxRaw)
	setGauge(c.tempCelsius, measures.Temperature)
	setGauge(c.tempRawCelsius, measures.TemperatureRaw)
	setGauge(c.humidityPercent, measures.Humidity)
	setGauge(c.humidityRawPercent, measures.HumidityRaw)

	c.collectAll(ch)
}

func (c *Collector) collectAll(ch chan<- prometheus.Metric) {
	c.scrapeSuccess.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.info.Collect(ch)
	c.wifiRssiDbm.Collect(ch)
	c.co2Ppm.Collect(ch)
	c.pm01Ugm3.Collect(ch)
	c.pm02Ugm3.Collect(ch)
	c.pm02RawUgm3.Collect(ch)
	c.pm10Ugm3.Collect(ch)
	c.pm003CountPerDl.Collect(ch)
	c.tvocIndex.Collect(ch)
	c.tvocRaw.Collect(ch)
	c.noxIndex.Collect(ch)
	c.noxRaw.Collect(ch)
	c.tempCelsius.Collect(ch)
	c.tempRawCelsius.Collect(ch)
	c.humidityPercent.Collect(ch)
	c.humidityRawPercent.Collect(ch)
	c.bootCount.Collect(ch)
}

func setGauge(g prometheus.Gauge, value *float64) {
	if value == nil {
		return
	}
	g.Set(*value)
}
