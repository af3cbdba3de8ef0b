package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	airgradient "github.com/joshp123/airgradient-golang"
)

func main() {
	args, opts := splitFlags(os.Args[1:])
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	// model-name is a pure lookup; no device needed.
	if args[0] == "model-name" {
		if len(args) < 2 {
			fatal("model-name", fmt.Errorf("missing model identifier"))
		}
		name, ok := airgradient.ModelName(args[1])
		if !ok {
			fmt.Println("unknown model")
			os.Exit(1)
		}
		fmt.Println(name)
		return
	}

	host := opts.host
	if host == "" {
		host = os.Getenv("AIRGRADIENT_HOST")
	}
	if host == "" {
		fatal("connect", fmt.Errorf("missing --host (or AIRGRADIENT_HOST)"))
	}

	client, err := airgradient.NewClient(host, airgradient.WithTimeout(opts.timeout))
	if err != nil {
		fatal("connect", err)
	}
	defer client.Close()

	ctx := context.Background()

	switch args[0] {
	case "current", "status":
		currentCmd(ctx, client, opts)
	case "snapshot":
		payload, err := client.RawCurrentMeasures(ctx)
		if err != nil {
			fatal("snapshot", err)
		}
		fmt.Println(string(payload))
	case "config":
		configCmd(ctx, client, opts)
	case "firmware":
		if len(args) < 2 {
			fatal("firmware", fmt.Errorf("missing serial number"))
		}
		version, err := client.LatestFirmwareVersion(ctx, args[1])
		if err != nil {
			fatal("firmware", err)
		}
		fmt.Println(version)
	case "set":
		setCmd(ctx, client, args[1:])
	case "calibrate-co2":
		if err := client.RequestCO2Calibration(ctx); err != nil {
			fatal("calibrate-co2", err)
		}
	case "led-test":
		if err := client.RequestLedBarTest(ctx); err != nil {
			fatal("led-test", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func currentCmd(ctx context.Context, client *airgradient.Client, opts options) {
	if opts.json {
		payload, err := client.RawCurrentMeasures(ctx)
		if err != nil {
			fatal("current", err)
		}
		fmt.Println(string(payload))
		return
	}

	measures, err := client.CurrentMeasures(ctx)
	if err != nil {
		fatal("current", err)
	}

	rows := [][]string{{"METRIC", "VALUE"}}
	addStringRow(&rows, "serial", measures.SerialNumber)
	addStringRow(&rows, "model", measures.Model)
	if name, ok := airgradient.ModelName(measures.Model); ok {
		addStringRow(&rows, "model_name", name)
	}
	addStringRow(&rows, "firmware", measures.FirmwareVersion)
	addStringRow(&rows, "wifi_rssi_dbm", strconv.Itoa(measures.SignalStrength))
	addStringRow(&rows, "boot_count", strconv.Itoa(measures.BootCount))
	addFloatRow(&rows, "co2_ppm", measures.CO2, "ppm")
	addFloatRow(&rows, "pm01_ugm3", measures.PM01, "ug/m3")
	addFloatRow(&rows, "pm02_ugm3", measures.PM02, "ug/m3")
	addFloatRow(&rows, "pm02_raw_ugm3", measures.PM02Raw, "ug/m3")
	addFloatRow(&rows, "pm10_ugm3", measures.PM10, "ug/m3")
	addFloatRow(&rows, "pm003_count_per_dl", measures.PM003Count, "")
	addFloatRow(&rows, "temperature_c", measures.Temperature, "C")
	addFloatRow(&rows, "temperature_raw_c", measures.TemperatureRaw, "C")
	addFloatRow(&rows, "humidity_percent", measures.Humidity, "%")
	addFloatRow(&rows, "humidity_raw_percent", measures.HumidityRaw, "%")
	addFloatRow(&rows, "tvoc_index", measures.TVOCIndex, "")
	addFloatRow(&rows, "tvoc_raw", measures.TVOCRaw, "")
	addFloatRow(&rows, "nox_index", measures.NOxIndex, "")
	addFloatRow(&rows, "nox_raw", measures.NOxRaw, "")
	printTable(rows)
}

func configCmd(ctx context.Context, client *airgradient.Client, opts options) {
	if opts.json {
		payload, err := client.RawConfig(ctx)
		if err != nil {
			fatal("config", err)
		}
		fmt.Println(string(payload))
		return
	}

	cfg, err := client.Config(ctx)
	if err != nil {
		fatal("config", err)
	}

	rows := [][]string{{"SETTING", "VALUE"}}
	addStringRow(&rows, "country", cfg.Country)
	addStringRow(&rows, "pm_standard", string(cfg.PmStandard))
	addStringRow(&rows, "led_bar_mode", string(cfg.LedBarMode))
	addStringRow(&rows, "abc_days", strconv.Itoa(cfg.ABCDays))
	addStringRow(&rows, "temperature_unit", string(cfg.TemperatureUnit))
	addStringRow(&rows, "configuration_control", string(cfg.ConfigurationControl))
	addStringRow(&rows, "post_data_to_airgradient", strconv.FormatBool(cfg.PostDataToAirGradient))
	addIntRow(&rows, "display_brightness", cfg.DisplayBrightness)
	addIntRow(&rows, "led_bar_brightness", cfg.LedBarBrightness)
	addIntRow(&rows, "nox_learning_offset", cfg.NOxLearningOffset)
	addIntRow(&rows, "tvoc_learning_offset", cfg.TVOCLearningOffset)
	printTable(rows)
}

func setCmd(ctx context.Context, client *airgradient.Client, args []string) {
	if len(args) < 2 {
		setUsage()
		os.Exit(2)
	}

	field, value := args[0], args[1]
	var err error
	switch field {
	case "pm-standard":
		err = client.SetPmStandard(ctx, airgradient.PmStandard(value))
	case "temperature-unit":
		err = client.SetTemperatureUnit(ctx, airgradient.TemperatureUnit(value))
	case "configuration-control":
		err = client.SetConfigurationControl(ctx, airgradient.ConfigurationControl(value))
	case "led-bar-mode":
		err = client.SetLedBarMode(ctx, airgradient.LedBarMode(value))
	case "display-brightness":
		err = setIntField(ctx, value, client.SetDisplayBrightness)
	case "led-bar-brightness":
		err = setIntField(ctx, value, client.SetLedBarBrightness)
	case "abc-days":
		err = setIntField(ctx, value, client.SetCO2AutomaticBaselineCalibration)
	case "nox-offset":
		err = setIntField(ctx, value, client.SetNOxLearningOffset)
	case "tvoc-offset":
		err = setIntField(ctx, value, client.SetTVOCLearningOffset)
	case "sharing":
		enabled, parseErr := strconv.ParseBool(value)
		if parseErr != nil {
			err = fmt.Errorf("invalid sharing value %q (want true or false)", value)
			break
		}
		err = client.EnableSharingData(ctx, enabled)
	default:
		setUsage()
		os.Exit(2)
	}

	if err != nil {
		fatal("set "+field, err)
	}
}

func setIntField(ctx context.Context, value string, set func(context.Context, int) error) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", value, err)
	}
	return set(ctx, parsed)
}

type options struct {
	host    string
	timeout time.Duration
	json    bool
}

// splitFlags separates --host/--timeout/--json from positional args so
// flags may appear before or after the subcommand.
func splitFlags(argv []string) ([]string, options) {
	opts := options{timeout: 10 * time.Second}
	var args []string
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "--host":
			if i+1 < len(argv) {
				i++
				opts.host = argv[i]
			}
		case "--timeout":
			if i+1 < len(argv) {
				i++
				if parsed, err := time.ParseDuration(argv[i]); err == nil {
					opts.timeout = parsed
				}
			}
		case "--json":
			opts.json = true
		default:
			args = append(args, argv[i])
		}
	}
	return args, opts
}

func usage() {
	fmt.Println("airgradient-cli [--host <ip>] [--timeout 10s] [--json] <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  current")
	fmt.Println("  snapshot")
	fmt.Println("  config")
	fmt.Println("  firmware <serial>")
	fmt.Println("  model-name <id>")
	fmt.Println("  set <field> <value>")
	fmt.Println("  calibrate-co2")
	fmt.Println("  led-test")
}

func setUsage() {
	fmt.Println("airgradient-cli set <field> <value>")
	fmt.Println("")
	fmt.Println("Fields:")
	fmt.Println("  pm-standard ugm3|us-aqi")
	fmt.Println("  temperature-unit c|f")
	fmt.Println("  configuration-control cloud|local|both")
	fmt.Println("  led-bar-mode off|co2|pm")
	fmt.Println("  display-brightness 0-100")
	fmt.Println("  led-bar-brightness 0-100")
	fmt.Println("  abc-days <days>")
	fmt.Println("  nox-offset <offset>")
	fmt.Println("  tvoc-offset <offset>")
	fmt.Println("  sharing true|false")
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", action, err)
	os.Exit(1)
}
