package config

import (
	"errors"
	"io/fs"
	"os"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"
	yaml "github.com/goccy/go-yaml"

	"ticksched/internal/logging"
)

// Config mirrors config.yml. Every field is a plain value so two configs
// compare with ==.
type Config struct {
	Log   logging.Config `yaml:"log"`
	Clock ClockConfig    `yaml:"clock"`
	Debug DebugConfig    `yaml:"debug"`
	Pins  PinsConfig     `yaml:"pins"`
	Rates RatesConfig    `yaml:"rates"`
	Cycle CycleConfig    `yaml:"cycle"`
}

type ClockConfig struct {
	Source    string `yaml:"source" valid:"in(millis|ticker)"` // millis (wall time) or ticker (counted ticks)
	TickMS    int    `yaml:"tick_ms" valid:"range(1|60000)"`   // ticker interval
	StartTick uint32 `yaml:"start_tick"`                       // initial reading, set near 4294967295 to exercise wraparound
}

type DebugConfig struct {
	Enabled    bool `yaml:"enabled"`
	RatePerSec int  `yaml:"rate_per_sec" valid:"range(0|100000)"` // 0 = unlimited
	RxBuffer   int  `yaml:"rx_buffer" valid:"range(1|65536)"`
}

type PinsConfig struct {
	Blinker    int `yaml:"blinker" valid:"range(0|255)"`
	Fader      int `yaml:"fader" valid:"range(0|255)"`
	TiltSensor int `yaml:"tilt_sensor" valid:"range(0|255)"`
}

type RatesConfig struct {
	BlinkerMS    int `yaml:"blinker_ms" valid:"range(1|3600000)"`
	AppManagerMS int `yaml:"app_manager_ms" valid:"range(1|3600000)"`
	FaderMS      int `yaml:"fader_ms" valid:"range(1|3600000)"`
}

// CycleConfig drives how tilt events speed up the blinker.
type CycleConfig struct {
	ThresholdFast   int `yaml:"threshold_fast" valid:"range(0|65535)"`
	ThresholdMedium int `yaml:"threshold_medium" valid:"range(0|65535)"`
	ThresholdSlow   int `yaml:"threshold_slow" valid:"range(0|65535)"`
	RateFastMS      int `yaml:"rate_fast_ms" valid:"range(1|3600000)"`
	RateMediumMS    int `yaml:"rate_medium_ms" valid:"range(1|3600000)"`
	RateSlowMS      int `yaml:"rate_slow_ms" valid:"range(1|3600000)"`
	Increment       int `yaml:"increment" valid:"range(1|65535)"`
	Max             int `yaml:"max" valid:"range(1|65535)"`
}

// Default returns the stock board setup.
func Default() Config {
	return Config{
		Log: logging.Config{
			Level:  "info",
			Format: "console",
		},
		Clock: ClockConfig{
			Source: "millis",
			TickMS: 1,
		},
		Debug: DebugConfig{
			Enabled:    true,
			RatePerSec: 50,
			RxBuffer:   64,
		},
		Pins: PinsConfig{
			Blinker:    6,
			Fader:      5,
			TiltSensor: 3,
		},
		Rates: RatesConfig{
			BlinkerMS:    300,
			AppManagerMS: 100,
			FaderMS:      30,
		},
		Cycle: CycleConfig{
			ThresholdFast:   90,
			ThresholdMedium: 30,
			ThresholdSlow:   0,
			RateFastMS:      100,
			RateMediumMS:    200,
			RateSlowMS:      300,
			Increment:       5,
			Max:             180,
		},
	}
}

// Load reads YAML over the defaults. An empty path or a missing file yields
// the defaults; anything unreadable or invalid is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return Config{}, goerrors.ErrServiceValidation{
			ServiceName: "config",
			Caller:      "Parse",
			Issue:       err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Marshal renders the config as YAML.
func (cfg Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate checks field ranges and the ordering of the cycle thresholds.
func (cfg Config) Validate() error {
	if _, errValidation := govalidator.ValidateStruct(cfg); errValidation != nil {
		return goerrors.ErrServiceValidation{
			ServiceName: "config",
			Caller:      "Validate",
			Issue:       errValidation,
		}
	}

	if !(cfg.Cycle.ThresholdSlow <= cfg.Cycle.ThresholdMedium &&
		cfg.Cycle.ThresholdMedium <= cfg.Cycle.ThresholdFast) {
		return goerrors.ErrServiceValidation{
			ServiceName: "config",
			Caller:      "Validate",
			Issue: goerrors.ErrInvalidInput{
				InputName: "cycle thresholds (want slow <= medium <= fast)",
			},
		}
	}

	if cfg.Cycle.ThresholdFast > cfg.Cycle.Max {
		return goerrors.ErrServiceValidation{
			ServiceName: "config",
			Caller:      "Validate",
			Issue: goerrors.ErrInvalidInput{
				InputName: "cycle.threshold_fast (above cycle.max)",
			},
		}
	}

	return nil
}
