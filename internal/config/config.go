// Package config loads and validates the pipeline settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every setting the pipeline reads.
type Config struct {
	Run     RunConfig     `mapstructure:"run" validate:"required"`
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Measure MeasureConfig `mapstructure:"measure" validate:"required"`
	Control ControlConfig `mapstructure:"control"`
	Stim    StimConfig    `mapstructure:"stim" validate:"required"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
}

// RunConfig names the run and where it lives on disk.
type RunConfig struct {
	SaveDir     string `mapstructure:"save_dir" validate:"required"`
	SaveDirName string `mapstructure:"save_dir_name" validate:"required"`
	Hostname    string `mapstructure:"hostname"`
	PlateMap    string `mapstructure:"plate_map" validate:"required"`
}

// ServerConfig describes the processing server and its job parameters.
type ServerConfig struct {
	BaseURL              string        `mapstructure:"base_url" validate:"required,url"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	PollInterval         time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	CompletionTimeout    time.Duration `mapstructure:"completion_timeout" validate:"gt=0"`
	Sigma                float64       `mapstructure:"sigma" validate:"gte=0"`
	Size                 int           `mapstructure:"size" validate:"gt=0"`
	Diameter             float64       `mapstructure:"diameter" validate:"gt=0"`
	FlowThreshold        float64       `mapstructure:"flow_threshold"`
	CellprobThreshold    float64       `mapstructure:"cellprob_threshold"`
	ModelType            string        `mapstructure:"model_type"`
	RestoreType          string        `mapstructure:"restore_type"`
	GPU                  bool          `mapstructure:"gpu"`
	DoDenoise            bool          `mapstructure:"do_denoise"`
	TrackStitchThreshold float64       `mapstructure:"track_stitch_threshold" validate:"gt=0,lte=1"`
}

// PresetConfig is one acquisition preset.
type PresetConfig struct {
	OpticalConfiguration string  `mapstructure:"optical_configuration" validate:"required"`
	Intensity            float64 `mapstructure:"intensity" validate:"gte=0,lte=100"`
	ExposureMs           float64 `mapstructure:"exposure_ms" validate:"gt=0"`
}

// MeasureConfig covers the measurement channel and the optional reference
// segmentation channel.
type MeasureConfig struct {
	Preset       PresetConfig `mapstructure:"preset" validate:"required"`
	DoRefseg     bool         `mapstructure:"do_refseg"`
	RefsegPreset PresetConfig `mapstructure:"refseg_preset"`
}

// ControlConfig covers the optional pre/post illumination control loop.
type ControlConfig struct {
	Loop   bool         `mapstructure:"loop"`
	Preset PresetConfig `mapstructure:"preset"`
}

// StimConfig covers cell selection and light stimulation.
type StimConfig struct {
	TrueCellThreshold float64      `mapstructure:"true_cell_threshold" validate:"gte=0"`
	ErosionFactor     int          `mapstructure:"erosion_factor" validate:"gte=0"`
	CropSize          int          `mapstructure:"crop_size" validate:"gt=0"`
	SelectorCommand   string       `mapstructure:"selector_command"`
	Preset            PresetConfig `mapstructure:"preset" validate:"required"`
}

// LedgerConfig locates the run-ledger database.
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads gemscreen.yaml from the given directory (or the working
// directory when empty), applies GEMSCREEN_ environment overrides and
// defaults, and validates the result.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("gemscreen")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GEMSCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Measure.DoRefseg && cfg.Measure.RefsegPreset.OpticalConfiguration == "" {
		return nil, fmt.Errorf("invalid config: refseg enabled without a refseg preset")
	}
	if cfg.Control.Loop && cfg.Control.Preset.OpticalConfiguration == "" {
		return nil, fmt.Errorf("invalid config: control loop enabled without a control preset")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.poll_interval", "1s")
	v.SetDefault("server.completion_timeout", "600s")
	v.SetDefault("server.sigma", 0.0)
	v.SetDefault("server.size", 7)
	v.SetDefault("server.diameter", 40.0)
	v.SetDefault("server.flow_threshold", 1.0)
	v.SetDefault("server.cellprob_threshold", 0.0)
	v.SetDefault("server.model_type", "cyto3")
	v.SetDefault("server.restore_type", "denoise_cyto3")
	v.SetDefault("server.gpu", true)
	v.SetDefault("server.do_denoise", true)
	v.SetDefault("server.track_stitch_threshold", 0.75)

	v.SetDefault("measure.preset.optical_configuration", "GFP")
	v.SetDefault("measure.preset.intensity", 25.0)
	v.SetDefault("measure.preset.exposure_ms", 100.0)
	v.SetDefault("measure.do_refseg", false)

	v.SetDefault("stim.true_cell_threshold", 50.0)
	v.SetDefault("stim.erosion_factor", 3)
	v.SetDefault("stim.crop_size", 251)
	v.SetDefault("stim.preset.optical_configuration", "BFP")
	v.SetDefault("stim.preset.intensity", 100.0)
	v.SetDefault("stim.preset.exposure_ms", 10000.0)

	v.SetDefault("ledger.path", "gemscreen.db")
}
