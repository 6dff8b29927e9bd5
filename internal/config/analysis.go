package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/gaze.report/internal/fsutil"
	"github.com/banshee-data/gaze.report/internal/monitoring"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/gaze.defaults.json"

// Outlier filter policy codes accepted by OUTLIER_POLICY.
const (
	OutlierPolicyWindowed = 0
	OutlierPolicyGlobal   = 1
)

// Diopter convention codes accepted by DIOPTER_MODE.
const (
	DiopterModeTargetRelative = 0
	DiopterModeEyeAngleOnly   = 1
)

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// AnalysisConfig is the flat option set for one analysis run. Keys match the
// option names used by existing config.ini files. Unset fields fall back to
// defaults via the Get* accessors.
type AnalysisConfig struct {
	DiopterToDegreeConversion  *float64 `json:"DIOPTER_TO_DEGREE_CONVERSION,omitempty" yaml:"DIOPTER_TO_DEGREE_CONVERSION,omitempty"`
	OutlierThresholdMultiplier *float64 `json:"OUTLIER_THRESHOLD_MULTIPLIER,omitempty" yaml:"OUTLIER_THRESHOLD_MULTIPLIER,omitempty"`
	StableSampleThreshold      *float64 `json:"STABLE_SAMPLE_THRESHOLD,omitempty" yaml:"STABLE_SAMPLE_THRESHOLD,omitempty"`
	VelocityWindowSize         *int     `json:"VELOCITY_WINDOW_SIZE,omitempty" yaml:"VELOCITY_WINDOW_SIZE,omitempty"`
	AccelerationWindowSize     *int     `json:"ACCELERATION_WINDOW_SIZE,omitempty" yaml:"ACCELERATION_WINDOW_SIZE,omitempty"`
	SaccadeVelocityThreshold   *float64 `json:"SACCADE_VELOCITY_THRESHOLD,omitempty" yaml:"SACCADE_VELOCITY_THRESHOLD,omitempty"`
	FixationStabilityThreshold *float64 `json:"FIXATION_STABILITY_THRESHOLD,omitempty" yaml:"FIXATION_STABILITY_THRESHOLD,omitempty"`
	FixationMinDuration        *float64 `json:"FIXATION_MIN_DURATION,omitempty" yaml:"FIXATION_MIN_DURATION,omitempty"`

	// Geometry
	IPDMeters   *float64 `json:"IPD_METERS,omitempty" yaml:"IPD_METERS,omitempty"`
	DiopterMode *int     `json:"DIOPTER_MODE,omitempty" yaml:"DIOPTER_MODE,omitempty"`

	// Outlier filter
	OutlierWindowSize *int `json:"OUTLIER_WINDOW_SIZE,omitempty" yaml:"OUTLIER_WINDOW_SIZE,omitempty"`
	OutlierPolicy     *int `json:"OUTLIER_POLICY,omitempty" yaml:"OUTLIER_POLICY,omitempty"`

	// Binocular fusion
	FusionTolerance   *float64 `json:"FUSION_TOLERANCE,omitempty" yaml:"FUSION_TOLERANCE,omitempty"`
	FusionMinDuration *float64 `json:"FUSION_MIN_DURATION,omitempty" yaml:"FUSION_MIN_DURATION,omitempty"`

	// Clustering
	ClusterCount         *int   `json:"CLUSTER_COUNT,omitempty" yaml:"CLUSTER_COUNT,omitempty"`
	ClusterMaxIterations *int   `json:"CLUSTER_MAX_ITERATIONS,omitempty" yaml:"CLUSTER_MAX_ITERATIONS,omitempty"`
	ClusterSeed          *int64 `json:"CLUSTER_SEED,omitempty" yaml:"CLUSTER_SEED,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field populated from the
// documented defaults.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		DiopterToDegreeConversion:  ptrFloat64(1.0),
		OutlierThresholdMultiplier: ptrFloat64(3.0),
		StableSampleThreshold:      ptrFloat64(1.0),
		VelocityWindowSize:         ptrInt(5),
		AccelerationWindowSize:     ptrInt(5),
		SaccadeVelocityThreshold:   ptrFloat64(0.5),
		FixationStabilityThreshold: ptrFloat64(0.5),
		FixationMinDuration:        ptrFloat64(0.1),
		IPDMeters:                  ptrFloat64(0.069),
		DiopterMode:                ptrInt(DiopterModeTargetRelative),
		OutlierWindowSize:          ptrInt(10),
		OutlierPolicy:              ptrInt(OutlierPolicyWindowed),
		FusionTolerance:            ptrFloat64(1.0),
		FusionMinDuration:          ptrFloat64(0.1),
		ClusterCount:               ptrInt(3),
		ClusterMaxIterations:       ptrInt(300),
		ClusterSeed:                ptrInt64(42),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a .json, .yaml, .yml or
// .ini file. Fields omitted from the file retain their defaults, so partial
// configs are safe. INI files are read from their [DEFAULT] section with
// case-insensitive option names.
func LoadAnalysisConfig(fsys fsutil.FileSystem, path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml", ".ini":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml, .yml or .ini extension, got %q", ext)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if ext == ".ini" {
		return parseINI(cleanPath, data)
	}

	cfg := EmptyAnalysisConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseINI(path string, data []byte) (*AnalysisConfig, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	values := make(map[string]float64)
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		v, err := key.Float64()
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: option %s: %w", path, key.Name(), err)
		}
		values[strings.ToUpper(key.Name())] = v
	}
	return FromMap(values)
}

// LoadOrDefault loads path, falling back to defaults with a warning when the
// file does not exist. A file that exists but cannot be parsed or validated
// is still an error.
func LoadOrDefault(fsys fsutil.FileSystem, path string) (*AnalysisConfig, error) {
	if path == "" {
		return DefaultAnalysisConfig(), nil
	}
	cfg, err := LoadAnalysisConfig(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		monitoring.Warnf("configuration file %q not found, using default values", path)
		return DefaultAnalysisConfig(), nil
	}
	return cfg, err
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file cannot
// be loaded, intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(fsutil.OSFileSystem{}, path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// FromMap builds a config from a flat option-name to value mapping, the shape
// produced by key/value config sources. Unknown keys are an error so typos do
// not silently fall back to defaults.
func FromMap(values map[string]float64) (*AnalysisConfig, error) {
	cfg := EmptyAnalysisConfig()
	for key, v := range values {
		switch key {
		case "DIOPTER_TO_DEGREE_CONVERSION":
			cfg.DiopterToDegreeConversion = ptrFloat64(v)
		case "OUTLIER_THRESHOLD_MULTIPLIER":
			cfg.OutlierThresholdMultiplier = ptrFloat64(v)
		case "STABLE_SAMPLE_THRESHOLD":
			cfg.StableSampleThreshold = ptrFloat64(v)
		case "VELOCITY_WINDOW_SIZE":
			cfg.VelocityWindowSize = ptrInt(int(v))
		case "ACCELERATION_WINDOW_SIZE":
			cfg.AccelerationWindowSize = ptrInt(int(v))
		case "SACCADE_VELOCITY_THRESHOLD":
			cfg.SaccadeVelocityThreshold = ptrFloat64(v)
		case "FIXATION_STABILITY_THRESHOLD":
			cfg.FixationStabilityThreshold = ptrFloat64(v)
		case "FIXATION_MIN_DURATION":
			cfg.FixationMinDuration = ptrFloat64(v)
		case "IPD_METERS":
			cfg.IPDMeters = ptrFloat64(v)
		case "DIOPTER_MODE":
			cfg.DiopterMode = ptrInt(int(v))
		case "OUTLIER_WINDOW_SIZE":
			cfg.OutlierWindowSize = ptrInt(int(v))
		case "OUTLIER_POLICY":
			cfg.OutlierPolicy = ptrInt(int(v))
		case "FUSION_TOLERANCE":
			cfg.FusionTolerance = ptrFloat64(v)
		case "FUSION_MIN_DURATION":
			cfg.FusionMinDuration = ptrFloat64(v)
		case "CLUSTER_COUNT":
			cfg.ClusterCount = ptrInt(int(v))
		case "CLUSTER_MAX_ITERATIONS":
			cfg.ClusterMaxIterations = ptrInt(int(v))
		case "CLUSTER_SEED":
			cfg.ClusterSeed = ptrInt64(int64(v))
		default:
			return nil, fmt.Errorf("unknown config option %q", key)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the set values are usable.
func (c *AnalysisConfig) Validate() error {
	if c.DiopterToDegreeConversion != nil && *c.DiopterToDegreeConversion <= 0 {
		return fmt.Errorf("DIOPTER_TO_DEGREE_CONVERSION must be positive, got %f", *c.DiopterToDegreeConversion)
	}

	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"OUTLIER_THRESHOLD_MULTIPLIER", c.OutlierThresholdMultiplier},
		{"STABLE_SAMPLE_THRESHOLD", c.StableSampleThreshold},
		{"SACCADE_VELOCITY_THRESHOLD", c.SaccadeVelocityThreshold},
		{"FIXATION_STABILITY_THRESHOLD", c.FixationStabilityThreshold},
		{"FIXATION_MIN_DURATION", c.FixationMinDuration},
		{"IPD_METERS", c.IPDMeters},
		{"FUSION_TOLERANCE", c.FusionTolerance},
		{"FUSION_MIN_DURATION", c.FusionMinDuration},
	}
	for _, f := range nonNegative {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", f.name, *f.v)
		}
	}

	windows := []struct {
		name string
		v    *int
	}{
		{"VELOCITY_WINDOW_SIZE", c.VelocityWindowSize},
		{"ACCELERATION_WINDOW_SIZE", c.AccelerationWindowSize},
		{"OUTLIER_WINDOW_SIZE", c.OutlierWindowSize},
		{"CLUSTER_COUNT", c.ClusterCount},
		{"CLUSTER_MAX_ITERATIONS", c.ClusterMaxIterations},
	}
	for _, w := range windows {
		if w.v != nil && *w.v < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", w.name, *w.v)
		}
	}

	if c.OutlierPolicy != nil && *c.OutlierPolicy != OutlierPolicyWindowed && *c.OutlierPolicy != OutlierPolicyGlobal {
		return fmt.Errorf("OUTLIER_POLICY must be %d (windowed) or %d (global), got %d",
			OutlierPolicyWindowed, OutlierPolicyGlobal, *c.OutlierPolicy)
	}
	if c.DiopterMode != nil && *c.DiopterMode != DiopterModeTargetRelative && *c.DiopterMode != DiopterModeEyeAngleOnly {
		return fmt.Errorf("DIOPTER_MODE must be %d (target-relative) or %d (eye-angle-only), got %d",
			DiopterModeTargetRelative, DiopterModeEyeAngleOnly, *c.DiopterMode)
	}
	return nil
}

// GetDiopterToDegreeConversion returns the degrees-to-diopter divisor or the default.
func (c *AnalysisConfig) GetDiopterToDegreeConversion() float64 {
	if c.DiopterToDegreeConversion == nil {
		return 1.0
	}
	return *c.DiopterToDegreeConversion
}

// GetOutlierThresholdMultiplier returns the std-dev multiple or the default.
func (c *AnalysisConfig) GetOutlierThresholdMultiplier() float64 {
	if c.OutlierThresholdMultiplier == nil {
		return 3.0
	}
	return *c.OutlierThresholdMultiplier
}

// GetStableSampleThreshold returns the stable-window tolerance or the default.
func (c *AnalysisConfig) GetStableSampleThreshold() float64 {
	if c.StableSampleThreshold == nil {
		return 1.0
	}
	return *c.StableSampleThreshold
}

// GetVelocityWindowSize returns the velocity window or the default.
func (c *AnalysisConfig) GetVelocityWindowSize() int {
	if c.VelocityWindowSize == nil {
		return 5
	}
	return *c.VelocityWindowSize
}

// GetAccelerationWindowSize returns the acceleration window or the default.
func (c *AnalysisConfig) GetAccelerationWindowSize() int {
	if c.AccelerationWindowSize == nil {
		return 5
	}
	return *c.AccelerationWindowSize
}

// GetSaccadeVelocityThreshold returns the saccade trigger or the default.
func (c *AnalysisConfig) GetSaccadeVelocityThreshold() float64 {
	if c.SaccadeVelocityThreshold == nil {
		return 0.5
	}
	return *c.SaccadeVelocityThreshold
}

// GetFixationStabilityThreshold returns the fixation delta limit or the default.
func (c *AnalysisConfig) GetFixationStabilityThreshold() float64 {
	if c.FixationStabilityThreshold == nil {
		return 0.5
	}
	return *c.FixationStabilityThreshold
}

// GetFixationMinDuration returns the minimum fixation length in seconds or the default.
func (c *AnalysisConfig) GetFixationMinDuration() float64 {
	if c.FixationMinDuration == nil {
		return 0.1
	}
	return *c.FixationMinDuration
}

func (c *AnalysisConfig) GetIPDMeters() float64 {
	if c.IPDMeters == nil {
		return 0.069
	}
	return *c.IPDMeters
}

func (c *AnalysisConfig) GetDiopterMode() int {
	if c.DiopterMode == nil {
		return DiopterModeTargetRelative
	}
	return *c.DiopterMode
}

func (c *AnalysisConfig) GetOutlierWindowSize() int {
	if c.OutlierWindowSize == nil {
		return 10
	}
	return *c.OutlierWindowSize
}

func (c *AnalysisConfig) GetOutlierPolicy() int {
	if c.OutlierPolicy == nil {
		return OutlierPolicyWindowed
	}
	return *c.OutlierPolicy
}

func (c *AnalysisConfig) GetFusionTolerance() float64 {
	if c.FusionTolerance == nil {
		return 1.0
	}
	return *c.FusionTolerance
}

func (c *AnalysisConfig) GetFusionMinDuration() float64 {
	if c.FusionMinDuration == nil {
		return 0.1
	}
	return *c.FusionMinDuration
}

func (c *AnalysisConfig) GetClusterCount() int {
	if c.ClusterCount == nil {
		return 3
	}
	return *c.ClusterCount
}

func (c *AnalysisConfig) GetClusterMaxIterations() int {
	if c.ClusterMaxIterations == nil {
		return 300
	}
	return *c.ClusterMaxIterations
}

func (c *AnalysisConfig) GetClusterSeed() int64 {
	if c.ClusterSeed == nil {
		return 42
	}
	return *c.ClusterSeed
}

// Resolved returns a copy with every field populated, used when persisting the
// effective parameters of a run.
func (c *AnalysisConfig) Resolved() *AnalysisConfig {
	return &AnalysisConfig{
		DiopterToDegreeConversion:  ptrFloat64(c.GetDiopterToDegreeConversion()),
		OutlierThresholdMultiplier: ptrFloat64(c.GetOutlierThresholdMultiplier()),
		StableSampleThreshold:      ptrFloat64(c.GetStableSampleThreshold()),
		VelocityWindowSize:         ptrInt(c.GetVelocityWindowSize()),
		AccelerationWindowSize:     ptrInt(c.GetAccelerationWindowSize()),
		SaccadeVelocityThreshold:   ptrFloat64(c.GetSaccadeVelocityThreshold()),
		FixationStabilityThreshold: ptrFloat64(c.GetFixationStabilityThreshold()),
		FixationMinDuration:        ptrFloat64(c.GetFixationMinDuration()),
		IPDMeters:                  ptrFloat64(c.GetIPDMeters()),
		DiopterMode:                ptrInt(c.GetDiopterMode()),
		OutlierWindowSize:          ptrInt(c.GetOutlierWindowSize()),
		OutlierPolicy:              ptrInt(c.GetOutlierPolicy()),
		FusionTolerance:            ptrFloat64(c.GetFusionTolerance()),
		FusionMinDuration:          ptrFloat64(c.GetFusionMinDuration()),
		ClusterCount:               ptrInt(c.GetClusterCount()),
		ClusterMaxIterations:       ptrInt(c.GetClusterMaxIterations()),
		ClusterSeed:                ptrInt64(c.GetClusterSeed()),
	}
}
