package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gaze.report/internal/fsutil"
	"github.com/banshee-data/gaze.report/internal/monitoring"
)

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := EmptyAnalysisConfig()

	assert.Equal(t, 1.0, cfg.GetDiopterToDegreeConversion())
	assert.Equal(t, 3.0, cfg.GetOutlierThresholdMultiplier())
	assert.Equal(t, 1.0, cfg.GetStableSampleThreshold())
	assert.Equal(t, 5, cfg.GetVelocityWindowSize())
	assert.Equal(t, 5, cfg.GetAccelerationWindowSize())
	assert.Equal(t, 0.5, cfg.GetSaccadeVelocityThreshold())
	assert.Equal(t, 0.5, cfg.GetFixationStabilityThreshold())
	assert.Equal(t, 0.1, cfg.GetFixationMinDuration())
	assert.Equal(t, 0.069, cfg.GetIPDMeters())
	assert.Equal(t, DiopterModeTargetRelative, cfg.GetDiopterMode())
	assert.Equal(t, 10, cfg.GetOutlierWindowSize())
	assert.Equal(t, OutlierPolicyWindowed, cfg.GetOutlierPolicy())
	assert.Equal(t, 3, cfg.GetClusterCount())
	assert.Equal(t, 300, cfg.GetClusterMaxIterations())
	assert.EqualValues(t, 42, cfg.GetClusterSeed())
}

func TestDefaultConfigMatchesEmptyAccessors(t *testing.T) {
	assert.Equal(t, EmptyAnalysisConfig().Resolved(), DefaultAnalysisConfig())
}

func TestDefaultsFileMatchesCode(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	assert.Equal(t, DefaultAnalysisConfig(), cfg.Resolved())
}

func TestLoadAnalysisConfig_JSONPartial(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("cfg.json", []byte(`{
  "DIOPTER_TO_DEGREE_CONVERSION": 0.9,
  "VELOCITY_WINDOW_SIZE": 2,
  "OUTLIER_POLICY": 1
}`), 0o644))

	cfg, err := LoadAnalysisConfig(mfs, "cfg.json")
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.GetDiopterToDegreeConversion())
	assert.Equal(t, 2, cfg.GetVelocityWindowSize())
	assert.Equal(t, OutlierPolicyGlobal, cfg.GetOutlierPolicy())
	// unset keys keep defaults
	assert.Equal(t, 5, cfg.GetAccelerationWindowSize())
	assert.Equal(t, 0.1, cfg.GetFixationMinDuration())
}

func TestLoadAnalysisConfig_YAML(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("cfg.yaml", []byte("FIXATION_MIN_DURATION: 0.25\nCLUSTER_COUNT: 4\n"), 0o644))

	cfg, err := LoadAnalysisConfig(mfs, "cfg.yaml")
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.GetFixationMinDuration())
	assert.Equal(t, 4, cfg.GetClusterCount())
}

func TestLoadAnalysisConfig_Errors(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("bad.json", []byte(`{not json`), 0o644))
	require.NoError(t, mfs.WriteFile("invalid.json", []byte(`{"VELOCITY_WINDOW_SIZE": 0}`), 0o644))
	require.NoError(t, mfs.WriteFile("config.toml", []byte(`x = 1`), 0o644))
	require.NoError(t, mfs.WriteFile("text.ini", []byte("[DEFAULT]\nIPD_METERS = wide\n"), 0o644))
	require.NoError(t, mfs.WriteFile("typo.ini", []byte("[DEFAULT]\nIPD_METER = 0.07\n"), 0o644))

	tests := []struct {
		path    string
		wantErr string
	}{
		{"bad.json", "failed to parse"},
		{"invalid.json", "VELOCITY_WINDOW_SIZE must be at least 1"},
		{"config.toml", "extension"},
		{"text.ini", "option IPD_METERS"},
		{"typo.ini", `unknown config option "IPD_METER"`},
		{"missing.json", "failed to stat"},
		{"missing.ini", "failed to stat"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := LoadAnalysisConfig(mfs, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadAnalysisConfig_INI(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	content := `[DEFAULT]
DIOPTER_TO_DEGREE_CONVERSION = 2.0
outlier_threshold_multiplier = 2.5
VELOCITY_WINDOW_SIZE = 3
FIXATION_MIN_DURATION = 0.2
`
	require.NoError(t, mfs.WriteFile("config.ini", []byte(content), 0o644))

	cfg, err := LoadAnalysisConfig(mfs, "config.ini")
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.GetDiopterToDegreeConversion())
	assert.Equal(t, 2.5, cfg.GetOutlierThresholdMultiplier())
	assert.Equal(t, 3, cfg.GetVelocityWindowSize())
	assert.Equal(t, 0.2, cfg.GetFixationMinDuration())
	// Unset options keep their defaults.
	assert.Equal(t, 5, cfg.GetAccelerationWindowSize())
}

func TestLoadAnalysisConfig_INIWithoutHeader(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("config.ini", []byte("STABLE_SAMPLE_THRESHOLD = 0.5\n"), 0o644))

	cfg, err := LoadAnalysisConfig(mfs, "config.ini")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.GetStableSampleThreshold())
}

func TestLoadOrDefault_MissingFileWarns(t *testing.T) {
	for _, path := range []string{"config.json", "config.ini", "settings.conf"} {
		t.Run(path, func(t *testing.T) {
			original := monitoring.Logf
			defer func() { monitoring.Logf = original }()

			var logged []string
			monitoring.SetLogger(func(format string, v ...interface{}) {
				logged = append(logged, fmt.Sprintf(format, v...))
			})

			cfg, err := LoadOrDefault(fsutil.NewMemoryFileSystem(), path)
			require.NoError(t, err)
			assert.Equal(t, DefaultAnalysisConfig(), cfg)
			require.Len(t, logged, 1)
			assert.True(t, strings.HasPrefix(logged[0], "warning: "))
			assert.Contains(t, logged[0], path)
		})
	}
}

func TestLoadOrDefault_MissingFileOnDisk(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	monitoring.SetLogger(nil)

	cfg, err := LoadOrDefault(fsutil.OSFileSystem{}, filepath.Join(t.TempDir(), "does-not-exist.ini"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAnalysisConfig(), cfg)
}

func TestLoadOrDefault_MalformedFileFails(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("config.json", []byte(`{"OUTLIER_POLICY": 7}`), 0o644))

	_, err := LoadOrDefault(mfs, "config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTLIER_POLICY")
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]float64{
		"DIOPTER_TO_DEGREE_CONVERSION": 0.9,
		"ACCELERATION_WINDOW_SIZE":     3,
		"SACCADE_VELOCITY_THRESHOLD":   0.8,
		"DIOPTER_MODE":                 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.GetDiopterToDegreeConversion())
	assert.Equal(t, 3, cfg.GetAccelerationWindowSize())
	assert.Equal(t, 0.8, cfg.GetSaccadeVelocityThreshold())
	assert.Equal(t, DiopterModeEyeAngleOnly, cfg.GetDiopterMode())
	assert.Equal(t, 3.0, cfg.GetOutlierThresholdMultiplier())

	_, err = FromMap(map[string]float64{"DIOPTER_TO_DEGREE": 1})
	assert.ErrorContains(t, err, "unknown config option")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *AnalysisConfig
		wantErr bool
	}{
		{"empty", EmptyAnalysisConfig(), false},
		{"defaults", DefaultAnalysisConfig(), false},
		{"zero ratio", &AnalysisConfig{DiopterToDegreeConversion: ptrFloat64(0)}, true},
		{"negative threshold", &AnalysisConfig{StableSampleThreshold: ptrFloat64(-1)}, true},
		{"zero window", &AnalysisConfig{OutlierWindowSize: ptrInt(0)}, true},
		{"bad mode", &AnalysisConfig{DiopterMode: ptrInt(2)}, true},
		{"zero multiplier allowed", &AnalysisConfig{OutlierThresholdMultiplier: ptrFloat64(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
