package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, configFile string) *viper.Viper {
	t.Helper()
	// keep $HOME and the working directory out of the lookup
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	Init(v, configFile)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "coverage.out", cfg.Profile)
	assert.Equal(t, FormatGo, cfg.Format)
	assert.Equal(t, "clover.xml", cfg.Output)
	assert.Equal(t, ".", cfg.Src)
	assert.Empty(t, cfg.Exclude)
	assert.Equal(t, "coverage", cfg.BadgeLabel)
	assert.False(t, cfg.Summary)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clover.yaml")
	content := `profile: coverage-final.json
format: Istanbul
output: reports/clover.xml
exclude:
  - "**/*_test.go"
  - "vendor/**"
summary: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644)) //nolint:gosec // test file

	cfg, err := Load(newViper(t, path))
	require.NoError(t, err)

	assert.Equal(t, "coverage-final.json", cfg.Profile)
	assert.Equal(t, FormatIstanbul, cfg.Format, "format is normalized")
	assert.Equal(t, "reports/clover.xml", cfg.Output)
	assert.Equal(t, []string{"**/*_test.go", "vendor/**"}, cfg.Exclude)
	assert.True(t, cfg.Summary)
}

func TestLoadEnvironment(t *testing.T) {
	v := newViper(t, "")
	t.Setenv("CLOVER_OUTPUT", "-")
	t.Setenv("CLOVER_BADGE_LABEL", "statements")
	t.Setenv("CLOVER_EXCLUDE", "a/**,b/**")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "-", cfg.Output)
	assert.Equal(t, "statements", cfg.BadgeLabel)
	assert.Equal(t, []string{"a/**", "b/**"}, cfg.Exclude)
}

func TestLoadBrokenConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clover.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: [unclosed"), 0o644)) //nolint:gosec // test file

	_, err := Load(newViper(t, path))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{name: "valid go", cfg: Config{Profile: "coverage.out", Format: "go"}},
		{name: "valid istanbul upper case", cfg: Config{Profile: "c.json", Format: " ISTANBUL "}},
		{name: "unknown format", cfg: Config{Profile: "coverage.out", Format: "lcov"}, expectError: true},
		{name: "empty profile", cfg: Config{Profile: " ", Format: "go"}, expectError: true},
		{name: "badge clobbers report", cfg: Config{Profile: "c.out", Format: "go", Output: "x.xml", Badge: "x.xml"}, expectError: true},
		{name: "report and badge both on stdout", cfg: Config{Profile: "c.out", Format: "go", Output: "-", Badge: "-"}, expectError: true},
		{name: "report on stdout, badge to file", cfg: Config{Profile: "c.out", Format: "go", Output: "-", Badge: "badge.svg"}},
		{name: "badge on stdout, report to file", cfg: Config{Profile: "c.out", Format: "go", Output: "clover.xml", Badge: "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.cfg.Output)
			assert.NotEmpty(t, tt.cfg.Src)
		})
	}
}
