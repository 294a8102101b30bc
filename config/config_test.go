package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdxlate/vxmile/config"
)

func TestLoadMissingFileIsZeroValue(t *testing.T) {
	opts, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.Options{}, opts)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vxmile.yaml")
	contents := "compact: true\nlong_name: true\ntime_units: Month\nstart: 0\nstop: 100\ndt: 0.25\nmethod: RK4\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	opts, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, opts.Compact)
	require.True(t, opts.LongNames)
	require.Equal(t, "Month", opts.TimeUnits)
	require.Equal(t, 100.0, opts.Stop)
	require.Equal(t, 0.25, opts.DT)
	require.Equal(t, "RK4", opts.SimMethod)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compact: [this is not a bool"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestMergeOverrideWinsOnNonZeroFields(t *testing.T) {
	base := config.Options{Compact: true, TimeUnits: "Year", DT: 1, SimMethod: "Euler"}
	override := config.Options{AsSectors: true, DT: 0.5}

	got := config.Merge(base, override)

	require.True(t, got.Compact, "base-only field survives the merge")
	require.True(t, got.AsSectors, "override-only field is applied")
	require.Equal(t, "Year", got.TimeUnits, "zero-valued override field does not clobber base")
	require.Equal(t, 0.5, got.DT, "non-zero override field wins over base")
	require.Equal(t, "Euler", got.SimMethod)
}
