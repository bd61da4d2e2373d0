package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	data := `{"debug":true,"size":"64MB","read_mbs":100,"write_mbs":200,"flush":true,"workers":2,"ops":5,"duration":"30s"}`
	require.NoError(t, os.WriteFile("config.json", []byte(data), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "64MB", cfg.Size)
	assert.Equal(t, uint64(100), cfg.ReadMBs)
	assert.Equal(t, uint64(200), cfg.WriteMBs)
	assert.True(t, cfg.Flush)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, uint64(5), cfg.Ops)
	assert.Equal(t, "30s", cfg.Duration)
}

func TestLoadConfigMissing(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	assert.Error(t, err)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "", cfg.Size)
}
