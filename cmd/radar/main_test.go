package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundRadar/internal/config"
	"FundRadar/internal/reference"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"scorecard", "watch"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	sc, _, _ := root.Find([]string{"scorecard"})
	for _, f := range []string{"start", "end", "format", "rank", "top"} {
		assert.NotNil(t, sc.Flags().Lookup(f), "missing --%s", f)
	}
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("debug"))
	assert.Error(t, setupLogging("loud"))
	require.NoError(t, setupLogging("info"))
}

func TestScorecardCmd_RejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "funds.yaml")
	require.NoError(t, os.WriteFile(ref, []byte("funds:\n  - ticker: HGLG11\n    sector: Logística\n    dividend_yield: \"0,7\"\n    price_to_book: \"1\"\n"), 0o600))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("reference:\n  source: yaml\n  file: "+ref+"\n"), 0o600))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"scorecard", "--config", cfgPath, "--format", "xml"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestReferenceProvider(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.IsType(t, &reference.HTMLProvider{}, referenceProvider(cfg))

	cfg.Reference.Source = config.SourceYAML
	cfg.Reference.File = "funds.yaml"
	assert.Equal(t, reference.YAMLProvider{File: "funds.yaml"}, referenceProvider(cfg))
}

func TestNewApp_UsesSQLiteCacheWhenConfigured(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	cfg.Cache.SQLitePath = filepath.Join(t.TempDir(), "cache.db")

	a, err := newApp(cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.NotNil(t, a.runner)
	assert.NotNil(t, a.metrics)
	_, err = os.Stat(cfg.Cache.SQLitePath)
	assert.NoError(t, err)
}
