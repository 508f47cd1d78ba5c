package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libyield-go/config"
	"github.com/bitfsorg/libyield-go/distributor"
	"github.com/bitfsorg/libyield-go/store"
)

const (
	ownerHex = "0101010101010101010101010101010101010101"
	aliceHex = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bobHex   = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--datadir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := run(t, dataDir, args...)
	require.NoError(t, err, out)
	return out
}

func initDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "yield")
	mustRun(t, dir, "init", "--owner", ownerHex, "--network", "testnet")
	return dir
}

func TestInit_WritesConfig(t *testing.T) {
	dir := initDir(t)

	cfg, err := config.LoadConfig(config.ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, ownerHex, cfg.Owner)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, uint32(220), cfg.WeeklyRateBps)

	_, err = run(t, dir, "init", "--owner", ownerHex)
	assert.Error(t, err)
}

func TestInit_RequiresOwner(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "yield"), "init")
	assert.Error(t, err)
}

func TestMintRegisterBalance(t *testing.T) {
	dir := initDir(t)

	mustRun(t, dir, "--raw", "mint", aliceHex, "1000")
	out := mustRun(t, dir, "register", aliceHex, bobHex)
	assert.Contains(t, out, "registered 1 of 2")

	out = mustRun(t, dir, "--raw", "balance", aliceHex)
	assert.Contains(t, out, "balance:   1000")
	assert.Contains(t, out, "next yield: 22")

	out = mustRun(t, dir, "holders", "0")
	assert.NotEmpty(t, out)
	_, err := run(t, dir, "holders", "1")
	assert.Error(t, err)
}

func TestDistribute_NotDue(t *testing.T) {
	dir := initDir(t)
	_, err := run(t, dir, "distribute")
	assert.ErrorIs(t, err, distributor.ErrNotDue)
}

func TestRateAndPause(t *testing.T) {
	dir := initDir(t)

	out := mustRun(t, dir, "rate")
	assert.Contains(t, out, "2.2%")

	out = mustRun(t, dir, "rate", "500")
	assert.Contains(t, out, "(500 bps)")

	_, err := run(t, dir, "rate", "1001")
	assert.ErrorIs(t, err, distributor.ErrRateTooHigh)

	_, err = run(t, dir, "--as", aliceHex, "pause")
	assert.Error(t, err)

	out = mustRun(t, dir, "pause")
	assert.Contains(t, out, "distribution paused")
	out = mustRun(t, dir, "status")
	assert.Contains(t, out, "paused:            true")
	out = mustRun(t, dir, "resume")
	assert.Contains(t, out, "distribution resumed")
}

func TestConvertFlow(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "--raw", "mint", aliceHex, "1000")

	out := mustRun(t, dir, "--raw", "--as", aliceHex, "convert", "request", "400")
	assert.Contains(t, out, "request 1:")

	_, err := run(t, dir, "--raw", "--as", aliceHex, "convert", "request", "601")
	assert.Error(t, err)

	out = mustRun(t, dir, "convert", "process", "1")
	assert.Contains(t, out, "request 1: processing")

	_, err = run(t, dir, "convert", "complete", "1")
	assert.Error(t, err)

	out = mustRun(t, dir, "--raw", "convert", "list")
	assert.Contains(t, out, "processing")

	out = mustRun(t, dir, "convert", "cancel", "1")
	assert.Contains(t, out, "request 1: cancelled")

	out = mustRun(t, dir, "--raw", "convert", "list", "--user", aliceHex)
	assert.Contains(t, out, "cancelled")

	out = mustRun(t, dir, "journal", "--verify")
	assert.Contains(t, out, "journal ok")
	assert.Contains(t, out, "ConversionRequested")
}

func TestLedgerPauseUnpause(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "--raw", "mint", aliceHex, "100")

	out := mustRun(t, dir, "ledger", "pause")
	assert.Contains(t, out, "ledger paused")
	out = mustRun(t, dir, "status")
	assert.Contains(t, out, "ledger paused:     true")

	_, err := run(t, dir, "--raw", "--as", aliceHex, "transfer", bobHex, "10")
	assert.Error(t, err)
	_, err = run(t, dir, "--as", aliceHex, "ledger", "unpause")
	assert.Error(t, err)

	out = mustRun(t, dir, "ledger", "unpause")
	assert.Contains(t, out, "ledger unpaused")
	mustRun(t, dir, "--raw", "--as", aliceHex, "transfer", bobHex, "10")
}

func TestOpenFailureReleasesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "yield")
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	cfg.LogFile = filepath.Join(dir, "yield.log")
	require.NoError(t, config.SaveConfig(config.ConfigPath(dir), cfg))

	a := &app{dataDir: dir}
	_, err := a.open()
	require.ErrorIs(t, err, store.ErrNotInitialized)
	assert.Nil(t, a.closer)
}
