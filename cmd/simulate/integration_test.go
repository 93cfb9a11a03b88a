package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/tlsm-writeamp/pkg/runident"
	"github.com/dd0wney/tlsm-writeamp/pkg/simlog"
)

// TestSimulateDrivesLSMEngineEndToEnd exercises the same path main() does:
// load a YAML config, build an engine runner, drive a workload through it,
// and check the resulting report makes sense end to end.
func TestSimulateDrivesLSMEngineEndToEnd(t *testing.T) {
	configPath := writeTempConfig(t, `
buffer_size: 16
sstable_size: 64
statistics_window: 8
`)

	logger := simlog.NewJSONLogger(os.Stdout, simlog.ErrorLevel)
	runner, configBytes, err := buildRunner("lsm", configPath, logger)
	require.NoError(t, err, "buildRunner should succeed for a valid lsm config")
	require.NotEmpty(t, configBytes, "raw config bytes should be captured for fingerprinting")

	workload := generateWorkload(500, 1.0, 10, 7)
	require.Len(t, workload, 500)

	drive(runner, workload, nil, runident.New("lsm", configBytes), logger)

	snapshot := runner.snapshot()
	assert.Equal(t, "lsm", snapshot.Engine)
	assert.EqualValues(t, 500, snapshot.TotalPoints, "every workload point should land on L1 after drive")
	assert.GreaterOrEqual(t, snapshot.TotalWrites, snapshot.TotalPoints, "physical writes can only grow relative to logical points")

	identity := runident.New("lsm", configBytes)
	report := runner.report(identity)
	assert.Equal(t, identity.RunID, report.Identity.RunID)
	assert.EqualValues(t, snapshot.TotalPoints, report.TotalPoints)
}

func TestSimulateRejectsUnknownEngine(t *testing.T) {
	configPath := writeTempConfig(t, `buffer_size: 4`)
	logger := simlog.NewJSONLogger(os.Stdout, simlog.ErrorLevel)

	_, _, err := buildRunner("quantum-lsm", configPath, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantum-lsm")
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
