package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/futureCreator/qcflow/internal/run"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	base := t.TempDir()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	done, err := run.New(base, "set", "a", t0)
	require.NoError(t, err)
	done.Meta.Workflow = "xtb"
	done.Meta.Succeeded, done.Meta.Failed, done.Meta.Total = 3, 1, 4
	done.Meta.Timing = &run.Timing{Mean: 2}
	require.NoError(t, done.Complete(t0.Add(time.Minute)))

	_, err = run.New(base, "set", "b", t0.Add(time.Hour))
	require.NoError(t, err)

	statsDir = base
	defer func() { statsDir = "" }()
	var out bytes.Buffer
	statsCmd.SetOut(&out)
	require.NoError(t, runStats(statsCmd, nil))

	s := out.String()
	assert.Contains(t, s, "Runs: 2 total, 1 completed, 1 unfinished")
	assert.Contains(t, s, "Molecules: 4 processed, 3 succeeded (75.0%)")
	assert.Contains(t, s, "Average time per molecule: 2.0s")
	assert.Contains(t, s, filepath.Base(done.Dir))
	assert.Less(t, bytes.Index(out.Bytes(), []byte("set_b_")), bytes.Index(out.Bytes(), []byte("set_a_")), "newest run first")
}

func TestStatsNoRuns(t *testing.T) {
	statsDir = filepath.Join(t.TempDir(), "missing")
	defer func() { statsDir = "" }()
	var out bytes.Buffer
	statsCmd.SetOut(&out)
	require.NoError(t, runStats(statsCmd, nil))
	assert.Equal(t, "No runs found.\n", out.String())
}
