package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorAllGood(t *testing.T) {
	workspace(t, "CCO\n")
	// the "copy" workflow only needs cp and wc
	require.NoError(t, os.MkdirAll(".qcflow", 0755))
	require.NoError(t, os.WriteFile(filepath.Join(".qcflow", "config.yaml"), []byte("workflow: copy\n"), 0644))

	var out bytes.Buffer
	doctorCmd.SetOut(&out)
	require.NoError(t, runDoctor(doctorCmd, nil))

	s := out.String()
	assert.Contains(t, s, "✅ obabel installed")
	assert.Contains(t, s, "✅ workflow copy")
	assert.Contains(t, s, "✅ cp installed")
	assert.Contains(t, s, "All checks passed.")
}

func TestDoctorReportsMissingTools(t *testing.T) {
	dir := workspace(t, "CCO\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipelines.yaml"),
		[]byte("xtb:\n  command: [\"qcflow-no-such-tool {}\"]\n"), 0644))

	var out bytes.Buffer
	doctorCmd.SetOut(&out)
	require.NoError(t, runDoctor(doctorCmd, nil))

	s := out.String()
	assert.Contains(t, s, "❌ qcflow-no-such-tool installed")
	assert.Contains(t, s, "Some checks failed.")
}
