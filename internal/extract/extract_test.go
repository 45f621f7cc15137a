package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vipeaLog = `
 ------------------------------------------------------------
 * xtb version 6.6.1
 ...
          | TOTAL ENERGY              -5.070544440612 Eh   |
 delta SCC IP (eV):   12.2817
 delta SCC EA (eV):   -3.5104
`

func writeLog(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestScanLog(t *testing.T) {
	var row Row
	require.NoError(t, ScanLog(strings.NewReader(vipeaLog), &row))
	require.True(t, row.Complete())
	assert.InDelta(t, 12.2817, *row.IP, 1e-9)
	assert.InDelta(t, -3.5104, *row.EA, 1e-9)
	assert.InDelta(t, -5.070544440612, *row.TotalEnergy, 1e-12)
}

func TestScanLogNothing(t *testing.T) {
	var row Row
	require.NoError(t, ScanLog(strings.NewReader("normal termination of xtb\n"), &row))
	assert.Nil(t, row.IP)
	assert.Nil(t, row.EA)
	assert.Nil(t, row.TotalEnergy)
	assert.False(t, row.Complete())
}

func TestScanDirLaterStepsWin(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "molecule_4")
	writeLog(t, dir, "step_1.log", "| TOTAL ENERGY  -1.5 Eh |\n")
	writeLog(t, dir, "step_2.log", "| TOTAL ENERGY  -2.5 Eh |\n")
	writeLog(t, dir, "step_10.log", "| TOTAL ENERGY  -10.5 Eh |\n")

	row, err := ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "molecule_4", row.Name)
	assert.Equal(t, 4, row.ID)
	require.NotNil(t, row.TotalEnergy)
	assert.Equal(t, -10.5, *row.TotalEnergy)
}

func TestScanSortsAndFilters(t *testing.T) {
	root := t.TempDir()
	writeLog(t, filepath.Join(root, "molecule_10"), "step_2.log", vipeaLog)
	writeLog(t, filepath.Join(root, "molecule_2"), "step_2.log", vipeaLog)
	writeLog(t, filepath.Join(root, "molecule_3"), "step_1.log", "| TOTAL ENERGY  -7.0 Eh |\n")
	writeLog(t, filepath.Join(root, "extra"), "step_1.log", vipeaLog)
	writeLog(t, root, "errors.log", "timestamp,id,name,descriptor,step,error\n")

	rows, err := Scan(root, false)
	require.NoError(t, err)
	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"molecule_2", "molecule_3", "molecule_10", "extra"}, names)

	rows, err = Scan(root, true)
	require.NoError(t, err)
	names = names[:0]
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"molecule_2", "molecule_10", "extra"}, names)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"), false)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	ip, ea := 7.25, 1.5
	rows := []Row{
		{Name: "molecule_1", IP: &ip, EA: &ea},
		{Name: "molecule_2"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t, "name,ip_ev,ea_ev,total_energy_eh\nmolecule_1,7.25,1.5,\nmolecule_2,,,\n", buf.String())
}

func TestSummarize(t *testing.T) {
	a, b, c := 6.0, 8.0, -1.0
	rows := []Row{
		{Name: "m1", IP: &a, EA: &c},
		{Name: "m2", IP: &b},
	}
	got := Summarize(rows)
	require.Len(t, got, 2)
	assert.Equal(t, Summary{Property: "ip_ev", Count: 2, Min: 6, Max: 8, Mean: 7}, got[0])
	assert.Equal(t, Summary{Property: "ea_ev", Count: 1, Min: -1, Max: -1, Mean: -1}, got[1])
}
