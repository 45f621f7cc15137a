package coords

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/futureCreator/qcflow/internal/config"
	"github.com/futureCreator/qcflow/internal/executor"
	"github.com/futureCreator/qcflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waterXYZ = "3\nobabel title\nO 0.000 0.000 0.117\nH 0.000 0.757 -0.467\nH 0.000 -0.757 -0.467\n"

func TestReadXYZ(t *testing.T) {
	mol, err := ReadXYZ(strings.NewReader(waterXYZ))
	require.NoError(t, err)
	assert.Equal(t, "obabel title", mol.Comment)
	assert.Equal(t, []string{"O", "H", "H"}, mol.Symbols)
	assert.InDelta(t, -0.467, mol.Coords[2][2], 1e-9)
}

func TestReadXYZErrors(t *testing.T) {
	tcs := map[string]string{
		"empty":         "",
		"bad count":     "three\n\n",
		"too few atoms": "2\n\nH 0 0 0\n",
		"short line":    "1\n\nH 0 0\n",
		"bad number":    "1\n\nH 0 x 0\n",
	}
	for name, in := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := ReadXYZ(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestFormula(t *testing.T) {
	tcs := map[string]struct {
		symbols []string
		want    string
	}{
		"water":        {[]string{"O", "H", "H"}, "H2O"},
		"ethanol":      {[]string{"C", "C", "O", "H", "H", "H", "H", "H", "H"}, "C2H6O"},
		"no carbon":    {[]string{"N", "H", "H", "H"}, "H3N"},
		"alphabetical": {[]string{"S", "Cl", "Br", "C"}, "CBrClS"},
		"numbered":     {[]string{"C1", "H12", "H13"}, "CH2"},
		"empty":        {nil, "Unknown"},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			m := &Molecule{Symbols: tc.symbols}
			assert.Equal(t, tc.want, m.Formula())
		})
	}
}

func TestCommandLine(t *testing.T) {
	g := NewGenerator(config.CoordsConfig{Command: "obabel", ForceField: "UFF", Steps: 500, Optimize: true})
	assert.Equal(t, "obabel molecule_1.smi -O molecule_1.xyz --gen3d --minimize --steps 500 --ff UFF",
		g.CommandLine("molecule_1.smi", "molecule_1.xyz"))

	g.Optimize = false
	assert.Equal(t, "obabel a.smi -O a.xyz --gen3d", g.CommandLine("a.smi", "a.xyz"))
}

func fakeTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-obabel")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestGeneratorExecute(t *testing.T) {
	// $3 is the -O target
	tool := fakeTool(t, `printf '`+strings.ReplaceAll(waterXYZ, "\n", `\n`)+`' > "$3"`+"\n")
	g := &Generator{Command: tool, ForceField: "MMFF94", Steps: 10, Optimize: true}
	dir := t.TempDir()
	item := types.NewWorkItem(4, "O", 4)

	res, err := g.Execute(context.Background(), &executor.Request{
		Step:    g.Step(),
		Item:    item,
		Dir:     dir,
		LogPath: filepath.Join(dir, "step_1.log"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "molecule_4.xyz", res.Output)

	smi, err := os.ReadFile(filepath.Join(dir, "molecule_4.smi"))
	require.NoError(t, err)
	assert.Equal(t, "O\n", string(smi))

	mol, err := ReadXYZFile(filepath.Join(dir, "molecule_4.xyz"))
	require.NoError(t, err)
	assert.Equal(t, "molecule_4 - SMILES: O - Formula: H2O", mol.Comment)
	assert.FileExists(t, filepath.Join(dir, "step_1.log"))
}

func TestGeneratorToolFailure(t *testing.T) {
	tool := fakeTool(t, "echo 'SMILES Parse Error' >&2\nexit 1\n")
	g := &Generator{Command: tool, Optimize: false}
	dir := t.TempDir()

	res, err := g.Execute(context.Background(), &executor.Request{Item: types.NewWorkItem(1, "C((", 1), Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Detail(), "SMILES Parse Error")
}

func TestGeneratorNoOutput(t *testing.T) {
	tool := fakeTool(t, "echo '0 molecules converted' >&2\n")
	g := &Generator{Command: tool}
	dir := t.TempDir()

	_, err := g.Execute(context.Background(), &executor.Request{Item: types.NewWorkItem(1, "xyz", 1), Dir: dir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrExternalTool))
}
