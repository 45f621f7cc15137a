// Package coords generates 3D coordinates from SMILES with Open Babel.
package coords

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/futureCreator/qcflow/internal/config"
	"github.com/futureCreator/qcflow/internal/executor"
	vlog "github.com/futureCreator/qcflow/internal/log"
	"github.com/futureCreator/qcflow/internal/types"
	"github.com/pkg/errors"
)

// ExecutorName selects the Generator in a pipeline step.
const ExecutorName = "obabel"

// Generator writes <name>.smi for a work item and converts it to
// <name>.xyz, which later steps receive as their input.
type Generator struct {
	Command    string
	ForceField string
	Steps      int
	Optimize   bool
}

// NewGenerator builds a Generator from settings.
func NewGenerator(cfg config.CoordsConfig) *Generator {
	return &Generator{
		Command:    cfg.Command,
		ForceField: cfg.ForceField,
		Steps:      cfg.Steps,
		Optimize:   cfg.Optimize,
	}
}

// Step is the pipeline step that runs the Generator.
func (g *Generator) Step() types.Step {
	return types.Step{Name: "coords", Executor: ExecutorName}
}

// CommandLine builds the conversion command for the given file names.
func (g *Generator) CommandLine(smiFile, xyzFile string) string {
	args := []string{g.Command, executor.Quote(smiFile), "-O", executor.Quote(xyzFile), "--gen3d"}
	if g.Optimize {
		args = append(args, "--minimize", "--steps", strconv.Itoa(g.Steps), "--ff", g.ForceField)
	}
	return strings.Join(args, " ")
}

func (g *Generator) Execute(ctx context.Context, req *executor.Request) (*executor.Result, error) {
	item := req.Item
	smiFile := item.Name + ".smi"
	xyzFile := item.Name + ".xyz"

	if err := os.WriteFile(filepath.Join(req.Dir, smiFile), []byte(item.Descriptor+"\n"), 0644); err != nil {
		return nil, errors.Wrapf(types.ErrFilesystem, "writing %s: %v", smiFile, err)
	}

	res, err := executor.Run(ctx, g.CommandLine(smiFile, xyzFile), req.Dir, req.Env)
	if err != nil {
		return nil, err
	}
	res.Output = xyzFile
	if req.LogPath != "" {
		if err := executor.WriteLog(req.LogPath, res); err != nil {
			vlog.Warn("failed to write step log", "path", req.LogPath, "err", err)
		}
	}
	if res.ExitCode != 0 {
		return res, nil
	}

	// obabel exits 0 even when it converted nothing
	xyzPath := filepath.Join(req.Dir, xyzFile)
	mol, err := ReadXYZFile(xyzPath)
	if err != nil {
		return nil, errors.Wrapf(types.ErrExternalTool, "no coordinates for %q: %v", item.Descriptor, err)
	}
	if len(mol.Symbols) == 0 {
		return nil, errors.Wrapf(types.ErrExternalTool, "no atoms generated for %q", item.Descriptor)
	}

	comment := fmt.Sprintf("%s - SMILES: %s - Formula: %s", item.Name, item.Descriptor, mol.Formula())
	if err := SetComment(xyzPath, comment); err != nil {
		vlog.Warn("failed to annotate xyz", "item", item.Name, "err", err)
	}
	return res, nil
}
