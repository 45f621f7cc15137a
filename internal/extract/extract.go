// Package extract collects xtb properties from the step logs of a finished run.
package extract

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/futureCreator/qcflow/internal/types"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Header is the first row of the property table.
var Header = []string{"name", "ip_ev", "ea_ev", "total_energy_eh"}

var (
	ipPattern     = regexp.MustCompile(`delta SCC IP \(eV\):\s+(-?[\d.]+)`)
	eaPattern     = regexp.MustCompile(`delta SCC EA \(eV\):\s+(-?[\d.]+)`)
	energyPattern = regexp.MustCompile(`TOTAL ENERGY\s+(-?[\d.]+)\s+Eh`)
	itemPattern   = regexp.MustCompile(`^molecule_(\d+)$`)
)

// Row holds the properties found for one item directory. Missing values
// are nil.
type Row struct {
	Name        string
	ID          int
	IP          *float64
	EA          *float64
	TotalEnergy *float64
}

// Complete reports whether both IP and EA were found.
func (r Row) Complete() bool { return r.IP != nil && r.EA != nil }

// ScanLog reads one log and fills any property it reports into row.
// Later matches override earlier ones.
func ScanLog(r io.Reader, row *Row) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if v, ok := match(ipPattern, line); ok {
			row.IP = &v
		}
		if v, ok := match(eaPattern, line); ok {
			row.EA = &v
		}
		if v, ok := match(energyPattern, line); ok {
			row.TotalEnergy = &v
		}
	}
	return sc.Err()
}

func match(re *regexp.Regexp, line string) (float64, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ScanDir builds the row of a single item directory from its step logs,
// read in step order.
func ScanDir(dir string) (Row, error) {
	row := Row{Name: filepath.Base(dir), ID: -1}
	if m := itemPattern.FindStringSubmatch(row.Name); m != nil {
		row.ID, _ = strconv.Atoi(m[1])
	}

	logs, err := filepath.Glob(filepath.Join(dir, "step_*.log"))
	if err != nil {
		return row, err
	}
	sort.Slice(logs, func(i, j int) bool { return stepNumber(logs[i]) < stepNumber(logs[j]) })

	for _, path := range logs {
		f, err := os.Open(path)
		if err != nil {
			return row, errors.Wrapf(types.ErrFilesystem, "open %s: %v", path, err)
		}
		err = ScanLog(f, &row)
		f.Close()
		if err != nil {
			return row, errors.Wrapf(types.ErrFilesystem, "read %s: %v", path, err)
		}
	}
	return row, nil
}

func stepNumber(path string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "step_"), ".log")
	n, err := strconv.Atoi(base)
	if err != nil {
		return -1
	}
	return n
}

// Scan reads every item directory directly below root. Rows are sorted by
// item id; directories without an id follow, sorted by name. With
// completeOnly, rows lacking IP or EA are dropped.
func Scan(root string, completeOnly bool) ([]Row, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(types.ErrFilesystem, "read run directory: %v", err)
	}

	var rows []Row
	for _, e := range entries {
		if !e.IsDir() || e.Type()&os.ModeSymlink != 0 {
			continue
		}
		row, err := ScanDir(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		if completeOnly && !row.Complete() {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.ID >= 0 && b.ID >= 0:
			return a.ID < b.ID
		case a.ID >= 0:
			return true
		case b.ID >= 0:
			return false
		default:
			return a.Name < b.Name
		}
	})
	return rows, nil
}

// WriteCSV writes rows as CSV with Header. Missing values are empty cells.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Name, cell(r.IP), cell(r.EA), cell(r.TotalEnergy)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Summary describes one property column.
type Summary struct {
	Property string
	Count    int
	Min      float64
	Max      float64
	Mean     float64
}

// Summarize reports count, range and mean of every property present in rows.
func Summarize(rows []Row) []Summary {
	columns := []struct {
		name string
		get  func(Row) *float64
	}{
		{"ip_ev", func(r Row) *float64 { return r.IP }},
		{"ea_ev", func(r Row) *float64 { return r.EA }},
		{"total_energy_eh", func(r Row) *float64 { return r.TotalEnergy }},
	}

	var out []Summary
	for _, c := range columns {
		var xs []float64
		for _, r := range rows {
			if v := c.get(r); v != nil {
				xs = append(xs, *v)
			}
		}
		if len(xs) == 0 {
			continue
		}
		out = append(out, Summary{
			Property: c.name,
			Count:    len(xs),
			Min:      floats.Min(xs),
			Max:      floats.Max(xs),
			Mean:     stat.Mean(xs, nil),
		})
	}
	return out
}
