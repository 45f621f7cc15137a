package coords

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Molecule is the content of an XYZ file.
type Molecule struct {
	Comment string
	Symbols []string
	Coords  [][3]float64
}

// ReadXYZ parses a single-frame XYZ document.
func ReadXYZ(r io.Reader) (*Molecule, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, fmt.Errorf("xyz: missing atom count")
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("xyz: bad atom count %q", scanner.Text())
	}
	mol := &Molecule{}
	if scanner.Scan() {
		mol.Comment = scanner.Text()
	}
	for len(mol.Symbols) < n && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("xyz: atom line %d has %d fields", len(mol.Symbols)+1, len(fields))
		}
		var xyz [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("xyz: atom line %d: %w", len(mol.Symbols)+1, err)
			}
			xyz[i] = v
		}
		mol.Symbols = append(mol.Symbols, fields[0])
		mol.Coords = append(mol.Coords, xyz)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mol.Symbols) != n {
		return nil, fmt.Errorf("xyz: expected %d atoms, found %d", n, len(mol.Symbols))
	}
	return mol, nil
}

// ReadXYZFile parses the XYZ file at path.
func ReadXYZFile(path string) (*Molecule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadXYZ(f)
}

// Formula returns the Hill formula of the molecule: carbon first,
// hydrogen second, the remaining elements alphabetically.
func (m *Molecule) Formula() string {
	counts := map[string]int{}
	for _, s := range m.Symbols {
		sym := strings.TrimFunc(s, unicode.IsDigit)
		if sym == "" {
			continue
		}
		counts[sym]++
	}
	if len(counts) == 0 {
		return "Unknown"
	}

	var sb strings.Builder
	write := func(sym string) {
		sb.WriteString(sym)
		if c := counts[sym]; c > 1 {
			sb.WriteString(strconv.Itoa(c))
		}
		delete(counts, sym)
	}
	for _, sym := range []string{"C", "H"} {
		if _, ok := counts[sym]; ok {
			write(sym)
		}
	}
	rest := make([]string, 0, len(counts))
	for sym := range counts {
		rest = append(rest, sym)
	}
	sort.Strings(rest)
	for _, sym := range rest {
		write(sym)
	}
	return sb.String()
}

// SetComment replaces the comment line of the XYZ file at path.
func SetComment(path, comment string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.SplitAfter(string(data), "\n")
	if len(lines) < 2 {
		return fmt.Errorf("xyz: %s has no comment line", path)
	}
	lines[1] = comment + "\n"
	return os.WriteFile(path, []byte(strings.Join(lines, "")), 0644)
}
