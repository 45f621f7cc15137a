// Package source turns a SMILES list into ordered work items.
package source

import (
	"bufio"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/futureCreator/qcflow/internal/types"
	"github.com/pkg/errors"
)

const maxLineSize = 1 << 20

// Scan yields one WorkItem per non-blank line of r. Ids are dense over
// non-blank lines and start at 1. Descriptors are not validated here.
func Scan(r io.Reader) iter.Seq2[types.WorkItem, error] {
	return func(yield func(types.WorkItem, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)

		id, line := 0, 0
		for scanner.Scan() {
			line++
			text := scanner.Text()
			if line == 1 {
				text = strings.TrimPrefix(text, "\ufeff")
			}
			desc := strings.TrimSpace(text)
			if desc == "" {
				continue
			}
			id++
			if !yield(types.NewWorkItem(id, desc, line), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(types.WorkItem{}, errors.Wrapf(types.ErrInputFormat, "reading line %d: %v", line+1, err))
		}
	}
}

// ReadAll collects every item of r.
func ReadAll(r io.Reader) ([]types.WorkItem, error) {
	var items []types.WorkItem
	for item, err := range Scan(r) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// File is a SMILES list on disk. Items reopens the file on every call,
// so the sequence can be iterated more than once.
type File struct {
	Path string
}

// Resolve returns a File for name, falling back to dir/name when name
// does not exist as given.
func Resolve(name, dir string) (*File, error) {
	if _, err := os.Stat(name); err == nil {
		return &File{Path: name}, nil
	}
	if dir != "" && !filepath.IsAbs(name) {
		alt := filepath.Join(dir, name)
		if _, err := os.Stat(alt); err == nil {
			return &File{Path: alt}, nil
		}
	}
	return nil, errors.Wrapf(types.ErrInputFormat, "SMILES file not found: %s", name)
}

// Stem is the file name without directory and extension.
func (f *File) Stem() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (f *File) Items() iter.Seq2[types.WorkItem, error] {
	return func(yield func(types.WorkItem, error) bool) {
		fh, err := os.Open(f.Path)
		if err != nil {
			yield(types.WorkItem{}, errors.Wrapf(types.ErrInputFormat, "opening %s: %v", f.Path, err))
			return
		}
		defer fh.Close()
		for item, err := range Scan(fh) {
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll loads every item of the file.
func (f *File) ReadAll() ([]types.WorkItem, error) {
	var items []types.WorkItem
	for item, err := range f.Items() {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
