package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/futureCreator/qcflow/internal/types"
)

// ErrorLogHeader is the first row of every error log. Records are RFC 4180
// CSV, so descriptors containing commas, quotes or newlines survive a
// round trip.
var ErrorLogHeader = []string{"timestamp", "id", "name", "descriptor", "step", "error"}

// Record is one failed item in the error log.
type Record struct {
	Time       time.Time
	ID         int
	Name       string
	Descriptor string
	Step       string
	Error      string
}

// RecordOf builds the error log record for a failed result.
func RecordOf(res types.Result, at time.Time) Record {
	step := ""
	if res.FailedStep != types.NoStep {
		step = strconv.Itoa(res.FailedStep)
		if res.StepName != "" {
			step += ":" + res.StepName
		}
	}
	return Record{
		Time:       at,
		ID:         res.Item.ID,
		Name:       res.Item.Name,
		Descriptor: res.Item.Descriptor,
		Step:       step,
		Error:      res.Error,
	}
}

func (r Record) row() []string {
	return []string{r.Time.Format(time.RFC3339), strconv.Itoa(r.ID), r.Name, r.Descriptor, r.Step, r.Error}
}

// ErrorLog appends records to a shared CSV file. The file is created on
// the first append, so a run without failures leaves no error log.
type ErrorLog struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *csv.Writer
}

// NewErrorLog returns a log that will write to path.
func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path}
}

// Path is the file the log writes to.
func (l *ErrorLog) Path() string { return l.path }

// Append writes one record and flushes it to disk.
func (l *ErrorLog) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.w == nil {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("opening error log: %w", err)
		}
		l.f = f
		l.w = csv.NewWriter(f)
		if err := l.w.Write(ErrorLogHeader); err != nil {
			return fmt.Errorf("writing error log header: %w", err)
		}
	}
	if err := l.w.Write(rec.row()); err != nil {
		return fmt.Errorf("writing error log record: %w", err)
	}
	l.w.Flush()
	return l.w.Error()
}

// Close releases the file if one was opened.
func (l *ErrorLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	l.w.Flush()
	err := l.f.Close()
	l.f, l.w = nil, nil
	return err
}

// ReadErrorLog parses records written by ErrorLog.
func ReadErrorLog(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(ErrorLogHeader)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing error log: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if rows[0][0] != ErrorLogHeader[0] {
		return nil, fmt.Errorf("parsing error log: missing header")
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, fmt.Errorf("error log row %d: %w", i+1, err)
		}
		id, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("error log row %d: %w", i+1, err)
		}
		records = append(records, Record{
			Time:       ts,
			ID:         id,
			Name:       row[2],
			Descriptor: row[3],
			Step:       row[4],
			Error:      row[5],
		})
	}
	return records, nil
}

// ReadErrorLogFile parses the error log at path. A missing file means no
// failures were recorded.
func ReadErrorLogFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadErrorLog(f)
}
