package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/futureCreator/qcflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	l := NewErrorLog(path)
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	want := []Record{
		{Time: at, ID: 2, Name: "molecule_2", Descriptor: "c1ccccc1", Step: "0:coords", Error: "exit code 1: parse error"},
		{Time: at, ID: 5, Name: "molecule_5", Descriptor: `C(=O)O, "acid" | x`, Step: "1:xtb", Error: "exit code 2: line one\nline two"},
		{Time: at, ID: 9, Name: "molecule_9", Descriptor: "CCO", Step: "", Error: "filesystem error: disk full"},
	}
	for _, rec := range want {
		require.NoError(t, l.Append(rec))
	}
	require.NoError(t, l.Close())

	got, err := ReadErrorLogFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestErrorLogAbsentWithoutFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	l := NewErrorLog(path)
	require.NoError(t, l.Close())
	assert.NoFileExists(t, path)

	records, err := ReadErrorLogFile(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadErrorLogRejectsGarbage(t *testing.T) {
	tcs := map[string]string{
		"no header":  "2026-03-14T09:26:53Z,1,molecule_1,C,0,boom\n",
		"bad id":     "timestamp,id,name,descriptor,step,error\n2026-03-14T09:26:53Z,one,molecule_1,C,0,boom\n",
		"bad time":   "timestamp,id,name,descriptor,step,error\nyesterday,1,molecule_1,C,0,boom\n",
		"few fields": "timestamp,id,name,descriptor,step,error\n2026-03-14T09:26:53Z,1\n",
	}
	for name, in := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := ReadErrorLog(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestRecordOf(t *testing.T) {
	at := time.Now()
	res := types.Failed(types.NewWorkItem(3, "CC", 4), "/out/molecule_3", 1, "vipea", "exit code 1")
	rec := RecordOf(res, at)
	assert.Equal(t, Record{Time: at, ID: 3, Name: "molecule_3", Descriptor: "CC", Step: "1:vipea", Error: "exit code 1"}, rec)

	setup := types.Failed(types.NewWorkItem(4, "C", 5), "", types.NoStep, "", "worker crash: boom")
	assert.Equal(t, "", RecordOf(setup, at).Step)
}
