package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID      string
	Name    string
	Quota   *int64
	Created time.Time
	Tags    []string
	hidden  string
}

func sampleRows() []row {
	q := int64(1024)
	return []row{
		{ID: "u1", Name: "alice", Quota: &q, Created: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Tags: []string{"a", "b"}},
		{ID: "u2", Name: "bob"},
	}
}

var rowColumns = []Column{
	{Name: "ID", Key: "ID"},
	{Name: "NAME", Key: "Name"},
	{Name: "QUOTA", Key: "Quota"},
	{Name: "TAGS", Key: "Tags"},
}

func TestPlainPrintList(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewWithWriters("plain", false, &out, &errOut)

	require.NoError(t, f.PrintList(sampleRows(), rowColumns))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID\tNAME\tQUOTA\tTAGS", lines[0])
	assert.Equal(t, "u1\talice\t1024\ta,b", lines[1])
	assert.Equal(t, "u2\tbob\t\t", lines[2])
	assert.Empty(t, errOut.String())
}

func TestPlainPrintStruct(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("plain", false, &out, &bytes.Buffer{})

	require.NoError(t, f.Print(sampleRows()[0]))

	assert.Contains(t, out.String(), "ID\tu1\n")
	assert.Contains(t, out.String(), "Created\t2024-01-02T03:04:05Z\n")
	assert.NotContains(t, out.String(), "hidden")
}

func TestPrintListRequiresSlice(t *testing.T) {
	for _, mode := range []string{"plain", "rich"} {
		f := NewWithWriters(mode, false, &bytes.Buffer{}, &bytes.Buffer{})
		assert.Error(t, f.PrintList(row{}, rowColumns), mode)
	}
}

func TestJSONPrintList(t *testing.T) {
	tests := []struct {
		name        string
		resultsOnly bool
		check       func(t *testing.T, raw []byte)
	}{
		{
			name: "envelope",
			check: func(t *testing.T, raw []byte) {
				var env struct {
					Data  []map[string]any `json:"data"`
					Count int              `json:"count"`
				}
				require.NoError(t, json.Unmarshal(raw, &env))
				assert.Equal(t, 2, env.Count)
				assert.Len(t, env.Data, 2)
			},
		},
		{
			name:        "results only",
			resultsOnly: true,
			check: func(t *testing.T, raw []byte) {
				var items []map[string]any
				require.NoError(t, json.Unmarshal(raw, &items))
				assert.Len(t, items, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			f := NewWithWriters("json", tt.resultsOnly, &out, &bytes.Buffer{})
			require.NoError(t, f.PrintList(sampleRows(), rowColumns))
			tt.check(t, out.Bytes())
		})
	}
}

func TestJSONPrintErrorSkipsHint(t *testing.T) {
	var errOut bytes.Buffer
	f := NewWithWriters("json", false, &bytes.Buffer{}, &errOut)

	f.PrintError(errors.New("boom"))
	f.PrintHint("ignored")

	var obj map[string]string
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &obj))
	assert.Equal(t, "boom", obj["error"])
	assert.NotContains(t, errOut.String(), "ignored")
}

func TestRichPrintList(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("rich", false, &out, &bytes.Buffer{})

	require.NoError(t, f.PrintList(sampleRows(), rowColumns))

	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "bob")
	assert.Contains(t, out.String(), "QUOTA")
}

func TestExitWithError(t *testing.T) {
	var errOut bytes.Buffer
	f := NewWithWriters("plain", false, &bytes.Buffer{}, &errOut)

	ExitWithError(f, NewCLIError(ExitAuth, "token expired").WithHint("Run: wdc auth login"))

	assert.Equal(t, "error: token expired\nhint: Run: wdc auth login\n", errOut.String())
}

func TestUnknownModeIsPlain(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("yaml", false, &out, &bytes.Buffer{})
	require.NoError(t, f.Print("hello"))
	assert.Equal(t, "hello\n", out.String())
}
