package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinterTableFormat(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)

	table := NewTableData("ID", "NAME", "SIZE")
	table.AddRow("42", "report.pdf", "1.0 KiB")
	table.AddRow("7", "song.mp3", "4.2 MiB")

	require.NoError(t, p.Print(table))
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, "song.mp3")
}

func TestPrinterJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, false)

	require.NoError(t, p.Print(map[string]int{"sessions": 3}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded["sessions"])
}

func TestPrinterYAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatYAML, false)

	require.NoError(t, p.Print(map[string]string{"status": "ok"}))
	assert.Contains(t, buf.String(), "status: ok")
}

func TestPrinterColorMessages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, true)
	p.Success("shared")
	assert.Contains(t, buf.String(), "\033[32m")

	buf.Reset()
	plain := NewPrinter(&buf, FormatTable, false)
	plain.Error("refused")
	assert.Equal(t, "refused\n", buf.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", FormatBytes(3*1024*1024/2))
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{
		{"Tracker", "http://localhost:4750"},
		{"Sessions", "2"},
	}))
	assert.Contains(t, buf.String(), "Tracker")
	assert.Contains(t, buf.String(), "Sessions")
}
