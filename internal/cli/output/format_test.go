package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "table", want: FormatTable},
		{input: "", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: "yml", want: FormatYAML},
		{input: "  yaml  ", want: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
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

func TestPrinter_Text(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)

	p.Text("drwxdr-x- .\ndrwxdr-x- ..")
	p.Text("")
	p.Text("hello\n")

	assert.Equal(t, "drwxdr-x- .\ndrwxdr-x- ..\nhello\n", buf.String())
}

func TestPrinter_Messages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)

	p.Success("created /docs")
	p.Warning("store is in-memory")
	p.Error("permission denied")
	assert.Equal(t, "created /docs\nstore is in-memory\npermission denied\n", buf.String())

	buf.Reset()
	NewPrinter(&buf, FormatTable, true).Success("ok")
	assert.Equal(t, "\033[32mok\033[0m\n", buf.String())
}

func TestPrinter_Print(t *testing.T) {
	var buf bytes.Buffer
	table := accountTable{{"docs", "rw-dr---"}}

	require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(table))
	assert.Contains(t, buf.String(), "docs")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(map[string]int{"entries": 3}))
	assert.JSONEq(t, `{"entries": 3}`, buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(map[string]int{"entries": 3}))
	assert.Equal(t, "entries: 3\n", buf.String())

	assert.Error(t, NewPrinter(&buf, Format("xml"), false).Print(table))
}
