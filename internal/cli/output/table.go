package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by values printed as a table in the table
// output format.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// tableStyle is the borderless, left-aligned layout shared by listings and
// key/value blocks. Columns are joined by padding alone: with no
// whitespace mode on, tablewriter prints no column separator.
type tableStyle struct {
	padding string
	headers bool
}

var (
	gridStyle = tableStyle{padding: "  ", headers: true}
	pairStyle = tableStyle{padding: " "}
)

func (s tableStyle) writer(w io.Writer) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(s.headers)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderLine(false)
	t.SetBorder(false)
	t.SetTablePadding(s.padding)
	t.SetNoWhiteSpace(true)
	return t
}

// PrintTable writes data as a borderless table under upper-cased headers.
func PrintTable(w io.Writer, data TableRenderer) error {
	t := gridStyle.writer(w)
	t.SetHeader(data.Headers())
	t.AppendBulk(data.Rows())
	t.Render()
	return nil
}

// KeyValues prints one "key: value" line per pair with the values
// aligned, as stat and stats do.
func KeyValues(w io.Writer, pairs [][2]string) error {
	t := pairStyle.writer(w)
	for _, pair := range pairs {
		t.Append([]string{pair[0] + ":", pair[1]})
	}
	t.Render()
	return nil
}
