package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docedit/internal/markup"
)

// CSVParser handles CSV files. The whole file becomes one table.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Imported, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := baseTitle(filename)
	if len(records) == 0 {
		return wrap(title, nil), nil
	}

	table := markup.NewElement("table")
	markup.SetStyle(table, "border-collapse", "collapse")
	thead := markup.NewElement("thead")
	thead.AppendChild(tableRow("th", records[0]))
	table.AppendChild(thead)

	tbody := markup.NewElement("tbody")
	for _, row := range records[1:] {
		tbody.AppendChild(tableRow("td", row))
	}
	table.AppendChild(tbody)

	return wrap(title, []*markup.Node{table}), nil
}

func tableRow(cellTag string, cells []string) *markup.Node {
	tr := markup.NewElement("tr")
	for _, c := range cells {
		cell := markup.NewElement(cellTag)
		markup.SetStyle(cell, "border", "1px solid #ddd")
		cell.AppendChild(markup.NewText(c))
		tr.AppendChild(cell)
	}
	return tr
}
