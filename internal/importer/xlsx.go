// Package importer loads seed data into the document store: service
// catalogs from XLSX workbooks and groups or expense documents from
// JSON files.
package importer

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// XLSXOptions configures the catalog workbook parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of header rows to skip (default 1)
}

// Catalog column layout:
// destination | id | name | provider | city | charge type | currency | price | aliases
const (
	colDestination = iota
	colID
	colName
	colProvider
	colCity
	colChargeType
	colCurrency
	colPrice
	colAliases
	catalogColumns
)

// ReadCatalogXLSX parses a catalog workbook into service records grouped
// by destination, preserving destination declaration order.
func ReadCatalogXLSX(path string, opts XLSXOptions) ([]string, map[string][]model.ServiceRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "importer: open %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, nil, err
	}

	skip := opts.SkipRows
	if skip == 0 {
		skip = 1
	}

	var order []string
	byDest := make(map[string][]model.ServiceRecord)
	for i, row := range sheet.Rows {
		if i < skip {
			continue
		}
		cells := rowToStrings(row)
		svc, err := parseCatalogRow(cells)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "importer: row %d", i+1)
		}
		if svc == nil {
			continue
		}
		if _, seen := byDest[svc.Destination]; !seen {
			order = append(order, svc.Destination)
		}
		byDest[svc.Destination] = append(byDest[svc.Destination], *svc)
	}

	return order, byDest, nil
}

func parseCatalogRow(cells []string) (*model.ServiceRecord, error) {
	if len(cells) < catalogColumns {
		padded := make([]string, catalogColumns)
		copy(padded, cells)
		cells = padded
	}

	dest := strings.TrimSpace(cells[colDestination])
	name := strings.TrimSpace(cells[colName])
	if dest == "" && name == "" {
		return nil, nil // blank row
	}
	if dest == "" {
		return nil, eris.New("missing destination")
	}
	if name == "" {
		return nil, eris.New("missing service name")
	}

	var price float64
	if raw := strings.TrimSpace(cells[colPrice]); raw != "" {
		p, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "parse price %q", raw)
		}
		price = p
	}
	if price < 0 {
		return nil, eris.Errorf("negative price for %s", name)
	}

	var aliases []string
	for _, a := range strings.Split(cells[colAliases], ";") {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}

	return &model.ServiceRecord{
		Destination:   dest,
		ID:            strings.TrimSpace(cells[colID]),
		CanonicalName: name,
		Provider:      strings.TrimSpace(cells[colProvider]),
		City:          strings.TrimSpace(cells[colCity]),
		ChargeType:    model.ParseChargeType(strings.ToUpper(strings.TrimSpace(cells[colChargeType]))),
		Currency:      strings.ToUpper(strings.TrimSpace(cells[colCurrency])),
		UnitPrice:     price,
		Aliases:       aliases,
	}, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("importer: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("importer: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
