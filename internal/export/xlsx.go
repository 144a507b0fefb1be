// Package export renders group cost summaries for the console grid and
// for spreadsheet download: one flat row per group plus alert text.
package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// Headers is the column order of the export contract.
var Headers = []string{
	"Group", "Name", "Destination", "Pax", "Nights",
	"Activities", "Hotel", "Extra meals", "Coordinator", "Approved expenses",
	"Base total", "Final total", "Per pax", "Overridden", "Alerts",
}

// WriteXLSX writes one row per group to an XLSX workbook at path.
func WriteXLSX(path string, evals []model.Evaluation) error {
	f, err := buildWorkbook(evals)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// Write streams the workbook to w, for HTTP download.
func Write(w io.Writer, evals []model.Evaluation) error {
	f, err := buildWorkbook(evals)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

func buildWorkbook(evals []model.Evaluation) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Groups")
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Headers {
		header.AddCell().Value = h
	}

	for _, ev := range evals {
		appendRow(sheet, ev.Summary)
	}
	return f, nil
}

func appendRow(sheet *xlsx.Sheet, s model.GroupCostSummary) {
	row := sheet.AddRow()
	row.AddCell().Value = s.GroupID
	row.AddCell().Value = s.GroupName
	row.AddCell().Value = s.Destination
	row.AddCell().SetInt(s.Pax)
	row.AddCell().SetInt(s.Nights)
	row.AddCell().SetFloat(s.ActivitiesTotal)
	row.AddCell().SetFloat(s.HotelTotal)
	row.AddCell().SetFloat(s.MealsExtraTotal)
	row.AddCell().SetFloat(s.CoordinatorTotal)
	row.AddCell().SetFloat(s.ApprovedExpensesTotal)
	row.AddCell().SetFloat(s.GrandTotalBase)
	row.AddCell().SetFloat(s.GrandTotalFinal)
	row.AddCell().SetFloat(s.PerPax)
	row.AddCell().SetBool(s.Overridden)
	row.AddCell().Value = strings.Join(s.Alerts, "; ")
}
