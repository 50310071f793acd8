// Package report renders application exports as xlsx workbooks.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/geeksandijan/hrbot/core/telegram/format"
	"github.com/geeksandijan/hrbot/internal/storage"
)

// Sheet is the name of the only worksheet.
const Sheet = "Arizalar"

// Headers are the column titles in order.
var Headers = []string{
	"ID", "Ism", "Yosh", "Telefon", "Vakansiya", "Yo'nalish",
	"Tajriba", "Ish joyi", "Username", "Rasm", "CV", "Sana",
}

const dateLayout = "2006-01-02 15:04:05"

// FileName is the export name for a vacancy filter; empty means all.
func FileName(vacancy string) string {
	if vacancy == "" {
		return "all_arizalar.xlsx"
	}
	return vacancy + "_arizalar.xlsx"
}

// Applications writes apps into a workbook and returns its bytes.
func Applications(apps []storage.Application) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), Sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(Sheet)
	if err != nil {
		return nil, fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, a := range apps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row(a)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", a.ID, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func row(a storage.Application) []interface{} {
	return []interface{}{
		a.ID,
		a.Name,
		a.Age,
		a.Phone,
		a.Vacancy,
		format.DerefString(a.Subject, ""),
		a.Experience,
		format.DerefString(a.Workplace, ""),
		a.Username,
		a.PhotoID,
		format.DerefString(a.CVFileID, ""),
		stamp(a.CreatedAt),
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
