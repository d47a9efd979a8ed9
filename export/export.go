// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/danielhkuo/bausite/models"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// Download names and content types
const (
	PDFFilename      = "cabinet_requests.pdf"
	ExcelFilename    = "cabinet_requests.xlsx"
	PDFContentType   = "application/pdf"
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const (
	dateLayout = "02.01.2006"
	missing    = "—"
	sheetName  = "Requests"
)

var (
	PDFHeader   = []string{"Date", "Number", "Status", "Amount"}
	ExcelHeader = []string{"Date", "Number", "Category", "Status", "Amount"}
)

func formatAmount(a *float64) string {
	if a == nil {
		return missing
	}
	return strconv.FormatFloat(*a, 'f', 2, 64)
}

// PDF renders the request history as a single A4 table.
func PDF(requests []models.Request) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	widths := []float64{40, 45, 50, 45}
	const rowHeight = 8

	pdf.SetDrawColor(128, 128, 128)
	pdf.SetLineWidth(0.2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(0x6c, 0x63, 0xff)
	pdf.SetTextColor(245, 245, 245)
	for i, h := range PDFHeader {
		pdf.CellFormat(widths[i], rowHeight+2, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, r := range requests {
		row := []string{
			r.CreatedAt.Format(dateLayout),
			r.DisplayNumber(),
			models.RequestStatusLabel(r.Status),
			formatAmount(r.Amount),
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], rowHeight, tr(v), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Excel renders the request history as a workbook with a frozen header row.
func Excel(requests []models.Request) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	widths := []float64{14, 14, 30, 16, 14}
	for col, header := range ExcelHeader {
		if err := setCell(f, col+1, 1, header); err != nil {
			f.Close()
			return nil, err
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, name, name, widths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(ExcelHeader), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, r := range requests {
		row := i + 2
		category := r.CategoryName
		if category == "" {
			category = missing
		}
		var amount any = ""
		if r.Amount != nil {
			amount = *r.Amount
		}
		values := []any{r.CreatedAt.Format(dateLayout), r.DisplayNumber(), category,
			models.RequestStatusLabel(r.Status), amount}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
