package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"fintrack/internal/apperr"
	"fintrack/internal/models"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Spending"

var exportHeaders = []string{"Date", "Item", "Category", "Amount", "Currency", "Notes"}

func exportRow(sp models.Spending, names map[uint]string) []string {
	var item, notes, category string
	if sp.ItemName != nil {
		item = *sp.ItemName
	}
	if sp.Notes != nil {
		notes = *sp.Notes
	}
	if sp.CategoryID != nil {
		category = names[*sp.CategoryID]
	}
	return []string{
		sp.Date.UTC().Format("2006-01-02"),
		item,
		category,
		strconv.FormatFloat(sp.Amount, 'f', 2, 64),
		string(sp.Currency),
		notes,
	}
}

func (h *SpendingHandler) exportFilename(ext string) string {
	return fmt.Sprintf("attachment; filename=\"spending_%s.%s\"", h.store.Now().Format("20060102"), ext)
}

// ExportCSV streams the filtered spending as CSV. Pagination is ignored.
func (h *SpendingHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	rows, names, err := h.store.ExportSpending(c.Request.Context(), user.ID, f)
	if err != nil {
		util.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", h.exportFilename("csv"))

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	for _, sp := range rows {
		_ = w.Write(exportRow(sp, names))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

// ExportXLSX writes the filtered spending as an Excel workbook with amounts
// as numeric cells.
func (h *SpendingHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	rows, names, err := h.store.ExportSpending(c.Request.Context(), user.ID, filter)
	if err != nil {
		util.Error(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	body, err := writeWorkbook(f, rows, names)
	if err != nil {
		util.Error(c, apperr.Internal("build xlsx", err))
		return
	}

	c.Header("Content-Disposition", h.exportFilename("xlsx"))
	c.Data(http.StatusOK, xlsxContentType, body)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeWorkbook fills the export sheet and serializes the workbook. Nothing is
// sent to the client until the whole file is built.
func writeWorkbook(f *excelize.File, rows []models.Spending, names map[uint]string) ([]byte, error) {
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	for idx, sp := range rows {
		for col, v := range exportRow(sp, names) {
			cell, err := excelize.CoordinatesToCellName(col+1, idx+2)
			if err != nil {
				return nil, err
			}
			if col == 3 {
				err = f.SetCellFloat(exportSheet, cell, sp.Amount, 2, 64)
			} else {
				err = f.SetCellValue(exportSheet, cell, v)
			}
			if err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 12},
		{"B", "C", 20},
		{"D", "E", 12},
		{"F", "F", 30},
	}
	for _, w := range widths {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("set column width %s: %w", w.from, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
