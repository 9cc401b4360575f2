/*
export.go - XLSX export of the billing dashboard

PURPOSE:
  Renders the period projection as a spreadsheet download, one row per
  (client, month), so the back-office can hand the monthly billing
  picture to accounting without re-typing it.
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/vinculo/billing-engine/billing"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Client", "Due Date", "Amount", "Status", "Paid Date", "Penalty %", "Installment", "Forecast", "Notes",
}

// ExportDashboard streams the projected window as an .xlsx attachment.
// GET /api/dashboard/export?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	rows, window, err := h.projectWindow(r)
	if err != nil {
		h.writeDomainError(w, "Failed to project dashboard", err)
		return
	}

	f := excelize.NewFile()
	sheet := "Mensalidades"
	f.SetSheetName(f.GetSheetName(0), sheet)
	_ = f.SetDocProps(&excelize.DocProperties{Creator: "billing-engine"})

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	for rowIdx, row := range rows {
		values := exportRow(row)
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build spreadsheet", err)
		return
	}

	fileName := fmt.Sprintf("mensalidades_%s_%s.xlsx",
		window.Start.Format("20060102"), window.End.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Write(buf.Bytes())
}

func exportRow(row billing.ProjectedCharge) []any {
	paidDate := ""
	if row.PaidDate != nil {
		paidDate = row.PaidDate.Format("2006-01-02")
	}
	penalty := ""
	if row.PenaltyPercent != nil {
		penalty = row.PenaltyPercent.String()
	}
	installment := ""
	if row.InstallmentTotal > 0 {
		installment = fmt.Sprintf("%d/%d", row.InstallmentNumber, row.InstallmentTotal)
	}
	return []any{
		row.ClientName,
		row.DueDate.Format("2006-01-02"),
		billing.FormatAmount(row.Amount),
		string(row.Status),
		paidDate,
		penalty,
		installment,
		row.Forecast,
		row.Notes,
	}
}
