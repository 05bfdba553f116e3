package exports

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Rentals"

func WriteXLSX(w io.Writer, header []string, recs []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return err
	}

	for r, rec := range recs {
		// 数量だけ数値セルにする
		values := []any{rec.ItemName, rec.Quantity, rec.RentalDate, rec.ExpectedReturnDate, rec.ReturnDate, rec.Status}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "C", "F", 14); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
