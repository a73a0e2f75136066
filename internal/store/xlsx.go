package store

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/site-scout/internal/model"
)

// SheetName is the worksheet datasets are written to.
const SheetName = "locations"

// WriteXLSX saves the dataset as a single-sheet workbook. Metric and score
// columns are written as numeric cells.
func WriteXLSX(path string, ds *model.Dataset) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header, rows := Encode(ds)
	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().SetString(h)
	}

	for _, row := range rows {
		xr := sheet.AddRow()
		for j, v := range row {
			cell := xr.AddCell()
			if numericField(ds.Schema.Columns[j].Field) && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					cell.SetFloat(f)
					continue
				}
			}
			cell.SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

// ReadXLSX loads a dataset from the first sheet of a workbook.
func ReadXLSX(path string, schema *model.Schema) (*model.Dataset, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Wrapf(model.ErrEmptyDataset, "xlsx: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Wrapf(model.ErrEmptyDataset, "xlsx: %s has no header", path)
	}

	header := rowToStrings(sheet.Rows[0])
	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, rowToStrings(row))
	}
	return Decode(schema, header, rows)
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func numericField(f model.Field) bool {
	switch f {
	case model.FieldLatitude, model.FieldLongitude, model.FieldMetric, model.FieldSeedScore, model.FieldScore:
		return true
	}
	return false
}
