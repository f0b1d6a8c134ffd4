package analyses

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"pitchdeck-backend/internal/documents"
)

const (
	startupsSheet = "Startups"
	foundersSheet = "Founders"
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportXLSX renders analyzed documents as a workbook: one row per deck on
// the Startups sheet and one row per founder on the Founders sheet. Results
// of any schema version are accepted; absent fields stay blank.
func ExportXLSX(docs []documents.Document, schema Schema) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", startupsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(foundersSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	var flat []string
	for _, field := range schema.Fields {
		if field.Kind == KindString || field.Kind == KindScore {
			flat = append(flat, field.Name)
		}
	}
	headers := append([]string{"Document ID", "File Name", "Upload Time", "Schema Version"}, flat...)
	if err := writeRow(f, startupsSheet, 1, toAny(headers)); err != nil {
		return nil, err
	}
	founderHeaders := []string{"Document ID", "Company Name"}
	for _, sub := range schema.FounderFields {
		founderHeaders = append(founderHeaders, sub.Name)
	}
	if err := writeRow(f, foundersSheet, 1, toAny(founderHeaders)); err != nil {
		return nil, err
	}

	founderRow := 2
	for i, doc := range docs {
		var result map[string]any
		if len(doc.Result) > 0 {
			if err := json.Unmarshal(doc.Result, &result); err != nil {
				return nil, fmt.Errorf("decode result %s: %w", doc.ID, err)
			}
		}
		row := []any{doc.ID, doc.FileName, doc.UploadTime.UTC().Format(time.RFC3339), doc.SchemaVersion}
		for _, name := range flat {
			row = append(row, cellValue(result[name]))
		}
		if err := writeRow(f, startupsSheet, i+2, row); err != nil {
			return nil, err
		}

		founders, _ := result["Founder Details"].([]any)
		for _, raw := range founders {
			founder, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			frow := []any{doc.ID, cellValue(result["Company Name"])}
			for _, sub := range schema.FounderFields {
				frow = append(frow, cellValue(founder[sub.Name]))
			}
			if err := writeRow(f, foundersSheet, founderRow, frow); err != nil {
				return nil, err
			}
			founderRow++
		}
	}

	for sheet, cols := range map[string]int{startupsSheet: len(headers), foundersSheet: len(founderHeaders)} {
		last, _ := excelize.CoordinatesToCellName(cols, 1)
		_ = f.SetCellStyle(sheet, "A1", last, bold)
		lastCol, _ := excelize.ColumnNumberToName(cols)
		_ = f.SetColWidth(sheet, "A", lastCol, 28)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, float64, bool:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
