package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"clubledger/internal/core/apperror"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat parses an export format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", apperror.NewInvalidInput("format", "expected csv or xlsx")
	}
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Export renders a report as a downloadable table.
func (s *Service) Export(ctx context.Context, req Request, format Format) (*File, error) {
	report, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	rows, err := Rows(report, primaryField[req.Type])
	if err != nil {
		return nil, fmt.Errorf("tabulate report: %w", err)
	}

	name := fmt.Sprintf("%s_%s_report.%s", req.Type, req.Period, format)
	switch format {
	case FormatXLSX:
		body, err := renderXLSX(rows, string(req.Type))
		if err != nil {
			return nil, err
		}
		return &File{
			Name:        name,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	default:
		body, err := renderCSV(rows)
		if err != nil {
			return nil, err
		}
		return &File{Name: name, ContentType: "text/csv; charset=utf-8", Body: body}, nil
	}
}

// Rows flattens a report into a header row plus data rows.
//
// Arrays (or the array under primary) render one row per element with the
// first element's keys as header. Objects without such an array render
// key,value rows for their scalar fields.
func Rows(report any, primary string) ([][]string, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	v, err := decodeOrdered(raw)
	if err != nil {
		return nil, err
	}

	if obj, ok := v.(*object); ok && primary != "" {
		if arr, ok := obj.get(primary).([]any); ok && len(arr) > 0 {
			v = arr
		}
	}

	switch t := v.(type) {
	case []any:
		return arrayRows(t), nil
	case *object:
		rows := [][]string{{"key", "value"}}
		for i, k := range t.keys {
			if cell, ok := scalarCell(t.values[i]); ok {
				rows = append(rows, []string{k, cell})
			}
		}
		return rows, nil
	default:
		cell, _ := scalarCell(t)
		return [][]string{{"value"}, {cell}}, nil
	}
}

func arrayRows(arr []any) [][]string {
	if len(arr) == 0 {
		return [][]string{}
	}
	first, ok := arr[0].(*object)
	if !ok {
		rows := [][]string{{"value"}}
		for _, el := range arr {
			rows = append(rows, []string{cell(el)})
		}
		return rows
	}

	rows := [][]string{append([]string(nil), first.keys...)}
	for _, el := range arr {
		obj, _ := el.(*object)
		row := make([]string, len(first.keys))
		for i, k := range first.keys {
			if obj != nil {
				row[i] = cell(obj.get(k))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func scalarCell(v any) (string, bool) {
	switch v.(type) {
	case *object, []any:
		return "", false
	default:
		return cell(v), true
	}
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		raw, err := json.Marshal(plain(t))
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderXLSX(rows [][]string, sheet string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// object is a JSON object that keeps key order.
type object struct {
	keys   []string
	values []any
}

func (o *object) get(key string) any {
	for i, k := range o.keys {
		if k == key {
			return o.values[i]
		}
	}
	return nil
}

// plain converts ordered values back to maps and slices for re-marshalling.
func plain(v any) any {
	switch t := v.(type) {
	case *object:
		m := make(map[string]any, len(t.keys))
		for i, k := range t.keys {
			m[k] = plain(t.values[i])
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = plain(el)
		}
		return out
	default:
		return v
	}
}

func decodeOrdered(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after report")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch d := tok.(type) {
	case json.Delim:
		switch d {
		case '{':
			obj := &object{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := kt.(string)
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.keys = append(obj.keys, key)
				obj.values = append(obj.values, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", d)
	default:
		return tok, nil
	}
}
