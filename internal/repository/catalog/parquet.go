package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/bikeval/internal/domain"
)

func readParquet(path string) ([]rawRow, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	header := make([]string, 0, len(pf.Schema().Columns()))
	for _, path := range pf.Schema().Columns() {
		if len(path) == 0 {
			header = append(header, "")
			continue
		}
		header = append(header, path[0])
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []rawRow
	line := 0
	for _, rg := range pf.RowGroups() {
		reader := parquet.NewRowGroupReader(rg)
		buf := make([]parquet.Row, 256)
		for {
			n, readErr := reader.ReadRows(buf)
			for i := 0; i < n; i++ {
				line++
				row, err := parquetRow(line, buf[i], cols)
				if err != nil {
					return nil, err
				}
				rows = append(rows, row)
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, fmt.Errorf("read rows: %w", readErr)
			}
		}
	}
	return rows, nil
}

func parquetRow(line int, row parquet.Row, cols columnIndex) (rawRow, error) {
	out := rawRow{line: line}
	for _, v := range row {
		var err error
		switch v.Column() {
		case cols[ColName]:
			out.name = textValue(v)
		case cols[ColBrand]:
			out.brand = textValue(v)
		case cols[ColCity]:
			out.city = textValue(v)
		case cols[ColPower]:
			out.power, err = numericValue(v)
			if err != nil {
				return rawRow{}, malformed(line, ColPower, err)
			}
		case cols[ColKmsDriven]:
			out.kmsDriven, err = numericValue(v)
			if err != nil {
				return rawRow{}, malformed(line, ColKmsDriven, err)
			}
		case cols[ColPrice]:
			out.price, err = numericValue(v)
			if err != nil {
				return rawRow{}, malformed(line, ColPrice, err)
			}
		}
	}
	return out, nil
}

func textValue(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// numericValue accepts any physical numeric type; writers disagree on int vs double.
func numericValue(v parquet.Value) (float64, error) {
	if v.IsNull() {
		return 0, fmt.Errorf("null value: %w", domain.ErrCatalogMalformed)
	}
	switch v.Kind() {
	case parquet.Double:
		return v.Double(), nil
	case parquet.Float:
		return float64(v.Float()), nil
	case parquet.Int32:
		return float64(v.Int32()), nil
	case parquet.Int64:
		return float64(v.Int64()), nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return 0, fmt.Errorf("parse number: %w", err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported kind %s", v.Kind())
	}
}
