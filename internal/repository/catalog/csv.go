package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/bikeval/internal/domain"
)

func readCSV(path string) ([]rawRow, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]rawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrCatalogEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []rawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			return nil, malformed(line, "*", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		// Physical line of the record start; quoted fields may span lines.
		line, _ := cr.FieldPos(0)

		row, err := csvRow(line, rec, cols)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func csvRow(line int, rec []string, cols columnIndex) (rawRow, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	number := func(name string) (float64, error) {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return 0, malformed(line, name, err)
		}
		return v, nil
	}

	row := rawRow{
		line:  line,
		name:  field(ColName),
		brand: field(ColBrand),
		city:  field(ColCity),
	}
	var err error
	if row.power, err = number(ColPower); err != nil {
		return rawRow{}, err
	}
	if row.kmsDriven, err = number(ColKmsDriven); err != nil {
		return rawRow{}, err
	}
	if row.price, err = number(ColPrice); err != nil {
		return rawRow{}, err
	}
	return row, nil
}
