// Package catalog loads the listings file into an immutable catalog.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/domain"
	domcat "github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/listing"
)

// Column names expected in the listings file.
const (
	ColName      = "bike_name"
	ColBrand     = "brand"
	ColPower     = "power"
	ColKmsDriven = "kms_driven"
	ColPrice     = "price"
	ColCity      = "city"
)

var requiredColumns = []string{ColName, ColBrand, ColPower, ColKmsDriven, ColPrice, ColCity}

// Stats describes a completed load.
type Stats struct {
	Path    string
	Format  string
	Rows    int
	Loaded  int
	Skipped int
}

// rawRow is a parsed but not yet validated file row.
type rawRow struct {
	line      int
	name      string
	brand     string
	power     float64
	kmsDriven float64
	price     float64
	city      string
}

// Loader reads listings files.
type Loader struct {
	logger *zap.Logger
}

// New creates a Loader.
func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads the file at path and builds the catalog. The format is chosen by
// extension (.csv or .parquet). Rows that parse but fail listing validation are
// skipped and counted; structural problems abort the load.
func (l *Loader) Load(path string) (*domcat.Catalog, Stats, error) {
	stats := Stats{Path: path}

	var (
		rows []rawRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		stats.Format = "csv"
		rows, err = readCSV(path)
	case ".parquet":
		stats.Format = "parquet"
		rows, err = readParquet(path)
	default:
		return nil, stats, fmt.Errorf("catalog %s: %w", path, domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read catalog %s: %w", path, err)
	}

	stats.Rows = len(rows)
	listings := make([]listing.Listing, 0, len(rows))
	for _, r := range rows {
		item, vErr := listing.New(r.name, r.brand, r.power, r.kmsDriven, r.price, r.city)
		if vErr != nil {
			stats.Skipped++
			l.logger.Debug("Skipping catalog row",
				zap.String("path", path),
				zap.Int("line", r.line),
				zap.Error(vErr),
			)
			continue
		}
		listings = append(listings, item)
	}
	stats.Loaded = len(listings)

	c, err := domcat.New(listings)
	if err != nil {
		return nil, stats, fmt.Errorf("catalog %s: %w", path, err)
	}

	if stats.Skipped > 0 {
		l.logger.Warn("Catalog rows skipped",
			zap.String("path", path),
			zap.Int("skipped", stats.Skipped),
			zap.Int("loaded", stats.Loaded),
		)
	}
	return c, stats, nil
}

// columnIndex maps required column names to their positions.
type columnIndex map[string]int

func resolveColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(requiredColumns))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %s: %w",
			strings.Join(missing, ", "), domain.ErrCatalogMalformed)
	}
	return idx, nil
}

func malformed(line int, column string, err error) error {
	return errors.Join(
		fmt.Errorf("line %d column %s: %w", line, column, domain.ErrCatalogMalformed),
		err,
	)
}
