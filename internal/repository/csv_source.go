package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"IndexScope/internal/domain/models"
	domrepo "IndexScope/internal/domain/repository"
	"IndexScope/pkg/util"
)

// ErrNoUsableRows is returned when a CSV has a valid header but no complete row.
var ErrNoUsableRows = errors.New("csv: no usable rows")

// RequiredColumns are the header names a price CSV must carry. Extra columns are ignored.
var RequiredColumns = []string{"Index", "Date", "Open", "High", "Low", "Close", "Adj Close"}

// priceRecord is one raw CSV line. Cells stay strings so blanks and "null"
// can be told apart from parse failures.
type priceRecord struct {
	Index    string `csv:"Index"`
	Date     string `csv:"Date"`
	Open     string `csv:"Open"`
	High     string `csv:"High"`
	Low      string `csv:"Low"`
	Close    string `csv:"Close"`
	AdjClose string `csv:"Adj Close"`
}

func (r priceRecord) toRow() (models.PriceRow, bool) {
	sym := strings.TrimSpace(r.Index)
	if sym == "" || strings.EqualFold(sym, "null") {
		return models.PriceRow{}, false
	}
	day, ok := util.ParseDay(r.Date)
	if !ok {
		return models.PriceRow{}, false
	}
	row := models.PriceRow{Symbol: sym, Date: util.FormatDay(day)}
	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{r.Open, &row.Open},
		{r.High, &row.High},
		{r.Low, &row.Low},
		{r.Close, &row.Close},
		{r.AdjClose, &row.AdjClose},
	} {
		v, ok := util.ParseFloat(f.raw)
		if !ok {
			return models.PriceRow{}, false
		}
		*f.dst = v
	}
	return row, true
}

// CSVSource reads price rows from a CSV file on disk.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string { return "csv:" + s.path }

func (s *CSVSource) Load(ctx context.Context) ([]models.PriceRow, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, 0, fmt.Errorf("open price csv: %w", err)
	}
	defer f.Close()

	rows, dropped, err := DecodePrices(f)
	if err != nil {
		return nil, dropped, fmt.Errorf("%s: %w", s.path, err)
	}
	return rows, dropped, nil
}

// DecodePrices parses a price CSV. Rows with a missing, null, NaN or unparseable
// field are dropped and counted. A missing required column or zero usable rows is an error.
func DecodePrices(in io.Reader) ([]models.PriceRow, int, error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	records, err := r.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("read csv: empty input")
	}

	header := normalizeHeader(records[0])
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, 0, fmt.Errorf("csv header is missing columns: %s", strings.Join(missing, ", "))
	}
	records[0] = header

	// short lines would make gocsv index past the end of the record
	width := len(header)
	for i := 1; i < len(records); i++ {
		for len(records[i]) < width {
			records[i] = append(records[i], "")
		}
	}

	var raw []priceRecord
	if err := gocsv.UnmarshalCSV(&recordsReader{records: records}, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode csv: %w", err)
	}

	rows := make([]models.PriceRow, 0, len(raw))
	dropped := 0
	for _, rec := range raw {
		row, ok := rec.toRow()
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, dropped, ErrNoUsableRows
	}
	return rows, dropped, nil
}

func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	for i, name := range h {
		out[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	return out
}

func missingColumns(header []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// recordsReader serves already-read records to gocsv.
type recordsReader struct {
	records [][]string
	pos     int
}

func (r *recordsReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordsReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}

var _ domrepo.PriceSource = (*CSVSource)(nil)
