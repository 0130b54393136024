package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"backtester/market"
)

// CSVProvider reads daily bars from <dir>/<SYMBOL>.csv files with columns
// date,open,high,low,close,volume. A header row is optional. Dates are
// either YYYY-MM-DD or RFC3339.
type CSVProvider struct {
	dir string
}

func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

func (p *CSVProvider) Bars(_ context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	path := filepath.Join(p.dir, symbol+".csv")

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := readBars(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var out []market.Bar
	for _, b := range bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	if err := market.Validate(out); err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	return out, nil
}

func readBars(r io.Reader) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []market.Bar
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		line++

		// Skip an optional header row.
		if line == 1 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		if len(row) == 0 {
			continue
		}

		b, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		bars = append(bars, b)
	}
}

func parseRow(row []string) (market.Bar, error) {
	if len(row) < 5 {
		return market.Bar{}, fmt.Errorf("need at least 5 cols date,open,high,low,close[,volume]: %v", row)
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse("2006-01-02", ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad date %q", ts)
		}
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad number %q: %w", row[i+1], err)
		}
		vals[i] = v
	}

	volume := 0.0
	if len(row) > 5 {
		volume, err = strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad volume %q: %w", row[5], err)
		}
	}

	return market.Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: volume,
	}, nil
}
