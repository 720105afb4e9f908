// Package market supplies the engine's candle input: file loading for the
// surrounding application plus series validation and normalization. The
// engine itself never does I/O; everything here runs before a simulation
// starts.
package market

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gridlab/engine"
)

var (
	ErrEmptySeries  = errors.New("market: candle series is empty")
	ErrUnordered    = errors.New("market: candle times must be strictly increasing")
	ErrMissingPrice = errors.New("market: candle price must be positive")
)

// Validate checks that the series is usable as engine input: non-empty,
// positive prices, strictly increasing times.
func Validate(candles []engine.Candle) error {
	if len(candles) == 0 {
		return ErrEmptySeries
	}
	for i, c := range candles {
		if c.Price <= 0 {
			return fmt.Errorf("%w (index %d)", ErrMissingPrice, i)
		}
		if i > 0 && c.Time <= candles[i-1].Time {
			return fmt.Errorf("%w (index %d: %d after %d)", ErrUnordered, i, c.Time, candles[i-1].Time)
		}
	}
	return nil
}

// Normalize fills in missing high/low values. Both default to the close
// price, in every mode: a synthetic band would invent intrabar range the
// input never asserted, while defaulting to close only loses fills that were
// never observable. Returns a copy, the input is not mutated.
func Normalize(candles []engine.Candle) []engine.Candle {
	out := make([]engine.Candle, len(candles))
	for i, c := range candles {
		if c.High == 0 {
			c.High = c.Price
		}
		if c.Low == 0 {
			c.Low = c.Price
		}
		out[i] = c
	}
	return out
}

// LoadJSON reads a candle series from a JSON array file.
func LoadJSON(path string) ([]engine.Candle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candle file: %w", err)
	}
	var candles []engine.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("parse candle file %s: %w", path, err)
	}
	return candles, nil
}

// LoadCSV reads a candle series from a CSV file with a
// time,timestamp,price,high,low header. High and low may be left empty.
func LoadCSV(path string) ([]engine.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candle file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV parses candle CSV from a reader. Exposed separately so API
// uploads and tests can skip the filesystem.
func ParseCSV(r io.Reader) ([]engine.Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"time", "price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv header missing %q column", required)
		}
	}

	var candles []engine.Candle
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		var c engine.Candle
		c.Time, err = strconv.ParseInt(field(record, col, "time"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad time: %w", line, err)
		}
		c.Timestamp = field(record, col, "timestamp")
		c.Price, err = parseFloat(field(record, col, "price"))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad price: %w", line, err)
		}
		if c.High, err = parseOptionalFloat(field(record, col, "high")); err != nil {
			return nil, fmt.Errorf("csv line %d: bad high: %w", line, err)
		}
		if c.Low, err = parseOptionalFloat(field(record, col, "low")); err != nil {
			return nil, fmt.Errorf("csv line %d: bad low: %w", line, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
