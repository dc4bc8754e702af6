package holidays

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Column layout of kazakhstan_holidays_2025.csv.
const (
	colCode = iota
	colName
	colDate
	colMultiplier
	colPeakStart
	colPeakDuration
	colFlowers
	colDescription
	columnCount
)

const dateLayout = "2006-01-02"

// LoadCSV reads a holiday calendar export. The first row is a header and is
// skipped. The year in the date column is dropped; holidays recur annually.
func LoadCSV(path string) ([]Holiday, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCalendar, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = columnCount

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCalendar, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: no holiday rows in %s", ErrLoadCalendar, path)
	}

	out := make([]Holiday, 0, len(rows)-1)
	for i, row := range rows[1:] {
		h, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrLoadCalendar, i+2, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func parseRow(row []string) (Holiday, error) {
	date, err := time.Parse(dateLayout, row[colDate])
	if err != nil {
		return Holiday{}, fmt.Errorf("bad date %q: %w", row[colDate], err)
	}
	mult, err := strconv.ParseFloat(row[colMultiplier], 64)
	if err != nil {
		return Holiday{}, fmt.Errorf("bad multiplier %q: %w", row[colMultiplier], err)
	}
	peakStart, err := strconv.Atoi(row[colPeakStart])
	if err != nil {
		return Holiday{}, fmt.Errorf("bad peak start %q: %w", row[colPeakStart], err)
	}
	peakDur, err := strconv.Atoi(row[colPeakDuration])
	if err != nil {
		return Holiday{}, fmt.Errorf("bad peak duration %q: %w", row[colPeakDuration], err)
	}
	if row[colCode] == "" {
		return Holiday{}, fmt.Errorf("empty holiday code")
	}

	return Holiday{
		Code:                row[colCode],
		Name:                row[colName],
		Month:               date.Month(),
		Day:                 date.Day(),
		Multiplier:          mult,
		PeakStartDaysBefore: peakStart,
		PeakDurationDays:    peakDur,
		PrimaryFlowers:      row[colFlowers],
		Description:         row[colDescription],
	}, nil
}
