package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// Field positions fixed by the EIEP 13A interchange format. Header names are
// never consulted; positions are the contract.
const (
	fieldRecordType    = 0
	fieldFlowDirection = 6
	fieldPeriodStart   = 9
	fieldReadStatus    = 11
	fieldEnergyVolume  = 12

	minRowFields = 13
)

const (
	readStatusFinal     = "RD"
	flowDirectionExport = "I"
	periodStartLayout   = "02/01/2006 15:04:05"
)

// Night rate applies from 21:00 up to (but excluding) 07:00.
const (
	nightStartHour = 21
	nightEndHour   = 7
)

// Converter turns a Meridian EIEP 13A consumption document into three
// cumulative hourly series: solar export, day-rate and night-rate consumption.
type Converter struct {
	loc *time.Location
}

// NewConverter loads the Pacific/Auckland civil calendar. The zone must come
// from the tz database: daylight saving shifts the absolute offset of the
// 21:00/07:00 rate boundary, so a fixed offset would misclassify readings.
func NewConverter() (*Converter, error) {
	loc, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		return nil, fmt.Errorf("loading Pacific/Auckland tzdata: %w", err)
	}
	return &Converter{loc: loc}, nil
}

// ConvertResult holds the three series of one conversion, in the fixed sink
// order solar, day, night, plus diagnostics about rows that were not trusted.
type ConvertResult struct {
	Solar ChannelSeries
	Day   ChannelSeries
	Night ChannelSeries

	// RowsSkipped counts rows dropped because a timestamp or quantity field
	// would not parse.
	RowsSkipped int
	// Truncated reports that a short row stopped consumption of the
	// remaining document.
	Truncated bool
}

// Series returns the three channel series in sink order.
func (r *ConvertResult) Series() []ChannelSeries {
	return []ChannelSeries{r.Solar, r.Day, r.Night}
}

// Convert processes the document line by line in source order. Running sums
// start at zero on every call; nothing carries over between conversions.
// Lines are split and parsed individually so a blank or unreadable line is
// seen as a short row, rather than being swallowed by csv.Reader.
func (c *Converter) Convert(document string) (*ConvertResult, error) {
	result := &ConvertResult{
		Solar: ChannelSeries{Channel: ChannelSolar},
		Day:   ChannelSeries{Channel: ChannelDay},
		Night: ChannelSeries{Channel: ChannelNight},
	}

	var solarSum, daySum, nightSum float64

	lines := strings.Split(document, "\n")
	// A trailing newline is end of document, not an empty record.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for i, text := range lines {
		line := i + 1
		text = strings.TrimSuffix(text, "\r")

		var row []string
		if text != "" {
			var err error
			row, err = parseRow(text)
			if err != nil {
				// Same suspect-tail policy as a short row: keep what was
				// accumulated, trust nothing after it.
				log.Printf("Row %d is unreadable (%v); ignoring the rest of the document", line, err)
				result.Truncated = true
				break
			}
		}

		if len(row) < minRowFields {
			// A short row means the tail of the document is suspect; stop
			// consuming but keep everything accumulated so far.
			log.Printf("Row %d has %d fields, expected %d; ignoring the rest of the document", line, len(row), minRowFields)
			result.Truncated = true
			break
		}

		if row[fieldRecordType] == "HDR" {
			continue
		}

		// Skip any estimated reads
		if row[fieldReadStatus] != readStatusFinal {
			continue
		}

		start, err := time.ParseInLocation(periodStartLayout, row[fieldPeriodStart], c.loc)
		if err != nil {
			log.Printf("Skipping %v", &ParseError{Line: line, Field: "read_period_start_date_time", Value: row[fieldPeriodStart], Err: err})
			result.RowsSkipped++
			continue
		}

		// Readings on the 59th minute are summarised daily totals, not
		// hourly intervals.
		if start.Minute() == 59 {
			continue
		}

		// Round down to the start of the containing hour; that hour is the
		// statistics bucket. Rows sharing a bucket stay as separate points.
		bucket := time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), 0, 0, 0, c.loc)

		quantity, err := strconv.ParseFloat(row[fieldEnergyVolume], 64)
		if err != nil {
			log.Printf("Skipping %v", &ParseError{Line: line, Field: "unit_quantity_active_energy_volume", Value: row[fieldEnergyVolume], Err: err})
			result.RowsSkipped++
			continue
		}

		switch {
		case row[fieldFlowDirection] == flowDirectionExport:
			solarSum += quantity
			result.Solar.Points = append(result.Solar.Points, SeriesPoint{Start: bucket, Sum: solarSum})
		case bucket.Hour() >= nightStartHour || bucket.Hour() < nightEndHour:
			nightSum += quantity
			result.Night.Points = append(result.Night.Points, SeriesPoint{Start: bucket, Sum: nightSum})
		default:
			daySum += quantity
			result.Day.Points = append(result.Day.Points, SeriesPoint{Start: bucket, Sum: daySum})
		}
	}

	return result, nil
}

// parseRow splits one document line into its fields. LazyQuotes keeps a stray
// quote inside a field from failing the row; the field keeps the quote and
// the usual per-field validation decides its fate.
func parseRow(text string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.Read()
}
