package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Column headers of the NYC open-data collision export. Header matching is
// case-insensitive because the portal has shipped both spellings.
const (
	colCrashDate    = "CRASH DATE"
	colCrashTime    = "CRASH TIME"
	colBorough      = "BOROUGH"
	colLatitude     = "LATITUDE"
	colLongitude    = "LONGITUDE"
	colPersonType   = "PERSON_TYPE"
	colPersonInjury = "PERSON_INJURY"
	colVehicleType  = "VEHICLE TYPE CODE 1"
	colFactor       = "CONTRIBUTING FACTOR VEHICLE 1"
)

// ReadResult reports what a CSV read did. Skipped counts rows dropped for an
// unparseable crash date; missing location or blank borough is not a skip.
type ReadResult struct {
	Rows    []Row
	Skipped int
}

// ReadCSV parses collision rows from the open-data CSV export. The first
// record must be the header; columns beyond the known set are ignored and
// known columns may appear in any order. Rows without a parseable crash date
// are counted and skipped, never fatal.
func ReadCSV(r io.Reader) (ReadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ReadResult{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colCrashDate]; !ok {
		return ReadResult{}, fmt.Errorf("read csv: missing column %q", colCrashDate)
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var result ReadResult
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ReadResult{}, fmt.Errorf("read csv record: %w", err)
		}

		date, err := parseCrashDate(field(record, colCrashDate))
		if err != nil {
			result.Skipped++
			continue
		}

		row := Row{
			CrashDate:          date,
			CrashTime:          normalizeTime(field(record, colCrashTime)),
			Borough:            strings.ToUpper(field(record, colBorough)),
			PersonType:         strings.ToUpper(field(record, colPersonType)),
			PersonInjury:       strings.ToUpper(field(record, colPersonInjury)),
			VehicleType:        field(record, colVehicleType),
			ContributingFactor: field(record, colFactor),
		}

		lat, latErr := strconv.ParseFloat(field(record, colLatitude), 64)
		lon, lonErr := strconv.ParseFloat(field(record, colLongitude), 64)
		if latErr == nil && lonErr == nil && (lat != 0 || lon != 0) {
			row.Latitude, row.Longitude, row.HasLocation = lat, lon, true
		}

		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

var dateLayouts = []string{"01/02/2006", "2006-01-02"}

func parseCrashDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty crash date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable crash date %q", s)
}

// normalizeTime reduces a crash time to "HH:MM", or "" when unparseable.
// The export writes times like "9:35" and "14:05:00".
func normalizeTime(s string) string {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return ""
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return ""
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// Hour returns the crash hour [0, 23], or -1 when the time is unknown.
func (r Row) Hour() int {
	if len(r.CrashTime) < 2 {
		return -1
	}
	hour, err := strconv.Atoi(r.CrashTime[:2])
	if err != nil {
		return -1
	}
	return hour
}
