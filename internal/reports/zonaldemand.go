package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// zonalDemandColumns gives each zone's column index in the
// RealtimeDemandZonal CSV (date, hour, interval, total, then zones).
// Slice order keeps record order stable per row.
var zonalDemandColumns = []struct {
	zone string
	col  int
}{
	{"NORTHWEST", 4},
	{"NORTHEAST", 5},
	{"OTTAWA", 6},
	{"EAST", 7},
	{"TORONTO", 8},
	{"ESSA", 9},
	{"BRUCE", 10},
	{"SOUTHWEST", 11},
	{"NIAGARA", 12},
	{"WEST", 13},
}

// csvHeaderRows is the number of metadata rows before the data in the
// RealtimeDemandZonal report.
const csvHeaderRows = 4

// ParseZonalDemand maps the RealtimeDemandZonal CSV report to one
// demand record per zone per 5-minute interval. Rows that fail to
// parse are dropped.
func ParseZonalDemand(raw []byte) ([]Record, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decoding zonal demand csv: %w", err)
	}
	if len(rows) <= csvHeaderRows {
		return nil, nil
	}

	var records []Record
	for _, row := range rows[csvHeaderRows:] {
		if len(row) < 14 {
			continue
		}

		date, err := civilDate(strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		hour, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		interval, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			continue
		}
		ts := stamp(deliveryTime(date, hour, interval))

		for _, zc := range zonalDemandColumns {
			cell := strings.TrimSpace(row[zc.col])
			demand := 0.0
			if cell != "" {
				demand, err = strconv.ParseFloat(cell, 64)
				if err != nil {
					continue
				}
			}
			records = append(records, ZonalDemand{
				Timestamp: ts,
				Zone:      zc.zone,
				DemandMW:  demand,
			})
		}
	}
	return records, nil
}
