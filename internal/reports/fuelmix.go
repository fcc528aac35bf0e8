package reports

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// fuelMixDoc mirrors the GenOutputbyFuelHourly document: several days
// of hourly output totals per fuel type.
type fuelMixDoc struct {
	Days []struct {
		Day   string `xml:"Day"`
		Hours []struct {
			Hour   string `xml:"Hour"`
			Totals []struct {
				Fuel   string `xml:"Fuel"`
				Output string `xml:"EnergyValue>Output"`
			} `xml:"FuelTotal"`
		} `xml:"HourlyData"`
	} `xml:"DocBody>DailyData"`
}

// ParseFuelMix maps a GenOutputbyFuelHourly document to fuel-mix
// records.
func ParseFuelMix(raw []byte) ([]Record, error) {
	var doc fuelMixDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding fuel mix: %w", err)
	}

	var records []Record
	for _, day := range doc.Days {
		date, err := civilDate(day.Day)
		if err != nil {
			continue
		}
		for _, hourly := range day.Hours {
			hour, err := strconv.Atoi(hourly.Hour)
			if err != nil {
				continue
			}
			ts := stamp(deliveryTime(date, hour, 1))

			for _, total := range hourly.Totals {
				if total.Fuel == "" {
					continue
				}
				output, err := strconv.ParseFloat(total.Output, 64)
				if err != nil {
					continue
				}
				records = append(records, FuelMix{
					Timestamp: ts,
					FuelType:  total.Fuel,
					OutputMW:  output,
				})
			}
		}
	}
	return records, nil
}
