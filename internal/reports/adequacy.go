package reports

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// adequacyDoc mirrors the Adequacy3 document: hourly demand forecasts
// and scheduled energy for one delivery day.
type adequacyDoc struct {
	Body struct {
		DeliveryDate string `xml:"DeliveryDate"`
		Demands      []struct {
			DeliveryHour string `xml:"DeliveryHour"`
			EnergyMW     string `xml:"EnergyMW"`
		} `xml:"ForecastOntDemand>Demand"`
		Energies []struct {
			DeliveryHour string `xml:"DeliveryHour"`
			EnergyMWhr   string `xml:"EnergyMWhr"`
		} `xml:"Energies>Energy"`
	} `xml:"DocBody"`
}

// parseAdequacy builds the Adequacy3 parser. Records carry the fetch
// instant as their timestamp; the forecast target is the document's
// delivery date and hour, so the clock is part of the parser's
// construction rather than its input.
func parseAdequacy(now func() time.Time) ParseFunc {
	return func(raw []byte) ([]Record, error) {
		var doc adequacyDoc
		if err := xml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding adequacy: %w", err)
		}
		if doc.Body.DeliveryDate == "" {
			return nil, fmt.Errorf("adequacy document has no delivery date")
		}

		demand := make(map[int]float64)
		for _, d := range doc.Body.Demands {
			if hour, mw, ok := hourValue(d.DeliveryHour, d.EnergyMW); ok {
				demand[hour] = mw
			}
		}
		supply := make(map[int]float64)
		for _, e := range doc.Body.Energies {
			if hour, mw, ok := hourValue(e.DeliveryHour, e.EnergyMWhr); ok {
				supply[hour] = mw
			}
		}

		ts := stamp(now())
		var records []Record
		for _, hour := range sortedHours(demand, supply) {
			records = append(records, Adequacy{
				Timestamp:        ts,
				DeliveryDate:     doc.Body.DeliveryDate,
				DeliveryHour:     hour,
				ForecastDemandMW: demand[hour],
				ForecastSupplyMW: supply[hour],
			})
		}
		return records, nil
	}
}

func hourValue(hourStr, valueStr string) (int, float64, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, 0, false
	}
	v, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, 0, false
	}
	return hour, v, true
}
