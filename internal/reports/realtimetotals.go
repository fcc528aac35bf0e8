package reports

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// realtimeTotalsDoc mirrors the RealtimeTotals document: one delivery
// hour of province-wide 5-minute energy totals.
type realtimeTotalsDoc struct {
	Body struct {
		DeliveryDate string `xml:"DeliveryDate"`
		DeliveryHour string `xml:"DeliveryHour"`
		Intervals    []struct {
			Interval string `xml:"Interval"`
			MQ       []struct {
				MarketQuantity string `xml:"MarketQuantity"`
				EnergyMW       string `xml:"EnergyMW"`
			} `xml:"MQ"`
		} `xml:"Energies>IntervalEnergy"`
	} `xml:"DocBody"`
}

// ParseRealtimeTotals maps a RealtimeTotals document to records. The
// report fans out to two datasets: ONTARIO DEMAND rows become zonal
// demand records and Total Energy rows become fuel-mix records under
// the synthetic REALTIME_TOTAL fuel type.
func ParseRealtimeTotals(raw []byte) ([]Record, error) {
	var doc realtimeTotalsDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding realtime totals: %w", err)
	}

	date, err := civilDate(doc.Body.DeliveryDate)
	if err != nil {
		return nil, fmt.Errorf("bad delivery date %q: %w", doc.Body.DeliveryDate, err)
	}
	hour, err := strconv.Atoi(doc.Body.DeliveryHour)
	if err != nil {
		return nil, fmt.Errorf("bad delivery hour %q: %w", doc.Body.DeliveryHour, err)
	}

	var records []Record
	for _, ie := range doc.Body.Intervals {
		interval, err := strconv.Atoi(ie.Interval)
		if err != nil {
			continue
		}
		ts := stamp(deliveryTime(date, hour, interval))

		for _, mq := range ie.MQ {
			mw, err := strconv.ParseFloat(mq.EnergyMW, 64)
			if err != nil {
				continue
			}
			switch mq.MarketQuantity {
			case "ONTARIO DEMAND":
				records = append(records, ZonalDemand{
					Timestamp: ts,
					Zone:      "ONTARIO",
					DemandMW:  mw,
				})
			case "Total Energy":
				records = append(records, FuelMix{
					Timestamp: ts,
					FuelType:  "REALTIME_TOTAL",
					OutputMW:  mw,
				})
			}
		}
	}
	return records, nil
}
