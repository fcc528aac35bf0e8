package reports

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// daOntarioDoc mirrors the DAHourlyOntarioZonalPrice document. Despite
// its name the report carries a single province-wide price per hour.
type daOntarioDoc struct {
	Body struct {
		DeliveryDate string `xml:"DeliveryDate"`
		Components   []struct {
			PricingHour string `xml:"PricingHour"`
			ZonalPrice  string `xml:"ZonalPrice"`
		} `xml:"HourlyPriceComponents"`
	} `xml:"DocBody"`
}

// parseDayAheadOntarioPrice builds the DAHourlyOntarioZonalPrice
// parser. Published daily around 13:30 source-local with next-day
// hourly prices.
func parseDayAheadOntarioPrice(now func() time.Time) ParseFunc {
	return func(raw []byte) ([]Record, error) {
		var doc daOntarioDoc
		if err := xml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding day-ahead ontario price: %w", err)
		}
		if doc.Body.DeliveryDate == "" {
			return nil, fmt.Errorf("day-ahead ontario price document has no delivery date")
		}

		ts := stamp(now())
		var records []Record
		for _, c := range doc.Body.Components {
			hour, err := strconv.Atoi(c.PricingHour)
			if err != nil {
				continue
			}
			price, err := strconv.ParseFloat(c.ZonalPrice, 64)
			if err != nil {
				continue
			}
			records = append(records, DayAheadOntarioPrice{
				Timestamp:    ts,
				DeliveryDate: doc.Body.DeliveryDate,
				DeliveryHour: hour,
				Zone:         "ONTARIO",
				ZonalPrice:   price,
			})
		}
		return records, nil
	}
}

// daZonalDoc mirrors the DAHourlyZonal document: per-zone day-ahead
// prices, with loss and congestion components alongside the zonal
// price proper.
type daZonalDoc struct {
	Body struct {
		DeliveryDate string `xml:"DeliveryDate"`
		Zones        []struct {
			ZoneName   string `xml:"ZoneName"`
			Components []struct {
				PriceComponent string `xml:"PriceComponent"`
				Hours          []struct {
					Hour string `xml:"Hour"`
					LMP  string `xml:"LMP"`
				} `xml:"DeliveryHour"`
			} `xml:"Components"`
		} `xml:"TransactionZones>TransactionZone"`
	} `xml:"DocBody"`
}

// parseDayAheadZonal builds the DAHourlyZonal parser. Only the
// "Zonal Price" component is published; loss and congestion components
// are skipped.
func parseDayAheadZonal(now func() time.Time) ParseFunc {
	return func(raw []byte) ([]Record, error) {
		var doc daZonalDoc
		if err := xml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding day-ahead zonal: %w", err)
		}
		if doc.Body.DeliveryDate == "" {
			return nil, fmt.Errorf("day-ahead zonal document has no delivery date")
		}

		ts := stamp(now())
		var records []Record
		for _, zone := range doc.Body.Zones {
			if zone.ZoneName == "" {
				continue
			}
			name := strings.ReplaceAll(zone.ZoneName, ":HUB", "")

			for _, comp := range zone.Components {
				if comp.PriceComponent != "Zonal Price" {
					continue
				}
				for _, h := range comp.Hours {
					hour, err := strconv.Atoi(h.Hour)
					if err != nil {
						continue
					}
					price, err := strconv.ParseFloat(h.LMP, 64)
					if err != nil {
						continue
					}
					records = append(records, DayAheadZonalPrice{
						Timestamp:    ts,
						DeliveryDate: doc.Body.DeliveryDate,
						DeliveryHour: hour,
						Zone:         name,
						ZonalPrice:   price,
					})
				}
			}
		}
		return records, nil
	}
}
