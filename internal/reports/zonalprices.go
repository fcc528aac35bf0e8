package reports

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// zonalPricesDoc mirrors the RealtimeZonalEnergyPrices document. The
// date and hour element names are upper-cased in this schema, unlike
// every other report in the ieso namespace.
type zonalPricesDoc struct {
	Body struct {
		DeliveryDate string `xml:"DELIVERYDATE"`
		DeliveryHour string `xml:"DELIVERYHOUR"`
		Zones        []struct {
			ZoneName  string `xml:"ZoneName"`
			Intervals []struct {
				Interval        string `xml:"Interval"`
				ZonalPrice      string `xml:"ZonalPrice"`
				EnergyLossPrice string `xml:"EnergyLossPrice"`
				EnergyCongPrice string `xml:"EnergyCongPrice"`
			} `xml:"IntervalPrice"`
		} `xml:"TransactionZones>TransactionZone"`
	} `xml:"DocBody"`
}

// ParseZonalPrices maps a RealtimeZonalEnergyPrices document to zonal
// price records. Zone names carry a :HUB suffix which is stripped to
// match the demand datasets' zone naming.
func ParseZonalPrices(raw []byte) ([]Record, error) {
	var doc zonalPricesDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding zonal prices: %w", err)
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
	for _, zone := range doc.Body.Zones {
		if zone.ZoneName == "" {
			continue
		}
		name := strings.ReplaceAll(zone.ZoneName, ":HUB", "")

		for _, ip := range zone.Intervals {
			// Intervals not yet published arrive as empty elements.
			if ip.Interval == "" || ip.ZonalPrice == "" {
				continue
			}
			interval, err := strconv.Atoi(ip.Interval)
			if err != nil {
				continue
			}
			price, err := strconv.ParseFloat(ip.ZonalPrice, 64)
			if err != nil {
				continue
			}
			records = append(records, ZonalPrice{
				Timestamp:       stamp(deliveryTime(date, hour, interval)),
				Zone:            name,
				Price:           price,
				EnergyLossPrice: floatOrZero(ip.EnergyLossPrice),
				CongestionPrice: floatOrZero(ip.EnergyCongPrice),
			})
		}
	}
	return records, nil
}

func floatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
