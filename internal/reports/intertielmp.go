package reports

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// intertieZoneGroup maps an individual intertie pricing location to its
// flow zone group (QUEBEC, NEW-YORK, MICHIGAN, MINNESOTA, MANITOBA).
// Unrecognized locations keep their cleaned name.
func intertieZoneGroup(name string) string {
	clean := strings.ReplaceAll(name, ":LMP", "")
	if strings.HasPrefix(clean, "PQ.") || strings.Contains(clean, "_PQ") {
		return "QUEBEC"
	}
	suffix := ""
	if i := strings.LastIndex(clean, "_"); i >= 0 {
		suffix = clean[i+1:]
	}
	switch suffix {
	case "NYSI":
		return "NEW-YORK"
	case "MISI":
		return "MICHIGAN"
	case "MNSI":
		return "MINNESOTA"
	case "MBSK", "MBSI":
		return "MANITOBA"
	}
	return clean
}

// rtIntertieLMPDoc mirrors the RealTimeIntertieLMP document: one
// delivery hour of 5-minute LMPs per intertie pricing location, with
// several price components of which only "Intertie LMP" is wanted.
type rtIntertieLMPDoc struct {
	Body struct {
		DeliveryDate string `xml:"DeliveryDate"`
		DeliveryHour string `xml:"DeliveryHour"`
		Prices       []struct {
			Name       string `xml:"IntertiePLName"`
			Components []struct {
				LMPComponent string `xml:"LMPComponent"`
				Intervals    []struct {
					Interval string `xml:"Interval"`
					LMP      string `xml:"LMP"`
				} `xml:"IntervalLMP"`
			} `xml:"Components"`
		} `xml:"IntertieLMPrice"`
	} `xml:"DocBody"`
}

// ParseIntertieLMP maps a RealTimeIntertieLMP document to intertie LMP
// records, keeping only the "Intertie LMP" component.
func ParseIntertieLMP(raw []byte) ([]Record, error) {
	var doc rtIntertieLMPDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding intertie lmp: %w", err)
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
	for _, price := range doc.Body.Prices {
		if price.Name == "" {
			continue
		}
		zone := intertieZoneGroup(price.Name)

		for _, comp := range price.Components {
			if comp.LMPComponent != "Intertie LMP" {
				continue
			}
			for _, iv := range comp.Intervals {
				interval, err := strconv.Atoi(iv.Interval)
				if err != nil {
					continue
				}
				lmp, err := strconv.ParseFloat(iv.LMP, 64)
				if err != nil {
					continue
				}
				records = append(records, IntertieLMP{
					Timestamp:    stamp(deliveryTime(date, hour, interval)),
					IntertieZone: zone,
					LMP:          lmp,
				})
			}
		}
	}
	return records, nil
}

// daIntertieLMPDoc mirrors the DAHourlyIntertieLMP document: 24
// delivery hours of day-ahead LMPs per intertie pricing location.
type daIntertieLMPDoc struct {
	Header struct {
		CreatedAt string `xml:"CreatedAt"`
	} `xml:"DocHeader"`
	Body struct {
		DeliveryDate string `xml:"DeliveryDate"`
		Prices       []struct {
			Name       string `xml:"IntertiePLName"`
			Components []struct {
				LMPComponent string `xml:"LMPComponent"`
				Hours        []struct {
					DeliveryHour string `xml:"DeliveryHour"`
					LMP          string `xml:"LMP"`
				} `xml:"HourlyLMP"`
			} `xml:"Components"`
		} `xml:"IntertieLMPrice"`
	} `xml:"DocBody"`
}

// ParseDayAheadIntertieLMP maps a DAHourlyIntertieLMP document to
// day-ahead intertie LMP records. The record timestamp is the report's
// creation time from the document header.
func ParseDayAheadIntertieLMP(raw []byte) ([]Record, error) {
	var doc daIntertieLMPDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding day-ahead intertie lmp: %w", err)
	}
	if doc.Body.DeliveryDate == "" {
		return nil, fmt.Errorf("day-ahead intertie lmp document has no delivery date")
	}

	ts := doc.Header.CreatedAt
	if created, err := time.Parse(time.RFC3339, doc.Header.CreatedAt); err == nil {
		ts = stamp(created)
	} else if created, err := time.Parse(stampLayout, doc.Header.CreatedAt); err == nil {
		ts = stamp(created)
	} else {
		ts = stamp(time.Now().UTC())
	}

	var records []Record
	for _, price := range doc.Body.Prices {
		if price.Name == "" {
			continue
		}
		zone := intertieZoneGroup(price.Name)

		for _, comp := range price.Components {
			if comp.LMPComponent != "Intertie LMP" {
				continue
			}
			for _, h := range comp.Hours {
				hour, err := strconv.Atoi(h.DeliveryHour)
				if err != nil {
					continue
				}
				lmp, err := strconv.ParseFloat(h.LMP, 64)
				if err != nil {
					continue
				}
				records = append(records, DayAheadIntertieLMP{
					Timestamp:    ts,
					DeliveryDate: doc.Body.DeliveryDate,
					DeliveryHour: hour,
					IntertieZone: zone,
					LMP:          lmp,
				})
			}
		}
	}
	return records, nil
}
