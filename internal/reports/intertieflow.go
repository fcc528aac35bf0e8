package reports

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// intertieFlowDoc mirrors the IntertieScheduleFlow document (theIMO.com
// namespace): hourly import/export schedules plus 5-minute actual flows
// per intertie zone.
type intertieFlowDoc struct {
	Body struct {
		Date  string `xml:"Date"`
		Zones []struct {
			Name      string `xml:"IntertieZoneName"`
			Schedules []struct {
				Hour   string `xml:"Hour"`
				Import string `xml:"Import"`
				Export string `xml:"Export"`
			} `xml:"Schedules>Schedule"`
			Actuals []struct {
				Hour     string `xml:"Hour"`
				Interval string `xml:"Interval"`
				Flow     string `xml:"Flow"`
			} `xml:"Actuals>Actual"`
		} `xml:"IntertieZones>IntertieZone"`
	} `xml:"IMODocBody"`
}

// ParseIntertieFlow maps an IntertieScheduleFlow document to one record
// per 5-minute actual, paired with that hour's net schedule
// (import minus export, positive = import into Ontario).
func ParseIntertieFlow(raw []byte) ([]Record, error) {
	var doc intertieFlowDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding intertie flow: %w", err)
	}

	date, err := civilDate(doc.Body.Date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", doc.Body.Date, err)
	}

	var records []Record
	for _, zone := range doc.Body.Zones {
		if zone.Name == "" {
			continue
		}

		netByHour := make(map[int]float64)
		for _, s := range zone.Schedules {
			hour, err := strconv.Atoi(s.Hour)
			if err != nil {
				continue
			}
			netByHour[hour] = floatOrZero(s.Import) - floatOrZero(s.Export)
		}

		type slot struct{ hour, interval int }
		actuals := make(map[slot]float64)
		for _, a := range zone.Actuals {
			hour, err1 := strconv.Atoi(a.Hour)
			interval, err2 := strconv.Atoi(a.Interval)
			flow, err3 := strconv.ParseFloat(a.Flow, 64)
			if err1 != nil || err2 != nil || err3 != nil {
				continue
			}
			actuals[slot{hour, interval}] = flow
		}

		slots := make([]slot, 0, len(actuals))
		for s := range actuals {
			slots = append(slots, s)
		}
		sort.Slice(slots, func(i, j int) bool {
			if slots[i].hour != slots[j].hour {
				return slots[i].hour < slots[j].hour
			}
			return slots[i].interval < slots[j].interval
		})

		for _, s := range slots {
			records = append(records, IntertieFlow{
				Timestamp:   stamp(deliveryTime(date, s.hour, s.interval)),
				Intertie:    zone.Name,
				ScheduledMW: netByHour[s.hour],
				ActualMW:    actuals[s],
			})
		}
	}
	return records, nil
}
