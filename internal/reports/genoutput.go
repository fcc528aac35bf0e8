package reports

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// genOutputDoc mirrors the GenOutputCapability document. This report
// lives in the older theIMO.com namespace and nests per-generator
// hourly outputs and capabilities in separate lists.
type genOutputDoc struct {
	Body struct {
		Date       string `xml:"Date"`
		Generators []struct {
			Name         string     `xml:"GeneratorName"`
			FuelType     string     `xml:"FuelType"`
			Outputs      []hourlyMW `xml:"Outputs>Output"`
			Capabilities []hourlyMW `xml:"Capabilities>Capability"`
		} `xml:"Generators>Generator"`
	} `xml:"IMODocBody"`
}

type hourlyMW struct {
	Hour     string `xml:"Hour"`
	EnergyMW string `xml:"EnergyMW"`
}

// ParseGeneratorOutput maps a GenOutputCapability document to one
// record per generator per hour that has either an output or a
// capability value.
func ParseGeneratorOutput(raw []byte) ([]Record, error) {
	var doc genOutputDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding generator output: %w", err)
	}

	date, err := civilDate(doc.Body.Date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", doc.Body.Date, err)
	}

	var records []Record
	for _, gen := range doc.Body.Generators {
		if gen.Name == "" {
			continue
		}
		outputs := mwByHour(gen.Outputs)
		capabilities := mwByHour(gen.Capabilities)

		fuel := gen.FuelType
		if fuel == "" {
			fuel = "OTHER"
		}

		for _, hour := range sortedHours(outputs, capabilities) {
			records = append(records, GeneratorOutput{
				Timestamp:    stamp(deliveryTime(date, hour, 1)),
				Generator:    gen.Name,
				FuelType:     fuel,
				OutputMW:     outputs[hour],
				CapabilityMW: capabilities[hour],
			})
		}
	}
	return records, nil
}

func mwByHour(entries []hourlyMW) map[int]float64 {
	out := make(map[int]float64, len(entries))
	for _, e := range entries {
		hour, err := strconv.Atoi(e.Hour)
		if err != nil {
			continue
		}
		mw, err := strconv.ParseFloat(e.EnergyMW, 64)
		if err != nil {
			continue
		}
		out[hour] = mw
	}
	return out
}

func sortedHours(maps ...map[int]float64) []int {
	seen := make(map[int]struct{})
	for _, m := range maps {
		for hour := range m {
			seen[hour] = struct{}{}
		}
	}
	hours := make([]int, 0, len(seen))
	for hour := range seen {
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	return hours
}
