package reports

import (
	"fmt"
	"time"
)

// Granularity describes how the source archives a report family.
type Granularity int

const (
	// Snapshot families publish a rolling current document only; there
	// is nothing to backfill.
	Snapshot Granularity = iota
	// Hourly families keep one dated archive document per delivery hour.
	Hourly
	// Daily families keep one dated document per delivery day.
	Daily
)

// ParseFunc maps one raw report document to records. Implementations
// are pure: no I/O, and malformed rows are dropped rather than
// propagated. A returned error means the document as a whole was
// unusable; callers treat it as zero records.
type ParseFunc func(raw []byte) ([]Record, error)

// Family is one distinct report schema published by the source. The
// fetcher and orchestrator only ever see families through this
// description; all schema knowledge lives in the Parse function.
type Family struct {
	Name        string
	Dir         string // URL path segment under the reports root
	Prefix      string // document name prefix, e.g. "PUB_RealtimeTotals"
	Ext         string
	Granularity Granularity
	Parse       ParseFunc

	// Live overrides the documents fetched on a polling tick. Nil
	// means the single current document at CurrentPath.
	Live func(now time.Time) []string
}

// CurrentPath is the stable locator of the family's current document.
func (f Family) CurrentPath() string {
	return fmt.Sprintf("/%s/%s%s", f.Dir, f.Prefix, f.Ext)
}

// ArchivePath is the locator of one dated archive document. Hour uses
// the source's 1-24 numbering and is ignored for daily families.
func (f Family) ArchivePath(date time.Time, hour int) string {
	if f.Granularity == Daily {
		return fmt.Sprintf("/%s/%s_%s%s", f.Dir, f.Prefix, date.Format("20060102"), f.Ext)
	}
	return fmt.Sprintf("/%s/%s_%s%02d%s", f.Dir, f.Prefix, date.Format("20060102"), hour, f.Ext)
}

// LivePaths returns the document paths to fetch on one polling tick.
func (f Family) LivePaths(now time.Time) []string {
	if f.Live != nil {
		return f.Live(now)
	}
	return []string{f.CurrentPath()}
}

// Registry returns every report family the producer handles. now is
// the source-local clock, needed by families whose published records
// carry a fetch timestamp or whose dated documents depend on the
// current day.
func Registry(now func() time.Time) []Family {
	adequacy := adequacyFamily(now)
	return []Family{
		{
			Name:        "realtime-totals",
			Dir:         "RealtimeTotals",
			Prefix:      "PUB_RealtimeTotals",
			Ext:         ".xml",
			Granularity: Hourly,
			Parse:       ParseRealtimeTotals,
		},
		{
			Name:        "zonal-prices",
			Dir:         "RealtimeZonalEnergyPrices",
			Prefix:      "PUB_RealtimeZonalEnergyPrices",
			Ext:         ".xml",
			Granularity: Hourly,
			Parse:       ParseZonalPrices,
		},
		adequacy,
		{
			Name:        "generator-output",
			Dir:         "GenOutputCapability",
			Prefix:      "PUB_GenOutputCapability",
			Ext:         ".xml",
			Granularity: Snapshot,
			Parse:       ParseGeneratorOutput,
		},
		{
			Name:        "fuel-mix",
			Dir:         "GenOutputbyFuelHourly",
			Prefix:      "PUB_GenOutputbyFuelHourly",
			Ext:         ".xml",
			Granularity: Snapshot,
			Parse:       ParseFuelMix,
		},
		{
			Name:        "intertie-flow",
			Dir:         "IntertieScheduleFlow",
			Prefix:      "PUB_IntertieScheduleFlow",
			Ext:         ".xml",
			Granularity: Snapshot,
			Parse:       ParseIntertieFlow,
		},
		{
			Name:        "zonal-demand",
			Dir:         "RealtimeDemandZonal",
			Prefix:      "PUB_RealtimeDemandZonal",
			Ext:         ".csv",
			Granularity: Snapshot,
			Parse:       ParseZonalDemand,
		},
		{
			Name:        "da-ozp",
			Dir:         "DAHourlyOntarioZonalPrice",
			Prefix:      "PUB_DAHourlyOntarioZonalPrice",
			Ext:         ".xml",
			Granularity: Snapshot,
			Parse:       parseDayAheadOntarioPrice(now),
		},
		{
			Name:        "da-zonal",
			Dir:         "DAHourlyZonal",
			Prefix:      "PUB_DAHourlyZonal",
			Ext:         ".xml",
			Granularity: Snapshot,
			Parse:       parseDayAheadZonal(now),
		},
		{
			Name:        "intertie-lmp",
			Dir:         "RealTimeIntertieLMP",
			Prefix:      "PUB_RealTimeIntertieLMP",
			Ext:         ".xml",
			Granularity: Snapshot,
			Parse:       ParseIntertieLMP,
		},
		{
			Name:        "da-intertie-lmp",
			Dir:         "DAHourlyIntertieLMP",
			Prefix:      "PUB_DAHourlyIntertieLMP",
			Ext:         ".xml",
			Granularity: Snapshot,
			Parse:       ParseDayAheadIntertieLMP,
		},
	}
}

// Archived filters a registry down to the families with dated archive
// documents, i.e. the ones the backfill orchestrator can reconcile.
func Archived(families []Family) []Family {
	var out []Family
	for _, f := range families {
		if f.Granularity != Snapshot {
			out = append(out, f)
		}
	}
	return out
}

// adequacyFamily is daily-archived and, on a live tick, fetches
// today's dated report plus tomorrow's once the day-ahead market has
// run (published after 13:00 source-local time).
func adequacyFamily(now func() time.Time) Family {
	f := Family{
		Name:        "adequacy",
		Dir:         "Adequacy3",
		Prefix:      "PUB_Adequacy3",
		Ext:         ".xml",
		Granularity: Daily,
		Parse:       parseAdequacy(now),
	}
	f.Live = func(t time.Time) []string {
		paths := []string{f.ArchivePath(t, 0)}
		if t.Hour() >= 13 {
			paths = append(paths, f.ArchivePath(t.AddDate(0, 0, 1), 0))
		}
		return paths
	}
	return f
}

// deliveryTime reconstructs the delivery instant from a civil date,
// the source's 1-24 delivery hour, and a 1-12 five-minute interval.
func deliveryTime(date time.Time, hour, interval int) time.Time {
	return date.Add(time.Duration(hour-1)*time.Hour + time.Duration(interval-1)*5*time.Minute)
}

// civilDate parses the YYYY-MM-DD delivery date used throughout the
// source's documents.
func civilDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
