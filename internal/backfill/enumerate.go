package backfill

import (
	"time"

	"github.com/terminal-bench/gridfeed/internal/reports"
)

// ArchiveID identifies one dated archive document to fetch. Hour uses
// the source's 1-24 numbering and is zero for daily families.
type ArchiveID struct {
	Family reports.Family
	Date   time.Time // midnight, source-local civil date
	Hour   int
}

// Path is the document locator relative to the reports root.
func (id ArchiveID) Path() string {
	return id.Family.ArchivePath(id.Date, id.Hour)
}

// Enumerate lists the archive identifiers to attempt for one family:
// every day from windowDays before today through today, oldest first.
// Hourly families emit one identifier per delivery hour, capped on
// today at the hour currently being delivered so that a not-yet-
// published future hour is never requested. now must already be in the
// source's local timezone; the civil date boundary moves with it.
func Enumerate(f reports.Family, windowDays int, now time.Time) []ArchiveID {
	if windowDays <= 0 || f.Granularity == reports.Snapshot {
		return nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// The delivery hour covering now, in 1-24 numbering.
	currentHour := now.Hour() + 1

	var ids []ArchiveID
	for offset := -windowDays; offset <= 0; offset++ {
		day := today.AddDate(0, 0, offset)

		if f.Granularity == reports.Daily {
			ids = append(ids, ArchiveID{Family: f, Date: day})
			continue
		}

		lastHour := 24
		if offset == 0 {
			lastHour = currentHour
		}
		for hour := 1; hour <= lastHour; hour++ {
			ids = append(ids, ArchiveID{Family: f, Date: day, Hour: hour})
		}
	}
	return ids
}
