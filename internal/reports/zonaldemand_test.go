package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zonalDemandSample = `\\Realtime Demand Report in Ontario Zones
\\Created at 2026/01/26 12:12:00
\\For 2026/01/26
Date,Hour,Interval,Total Ontario,Northwest,Northeast,Ottawa,East,Toronto,Essa,Bruce,Southwest,Niagara,West
2026-01-26,13,1,15000.5,550.1,1100.2,1050.0,900.3,5500.7,850.4,120.0,2900.8,400.5,1628.5
2026-01-26,13,2,15100.0,552.0,1102.0,1052.0,902.0,5510.0,,121.0,2905.0,401.0,1630.0
garbage,13,3,1,2,3,4,5,6,7,8,9,10,11
`

func TestParseZonalDemand(t *testing.T) {
	records, err := ParseZonalDemand([]byte(zonalDemandSample))
	require.NoError(t, err)
	require.Len(t, records, 20, "two valid rows of ten zones each")

	first := records[0].(ZonalDemand)
	assert.Equal(t, "2026-01-26T12:00:00", first.Timestamp)
	assert.Equal(t, "NORTHWEST", first.Zone)
	assert.Equal(t, 550.1, first.DemandMW)

	last := records[9].(ZonalDemand)
	assert.Equal(t, "WEST", last.Zone)
	assert.Equal(t, 1628.5, last.DemandMW)

	// Second row, Essa cell is empty.
	essa := records[15].(ZonalDemand)
	assert.Equal(t, "ESSA", essa.Zone)
	assert.Equal(t, "2026-01-26T12:05:00", essa.Timestamp)
	assert.Zero(t, essa.DemandMW, "blank cells read as zero demand")
}

func TestParseZonalDemandHeaderOnly(t *testing.T) {
	records, err := ParseZonalDemand([]byte("\\a\n\\b\n\\c\nDate,Hour\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseZonalDemandShortRows(t *testing.T) {
	records, err := ParseZonalDemand([]byte("\\a\n\\b\n\\c\nheader\n2026-01-26,13,1\n"))
	require.NoError(t, err)
	assert.Empty(t, records, "rows without every zone column are dropped")
}
