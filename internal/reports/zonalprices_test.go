package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zonalPricesSample = `<?xml version="1.0" encoding="UTF-8"?>
<IMODocument xmlns="http://www.ieso.ca/schema">
  <DocBody>
    <DELIVERYDATE>2026-01-26</DELIVERYDATE>
    <DELIVERYHOUR>13</DELIVERYHOUR>
    <TransactionZones>
      <TransactionZone>
        <ZoneName>RICHVIEW:HUB</ZoneName>
        <IntervalPrice>
          <Interval>3</Interval>
          <ZonalPrice>41.27</ZonalPrice>
          <EnergyLossPrice>1.05</EnergyLossPrice>
          <EnergyCongPrice>-0.32</EnergyCongPrice>
        </IntervalPrice>
        <IntervalPrice>
          <Interval></Interval>
          <ZonalPrice></ZonalPrice>
          <EnergyLossPrice></EnergyLossPrice>
          <EnergyCongPrice></EnergyCongPrice>
        </IntervalPrice>
      </TransactionZone>
      <TransactionZone>
        <ZoneName>OTTAWA</ZoneName>
        <IntervalPrice>
          <Interval>1</Interval>
          <ZonalPrice>39.5</ZonalPrice>
          <EnergyLossPrice></EnergyLossPrice>
          <EnergyCongPrice></EnergyCongPrice>
        </IntervalPrice>
      </TransactionZone>
    </TransactionZones>
  </DocBody>
</IMODocument>`

func TestParseZonalPrices(t *testing.T) {
	records, err := ParseZonalPrices([]byte(zonalPricesSample))
	require.NoError(t, err)
	require.Len(t, records, 2, "unpublished intervals are skipped")

	first := records[0].(ZonalPrice)
	assert.Equal(t, "2026-01-26T12:10:00", first.Timestamp, "hour 13 interval 3")
	assert.Equal(t, "RICHVIEW", first.Zone, "the :HUB suffix is stripped")
	assert.Equal(t, 41.27, first.Price)
	assert.Equal(t, 1.05, first.EnergyLossPrice)
	assert.Equal(t, -0.32, first.CongestionPrice)
	assert.Equal(t, TopicZonalPrices, first.Topic())

	second := records[1].(ZonalPrice)
	assert.Equal(t, "2026-01-26T12:00:00", second.Timestamp)
	assert.Equal(t, "OTTAWA", second.Zone)
	assert.Zero(t, second.EnergyLossPrice, "missing price components default to zero")
	assert.Zero(t, second.CongestionPrice)
}

func TestParseZonalPricesBadDocument(t *testing.T) {
	_, err := ParseZonalPrices([]byte("<broken"))
	assert.Error(t, err)
}
