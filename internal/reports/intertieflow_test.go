package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const intertieFlowSample = `<?xml version="1.0" encoding="UTF-8"?>
<IMODocument xmlns="http://www.theIMO.com/schema">
  <IMODocBody>
    <Date>2026-01-26</Date>
    <IntertieZones>
      <IntertieZone>
        <IntertieZoneName>MANITOBA</IntertieZoneName>
        <Schedules>
          <Schedule>
            <Hour>13</Hour>
            <Import>250</Import>
            <Export>50</Export>
          </Schedule>
        </Schedules>
        <Actuals>
          <Actual>
            <Hour>13</Hour>
            <Interval>2</Interval>
            <Flow>195.5</Flow>
          </Actual>
          <Actual>
            <Hour>13</Hour>
            <Interval>1</Interval>
            <Flow>198.0</Flow>
          </Actual>
        </Actuals>
      </IntertieZone>
    </IntertieZones>
  </IMODocBody>
</IMODocument>`

func TestParseIntertieFlow(t *testing.T) {
	records, err := ParseIntertieFlow([]byte(intertieFlowSample))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0].(IntertieFlow)
	assert.Equal(t, "2026-01-26T12:00:00", first.Timestamp, "intervals come out in delivery order")
	assert.Equal(t, "MANITOBA", first.Intertie)
	assert.Equal(t, 200.0, first.ScheduledMW, "net schedule is import minus export")
	assert.Equal(t, 198.0, first.ActualMW)
	assert.Equal(t, TopicIntertieFlow, first.Topic())

	second := records[1].(IntertieFlow)
	assert.Equal(t, "2026-01-26T12:05:00", second.Timestamp)
	assert.Equal(t, 195.5, second.ActualMW)
}

func TestParseIntertieFlowBadDate(t *testing.T) {
	_, err := ParseIntertieFlow([]byte(`<IMODocument><IMODocBody><Date></Date></IMODocBody></IMODocument>`))
	assert.Error(t, err)
}
