package reports

import "time"

// Dataset topics. One logical output channel per dataset; a report
// family may fan out to more than one of these.
const (
	TopicZonalPrices         = "ieso.realtime.zonal-prices"
	TopicZonalDemand         = "ieso.realtime.zonal-demand"
	TopicFuelMix             = "ieso.hourly.fuel-mix"
	TopicGeneratorOutput     = "ieso.realtime.generator-output"
	TopicIntertieFlow        = "ieso.hourly.intertie-flow"
	TopicAdequacy            = "ieso.hourly.adequacy"
	TopicDayAheadOZP         = "ieso.hourly.da-ozp"
	TopicDayAheadZonal       = "ieso.hourly.da-zonal"
	TopicIntertieLMP         = "ieso.realtime.intertie-lmp"
	TopicDayAheadIntertieLMP = "ieso.hourly.da-intertie-lmp"
)

// Record is one published measurement. Records are value objects: flat
// JSON documents keyed downstream by timestamp plus a dimension field
// (zone, fuel type, generator, intertie). Every record knows the
// dataset topic it belongs to.
type Record interface {
	Topic() string
}

// Timestamps are serialized without a zone offset; all values are in
// the source's local civil time and the downstream columnar sink
// expects this exact layout.
const stampLayout = "2006-01-02T15:04:05"

func stamp(t time.Time) string {
	return t.Format(stampLayout)
}

// ZonalPrice is a 5-minute zonal energy price.
type ZonalPrice struct {
	Timestamp       string  `json:"timestamp"`
	Zone            string  `json:"zone"`
	Price           float64 `json:"price"`
	EnergyLossPrice float64 `json:"energy_loss_price"`
	CongestionPrice float64 `json:"congestion_price"`
}

func (ZonalPrice) Topic() string { return TopicZonalPrices }

// ZonalDemand is a 5-minute demand measurement for one zone.
type ZonalDemand struct {
	Timestamp string  `json:"timestamp"`
	Zone      string  `json:"zone"`
	DemandMW  float64 `json:"demand_mw"`
}

func (ZonalDemand) Topic() string { return TopicZonalDemand }

// FuelMix is generation output attributed to one fuel type. The
// realtime totals report also contributes here with the synthetic
// REALTIME_TOTAL fuel type.
type FuelMix struct {
	Timestamp string  `json:"timestamp"`
	FuelType  string  `json:"fuel_type"`
	OutputMW  float64 `json:"output_mw"`
}

func (FuelMix) Topic() string { return TopicFuelMix }

// GeneratorOutput is one generator's hourly output and capability.
type GeneratorOutput struct {
	Timestamp    string  `json:"timestamp"`
	Generator    string  `json:"generator"`
	FuelType     string  `json:"fuel_type"`
	OutputMW     float64 `json:"output_mw"`
	CapabilityMW float64 `json:"capability_mw"`
}

func (GeneratorOutput) Topic() string { return TopicGeneratorOutput }

// IntertieFlow is a 5-minute actual flow with the hourly net schedule
// for one intertie. Positive values are imports into Ontario.
type IntertieFlow struct {
	Timestamp   string  `json:"timestamp"`
	Intertie    string  `json:"intertie"`
	ScheduledMW float64 `json:"scheduled_mw"`
	ActualMW    float64 `json:"actual_mw"`
}

func (IntertieFlow) Topic() string { return TopicIntertieFlow }

// Adequacy is an hourly demand and supply forecast for one delivery
// day. Timestamp is the fetch instant; the forecast target is the
// delivery date and hour.
type Adequacy struct {
	Timestamp        string  `json:"timestamp"`
	DeliveryDate     string  `json:"delivery_date"`
	DeliveryHour     int     `json:"delivery_hour"`
	ForecastDemandMW float64 `json:"forecast_demand_mw"`
	ForecastSupplyMW float64 `json:"forecast_supply_mw"`
}

func (Adequacy) Topic() string { return TopicAdequacy }

// DayAheadOntarioPrice is the province-wide day-ahead hourly price.
type DayAheadOntarioPrice struct {
	Timestamp    string  `json:"timestamp"`
	DeliveryDate string  `json:"delivery_date"`
	DeliveryHour int     `json:"delivery_hour"`
	Zone         string  `json:"zone"`
	ZonalPrice   float64 `json:"zonal_price"`
}

func (DayAheadOntarioPrice) Topic() string { return TopicDayAheadOZP }

// DayAheadZonalPrice is the per-zone day-ahead hourly price.
type DayAheadZonalPrice struct {
	Timestamp    string  `json:"timestamp"`
	DeliveryDate string  `json:"delivery_date"`
	DeliveryHour int     `json:"delivery_hour"`
	Zone         string  `json:"zone"`
	ZonalPrice   float64 `json:"zonal_price"`
}

func (DayAheadZonalPrice) Topic() string { return TopicDayAheadZonal }

// IntertieLMP is a 5-minute locational marginal price for one intertie
// zone group.
type IntertieLMP struct {
	Timestamp    string  `json:"timestamp"`
	IntertieZone string  `json:"intertie_zone"`
	LMP          float64 `json:"lmp"`
}

func (IntertieLMP) Topic() string { return TopicIntertieLMP }

// DayAheadIntertieLMP is the day-ahead hourly LMP for one intertie
// zone group.
type DayAheadIntertieLMP struct {
	Timestamp    string  `json:"timestamp"`
	DeliveryDate string  `json:"delivery_date"`
	DeliveryHour int     `json:"delivery_hour"`
	IntertieZone string  `json:"intertie_zone"`
	LMP          float64 `json:"lmp"`
}

func (DayAheadIntertieLMP) Topic() string { return TopicDayAheadIntertieLMP }
