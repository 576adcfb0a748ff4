package main

import "time"

const (
	statisticSource  = "meridian_energy"
	sensorName       = "Meridian Energy"
	unitKilowattHour = "kWh"
)

// Channel identifies one of the three statistics series a reading can land in.
type Channel int

const (
	ChannelSolar Channel = iota
	ChannelDay
	ChannelNight
)

func (c Channel) String() string {
	switch c {
	case ChannelSolar:
		return "solar"
	case ChannelDay:
		return "day"
	case ChannelNight:
		return "night"
	}
	return "unknown"
}

// SeriesPoint is one hour bucket carrying the running total up to and
// including that reading.
type SeriesPoint struct {
	Start time.Time
	Sum   float64
}

// ChannelSeries is the ordered cumulative series for one channel.
type ChannelSeries struct {
	Channel Channel
	Points  []SeriesPoint
}

// SeriesMetadata names a statistics series for the external sink.
type SeriesMetadata struct {
	Name        string
	Source      string
	StatisticID string
	Unit        string
	// HasSum marks the series as a running sum rather than a mean.
	HasSum bool
}

// Metadata returns the sink metadata for the channel.
func (c Channel) Metadata() SeriesMetadata {
	meta := SeriesMetadata{
		Source: statisticSource,
		Unit:   unitKilowattHour,
		HasSum: true,
	}
	switch c {
	case ChannelSolar:
		meta.Name = sensorName + " (Solar Export)"
		meta.StatisticID = statisticSource + ":return_to_grid"
	case ChannelDay:
		meta.Name = sensorName + " (Day)"
		meta.StatisticID = statisticSource + ":consumption_day"
	case ChannelNight:
		meta.Name = sensorName + " (Night)"
		meta.StatisticID = statisticSource + ":consumption_night"
	}
	return meta
}
