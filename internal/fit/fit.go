// Package fit downloads and analyzes FIT activity files referenced by
// workout summaries. A parsed file is reduced to its GPS-bearing
// records, which feed summary statistics, a Leaflet route map, and an
// elevation chart.
package fit

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tormoder/fit"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	invalidUint8  = 0xFF
	invalidUint16 = 0xFFFF
)

// grouped renders integers with thousands separators.
var grouped = message.NewPrinter(language.English)

// Record is a single GPS-bearing sample from a FIT activity file.
// Distance and Speed are NaN when the file does not carry them;
// HeartRate, Cadence and Power are 0 when absent.
type Record struct {
	Lat       float64
	Lng       float64
	Elevation float64
	Distance  float64
	Speed     float64
	HeartRate float64
	Cadence   float64
	Power     float64
}

// Parse decodes a FIT activity file, keeping only records that carry a
// valid GPS position. Elevation prefers the enhanced altitude field
// over the basic one, as does speed.
func Parse(r io.Reader) ([]Record, error) {
	file, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FIT file: %w", err)
	}

	activity, err := file.Activity()
	if err != nil {
		return nil, fmt.Errorf("reading FIT activity: %w", err)
	}

	records := make([]Record, 0, len(activity.Records))

	for _, msg := range activity.Records {
		lat := msg.PositionLat.Degrees()
		lng := msg.PositionLong.Degrees()
		if math.IsNaN(lat) || math.IsNaN(lng) {
			continue
		}

		rec := Record{Lat: lat, Lng: lng, Distance: msg.GetDistanceScaled()}

		if alt := msg.GetEnhancedAltitudeScaled(); !math.IsNaN(alt) {
			rec.Elevation = alt
		} else if alt := msg.GetAltitudeScaled(); !math.IsNaN(alt) {
			rec.Elevation = alt
		}

		rec.Speed = msg.GetEnhancedSpeedScaled()
		if math.IsNaN(rec.Speed) {
			rec.Speed = msg.GetSpeedScaled()
		}

		if msg.HeartRate != invalidUint8 {
			rec.HeartRate = float64(msg.HeartRate)
		}

		if msg.Cadence != invalidUint8 {
			rec.Cadence = float64(msg.Cadence)
		}

		if msg.Power != invalidUint16 {
			rec.Power = float64(msg.Power)
		}

		records = append(records, rec)
	}

	return records, nil
}

// Summary holds aggregate statistics computed from a FIT file's
// records. Heart rate, power and speed stay 0 when the file carries no
// samples for that metric.
type Summary struct {
	TotalDistanceKm float64 `json:"total_distance_km"`
	ElevationGainM  float64 `json:"elevation_gain_m"`
	MaxElevationM   float64 `json:"max_elevation_m"`
	MinElevationM   float64 `json:"min_elevation_m"`
	AvgHeartRate    float64 `json:"avg_heart_rate,omitempty"`
	MaxHeartRate    float64 `json:"max_heart_rate,omitempty"`
	AvgPower        float64 `json:"avg_power,omitempty"`
	MaxPower        float64 `json:"max_power,omitempty"`
	AvgSpeedKmh     float64 `json:"avg_speed_kmh,omitempty"`
	MaxSpeedKmh     float64 `json:"max_speed_kmh,omitempty"`
	TotalPoints     int     `json:"total_points"`
}

type metricAgg struct {
	sum   float64
	max   float64
	count int
}

func (m *metricAgg) add(v float64) {
	m.sum += v
	m.count++
	if v > m.max {
		m.max = v
	}
}

func (m *metricAgg) avg() float64 {
	if m.count == 0 {
		return 0
	}

	return m.sum / float64(m.count)
}

// Summarize computes aggregate statistics over parsed records. Total
// distance is the largest distance sample; elevation gain sums only
// positive deltas between consecutive records. Zero heart rate, power
// and speed samples are treated as absent.
func Summarize(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	s := Summary{
		TotalPoints:   len(records),
		MaxElevationM: records[0].Elevation,
		MinElevationM: records[0].Elevation,
	}

	var (
		maxDistance      float64
		hr, power, speed metricAgg
	)

	prevElev := records[0].Elevation

	for i, rec := range records {
		if !math.IsNaN(rec.Distance) && rec.Distance > maxDistance {
			maxDistance = rec.Distance
		}

		if rec.Elevation > s.MaxElevationM {
			s.MaxElevationM = rec.Elevation
		}

		if rec.Elevation < s.MinElevationM {
			s.MinElevationM = rec.Elevation
		}

		if i > 0 {
			if gain := rec.Elevation - prevElev; gain > 0 {
				s.ElevationGainM += gain
			}
		}
		prevElev = rec.Elevation

		if rec.HeartRate > 0 {
			hr.add(rec.HeartRate)
		}

		if rec.Power > 0 {
			power.add(rec.Power)
		}

		if !math.IsNaN(rec.Speed) && rec.Speed > 0 {
			speed.add(rec.Speed)
		}
	}

	s.TotalDistanceKm = maxDistance / 1000

	if hr.count > 0 {
		s.AvgHeartRate = hr.avg()
		s.MaxHeartRate = hr.max
	}

	if power.count > 0 {
		s.AvgPower = power.avg()
		s.MaxPower = power.max
	}

	if speed.count > 0 {
		s.AvgSpeedKmh = speed.avg() * 3.6
		s.MaxSpeedKmh = speed.max * 3.6
	}

	return s
}

// Analysis is the full result of analyzing one FIT file.
type Analysis struct {
	SummaryStats   Summary `json:"summary_stats"`
	HasGPSData     bool    `json:"has_gps_data"`
	GPSPointsCount int     `json:"gps_points_count"`
}

// NewAnalysis bundles summary statistics with GPS metadata for a set
// of parsed records.
func NewAnalysis(records []Record) *Analysis {
	return &Analysis{
		SummaryStats:   Summarize(records),
		HasGPSData:     len(records) > 0,
		GPSPointsCount: len(records),
	}
}

// Format renders the analysis as an indented text block. Metrics the
// file does not carry are omitted.
func (a *Analysis) Format() string {
	if a == nil || a.SummaryStats == (Summary{}) {
		return ""
	}

	stats := a.SummaryStats
	lines := []string{"📊 **FIT File Analysis:**"}

	if stats.TotalDistanceKm != 0 {
		lines = append(lines, fmt.Sprintf("  🏃 Total Distance: %.2f km", stats.TotalDistanceKm))
	}

	if stats.ElevationGainM != 0 {
		lines = append(lines, fmt.Sprintf("  ⛰️  Elevation Gain: %.0f m", stats.ElevationGainM))
	}

	if stats.MaxElevationM != 0 && stats.MinElevationM != 0 {
		lines = append(lines, fmt.Sprintf("  📏 Elevation Range: %.0f - %.0f m", stats.MinElevationM, stats.MaxElevationM))
	}

	if stats.AvgHeartRate != 0 {
		lines = append(lines, fmt.Sprintf("  ❤️ Heart Rate: %.0f bpm (avg), %.0f bpm (max)", stats.AvgHeartRate, stats.MaxHeartRate))
	}

	if stats.AvgPower != 0 {
		lines = append(lines, fmt.Sprintf("  ⚡ Power: %.0f W (avg), %.0f W (max)", stats.AvgPower, stats.MaxPower))
	}

	if stats.AvgSpeedKmh != 0 {
		lines = append(lines, fmt.Sprintf("  🏎️  Speed: %.1f km/h (avg), %.1f km/h (max)", stats.AvgSpeedKmh, stats.MaxSpeedKmh))
	}

	if a.HasGPSData {
		lines = append(lines, grouped.Sprintf("  🗺️  GPS Points: %d", a.GPSPointsCount))
	}

	return strings.Join(lines, "\n")
}

// FileURL extracts the FIT file URL from a raw workout summary blob,
// or returns "" when the summary has none.
func FileURL(summary []byte) string {
	return gjson.GetBytes(summary, "file.url").String()
}
