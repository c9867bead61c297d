package fit

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"html/template"
	"math"
	"regexp"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	mapZoom = 13

	// maxMapSegments and maxChartPoints keep rendered pages small
	// enough to embed in tool responses.
	maxMapSegments = 50
	maxChartPoints = 100
)

const routeMapPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Route Map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body { margin: 0; height: 100%; }
#map { height: 100%; }
#legend { position: fixed; bottom: 50px; right: 50px; width: 120px; height: 60px;
background-color: white; border: 2px solid grey; z-index: 9999; font-size: 14px; padding: 10px; }
#legend p { margin: 0 0 4px 0; }
</style>
</head>
<body>
<div id="map"></div>
<div id="legend">
<p><b>Elevation</b></p>
<p>🔴 High: {{printf "%.0f" .MaxElevation}}m</p>
<p>🔵 Low: {{printf "%.0f" .MinElevation}}m</p>
</div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLng}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
	maxZoom: 19,
	attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var segments = {{.Segments}};
segments.forEach(function (seg) {
	L.polyline([seg.from, seg.to], { color: seg.color, weight: 4, opacity: 0.8 }).addTo(map);
});
L.marker([{{.StartLat}}, {{.StartLng}}]).addTo(map).bindPopup('Start');
L.marker([{{.EndLat}}, {{.EndLng}}]).addTo(map).bindPopup('End');
</script>
</body>
</html>
`

var mapTemplate = template.Must(template.New("routemap").Parse(routeMapPage))

type mapSegment struct {
	From  [2]float64 `json:"from"`
	To    [2]float64 `json:"to"`
	Color string     `json:"color"`
}

type routeMapData struct {
	CenterLat    float64
	CenterLng    float64
	Zoom         int
	Segments     []mapSegment
	StartLat     float64
	StartLng     float64
	EndLat       float64
	EndLng       float64
	MaxElevation float64
	MinElevation float64
}

// RouteMapHTML renders an interactive Leaflet map of the route. The
// track is downsampled and drawn as segments colored by elevation, red
// for high and blue for low. Returns an empty string when there are no
// records.
func RouteMapHTML(records []Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	var sumLat, sumLng float64
	for _, rec := range records {
		sumLat += rec.Lat
		sumLng += rec.Lng
	}

	sampled := sampleEvery(records, maxMapSegments)

	minElev, maxElev := sampled[0].Elevation, sampled[0].Elevation
	for _, rec := range sampled[1:] {
		minElev = math.Min(minElev, rec.Elevation)
		maxElev = math.Max(maxElev, rec.Elevation)
	}

	segments := make([]mapSegment, 0, len(sampled))
	for i := 0; i+1 < len(sampled); i++ {
		segments = append(segments, mapSegment{
			From:  [2]float64{sampled[i].Lat, sampled[i].Lng},
			To:    [2]float64{sampled[i+1].Lat, sampled[i+1].Lng},
			Color: elevationColor(sampled[i].Elevation, minElev, maxElev),
		})
	}

	data := routeMapData{
		CenterLat:    sumLat / float64(len(records)),
		CenterLng:    sumLng / float64(len(records)),
		Zoom:         mapZoom,
		Segments:     segments,
		StartLat:     sampled[0].Lat,
		StartLng:     sampled[0].Lng,
		EndLat:       sampled[len(sampled)-1].Lat,
		EndLng:       sampled[len(sampled)-1].Lng,
		MaxElevation: maxElev,
		MinElevation: minElev,
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering route map: %w", err)
	}

	return buf.String(), nil
}

// elevationColor maps an elevation to a red-to-blue hex color within
// the [minElev, maxElev] range, or plain blue when the range is flat.
func elevationColor(elev, minElev, maxElev float64) string {
	if maxElev <= minElev {
		return "#0000FF"
	}

	norm := (elev - minElev) / (maxElev - minElev)

	return fmt.Sprintf("#%02x%02x00", int(255*norm), int(255*(1-norm)))
}

// ElevationChartHTML renders the elevation profile as a line chart,
// with heart rate on a second axis when the file carries it. Returns
// an empty string when there are no records.
func ElevationChartHTML(records []Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	type point struct {
		label     string
		elevation float64
		heartRate float64
	}

	points := make([]point, 0, len(records))
	hasHeartRate := false

	for i, rec := range records {
		distanceKm := rec.Distance / 1000
		if math.IsNaN(rec.Distance) {
			distanceKm = float64(i) * 0.01
		}

		if rec.HeartRate > 0 {
			hasHeartRate = true
		}

		points = append(points, point{
			label:     fmt.Sprintf("%.2f", distanceKm),
			elevation: rec.Elevation,
			heartRate: rec.HeartRate,
		})
	}

	sampled := sampleEvery(points, maxChartPoints)

	labels := make([]string, 0, len(sampled))
	elevation := make([]opts.LineData, 0, len(sampled))
	heartRate := make([]opts.LineData, 0, len(sampled))

	for _, p := range sampled {
		labels = append(labels, p.label)
		elevation = append(elevation, opts.LineData{Value: p.elevation})

		if p.heartRate > 0 {
			heartRate = append(heartRate, opts.LineData{Value: p.heartRate})
		} else {
			heartRate = append(heartRate, opts.LineData{Value: nil})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Workout Analysis", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Workout Analysis"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Distance (km)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Elevation (m)"}),
	)

	line.SetXAxis(labels).AddSeries("Elevation", elevation,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "green", Width: 2}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.4}))

	if hasHeartRate {
		line.ExtendYAxis(opts.YAxis{Name: "Heart Rate (bpm)", Type: "value"})
		line.AddSeries("Heart Rate", heartRate,
			charts.WithLineStyleOpts(opts.LineStyle{Color: "red", Width: 2}),
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering elevation chart: %w", err)
	}

	return buf.String(), nil
}

// sampleEvery thins items to roughly limit entries by keeping every
// n-th one. Small inputs are returned unchanged.
func sampleEvery[T any](items []T, limit int) []T {
	if len(items) <= limit {
		return items
	}

	step := len(items) / limit
	sampled := make([]T, 0, len(items)/step+1)
	for i := 0; i < len(items); i += step {
		sampled = append(sampled, items[i])
	}

	return sampled
}

var (
	htmlCommentRe   = regexp.MustCompile(`(?s)<!--.*?-->`)
	interTagSpaceRe = regexp.MustCompile(`>\s+<`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// CompressHTML strips comments and collapses whitespace, leaving a
// single-line page that is safe to embed in a text response.
func CompressHTML(html string) string {
	html = htmlCommentRe.ReplaceAllString(html, "")
	html = interTagSpaceRe.ReplaceAllString(html, "><")

	lines := strings.Split(html, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		kept = append(kept, line)
	}

	html = whitespaceRunRe.ReplaceAllString(strings.Join(kept, "\n"), " ")

	return strings.TrimSpace(html)
}

// HTMLToBase64 compresses the page and encodes it as standard base64.
func HTMLToBase64(html string) string {
	return base64.StdEncoding.EncodeToString([]byte(CompressHTML(html)))
}

// GzipBase64 gzips the page before base64 encoding, for pages too
// large to ship minified.
func GzipBase64(html string) (string, error) {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(html)); err != nil {
		return "", fmt.Errorf("compressing HTML: %w", err)
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compressing HTML: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
