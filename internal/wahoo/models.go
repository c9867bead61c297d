package wahoo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// File points at a downloadable artifact (route file, plan file, or
// workout FIT file) hosted by Wahoo.
type File struct {
	URL string `json:"url"`
}

// Workout is one workout record from the Wahoo Cloud API.
type Workout struct {
	ID             int             `json:"id"`
	Starts         string          `json:"starts"`
	Minutes        int             `json:"minutes"`
	Name           string          `json:"name"`
	PlanID         int             `json:"plan_id,omitempty"`
	RouteID        int             `json:"route_id,omitempty"`
	WorkoutToken   string          `json:"workout_token"`
	WorkoutTypeID  int             `json:"workout_type_id"`
	WorkoutSummary json.RawMessage `json:"workout_summary,omitempty"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// Type returns the catalog entry for this workout's type ID.
func (w *Workout) Type() WorkoutType {
	return WorkoutTypeFromID(w.WorkoutTypeID)
}

// DurationString renders the workout length as "45 minutes", "2 hours"
// or "1h 30m".
func (w *Workout) DurationString() string {
	if w.Minutes < 60 {
		return fmt.Sprintf("%d minutes", w.Minutes)
	}

	hours := w.Minutes / 60
	mins := w.Minutes % 60

	if mins == 0 {
		if hours == 1 {
			return "1 hour"
		}

		return fmt.Sprintf("%d hours", hours)
	}

	return fmt.Sprintf("%dh %dm", hours, mins)
}

// FormattedStartTime renders the start time as "2006-01-02 15:04:05 UTC",
// falling back to the raw API value when it does not parse as RFC 3339.
func (w *Workout) FormattedStartTime() string {
	t, err := time.Parse(time.RFC3339, w.Starts)
	if err != nil {
		return w.Starts
	}

	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// HasSummary reports whether the API attached workout results.
func (w *Workout) HasSummary() bool {
	s := bytes.TrimSpace(w.WorkoutSummary)

	return len(s) > 0 && !bytes.Equal(s, []byte("null")) && !bytes.Equal(s, []byte("{}"))
}

// FormatSummary renders the workout as a list entry.
func (w *Workout) FormatSummary() string {
	t := w.Type()
	lines := []string{
		fmt.Sprintf("- ID: %d", w.ID),
		fmt.Sprintf("  Name: %s", w.Name),
		fmt.Sprintf("  Date: %s", w.FormattedStartTime()),
		fmt.Sprintf("  Duration: %s", w.DurationString()),
		fmt.Sprintf("  Type: %s (%s, %s)", t.Description, t.Location, t.Family),
	}

	if w.PlanID != 0 {
		lines = append(lines, fmt.Sprintf("  Plan ID: %d", w.PlanID))
	}

	if w.RouteID != 0 {
		lines = append(lines, fmt.Sprintf("  Route ID: %d", w.RouteID))
	}

	return strings.Join(lines, "\n")
}

// FormatDetails renders the full workout record, ending with the raw
// JSON for fields the summary lines do not cover.
func (w *Workout) FormatDetails() string {
	t := w.Type()

	var b strings.Builder

	fmt.Fprintf(&b, "Workout Details (ID: %d):\n", w.ID)
	fmt.Fprintf(&b, "- Name: %s\n", w.Name)
	fmt.Fprintf(&b, "- Start Time: %s\n", w.FormattedStartTime())
	fmt.Fprintf(&b, "- Duration: %s\n", w.DurationString())
	fmt.Fprintf(&b, "- Type: %s\n", t.Description)
	fmt.Fprintf(&b, "- Location: %s\n", t.Location)
	fmt.Fprintf(&b, "- Family: %s\n", t.Family)
	fmt.Fprintf(&b, "- Workout Token: %s", w.WorkoutToken)

	if w.PlanID != 0 {
		fmt.Fprintf(&b, "\n- Plan ID: %d", w.PlanID)
	}

	if w.RouteID != 0 {
		fmt.Fprintf(&b, "\n- Route ID: %d", w.RouteID)
	}

	fmt.Fprintf(&b, "\n- Created: %s\n", w.CreatedAt)
	fmt.Fprintf(&b, "- Updated: %s\n", w.UpdatedAt)

	hasSummary := "No"
	if w.HasSummary() {
		hasSummary = "Yes"
	}

	fmt.Fprintf(&b, "- Has Summary: %s\n\n", hasSummary)
	fmt.Fprintf(&b, "Full JSON:\n%s", indentJSON(w))

	return b.String()
}

// Route is one route record from the Wahoo Cloud API.
type Route struct {
	ID                  int     `json:"id"`
	UserID              int     `json:"user_id"`
	Name                string  `json:"name"`
	Description         string  `json:"description,omitempty"`
	File                File    `json:"file"`
	WorkoutTypeFamilyID int     `json:"workout_type_family_id"`
	ExternalID          string  `json:"external_id,omitempty"`
	StartLat            float64 `json:"start_lat,omitempty"`
	StartLng            float64 `json:"start_lng,omitempty"`
	Distance            float64 `json:"distance,omitempty"`
	Ascent              float64 `json:"ascent,omitempty"`
	Descent             float64 `json:"descent,omitempty"`
}

// FormatSummary renders the route as a list entry.
func (r *Route) FormatSummary() string {
	lines := []string{
		fmt.Sprintf("- ID: %d", r.ID),
		fmt.Sprintf("  Name: %s", r.Name),
	}

	if r.Description != "" {
		lines = append(lines, fmt.Sprintf("  Description: %s", r.Description))
	}

	if r.Distance != 0 {
		lines = append(lines, fmt.Sprintf("  Distance: %.1f", r.Distance))
	}

	if r.StartLat != 0 && r.StartLng != 0 {
		lines = append(lines, fmt.Sprintf("  Start: %.6f, %.6f", r.StartLat, r.StartLng))
	}

	if r.ExternalID != "" {
		lines = append(lines, fmt.Sprintf("  External ID: %s", r.ExternalID))
	}

	return strings.Join(lines, "\n")
}

// FormatDetails renders the full route record.
func (r *Route) FormatDetails() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Route Details (ID: %d):\n", r.ID)
	fmt.Fprintf(&b, "- Name: %s", r.Name)

	if r.Description != "" {
		fmt.Fprintf(&b, "\n- Description: %s", r.Description)
	}

	fmt.Fprintf(&b, "\n- User ID: %d\n", r.UserID)
	fmt.Fprintf(&b, "- Workout Type Family ID: %d", r.WorkoutTypeFamilyID)

	if r.ExternalID != "" {
		fmt.Fprintf(&b, "\n- External ID: %s", r.ExternalID)
	}

	if r.StartLat != 0 && r.StartLng != 0 {
		fmt.Fprintf(&b, "\n- Start Position: %.6f, %.6f", r.StartLat, r.StartLng)
	}

	if r.Distance != 0 {
		fmt.Fprintf(&b, "\n- Distance: %.1f", r.Distance)
	}

	if r.Ascent != 0 {
		fmt.Fprintf(&b, "\n- Ascent: %.1f", r.Ascent)
	}

	if r.Descent != 0 {
		fmt.Fprintf(&b, "\n- Descent: %.1f", r.Descent)
	}

	fmt.Fprintf(&b, "\n- File URL: %s", r.File.URL)
	fmt.Fprintf(&b, "\n\nFull JSON:\n%s", indentJSON(r))

	return b.String()
}

// Plan is one training plan record from the Wahoo Cloud API.
type Plan struct {
	ID                  int    `json:"id"`
	UserID              int    `json:"user_id"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	File                File   `json:"file"`
	WorkoutTypeFamilyID int    `json:"workout_type_family_id"`
	ExternalID          string `json:"external_id,omitempty"`
	ProviderUpdatedAt   string `json:"provider_updated_at,omitempty"`
	Deleted             bool   `json:"deleted"`
}

// FormatSummary renders the plan as a list entry.
func (p *Plan) FormatSummary() string {
	lines := []string{
		fmt.Sprintf("- ID: %d", p.ID),
		fmt.Sprintf("  Name: %s", p.Name),
	}

	if p.Description != "" {
		lines = append(lines, fmt.Sprintf("  Description: %s", p.Description))
	}

	if p.ExternalID != "" {
		lines = append(lines, fmt.Sprintf("  External ID: %s", p.ExternalID))
	}

	lines = append(lines, fmt.Sprintf("  Deleted: %t", p.Deleted))

	return strings.Join(lines, "\n")
}

// FormatDetails renders the full plan record.
func (p *Plan) FormatDetails() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan Details (ID: %d):\n", p.ID)
	fmt.Fprintf(&b, "- Name: %s", p.Name)

	if p.Description != "" {
		fmt.Fprintf(&b, "\n- Description: %s", p.Description)
	}

	fmt.Fprintf(&b, "\n- User ID: %d\n", p.UserID)
	fmt.Fprintf(&b, "- Workout Type Family ID: %d", p.WorkoutTypeFamilyID)

	if p.ExternalID != "" {
		fmt.Fprintf(&b, "\n- External ID: %s", p.ExternalID)
	}

	if p.ProviderUpdatedAt != "" {
		fmt.Fprintf(&b, "\n- Provider Updated: %s", p.ProviderUpdatedAt)
	}

	fmt.Fprintf(&b, "\n- Deleted: %t\n", p.Deleted)
	fmt.Fprintf(&b, "- File URL: %s", p.File.URL)
	fmt.Fprintf(&b, "\n\nFull JSON:\n%s", indentJSON(p))

	return b.String()
}

// CreatePlanResponse is the API response for a newly created plan.
type CreatePlanResponse struct {
	ID                int    `json:"id"`
	UserID            int    `json:"user_id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	File              File   `json:"file"`
	ExternalID        string `json:"external_id"`
	ProviderUpdatedAt string `json:"provider_updated_at"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// PowerZone is one power zone record from the Wahoo Cloud API.
type PowerZone struct {
	ID                    int    `json:"id"`
	UserID                int    `json:"user_id"`
	Zone1                 int    `json:"zone_1"`
	Zone2                 int    `json:"zone_2"`
	Zone3                 int    `json:"zone_3"`
	Zone4                 int    `json:"zone_4"`
	Zone5                 int    `json:"zone_5"`
	Zone6                 int    `json:"zone_6"`
	Zone7                 int    `json:"zone_7"`
	FTP                   int    `json:"ftp"`
	ZoneCount             int    `json:"zone_count"`
	WorkoutTypeID         int    `json:"workout_type_id"`
	WorkoutTypeFamilyID   int    `json:"workout_type_family_id"`
	WorkoutTypeLocationID int    `json:"workout_type_location_id"`
	CriticalPower         int    `json:"critical_power,omitempty"`
	CreatedAt             string `json:"created_at"`
	UpdatedAt             string `json:"updated_at"`
}

// Type returns the catalog entry for this power zone's workout type ID.
func (z *PowerZone) Type() WorkoutType {
	return WorkoutTypeFromID(z.WorkoutTypeID)
}

// FormatSummary renders the power zone as a list entry.
func (z *PowerZone) FormatSummary() string {
	lines := []string{
		fmt.Sprintf("- ID: %d", z.ID),
		fmt.Sprintf("  FTP: %dW", z.FTP),
		fmt.Sprintf("  Type: %s", z.Type().Description),
		fmt.Sprintf("  Zones: %dW, %dW, %dW, %dW, %dW, %dW, %dW",
			z.Zone1, z.Zone2, z.Zone3, z.Zone4, z.Zone5, z.Zone6, z.Zone7),
	}

	if z.CriticalPower != 0 {
		lines = append(lines, fmt.Sprintf("  Critical Power: %dW", z.CriticalPower))
	}

	return strings.Join(lines, "\n")
}

// FormatDetails renders the full power zone record.
func (z *PowerZone) FormatDetails() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Power Zone Details (ID: %d):\n", z.ID)
	fmt.Fprintf(&b, "- User ID: %d\n", z.UserID)
	fmt.Fprintf(&b, "- FTP: %dW\n", z.FTP)
	fmt.Fprintf(&b, "- Zone Count: %d\n", z.ZoneCount)
	fmt.Fprintf(&b, "- Workout Type: %s\n", z.Type().Description)
	fmt.Fprintf(&b, "- Zone 1: %dW\n", z.Zone1)
	fmt.Fprintf(&b, "- Zone 2: %dW\n", z.Zone2)
	fmt.Fprintf(&b, "- Zone 3: %dW\n", z.Zone3)
	fmt.Fprintf(&b, "- Zone 4: %dW\n", z.Zone4)
	fmt.Fprintf(&b, "- Zone 5: %dW\n", z.Zone5)
	fmt.Fprintf(&b, "- Zone 6: %dW\n", z.Zone6)
	fmt.Fprintf(&b, "- Zone 7: %dW", z.Zone7)

	if z.CriticalPower != 0 {
		fmt.Fprintf(&b, "\n- Critical Power: %dW", z.CriticalPower)
	}

	fmt.Fprintf(&b, "\n- Created: %s\n", z.CreatedAt)
	fmt.Fprintf(&b, "- Updated: %s", z.UpdatedAt)
	fmt.Fprintf(&b, "\n\nFull JSON:\n%s", indentJSON(z))

	return b.String()
}

// indentJSON renders v as indented JSON for detail views. Marshal
// failures collapse to an empty object rather than aborting a response
// that is otherwise complete.
func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}

	return string(data)
}
