package wahoo

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Target is one training target inside an interval. Either Value or the
// Min/Max pair must be set; targets with neither are dropped during
// conversion.
type Target struct {
	Type  string   `json:"target_type"`
	Value *float64 `json:"target_value,omitempty"`
	Min   *float64 `json:"target_min,omitempty"`
	Max   *float64 `json:"target_max,omitempty"`
	Unit  string   `json:"unit,omitempty"`
}

// Interval is one step of a workout plan.
type Interval struct {
	Duration int      `json:"duration"`
	Targets  []Target `json:"targets"`
	Name     string   `json:"name,omitempty"`
	Type     string   `json:"interval_type,omitempty"`
}

// WorkoutPlan is the structured plan accepted by the create_plan tool.
// It is deliberately looser than the Wahoo plan file format: interval
// and target types accept common aliases and are normalized during
// conversion.
type WorkoutPlan struct {
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	Intervals         []Interval `json:"intervals"`
	WorkoutType       string     `json:"workout_type,omitempty"`
	EstimatedDuration int        `json:"estimated_duration,omitempty"`
	EstimatedTSS      float64    `json:"estimated_tss,omitempty"`
	Author            string     `json:"author,omitempty"`
}

// planTarget is a target in the Wahoo plan file format.
type planTarget struct {
	Type string  `json:"type"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// planInterval is an interval in the Wahoo plan file format.
type planInterval struct {
	Targets          []planTarget `json:"targets"`
	ExitTriggerType  string       `json:"exit_trigger_type"`
	ExitTriggerValue int          `json:"exit_trigger_value"`
	IntensityType    string       `json:"intensity_type"`
	Name             string       `json:"name,omitempty"`
}

// planHeader is the header block of the Wahoo plan file format. The API
// rejects plans with fields beyond these, which is why author and
// estimated TSS never make it into the file.
type planHeader struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	Version             string `json:"version"`
	WorkoutTypeFamily   int    `json:"workout_type_family"`
	WorkoutTypeLocation int    `json:"workout_type_location"`
	FTP                 int    `json:"ftp"`
}

type planFile struct {
	Header    planHeader     `json:"header"`
	Intervals []planInterval `json:"intervals"`
}

// intensityTypes maps common interval type names onto the intensity
// types the Wahoo API accepts: active, wu, tempo, lt, map, ac, nm, ftp,
// cd, recover, rest.
var intensityTypes = map[string]string{
	"warmup":        "wu",
	"warm-up":       "wu",
	"wu":            "wu",
	"work":          "active",
	"active":        "active",
	"interval":      "active",
	"tempo":         "tempo",
	"threshold":     "lt",
	"lt":            "lt",
	"map":           "map",
	"ac":            "ac",
	"neuromuscular": "nm",
	"nm":            "nm",
	"ftp":           "ftp",
	"cooldown":      "cd",
	"cool-down":     "cd",
	"cd":            "cd",
	"recovery":      "recover",
	"recover":       "recover",
	"rest":          "rest",
}

// targetTypes maps common target type names onto the target types the
// Wahoo API accepts: rpm, rpe, watts, hr, speed, ftp, map, ac, nm,
// threshold_hr, threshold_speed, max_hr.
var targetTypes = map[string]string{
	"power":              "watts",
	"watts":              "watts",
	"heart_rate":         "hr",
	"hr":                 "hr",
	"heartrate":          "hr",
	"cadence":            "rpm",
	"rpm":                "rpm",
	"rpe":                "rpe",
	"perceived_exertion": "rpe",
	"speed":              "speed",
	"pace":               "speed",
	"ftp":                "ftp",
	"map":                "map",
	"ac":                 "ac",
	"nm":                 "nm",
	"neuromuscular":      "nm",
	"threshold_hr":       "threshold_hr",
	"threshold_speed":    "threshold_speed",
	"max_hr":             "max_hr",
}

func mapIntensityType(intervalType string) string {
	if t, ok := intensityTypes[strings.ToLower(intervalType)]; ok {
		return t
	}

	return "active"
}

func mapTargetType(targetType string) string {
	if t, ok := targetTypes[strings.ToLower(targetType)]; ok {
		return t
	}

	return "watts"
}

// toPlanFile converts the plan to the Wahoo plan file structure.
func (p *WorkoutPlan) toPlanFile() planFile {
	intervals := make([]planInterval, 0, len(p.Intervals))

	for _, iv := range p.Intervals {
		pi := planInterval{
			Targets:          []planTarget{},
			ExitTriggerType:  "time",
			ExitTriggerValue: iv.Duration,
			IntensityType:    mapIntensityType(iv.Type),
			Name:             iv.Name,
		}

		for _, tgt := range iv.Targets {
			pt := planTarget{Type: mapTargetType(tgt.Type)}

			switch {
			case tgt.Min != nil && tgt.Max != nil:
				pt.Low, pt.High = *tgt.Min, *tgt.Max
			case tgt.Value != nil:
				pt.Low, pt.High = *tgt.Value, *tgt.Value
			default:
				continue
			}

			pi.Targets = append(pi.Targets, pt)
		}

		intervals = append(intervals, pi)
	}

	return planFile{
		Header: planHeader{
			Name:        p.Name,
			Description: p.Description,
			Version:     "1.0.0",
			// Family 0 is cycling and location 0 is indoor. The FTP is a
			// placeholder used by relative targets; riders override it on
			// the head unit.
			WorkoutTypeFamily:   0,
			WorkoutTypeLocation: 0,
			FTP:                 250,
		},
		Intervals: intervals,
	}
}

// EncodeDataURL renders the plan as the base64 data URL the plans
// endpoint expects in the plan[file] form field.
func (p *WorkoutPlan) EncodeDataURL() (string, error) {
	data, err := json.Marshal(p.toPlanFile())
	if err != nil {
		return "", fmt.Errorf("marshalling plan file: %w", err)
	}

	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(data), nil
}
