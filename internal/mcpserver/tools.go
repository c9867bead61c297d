// Package mcpserver registers MCP tools that expose the Wahoo Cloud API.
// It adapts the wahoo client and the FIT analyzer to the MCP SDK's tool
// handler interface.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/askaldwell/wahoo-mcp/internal/fit"
	"github.com/askaldwell/wahoo-mcp/internal/wahoo"
)

// API is the slice of the Wahoo client the tools consume.
type API interface {
	ListWorkouts(ctx context.Context, params wahoo.ListWorkoutsParams) ([]wahoo.Workout, error)
	GetWorkout(ctx context.Context, id int) (*wahoo.Workout, error)
	ListRoutes(ctx context.Context, externalID string) ([]wahoo.Route, error)
	GetRoute(ctx context.Context, id int) (*wahoo.Route, error)
	ListPlans(ctx context.Context, externalID string) ([]wahoo.Plan, error)
	GetPlan(ctx context.Context, id int) (*wahoo.Plan, error)
	CreatePlan(ctx context.Context, req wahoo.CreatePlanRequest) (*wahoo.CreatePlanResponse, error)
	ListPowerZones(ctx context.Context) ([]wahoo.PowerZone, error)
	GetPowerZone(ctx context.Context, id int) (*wahoo.PowerZone, error)
}

// Analyzer produces FIT analyses for the analyze_workout tool.
type Analyzer interface {
	Analyze(ctx context.Context, fitURL string) (*fit.Analysis, error)
	AnalyzeFull(ctx context.Context, fitURL string) (*fit.Analysis, []fit.Record, error)
}

// RegisterTools adds all Wahoo tools to the given MCP server.
func RegisterTools(server *mcp.Server, api API, analyzer Analyzer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List workouts from Wahoo Cloud API",
	}, listWorkoutsHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get detailed information about a specific workout",
	}, getWorkoutHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_routes",
		Description: "List routes from Wahoo Cloud API",
	}, listRoutesHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_route",
		Description: "Get detailed information about a specific route",
	}, getRouteHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_plans",
		Description: "List plans from Wahoo Cloud API",
	}, listPlansHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_plan",
		Description: "Get detailed information about a specific plan",
	}, getPlanHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_plan",
		Description: "Create a new plan in the user's library",
	}, createPlanHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_power_zones",
		Description: "List power zones from Wahoo Cloud API",
	}, listPowerZonesHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_power_zone",
		Description: "Get detailed information about a specific power zone",
	}, getPowerZoneHandler(api))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_workout",
		Description: "Download and analyze the FIT file attached to a workout. Returns summary statistics and optionally a route map and an elevation chart as gzipped base64 HTML.",
	}, analyzeWorkoutHandler(api, analyzer))
}

// --- Input types ---
// The MCP SDK infers JSON schema from these struct types via jsonschema tags.

// ListWorkoutsInput holds parameters for list_workouts.
type ListWorkoutsInput struct {
	Page      int    `json:"page,omitempty" jsonschema:"page number, defaults to 1"`
	PerPage   int    `json:"per_page,omitempty" jsonschema:"results per page, defaults to 30"`
	StartDate string `json:"start_date,omitempty" jsonschema:"only workouts created after this ISO 8601 timestamp"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"only workouts created before this ISO 8601 timestamp"`
}

// GetWorkoutInput holds parameters for get_workout.
type GetWorkoutInput struct {
	WorkoutID int `json:"workout_id" jsonschema:"required,ID of the workout"`
}

// ListRoutesInput holds parameters for list_routes.
type ListRoutesInput struct {
	ExternalID string `json:"external_id,omitempty" jsonschema:"filter routes by external ID"`
}

// GetRouteInput holds parameters for get_route.
type GetRouteInput struct {
	RouteID int `json:"route_id" jsonschema:"required,ID of the route"`
}

// ListPlansInput holds parameters for list_plans.
type ListPlansInput struct {
	ExternalID string `json:"external_id,omitempty" jsonschema:"filter plans by external ID"`
}

// GetPlanInput holds parameters for get_plan.
type GetPlanInput struct {
	PlanID int `json:"plan_id" jsonschema:"required,ID of the plan"`
}

// CreatePlanInput holds parameters for create_plan.
type CreatePlanInput struct {
	Plan              wahoo.WorkoutPlan `json:"plan" jsonschema:"required,structured plan with name and intervals"`
	Filename          string            `json:"filename,omitempty" jsonschema:"plan filename, optional"`
	ExternalID        string            `json:"external_id" jsonschema:"required,caller-assigned identifier for the plan"`
	ProviderUpdatedAt string            `json:"provider_updated_at" jsonschema:"required,ISO 8601 timestamp of the plan's last update"`
}

// ListPowerZonesInput has no parameters.
type ListPowerZonesInput struct{}

// GetPowerZoneInput holds parameters for get_power_zone.
type GetPowerZoneInput struct {
	PowerZoneID int `json:"power_zone_id" jsonschema:"required,ID of the power zone"`
}

// AnalyzeWorkoutInput holds parameters for analyze_workout.
type AnalyzeWorkoutInput struct {
	WorkoutID    int  `json:"workout_id" jsonschema:"required,ID of the workout whose FIT file to analyze"`
	IncludeMap   bool `json:"include_map,omitempty" jsonschema:"also return the route as a Leaflet map page"`
	IncludeChart bool `json:"include_chart,omitempty" jsonschema:"also return an elevation and heart rate chart page"`
}

// --- Handlers ---

func listWorkoutsHandler(api API) mcp.ToolHandlerFor[ListWorkoutsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListWorkoutsInput) (*mcp.CallToolResult, any, error) {
		workouts, err := api.ListWorkouts(ctx, wahoo.ListWorkoutsParams{
			Page:          input.Page,
			PerPage:       input.PerPage,
			CreatedAfter:  input.StartDate,
			CreatedBefore: input.EndDate,
		})
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(listText(workouts, "workouts", (*wahoo.Workout).FormatSummary)), nil, nil
	}
}

func getWorkoutHandler(api API) mcp.ToolHandlerFor[GetWorkoutInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetWorkoutInput) (*mcp.CallToolResult, any, error) {
		workout, err := api.GetWorkout(ctx, input.WorkoutID)
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(workout.FormatDetails()), nil, nil
	}
}

func listRoutesHandler(api API) mcp.ToolHandlerFor[ListRoutesInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListRoutesInput) (*mcp.CallToolResult, any, error) {
		routes, err := api.ListRoutes(ctx, input.ExternalID)
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(listText(routes, "routes", (*wahoo.Route).FormatSummary)), nil, nil
	}
}

func getRouteHandler(api API) mcp.ToolHandlerFor[GetRouteInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetRouteInput) (*mcp.CallToolResult, any, error) {
		route, err := api.GetRoute(ctx, input.RouteID)
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(route.FormatDetails()), nil, nil
	}
}

func listPlansHandler(api API) mcp.ToolHandlerFor[ListPlansInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListPlansInput) (*mcp.CallToolResult, any, error) {
		plans, err := api.ListPlans(ctx, input.ExternalID)
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(listText(plans, "plans", (*wahoo.Plan).FormatSummary)), nil, nil
	}
}

func getPlanHandler(api API) mcp.ToolHandlerFor[GetPlanInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetPlanInput) (*mcp.CallToolResult, any, error) {
		plan, err := api.GetPlan(ctx, input.PlanID)
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(plan.FormatDetails()), nil, nil
	}
}

func createPlanHandler(api API) mcp.ToolHandlerFor[CreatePlanInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreatePlanInput) (*mcp.CallToolResult, any, error) {
		created, err := api.CreatePlan(ctx, wahoo.CreatePlanRequest{
			Plan:              &input.Plan,
			Filename:          input.Filename,
			ExternalID:        input.ExternalID,
			ProviderUpdatedAt: input.ProviderUpdatedAt,
		})
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(formatPlanCreated(created)), nil, nil
	}
}

func listPowerZonesHandler(api API) mcp.ToolHandlerFor[ListPowerZonesInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListPowerZonesInput) (*mcp.CallToolResult, any, error) {
		zones, err := api.ListPowerZones(ctx)
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(listText(zones, "power zones", (*wahoo.PowerZone).FormatSummary)), nil, nil
	}
}

func getPowerZoneHandler(api API) mcp.ToolHandlerFor[GetPowerZoneInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetPowerZoneInput) (*mcp.CallToolResult, any, error) {
		zone, err := api.GetPowerZone(ctx, input.PowerZoneID)
		if err != nil {
			return errorResult(err), nil, nil
		}

		return textResult(zone.FormatDetails()), nil, nil
	}
}

func analyzeWorkoutHandler(api API, analyzer Analyzer) mcp.ToolHandlerFor[AnalyzeWorkoutInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeWorkoutInput) (*mcp.CallToolResult, any, error) {
		workout, err := api.GetWorkout(ctx, input.WorkoutID)
		if err != nil {
			return errorResult(err), nil, nil
		}

		fitURL := fit.FileURL(workout.WorkoutSummary)
		if fitURL == "" {
			return errorResult(fmt.Errorf("workout %d has no FIT file to analyze", input.WorkoutID)), nil, nil
		}

		if !input.IncludeMap && !input.IncludeChart {
			analysis, err := analyzer.Analyze(ctx, fitURL)
			if err != nil {
				return errorResult(err), nil, nil
			}

			return textResult(analysisText(analysis)), nil, nil
		}

		analysis, records, err := analyzer.AnalyzeFull(ctx, fitURL)
		if err != nil {
			return errorResult(err), nil, nil
		}

		contents := []mcp.Content{&mcp.TextContent{Text: analysisText(analysis)}}

		if input.IncludeMap {
			html, err := fit.RouteMapHTML(records)
			if err != nil {
				return errorResult(err), nil, nil
			}

			if html != "" {
				encoded, err := fit.GzipBase64(html)
				if err != nil {
					return errorResult(err), nil, nil
				}

				contents = append(contents, &mcp.TextContent{
					Text: "Route map (gzipped base64 HTML):\n" + encoded,
				})
			}
		}

		if input.IncludeChart {
			html, err := fit.ElevationChartHTML(records)
			if err != nil {
				return errorResult(err), nil, nil
			}

			if html != "" {
				encoded, err := fit.GzipBase64(html)
				if err != nil {
					return errorResult(err), nil, nil
				}

				contents = append(contents, &mcp.TextContent{
					Text: "Elevation chart (gzipped base64 HTML):\n" + encoded,
				})
			}
		}

		return &mcp.CallToolResult{Content: contents}, nil, nil
	}
}

// --- Output formatting ---

// listText renders a list response: a count header and the entity
// summaries joined by blank lines, or a "none found" line.
func listText[T any](items []T, noun string, summary func(*T) string) string {
	if len(items) == 0 {
		return fmt.Sprintf("No %s found.", noun)
	}

	parts := make([]string, len(items))
	for i := range items {
		parts[i] = summary(&items[i])
	}

	return fmt.Sprintf("Found %d %s:\n\n%s", len(items), noun, strings.Join(parts, "\n\n"))
}

// formatPlanCreated renders the create_plan confirmation block.
func formatPlanCreated(created *wahoo.CreatePlanResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan created successfully!\n\n")
	fmt.Fprintf(&b, "Plan Details:\n")
	fmt.Fprintf(&b, "- ID: %d\n", created.ID)
	fmt.Fprintf(&b, "- Name: %s\n", created.Name)
	fmt.Fprintf(&b, "- External ID: %s\n", created.ExternalID)
	fmt.Fprintf(&b, "- User ID: %d\n", created.UserID)
	fmt.Fprintf(&b, "- Created: %s\n", created.CreatedAt)
	fmt.Fprintf(&b, "- Updated: %s\n", created.UpdatedAt)
	fmt.Fprintf(&b, "- File URL: %s", created.File.URL)

	if created.Description != "" {
		fmt.Fprintf(&b, "\n- Description: %s", created.Description)
	}

	return b.String()
}

func analysisText(a *fit.Analysis) string {
	if text := a.Format(); text != "" {
		return text
	}

	return "No analyzable records found in FIT file."
}

// textResult builds a successful CallToolResult with one text content.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult renders a failure as a tool error result rather than a
// protocol error. API status failures keep their status line; everything
// else gets an "Error: " prefix.
func errorResult(err error) *mcp.CallToolResult {
	text := "Error: " + err.Error()

	var statusErr *wahoo.StatusError
	if errors.As(err, &statusErr) {
		text = statusErr.Error()
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
