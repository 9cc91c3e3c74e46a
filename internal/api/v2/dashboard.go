// dashboard.go: synthetic dashboard feeds for areas, density and incidents
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Bounds for dashboard query parameters.
const (
	maxDensityHours  = 168 // one week of hourly samples
	maxIncidentCount = 50
)

// initDashboardRoutes registers the dashboard feed routes
func (c *Controller) initDashboardRoutes() {
	c.Group.GET("/dashboard/areas", c.GetDashboardAreas)
	c.Group.GET("/dashboard/density", c.GetDashboardDensity)
	c.Group.GET("/dashboard/incidents", c.GetDashboardIncidents)
}

// GetDashboardAreas returns the current per-area occupancy snapshot.
func (c *Controller) GetDashboardAreas(ctx echo.Context) error {
	if stats, ok := c.Scheduler.Areas(); ok {
		return ctx.JSON(http.StatusOK, stats)
	}
	// Cache miss, generate directly
	return ctx.JSON(http.StatusOK, c.Generator.AreaStats())
}

// GetDashboardDensity returns the hourly crowd density time series. A
// non-default hours value bypasses the cached snapshot.
func (c *Controller) GetDashboardDensity(ctx echo.Context) error {
	hours := c.Settings.Realtime.Dashboard.DensityHours
	if hours <= 0 {
		hours = 24
	}

	requested := hours
	if v := ctx.QueryParam("hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxDensityHours {
			return c.HandleError(ctx, err, "Invalid hours value", http.StatusBadRequest)
		}
		requested = parsed
	}

	if requested == hours {
		if samples, ok := c.Scheduler.Density(); ok {
			return ctx.JSON(http.StatusOK, samples)
		}
	}
	return ctx.JSON(http.StatusOK, c.Generator.HourlyDensityData(requested))
}

// GetDashboardIncidents returns recently flagged incidents. A non-default
// count value bypasses the cached snapshot.
func (c *Controller) GetDashboardIncidents(ctx echo.Context) error {
	count := c.Settings.Realtime.Dashboard.IncidentCount
	if count <= 0 {
		count = 5
	}

	requested := count
	if v := ctx.QueryParam("count"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxIncidentCount {
			return c.HandleError(ctx, err, "Invalid count value", http.StatusBadRequest)
		}
		requested = parsed
	}

	if requested == count {
		if incidents, ok := c.Scheduler.Incidents(); ok {
			return ctx.JSON(http.StatusOK, incidents)
		}
	}
	return ctx.JSON(http.StatusOK, c.Generator.RecentIncidents(requested))
}
