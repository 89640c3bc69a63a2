package server

import "github.com/jrsteele09/mitti-dashboard/auth"

// Route path constants
const (
	RouteHome     = "/"
	RouteLogin    = auth.LoginPath
	RouteRegister = "/register"
	RouteLogout   = "/logout"

	RouteDashboard = "/dashboard"

	RouteCropRecommendation  = "/crop-recommendation"
	RouteIrrigationScheduler = "/irrigation-scheduler"
	RouteDiseaseDetection    = "/disease-detection"
	RoutePestControl         = "/pest-control"
	RouteAbout               = "/about"

	RouteHealthz = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
