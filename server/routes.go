package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAbout, ChainMiddleware(s.AboutHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Guarded
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// Prediction tools
	s.RegisterRouteHandler("GET "+RouteCropRecommendation, ChainMiddleware(s.CropRecommendationPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteCropRecommendation, ChainMiddleware(s.CropRecommendationHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteIrrigationScheduler, ChainMiddleware(s.IrrigationPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteIrrigationScheduler, ChainMiddleware(s.IrrigationHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteDiseaseDetection, ChainMiddleware(s.DiseaseDetectionPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteDiseaseDetection, ChainMiddleware(s.DiseaseDetectionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RoutePestControl, ChainMiddleware(s.PestControlPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RoutePestControl, ChainMiddleware(s.PestControlHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("GET "+RouteHealthz, ChainMiddleware(s.HealthzHandler(), s.RecoverMiddleware))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
