package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/jrsteele09/mitti-dashboard/guard"
	"github.com/rs/zerolog/log"
)

// DashboardData is the farmer dashboard model.
type DashboardData struct {
	Insights      *backend.FarmerInsights
	Patterns      []backend.CropPattern
	SessionExpiry time.Time
}

// DashboardHandler renders the guarded farmer dashboard. Insights and crop
// patterns are fetched in parallel.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var (
			wg          sync.WaitGroup
			data        DashboardData
			insightsErr error
			patternsErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			data.Insights, insightsErr = s.api.FarmerInsights(r.Context())
		}()
		go func() {
			defer wg.Done()
			data.Patterns, patternsErr = s.api.CropPatterns(r.Context())
		}()
		wg.Wait()

		if s.followNavigation(w, r, insightsErr, patternsErr) {
			return
		}
		// the session may have ended while the data was loading
		if guard.Decide(s.session.Status()) != guard.Allow {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		page := PageData{}
		if insightsErr != nil || patternsErr != nil {
			log.Warn().AnErr("insights", insightsErr).AnErr("patterns", patternsErr).Msg("Failed to load dashboard data")
			page.Error = "Failed to load dashboard data"
		}
		if exp, ok := backend.TokenExpiry(s.session.Snapshot().Credential); ok {
			data.SessionExpiry = exp
		}
		page.Data = data
		s.render(w, r, pageDashboard, http.StatusOK, page)
	}
}
