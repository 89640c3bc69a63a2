package backendfake

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/mitti-dashboard/backend"
)

const maxUpload = 10 << 20

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, backend.HealthResponse{Status: "Mittimantra backend running", ModelsLoaded: true})
}

func (s *Server) predictCrop(w http.ResponseWriter, r *http.Request) {
	var req backend.CropPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid crop prediction input")
		return
	}
	if req.PH < 0 || req.PH > 14 {
		writeDetail(w, http.StatusBadRequest, "pH must be between 0 and 14")
		return
	}

	resp := backend.CropPredictionResponse{
		RecommendedCrop:  "maize",
		Confidence:       0.82,
		AlternativeCrops: []string{"cotton", "soybean"},
		Reasoning:        "Moderate rainfall and balanced NPK suit maize.",
	}
	if req.Rainfall > 200 && req.Humidity > 75 {
		resp = backend.CropPredictionResponse{
			RecommendedCrop:  "rice",
			Confidence:       0.91,
			AlternativeCrops: []string{"jute", "coconut"},
			Reasoning:        "High rainfall and humidity favor paddy.",
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) irrigation(w http.ResponseWriter, r *http.Request) {
	var req backend.IrrigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid irrigation input")
		return
	}

	needed := req.SoilMoisture < 40 && req.Rainfall < 10
	resp := backend.IrrigationResponse{
		IrrigationNeeded: needed,
		Schedule:         "No irrigation required",
		NextIrrigation:   "Check again in 3 days",
		Reasoning:        "Soil moisture is adequate.",
		Tips:             []string{"Irrigate early morning or late evening", "Mulch to retain moisture"},
	}
	if needed {
		resp.WaterAmount = 25.5
		resp.Schedule = "Irrigate today"
		resp.NextIrrigation = "In 2 days"
		resp.Reasoning = "Low soil moisture and little rain during " + req.CropStage + " stage of " + req.CropType + "."
	}
	writeJSON(w, http.StatusOK, resp)
}

func readImage(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeDetail(w, http.StatusBadRequest, "No file uploaded")
		return false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "No file uploaded")
		return false
	}
	defer file.Close()
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeDetail(w, http.StatusBadRequest, "File must be an image")
		return false
	}
	return true
}

func (s *Server) predictDisease(w http.ResponseWriter, r *http.Request) {
	if !readImage(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, backend.DiseasePredictionResponse{
		Disease:       "Tomato Early Blight",
		Confidence:    0.88,
		Severity:      "Moderate",
		AffectedPlant: "Tomato",
	})
}

func (s *Server) pestControl(w http.ResponseWriter, r *http.Request) {
	if !readImage(w, r) {
		return
	}
	organic := []string{"Remove and destroy infected plant parts", "Apply neem oil"}
	chemical := []string{"Apply chlorothalonil as directed", "Rotate fungicide groups"}
	writeJSON(w, http.StatusOK, backend.PestControlResponse{
		Disease:               "Tomato Early Blight",
		Confidence:            0.88,
		Severity:              "Moderate",
		ControlMeasures:       append(append([]string{}, organic...), chemical...),
		OrganicSolutions:      organic,
		ChemicalSolutions:     chemical,
		PreventiveMeasures:    []string{"Rotate crops", "Avoid overhead watering"},
		EstimatedRecoveryTime: "2-3 weeks",
	})
}

func (s *Server) cropPatterns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, backend.CropPatternsResponse{Patterns: []backend.CropPattern{
		{Season: "Kharif", PopularCrops: []string{"rice", "maize", "cotton"}, SuccessRate: 85},
		{Season: "Rabi", PopularCrops: []string{"wheat", "mustard", "chickpea"}, SuccessRate: 88},
		{Season: "Zaid", PopularCrops: []string{"watermelon", "cucumber", "muskmelon"}, SuccessRate: 80},
	}})
}

func (s *Server) farmerInsights(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, backend.FarmerInsights{
		SeasonalRecommendations: backend.SeasonalRecommendations{
			CurrentSeason:    "Kharif",
			RecommendedCrops: []string{"rice", "maize", "soybean", "cotton"},
			MarketPrices: map[string]string{
				"rice":    "₹2000-2500/quintal",
				"maize":   "₹1800-2200/quintal",
				"soybean": "₹4000-4500/quintal",
			},
		},
		CommonDiseases: []string{"Early Blight", "Powdery Mildew", "Leaf Rust"},
		IrrigationTips: []string{"Use drip irrigation where possible"},
		PestAlerts:     []string{"Fall armyworm reported in maize belts"},
	})
}
