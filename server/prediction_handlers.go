package server

import (
	"io"
	"net/http"

	"github.com/jrsteele09/mitti-dashboard/backend"
)

const maxUploadSize = 10 << 20

var (
	cropFields       = []string{"nitrogen", "phosphorus", "potassium", "temperature", "humidity", "ph", "rainfall"}
	irrigationFields = []string{"soil_moisture", "temperature", "humidity", "rainfall"}
)

func (s *Server) CropRecommendationPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageCropRecommendation, http.StatusOK, PageData{})
	}
}

func (s *Server) CropRecommendationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		values, ok := formFloats(r.PostForm, cropFields...)
		if !ok {
			s.render(w, r, pageCropRecommendation, http.StatusBadRequest, PageData{Error: "Please enter a number for every field", Form: r.PostForm})
			return
		}

		result, err := s.api.PredictCrop(r.Context(), backend.CropPredictionRequest{
			Nitrogen:    values["nitrogen"],
			Phosphorus:  values["phosphorus"],
			Potassium:   values["potassium"],
			Temperature: values["temperature"],
			Humidity:    values["humidity"],
			PH:          values["ph"],
			Rainfall:    values["rainfall"],
		})
		s.renderResult(w, r, pageCropRecommendation, result, err, "Failed to get crop recommendation")
	}
}

func (s *Server) IrrigationPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageIrrigation, http.StatusOK, PageData{})
	}
}

func (s *Server) IrrigationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		values, ok := formFloats(r.PostForm, irrigationFields...)
		if !ok {
			s.render(w, r, pageIrrigation, http.StatusBadRequest, PageData{Error: "Please enter a number for every field", Form: r.PostForm})
			return
		}

		result, err := s.api.IrrigationSchedule(r.Context(), backend.IrrigationRequest{
			CropType:     r.PostForm.Get("crop_type"),
			SoilMoisture: values["soil_moisture"],
			Temperature:  values["temperature"],
			Humidity:     values["humidity"],
			Rainfall:     values["rainfall"],
			CropStage:    r.PostForm.Get("crop_stage"),
		})
		s.renderResult(w, r, pageIrrigation, result, err, "Failed to get irrigation schedule")
	}
}

func (s *Server) DiseaseDetectionPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageDiseaseDetection, http.StatusOK, PageData{})
	}
}

func (s *Server) DiseaseDetectionHandler() http.HandlerFunc {
	return s.imageHandler(pageDiseaseDetection, "Failed to detect disease", func(r *http.Request, filename string, image io.Reader) (any, error) {
		return s.api.PredictDisease(r.Context(), filename, image)
	})
}

func (s *Server) PestControlPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pagePestControl, http.StatusOK, PageData{})
	}
}

func (s *Server) PestControlHandler() http.HandlerFunc {
	return s.imageHandler(pagePestControl, "Failed to get pest control recommendations", func(r *http.Request, filename string, image io.Reader) (any, error) {
		return s.api.PestControl(r.Context(), filename, image)
	})
}

// imageHandler reads the uploaded "image" field and forwards it to predict.
func (s *Server) imageHandler(page, fallback string, predict func(r *http.Request, filename string, image io.Reader) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			s.render(w, r, page, http.StatusBadRequest, PageData{Error: "Please choose an image to upload"})
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			s.render(w, r, page, http.StatusBadRequest, PageData{Error: "Please choose an image to upload"})
			return
		}
		defer file.Close()

		result, err := predict(r, header.Filename, file)
		s.renderResult(w, r, page, result, err, fallback)
	}
}

// renderResult shows a prediction or its error. An authorization failure
// never shows up as a message; the handler follows the teardown navigation.
func (s *Server) renderResult(w http.ResponseWriter, r *http.Request, page string, result any, err error, fallback string) {
	if s.followNavigation(w, r, err) {
		return
	}
	if err != nil {
		s.render(w, r, page, http.StatusOK, PageData{Error: errorMessage(err, fallback), Form: r.PostForm})
		return
	}
	s.render(w, r, page, http.StatusOK, PageData{Data: result, Form: r.PostForm})
}
