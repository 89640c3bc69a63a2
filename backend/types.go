package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/mitti-dashboard/users"
	"golang.org/x/oauth2"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest always carries full_name; an absent name is sent as null.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *users.User `json:"user"`
}

// Token converts the response to an oauth2 token. Expiry is read from the
// token's exp claim when it is a JWT; the signature is not checked here.
func (r AuthResponse) Token() *oauth2.Token {
	tok := &oauth2.Token{AccessToken: r.AccessToken, TokenType: r.TokenType}
	if exp, ok := TokenExpiry(r.AccessToken); ok {
		tok.Expiry = exp
	}
	return tok
}

// TokenExpiry reads the exp claim of a JWT credential without verifying it.
// Opaque credentials report ok=false.
func TokenExpiry(credential string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

type HealthResponse struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
}

type CropPredictionRequest struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

type CropPredictionResponse struct {
	RecommendedCrop  string   `json:"recommended_crop"`
	Confidence       float64  `json:"confidence"`
	AlternativeCrops []string `json:"alternative_crops"`
	Reasoning        string   `json:"reasoning"`
}

type DiseasePredictionResponse struct {
	Disease       string  `json:"disease"`
	Confidence    float64 `json:"confidence"`
	Severity      string  `json:"severity"`
	AffectedPlant string  `json:"affected_plant"`
}

type IrrigationRequest struct {
	CropType     string  `json:"crop_type"`
	SoilMoisture float64 `json:"soil_moisture"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Rainfall     float64 `json:"rainfall"`
	CropStage    string  `json:"crop_stage"`
}

type IrrigationResponse struct {
	IrrigationNeeded bool     `json:"irrigation_needed"`
	WaterAmount      float64  `json:"water_amount"`
	Schedule         string   `json:"schedule"`
	NextIrrigation   string   `json:"next_irrigation"`
	Reasoning        string   `json:"reasoning"`
	Tips             []string `json:"tips"`
}

type PestControlResponse struct {
	Disease               string   `json:"disease"`
	Confidence            float64  `json:"confidence"`
	Severity              string   `json:"severity"`
	ControlMeasures       []string `json:"control_measures"`
	OrganicSolutions      []string `json:"organic_solutions"`
	ChemicalSolutions     []string `json:"chemical_solutions"`
	PreventiveMeasures    []string `json:"preventive_measures"`
	EstimatedRecoveryTime string   `json:"estimated_recovery_time"`
}

type CropPattern struct {
	Season       string   `json:"season"`
	PopularCrops []string `json:"popular_crops"`
	SuccessRate  float64  `json:"success_rate"`
}

type CropPatternsResponse struct {
	Patterns []CropPattern `json:"patterns"`
}

type SeasonalRecommendations struct {
	CurrentSeason    string            `json:"current_season"`
	RecommendedCrops []string          `json:"recommended_crops"`
	MarketPrices     map[string]string `json:"market_prices"`
}

type FarmerInsights struct {
	SeasonalRecommendations SeasonalRecommendations `json:"seasonal_recommendations"`
	CommonDiseases          []string                `json:"common_diseases"`
	IrrigationTips          []string                `json:"irrigation_tips"`
	PestAlerts              []string                `json:"pest_alerts"`
}
