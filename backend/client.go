package backend

import (
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/mitti-dashboard/gateway"
	"github.com/jrsteele09/mitti-dashboard/users"
)

// Endpoint paths on the prediction backend.
const (
	PathLogin          = "/api/auth/login"
	PathRegister       = "/api/auth/register"
	PathLogout         = "/api/auth/logout"
	PathMe             = "/api/auth/me"
	PathHealth         = "/health"
	PathPredictCrop    = "/predict-crop"
	PathPredictDisease = "/predict-disease"
	PathIrrigation     = "/irrigation-schedule"
	PathPestControl    = "/pest-control"
	PathCropPatterns   = "/crop-patterns"
	PathFarmerInsights = "/farmer-insights"
)

// Client is the typed surface of the prediction backend. Every call goes
// through the gateway pipeline.
type Client struct {
	api *gateway.Client
}

func New(api *gateway.Client) *Client {
	return &Client{api: api}
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.api.Do(ctx, http.MethodPost, PathLogin, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.api.Do(ctx, http.MethodPost, PathRegister, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend the given credential is done with. It is
// best-effort; callers ignore the error.
func (c *Client) Logout(ctx context.Context, credential string) error {
	return c.api.Do(gateway.WithCredential(ctx, credential), http.MethodPost, PathLogout, nil, nil)
}

// Me fetches the profile for the stored credential.
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	var out users.User
	if err := c.api.Do(ctx, http.MethodGet, PathMe, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.api.Do(ctx, http.MethodGet, PathHealth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PredictCrop(ctx context.Context, req CropPredictionRequest) (*CropPredictionResponse, error) {
	var out CropPredictionResponse
	if err := c.api.Do(ctx, http.MethodPost, PathPredictCrop, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PredictDisease(ctx context.Context, filename string, image io.Reader) (*DiseasePredictionResponse, error) {
	var out DiseasePredictionResponse
	if err := c.api.Upload(ctx, PathPredictDisease, "file", filename, image, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) IrrigationSchedule(ctx context.Context, req IrrigationRequest) (*IrrigationResponse, error) {
	var out IrrigationResponse
	if err := c.api.Do(ctx, http.MethodPost, PathIrrigation, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PestControl(ctx context.Context, filename string, image io.Reader) (*PestControlResponse, error) {
	var out PestControlResponse
	if err := c.api.Upload(ctx, PathPestControl, "file", filename, image, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CropPatterns(ctx context.Context) ([]CropPattern, error) {
	var out CropPatternsResponse
	if err := c.api.Do(ctx, http.MethodGet, PathCropPatterns, nil, &out); err != nil {
		return nil, err
	}
	return out.Patterns, nil
}

func (c *Client) FarmerInsights(ctx context.Context) (*FarmerInsights, error) {
	var out FarmerInsights
	if err := c.api.Do(ctx, http.MethodGet, PathFarmerInsights, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
