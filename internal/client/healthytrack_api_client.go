package client

import (
	"HealthyTrack-Dashboard/internal/model"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"moul.io/http2curl"
)

// HealthyTrackClient talks to the upstream HealthyTrack JSON API. The
// upstream authenticates with a session cookie, so one client holds one
// user's session in its jar.
type HealthyTrackClient struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     *zap.Logger
}

type rawResponse struct {
	StatusCode int
	Body       []byte
}

func (r *rawResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewHealthyTrackClient(baseURL string, timeoutSec int, logger *zap.Logger) (*HealthyTrackClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthyTrackClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		logger: logger.Named("upstream"),
	}, nil
}

func (c *HealthyTrackClient) logRequest(req *http.Request, op string) {
	if !c.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	cmd, err := http2curl.GetCurlCommand(req)
	if err != nil {
		c.logger.Debug("could not render request as curl", zap.String("op", op), zap.Error(err))
		return
	}
	c.logger.Debug("upstream request", zap.String("op", op), zap.String("curl", cmd.String()))
}

// do sends one request and reads the whole body. Only transport failures are
// returned as errors; status handling is left to the caller.
func (c *HealthyTrackClient) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string) (*rawResponse, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.logRequest(req, op)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			c.logger.Warn("upstream request timed out",
				zap.String("op", op),
				zap.Duration("timeout", c.HTTPClient.Timeout))
		}
		return nil, &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.NetworkError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("upstream response",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)))

	return &rawResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

func (c *HealthyTrackClient) doJSON(ctx context.Context, op, method, path string, payload any) (*rawResponse, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode payload: %w", op, err)
		}
		body = bytes.NewReader(payloadBytes)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, nil, body, contentType)
}

// classify turns a non-success response into ErrAuthRequired for 401 and a
// RejectionError carrying the server's "error" field otherwise.
func classify(op string, resp *rawResponse) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, model.ErrAuthRequired)
	}
	return &model.RejectionError{
		StatusCode: resp.StatusCode,
		Message:    serverMessage(resp.Body),
		Body:       string(resp.Body),
	}
}

func serverMessage(body []byte) string {
	var errResp model.ErrorResponse
	if json.Unmarshal(body, &errResp) != nil {
		return ""
	}
	return errResp.Error
}

func (c *HealthyTrackClient) CurrentUser(ctx context.Context) (*model.CurrentUserResponse, error) {
	resp, err := c.do(ctx, "current_user", http.MethodGet, "/api/current_user", nil, nil, "")
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, classify("current_user", resp)
	}

	var user model.CurrentUserResponse
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode current user response: %w", err)
	}
	return &user, nil
}

func (c *HealthyTrackClient) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	return c.authenticate(ctx, "login", "/api/login", creds)
}

func (c *HealthyTrackClient) Signup(ctx context.Context, creds model.SignupCredentials) (*model.AuthResponse, error) {
	return c.authenticate(ctx, "signup", "/api/signup", creds)
}

// authenticate reads the body whatever the status: a wrong password comes
// back as 401 with an "error" field, and that is a rejection, not a lost
// session.
func (c *HealthyTrackClient) authenticate(ctx context.Context, op, path string, payload any) (*model.AuthResponse, error) {
	resp, err := c.doJSON(ctx, op, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var authResp model.AuthResponse
	if err := json.Unmarshal(resp.Body, &authResp); err != nil {
		return nil, &model.RejectionError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if !authResp.Success {
		return nil, &model.RejectionError{
			StatusCode: resp.StatusCode,
			Message:    authResp.Error,
			Body:       string(resp.Body),
		}
	}
	return &authResp, nil
}

func (c *HealthyTrackClient) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, "logout", http.MethodPost, "/api/logout", nil, nil, "")
	if err != nil {
		return err
	}
	if !resp.ok() {
		return classify("logout", resp)
	}
	return nil
}

func (c *HealthyTrackClient) LogFood(ctx context.Context, payload model.MealPayload) (*model.MealRecord, error) {
	resp, err := c.doJSON(ctx, "log_food", http.MethodPost, "/api/log_food", payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, classify("log_food", resp)
	}

	var result model.LogFoodResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		if !resp.ok() {
			return nil, classify("log_food", resp)
		}
		return nil, fmt.Errorf("failed to decode log_food response: %w", err)
	}
	if !result.Saved {
		return nil, &model.RejectionError{
			StatusCode: resp.StatusCode,
			Message:    result.Error,
			Body:       string(resp.Body),
		}
	}
	if result.Record == nil {
		record := model.MealRecord{
			Name:      payload.Name,
			Calories:  payload.Calories,
			Protein:   payload.Protein,
			Carbs:     payload.Carbs,
			Fat:       payload.Fat,
			Quantity:  payload.Quantity,
			Source:    payload.Source,
			CreatedAt: payload.CreatedAt,
		}
		return &record, nil
	}
	return result.Record, nil
}

// DailySummary returns the totals for date (YYYY-MM-DD). A missing summary
// object reads as all zeros.
func (c *HealthyTrackClient) DailySummary(ctx context.Context, date string) (*model.Summary, error) {
	resp, err := c.do(ctx, "daily_summary", http.MethodGet, "/api/daily_summary", url.Values{"date": {date}}, nil, "")
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, classify("daily_summary", resp)
	}

	var result model.DailySummaryResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode daily_summary response: %w", err)
	}
	if result.Summary == nil {
		return &model.Summary{}, nil
	}
	return result.Summary, nil
}

func (c *HealthyTrackClient) GetEntries(ctx context.Context, date string) ([]model.MealRecord, error) {
	resp, err := c.do(ctx, "get_entries", http.MethodGet, "/api/get_entries", url.Values{"date": {date}}, nil, "")
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, classify("get_entries", resp)
	}

	var result model.EntriesResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode get_entries response: %w", err)
	}
	return result.Entries, nil
}

// UploadPhoto posts the image as multipart field "photo".
func (c *HealthyTrackClient) UploadPhoto(ctx context.Context, filename string, image io.Reader) (*model.PhotoUploadResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		return nil, fmt.Errorf("upload_photo: failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("upload_photo: failed to copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("upload_photo: failed to finish form: %w", err)
	}

	resp, err := c.do(ctx, "upload_photo", http.MethodPost, "/api/upload_photo", nil, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, classify("upload_photo", resp)
	}

	var result model.PhotoUploadResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		if !resp.ok() {
			return nil, classify("upload_photo", resp)
		}
		return nil, fmt.Errorf("failed to decode upload_photo response: %w", err)
	}
	if !result.Saved {
		return nil, &model.RejectionError{
			StatusCode: resp.StatusCode,
			Message:    result.Error,
			Body:       string(resp.Body),
		}
	}
	return &result, nil
}

// FitnessChat returns the coach's reply. The reply may contain HTML.
func (c *HealthyTrackClient) FitnessChat(ctx context.Context, message string) (string, error) {
	resp, err := c.doJSON(ctx, "fitness_chat", http.MethodPost, "/api/fitness_chat", model.ChatRequest{Message: message})
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", classify("fitness_chat", resp)
	}

	var result model.ChatResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("failed to decode fitness_chat response: %w", err)
	}
	return result.Response, nil
}
