// Package clarifai calls the Clarifai v2 model outputs endpoint to run face detection.
package clarifai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusSuccess is the status code Clarifai reports for a successful prediction.
const StatusSuccess = 10000

const maxResponseBytes = 10 << 20

// ErrUnavailable wraps transport failures, timeouts and unreadable responses.
var ErrUnavailable = errors.New("clarifai unavailable")

type Config struct {
	BaseURL      string
	APIKey       string
	UserID       string
	AppID        string
	ModelID      string
	ModelVersion string
	Timeout      time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.ModelID == "" {
		return nil, errors.New("clarifai base url and model id are required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid clarifai base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Status is the provider-level outcome of a call.
type Status struct {
	Code        int    `json:"code"`
	Description string `json:"description,omitempty"`
	Details     string `json:"details,omitempty"`
}

// StatusError is returned when the provider answered with a non-success status code.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("clarifai status %d: %s %s", e.Status.Code, e.Status.Description, e.Status.Details)
}

// Result is a successful detection: the number of face regions found plus the
// provider response exactly as received.
type Result struct {
	Status  Status
	Regions int
	Raw     json.RawMessage
}

type userAppID struct {
	UserID string `json:"user_id,omitempty"`
	AppID  string `json:"app_id,omitempty"`
}

type image struct {
	URL string `json:"url"`
}

type inputData struct {
	Image image `json:"image"`
}

type input struct {
	Data inputData `json:"data"`
}

type outputsRequest struct {
	UserAppID *userAppID `json:"user_app_id,omitempty"`
	Inputs    []input    `json:"inputs"`
}

type outputsResponse struct {
	Status  *Status `json:"status"`
	Outputs []struct {
		Data struct {
			Regions []json.RawMessage `json:"regions"`
		} `json:"data"`
	} `json:"outputs"`
}

// DetectFaces submits imageURL to the configured model and version.
func (c *Client) DetectFaces(ctx context.Context, imageURL string) (*Result, error) {
	body, err := json.Marshal(c.newRequest(imageURL))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Key "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	var decoded outputsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Status == nil {
		return nil, fmt.Errorf("%w: http %d: unreadable response", ErrUnavailable, resp.StatusCode)
	}
	if decoded.Status.Code != StatusSuccess {
		return nil, &StatusError{Status: *decoded.Status}
	}

	// A missing outputs or regions field means nothing was detected.
	regions := 0
	if len(decoded.Outputs) > 0 {
		regions = len(decoded.Outputs[0].Data.Regions)
	}

	return &Result{
		Status:  *decoded.Status,
		Regions: regions,
		Raw:     json.RawMessage(raw),
	}, nil
}

func (c *Client) newRequest(imageURL string) outputsRequest {
	req := outputsRequest{
		Inputs: []input{{Data: inputData{Image: image{URL: imageURL}}}},
	}
	if c.cfg.UserID != "" || c.cfg.AppID != "" {
		req.UserAppID = &userAppID{UserID: c.cfg.UserID, AppID: c.cfg.AppID}
	}
	return req
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	path := "/v2/models/" + url.PathEscape(c.cfg.ModelID)
	if c.cfg.ModelVersion != "" {
		path += "/versions/" + url.PathEscape(c.cfg.ModelVersion)
	}
	return base + path + "/outputs"
}
