// Package debrid implements the acquisition service HTTP client.
//
// The API key is sent only as a form or query value on acquisition service
// calls. It is never attached as an Authorization header, so routing requests
// through a relay cannot leak the credential to an intermediate hop.
package debrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/pkg/httputil"
)

const (
	defaultBaseURL = "https://api.alldebrid.com/v4"
	agentName      = "magnetarr"

	// API error codes we act on
	codeInvalidID   = "MAGNET_INVALID_ID"
	codeInvalidKey  = "AUTH_BAD_APIKEY"
	codeMissingKey  = "AUTH_MISSING_APIKEY"
	codeUserBanned  = "AUTH_USER_BANNED"
	codeMustPremium = "MAGNET_MUST_BE_PREMIUM"
)

// Status codes reported by the magnet status endpoint.
const (
	StatusReady = 4
)

// APIError is a structured error returned by the acquisition service.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("debrid API error: %s - %s", e.Code, e.Message)
}

// IsUnknownMagnet reports whether err means the remote ID is no longer known
// to the acquisition service.
func IsUnknownMagnet(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == codeInvalidID
	}
	return false
}

// IsAuthError reports whether err is a credential problem rather than a
// transient failure.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case codeInvalidKey, codeMissingKey, codeUserBanned, codeMustPremium:
			return true
		}
	}
	return false
}

// Magnet is the upload result for a single magnet.
type Magnet struct {
	ID    string
	Hash  string
	Name  string
	Size  int64
	Ready bool
}

// MagnetStatus is the polled state of a magnet on the acquisition service.
type MagnetStatus struct {
	ID         string
	Hash       string
	Name       string
	Size       int64
	StatusText string
	StatusCode int
	// Progress as reported by the service. May be a fraction in [0,1] or a
	// percentage in [0,100] depending on the endpoint version.
	Progress float64
	Speed    int64
	Seeders  int
	Links    []FileLink
}

// FileLink is a downloadable file attached to a ready magnet.
type FileLink struct {
	Link     string
	Filename string
	Size     int64
}

// UnlockedLink is a direct download produced by the link unlock endpoint.
type UnlockedLink struct {
	Link     string
	Filename string
	Filesize int64
}

// Client talks to the acquisition service API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client using a direct HTTP connection.
func NewClient() *Client {
	return &Client{
		httpClient: httputil.NewHTTPClient(60 * time.Second),
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithRelay creates a client that routes every request through the
// relay endpoint. An empty relayURL falls back to a direct connection.
func NewClientWithRelay(relayURL string, timeout time.Duration) *Client {
	if relayURL == "" {
		return &Client{
			httpClient: httputil.NewHTTPClient(timeout),
			baseURL:    defaultBaseURL,
		}
	}
	return &Client{
		httpClient: httputil.NewRelayClient(relayURL, timeout),
		baseURL:    defaultBaseURL,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// UploadMagnet submits a magnet URI and returns the assigned remote ID.
// Transient failures are retried a few times before giving up; API errors
// are returned immediately.
func (c *Client) UploadMagnet(ctx context.Context, apiKey, magnetURI string) (*Magnet, error) {
	var magnet *Magnet
	err := retry.Do(
		func() error {
			result, err := c.uploadMagnetOnce(ctx, apiKey, magnetURI)
			if err != nil {
				return err
			}
			magnet = result
			return nil
		},
		retry.Attempts(constants.MaxUploadAttempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// API-level rejections will not succeed on retry.
			var apiErr *APIError
			return !errors.As(err, &apiErr)
		}),
	)
	if err != nil {
		return nil, err
	}
	return magnet, nil
}

func (c *Client) uploadMagnetOnce(ctx context.Context, apiKey, magnetURI string) (*Magnet, error) {
	formData := url.Values{}
	formData.Set("agent", agentName)
	formData.Set("apikey", apiKey)
	formData.Add("magnets[]", magnetURI)

	endpoint := fmt.Sprintf("%s/magnet/upload", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var data struct {
		Magnets []struct {
			ID    int64  `json:"id"`
			Hash  string `json:"hash"`
			Name  string `json:"name"`
			Size  int64  `json:"size"`
			Ready bool   `json:"ready"`
			Error *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error,omitempty"`
		} `json:"magnets"`
	}
	if err := c.decodeResponse(resp, &data); err != nil {
		return nil, err
	}
	if len(data.Magnets) == 0 {
		return nil, fmt.Errorf("upload returned no magnets")
	}

	m := data.Magnets[0]
	if m.Error != nil {
		return nil, &APIError{Code: m.Error.Code, Message: m.Error.Message}
	}

	return &Magnet{
		ID:    fmt.Sprintf("%d", m.ID),
		Hash:  strings.ToLower(m.Hash),
		Name:  m.Name,
		Size:  m.Size,
		Ready: m.Ready,
	}, nil
}

// GetStatus fetches the current state of a magnet by remote ID.
func (c *Client) GetStatus(ctx context.Context, apiKey, remoteID string) (*MagnetStatus, error) {
	var data struct {
		Magnets struct {
			ID         int64   `json:"id"`
			Hash       string  `json:"hash"`
			Filename   string  `json:"filename"`
			Size       int64   `json:"size"`
			Status     string  `json:"status"`
			StatusCode int     `json:"statusCode"`
			Downloaded int64   `json:"downloaded"`
			Progress   float64 `json:"progress"`
			Speed      int64   `json:"downloadSpeed"`
			Seeders    int     `json:"seeders"`
			Links      []struct {
				Link     string `json:"link"`
				Filename string `json:"filename"`
				Size     int64  `json:"size"`
			} `json:"links"`
		} `json:"magnets"`
	}

	err := c.get(ctx, "/magnet/status", apiKey, map[string]string{"id": remoteID}, &data)
	if err != nil {
		return nil, err
	}

	m := data.Magnets
	status := &MagnetStatus{
		ID:         fmt.Sprintf("%d", m.ID),
		Hash:       strings.ToLower(m.Hash),
		Name:       m.Filename,
		Size:       m.Size,
		StatusText: m.Status,
		StatusCode: m.StatusCode,
		Progress:   m.Progress,
		Speed:      m.Speed,
		Seeders:    m.Seeders,
	}
	// Some API versions omit the progress field; derive it from byte counts.
	if status.Progress == 0 && m.Size > 0 && m.Downloaded > 0 {
		status.Progress = float64(m.Downloaded) / float64(m.Size)
	}
	for _, link := range m.Links {
		status.Links = append(status.Links, FileLink{
			Link:     link.Link,
			Filename: link.Filename,
			Size:     link.Size,
		})
	}
	return status, nil
}

// CheckMagnets reports which of the given hashes are already cached on the
// acquisition service. The result maps lowercase hashes to cached state;
// hashes missing from the response are treated as not cached.
func (c *Client) CheckMagnets(ctx context.Context, apiKey string, hashes []string) (map[string]bool, error) {
	formData := url.Values{}
	formData.Set("agent", agentName)
	formData.Set("apikey", apiKey)
	for _, hash := range hashes {
		formData.Add("magnets[]", hash)
	}

	endpoint := fmt.Sprintf("%s/magnet/instant", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var data struct {
		Magnets []struct {
			Hash    string `json:"hash"`
			Magnet  string `json:"magnet"`
			Instant bool   `json:"instant"`
		} `json:"magnets"`
	}
	if err := c.decodeResponse(resp, &data); err != nil {
		return nil, err
	}

	cached := make(map[string]bool, len(data.Magnets))
	for _, m := range data.Magnets {
		hash := m.Hash
		if hash == "" {
			hash = m.Magnet
		}
		cached[strings.ToLower(hash)] = m.Instant
	}
	return cached, nil
}

// UnlockLink converts a hoster link from a ready magnet into a direct
// download URL.
func (c *Client) UnlockLink(ctx context.Context, apiKey, link string) (*UnlockedLink, error) {
	var data struct {
		Link     string `json:"link"`
		Filename string `json:"filename"`
		Filesize int64  `json:"filesize"`
	}
	err := c.get(ctx, "/link/unlock", apiKey, map[string]string{"link": link}, &data)
	if err != nil {
		return nil, err
	}
	return &UnlockedLink{
		Link:     data.Link,
		Filename: data.Filename,
		Filesize: data.Filesize,
	}, nil
}

// DeleteMagnet removes a magnet from the acquisition service.
func (c *Client) DeleteMagnet(ctx context.Context, apiKey, remoteID string) error {
	var data struct {
		Message string `json:"message"`
	}
	return c.get(ctx, "/magnet/delete", apiKey, map[string]string{"id": remoteID}, &data)
}

func (c *Client) get(ctx context.Context, path, apiKey string, extraParams map[string]string, out interface{}) error {
	params := url.Values{}
	params.Set("agent", agentName)
	params.Set("apikey", apiKey)
	for key, value := range extraParams {
		params.Set(key, value)
	}

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return c.decodeResponse(resp, out)
}

func (c *Client) decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Status != "success" {
		if envelope.Error != nil {
			return &APIError{Code: envelope.Error.Code, Message: envelope.Error.Message}
		}
		return fmt.Errorf("debrid API error: %s", envelope.Status)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
