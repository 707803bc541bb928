package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"shellos-packages/internal/core/domain"
)

// Client talks to the remote auth collaborator. Both sign-in calls return
// the provider-assigned identity; the caller degrades to a local fallback
// identity when they fail.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

type signInResponse struct {
	LocalID string `json:"localId"`
}

func (c *Client) SignInAnonymous(ctx context.Context) (domain.Identity, error) {
	return c.signIn(ctx, "/v1/accounts:signInAnonymously", nil)
}

func (c *Client) SignInWithToken(ctx context.Context, token string) (domain.Identity, error) {
	payload := map[string]string{"token": token}
	return c.signIn(ctx, "/v1/accounts:signInWithToken", payload)
}

func (c *Client) signIn(ctx context.Context, path string, payload any) (domain.Identity, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("marshal sign-in payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.WithField("url", url).Debug("requesting identity")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign-in request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign-in returned status %d", resp.StatusCode)
	}

	var parsed signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode sign-in response: %w", err)
	}
	if parsed.LocalID == "" {
		return "", fmt.Errorf("sign-in response missing localId")
	}
	return domain.Identity(parsed.LocalID), nil
}
