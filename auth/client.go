package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client talks to a hosted identity service over REST. The service token
// authenticates this backend to the identity service.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type identityResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Code  string `json:"code,omitempty"`
}

func (c *Client) CreateIdentity(ctx context.Context, email, password string) (*Identity, error) {
	return c.post(ctx, "/identities", email, password)
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	return c.post(ctx, "/identities/authenticate", email, password)
}

func (c *Client) post(ctx context.Context, path, email, password string) (*Identity, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var out identityResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("identity service returned %d: %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		logrus.Warnf("identity service %s returned %d (code=%s)", path, resp.StatusCode, out.Code)
		return nil, NewError(out.Code)
	}

	return &Identity{UID: out.UID, Email: out.Email}, nil
}
