package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const userAgent = "gitlab-relay"

// Client is a minimal GitLab API client authenticated with a private token.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given API endpoint,
// e.g. http://gitlab.example.com/api/v3.
func NewClient(endpoint, privateToken string) *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		token:      privateToken,
		httpClient: &http.Client{},
	}
}

// SetEndpoint overrides the API endpoint for testing purposes.
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = strings.TrimSuffix(endpoint, "/")
}

// WithToken returns a client acting with a different private token, sharing
// endpoint and transport. Used to act as a user whose token the bot stores.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		endpoint:   c.endpoint,
		token:      token,
		httpClient: c.httpClient,
	}
}

// User is the authenticated GitLab user.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// CurrentUser fetches the user the token authenticates as.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gitlab user API error %d: %s", resp.StatusCode, string(raw))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &user, nil
}
