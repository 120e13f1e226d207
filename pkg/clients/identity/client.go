package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// Calls to the identity service carry a fixed client-side timeout and are
// never retried.
const requestTimeout = 5 * time.Second

var ErrUserNotFound = errors.New("user not found")

type User struct {
	UUID string `json:"uuid"`
	Role string `json:"role"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	log logger.Logger
}

func NewClient(log logger.Logger, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
	}
}

// UserByToken resolves the bearer token to a user and its role.
func (c *Client) UserByToken(ctx context.Context, token string) (*User, error) {
	const op = "identity.Client.UserByToken"

	reqURL, err := url.JoinPath(c.baseURL, "/users/me")
	if err != nil {
		return nil, fmt.Errorf("%s: build url: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnauthorized:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var user User
	if err = json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	return &user, nil
}
