// Package bugzilla implements the identity lookup against the Bugzilla REST
// API. It satisfies clean.Lookup; the core packages only ever see the
// interface, never this transport.
package bugzilla

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/modir/modir/internal/directory"
)

const userAgent = "modir"

// ErrNotFound is returned when Bugzilla has no user for the requested ID.
var ErrNotFound = errors.New("bugzilla: user not found")

// Client is a thin Bugzilla REST API client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client for the given REST base URL. The API key may
// be empty for anonymous access; Bugzilla then redacts some fields.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{},
	}
}

// bugzillaUser mirrors the fields of the REST user payload modir cares
// about.
type bugzillaUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Nick     string `json:"nick"`
	Email    string `json:"email"`
}

type userResponse struct {
	Users []bugzillaUser `json:"users"`
}

// UserByID fetches one user record. Cancellation and deadlines come from
// the caller's context.
func (c *Client) UserByID(ctx context.Context, id int) (directory.Person, error) {
	query := url.Values{
		"ids":            {strconv.Itoa(id)},
		"include_fields": {"id,name,real_name,nick,email"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user?"+query.Encode(), nil)
	if err != nil {
		return directory.Person{}, fmt.Errorf("building bugzilla request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-BUGZILLA-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return directory.Person{}, fmt.Errorf("querying bugzilla user %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return directory.Person{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return directory.Person{}, fmt.Errorf("bugzilla user %d: unexpected status %d", id, resp.StatusCode)
	}

	var payload userResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return directory.Person{}, fmt.Errorf("decoding bugzilla response for user %d: %w", id, err)
	}
	if len(payload.Users) == 0 {
		return directory.Person{}, ErrNotFound
	}

	u := payload.Users[0]
	return directory.Person{
		BMOID:    u.ID,
		Name:     u.Name,
		RealName: u.RealName,
		Nick:     u.Nick,
		Email:    u.Email,
	}, nil
}
