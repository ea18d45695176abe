package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rbsteinm/SmartMap2/entity"
)

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Service = (*Client)(nil)

// NewClient constructs a Client against baseURL. A nil httpClient falls back
// to a 30 s timeout default.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

func (c *Client) UserInfo(ctx context.Context, id int64) (*entity.UserSnapshot, error) {
	var u entity.UserSnapshot
	if err := c.getJSON(ctx, fmt.Sprintf("/api/users/%d", id), "get user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UsersInfo(ctx context.Context, ids []int64) ([]entity.UserSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out struct {
		Users []entity.UserSnapshot `json:"users"`
	}
	if err := c.postJSON(ctx, "/api/users/batch", "batch users", idsPayload{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) FindUsers(ctx context.Context, query string) ([]entity.UserSnapshot, error) {
	var out struct {
		Users []entity.UserSnapshot `json:"users"`
	}
	path := "/api/users/search?q=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, "find users", &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) FriendsPositions(ctx context.Context) ([]entity.UserSnapshot, error) {
	var out struct {
		Users []entity.UserSnapshot `json:"users"`
	}
	if err := c.getJSON(ctx, "/api/positions", "friends positions", &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) EventInfo(ctx context.Context, id int64) (*entity.EventSnapshot, error) {
	var e entity.EventSnapshot
	if err := c.getJSON(ctx, fmt.Sprintf("/api/events/%d", id), "get event", &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) EventsInfo(ctx context.Context, ids []int64) ([]entity.EventSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out struct {
		Events []entity.EventSnapshot `json:"events"`
	}
	if err := c.postJSON(ctx, "/api/events/batch", "batch events", idsPayload{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *Client) PublicEvents(ctx context.Context, lat, lon, radius float64) ([]int64, error) {
	var out struct {
		EventIDs []int64 `json:"eventIds"`
	}
	path := fmt.Sprintf("/api/events/near?latitude=%f&longitude=%f&radius=%f", lat, lon, radius)
	if err := c.getJSON(ctx, path, "near events", &out); err != nil {
		return nil, err
	}
	return out.EventIDs, nil
}

func (c *Client) InviteFriend(ctx context.Context, id int64) error {
	return c.postJSON(ctx, fmt.Sprintf("/api/users/%d/invite", id), "invite friend", nil, nil)
}

func (c *Client) AcceptInvitation(ctx context.Context, id int64) error {
	return c.postJSON(ctx, fmt.Sprintf("/api/invitations/%d/accept", id), "accept invitation", nil, nil)
}

func (c *Client) DeclineInvitation(ctx context.Context, id int64) error {
	return c.postJSON(ctx, fmt.Sprintf("/api/invitations/%d/decline", id), "decline invitation", nil, nil)
}

type idsPayload struct {
	IDs []int64 `json:"ids"`
}

func (c *Client) getJSON(ctx context.Context, path, op string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return wrapTransport(op, err)
	}
	return c.do(req, op, out)
}

func (c *Client) postJSON(ctx context.Context, path, op string, in, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var body *bytes.Buffer
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return wrapTransport(op, err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return wrapTransport(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTransport(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrapTransport(op, err)
	}
	return nil
}
