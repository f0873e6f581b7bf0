package studybuddy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// Login authenticates with email + password and returns the new session.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("studybuddy: login: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return domain.Session{}, fmt.Errorf("studybuddy: login: %w", err)
	}

	resp, err := decodeObject[apiLoginResponse](body)
	if err != nil {
		return domain.Session{}, fmt.Errorf("studybuddy: login: %w", err)
	}

	c.log.DebugContext(ctx, "logged in", slog.String("role", resp.Role), slog.Int64("id", int64(resp.ID)))

	return domain.Session{
		Token: resp.AccessToken,
		Role:  domain.Role(resp.Role),
		ID:    int64(resp.ID),
		Email: creds.Email,
	}, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/register", nil, reg)
	if err != nil {
		return fmt.Errorf("studybuddy: register: %w", err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("studybuddy: register: %w", err)
	}
	return nil
}

// ListUsers returns every account (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]domain.AdminUser, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/auth/", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list users: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list users: %w", err)
	}
	items, err := decodeList[apiUser](body)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list users: %w", err)
	}

	users := make([]domain.AdminUser, 0, len(items))
	for _, it := range items {
		users = append(users, it.toDomain())
	}
	return users, nil
}

// CreateUser creates an account from the admin form.
func (c *Client) CreateUser(ctx context.Context, d domain.UserDraft) error {
	payload := apiUserRequest{Email: d.Email, Role: d.Role.String(), Password: d.Password}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/", nil, payload)
	if err != nil {
		return fmt.Errorf("studybuddy: create user: %w", err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("studybuddy: create user: %w", err)
	}
	return nil
}

// UpdateUser replaces an account's email and role; the password is only sent
// when the form carries a new one.
func (c *Client) UpdateUser(ctx context.Context, id int64, d domain.UserDraft) error {
	payload := apiUserRequest{Email: d.Email, Role: d.Role.String(), Password: d.Password}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/auth/"+strconv.FormatInt(id, 10), nil, payload)
	if err != nil {
		return fmt.Errorf("studybuddy: update user %d: %w", id, err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("studybuddy: update user %d: %w", id, err)
	}
	return nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	req, err := c.newJSONRequest(ctx, http.MethodDelete, "/auth/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		return fmt.Errorf("studybuddy: delete user %d: %w", id, err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("studybuddy: delete user %d: %w", id, err)
	}
	return nil
}
