package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Role returns the role stored in the account metadata at sign-up.
func (u User) Role() string {
	if v, ok := u.UserMetadata["role"].(string); ok {
		return v
	}
	return ""
}

func (u User) FullName() string {
	if v, ok := u.UserMetadata["full_name"].(string); ok {
		return v
	}
	return ""
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
	User         User      `json:"user"`
}

func (s *Session) stamp(now time.Time) {
	if s.ExpiresIn > 0 {
		s.ExpiresAt = now.Add(time.Duration(s.ExpiresIn) * time.Second)
	}
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var sess Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &sess)
	if err != nil {
		c.logger.Warn("Password sign-in failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	sess.stamp(time.Now())
	return &sess, nil
}

// Refresh trades a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrNoSession
	}
	var sess Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "",
		map[string]string{"refresh_token": refreshToken}, &sess)
	if err != nil {
		if isSessionGone(err) || isBadGrant(err) {
			return nil, fmt.Errorf("refresh rejected: %w", ErrNoSession)
		}
		return nil, err
	}
	sess.stamp(time.Now())
	return &sess, nil
}

// GetUser asks the platform whether accessToken still belongs to a live
// session. A token that is locally known to be expired short-circuits to
// ErrNoSession without a network call.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}
	if c.verifier != nil {
		if _, err := c.verifier.Verify(accessToken); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
		}
	}

	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		if isSessionGone(err) {
			return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
		}
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrNoSession
	}
	return &user, nil
}

// SignUp creates an auth account; metadata ends up in user_metadata.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata,
	}, &raw)
	if err != nil {
		return nil, err
	}

	// The platform answers with either a bare user or a session wrapping one,
	// depending on whether e-mail confirmation is enabled.
	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode sign-up response: %w", err)
	}
	if user.ID == "" {
		return nil, errors.New("sign-up response carried no user id")
	}
	return &user, nil
}

// SignOut revokes the session behind accessToken. An already dead session is
// not an error.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
	if err != nil && !isSessionGone(err) {
		return err
	}
	return nil
}

// DeleteUser invokes the serverless delete-user function on behalf of the
// caller identified by accessToken.
func (c *Client) DeleteUser(ctx context.Context, accessToken, userID string) error {
	path := "/functions/v1/" + url.PathEscape(c.deleteFunction)
	if err := c.do(ctx, http.MethodPost, path, accessToken, map[string]string{"user_id": userID}, nil); err != nil {
		return fmt.Errorf("delete auth account %s: %w", userID, err)
	}
	return nil
}

func isBadGrant(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}
