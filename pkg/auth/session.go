package auth

import (
	"context"
	"fmt"
	"io"

	"github.com/RigelNana/gazotheque/pkg/models"
)

// UserUpdater is the part of the API that patches the signed-in user.
type UserUpdater interface {
	UpdateUser(ctx context.Context, userID int64, patch map[string]any) (*models.User, error)
	UploadProfilePicture(ctx context.Context, userID int64, filename string, r io.Reader) (*models.User, error)
}

// Session is the read-only authentication context handed to controllers.
// Effects return a new Session rather than changing this one.
type Session struct {
	user   models.User
	token  string
	issuer *Issuer
}

func NewSession(user models.User, token string, issuer *Issuer) *Session {
	return &Session{user: user, token: token, issuer: issuer}
}

// CurrentUser returns a copy of the signed-in user.
func (s *Session) CurrentUser() *models.User {
	u := s.user
	return &u
}

func (s *Session) Token() string {
	return s.token
}

// UpdateUser patches the user upstream and returns a session carrying the
// updated identity and a freshly signed token.
func (s *Session) UpdateUser(ctx context.Context, api UserUpdater, patch map[string]any) (*Session, error) {
	updated, err := api.UpdateUser(ctx, s.user.UserID, patch)
	if err != nil {
		return nil, err
	}
	return s.renew(updated)
}

// UpdatePicture uploads a new profile picture for the signed-in user.
func (s *Session) UpdatePicture(ctx context.Context, api UserUpdater, filename string, r io.Reader) (*Session, error) {
	updated, err := api.UploadProfilePicture(ctx, s.user.UserID, filename, r)
	if err != nil {
		return nil, err
	}
	return s.renew(updated)
}

func (s *Session) renew(updated *models.User) (*Session, error) {
	merged := s.user
	if updated != nil {
		if updated.Role != "" {
			merged.Role = updated.Role
		}
		if updated.ProfilPic != "" {
			merged.ProfilPic = updated.ProfilPic
		}
		if updated.FirstName != "" {
			merged.FirstName = updated.FirstName
		}
		if updated.LastName != "" {
			merged.LastName = updated.LastName
		}
		if updated.Email != "" {
			merged.Email = updated.Email
		}
		// a partial body has no user_id and says nothing about staff status
		if updated.UserID != 0 {
			merged.IsStaff = updated.IsStaff
		}
	}
	token, err := s.issuer.Issue(&merged)
	if err != nil {
		return nil, fmt.Errorf("sign renewed token: %w", err)
	}
	return NewSession(merged, token, s.issuer), nil
}

// SignOut returns the anonymous session.
func (s *Session) SignOut() *Session {
	return &Session{issuer: s.issuer}
}

// Authenticated reports whether the session has a user.
func (s *Session) Authenticated() bool {
	return s.token != ""
}
