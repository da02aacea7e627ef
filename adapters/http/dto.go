package http

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/internal/domain/user"
)

// Auth DTOs

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func ToUserDTO(u user.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}

type SessionDTO struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        UserDTO   `json:"user"`
}

func ToSessionDTO(s *service.Session) SessionDTO {
	return SessionDTO{
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		ExpiresAt:   s.ExpiresAt,
		User:        ToUserDTO(s.User),
	}
}

// CV DTOs

// ToSharedCVDTO returns the document with the view count folded in as a top-level field.
func ToSharedCVDTO(doc *cv.Document, views int64) cv.Document {
	out := *doc
	out.Extra = maps.Clone(doc.Extra)
	if out.Extra == nil {
		out.Extra = map[string]json.RawMessage{}
	}
	raw, _ := json.Marshal(views)
	out.Extra["views"] = raw
	return out
}

type AnalyticsDTO struct {
	Views      int64      `json:"views"`
	Downloads  int64      `json:"downloads"`
	LastViewed *time.Time `json:"lastViewed"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
