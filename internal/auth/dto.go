package auth

import (
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required(internal.ErrCodeInvalidEmail)
	v.Field("password", d.Password).Required(internal.ErrCodeValidationFailed)
	return v.Validate()
}
