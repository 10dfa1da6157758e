package domain

type APIVersion string

const (
	APIVersion20161215 APIVersion = "20161215"
	APIVersion20190520 APIVersion = "20190520"
	APIVersion20200115 APIVersion = "20200115"
)

type RefreshSessionRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	APIVersion   string `json:"api"`
}

type AuthUser struct {
	UUID string `json:"uuid"`
}

type SessionTokens struct {
	AccessToken       string
	RefreshToken      string
	AccessExpiration  int64
	RefreshExpiration int64
}

// LegacyAuthResponse is the shape used by the 20161215 and 20190520 clients.
type LegacyAuthResponse struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

type SessionBody struct {
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
	AccessExpiration  int64  `json:"access_expiration"`
	RefreshExpiration int64  `json:"refresh_expiration"`
}

type SessionAuthResponse struct {
	User    AuthUser    `json:"user"`
	Session SessionBody `json:"session"`
}
