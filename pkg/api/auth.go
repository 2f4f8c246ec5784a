package api

// RegisterRequest carries the credentials for POST /api/v1/auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is returned on successful registration
type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// LoginRequest carries the credentials for POST /api/v1/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful authentication
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT access token
	Username    string `json:"username"`
	ExpiresIn   int64  `json:"expires_in"` // access token lifetime in seconds
}

// ErrorResponse is the body of any non-2xx API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
