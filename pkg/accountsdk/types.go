package accountsdk

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Subscription string `json:"subscription,omitempty"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

// RegisterResponse is returned with 201 by POST /register.
type RegisterResponse struct {
	User UserResponse `json:"user"`
}

// ResendVerificationRequest is the body of POST /verify.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AvatarResponse is returned by PATCH /avatar.
type AvatarResponse struct {
	AvatarURL string `json:"avatarURL"`
}

// MessageResponse carries a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request. Details maps request
// fields to validation messages when present.
type ErrorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse is returned by /livez and /readyz (readyz includes Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}
