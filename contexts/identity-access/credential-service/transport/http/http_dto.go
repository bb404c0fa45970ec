package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number,omitempty"`
	FullName    string `json:"full_name"`
	NationalID  string `json:"national_id,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Address     string `json:"address,omitempty"`
}

type RegisterResponse struct {
	VoterID string `json:"voter_id"`
	Email   string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	VoterID   string `json:"voter_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
