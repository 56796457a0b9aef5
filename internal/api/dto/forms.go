package dto

// TicketFormRequest is the intake form body.
type TicketFormRequest struct {
	Name        string `form:"name"`
	PhoneNumber string `form:"phone_number"`
	Description string `form:"description"`
}

// LoginFormRequest is the agent login form body.
type LoginFormRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

// TokenResponse is returned by the capability token endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}
