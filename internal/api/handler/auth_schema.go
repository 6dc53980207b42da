package handler

// Request schemas for the auth and self-service endpoints. Validation tags
// are enforced through the echo validator; password equality and
// same-password rules live in the service layer so their dedicated errors
// surface.

type registerRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email,max=50"`
	PhoneNumber     string `json:"phone_number" validate:"required,min=6,max=20"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,min=8,eqfield=Password"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,min=8"`
}

type resetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,min=8"`
}

type profileUpdateRequest struct {
	Username    string `json:"username" validate:"omitempty,min=3,max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=50"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=6,max=20"`
}

type roleRequest struct {
	Name string `json:"name" validate:"required,min=3,max=64"`
}

type grantRoleRequest struct {
	Name string `json:"name" validate:"required"`
}

type accountRequest struct {
	Name         string `json:"name" validate:"required,min=3,max=50"`
	BioData      string `json:"bio_data" validate:"required"`
	DisplayPhoto string `json:"display_photo" validate:"omitempty,max=255"`
}

type accountUpdateRequest struct {
	Name         string `json:"name" validate:"omitempty,min=3,max=50"`
	BioData      string `json:"bio_data" validate:"omitempty"`
	DisplayPhoto string `json:"display_photo" validate:"omitempty,max=255"`
}

// messageResponse is the envelope for endpoints that only confirm an action.
type messageResponse struct {
	Message string `json:"message"`
}
