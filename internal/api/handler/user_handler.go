package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

// UserHandler serves the profile surface and the admin user listing.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type userResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message,omitempty"`
}

type userListResponse struct {
	Users []*domain.User `json:"users"`
}

// Me returns the authenticated user's profile.
//
// @Summary      Get my profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateMe updates the authenticated user's profile. A changed email address
// resets the confirmation flag and triggers a new confirm link.
//
// @Summary      Update my profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileUpdateRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	emailChanged := req.Email != "" && req.Email != user.Email

	updated, err := h.userService.UpdateProfile(c.Request().Context(), user, ports.ProfileUpdateInput{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	msg := "your profile has been updated"
	if emailChanged {
		msg = "your profile has been updated; confirm the new email address with the link sent to it"
	}
	return c.JSON(http.StatusOK, userResponse{User: updated, Message: msg})
}

// List returns all users. Admin/SuperAdmin only.
//
// @Summary      List users
// @Tags         users,admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, userListResponse{Users: users})
}

// Detail returns one user by id. Admin/SuperAdmin only.
//
// @Summary      Get a user
// @Tags         users,admin
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User id"
// @Success      200      {object}  userResponse
// @Failure      404      {object}  map[string]string
// @Router       /users/{user_id} [get]
func (h *UserHandler) Detail(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}
