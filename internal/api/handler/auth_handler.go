package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spaceyatech/identity-api/internal/api/metrics"
	"github.com/spaceyatech/identity-api/internal/api/middleware"
	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

// AuthHandler serves registration, the confirm/reset token flows and the
// session-token lifecycle.
type AuthHandler struct {
	authService ports.AuthService
	userService ports.UserService
}

func NewAuthHandler(authService ports.AuthService, userService ports.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

type registerResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Message      string `json:"message"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// Register creates a new user account and issues a confirm-email link.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Register(c.Request().Context(), ports.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		if domain.IsUserConflict(err) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	metrics.SignedTokensIssuedTotal.WithLabelValues("confirm_email").Inc()

	return c.JSON(http.StatusCreated, registerResponse{
		User:    user,
		Message: "user created; a confirmation link has been sent to your email",
	})
}

// ConfirmEmail verifies the signed token from the emailed link.
//
// @Summary      Confirm a user email
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Signed confirm token"
// @Success      200    {object}  messageResponse
// @Failure      401    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /auth/confirm-email [get]
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	if err := h.userService.ConfirmEmail(c.Request().Context(), c.QueryParam("token")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "email confirmed successfully"})
}

// ResendConfirmation issues a fresh confirm link for an unconfirmed email.
// An already-confirmed email is not an error here: the user just needs to
// log in.
//
// @Summary      Resend the confirmation link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Email to confirm"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/confirm-email [post]
func (h *AuthHandler) ResendConfirmation(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.userService.ResendConfirmation(c.Request().Context(), req.Email)
	if errors.Is(err, domain.ErrAlreadyConfirmed) {
		return c.JSON(http.StatusOK, messageResponse{Message: "your email is already confirmed, please login"})
	}
	if err != nil {
		return err
	}

	metrics.SignedTokensIssuedTotal.WithLabelValues("confirm_email").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "confirmation link sent to your email"})
}

// Login authenticates a user and returns an access/refresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      "user logged in successfully",
	})
}

// Refresh mints a new access token from the refresh token presented as the
// bearer credential.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  refreshResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}

	access, err := h.authService.Refresh(c.Request().Context(), raw)
	if err != nil {
		return err
	}

	metrics.TokensIssuedTotal.WithLabelValues("refreshed_access").Inc()
	return c.JSON(http.StatusOK, refreshResponse{AccessToken: access, Message: "new access token"})
}

// Logout revokes the presented access token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, err := ctxBearer(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		return err
	}

	metrics.TokensRevokedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "user token revoked"})
}

// ChangePassword updates the caller's password after re-verifying the
// current one. Requires a fresh access token.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Password change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ChangePassword(c.Request().Context(), user, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: "password changed successfully; use the new password on your next login",
	})
}

// ForgotPassword requests a reset link. The response is the same whether or
// not the email exists.
//
// @Summary      Request a password reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: "a link to change your password has been sent to your email",
	})
}

// ResetPassword applies a new password using the signed token from the
// reset link.
//
// @Summary      Reset a forgotten password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  query     string                true  "Signed reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  messageResponse
// @Failure      401    {object}  map[string]string
// @Router       /auth/forgot-password [put]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ResetPassword(c.Request().Context(), c.QueryParam("token"), req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: "password changed successfully; use the new password on your next login",
	})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrEmailNotConfirmed):
		return "not_confirmed"
	default:
		return "error"
	}
}
