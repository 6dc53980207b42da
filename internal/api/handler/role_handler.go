package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

// RoleHandler serves the role catalogue and role grants.
type RoleHandler struct {
	roleService ports.RoleService
}

func NewRoleHandler(roleService ports.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

type roleResponse struct {
	Role    *domain.Role `json:"role"`
	Message string       `json:"message,omitempty"`
}

type roleListResponse struct {
	Roles []*domain.Role `json:"roles"`
}

// List returns all roles. Admin/SuperAdmin only.
//
// @Summary      List roles
// @Tags         roles,admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  roleListResponse
// @Failure      403  {object}  map[string]string
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.roleService.List(c.Request().Context())
	if err != nil {
		return err
	}
	if roles == nil {
		roles = []*domain.Role{}
	}
	return c.JSON(http.StatusOK, roleListResponse{Roles: roles})
}

// Detail returns one role. Admin/SuperAdmin only.
//
// @Summary      Get a role
// @Tags         roles,admin
// @Produce      json
// @Security     BearerAuth
// @Param        role_id  path      string  true  "Role id"
// @Success      200      {object}  roleResponse
// @Failure      404      {object}  map[string]string
// @Router       /roles/{role_id} [get]
func (h *RoleHandler) Detail(c echo.Context) error {
	role, err := h.roleService.Get(c.Request().Context(), c.Param("role_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{Role: role})
}

// Create adds a role. SuperAdmin only.
//
// @Summary      Create a role
// @Tags         roles,admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roleRequest  true  "Role name"
// @Success      201   {object}  roleResponse
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.roleService.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, roleResponse{Role: role, Message: "role created"})
}

// Rename updates a role's name. SuperAdmin only.
//
// @Summary      Rename a role
// @Tags         roles,admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        role_id  path      string       true  "Role id"
// @Param        body     body      roleRequest  true  "New role name"
// @Success      200      {object}  roleResponse
// @Failure      404      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Router       /roles/{role_id} [put]
func (h *RoleHandler) Rename(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.roleService.Rename(c.Request().Context(), c.Param("role_id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{Role: role, Message: "role updated"})
}

// Delete removes a role. SuperAdmin only.
//
// @Summary      Delete a role
// @Tags         roles,admin
// @Security     BearerAuth
// @Param        role_id  path  string  true  "Role id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /roles/{role_id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.roleService.Delete(c.Request().Context(), c.Param("role_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Grant adds an existing role to a user. SuperAdmin only.
//
// @Summary      Grant a role to a user
// @Tags         roles,admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string            true  "User id"
// @Param        body     body      grantRoleRequest  true  "Role to grant"
// @Success      200      {object}  messageResponse
// @Failure      404      {object}  map[string]string
// @Router       /users/{user_id}/roles [post]
func (h *RoleHandler) Grant(c echo.Context) error {
	var req grantRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.roleService.Grant(c.Request().Context(), c.Param("user_id"), req.Name); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "role granted"})
}
