package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

// AccountHandler serves the authenticated user's profile sub-accounts.
// Every operation is scoped to the resolved identity.
type AccountHandler struct {
	accountService ports.AccountService
}

func NewAccountHandler(accountService ports.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

type accountResponse struct {
	Account *domain.Account `json:"account"`
	Message string          `json:"message,omitempty"`
}

type accountListResponse struct {
	Accounts []*domain.Account `json:"accounts"`
}

// List returns the caller's sub-accounts.
//
// @Summary      List my accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountListResponse
// @Failure      401  {object}  map[string]string
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	user, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	accounts, err := h.accountService.ListMine(c.Request().Context(), user.UUID)
	if err != nil {
		return err
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	return c.JSON(http.StatusOK, accountListResponse{Accounts: accounts})
}

// Create adds a sub-account owned by the caller.
//
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      accountRequest  true  "Account fields"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	user, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accountService.Create(c.Request().Context(), user.UUID, ports.AccountInput{
		Name:         req.Name,
		BioData:      req.BioData,
		DisplayPhoto: req.DisplayPhoto,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, accountResponse{Account: account, Message: "account created"})
}

// Detail returns one of the caller's accounts.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        account_id  path      string  true  "Account id"
// @Success      200         {object}  accountResponse
// @Failure      404         {object}  map[string]string
// @Router       /accounts/{account_id} [get]
func (h *AccountHandler) Detail(c echo.Context) error {
	user, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	account, err := h.accountService.Get(c.Request().Context(), user.UUID, c.Param("account_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Account: account})
}

// Update edits one of the caller's accounts.
//
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account_id  path      string                true  "Account id"
// @Param        body        body      accountUpdateRequest  true  "Fields to update"
// @Success      200         {object}  accountResponse
// @Failure      404         {object}  map[string]string
// @Router       /accounts/{account_id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	user, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req accountUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accountService.Update(c.Request().Context(), user.UUID, c.Param("account_id"), ports.AccountInput{
		Name:         req.Name,
		BioData:      req.BioData,
		DisplayPhoto: req.DisplayPhoto,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Account: account, Message: "account updated"})
}

// Delete removes one of the caller's accounts.
//
// @Summary      Delete an account
// @Tags         accounts
// @Security     BearerAuth
// @Param        account_id  path  string  true  "Account id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /accounts/{account_id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	user, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.accountService.Delete(c.Request().Context(), user.UUID, c.Param("account_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
