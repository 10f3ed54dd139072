package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

// AccountHandler serves the per-user address book and account settings.
type AccountHandler struct {
	Cfg       config.Config
	Addresses *repository.AddressRepo
	Settings  *repository.SettingsRepo
}

func NewAccountHandler(cfg config.Config, addrs *repository.AddressRepo, settings *repository.SettingsRepo) *AccountHandler {
	return &AccountHandler{Cfg: cfg, Addresses: addrs, Settings: settings}
}

type addressReq struct {
	Label      string `json:"label"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

type addressUpdateReq struct {
	Label      *string `json:"label"`
	Line1      *string `json:"line1"`
	Line2      *string `json:"line2"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
}

// ListAddresses handles GET /v1/account/addresses.
func (h *AccountHandler) ListAddresses(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	addrs, err := h.Addresses.ListByUser(ctx, user.ID)
	if err != nil {
		c.Logger().Errorf("list addresses: user %d: %v", user.ID, err)
		return respondErr(c, http.StatusInternalServerError, "Address Lookup Failed", h.safe(err))
	}
	if addrs == nil {
		addrs = []model.Address{}
	}
	return respondOK(c, http.StatusOK, "addresses retrieved successfully", echo.Map{"addresses": addrs})
}

// CreateAddress handles POST /v1/account/addresses.  The user's first
// address always becomes the default.
func (h *AccountHandler) CreateAddress(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid request body")
	}

	var reasons []string
	for _, f := range []struct{ name, value string }{
		{"line1", req.Line1}, {"city", req.City}, {"postalCode", req.PostalCode}, {"country", req.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			reasons = append(reasons, f.name+" is required")
		}
	}
	if len(reasons) > 0 {
		return respondValidation(c, reasons)
	}

	addr := model.Address{
		UserID:     user.ID,
		Label:      strings.TrimSpace(req.Label),
		Line1:      strings.TrimSpace(req.Line1),
		Line2:      strings.TrimSpace(req.Line2),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.TrimSpace(req.Country),
		IsDefault:  req.IsDefault,
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Addresses.Create(ctx, &addr); err != nil {
		c.Logger().Errorf("create address: user %d: %v", user.ID, err)
		return respondErr(c, http.StatusInternalServerError, "Address Create Failed", h.safe(err))
	}
	return respondOK(c, http.StatusCreated, "address created successfully", echo.Map{"address": addr})
}

// UpdateAddress handles PATCH /v1/account/addresses/:id with partial-update
// semantics.
func (h *AccountHandler) UpdateAddress(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid address id")
	}
	var req addressUpdateReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid request body")
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	addr, err := h.Addresses.Update(ctx, user.ID, id, repository.AddressUpdate{
		Label: req.Label, Line1: req.Line1, Line2: req.Line2, City: req.City,
		State: req.State, PostalCode: req.PostalCode, Country: req.Country,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Address Update Failed", "address not found")
		}
		c.Logger().Errorf("update address: user %d addr %d: %v", user.ID, id, err)
		return respondErr(c, http.StatusInternalServerError, "Address Update Failed", h.safe(err))
	}
	return respondOK(c, http.StatusOK, "address updated successfully", echo.Map{"address": addr})
}

// DeleteAddress handles DELETE /v1/account/addresses/:id.  Deleting the
// default promotes the newest remaining address.
func (h *AccountHandler) DeleteAddress(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid address id")
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Addresses.Delete(ctx, user.ID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Address Delete Failed", "address not found")
		}
		c.Logger().Errorf("delete address: user %d addr %d: %v", user.ID, id, err)
		return respondErr(c, http.StatusInternalServerError, "Address Delete Failed", h.safe(err))
	}
	return respondOK(c, http.StatusOK, "address deleted successfully", nil)
}

// SetDefaultAddress handles POST /v1/account/addresses/:id/default.
func (h *AccountHandler) SetDefaultAddress(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid address id")
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Addresses.SetDefault(ctx, user.ID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Address Update Failed", "address not found")
		}
		c.Logger().Errorf("set default address: user %d addr %d: %v", user.ID, id, err)
		return respondErr(c, http.StatusInternalServerError, "Address Update Failed", h.safe(err))
	}
	return respondOK(c, http.StatusOK, "default address updated successfully", nil)
}

type settingsUpdateReq struct {
	Newsletter         *bool `json:"newsletter"`
	OrderNotifications *bool `json:"orderNotifications"`
	PromoEmails        *bool `json:"promoEmails"`
}

// GetSettings handles GET /v1/account/settings, creating the row with
// defaults on first read.
func (h *AccountHandler) GetSettings(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	s, err := h.Settings.Get(ctx, user.ID)
	if err != nil {
		c.Logger().Errorf("get settings: user %d: %v", user.ID, err)
		return respondErr(c, http.StatusInternalServerError, "Settings Lookup Failed", h.safe(err))
	}
	return respondOK(c, http.StatusOK, "settings retrieved successfully", echo.Map{"settings": s})
}

// UpdateSettings handles PATCH /v1/account/settings with partial-update
// semantics.
func (h *AccountHandler) UpdateSettings(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	var req settingsUpdateReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid request body")
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	s, err := h.Settings.Update(ctx, user.ID, repository.SettingsUpdate{
		Newsletter:         req.Newsletter,
		OrderNotifications: req.OrderNotifications,
		PromoEmails:        req.PromoEmails,
	})
	if err != nil {
		c.Logger().Errorf("update settings: user %d: %v", user.ID, err)
		return respondErr(c, http.StatusInternalServerError, "Settings Update Failed", h.safe(err))
	}
	return respondOK(c, http.StatusOK, "settings updated successfully", echo.Map{"settings": s})
}

func (h *AccountHandler) safe(err error) string {
	if h.Cfg.IsProd() {
		return "an internal error occurred"
	}
	return err.Error()
}
