package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/profile"
	"github.com/nri-matrimony/matrimony/session"
)

type ProfileHandler struct {
	profiles *profile.Service
	logger   *logging.Service
}

func NewProfileHandler(profiles *profile.Service, logger *logging.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

func (h *ProfileHandler) Create(c echo.Context) error {
	var req profile.CreateInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.profiles.Create(c.Request().Context(), session.CurrentUserID(c), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProfileHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return echo.NewHTTPError(http.StatusNotFound, MsgProfileNotFound)
	}

	p, err := h.profiles.Get(c.Request().Context(), uint(id))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Me(c echo.Context) error {
	p, err := h.profiles.GetByUserID(c.Request().Context(), session.CurrentUserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) List(c echo.Context) error {
	filters := profile.Filters{
		Gender:       c.QueryParam("gender"),
		Denomination: c.QueryParam("denomination"),
		Location:     c.QueryParam("location"),
	}
	var err error
	if filters.MinAge, err = intQuery(c, "minAge"); err != nil {
		return err
	}
	if filters.MaxAge, err = intQuery(c, "maxAge"); err != nil {
		return err
	}

	profiles, err := h.profiles.List(c.Request().Context(), filters)
	if err != nil {
		return toHTTPError(err)
	}
	if profiles == nil {
		profiles = []profile.Profile{}
	}
	return c.JSON(http.StatusOK, profiles)
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
