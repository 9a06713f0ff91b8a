package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/charity/internal/service"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/logging"
)

type DonationsHTTP struct {
	Svc *service.DonationService
}

func (h *DonationsHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "donations_list")

	list, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_donations_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewDonationResponses(list))
}

func (h *DonationsHTTP) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "donations_mine")

	a, err := actor(c)
	if err != nil {
		return err
	}
	list, err := h.Svc.ListByUser(ctx, a.UserID)
	if err != nil {
		return fail(l, "list_donations_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewDonationResponses(list))
}

func (h *DonationsHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "donations_get")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_donation_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewDonationResponse(*d))
}

func (h *DonationsHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "donations_add")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.DonationRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_donation_error", err)
	}

	d, err := h.Svc.Create(ctx, a, req)
	if err != nil {
		return fail(l, "add_donation_error", err)
	}
	return c.JSON(http.StatusCreated, transport.NewDonationResponse(*d))
}

func (h *DonationsHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "donations_update")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req transport.DonationUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_donation_error", err)
	}

	d, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "update_donation_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewDonationResponse(*d))
}

func (h *DonationsHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "donations_delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.Svc.Delete(ctx, id)
	if err != nil {
		return fail(l, "delete_donation_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewDonationResponse(*d))
}

func (h *DonationsHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "donations_stats")

	st, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(l, "stats_error", err)
	}
	return c.JSON(http.StatusOK, transport.StatsResponse{Donations: st.Donations, Bags: st.Bags})
}
