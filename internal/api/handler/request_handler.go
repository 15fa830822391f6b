package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bloodcare/donation-system/internal/api/metrics"
	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

// RequestHandler handles HTTP requests for donation request operations.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /v1/donation-requests.
//
// @Summary      Create a donation request
// @Tags         donation-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRequestRequest  true  "Request details"
// @Success      201   {object}  requestResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/donation-requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	r, err := h.service.Create(c.Request().Context(), ports.CreateRequestInput{
		Caller:         caller,
		RecipientName:  req.RecipientName,
		BloodGroup:     req.BloodGroup,
		District:       req.District,
		Upazila:        req.Upazila,
		HospitalName:   req.HospitalName,
		FullAddress:    req.FullAddress,
		DonationDate:   req.DonationDate,
		DonationTime:   req.DonationTime,
		RequestMessage: req.RequestMessage,
	})
	if err != nil {
		return err
	}

	metrics.RequestsCreatedTotal.WithLabelValues(r.BloodGroup).Inc()
	return c.JSON(http.StatusCreated, toRequestResponse(r))
}

// Get handles GET /v1/donation-requests/:id. Reads are public.
func (h *RequestHandler) Get(c echo.Context) error {
	r, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(r))
}

// ListPending handles GET /v1/donation-requests/pending: the public
// "available requests" view.
func (h *RequestHandler) ListPending(c echo.Context) error {
	items, err := h.service.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponses(items))
}

// List handles GET /v1/donation-requests: the moderated listing.
//
// @Summary      List donation requests (admin/volunteer)
// @Tags         donation-requests
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "Filter by status"
// @Param        blood_group  query     string  false  "Filter by blood group"
// @Param        district     query     string  false  "Filter by district (case-insensitive exact match)"
// @Param        page         query     int     false  "Page number (1-based)"
// @Param        limit        query     int     false  "Page size (max 100)"
// @Success      200          {object}  listRequestsResponse
// @Failure      401          {object}  errorResponse
// @Failure      403          {object}  errorResponse
// @Router       /v1/donation-requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), caller, ports.ListRequestsInput{
		Status:     c.QueryParam("status"),
		BloodGroup: c.QueryParam("blood_group"),
		District:   c.QueryParam("district"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListRequestsResponse(result))
}

// Mine handles GET /v1/donation-requests/mine?email=&limit=: the
// self-scoped listing. Without an email parameter the caller's own requests
// are returned; another email requires moderator rights.
func (h *RequestHandler) Mine(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	email := c.QueryParam("email")
	if email == "" {
		email = caller.Email
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	items, err := h.service.ListByRequester(c.Request().Context(), caller, email, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponses(items))
}

// Update handles PATCH /v1/donation-requests/:id: owner-only edit of a
// still-pending request.
func (h *RequestHandler) Update(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	r, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), toUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(r))
}

// Pledge handles PATCH /v1/donation-requests/:id/donate: the atomic
// conditional transition to inprogress with the caller as donor.
//
// @Summary      Pledge to fulfill a pending request
// @Tags         donation-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Request id"
// @Success      200 {object}  requestResponse
// @Failure      401 {object}  errorResponse
// @Failure      403 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Failure      409 {object}  errorResponse
// @Router       /v1/donation-requests/{id}/donate [patch]
func (h *RequestHandler) Pledge(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	r, err := h.service.Pledge(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRequestConflict):
			metrics.PledgesTotal.WithLabelValues("conflict").Inc()
		case errors.Is(err, domain.ErrForbidden):
			metrics.PledgesTotal.WithLabelValues("denied").Inc()
		}
		return err
	}

	metrics.PledgesTotal.WithLabelValues("success").Inc()
	metrics.StatusTransitionsTotal.WithLabelValues(string(domain.StatusInProgress)).Inc()
	return c.JSON(http.StatusOK, toRequestResponse(r))
}

// UpdateStatus handles PATCH /v1/donation-requests/:id/status: moves an
// inprogress request to done or canceled.
func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	to := domain.RequestStatus(req.Status)
	if err := h.service.Transition(c.Request().Context(), caller, c.Param("id"), to); err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(to)).Inc()
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

// Delete handles DELETE /v1/donation-requests/:id.
func (h *RequestHandler) Delete(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
