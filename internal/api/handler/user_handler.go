package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Get handles GET /v1/users/:email.
//
// @Summary      Get a user record
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "User email"
// @Success      200    {object}  userResponse
// @Failure      401    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /v1/users/{email} [get]
func (h *UserHandler) Get(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	u, err := h.service.Get(c.Request().Context(), caller, c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// List handles GET /v1/users: the admin-only paginated directory listing.
func (h *UserHandler) List(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), caller, ports.ListUsersInput{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListUsersResponse(result))
}

// Update handles PATCH /v1/users/:email. The payload decides the path: role
// or status fields take the administrative route, profile fields take the
// owner route. A payload mixing both, or carrying neither, is a 400.
func (h *UserHandler) Update(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	email := c.Param("email")
	switch {
	case req.hasAdminFields() && req.hasProfileFields():
		return echo.NewHTTPError(http.StatusBadRequest, "cannot mix role/status changes with profile fields")
	case req.hasAdminFields():
		ctx := c.Request().Context()
		if req.Role != nil {
			if err := h.service.SetRole(ctx, caller, email, domain.Role(*req.Role)); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if err := h.service.SetStatus(ctx, caller, email, domain.UserStatus(*req.Status)); err != nil {
				return err
			}
		}
		u, err := h.service.Get(ctx, caller, email)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, toUserResponse(u))
	case req.hasProfileFields():
		u, err := h.service.UpdateProfile(c.Request().Context(), caller, email, ports.UpdateProfileInput{
			Name:       req.Name,
			AvatarURL:  req.AvatarURL,
			BloodGroup: req.BloodGroup,
			District:   req.District,
			Upazila:    req.Upazila,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, toUserResponse(u))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "empty update")
	}
}

// SearchDonors handles GET /v1/donors: the public donor search.
//
// @Summary      Search active donors
// @Tags         donors
// @Produce      json
// @Param        blood_group  query  string  false  "Exact blood group"
// @Param        district     query  string  false  "District (case-insensitive)"
// @Param        upazila      query  string  false  "Upazila (case-insensitive)"
// @Success      200  {array}   userResponse
// @Router       /v1/donors [get]
func (h *UserHandler) SearchDonors(c echo.Context) error {
	items, err := h.service.SearchDonors(c.Request().Context(), ports.DonorSearchInput{
		BloodGroup: c.QueryParam("blood_group"),
		District:   c.QueryParam("district"),
		Upazila:    c.QueryParam("upazila"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(items))
}
