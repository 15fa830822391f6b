package handler

import (
	"time"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

// updateUserRequest is the PATCH /v1/users/:email payload. It serves two
// mutually exclusive shapes: an administrative change (role and/or status)
// or an owner profile edit. Mixing both in one call is rejected.
type updateUserRequest struct {
	Role   *string `json:"role,omitempty" validate:"omitempty,oneof=donor volunteer admin"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=active blocked"`

	Name       *string `json:"name,omitempty" validate:"omitempty,min=2"`
	AvatarURL  *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	BloodGroup *string `json:"blood_group,omitempty" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	District   *string `json:"district,omitempty" validate:"omitempty,min=2"`
	Upazila    *string `json:"upazila,omitempty" validate:"omitempty,min=2"`
}

func (r updateUserRequest) hasAdminFields() bool {
	return r.Role != nil || r.Status != nil
}

func (r updateUserRequest) hasProfileFields() bool {
	return r.Name != nil || r.AvatarURL != nil || r.BloodGroup != nil ||
		r.District != nil || r.Upazila != nil
}

type userResponse struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	BloodGroup string    `json:"blood_group"`
	District   string    `json:"district"`
	Upazila    string    `json:"upazila"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.UserRecord) userResponse {
	return userResponse{
		Email:      u.Email,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		BloodGroup: u.BloodGroup,
		District:   u.District,
		Upazila:    u.Upazila,
		Role:       string(u.Role),
		Status:     string(u.Status),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toUserResponses(items []*domain.UserRecord) []userResponse {
	out := make([]userResponse, 0, len(items))
	for _, u := range items {
		out = append(out, toUserResponse(u))
	}
	return out
}

type listUsersResponse struct {
	Data       []userResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

func toListUsersResponse(r *ports.ListUsersResult) listUsersResponse {
	return listUsersResponse{
		Data: toUserResponses(r.Items),
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}
