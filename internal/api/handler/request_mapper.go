package handler

import (
	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

func toRequestResponse(r *domain.DonationRequest) requestResponse {
	return requestResponse{
		ID:             r.ID,
		RequesterName:  r.RequesterName,
		RequesterEmail: r.RequesterEmail,
		RecipientName:  r.RecipientName,
		BloodGroup:     r.BloodGroup,
		District:       r.District,
		Upazila:        r.Upazila,
		HospitalName:   r.HospitalName,
		FullAddress:    r.FullAddress,
		DonationDate:   r.DonationDate,
		DonationTime:   r.DonationTime,
		RequestMessage: r.RequestMessage,
		Status:         string(r.Status),
		DonorName:      r.DonorName,
		DonorEmail:     r.DonorEmail,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

func toRequestResponses(items []*domain.DonationRequest) []requestResponse {
	out := make([]requestResponse, len(items))
	for i, r := range items {
		out[i] = toRequestResponse(r)
	}
	return out
}

func toListRequestsResponse(r *ports.ListRequestsResult) listRequestsResponse {
	return listRequestsResponse{
		Data: toRequestResponses(r.Items),
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toUpdateInput(req updateRequestRequest) ports.UpdateRequestInput {
	return ports.UpdateRequestInput{
		RecipientName:  req.RecipientName,
		BloodGroup:     req.BloodGroup,
		District:       req.District,
		Upazila:        req.Upazila,
		HospitalName:   req.HospitalName,
		FullAddress:    req.FullAddress,
		DonationDate:   req.DonationDate,
		DonationTime:   req.DonationTime,
		RequestMessage: req.RequestMessage,
	}
}
