package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createRequestRequest struct {
	RecipientName  string `json:"recipient_name"  validate:"required"`
	BloodGroup     string `json:"blood_group"     validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	District       string `json:"district"        validate:"required"`
	Upazila        string `json:"upazila"         validate:"required"`
	HospitalName   string `json:"hospital_name"   validate:"required"`
	FullAddress    string `json:"full_address"    validate:"required"`
	DonationDate   string `json:"donation_date"   validate:"required"`
	DonationTime   string `json:"donation_time"   validate:"required"`
	RequestMessage string `json:"request_message" validate:"required"`
}

type updateRequestRequest struct {
	RecipientName  *string `json:"recipient_name"`
	BloodGroup     *string `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	District       *string `json:"district"`
	Upazila        *string `json:"upazila"`
	HospitalName   *string `json:"hospital_name"`
	FullAddress    *string `json:"full_address"`
	DonationDate   *string `json:"donation_date"`
	DonationTime   *string `json:"donation_time"`
	RequestMessage *string `json:"request_message"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=done canceled"`
}

// --- Response types ---
// These are intentionally separate from domain types so the JSON contract is
// not coupled to internal changes.

type requestResponse struct {
	ID             string    `json:"id"`
	RequesterName  string    `json:"requester_name"`
	RequesterEmail string    `json:"requester_email"`
	RecipientName  string    `json:"recipient_name"`
	BloodGroup     string    `json:"blood_group"`
	District       string    `json:"district"`
	Upazila        string    `json:"upazila"`
	HospitalName   string    `json:"hospital_name"`
	FullAddress    string    `json:"full_address"`
	DonationDate   string    `json:"donation_date"`
	DonationTime   string    `json:"donation_time"`
	RequestMessage string    `json:"request_message"`
	Status         string    `json:"status"`
	DonorName      string    `json:"donor_name,omitempty"`
	DonorEmail     string    `json:"donor_email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listRequestsResponse struct {
	Data       []requestResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}
