package domain

import (
	"errors"
	"time"
)

// RequestStatus represents the lifecycle state of a donation request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "inprogress"
	StatusDone       RequestStatus = "done"
	StatusCanceled   RequestStatus = "canceled"
)

// validTransitions defines the allowed state machine transitions.
// done and canceled are terminal.
var validTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:    {StatusInProgress, StatusCanceled},
	StatusInProgress: {StatusDone, StatusCanceled},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrRequestNotFound = errors.New("donation request not found")
var ErrRequestConflict = errors.New("donation request was just updated")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidLocation = errors.New("unknown district or upazila")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// DonationRequest is the core aggregate root. RequesterName is a snapshot of
// the requester's display name at creation time; RequesterEmail is immutable.
// DonorName/DonorEmail are set exactly once, atomically with the transition
// to inprogress, and never cleared afterwards.
type DonationRequest struct {
	ID             string        `json:"id" bson:"_id,omitempty"`
	RequesterName  string        `json:"requester_name" bson:"requester_name"`
	RequesterEmail string        `json:"requester_email" bson:"requester_email"`
	RecipientName  string        `json:"recipient_name" bson:"recipient_name"`
	BloodGroup     string        `json:"blood_group" bson:"blood_group"`
	District       string        `json:"district" bson:"district"`
	Upazila        string        `json:"upazila" bson:"upazila"`
	HospitalName   string        `json:"hospital_name" bson:"hospital_name"`
	FullAddress    string        `json:"full_address" bson:"full_address"`
	DonationDate   string        `json:"donation_date" bson:"donation_date"`
	DonationTime   string        `json:"donation_time" bson:"donation_time"`
	RequestMessage string        `json:"request_message" bson:"request_message"`
	Status         RequestStatus `json:"status" bson:"status"`
	DonorName      string        `json:"donor_name,omitempty" bson:"donor_name,omitempty"`
	DonorEmail     string        `json:"donor_email,omitempty" bson:"donor_email,omitempty"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`
}
