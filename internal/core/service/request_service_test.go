package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byEmail map[string]*domain.UserRecord
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.UserRecord)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.UserRecord) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrUserExists
	}
	clone := *u
	r.byEmail[u.Email] = &clone
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.UserRecord, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.UserRecord, int64, error) {
	var matched []*domain.UserRecord
	for _, u := range r.byEmail {
		if f.Status != "" && string(u.Status) != f.Status {
			continue
		}
		clone := *u
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []*domain.UserRecord{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, email string, patch ports.ProfilePatch) error {
	u, ok := r.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&u.Name, patch.Name)
	apply(&u.AvatarURL, patch.AvatarURL)
	apply(&u.BloodGroup, patch.BloodGroup)
	apply(&u.District, patch.District)
	apply(&u.Upazila, patch.Upazila)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *stubUserRepo) SetRole(_ context.Context, email string, role domain.Role) error {
	u, ok := r.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *stubUserRepo) SetStatus(_ context.Context, email string, status domain.UserStatus) error {
	u, ok := r.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (r *stubUserRepo) SearchDonors(_ context.Context, f ports.DonorSearchFilter) ([]*domain.UserRecord, error) {
	var matched []*domain.UserRecord
	for _, u := range r.byEmail {
		if u.Status != domain.UserActive {
			continue
		}
		if f.BloodGroup != "" && u.BloodGroup != f.BloodGroup {
			continue
		}
		if f.District != "" && !strings.EqualFold(u.District, f.District) {
			continue
		}
		if f.Upazila != "" && !strings.EqualFold(u.Upazila, f.Upazila) {
			continue
		}
		clone := *u
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched, nil
}

// stubRequestRepo mirrors the conditional-write semantics of the Mongo
// repository: status preconditions are checked against stored state, and a
// miss on an existing record reports a conflict.
type stubRequestRepo struct {
	byID map[string]*domain.DonationRequest
	seq  int
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{byID: make(map[string]*domain.DonationRequest)}
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.DonationRequest) error {
	r.seq++
	req.ID = fmt.Sprintf("req_%d", r.seq)
	clone := *req
	r.byID[req.ID] = &clone
	return nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.DonationRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) List(_ context.Context, f ports.ListRequestsFilter) ([]*domain.DonationRequest, int64, error) {
	var matched []*domain.DonationRequest
	for _, req := range r.byID {
		if f.Status != "" && string(req.Status) != f.Status {
			continue
		}
		if f.BloodGroup != "" && req.BloodGroup != f.BloodGroup {
			continue
		}
		if f.District != "" && !strings.EqualFold(req.District, f.District) {
			continue
		}
		clone := *req
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []*domain.DonationRequest{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubRequestRepo) ListPending(_ context.Context) ([]*domain.DonationRequest, error) {
	var matched []*domain.DonationRequest
	for _, req := range r.byID {
		if req.Status != domain.StatusPending {
			continue
		}
		clone := *req
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *stubRequestRepo) ListByRequester(_ context.Context, email string, limit int) ([]*domain.DonationRequest, error) {
	var matched []*domain.DonationRequest
	for _, req := range r.byID {
		if req.RequesterEmail != email {
			continue
		}
		clone := *req
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *stubRequestRepo) UpdatePending(_ context.Context, id string, patch ports.RequestPatch) error {
	req, ok := r.byID[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if req.Status != domain.StatusPending {
		return domain.ErrRequestConflict
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&req.RecipientName, patch.RecipientName)
	apply(&req.BloodGroup, patch.BloodGroup)
	apply(&req.District, patch.District)
	apply(&req.Upazila, patch.Upazila)
	apply(&req.HospitalName, patch.HospitalName)
	apply(&req.FullAddress, patch.FullAddress)
	apply(&req.DonationDate, patch.DonationDate)
	apply(&req.DonationTime, patch.DonationTime)
	apply(&req.RequestMessage, patch.RequestMessage)
	req.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *stubRequestRepo) Pledge(_ context.Context, id, donorName, donorEmail string) (*domain.DonationRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if req.Status != domain.StatusPending {
		return nil, domain.ErrRequestConflict
	}
	req.Status = domain.StatusInProgress
	req.DonorName = donorName
	req.DonorEmail = donorEmail
	req.UpdatedAt = time.Now().UTC()
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) Transition(_ context.Context, id string, from, to domain.RequestStatus) error {
	req, ok := r.byID[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if req.Status != from {
		return domain.ErrRequestConflict
	}
	req.Status = to
	req.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *stubRequestRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubRequestRepo) DeletePending(_ context.Context, id string) error {
	req, ok := r.byID[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if req.Status != domain.StatusPending {
		return domain.ErrRequestConflict
	}
	delete(r.byID, id)
	return nil
}

// fakeGeo recognizes a tiny fixed dataset.
type fakeGeo struct{}

var fakeGeoData = map[string][]string{
	"dhaka":      {"savar", "dhamrai"},
	"chattogram": {"patiya", "sandwip"},
}

func (fakeGeo) DistrictExists(district string) bool {
	_, ok := fakeGeoData[strings.ToLower(district)]
	return ok
}

func (fakeGeo) UpazilaInDistrict(district, upazila string) bool {
	for _, u := range fakeGeoData[strings.ToLower(district)] {
		if u == strings.ToLower(upazila) {
			return true
		}
	}
	return false
}

func (fakeGeo) Districts() []string { return []string{"Chattogram", "Dhaka"} }

func (fakeGeo) Upazilas(district string) ([]string, bool) {
	u, ok := fakeGeoData[strings.ToLower(district)]
	return u, ok
}

// spyCache records cache interactions for the pending listing.
type spyCache struct {
	items       []*domain.DonationRequest
	hit         bool
	sets        int
	invalidates int
}

func (c *spyCache) Get(_ context.Context) ([]*domain.DonationRequest, bool) {
	if !c.hit {
		return nil, false
	}
	return c.items, true
}

func (c *spyCache) Set(_ context.Context, items []*domain.DonationRequest) {
	c.items = items
	c.sets++
}

func (c *spyCache) Invalidate(_ context.Context) {
	c.items = nil
	c.hit = false
	c.invalidates++
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func seedUser(repo *stubUserRepo, email string, role domain.Role, status domain.UserStatus) *domain.UserRecord {
	u := &domain.UserRecord{
		Email:      email,
		Name:       strings.Split(email, "@")[0],
		BloodGroup: "O+",
		District:   "Dhaka",
		Upazila:    "Savar",
		Role:       role,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	repo.byEmail[email] = u
	return u
}

func identity(email string) ports.Identity {
	return ports.Identity{Email: email, Name: strings.Split(email, "@")[0]}
}

func validCreateInput(caller ports.Identity) ports.CreateRequestInput {
	return ports.CreateRequestInput{
		Caller:         caller,
		RecipientName:  "Rahim Uddin",
		BloodGroup:     "A+",
		District:       "Dhaka",
		Upazila:        "Savar",
		HospitalName:   "Enam Medical",
		FullAddress:    "Savar, Dhaka",
		DonationDate:   "2026-09-15",
		DonationTime:   "10:00",
		RequestMessage: "urgent surgery",
	}
}

func newTestRequestService(users *stubUserRepo, repo *stubRequestRepo, cache PendingCache) *RequestService {
	return NewRequestService(repo, users, fakeGeo{}, cache, discardLogger)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestRequestService_Create_Success(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	svc := newTestRequestService(users, repo, nil)

	r, err := svc.Create(context.Background(), validCreateInput(identity("mina@example.com")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID == "" {
		t.Error("ID must be assigned")
	}
	if r.Status != domain.StatusPending {
		t.Errorf("expected status pending, got %s", r.Status)
	}
	if r.RequesterEmail != "mina@example.com" {
		t.Errorf("requester email wrong: %s", r.RequesterEmail)
	}
	if r.DonorEmail != "" {
		t.Error("donor must be empty on creation")
	}
}

func TestRequestService_Create_SnapshotsRequesterNameFromDirectory(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	u := seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	u.Name = "Mina Akter"
	svc := newTestRequestService(users, repo, nil)

	// The identity carries a stale display name; the directory record wins.
	caller := ports.Identity{Email: "mina@example.com", Name: "Old Name"}
	r, err := svc.Create(context.Background(), validCreateInput(caller))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RequesterName != "Mina Akter" {
		t.Errorf("expected snapshot from directory record, got %q", r.RequesterName)
	}
}

func TestRequestService_Create_BlockedCaller(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserBlocked)
	svc := newTestRequestService(users, repo, nil)

	_, err := svc.Create(context.Background(), validCreateInput(identity("mina@example.com")))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Error("no request must be stored")
	}
}

func TestRequestService_Create_UnknownCaller(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	svc := newTestRequestService(users, repo, nil)

	_, err := svc.Create(context.Background(), validCreateInput(identity("ghost@example.com")))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown identity, got %v", err)
	}
}

func TestRequestService_Create_InvalidBloodGroup(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	svc := newTestRequestService(users, repo, nil)

	input := validCreateInput(identity("mina@example.com"))
	input.BloodGroup = "Z+"
	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, domain.ErrInvalidBloodGroup) {
		t.Fatalf("expected ErrInvalidBloodGroup, got %v", err)
	}
}

func TestRequestService_Create_UpazilaOutsideDistrict(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	svc := newTestRequestService(users, repo, nil)

	input := validCreateInput(identity("mina@example.com"))
	input.District = "Chattogram"
	input.Upazila = "Savar" // belongs to Dhaka
	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, domain.ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestRequestService_Create_InvalidatesPendingCache(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	cache := &spyCache{}
	svc := newTestRequestService(users, repo, cache)

	if _, err := svc.Create(context.Background(), validCreateInput(identity("mina@example.com"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.invalidates != 1 {
		t.Errorf("expected 1 cache invalidation, got %d", cache.invalidates)
	}
}

// ---------------------------------------------------------------------------
// ListPending and cache
// ---------------------------------------------------------------------------

func TestRequestService_ListPending_CacheMissThenSet(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	cache := &spyCache{}
	svc := newTestRequestService(users, repo, cache)

	_, _ = svc.Create(context.Background(), validCreateInput(identity("mina@example.com")))

	items, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(items))
	}
	if cache.sets != 1 {
		t.Errorf("expected cache to be populated once, got %d sets", cache.sets)
	}
}

func TestRequestService_ListPending_CacheHitSkipsRepo(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	cached := []*domain.DonationRequest{{ID: "cached_1", Status: domain.StatusPending}}
	cache := &spyCache{items: cached, hit: true}
	svc := newTestRequestService(users, repo, cache)

	items, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "cached_1" {
		t.Fatalf("expected cached items, got %+v", items)
	}
}

// ---------------------------------------------------------------------------
// Pledge
// ---------------------------------------------------------------------------

func seedRequest(repo *stubRequestRepo, requesterEmail string, status domain.RequestStatus) *domain.DonationRequest {
	repo.seq++
	r := &domain.DonationRequest{
		ID:             fmt.Sprintf("req_%d", repo.seq),
		RequesterName:  strings.Split(requesterEmail, "@")[0],
		RequesterEmail: requesterEmail,
		RecipientName:  "Rahim Uddin",
		BloodGroup:     "A+",
		District:       "Dhaka",
		Upazila:        "Savar",
		Status:         status,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	repo.byID[r.ID] = r
	return r
}

func TestRequestService_Pledge_Success(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "karim@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	r, err := svc.Pledge(context.Background(), identity("karim@example.com"), req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != domain.StatusInProgress {
		t.Errorf("expected inprogress, got %s", r.Status)
	}
	if r.DonorEmail != "karim@example.com" {
		t.Errorf("donor email wrong: %s", r.DonorEmail)
	}
	if r.DonorName == "" {
		t.Error("donor name must be set")
	}
}

func TestRequestService_Pledge_AlreadyTaken(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "karim@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusInProgress)
	svc := newTestRequestService(users, repo, nil)

	_, err := svc.Pledge(context.Background(), identity("karim@example.com"), req.ID)
	if !errors.Is(err, domain.ErrRequestConflict) {
		t.Fatalf("expected ErrRequestConflict, got %v", err)
	}
}

func TestRequestService_Pledge_SecondPledgeLoses(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "karim@example.com", domain.RoleDonor, domain.UserActive)
	seedUser(users, "jamal@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	if _, err := svc.Pledge(context.Background(), identity("karim@example.com"), req.ID); err != nil {
		t.Fatalf("first pledge failed: %v", err)
	}
	_, err := svc.Pledge(context.Background(), identity("jamal@example.com"), req.ID)
	if !errors.Is(err, domain.ErrRequestConflict) {
		t.Fatalf("second pledge must conflict, got %v", err)
	}
	// First donor remains committed.
	stored := repo.byID[req.ID]
	if stored.DonorEmail != "karim@example.com" {
		t.Errorf("winner's donor fields must survive, got %s", stored.DonorEmail)
	}
}

func TestRequestService_Pledge_BlockedDonor(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "karim@example.com", domain.RoleDonor, domain.UserBlocked)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	_, err := svc.Pledge(context.Background(), identity("karim@example.com"), req.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.byID[req.ID].Status != domain.StatusPending {
		t.Error("request must stay pending")
	}
}

func TestRequestService_Pledge_NotFound(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "karim@example.com", domain.RoleDonor, domain.UserActive)
	svc := newTestRequestService(users, repo, nil)

	_, err := svc.Pledge(context.Background(), identity("karim@example.com"), "missing")
	if !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestRequestService_Update_OwnerEditsPending(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	hospital := "Dhaka Medical College"
	r, err := svc.Update(context.Background(), identity("mina@example.com"), req.ID, ports.UpdateRequestInput{HospitalName: &hospital})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HospitalName != hospital {
		t.Errorf("hospital not updated: %s", r.HospitalName)
	}
}

func TestRequestService_Update_NonOwner(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "karim@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	name := "Someone Else"
	_, err := svc.Update(context.Background(), identity("karim@example.com"), req.ID, ports.UpdateRequestInput{RecipientName: &name})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequestService_Update_AfterPledgeConflicts(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusInProgress)
	svc := newTestRequestService(users, repo, nil)

	name := "New Recipient"
	_, err := svc.Update(context.Background(), identity("mina@example.com"), req.ID, ports.UpdateRequestInput{RecipientName: &name})
	if !errors.Is(err, domain.ErrRequestConflict) {
		t.Fatalf("expected ErrRequestConflict for non-pending edit, got %v", err)
	}
}

func TestRequestService_Update_DistrictChangeValidatesEffectivePair(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending) // Dhaka/Savar
	svc := newTestRequestService(users, repo, nil)

	// Changing only the district leaves the stored upazila, which no longer
	// belongs to the new district.
	district := "Chattogram"
	_, err := svc.Update(context.Background(), identity("mina@example.com"), req.ID, ports.UpdateRequestInput{District: &district})
	if !errors.Is(err, domain.ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}

	// Changing both to a consistent pair succeeds.
	upazila := "Patiya"
	r, err := svc.Update(context.Background(), identity("mina@example.com"), req.ID, ports.UpdateRequestInput{District: &district, Upazila: &upazila})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.District != "Chattogram" || r.Upazila != "Patiya" {
		t.Errorf("location not updated: %s/%s", r.District, r.Upazila)
	}
}

// ---------------------------------------------------------------------------
// Transition
// ---------------------------------------------------------------------------

func TestRequestService_Transition_OwnerCancelsPending(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	if err := svc.Transition(context.Background(), identity("mina@example.com"), req.ID, domain.StatusCanceled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.byID[req.ID].Status != domain.StatusCanceled {
		t.Errorf("expected canceled, got %s", repo.byID[req.ID].Status)
	}
}

func TestRequestService_Transition_ModeratorCompletesInProgress(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "vol@example.com", domain.RoleVolunteer, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusInProgress)
	svc := newTestRequestService(users, repo, nil)

	if err := svc.Transition(context.Background(), identity("vol@example.com"), req.ID, domain.StatusDone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.byID[req.ID].Status != domain.StatusDone {
		t.Errorf("expected done, got %s", repo.byID[req.ID].Status)
	}
}

func TestRequestService_Transition_PendingToDoneRejected(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	err := svc.Transition(context.Background(), identity("mina@example.com"), req.ID, domain.StatusDone)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequestService_Transition_DoneIsTerminal(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusDone)
	svc := newTestRequestService(users, repo, nil)

	err := svc.Transition(context.Background(), identity("mina@example.com"), req.ID, domain.StatusCanceled)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequestService_Transition_StrangerDenied(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "karim@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusInProgress)
	svc := newTestRequestService(users, repo, nil)

	err := svc.Transition(context.Background(), identity("karim@example.com"), req.ID, domain.StatusDone)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequestService_Transition_TargetMustBeTerminal(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusInProgress)
	svc := newTestRequestService(users, repo, nil)

	err := svc.Transition(context.Background(), identity("mina@example.com"), req.ID, domain.StatusPending)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for target=pending, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestRequestService_Delete_OwnerDeletesPending(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	if err := svc.Delete(context.Background(), identity("mina@example.com"), req.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.byID[req.ID]; ok {
		t.Error("request must be removed")
	}
}

func TestRequestService_Delete_OwnerCannotDeleteInProgress(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusInProgress)
	svc := newTestRequestService(users, repo, nil)

	err := svc.Delete(context.Background(), identity("mina@example.com"), req.ID)
	if !errors.Is(err, domain.ErrRequestConflict) {
		t.Fatalf("expected ErrRequestConflict, got %v", err)
	}
}

func TestRequestService_Delete_AdminDeletesAnyStatus(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "admin@example.com", domain.RoleAdmin, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusDone)
	svc := newTestRequestService(users, repo, nil)

	if err := svc.Delete(context.Background(), identity("admin@example.com"), req.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.byID[req.ID]; ok {
		t.Error("request must be removed")
	}
}

func TestRequestService_Delete_VolunteerNotOwnerDenied(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "vol@example.com", domain.RoleVolunteer, domain.UserActive)
	req := seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	err := svc.Delete(context.Background(), identity("vol@example.com"), req.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List and pagination
// ---------------------------------------------------------------------------

func TestRequestService_List_RequiresModerator(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	svc := newTestRequestService(users, repo, nil)

	_, err := svc.List(context.Background(), identity("mina@example.com"), ports.ListRequestsInput{})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequestService_List_Pagination(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "admin@example.com", domain.RoleAdmin, domain.UserActive)
	for i := 0; i < 25; i++ {
		r := seedRequest(repo, "mina@example.com", domain.StatusPending)
		r.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
	}
	svc := newTestRequestService(users, repo, nil)

	result, err := svc.List(context.Background(), identity("admin@example.com"), ports.ListRequestsInput{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 25 {
		t.Errorf("expected total 25, got %d", result.Total)
	}
	if len(result.Items) != 10 {
		t.Errorf("expected 10 items on page 2, got %d", len(result.Items))
	}
	if result.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", result.TotalPages)
	}
}

func TestRequestService_List_OutOfRangePageIsEmpty(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "admin@example.com", domain.RoleAdmin, domain.UserActive)
	seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	result, err := svc.List(context.Background(), identity("admin@example.com"), ports.ListRequestsInput{Page: 9, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("expected empty page, got %d items", len(result.Items))
	}
	if result.Total != 1 {
		t.Errorf("total must still report matches, got %d", result.Total)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, -1, 1, 10},
		{2, 50, 2, 50},
		{1, 1000, 1, 100},
	}
	for _, tc := range cases {
		p, l := normalizePage(tc.page, tc.limit)
		if p != tc.wantPage || l != tc.wantLimit {
			t.Errorf("normalizePage(%d,%d) = (%d,%d), want (%d,%d)", tc.page, tc.limit, p, l, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("totalPages(%d,%d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// ListByRequester
// ---------------------------------------------------------------------------

func TestRequestService_ListByRequester_Self(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserActive)
	seedRequest(repo, "mina@example.com", domain.StatusPending)
	seedRequest(repo, "other@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	items, err := svc.ListByRequester(context.Background(), identity("mina@example.com"), "mina@example.com", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected only own requests, got %d", len(items))
	}
}

func TestRequestService_ListByRequester_BlockedKeepsReadAccess(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "mina@example.com", domain.RoleDonor, domain.UserBlocked)
	seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	items, err := svc.ListByRequester(context.Background(), identity("mina@example.com"), "mina@example.com", 0)
	if err != nil {
		t.Fatalf("blocked accounts must keep read access: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 request, got %d", len(items))
	}
}

func TestRequestService_ListByRequester_StrangerDenied(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "karim@example.com", domain.RoleDonor, domain.UserActive)
	seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	_, err := svc.ListByRequester(context.Background(), identity("karim@example.com"), "mina@example.com", 0)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequestService_ListByRequester_ModeratorAllowed(t *testing.T) {
	users, repo := newStubUserRepo(), newStubRequestRepo()
	seedUser(users, "vol@example.com", domain.RoleVolunteer, domain.UserActive)
	seedRequest(repo, "mina@example.com", domain.StatusPending)
	svc := newTestRequestService(users, repo, nil)

	items, err := svc.ListByRequester(context.Background(), identity("vol@example.com"), "mina@example.com", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 request, got %d", len(items))
	}
}
