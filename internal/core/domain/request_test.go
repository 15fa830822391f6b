package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from RequestStatus
		to   RequestStatus
		want bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCanceled, true},
		{StatusPending, StatusDone, false},
		{StatusPending, StatusPending, false},
		{StatusInProgress, StatusDone, true},
		{StatusInProgress, StatusCanceled, true},
		{StatusInProgress, StatusPending, false},
		{StatusDone, StatusCanceled, false},
		{StatusDone, StatusDone, false},
		{StatusCanceled, StatusInProgress, false},
		{StatusCanceled, StatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestTerminal(t *testing.T) {
	if StatusPending.Terminal() || StatusInProgress.Terminal() {
		t.Error("pending/inprogress must not be terminal")
	}
	if !StatusDone.Terminal() || !StatusCanceled.Terminal() {
		t.Error("done/canceled must be terminal")
	}
}

func TestValidBloodGroup(t *testing.T) {
	for _, g := range []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"} {
		if !ValidBloodGroup(g) {
			t.Errorf("%s must be valid", g)
		}
	}
	for _, g := range []string{"", "C+", "a+", "AB", "O"} {
		if ValidBloodGroup(g) {
			t.Errorf("%s must be invalid", g)
		}
	}
}

func TestUserRecordCanModerate(t *testing.T) {
	if (&UserRecord{Role: RoleDonor}).CanModerate() {
		t.Error("donor must not moderate")
	}
	if !(&UserRecord{Role: RoleVolunteer}).CanModerate() {
		t.Error("volunteer must moderate")
	}
	if !(&UserRecord{Role: RoleAdmin}).CanModerate() {
		t.Error("admin must moderate")
	}
}
