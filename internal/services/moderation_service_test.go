package services_test

import (
	"testing"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/repos"
	"gaadibazaar/internal/services"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{domain.StatusOnHold, domain.StatusApproved, true},
		{domain.StatusOnHold, domain.StatusRejected, true},
		{domain.StatusApproved, domain.StatusRejected, true},
		{domain.StatusApproved, domain.StatusOnHold, true},
		{domain.StatusRejected, domain.StatusApproved, false},
		{domain.StatusRejected, domain.StatusOnHold, false},
		{domain.StatusApproved, domain.StatusApproved, true}, // self is a no-op
	}
	for _, c := range cases {
		if got := services.CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("%s -> %s: want %v, got %v", c.from, c.to, c.want, got)
		}
	}
}

func TestModeration_SetState(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	seedApproved(t, db, "v1", "p1", "MA3ERLF4S00000001", "Tata", "Nexon", 2021, 600000)

	svc := services.NewModerationService(repos.NewVehicleRepo(db))

	v, err := svc.SetState("v1", domain.StatusRejected)
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != domain.StatusRejected {
		t.Fatalf("want rejected, got %s", v.Status)
	}

	// rejected is terminal
	if _, err := svc.SetState("v1", domain.StatusApproved); err == nil {
		t.Fatal("transition out of rejected must fail")
	}
}
