package services

import (
	"fmt"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/repos"
)

// allowedTransitions is the moderation state graph. Ingestion writes
// approved/on_hold directly; everything after that flows through here.
var allowedTransitions = map[string][]string{
	domain.StatusPending:  {domain.StatusApproved, domain.StatusOnHold, domain.StatusRejected},
	domain.StatusOnHold:   {domain.StatusApproved, domain.StatusRejected},
	domain.StatusApproved: {domain.StatusOnHold, domain.StatusRejected},
	domain.StatusRejected: {}, // terminal
}

func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type ModerationService struct {
	Vehicles *repos.VehicleRepo
}

func NewModerationService(vehicles *repos.VehicleRepo) *ModerationService {
	return &ModerationService{Vehicles: vehicles}
}

// SetState applies a moderation transition after checking it is legal.
func (s *ModerationService) SetState(vehicleID, to string) (*domain.VehicleRecord, error) {
	v, err := s.Vehicles.Get(vehicleID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(v.Status, to) {
		return nil, fmt.Errorf("invalid state transition: %s -> %s", v.Status, to)
	}
	if v.Status != to {
		if err := s.Vehicles.UpdateStatus(vehicleID, to); err != nil {
			return nil, err
		}
		v.Status = to
	}
	return v, nil
}
