package services

import (
	"fmt"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/repos"
	"gaadibazaar/internal/validate"
)

// VINPolicy decides which structural rules apply. Indian-market VINs do not
// carry the ISO 3779 check digit, so enforcement is off by default and can
// be switched on for markets that use it.
type VINPolicy struct {
	EnforceCheckDigit bool
}

type VINService struct {
	Policy   VINPolicy
	Vehicles *repos.VehicleRepo
}

func NewVINService(vehicles *repos.VehicleRepo) *VINService {
	return &VINService{Vehicles: vehicles}
}

// Check validates the VIN structurally and, on success, looks for a prior
// record by the same partner with the same normalized VIN. A duplicate does
// not block ingestion; re-submission after an edit is common, so it degrades
// to review material.
func (s *VINService) Check(partnerID, raw string) (domain.VINCheck, error) {
	norm, ok := validate.VIN(raw)
	if !ok {
		return domain.VINCheck{
			Normalized: norm,
			Errors: []domain.Issue{{
				Code: domain.CodeInvalidFormat, Field: "vin",
				Message: "VIN must be 17 characters (letters/digits, no I/O/Q)",
			}},
		}, nil
	}
	if s.Policy.EnforceCheckDigit && !checkDigitValid(norm) {
		return domain.VINCheck{
			Normalized: norm,
			Errors: []domain.Issue{{
				Code: domain.CodeInvalidFormat, Field: "vin",
				Message: "VIN check digit mismatch",
			}},
		}, nil
	}

	out := domain.VINCheck{Valid: true, Normalized: norm}
	prior, err := s.Vehicles.FirstByPartnerVIN(partnerID, norm)
	if err != nil {
		return out, err
	}
	if prior != nil {
		out.Duplicate = true
		out.DuplicateOfVIN = prior.VIN
		out.Warnings = append(out.Warnings, domain.Issue{
			Code: domain.CodeDuplicateVIN, Field: "vin",
			Message: fmt.Sprintf("already submitted as %s (vehicle %s); flagged for review", prior.VIN, prior.ID),
		})
	}
	return out, nil
}

// ISO 3779 transliteration values for the position-9 check digit.
var vinCharValues = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
}

var vinWeights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

func checkDigitValid(vin string) bool {
	sum := 0
	for i := 0; i < 17; i++ {
		sum += vinCharValues[vin[i]] * vinWeights[i]
	}
	want := byte('0' + sum%11)
	if sum%11 == 10 {
		want = 'X'
	}
	return vin[8] == want
}
