package services

import (
	"fmt"
	"sort"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/repos"
)

const (
	// MinComparables approved same-make/model/year records must exist
	// before a median is computed at all.
	MinComparables = 3
	// OutlierRatio flags a price strictly above 1.5x the median.
	OutlierRatio = 1.5
	// UnderpriceRatio warns (without flagging) below half the median.
	UnderpriceRatio = 0.5
)

// PriceService compares a submitted price against the median of approved
// comparables. It only ever adds warnings; it cannot abort a submission.
type PriceService struct {
	Vehicles *repos.VehicleRepo
}

func NewPriceService(vehicles *repos.VehicleRepo) *PriceService {
	return &PriceService{Vehicles: vehicles}
}

func (s *PriceService) Check(mk, model string, year int, price float64) (domain.PriceCheck, error) {
	prices, err := s.Vehicles.ComparablePrices(mk, model, year)
	if err != nil {
		return domain.PriceCheck{}, err
	}
	if len(prices) < MinComparables {
		return domain.PriceCheck{
			Warnings: []domain.Issue{{
				Code: domain.CodeNoComparables, Field: "price",
				Message: "insufficient data for comparison; flagged for review",
			}},
		}, nil
	}

	med := median(prices)
	ratio := price / med
	out := domain.PriceCheck{Median: &med, Ratio: &ratio}

	switch {
	case ratio > OutlierRatio:
		out.Outlier = true
		out.Warnings = append(out.Warnings, domain.Issue{
			Code: domain.CodePriceOutlier, Field: "price",
			Message: fmt.Sprintf("price is %.0f%% above the median of %.0f comparable listings", (ratio-1)*100, float64(len(prices))),
		})
	case ratio < UnderpriceRatio:
		out.Warnings = append(out.Warnings, domain.Issue{
			Code: domain.CodePriceSuspectLow, Field: "price",
			Message: fmt.Sprintf("price is %.0f%% below the median; possible pricing error", (1-ratio)*100),
		})
	}
	return out, nil
}

// median uses the standard definition: middle value for odd counts, mean of
// the two middle values for even counts.
func median(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
