package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/media"
	"gaadibazaar/internal/repos"
)

// FeedService projects a partner's approved records into the syndication
// schema and partitions the rest into an error summary. Pure read; safe to
// call at any frequency.
type FeedService struct {
	Vehicles *repos.VehicleRepo
	Assets   media.AssetStore
	BaseURL  string
}

func NewFeedService(vehicles *repos.VehicleRepo, assets media.AssetStore, baseURL string) *FeedService {
	return &FeedService{Vehicles: vehicles, Assets: assets, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *FeedService) Generate(partnerID string) ([]domain.FeedEntry, []domain.FeedError, error) {
	records, err := s.Vehicles.ListByPartner(partnerID)
	if err != nil {
		return nil, nil, err
	}

	feed := []domain.FeedEntry{}
	summary := []domain.FeedError{}
	for _, v := range records {
		if v.Status != domain.StatusApproved {
			summary = append(summary, domain.FeedError{
				VehicleID: v.ID,
				VIN:       v.VIN,
				State:     v.Status,
				Errors:    decodeIssues(v.ErrorsJSON),
				Warnings:  decodeIssues(v.WarningsJSON),
			})
			continue
		}
		feed = append(feed, s.entry(v))
	}
	return feed, summary, nil
}

func (s *FeedService) entry(v domain.VehicleRecord) domain.FeedEntry {
	var extraPaths []string
	_ = json.Unmarshal([]byte(v.ExtraImagesJSON), &extraPaths)
	extraLinks := make([]string, 0, len(extraPaths))
	for _, p := range extraPaths {
		extraLinks = append(extraLinks, s.Assets.PublicURL(p))
	}

	return domain.FeedEntry{
		ID:                          v.ID,
		Title:                       fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model),
		Link:                        s.BaseURL + "/listing/" + v.Slug,
		Price:                       fmt.Sprintf("%.0f INR", v.Price),
		ImageLink:                   s.Assets.PublicURL(v.PrimaryImage),
		Condition:                   v.Condition,
		Availability:                "in stock",
		VehicleIdentificationNumber: v.VIN,
		Make:                        v.Make,
		Model:                       v.Model,
		Year:                        v.Year,
		Mileage:                     domain.FeedMileage{Value: v.Mileage, Unit: "km"},
		FuelType:                    v.FuelType,
		Transmission:                v.Transmission,
		Color:                       v.Color,
		BodyStyle:                   v.BodyStyle,
		AdditionalImageLinks:        extraLinks,
		SellerName:                  v.SellerName,
		SellerPhone:                 v.SellerPhone,
		Location: domain.FeedLocation{
			Address: strings.TrimSpace(v.City + " " + v.State),
			City:    v.City,
			Region:  v.State,
			Country: "IN",
		},
	}
}

func decodeIssues(raw string) []domain.Issue {
	out := []domain.Issue{}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
