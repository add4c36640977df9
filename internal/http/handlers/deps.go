package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"

	"gaadibazaar/internal/config"
	"gaadibazaar/internal/media"
	"gaadibazaar/internal/repos"
	"gaadibazaar/internal/services"
)

type Deps struct {
	PartnerHandler    *PartnerHandler
	IngestHandler     *IngestHandler
	FeedHandler       *FeedHandler
	ModerationHandler *ModerationHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, assets media.AssetStore) *Deps {
	partnerRepo := repos.NewPartnerRepo(db)
	vehicleRepo := repos.NewVehicleRepo(db)
	reportRepo := repos.NewReportRepo(db)

	vinSvc := services.NewVINService(vehicleRepo)
	priceSvc := services.NewPriceService(vehicleRepo)
	imageSvc := services.NewImageService(services.DefaultImagePolicy())
	ingestSvc := services.NewIngestService(vinSvc, priceSvc, imageSvc, partnerRepo, vehicleRepo, assets)
	partnerSvc := services.NewPartnerService(partnerRepo, cfg.MonthlyQuota)
	feedSvc := services.NewFeedService(vehicleRepo, assets, cfg.BaseURL)
	modSvc := services.NewModerationService(vehicleRepo)

	// Per-partner submission throttle on top of the IP limiter.
	window := services.NewRateWindow(30, time.Minute)

	return &Deps{
		PartnerHandler:    &PartnerHandler{Partners: partnerSvc, VehicleRepo: vehicleRepo, Reports: reportRepo},
		IngestHandler:     &IngestHandler{Ingest: ingestSvc, Window: window},
		FeedHandler:       &FeedHandler{Feed: feedSvc},
		ModerationHandler: &ModerationHandler{Moderation: modSvc},
	}
}
