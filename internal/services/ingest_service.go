package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/media"
	"gaadibazaar/internal/repos"
)

const (
	// MinImages is the smallest number of image payloads (primary included)
	// a submission may carry.
	MinImages = 3
	// ReviewWarningThreshold: more warnings than this and the record is held
	// for manual review. All warning categories count equally toward it.
	ReviewWarningThreshold = 2
)

var (
	// ErrInfra marks a store/upload failure: the data was fine but the
	// system could not process it. Retryable, unlike validation failures.
	ErrInfra = errors.New("ingestion infrastructure failure")

	ErrQuotaExceeded   = errors.New("monthly upload quota exceeded")
	ErrPartnerNotFound = errors.New("partner not found")
	ErrPartnerInactive = errors.New("partner is inactive")
)

// ValidationError carries the structural findings of an aborted submission.
// Nothing was persisted and nothing was uploaded.
type ValidationError struct {
	Issues []domain.Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "submission rejected: " + e.Issues[0].Message
	}
	return fmt.Sprintf("submission rejected: %d validation errors", len(e.Issues))
}

// ImagePayload is either an in-memory buffer (quick add) or a remote URL
// (batch path).
type ImagePayload struct {
	Name string
	Data []byte
	URL  string
}

type Submission struct {
	PartnerID    string
	VIN          string
	Make         string
	Model        string
	Year         int
	Price        float64
	Mileage      int
	Condition    string
	FuelType     string
	Transmission string
	Color        string
	BodyStyle    string
	City         string
	State        string
	Description  string
	PrimaryImage ImagePayload
	ExtraImages  []ImagePayload
}

type SubmissionResult struct {
	VehicleID string         `json:"vehicle_id"`
	Slug      string         `json:"slug"`
	Status    string         `json:"status"`
	Warnings  []domain.Issue `json:"warnings"`
}

// IngestService sequences the validators, uploads assets, assigns the
// lifecycle state and persists record + report + quota in one transaction.
type IngestService struct {
	VIN      *VINService
	Price    *PriceService
	Images   *ImageService
	Partners *repos.PartnerRepo
	Vehicles *repos.VehicleRepo
	Assets   media.AssetStore
}

func NewIngestService(vin *VINService, price *PriceService, images *ImageService,
	partners *repos.PartnerRepo, vehicles *repos.VehicleRepo, assets media.AssetStore) *IngestService {
	return &IngestService{VIN: vin, Price: price, Images: images,
		Partners: partners, Vehicles: vehicles, Assets: assets}
}

func (s *IngestService) Submit(sub Submission) (*SubmissionResult, error) {
	partner, err := s.Partners.ByID(sub.PartnerID)
	if err == sql.ErrNoRows {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfra, err)
	}
	if !partner.Active {
		return nil, ErrPartnerInactive
	}

	if issues := requiredFieldIssues(sub); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	// Advisory pre-check so a blocked partner doesn't get assets uploaded.
	// The authoritative check is the conditional increment at persist time.
	now := time.Now()
	used, limit, err := s.Partners.QuotaRemaining(sub.PartnerID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfra, err)
	}
	if used >= limit {
		return nil, ErrQuotaExceeded
	}

	vinCheck, err := s.VIN.Check(sub.PartnerID, sub.VIN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfra, err)
	}
	if !vinCheck.Valid {
		return nil, &ValidationError{Issues: vinCheck.Errors}
	}

	priceCheck, err := s.Price.Check(sub.Make, sub.Model, sub.Year, sub.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfra, err)
	}

	// Every image must pass; partial acceptance is not allowed.
	var fatals []domain.Issue
	imageChecks := map[string]domain.ImageCheck{}
	payloads := map[string][]byte{}

	resolve := func(field string, p ImagePayload) {
		data := p.Data
		if len(data) == 0 && p.URL != "" {
			fetched, issue := s.Images.FetchURL(field, p.URL)
			if issue != nil {
				imageChecks[field] = domain.ImageCheck{Errors: []domain.Issue{*issue}}
				fatals = append(fatals, *issue)
				return
			}
			data = fetched
		}
		check := s.Images.ValidateBuffer(field, data)
		imageChecks[field] = check
		if len(check.Errors) > 0 {
			fatals = append(fatals, check.Errors...)
			return
		}
		payloads[field] = data
	}

	resolve("primary", sub.PrimaryImage)
	for i, p := range sub.ExtraImages {
		resolve(fmt.Sprintf("image_%d", i+1), p)
	}
	if len(fatals) > 0 {
		return nil, &ValidationError{Issues: fatals}
	}

	warnings := []domain.Issue{}
	warnings = append(warnings, vinCheck.Warnings...)
	warnings = append(warnings, priceCheck.Warnings...)
	for _, c := range imageChecks {
		warnings = append(warnings, c.Warnings...)
	}

	// Asset paths derive from the record id, so a retried submission
	// overwrites the same paths instead of orphaning duplicates.
	id := uuid.NewString()
	primaryPath := assetPath(partner.Code, id, "primary", sub.PrimaryImage.Name)
	if _, err := s.Assets.Store(payloads["primary"], primaryPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfra, err)
	}
	extraPaths := make([]string, 0, len(sub.ExtraImages))
	for i, p := range sub.ExtraImages {
		field := fmt.Sprintf("image_%d", i+1)
		path := assetPath(partner.Code, id, field, p.Name)
		if _, err := s.Assets.Store(payloads[field], path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInfra, err)
		}
		extraPaths = append(extraPaths, path)
	}

	slug := slugify(partner.Code + " " + sub.Make + " " + sub.Model + " " + id[:8])

	// Errors are impossible here: a fatal finding already aborted the flow.
	status := domain.StatusApproved
	if priceCheck.Outlier || vinCheck.Duplicate || len(warnings) > ReviewWarningThreshold {
		status = domain.StatusOnHold
	}

	city, state := sub.City, sub.State
	if city == "" {
		city = partner.City
	}
	if state == "" {
		state = partner.State
	}

	record := &domain.VehicleRecord{
		ID:              id,
		PartnerID:       partner.ID,
		VIN:             vinCheck.Normalized,
		Make:            sub.Make,
		Model:           sub.Model,
		Year:            sub.Year,
		Price:           sub.Price,
		Mileage:         sub.Mileage,
		Condition:       sub.Condition,
		FuelType:        sub.FuelType,
		Transmission:    sub.Transmission,
		Color:           sub.Color,
		BodyStyle:       sub.BodyStyle,
		City:            city,
		State:           state,
		SellerName:      partner.Name,
		SellerPhone:     partner.Phone,
		Description:     sub.Description,
		PrimaryImage:    primaryPath,
		ExtraImagesJSON: mustJSON(extraPaths),
		Slug:            slug,
		Status:          status,
		ErrorsJSON:      "[]",
		WarningsJSON:    mustJSON(warnings),
		PriceOutlier:    priceCheck.Outlier,
		MedianPrice:     priceCheck.Median,
		Duplicate:       vinCheck.Duplicate,
		DuplicateOfVIN:  vinCheck.DuplicateOfVIN,
	}

	report := buildReport(record, vinCheck, priceCheck, imageChecks, warnings)

	if err := s.Vehicles.CreateWithQuota(record, report, now); err != nil {
		if errors.Is(err, repos.ErrQuotaExhausted) {
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("%w: %v", ErrInfra, err)
	}

	return &SubmissionResult{VehicleID: id, Slug: slug, Status: status, Warnings: warnings}, nil
}

// BatchEntryResult is the per-entry outcome of a batch submission. One entry
// failing does not abort the rest.
type BatchEntryResult struct {
	Index     int            `json:"index"`
	VehicleID string         `json:"vehicle_id,omitempty"`
	Slug      string         `json:"slug,omitempty"`
	Status    string         `json:"status,omitempty"`
	Warnings  []domain.Issue `json:"warnings,omitempty"`
	Errors    []domain.Issue `json:"errors,omitempty"`
	Err       string         `json:"error,omitempty"`
}

func (s *IngestService) SubmitBatch(subs []Submission) []BatchEntryResult {
	out := make([]BatchEntryResult, 0, len(subs))
	for i, sub := range subs {
		res, err := s.Submit(sub)
		entry := BatchEntryResult{Index: i}
		switch {
		case err == nil:
			entry.VehicleID = res.VehicleID
			entry.Slug = res.Slug
			entry.Status = res.Status
			entry.Warnings = res.Warnings
		default:
			var verr *ValidationError
			if errors.As(err, &verr) {
				entry.Errors = verr.Issues
			}
			entry.Err = err.Error()
		}
		out = append(out, entry)
	}
	return out
}

func requiredFieldIssues(sub Submission) []domain.Issue {
	var issues []domain.Issue
	missing := func(field string) {
		issues = append(issues, domain.Issue{
			Code: domain.CodeMissingField, Field: field, Message: field + " is required",
		})
	}
	if strings.TrimSpace(sub.VIN) == "" {
		missing("vin")
	}
	if strings.TrimSpace(sub.Make) == "" {
		missing("make")
	}
	if strings.TrimSpace(sub.Model) == "" {
		missing("model")
	}
	if sub.Year == 0 {
		missing("year")
	}
	if sub.Price <= 0 {
		missing("price")
	}
	total := len(sub.ExtraImages)
	if len(sub.PrimaryImage.Data) > 0 || sub.PrimaryImage.URL != "" {
		total++
	} else {
		missing("primary_image")
	}
	if total < MinImages {
		issues = append(issues, domain.Issue{
			Code: domain.CodeTooFewImages, Field: "images",
			Message: fmt.Sprintf("at least %d images are required, got %d", MinImages, total),
		})
	}
	return issues
}

func buildReport(rec *domain.VehicleRecord, vin domain.VINCheck, price domain.PriceCheck,
	images map[string]domain.ImageCheck, warnings []domain.Issue) *domain.ValidationReport {
	detail := mustJSON(map[string]any{
		"vin":    vin,
		"price":  price,
		"images": images,
	})
	checked := 2 + len(images) // vin + price + each image
	return &domain.ValidationReport{
		ID:             uuid.NewString(),
		VehicleID:      rec.ID,
		PartnerID:      rec.PartnerID,
		Checked:        checked,
		Passed:         checked,
		Failed:         0,
		Warned:         len(warnings),
		DetailJSON:     detail,
		ReviewRequired: rec.Status == domain.StatusOnHold,
	}
}

func assetPath(partnerCode, vehicleID, field, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		ext = ".jpg"
	}
	return fmt.Sprintf("partners/%s/vehicles/%s/%s%s", partnerCode, vehicleID, field, ext)
}

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = reNonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
