package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	_ "golang.org/x/image/webp"

	"gaadibazaar/internal/domain"
)

// ImagePolicy holds the listing-image acceptance rules. The aspect band is
// advisory only: the syndication channel prefers 4:3 or 3:2 imagery.
type ImagePolicy struct {
	MinWidth     int
	MinHeight    int
	MaxBytes     int64
	MinAspect    float64
	MaxAspect    float64
	FetchTimeout time.Duration
}

func DefaultImagePolicy() ImagePolicy {
	return ImagePolicy{
		MinWidth:     800,
		MinHeight:    600,
		MaxBytes:     5 << 20,
		MinAspect:    1.2,
		MaxAspect:    1.8,
		FetchTimeout: 10 * time.Second,
	}
}

type ImageService struct {
	Policy ImagePolicy
	Client *http.Client
}

func NewImageService(policy ImagePolicy) *ImageService {
	return &ImageService{
		Policy: policy,
		Client: &http.Client{Timeout: policy.FetchTimeout},
	}
}

// ValidateBuffer checks an in-memory image. Cheapest check first: the byte
// length is rejected before any decode is attempted.
func (s *ImageService) ValidateBuffer(field string, data []byte) domain.ImageCheck {
	out := domain.ImageCheck{Bytes: len(data)}
	if int64(len(data)) > s.Policy.MaxBytes {
		out.Errors = append(out.Errors, domain.Issue{
			Code: domain.CodeTooLarge, Field: field,
			Message: fmt.Sprintf("image is %d bytes; maximum is %d", len(data), s.Policy.MaxBytes),
		})
		return out
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		out.Errors = append(out.Errors, domain.Issue{
			Code: domain.CodeUnreadable, Field: field,
			Message: "image could not be decoded (corrupt or unsupported format)",
		})
		return out
	}
	out.Width, out.Height = cfg.Width, cfg.Height

	if cfg.Width < s.Policy.MinWidth || cfg.Height < s.Policy.MinHeight {
		out.Errors = append(out.Errors, domain.Issue{
			Code: domain.CodeTooSmall, Field: field,
			Message: fmt.Sprintf("image is %dx%d; minimum is %dx%d",
				cfg.Width, cfg.Height, s.Policy.MinWidth, s.Policy.MinHeight),
		})
		return out
	}

	aspect := float64(cfg.Width) / float64(cfg.Height)
	if aspect < s.Policy.MinAspect || aspect > s.Policy.MaxAspect {
		out.Warnings = append(out.Warnings, domain.Issue{
			Code: domain.CodeAspectRatio, Field: field,
			Message: fmt.Sprintf("aspect ratio %.2f is outside the preferred %.1f-%.1f band",
				aspect, s.Policy.MinAspect, s.Policy.MaxAspect),
		})
	}
	out.Valid = true
	return out
}

// ValidateURL fetches a remote image with a bounded timeout and transfer
// size, then delegates to the buffer path. Transport failures become
// descriptive fatal errors.
func (s *ImageService) ValidateURL(field, url string) domain.ImageCheck {
	data, issue := s.FetchURL(field, url)
	if issue != nil {
		return domain.ImageCheck{Errors: []domain.Issue{*issue}}
	}
	return s.ValidateBuffer(field, data)
}

// FetchURL downloads a remote image, capped at the policy's max byte size.
// The orchestrator uses it so the same bytes it validated are the bytes it
// uploads.
func (s *ImageService) FetchURL(field, url string) ([]byte, *domain.Issue) {
	resp, err := s.Client.Get(url)
	if err != nil {
		code := domain.CodeFetchFailed
		msg := "image could not be fetched"
		var nerr interface{ Timeout() bool }
		if errors.As(err, &nerr) && nerr.Timeout() {
			code = domain.CodeFetchTimeout
			msg = "image fetch timed out"
		}
		return nil, &domain.Issue{Code: code, Field: field, Message: msg}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.Issue{Code: domain.CodeFetchNotFound, Field: field, Message: "image URL returned 404"}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &domain.Issue{Code: domain.CodeFetchForbidden, Field: field, Message: "image URL returned 403"}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.Issue{
			Code: domain.CodeFetchFailed, Field: field,
			Message: fmt.Sprintf("image URL returned status %d", resp.StatusCode),
		}
	}

	// Read one byte past the cap so an oversize body is detected without
	// transferring the whole thing.
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.Policy.MaxBytes+1))
	if err != nil {
		return nil, &domain.Issue{Code: domain.CodeFetchFailed, Field: field, Message: "image transfer failed mid-read"}
	}
	return data, nil
}

// ValidateBatch validates a set of named buffers and returns a per-name
// result map.
func (s *ImageService) ValidateBatch(assets map[string][]byte) map[string]domain.ImageCheck {
	out := make(map[string]domain.ImageCheck, len(assets))
	for name, data := range assets {
		out[name] = s.ValidateBuffer(name, data)
	}
	return out
}

// MinimumValid reports whether at least n entries in a batch result are
// individually valid. Used as a guard by callers that pre-validate instead
// of relying on the orchestrator's image-count check.
func MinimumValid(results map[string]domain.ImageCheck, n int) bool {
	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	return valid >= n
}
