package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/repos"
)

type PartnerService struct {
	Partners     *repos.PartnerRepo
	MonthlyQuota int
}

func NewPartnerService(partners *repos.PartnerRepo, monthlyQuota int) *PartnerService {
	return &PartnerService{Partners: partners, MonthlyQuota: monthlyQuota}
}

type RegisterInput struct {
	Name  string
	Code  string
	Email string
	Phone string
	City  string
	State string
}

// Registered is returned once; the plaintext API key is not stored.
type Registered struct {
	PartnerID string `json:"partner_id"`
	Code      string `json:"code"`
	APIKey    string `json:"api_key"`
}

// Register creates the partner with a fresh API key (bcrypt-hashed at rest)
// and the first monthly quota window. Duplicate store code or email surfaces
// as repos.ErrConflict.
func (s *PartnerService) Register(in RegisterInput) (*Registered, error) {
	apiKey := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &domain.Partner{
		ID:            uuid.NewString(),
		Code:          strings.ToLower(strings.TrimSpace(in.Code)),
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		City:          strings.TrimSpace(in.City),
		State:         strings.TrimSpace(in.State),
		APIKeyHash:    string(hash),
		Active:        true,
		MonthlyLimit:  s.MonthlyQuota,
		QuotaResetsAt: time.Now().AddDate(0, 1, 0).UTC().Format(time.RFC3339),
	}
	if err := s.Partners.Create(p); err != nil {
		return nil, err
	}
	return &Registered{PartnerID: p.ID, Code: p.Code, APIKey: apiKey}, nil
}

// VerifyKey checks a presented API key against the stored hash.
func (s *PartnerService) VerifyKey(partnerID, apiKey string) bool {
	p, err := s.Partners.ByID(partnerID)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.APIKeyHash), []byte(apiKey)) == nil
}

type QuotaSummary struct {
	Limit       int            `json:"limit"`
	Used        int            `json:"used"`
	Remaining   int            `json:"remaining"`
	ResetsAt    string         `json:"resets_at"`
	StateCounts map[string]int `json:"state_counts"`
}

// Quota reports remaining monthly uploads plus record counts by lifecycle
// state for partner dashboards.
func (s *PartnerService) Quota(partnerID string) (*QuotaSummary, error) {
	used, limit, err := s.Partners.QuotaRemaining(partnerID, time.Now())
	if err != nil {
		return nil, err
	}
	p, err := s.Partners.ByID(partnerID)
	if err != nil {
		return nil, err
	}
	counts, err := s.Partners.StateCounts(partnerID)
	if err != nil {
		return nil, err
	}
	return &QuotaSummary{
		Limit:       limit,
		Used:        used,
		Remaining:   limit - used,
		ResetsAt:    p.QuotaResetsAt,
		StateCounts: counts,
	}, nil
}
