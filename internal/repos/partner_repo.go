package repos

import (
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"gaadibazaar/internal/domain"
)

// ErrConflict marks a uniqueness violation (duplicate store code or email).
// Callers map it to HTTP 409 instead of a generic failure.
var ErrConflict = errors.New("partner already exists")

type PartnerRepo struct{ db *sqlx.DB }

func NewPartnerRepo(db *sqlx.DB) *PartnerRepo { return &PartnerRepo{db: db} }

func (r *PartnerRepo) Create(p *domain.Partner) error {
	_, err := r.db.Exec(`
	  INSERT INTO partners(id, code, name, email, phone, city, state, api_key_hash,
	                       active, monthly_uploads, monthly_limit, quota_resets_at)
	  VALUES(?,?,?,?,?,?,?,?,1,0,?,?)
	`, p.ID, p.Code, p.Name, p.Email, p.Phone, p.City, p.State, p.APIKeyHash,
		p.MonthlyLimit, p.QuotaResetsAt)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConflict
	}
	return err
}

func (r *PartnerRepo) ByID(id string) (*domain.Partner, error) {
	var p domain.Partner
	err := r.db.Get(&p, `
	  SELECT id, code, name, email, phone, city, state, api_key_hash, active,
	         monthly_uploads, monthly_limit, quota_resets_at,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM partners WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartnerRepo) ByCode(code string) (*domain.Partner, error) {
	var p domain.Partner
	err := r.db.Get(&p, `
	  SELECT id, code, name, email, phone, city, state, api_key_hash, active,
	         monthly_uploads, monthly_limit, quota_resets_at,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM partners WHERE LOWER(code) = LOWER(?)
	`, code)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// QuotaRemaining reports limit - used after rolling the window if it elapsed.
// This is the advisory read path; the authoritative check is the conditional
// increment inside the ingestion transaction.
func (r *PartnerRepo) QuotaRemaining(id string, now time.Time) (used, limit int, err error) {
	if err = r.rolloverIfElapsed(r.db, id, now); err != nil {
		return 0, 0, err
	}
	var row struct {
		Used  int `db:"monthly_uploads"`
		Limit int `db:"monthly_limit"`
	}
	if err = r.db.Get(&row, `SELECT monthly_uploads, monthly_limit FROM partners WHERE id = ?`, id); err != nil {
		return 0, 0, err
	}
	return row.Used, row.Limit, nil
}

// StateCounts returns the partner's vehicle counts keyed by lifecycle state.
func (r *PartnerRepo) StateCounts(id string) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := r.db.Select(&rows, `
	  SELECT status, COUNT(*) AS n FROM vehicles WHERE partner_id = ? GROUP BY status
	`, id); err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// rolloverIfElapsed resets the monthly counter once the window passes.
// Works against the pool or an open transaction.
func (r *PartnerRepo) rolloverIfElapsed(e sqlx.Execer, id string, now time.Time) error {
	_, err := e.Exec(`
	  UPDATE partners
	  SET monthly_uploads = 0,
	      quota_resets_at = ?,
	      updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND quota_resets_at <= ?
	`, now.AddDate(0, 1, 0).UTC().Format(time.RFC3339), id, now.UTC().Format(time.RFC3339))
	return err
}
