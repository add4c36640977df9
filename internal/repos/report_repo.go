package repos

import (
	"github.com/jmoiron/sqlx"

	"gaadibazaar/internal/domain"
)

// ReportRepo reads validation reports back out; writes happen inside the
// ingestion transaction in VehicleRepo.CreateWithQuota.
type ReportRepo struct{ db *sqlx.DB }

func NewReportRepo(db *sqlx.DB) *ReportRepo { return &ReportRepo{db: db} }

func (r *ReportRepo) ByVehicle(vehicleID string) (*domain.ValidationReport, error) {
	var rep domain.ValidationReport
	err := r.db.Get(&rep, `
	  SELECT id, vehicle_id, partner_id, checked, passed, failed, warned,
	         detail_json, review_required, created_at
	  FROM validation_reports WHERE vehicle_id = ?
	`, vehicleID)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepo) ListByPartner(partnerID string, limit int) ([]domain.ValidationReport, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.ValidationReport
	err := r.db.Select(&out, `
	  SELECT id, vehicle_id, partner_id, checked, passed, failed, warned,
	         detail_json, review_required, created_at
	  FROM validation_reports
	  WHERE partner_id = ?
	  ORDER BY created_at DESC
	  LIMIT ?
	`, partnerID, limit)
	return out, err
}
