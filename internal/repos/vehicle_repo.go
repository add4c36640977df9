package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gaadibazaar/internal/domain"
)

// ErrQuotaExhausted means the partner's monthly upload limit blocked the
// insert; nothing was persisted.
var ErrQuotaExhausted = errors.New("monthly upload quota exhausted")

type VehicleRepo struct {
	db       *sqlx.DB
	partners *PartnerRepo
}

func NewVehicleRepo(db *sqlx.DB) *VehicleRepo {
	return &VehicleRepo{db: db, partners: NewPartnerRepo(db)}
}

const vehicleCols = `
	  id, partner_id, vin, make, model, year, price, mileage, condition,
	  fuel_type, transmission, color, body_style, city, state,
	  seller_name, seller_phone, description, primary_image, extra_images_json,
	  slug, status, errors_json, warnings_json, price_outlier, median_price,
	  duplicate, duplicate_of_vin, created_at, COALESCE(updated_at,'') AS updated_at`

// CreateWithQuota inserts the vehicle record, its validation report, and
// consumes one unit of the partner's monthly quota in a single transaction.
// The quota check is a conditional UPDATE, so two concurrent submissions
// cannot both pass a stale read; the loser rolls back with ErrQuotaExhausted.
func (r *VehicleRepo) CreateWithQuota(v *domain.VehicleRecord, rep *domain.ValidationReport, now time.Time) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.partners.rolloverIfElapsed(tx, v.PartnerID, now); err != nil {
		return err
	}

	res, err := tx.Exec(`
	  UPDATE partners
	  SET monthly_uploads = monthly_uploads + 1, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND monthly_uploads < monthly_limit
	`, v.PartnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuotaExhausted
	}

	if _, err := tx.Exec(`
	  INSERT INTO vehicles(
	    id, partner_id, vin, make, model, year, price, mileage, condition,
	    fuel_type, transmission, color, body_style, city, state,
	    seller_name, seller_phone, description, primary_image, extra_images_json,
	    slug, status, errors_json, warnings_json, price_outlier, median_price,
	    duplicate, duplicate_of_vin, created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, v.ID, v.PartnerID, v.VIN, v.Make, v.Model, v.Year, v.Price, v.Mileage, v.Condition,
		v.FuelType, v.Transmission, v.Color, v.BodyStyle, v.City, v.State,
		v.SellerName, v.SellerPhone, v.Description, v.PrimaryImage, v.ExtraImagesJSON,
		v.Slug, v.Status, v.ErrorsJSON, v.WarningsJSON, v.PriceOutlier, v.MedianPrice,
		v.Duplicate, v.DuplicateOfVIN); err != nil {
		return err
	}

	if _, err := tx.Exec(`
	  INSERT INTO validation_reports(
	    id, vehicle_id, partner_id, checked, passed, failed, warned,
	    detail_json, review_required, created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, rep.ID, rep.VehicleID, rep.PartnerID, rep.Checked, rep.Passed, rep.Failed, rep.Warned,
		rep.DetailJSON, rep.ReviewRequired); err != nil {
		return err
	}

	return tx.Commit()
}

// FirstByPartnerVIN returns the earliest record for this partner+VIN, or
// (nil, nil) when none exists.
func (r *VehicleRepo) FirstByPartnerVIN(partnerID, vin string) (*domain.VehicleRecord, error) {
	var v domain.VehicleRecord
	err := r.db.Get(&v, `
	  SELECT `+vehicleCols+`
	  FROM vehicles
	  WHERE partner_id = ? AND vin = ?
	  ORDER BY created_at ASC, id ASC
	  LIMIT 1
	`, partnerID, vin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ComparablePrices returns prices of approved records sharing make, model
// and year exactly.
func (r *VehicleRepo) ComparablePrices(mk, model string, year int) ([]float64, error) {
	var prices []float64
	err := r.db.Select(&prices, `
	  SELECT price FROM vehicles
	  WHERE make = ? AND model = ? AND year = ? AND status = ?
	`, mk, model, year, domain.StatusApproved)
	return prices, err
}

func (r *VehicleRepo) Get(id string) (*domain.VehicleRecord, error) {
	var v domain.VehicleRecord
	if err := r.db.Get(&v, `SELECT `+vehicleCols+` FROM vehicles WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepo) ListByPartner(partnerID string) ([]domain.VehicleRecord, error) {
	var out []domain.VehicleRecord
	err := r.db.Select(&out, `
	  SELECT `+vehicleCols+`
	  FROM vehicles
	  WHERE partner_id = ?
	  ORDER BY created_at DESC, id DESC
	`, partnerID)
	return out, err
}

// UpdateStatus applies a moderation state change. Legality of the transition
// is the service's job.
func (r *VehicleRepo) UpdateStatus(id, status string) error {
	res, err := r.db.Exec(`
	  UPDATE vehicles SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
