package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/repos"
	"gaadibazaar/internal/services"
)

// memStore is an in-memory stand-in for the asset storage collaborator.
type memStore struct{ files map[string][]byte }

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (s *memStore) Store(data []byte, path string) (string, error) {
	s.files[path] = data
	return s.PublicURL(path), nil
}

func (s *memStore) PublicURL(path string) string { return "http://cdn.test/media/" + path }

type failStore struct{}

func (failStore) Store([]byte, string) (string, error) {
	return "", errors.New("bucket unreachable")
}
func (failStore) PublicURL(path string) string { return "http://cdn.test/media/" + path }

func newIngest(db *sqlx.DB, assets interface {
	Store([]byte, string) (string, error)
	PublicURL(string) string
}) *services.IngestService {
	vehicles := repos.NewVehicleRepo(db)
	return services.NewIngestService(
		services.NewVINService(vehicles),
		services.NewPriceService(vehicles),
		services.NewImageService(services.DefaultImagePolicy()),
		repos.NewPartnerRepo(db),
		vehicles,
		assets,
	)
}

func swiftSubmission(t *testing.T, vin string, price float64, images int) services.Submission {
	t.Helper()
	sub := services.Submission{
		PartnerID:    "p1",
		VIN:          vin,
		Make:         "Maruti Suzuki",
		Model:        "Swift",
		Year:         2020,
		Price:        price,
		Mileage:      42000,
		Condition:    "used",
		FuelType:     "petrol",
		Transmission: "manual",
		Color:        "red",
		BodyStyle:    "hatchback",
		City:         "Pune",
		State:        "MH",
	}
	if images > 0 {
		sub.PrimaryImage = services.ImagePayload{Name: "front.png", Data: pngBytes(t, 1000, 800)}
		for i := 1; i < images; i++ {
			sub.ExtraImages = append(sub.ExtraImages, services.ImagePayload{
				Name: fmt.Sprintf("side%d.png", i), Data: pngBytes(t, 1000, 800),
			})
		}
	}
	return sub
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestIngest_EndToEndApproved(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	// 5 prior comparables, median 600000
	for i, p := range []float64{550000, 580000, 600000, 620000, 650000} {
		seedApproved(t, db, fmt.Sprintf("c%d", i), "p1",
			fmt.Sprintf("MA3ERLF4S0000010%d", i), "Maruti Suzuki", "Swift", 2020, p)
	}
	store := newMemStore()
	svc := newIngest(db, store)

	res, err := svc.Submit(swiftSubmission(t, "MA3ERLF4S00123456", 650000, 3))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != domain.StatusApproved {
		t.Fatalf("ratio 1.083 must approve, got %+v", res)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("no warnings expected, got %+v", res.Warnings)
	}
	if !strings.HasPrefix(res.Slug, "testmotors-maruti-suzuki-swift-") {
		t.Fatalf("unexpected slug %q", res.Slug)
	}

	// record persisted with the comparison median and no flags
	rec, err := repos.NewVehicleRepo(db).Get(res.VehicleID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.PriceOutlier || rec.Duplicate {
		t.Fatalf("clean submission flagged: %+v", rec)
	}
	if rec.MedianPrice == nil || *rec.MedianPrice != 600000 {
		t.Fatalf("want median 600000, got %v", rec.MedianPrice)
	}
	if rec.SellerName != "Test Motors" || rec.SellerPhone != "+919900112233" {
		t.Fatalf("partner contact not copied: %+v", rec)
	}

	// quota incremented with the same write
	var used int
	if err := db.Get(&used, `SELECT monthly_uploads FROM partners WHERE id='p1'`); err != nil {
		t.Fatal(err)
	}
	if used != 1 {
		t.Fatalf("want quota counter 1, got %d", used)
	}

	// assets uploaded under deterministic record-derived paths
	primary := "partners/testmotors/vehicles/" + res.VehicleID + "/primary.png"
	if _, ok := store.files[primary]; !ok {
		t.Fatalf("primary asset missing, stored: %v", store.files)
	}
	if len(store.files) != 3 {
		t.Fatalf("want 3 stored assets, got %d", len(store.files))
	}

	// report written, no review required
	rep, err := repos.NewReportRepo(db).ByVehicle(res.VehicleID)
	if err != nil {
		t.Fatal(err)
	}
	if rep.ReviewRequired || rep.Failed != 0 || rep.Warned != 0 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestIngest_TooFewImagesNeverPersists(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	store := newMemStore()
	svc := newIngest(db, store)

	_, err := svc.Submit(swiftSubmission(t, "MA3ERLF4S00123456", 650000, 2))
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error, got %v", err)
	}
	found := false
	for _, is := range verr.Issues {
		if is.Code == domain.CodeTooFewImages {
			found = true
		}
	}
	if !found {
		t.Fatalf("want too_few_images, got %+v", verr.Issues)
	}
	if countRows(t, db, "vehicles") != 0 || len(store.files) != 0 {
		t.Fatal("structural failure must not persist or upload anything")
	}

	// exactly 3 valid images proceeds
	if _, err := svc.Submit(swiftSubmission(t, "MA3ERLF4S00123456", 650000, 3)); err != nil {
		t.Fatalf("3 images should proceed: %v", err)
	}
}

func TestIngest_InvalidVINAborts(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	store := newMemStore()
	svc := newIngest(db, store)

	_, err := svc.Submit(swiftSubmission(t, "NOTAVIN", 650000, 3))
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error, got %v", err)
	}
	if verr.Issues[0].Code != domain.CodeInvalidFormat {
		t.Fatalf("want invalid_format, got %+v", verr.Issues)
	}
	if countRows(t, db, "vehicles") != 0 || len(store.files) != 0 {
		t.Fatal("aborted submission left side effects")
	}
}

func TestIngest_BadExtraImageAbortsWhole(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	store := newMemStore()
	svc := newIngest(db, store)

	sub := swiftSubmission(t, "MA3ERLF4S00123456", 650000, 3)
	sub.ExtraImages[1].Data = []byte("corrupt")

	_, err := svc.Submit(sub)
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error, got %v", err)
	}
	if countRows(t, db, "vehicles") != 0 || len(store.files) != 0 {
		t.Fatal("partial image acceptance is not allowed")
	}
}

func TestIngest_DuplicateSecondSubmissionHeld(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	store := newMemStore()
	svc := newIngest(db, store)

	first, err := svc.Submit(swiftSubmission(t, "MA3ERLF4S00123456", 650000, 3))
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Submit(swiftSubmission(t, "ma3erlf4s00123456", 650000, 3))
	if err != nil {
		t.Fatalf("duplicates persist, they don't block: %v", err)
	}
	if second.Status != domain.StatusOnHold {
		t.Fatalf("duplicate should be held for review, got %s", second.Status)
	}

	rec, err := repos.NewVehicleRepo(db).Get(second.VehicleID)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Duplicate || rec.DuplicateOfVIN != "MA3ERLF4S00123456" {
		t.Fatalf("want duplicate referencing first submission, got %+v", rec)
	}
	if first.VehicleID == second.VehicleID {
		t.Fatal("both submissions must persist as distinct records")
	}
}

func TestIngest_QuotaBlockedBeforePersistence(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 100, 100)
	store := newMemStore()
	svc := newIngest(db, store)

	_, err := svc.Submit(swiftSubmission(t, "MA3ERLF4S00123456", 650000, 3))
	if !errors.Is(err, services.ErrQuotaExceeded) {
		t.Fatalf("want quota error, got %v", err)
	}
	if countRows(t, db, "vehicles") != 0 || len(store.files) != 0 {
		t.Fatal("blocked submission left side effects")
	}
}

func TestIngest_OutlierHeld(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	for i, p := range []float64{600000, 600000, 600000} {
		seedApproved(t, db, fmt.Sprintf("c%d", i), "p1",
			fmt.Sprintf("MA3ERLF4S0000010%d", i), "Maruti Suzuki", "Swift", 2020, p)
	}
	svc := newIngest(db, newMemStore())

	res, err := svc.Submit(swiftSubmission(t, "MA3ERLF4S00123456", 1000000, 3))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != domain.StatusOnHold {
		t.Fatalf("outlier must be held, got %s", res.Status)
	}

	rec, _ := repos.NewVehicleRepo(db).Get(res.VehicleID)
	if rec == nil || !rec.PriceOutlier {
		t.Fatalf("outlier flag not persisted: %+v", rec)
	}
	rep, err := repos.NewReportRepo(db).ByVehicle(res.VehicleID)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.ReviewRequired {
		t.Fatalf("report must mirror on_hold, got %+v", rep)
	}
}

func TestIngest_AssetStoreFailureIsInfra(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	svc := newIngest(db, failStore{})

	_, err := svc.Submit(swiftSubmission(t, "MA3ERLF4S00123456", 650000, 3))
	if !errors.Is(err, services.ErrInfra) {
		t.Fatalf("store failure must surface as infrastructure error, got %v", err)
	}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		t.Fatal("infrastructure failure must not look like a validation failure")
	}
	if countRows(t, db, "vehicles") != 0 {
		t.Fatal("no record may exist after an upload failure")
	}
}
