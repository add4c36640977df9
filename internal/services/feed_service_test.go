package services_test

import (
	"testing"

	"gaadibazaar/internal/repos"
	"gaadibazaar/internal/services"
)

func TestFeed_PartitionsApprovedAndHeld(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	seedApproved(t, db, "v1", "p1", "MA3ERLF4S00000001", "Maruti Suzuki", "Swift", 2020, 600000)
	seedApproved(t, db, "v2", "p1", "MA3ERLF4S00000002", "Maruti Suzuki", "Baleno", 2021, 700000)
	if _, err := db.Exec(`
	  INSERT INTO vehicles(id, partner_id, vin, make, model, year, price,
	                       primary_image, slug, status, warnings_json, price_outlier)
	  VALUES('v3','p1','MA3ERLF4S00000003','Tata','Nexon',2021,2000000,
	         'partners/testmotors/vehicles/v3/primary.jpg','tata-nexon-v3','on_hold',
	         '[{"code":"price_outlier","field":"price","message":"price is 233% above the median"}]',1)
	`); err != nil {
		t.Fatal(err)
	}

	store := newMemStore()
	svc := services.NewFeedService(repos.NewVehicleRepo(db), store, "https://gaadibazaar.in/")

	feed, summary, err := svc.Generate("p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 2 {
		t.Fatalf("want 2 feed entries, got %d", len(feed))
	}
	if len(summary) != 1 {
		t.Fatalf("want 1 error-summary entry, got %d", len(summary))
	}

	bad := summary[0]
	if bad.VehicleID != "v3" || bad.VIN != "MA3ERLF4S00000003" || bad.State != "on_hold" {
		t.Fatalf("bad summary entry %+v", bad)
	}
	if len(bad.Warnings) != 1 || bad.Warnings[0].Code != "price_outlier" {
		t.Fatalf("stored warnings must surface in the summary, got %+v", bad.Warnings)
	}
}

func TestFeed_SchemaProjection(t *testing.T) {
	db := memdb(t)
	seedPartner(t, db, "p1", "testmotors", 0, 100)
	if _, err := db.Exec(`
	  INSERT INTO vehicles(id, partner_id, vin, make, model, year, price, mileage,
	                       condition, fuel_type, transmission, color, body_style,
	                       city, state, seller_name, seller_phone,
	                       primary_image, extra_images_json, slug, status)
	  VALUES('v1','p1','MA3ERLF4S00123456','Maruti Suzuki','Swift',2020,650000,42000,
	         'used','petrol','manual','red','hatchback',
	         'Pune','MH','Test Motors','+919900112233',
	         'partners/testmotors/vehicles/v1/primary.jpg',
	         '["partners/testmotors/vehicles/v1/image_1.jpg"]',
	         'testmotors-maruti-suzuki-swift-abc12345','approved')
	`); err != nil {
		t.Fatal(err)
	}

	svc := services.NewFeedService(repos.NewVehicleRepo(db), newMemStore(), "https://gaadibazaar.in")
	feed, _, err := svc.Generate("p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 {
		t.Fatalf("want 1 entry, got %d", len(feed))
	}
	e := feed[0]

	if e.Title != "2020 Maruti Suzuki Swift" {
		t.Fatalf("title %q", e.Title)
	}
	if e.Price != "650000 INR" {
		t.Fatalf("price %q", e.Price)
	}
	if e.Availability != "in stock" {
		t.Fatalf("availability %q", e.Availability)
	}
	if e.Link != "https://gaadibazaar.in/listing/testmotors-maruti-suzuki-swift-abc12345" {
		t.Fatalf("link %q", e.Link)
	}
	if e.ImageLink != "http://cdn.test/media/partners/testmotors/vehicles/v1/primary.jpg" {
		t.Fatalf("image link %q", e.ImageLink)
	}
	if len(e.AdditionalImageLinks) != 1 ||
		e.AdditionalImageLinks[0] != "http://cdn.test/media/partners/testmotors/vehicles/v1/image_1.jpg" {
		t.Fatalf("additional links %+v", e.AdditionalImageLinks)
	}
	if e.Mileage.Value != 42000 || e.Mileage.Unit != "km" {
		t.Fatalf("mileage %+v", e.Mileage)
	}
	if e.Location.Country != "IN" || e.Location.City != "Pune" || e.Location.Region != "MH" {
		t.Fatalf("location %+v", e.Location)
	}
	if e.VehicleIdentificationNumber != "MA3ERLF4S00123456" {
		t.Fatalf("vin %q", e.VehicleIdentificationNumber)
	}
	if e.SellerName != "Test Motors" || e.SellerPhone != "+919900112233" {
		t.Fatalf("seller %q %q", e.SellerName, e.SellerPhone)
	}
}
