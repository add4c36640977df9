package handlers

import (
	"io"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "gaadibazaar/internal/log"
	"gaadibazaar/internal/services"
	"gaadibazaar/internal/validate"
)

type IngestHandler struct {
	Ingest *services.IngestService
	Window *services.RateWindow
}

// POST /api/v1/partners/:id/vehicles (multipart quick add)
//
// Fields: vin, make, model, year, price, mileage, condition, fuel_type,
// transmission, color, body_style, city, state, description.
// Files: "primary" (one) plus "images" (repeated).
func (h *IngestHandler) QuickAdd(c *fiber.Ctx) error {
	partnerID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid partner id")
	}
	c.Locals("partner_id", partnerID)

	if !h.Window.Allow(partnerID, time.Now()) {
		applog.Security(c, "ingest.rate.hit", map[string]any{"partner_id": partnerID})
		return jsonError(c, fiber.StatusTooManyRequests, "too many submissions; retry shortly")
	}

	sub, err := h.parseQuickAdd(c, partnerID)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := h.Ingest.Submit(*sub)
	if err != nil {
		return submitError(c, err)
	}
	applog.Audit(c, "ingest.accept", map[string]any{
		"partner_id": partnerID, "vehicle_id": res.VehicleID, "status": res.Status,
	})
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *IngestHandler) parseQuickAdd(c *fiber.Ctx, partnerID string) (*services.Submission, error) {
	year, _ := validate.Year(c.FormValue("year"))
	price, _ := validate.Price(c.FormValue("price"))
	mileage, _ := validate.Mileage(c.FormValue("mileage"))
	condition, _ := validate.Condition(c.FormValue("condition"))
	fuel, _ := validate.Fuel(c.FormValue("fuel_type"))
	trans, _ := validate.Transmission(c.FormValue("transmission"))

	sub := services.Submission{
		PartnerID:    partnerID,
		VIN:          c.FormValue("vin"),
		Make:         c.FormValue("make"),
		Model:        c.FormValue("model"),
		Year:         year,
		Price:        price,
		Mileage:      mileage,
		Condition:    condition,
		FuelType:     fuel,
		Transmission: trans,
		Color:        c.FormValue("color"),
		BodyStyle:    c.FormValue("body_style"),
		City:         c.FormValue("city"),
		State:        c.FormValue("state"),
		Description:  c.FormValue("description"),
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "multipart form required")
	}
	if files := form.File["primary"]; len(files) > 0 {
		data, err := readUpload(files[0])
		if err != nil {
			return nil, err
		}
		sub.PrimaryImage = services.ImagePayload{Name: files[0].Filename, Data: data}
	}
	for _, f := range form.File["images"] {
		data, err := readUpload(f)
		if err != nil {
			return nil, err
		}
		sub.ExtraImages = append(sub.ExtraImages, services.ImagePayload{Name: f.Filename, Data: data})
	}
	return &sub, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

type batchVehicle struct {
	VIN             string   `json:"vin"`
	Make            string   `json:"make"`
	Model           string   `json:"model"`
	Year            int      `json:"year"`
	Price           float64  `json:"price"`
	Mileage         int      `json:"mileage"`
	Condition       string   `json:"condition"`
	FuelType        string   `json:"fuel_type"`
	Transmission    string   `json:"transmission"`
	Color           string   `json:"color"`
	BodyStyle       string   `json:"body_style"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Description     string   `json:"description"`
	PrimaryImageURL string   `json:"primary_image_url"`
	ImageURLs       []string `json:"image_urls"`
}

// POST /api/v1/partners/:id/vehicles/batch (JSON, images by URL)
func (h *IngestHandler) Batch(c *fiber.Ctx) error {
	partnerID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid partner id")
	}
	c.Locals("partner_id", partnerID)

	var body struct {
		Vehicles []batchVehicle `json:"vehicles"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if len(body.Vehicles) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "vehicles array is empty")
	}

	// Each batch entry consumes one rate-window slot.
	now := time.Now()
	for range body.Vehicles {
		if !h.Window.Allow(partnerID, now) {
			applog.Security(c, "ingest.rate.hit", map[string]any{"partner_id": partnerID, "batch": true})
			return jsonError(c, fiber.StatusTooManyRequests, "too many submissions; retry shortly")
		}
	}

	subs := make([]services.Submission, 0, len(body.Vehicles))
	for _, v := range body.Vehicles {
		sub := services.Submission{
			PartnerID:    partnerID,
			VIN:          v.VIN,
			Make:         v.Make,
			Model:        v.Model,
			Year:         v.Year,
			Price:        v.Price,
			Mileage:      v.Mileage,
			Condition:    v.Condition,
			FuelType:     v.FuelType,
			Transmission: v.Transmission,
			Color:        v.Color,
			BodyStyle:    v.BodyStyle,
			City:         v.City,
			State:        v.State,
			Description:  v.Description,
			PrimaryImage: services.ImagePayload{Name: "primary.jpg", URL: v.PrimaryImageURL},
		}
		for _, u := range v.ImageURLs {
			sub.ExtraImages = append(sub.ExtraImages, services.ImagePayload{
				Name: "image.jpg", URL: u,
			})
		}
		subs = append(subs, sub)
	}

	results := h.Ingest.SubmitBatch(subs)
	accepted := 0
	for _, r := range results {
		if r.Err == "" {
			accepted++
		}
	}
	applog.Audit(c, "ingest.batch", map[string]any{
		"partner_id": partnerID, "total": len(results), "accepted": accepted,
	})
	return c.JSON(fiber.Map{"results": results, "accepted": accepted, "total": len(results)})
}
