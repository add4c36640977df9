package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"gaadibazaar/internal/domain"
	applog "gaadibazaar/internal/log"
	"gaadibazaar/internal/repos"
	"gaadibazaar/internal/services"
	"gaadibazaar/internal/validate"
)

type PartnerHandler struct {
	Partners *services.PartnerService
	VehicleRepo *repos.VehicleRepo
	Reports     *repos.ReportRepo
}

type registerBody struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
	State string `json:"state"`
}

// POST /api/v1/partners
func (h *PartnerHandler) Register(c *fiber.Ctx) error {
	var body registerBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	name, ok := validate.Name(body.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "enter a valid partner name")
	}
	code, ok := validate.StoreCode(body.Code)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "store code must be 2-32 lowercase letters/digits/hyphens")
	}
	email, ok := validate.Email(body.Email)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "enter a valid email")
	}
	phone := ""
	if body.Phone != "" {
		p, ok := validate.Phone(body.Phone)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "enter a valid phone number")
		}
		phone = p
	}

	reg, err := h.Partners.Register(services.RegisterInput{
		Name: name, Code: code, Email: email, Phone: phone,
		City: body.City, State: body.State,
	})
	if errors.Is(err, repos.ErrConflict) {
		applog.Security(c, "partner.register.conflict", map[string]any{"code": code})
		return jsonError(c, fiber.StatusConflict, "a partner with this store code or email already exists")
	}
	if err != nil {
		applog.Error(c, "partner.register.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not register partner")
	}
	applog.Audit(c, "partner.register", map[string]any{"partner_id": reg.PartnerID, "code": code})
	return c.Status(fiber.StatusCreated).JSON(reg)
}

// GET /api/v1/partners/:id/quota
func (h *PartnerHandler) Quota(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid partner id")
	}
	q, err := h.Partners.Quota(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "partner not found")
	}
	return c.JSON(q)
}

type vehicleSummary struct {
	ID        string  `json:"id"`
	VIN       string  `json:"vin"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
	Outlier   bool    `json:"price_outlier"`
	Duplicate bool    `json:"duplicate"`
}

// GET /api/v1/partners/:id/vehicles
func (h *PartnerHandler) Vehicles(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid partner id")
	}
	records, err := h.VehicleRepo.ListByPartner(id)
	if err != nil {
		applog.Error(c, "partner.vehicles.list.fail", err, map[string]any{"partner_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not load vehicles")
	}
	out := make([]vehicleSummary, 0, len(records))
	for _, v := range records {
		out = append(out, vehicleSummary{
			ID: v.ID, VIN: v.VIN,
			Title:  titleOf(v),
			Slug:   v.Slug,
			Status: v.Status,
			Price:  v.Price, Outlier: v.PriceOutlier, Duplicate: v.Duplicate,
		})
	}
	return c.JSON(fiber.Map{"vehicles": out, "count": len(out)})
}

// GET /api/v1/partners/:id/reports
func (h *PartnerHandler) RecentReports(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid partner id")
	}
	reports, err := h.Reports.ListByPartner(id, c.QueryInt("limit", 50))
	if err != nil {
		applog.Error(c, "partner.reports.list.fail", err, map[string]any{"partner_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not load reports")
	}
	return c.JSON(fiber.Map{"reports": reports, "count": len(reports)})
}

// GET /api/v1/vehicles/:id/report
func (h *PartnerHandler) Report(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid vehicle id")
	}
	rep, err := h.Reports.ByVehicle(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "report not found")
	}
	return c.JSON(rep)
}

func titleOf(v domain.VehicleRecord) string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}
