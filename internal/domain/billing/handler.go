package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/invoice"
)

// AdmissionInfo is the admission context the invoice header needs.
type AdmissionInfo struct {
	UHID        string
	PatientName string
	RoomType    string
	BedNumber   string
	DoctorName  string
	AdmitDate   time.Time
}

// AdmissionReader resolves admission context for invoice export.
type AdmissionReader interface {
	AdmissionInfo(ctx context.Context, admissionID uuid.UUID) (*AdmissionInfo, error)
}

type Handler struct {
	svc        *Service
	admissions AdmissionReader
}

func NewHandler(svc *Service, admissions AdmissionReader) *Handler {
	return &Handler{svc: svc, admissions: admissions}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "billing", "registrar"))
	readGroup.GET("/admissions/:id/bill", h.GetBill)
	readGroup.GET("/admissions/:id/bill/export", h.ExportBill)

	writeGroup := api.Group("", auth.RequireRole("admin", "billing"))
	writeGroup.POST("/admissions/:id/charges/services", h.AddServiceCharge)
	writeGroup.POST("/admissions/:id/charges/consultants", h.AddConsultantCharge)
	writeGroup.DELETE("/admissions/:id/charges/services", h.RemoveServiceCharge)
	writeGroup.DELETE("/admissions/:id/charges/consultants/:doctor", h.RemoveConsultantCharges)
	writeGroup.POST("/admissions/:id/payments", h.RecordPayment)
	writeGroup.DELETE("/admissions/:id/payments/:pid", h.DeletePayment)
	writeGroup.PUT("/admissions/:id/discount", h.SetDiscount)
}

func admissionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid admission id")
	}
	return id, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "billing record not found")
	case errors.Is(err, ErrPaymentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "payment not found")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

type serviceChargeRequest struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Quantity int     `json:"quantity"`
}

func (h *Handler) AddServiceCharge(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	var req serviceChargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddServiceCharge(c.Request().Context(), id, req.Name, req.Amount, req.Quantity); err != nil {
		return mapErr(err)
	}
	return c.NoContent(http.StatusCreated)
}

type consultantChargeRequest struct {
	DoctorName string  `json:"doctor_name"`
	Amount     float64 `json:"amount"`
	VisitTimes int     `json:"visit_times"`
}

func (h *Handler) AddConsultantCharge(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	var req consultantChargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddConsultantCharge(c.Request().Context(), id, req.DoctorName, req.Amount, req.VisitTimes); err != nil {
		return mapErr(err)
	}
	return c.NoContent(http.StatusCreated)
}

type removeChargeRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func (h *Handler) RemoveServiceCharge(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	var req removeChargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	removed, err := h.svc.RemoveServiceCharge(c.Request().Context(), id, req.Name, req.Amount)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"removed": removed})
}

func (h *Handler) RemoveConsultantCharges(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	removed, err := h.svc.RemoveConsultantCharges(c.Request().Context(), id, c.Param("doctor"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"removed": removed})
}

func (h *Handler) RecordPayment(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	var in PaymentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.RecordPayment(c.Request().Context(), id, in)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) DeletePayment(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	pid, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}
	if err := h.svc.DeletePayment(c.Request().Context(), id, pid); err != nil {
		return mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type discountRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) SetDiscount(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	var req discountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetDiscount(c.Request().Context(), id, req.Amount); err != nil {
		return mapErr(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) GetBill(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	bill, err := h.svc.GetBill(c.Request().Context(), id)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, bill)
}

func (h *Handler) ExportBill(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	bill, err := h.svc.GetBill(ctx, id)
	if err != nil {
		return mapErr(err)
	}
	info, err := h.admissions.AdmissionInfo(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "admission not found")
	}

	data, err := invoice.Build(buildDocument(info, bill))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	filename := fmt.Sprintf("invoice-%s.xlsx", info.UHID)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func buildDocument(info *AdmissionInfo, bill *Bill) *invoice.Document {
	doc := &invoice.Document{
		Header: invoice.Header{
			PatientName: info.PatientName,
			UHID:        info.UHID,
			RoomType:    info.RoomType,
			BedNumber:   info.BedNumber,
			DoctorName:  info.DoctorName,
			AdmitDate:   info.AdmitDate,
		},
		Totals: invoice.Totals{
			ServiceTotal:    bill.Summary.ServiceTotal,
			ConsultantTotal: bill.Summary.ConsultantTotal,
			Discount:        bill.Summary.Discount,
			NetTotal:        bill.Summary.NetTotal,
			TotalDeposit:    bill.Summary.TotalDeposit,
			Due:             bill.Summary.Due,
		},
	}
	for _, g := range bill.Services {
		doc.Services = append(doc.Services, invoice.Line{
			Label: g.Name, Count: g.Count, Unit: g.UnitAmount, Total: g.Total,
		})
	}
	for _, g := range bill.Consultants {
		doc.Consultants = append(doc.Consultants, invoice.Line{
			Label: g.DoctorName, Count: g.Count, Unit: g.UnitAmount, Total: g.Total,
		})
	}
	for _, p := range bill.Payments {
		doc.Payments = append(doc.Payments, invoice.Line{
			Label:  p.Type,
			Detail: p.PaymentMode + " " + p.Date.Format("02 Jan 2006"),
			Total:  p.Delta(),
		})
	}
	return doc
}
