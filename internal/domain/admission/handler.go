package admission

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/bed"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "registrar", "billing"))
	readGroup.GET("/admissions", h.ListAdmissions)
	readGroup.GET("/admissions/:id", h.GetAdmission)
	readGroup.GET("/admissions/:id/changes", h.ListChanges)

	writeGroup := api.Group("", auth.RequireRole("admin", "registrar"))
	writeGroup.POST("/admissions", h.CreateAdmission)
	writeGroup.PUT("/admissions/:id", h.UpdateAdmission)
	writeGroup.POST("/admissions/:id/discharge", h.DischargeAdmission)
}

type createRequest struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	UHID          string     `json:"uhid"`
	PatientName   string     `json:"patient_name"`
	Phone         string     `json:"phone"`
	Age           int        `json:"age"`
	Gender        string     `json:"gender"`
	Address       *string    `json:"address"`
	RelativeName  *string    `json:"relative_name"`
	RelativePhone *string    `json:"relative_phone"`
	AdmitDate     time.Time  `json:"admit_date"`
	Source        *string    `json:"source"`
	AdmissionType *string    `json:"admission_type"`
	RoomType      string     `json:"room_type"`
	BedID         *uuid.UUID `json:"bed_id"`
	DoctorName    string     `json:"doctor_name"`
	ReferredBy    *string    `json:"referred_by"`
}

func (h *Handler) CreateAdmission(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a := &Admission{
		PatientID:      req.PatientID,
		UHID:           req.UHID,
		PatientName:    req.PatientName,
		Phone:          req.Phone,
		Age:            req.Age,
		Gender:         req.Gender,
		Address:        req.Address,
		RelativeName:   req.RelativeName,
		RelativePhone:  req.RelativePhone,
		AdmitDate:      req.AdmitDate,
		Source:         req.Source,
		AdmissionType:  req.AdmissionType,
		RoomType:       req.RoomType,
		BedID:          req.BedID,
		DoctorName:     req.DoctorName,
		ReferredBy:     req.ReferredBy,
		LastModifiedBy: auth.UserNameFromContext(c.Request().Context()),
	}
	if err := h.svc.Create(c.Request().Context(), a); err != nil {
		if errors.Is(err, bed.ErrBedOccupied) {
			return echo.NewHTTPError(http.StatusConflict, "bed is already occupied")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAdmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "admission not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAdmissions(c echo.Context) error {
	pg := pagination.FromContext(c)

	if pid := c.QueryParam("patient_id"); pid != "" {
		patientID, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		adms, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(adms, total, pg.Limit, pg.Offset))
	}

	adms, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(adms, total, pg.Limit, pg.Offset))
}

type updateRequest struct {
	PatientName   string     `json:"patient_name"`
	Phone         string     `json:"phone"`
	Age           int        `json:"age"`
	Gender        string     `json:"gender"`
	Address       *string    `json:"address"`
	RelativeName  *string    `json:"relative_name"`
	RelativePhone *string    `json:"relative_phone"`
	AdmitDate     time.Time  `json:"admit_date"`
	Source        *string    `json:"source"`
	AdmissionType *string    `json:"admission_type"`
	RoomType      string     `json:"room_type"`
	BedID         *uuid.UUID `json:"bed_id"`
	DoctorName    string     `json:"doctor_name"`
	ReferredBy    *string    `json:"referred_by"`
	Deposit       *float64   `json:"deposit"`
	Version       int        `json:"version"`
}

func (h *Handler) UpdateAdmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in := UpdateInput{
		PatientName:   req.PatientName,
		Phone:         req.Phone,
		Age:           req.Age,
		Gender:        req.Gender,
		Address:       req.Address,
		RelativeName:  req.RelativeName,
		RelativePhone: req.RelativePhone,
		AdmitDate:     req.AdmitDate,
		Source:        req.Source,
		AdmissionType: req.AdmissionType,
		RoomType:      req.RoomType,
		BedID:         req.BedID,
		DoctorName:    req.DoctorName,
		ReferredBy:    req.ReferredBy,
		Deposit:       req.Deposit,
		Version:       req.Version,
		Editor:        auth.UserNameFromContext(c.Request().Context()),
	}
	changes, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		case errors.Is(err, ErrVersionConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, bed.ErrBedOccupied):
			return echo.NewHTTPError(http.StatusConflict, "bed is already occupied")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"admission": a,
		"changes":   changes,
	})
}

func (h *Handler) DischargeAdmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	editor := auth.UserNameFromContext(c.Request().Context())
	if err := h.svc.Discharge(c.Request().Context(), id, editor); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": StatusDischarged})
}

func (h *Handler) ListChanges(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entries, err := h.svc.ListChanges(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}
