package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"diagnostic-portal-api/internal/apperr"
	"diagnostic-portal-api/internal/model"
)

type reportRequest struct {
	LabNumber string `json:"labNumber"`
	Title     string `json:"title"`
	Details   string `json:"details"`
	FileURL   string `json:"fileUrl"`
}

// CreateReport stores a report for the caller. Unlike appointments no field
// is required.
func (h *Handler) CreateReport(c echo.Context) error {
	var req reportRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	r := &model.Report{
		ID:        uuid.New().String(),
		UserID:    uid(c),
		LabNumber: req.LabNumber,
		Title:     req.Title,
		Details:   req.Details,
		FileURL:   req.FileURL,
		CreatedAt: now(),
	}
	if err := h.reports.Create(c.Request().Context(), r); err != nil {
		return apperr.Wrap(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "report": reportView(r)})
}

func (h *Handler) ListReports(c echo.Context) error {
	reports, err := h.reports.List(c.Request().Context(), uid(c))
	if err != nil {
		return apperr.Wrap(err)
	}

	out := make([]reportJSON, len(reports))
	for i := range reports {
		out[i] = reportView(&reports[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "reports": out})
}

func (h *Handler) GetReport(c echo.Context) error {
	r, err := h.reports.Get(c.Request().Context(), c.Param("id"), uid(c))
	if err != nil {
		return storeErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "report": reportView(r)})
}
