package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"diagnostic-portal-api/internal/apperr"
	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store"
)

// appointmentRequest is the body of create and update. It has no owner
// field: a client supplied "user" is dropped during decoding.
type appointmentRequest struct {
	Procedure     *string `json:"procedure"`
	Title         *string `json:"title"`
	Center        *string `json:"center"`
	FullName      *string `json:"fullName"`
	Mobile        *string `json:"mobile"`
	Email         *string `json:"email"`
	Doctor        *string `json:"doctor"`
	Description   *string `json:"description"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	PaymentMethod *string `json:"paymentMethod"`
	PaymentStatus *string `json:"paymentStatus"`
	Status        *string `json:"status"`
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// patch validates the present fields. Required fields may be omitted but
// never blanked.
func (r appointmentRequest) patch() (model.AppointmentPatch, error) {
	p := model.AppointmentPatch{
		Center:      r.Center,
		FullName:    r.FullName,
		Mobile:      r.Mobile,
		Email:       r.Email,
		Doctor:      r.Doctor,
		Description: r.Description,
		Time:        r.Time,
	}

	switch {
	case !blank(r.Procedure):
		p.Procedure = r.Procedure
	case !blank(r.Title):
		p.Procedure = r.Title
	case r.Procedure != nil || r.Title != nil:
		return p, apperr.Invalid("procedure cannot be empty")
	}

	if r.Date != nil {
		d, err := model.ParseDate(strings.TrimSpace(*r.Date))
		if err != nil {
			return p, apperr.Invalid("date must be YYYY-MM-DD")
		}
		p.Date = &d
	}
	if r.PaymentMethod != nil {
		m := model.PaymentMethod(*r.PaymentMethod)
		if !m.Valid() {
			return p, apperr.Invalid("paymentMethod must be one of: Pay Now, Pay at Center")
		}
		p.PaymentMethod = &m
	}
	if r.PaymentStatus != nil {
		s := model.PaymentStatus(*r.PaymentStatus)
		if !s.Valid() {
			return p, apperr.Invalid("paymentStatus must be one of: Pending, Completed")
		}
		p.PaymentStatus = &s
	}
	if r.Status != nil {
		s := model.Status(*r.Status)
		if !s.Valid() {
			return p, apperr.Invalid("status must be one of: Pending, Confirmed, Cancelled, Completed")
		}
		p.Status = &s
	}
	return p, nil
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	userID := uid(c)

	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if (blank(req.Procedure) && blank(req.Title)) || blank(req.Date) {
		return apperr.Invalid("title & date required")
	}
	p, err := req.patch()
	if err != nil {
		return err
	}
	// every booking starts Pending/Pending; transitions happen through update
	p.Status, p.PaymentStatus = nil, nil

	ctx := c.Request().Context()
	u, err := h.users.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Unauthorized("User not found", err)
	} else if err != nil {
		return apperr.Wrap(err)
	}

	// contact snapshot defaults to the account at booking time
	apt := &model.Appointment{
		ID:            uuid.New().String(),
		UserID:        userID,
		FullName:      u.FullName,
		Mobile:        u.Mobile,
		Email:         u.Email,
		PaymentMethod: model.PayAtCenter,
		PaymentStatus: model.PaymentPending,
		Status:        model.StatusPending,
		CreatedAt:     now(),
	}
	p.Apply(apt)

	if err := h.appointments.Create(ctx, apt); err != nil {
		return apperr.Wrap(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "appointment": appointmentView(apt)})
}

func (h *Handler) ListAppointments(c echo.Context) error {
	apts, err := h.appointments.List(c.Request().Context(), uid(c))
	if err != nil {
		return apperr.Wrap(err)
	}

	out := make([]appointmentJSON, len(apts))
	for i := range apts {
		out[i] = appointmentView(&apts[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "appointments": out})
}

// GetAppointment answers 404 both for a missing id and for somebody else's,
// so existence is not revealed.
func (h *Handler) GetAppointment(c echo.Context) error {
	apt, err := h.appointments.Get(c.Request().Context(), c.Param("id"), uid(c))
	if err != nil {
		return storeErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "appointment": appointmentView(apt)})
}

// UpdateAppointment merges the allow-listed fields present in the body.
// Status and payment status may move between any of their values.
func (h *Handler) UpdateAppointment(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	p, err := req.patch()
	if err != nil {
		return err
	}

	apt, err := h.appointments.Update(c.Request().Context(), c.Param("id"), uid(c), p)
	if err != nil {
		return storeErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "appointment": appointmentView(apt)})
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	if err := h.appointments.Delete(c.Request().Context(), c.Param("id"), uid(c)); err != nil {
		return storeErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "msg": "Deleted"})
}
