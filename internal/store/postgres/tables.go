package postgres

import (
	"github.com/jackc/pgx/v5"

	"diagnostic-portal-api/internal/model"
)

var appointmentTable = table[model.Appointment]{
	columns: []string{
		"id", "user_id", "procedure", "center", "full_name", "mobile", "email", "doctor",
		"description", "date", "time", "payment_method", "payment_status", "status", "created_at",
	},
	selects: `id::text, user_id::text, procedure, center, full_name, mobile, email, doctor,
	          description, date, time, payment_method, payment_status, status, created_at`,
	scan: func(row pgx.Row) (*model.Appointment, error) {
		a := &model.Appointment{}
		var method, payment, status string
		err := row.Scan(&a.ID, &a.UserID, &a.Procedure, &a.Center, &a.FullName, &a.Mobile, &a.Email, &a.Doctor,
			&a.Description, &a.Date, &a.Time, &method, &payment, &status, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		a.PaymentMethod = model.PaymentMethod(method)
		a.PaymentStatus = model.PaymentStatus(payment)
		a.Status = model.Status(status)
		return a, nil
	},
	values: func(a *model.Appointment) []any {
		return []any{
			a.ID, a.UserID, a.Procedure, a.Center, a.FullName, a.Mobile, a.Email, a.Doctor,
			a.Description, a.Date, a.Time, string(a.PaymentMethod), string(a.PaymentStatus), string(a.Status), a.CreatedAt,
		}
	},
}

var reportTable = table[model.Report]{
	columns: []string{"id", "user_id", "lab_number", "title", "details", "file_url", "created_at"},
	selects: `id::text, user_id::text, lab_number, title, details, file_url, created_at`,
	scan: func(row pgx.Row) (*model.Report, error) {
		r := &model.Report{}
		if err := row.Scan(&r.ID, &r.UserID, &r.LabNumber, &r.Title, &r.Details, &r.FileURL, &r.CreatedAt); err != nil {
			return nil, err
		}
		return r, nil
	},
	values: func(r *model.Report) []any {
		return []any{r.ID, r.UserID, r.LabNumber, r.Title, r.Details, r.FileURL, r.CreatedAt}
	},
}
