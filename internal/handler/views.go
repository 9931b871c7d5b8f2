package handler

import (
	"time"

	"diagnostic-portal-api/internal/model"
)

type userJSON struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName,omitempty"`
	Email     string    `json:"email,omitempty"`
	Mobile    string    `json:"mobile"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func userView(u *model.User) userJSON {
	return userJSON{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Mobile:    u.Mobile,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// title mirrors procedure for clients that book with {title, date}
type appointmentJSON struct {
	ID            string              `json:"id"`
	User          string              `json:"user"`
	Procedure     string              `json:"procedure"`
	Title         string              `json:"title"`
	Center        string              `json:"center"`
	FullName      string              `json:"fullName"`
	Mobile        string              `json:"mobile"`
	Email         string              `json:"email,omitempty"`
	Doctor        string              `json:"doctor,omitempty"`
	Description   string              `json:"description,omitempty"`
	Date          string              `json:"date"`
	Time          string              `json:"time"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	Status        model.Status        `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func appointmentView(a *model.Appointment) appointmentJSON {
	return appointmentJSON{
		ID:            a.ID,
		User:          a.UserID,
		Procedure:     a.Procedure,
		Title:         a.Procedure,
		Center:        a.Center,
		FullName:      a.FullName,
		Mobile:        a.Mobile,
		Email:         a.Email,
		Doctor:        a.Doctor,
		Description:   a.Description,
		Date:          a.Date.UTC().Format(model.DateLayout),
		Time:          a.Time,
		PaymentMethod: a.PaymentMethod,
		PaymentStatus: a.PaymentStatus,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
	}
}

type reportJSON struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	LabNumber string    `json:"labNumber"`
	Title     string    `json:"title"`
	Details   string    `json:"details"`
	FileURL   string    `json:"fileUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func reportView(r *model.Report) reportJSON {
	return reportJSON{
		ID:        r.ID,
		User:      r.UserID,
		LabNumber: r.LabNumber,
		Title:     r.Title,
		Details:   r.Details,
		FileURL:   r.FileURL,
		CreatedAt: r.CreatedAt,
	}
}
