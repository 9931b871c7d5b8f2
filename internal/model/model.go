package model

import "time"

type PaymentMethod string

const (
	PayNow      PaymentMethod = "Pay Now"
	PayAtCenter PaymentMethod = "Pay at Center"
)

func (m PaymentMethod) Valid() bool {
	return m == PayNow || m == PayAtCenter
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentCompleted
}

// Status is the appointment lifecycle state. Any state may be overwritten
// with any other by the owner; there is no transition table.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of Appointment.Date.
const DateLayout = "2006-01-02"

type User struct {
	ID           string    `bson:"_id"`
	FullName     string    `bson:"full_name,omitempty"`
	Email        string    `bson:"email,omitempty"`
	Mobile       string    `bson:"mobile"`
	Avatar       string    `bson:"avatar,omitempty"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

type Appointment struct {
	ID            string        `bson:"_id"`
	UserID        string        `bson:"user_id"`
	Procedure     string        `bson:"procedure"`
	Center        string        `bson:"center"`
	FullName      string        `bson:"full_name"`
	Mobile        string        `bson:"mobile"`
	Email         string        `bson:"email"`
	Doctor        string        `bson:"doctor"`
	Description   string        `bson:"description"`
	Date          time.Time     `bson:"date"`
	Time          string        `bson:"time"`
	PaymentMethod PaymentMethod `bson:"payment_method"`
	PaymentStatus PaymentStatus `bson:"payment_status"`
	Status        Status        `bson:"status"`
	CreatedAt     time.Time     `bson:"created_at"`
}

type Report struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	LabNumber string    `bson:"lab_number"`
	Title     string    `bson:"title"`
	Details   string    `bson:"details"`
	FileURL   string    `bson:"file_url"`
	CreatedAt time.Time `bson:"created_at"`
}
