package model

import "time"

// AppointmentPatch is the allow-list of owner-mutable appointment fields.
// A nil field is left untouched. The owner, id and createdAt are not
// representable here and therefore never change after creation.
type AppointmentPatch struct {
	Procedure     *string
	Center        *string
	FullName      *string
	Mobile        *string
	Email         *string
	Doctor        *string
	Description   *string
	Date          *time.Time
	Time          *string
	PaymentMethod *PaymentMethod
	PaymentStatus *PaymentStatus
	Status        *Status
}

// Fields returns the set fields keyed by storage column name. The keys are
// shared by the SQL and document backends.
func (p AppointmentPatch) Fields() map[string]any {
	f := map[string]any{}
	setStr := func(k string, v *string) {
		if v != nil {
			f[k] = *v
		}
	}
	setStr("procedure", p.Procedure)
	setStr("center", p.Center)
	setStr("full_name", p.FullName)
	setStr("mobile", p.Mobile)
	setStr("email", p.Email)
	setStr("doctor", p.Doctor)
	setStr("description", p.Description)
	setStr("time", p.Time)
	if p.Date != nil {
		f["date"] = *p.Date
	}
	if p.PaymentMethod != nil {
		f["payment_method"] = string(*p.PaymentMethod)
	}
	if p.PaymentStatus != nil {
		f["payment_status"] = string(*p.PaymentStatus)
	}
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	return f
}

func (p AppointmentPatch) Apply(a *Appointment) {
	if p.Procedure != nil {
		a.Procedure = *p.Procedure
	}
	if p.Center != nil {
		a.Center = *p.Center
	}
	if p.FullName != nil {
		a.FullName = *p.FullName
	}
	if p.Mobile != nil {
		a.Mobile = *p.Mobile
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Doctor != nil {
		a.Doctor = *p.Doctor
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Time != nil {
		a.Time = *p.Time
	}
	if p.PaymentMethod != nil {
		a.PaymentMethod = *p.PaymentMethod
	}
	if p.PaymentStatus != nil {
		a.PaymentStatus = *p.PaymentStatus
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
