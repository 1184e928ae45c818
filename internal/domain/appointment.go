package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// CancelledBy identifies the party that cancelled an appointment
type CancelledBy string

const (
	CancelledByClient   CancelledBy = "client"
	CancelledByProvider CancelledBy = "provider"
)

// Appointment represents a client's booking with a provider.
// Appointments are never physically deleted.
type Appointment struct {
	ID          int64
	ProviderID  int64
	ClientID    *int64  // nil for clients without an account
	ClientPhone *string // set for clients without an account
	ServiceName string
	Date        time.Time // calendar date, time part is ignored
	StartTime   types.TimeString
	EndTime     types.TimeString
	Status      AppointmentStatus
	Notes       *string

	CancelledBy        *CancelledBy
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment occupies its time interval
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanTransitionTo reports whether a provider may move the appointment to the given status
func (a *Appointment) CanTransitionTo(status AppointmentStatus) bool {
	switch a.Status {
	case StatusPending:
		return status == StatusConfirmed || status == StatusCompleted || status == StatusNoShow
	case StatusConfirmed:
		return status == StatusCompleted || status == StatusNoShow
	default:
		return false
	}
}

// StartsAt returns the appointment's start as an instant in the provider timezone
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.StartTime.On(InLocation(a.Date, loc))
}

// RequiresStart reports whether the status may only be set once the appointment has begun
func RequiresStart(status AppointmentStatus) bool {
	return status == StatusCompleted || status == StatusNoShow
}

// Interval returns the appointment's [start, end) interval
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

// BelongsTo returns true if the appointment was made by the given client
func (a *Appointment) BelongsTo(client ClientRef) bool {
	if client.ID != nil {
		return a.ClientID != nil && *a.ClientID == *client.ID
	}
	if client.Phone != nil {
		return a.ClientPhone != nil && *a.ClientPhone == *client.Phone
	}
	return false
}

// AppointmentsFilter filter for provider appointment queries
type AppointmentsFilter struct {
	ProviderID      int64              // required
	StartDate       *time.Time         // inclusive, nil = unbounded
	EndDate         *time.Time         // inclusive, nil = unbounded
	Status          *AppointmentStatus // optional exact status
	IncludeInactive bool               // include cancelled and no-show appointments
}
