package domain

// Default values
const (
	DefaultSlotIntervalMinutes = 30

	DefaultPolicyPeriodDays        = 30
	DefaultPolicyMaxCancellations  = 3
	DefaultPolicyNoShowMultiplier  = 2.0
	DefaultPolicyBlockDurationDays = 7
)

// Business validation constants
const (
	MinSlotIntervalMinutes      = 5
	MaxSlotIntervalMinutes      = 480 // 8 hours
	MinServiceDurationMinutes   = 5
	MaxServiceDurationMinutes   = 720 // 12 hours
	MaxPolicyPeriodDays         = 365
	MaxPolicyBlockDurationDays  = 365
	MaxPolicyCancellations      = 100
	MaxNoShowMultiplier         = 10.0
	MaxBreaksPerDay             = 10
	MaxSpecialDayNameLength     = 100
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses statuses that free the appointment's time interval
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses statuses that occupy the appointment's time interval
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// AllStatuses every known appointment status
var AllStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}
