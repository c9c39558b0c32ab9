package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	Price           string
	Description     string
	CreatedAt       time.Time
}

type Professional struct {
	ID       string
	Name     string
	IsActive bool
}

// BusinessHoursRule is the canonical form of a configured weekday window.
// Weekday uses 0-6 with Sunday=0. Open/Close are local "HH:MM"; either may be
// empty when the stored row carried no parseable time, in which case the
// resolver falls back to the built-in default for that weekday.
type BusinessHoursRule struct {
	Weekday int
	Open    string
	Close   string
	Closed  bool
}

// Block is an ad-hoc unavailability window. An empty ProfessionalID means the
// block applies to the whole business.
type Block struct {
	ID             string
	ProfessionalID string
	StartsAt       time.Time
	EndsAt         time.Time
	Reason         string
	CreatedAt      time.Time
}

// PackageItem is one requested step of a package: a service performed by a
// specific professional. Built fresh per request from client input plus a
// duration snapshot; never persisted directly.
type PackageItem struct {
	ServiceID       string
	ProfessionalID  string
	DurationMinutes int
}

// PackageStep is a PackageItem placed on the timeline by the schedule builder.
type PackageStep struct {
	PackageItem
	StartsAt   time.Time
	EndsAt     time.Time
	OrderIndex int
}

// Appointment is the parent booking record. StartsAt/EndsAt span every step.
// The only mutation after creation is the confirmed -> cancelled transition.
type Appointment struct {
	ID             string
	ServiceID      string
	ProfessionalID string
	ClientName     string
	ClientPhone    string
	ClientEmail    string
	StartsAt       time.Time
	EndsAt         time.Time
	Status         string
	CreatedAt      time.Time
}
