package model

// AppointmentType is a bookable service with a fixed duration. Types
// referenced by existing appointments are deactivated rather than deleted.
type AppointmentType struct {
	Base
	Name            string `db:"name" json:"name"`
	Description     string `db:"description" json:"description,omitempty"`
	DurationMinutes int    `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool   `db:"is_active" json:"is_active"`
}

type CreateAppointmentTypeRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	Description     string `json:"description" binding:"max=1000"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=5,max=240"`
}
