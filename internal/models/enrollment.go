package models

import "time"

type Enrollment struct {
	ID         string
	UserID     string
	CourseID   string
	EnrolledAt time.Time
	Progress   float64

	// Course is populated by listing queries that join the catalog.
	Course *Course
}
