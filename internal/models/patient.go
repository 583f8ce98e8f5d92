package models

import "time"

// Patient identifies who an assessment belongs to.
type Patient struct {
	ID          int64
	FirstName   string
	LastName    string
	DateOfBirth time.Time
}
