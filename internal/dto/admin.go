package dto

import "github.com/bookbasket/bookbasket-api/internal/models"

// StudentDTO flattens an account and its profile for the admin roster.
type StudentDTO struct {
	ID         int64                `db:"id" json:"id"`
	Name       string               `db:"name" json:"name"`
	Email      string               `db:"email" json:"email"`
	Phone      string               `db:"phone" json:"phone"`
	Status     models.AccountStatus `db:"status" json:"status"`
	RollNo     *string              `db:"roll_no" json:"roll_no,omitempty"`
	College    *string              `db:"college" json:"college,omitempty"`
	University *string              `db:"university" json:"university,omitempty"`
	NationalID *string              `db:"national_id" json:"national_id,omitempty"`
}

// DonorDTO lists donor accounts for the admin roster.
type DonorDTO struct {
	ID     int64                `db:"id" json:"id"`
	Name   string               `db:"name" json:"name"`
	Email  string               `db:"email" json:"email"`
	Phone  string               `db:"phone" json:"phone"`
	Status models.AccountStatus `db:"status" json:"status"`
}
