package models

import "time"

// Book is a donated physical title with depletable stock.
type Book struct {
	ID           int64     `db:"id" json:"id"`
	DonorID      int64     `db:"donor_id" json:"donor_id"`
	Title        string    `db:"title" json:"title"`
	Author       string    `db:"author" json:"author"`
	ISBN         string    `db:"isbn" json:"isbn"`
	Publisher    string    `db:"publisher" json:"publisher"`
	Category     string    `db:"category" json:"category"`
	Description  string    `db:"description" json:"description"`
	Quantity     int       `db:"quantity" json:"quantity"`
	SoldQuantity int       `db:"sold_quantity" json:"sold_quantity"`
	CoverPath    string    `db:"cover_path" json:"cover_path"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// EBook is a donated digital title. Downloads never deplete anything; the
// counter is monotonically non-decreasing.
type EBook struct {
	ID            int64     `db:"id" json:"id"`
	DonorID       int64     `db:"donor_id" json:"donor_id"`
	Title         string    `db:"title" json:"title"`
	Author        string    `db:"author" json:"author"`
	ISBN          string    `db:"isbn" json:"isbn"`
	Publisher     string    `db:"publisher" json:"publisher"`
	Category      string    `db:"category" json:"category"`
	Description   string    `db:"description" json:"description"`
	FilePath      string    `db:"file_path" json:"file_path"`
	DownloadCount int       `db:"download_count" json:"download_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
