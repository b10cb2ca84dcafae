package models

import "time"

// BookKind tags which catalog table an order references, replacing the
// legacy convention of overloading one id column and telling the two apart
// by the category string.
type BookKind string

const (
	KindBook  BookKind = "BOOK"
	KindEBook BookKind = "EBOOK"
)

// EBookCategory is the category snapshot written on e-book download orders.
const EBookCategory = "E-Book"

// Order is an immutable record of one transaction: a buyer, a donor, a
// catalog item and a quantity at a point in time. Never updated or deleted.
type Order struct {
	ID        int64     `db:"id" json:"id"`
	BuyerID   int64     `db:"buyer_id" json:"buyer_id"`
	DonorID   int64     `db:"donor_id" json:"donor_id"`
	BookKind  BookKind  `db:"book_kind" json:"book_kind"`
	BookID    int64     `db:"book_id" json:"book_id"`
	Category  string    `db:"category" json:"category"`
	ISBN      string    `db:"isbn" json:"isbn"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
