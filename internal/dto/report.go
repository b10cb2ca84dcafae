package dto

import (
	"time"

	"github.com/bookbasket/bookbasket-api/internal/models"
)

// OrderDetail is the joined reporting projection:
// Order ⨝ buyer account ⨝ buyer profile (optional) ⨝ donor account ⨝ snapshot.
type OrderDetail struct {
	OrderID   int64           `db:"order_id" json:"order_id"`
	BookKind  models.BookKind `db:"book_kind" json:"book_kind"`
	Category  string          `db:"category" json:"category"`
	ISBN      string          `db:"isbn" json:"isbn"`
	Quantity  int             `db:"quantity" json:"quantity"`
	OrderedAt time.Time       `db:"ordered_at" json:"ordered_at"`

	BuyerID    int64   `db:"buyer_id" json:"buyer_id"`
	BuyerName  string  `db:"buyer_name" json:"buyer_name"`
	BuyerEmail string  `db:"buyer_email" json:"buyer_email"`
	BuyerPhone string  `db:"buyer_phone" json:"buyer_phone"`
	RollNo     *string `db:"roll_no" json:"roll_no,omitempty"`
	College    *string `db:"college" json:"college,omitempty"`
	University *string `db:"university" json:"university,omitempty"`

	DonorID    int64  `db:"donor_id" json:"donor_id"`
	DonorName  string `db:"donor_name" json:"donor_name"`
	DonorEmail string `db:"donor_email" json:"donor_email"`

	BookID    int64   `db:"book_id" json:"book_id"`
	BookTitle *string `db:"book_title" json:"book_title,omitempty"`
}
