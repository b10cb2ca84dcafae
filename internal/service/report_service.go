package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookbasket/bookbasket-api/internal/dto"
	appErrors "github.com/bookbasket/bookbasket-api/pkg/errors"
	"github.com/bookbasket/bookbasket-api/pkg/export"
)

// Export formats accepted by ExportOrders.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type reportOrderRepository interface {
	ListAll(ctx context.Context) ([]dto.OrderDetail, error)
	ListByDonor(ctx context.Context, donorID int64) ([]dto.OrderDetail, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]dto.OrderDetail, error)
}

// ExportResult carries a rendered report plus the metadata handlers need to
// set the download headers.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportService produces the joined order views and their file exports.
type ReportService struct {
	orders reportOrderRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService creates an instance of ReportService.
func NewReportService(orders reportOrderRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		orders: orders,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// AllOrders returns the complete order report for admins.
func (s *ReportService) AllOrders(ctx context.Context) ([]dto.OrderDetail, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list orders")
	}
	return orders, nil
}

// DonorOrders returns orders placed against one donor's listings.
func (s *ReportService) DonorOrders(ctx context.Context, donorID int64) ([]dto.OrderDetail, error) {
	orders, err := s.orders.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donor orders")
	}
	return orders, nil
}

// StudentOrders returns one student's physical-book order history.
func (s *ReportService) StudentOrders(ctx context.Context, buyerID int64) ([]dto.OrderDetail, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student orders")
	}
	return orders, nil
}

// ExportOrders renders the full order report in the requested format.
func (s *ReportService) ExportOrders(ctx context.Context, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list orders")
	}
	data := buildOrderDataset(orders)
	stamp := time.Now().UTC().Format("20060102-150405")

	switch format {
	case FormatPDF:
		content, err := s.pdf.Render(data, "Order Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("orders-%s.pdf", stamp),
		}, nil
	default:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("orders-%s.csv", stamp),
		}, nil
	}
}

func buildOrderDataset(orders []dto.OrderDetail) export.Dataset {
	headers := []string{
		"Order ID", "Kind", "Title", "Category", "ISBN", "Quantity", "Ordered At",
		"Buyer", "Buyer Email", "Roll No", "College", "University",
		"Donor", "Donor Email",
	}
	rows := make([]map[string]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, map[string]string{
			"Order ID":    strconv.FormatInt(o.OrderID, 10),
			"Kind":        string(o.BookKind),
			"Title":       deref(o.BookTitle),
			"Category":    o.Category,
			"ISBN":        o.ISBN,
			"Quantity":    strconv.Itoa(o.Quantity),
			"Ordered At":  o.OrderedAt.Format(time.RFC3339),
			"Buyer":       o.BuyerName,
			"Buyer Email": o.BuyerEmail,
			"Roll No":     deref(o.RollNo),
			"College":     deref(o.College),
			"University":  deref(o.University),
			"Donor":       o.DonorName,
			"Donor Email": o.DonorEmail,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
