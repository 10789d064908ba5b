package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigpay/ledger-service/internal/model"
)

type ReportStore interface {
	BestProfession(ctx context.Context, from, to time.Time) (string, error)
	BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientRanking, error)
}

type ExcelGenerator interface {
	Generate(report model.EarningsReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.EarningsReport) ([]byte, error)
}

type ReportService struct {
	reports ReportStore
	excel   ExcelGenerator
	pdf     PDFGenerator
}

type ExportResult struct {
	FileName string
	Content  []byte
}

const DefaultBestClientsLimit = 2

func NewReportService(reports ReportStore, excel ExcelGenerator, pdf PDFGenerator) *ReportService {
	return &ReportService{reports: reports, excel: excel, pdf: pdf}
}

// BestProfession returns the profession that earned the most over paid jobs
// inside [from, to]. An empty window is reported as not found.
func (s *ReportService) BestProfession(ctx context.Context, from, to time.Time) (string, error) {
	if err := validateRange(from, to); err != nil {
		return "", err
	}
	profession, err := s.reports.BestProfession(ctx, from, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return profession, nil
}

// BestClients returns the top contracts by paid amount inside [from, to],
// each row carrying the contract's client.
func (s *ReportService) BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientRanking, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultBestClientsLimit
	}
	return s.reports.BestClients(ctx, from, to, limit)
}

// ExportEarnings renders the window's ranking as an attachment. An empty
// window exports as not found rather than an empty file.
func (s *ReportService) ExportEarnings(ctx context.Context, from, to time.Time, limit int, asPDF bool) (*ExportResult, error) {
	clients, err := s.BestClients(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, ErrNotFound
	}

	profession, err := s.BestProfession(ctx, from, to)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	total := decimal.Zero
	for _, client := range clients {
		total = total.Add(client.Paid)
	}

	report := model.EarningsReport{
		PeriodStart:    from,
		PeriodEnd:      to,
		BestProfession: profession,
		TotalPaid:      total,
		Clients:        clients,
	}

	var content []byte
	extension := "xlsx"
	if asPDF {
		extension = "pdf"
		content, err = s.pdf.Generate(report)
	} else {
		content, err = s.excel.Generate(report)
	}
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("earnings-%s-%s.%s", from.Format("20060102"), to.Format("20060102"), extension)
	return &ExportResult{FileName: fileName, Content: content}, nil
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: date range is required", ErrInvalidInput)
	}
	if from.After(to) {
		return fmt.Errorf("%w: start must be before or equal to end", ErrInvalidInput)
	}
	return nil
}
