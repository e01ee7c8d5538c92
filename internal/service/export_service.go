package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
	"github.com/noah-isme/counseling-api/pkg/export"
)

type sessionLister interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.BookingSession, int, error)
}

// ExportService renders session history as downloadable documents.
type ExportService struct {
	sessions sessionLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(sessions sessionLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sessions: sessions,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

var sessionExportHeaders = []string{"Date", "Start", "End", "Counselor", "Requester", "Method", "Status", "Rejection Reason"}

// Sessions exports the filtered session history in the requested format and
// returns the rendered bytes with their content type.
func (s *ExportService) Sessions(ctx context.Context, filter models.SessionFilter, format string) ([]byte, string, error) {
	rows, err := s.collect(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{Headers: sessionExportHeaders, Rows: rows}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Counseling Session History")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *ExportService) collect(ctx context.Context, filter models.SessionFilter) ([]map[string]string, error) {
	filter.PageSize = 100
	filter.Page = 1
	filter.SortBy = "session_date"
	filter.SortOrder = "ASC"

	var rows []map[string]string
	for {
		sessions, total, err := s.sessions.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect sessions for export")
		}
		for _, session := range sessions {
			rows = append(rows, map[string]string{
				"Date":             session.Date,
				"Start":            session.StartTime,
				"End":              session.EndTime,
				"Counselor":        session.CounselorID,
				"Requester":        session.RequesterID,
				"Method":           string(session.Method),
				"Status":           string(session.Status),
				"Rejection Reason": session.RejectionReason,
			})
		}
		if len(rows) >= total || len(sessions) == 0 {
			break
		}
		filter.Page++
	}
	return rows, nil
}
