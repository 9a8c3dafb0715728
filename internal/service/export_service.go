package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/export"
)

// Export formats accepted by ClassFile.
const (
	FormatTSV = "tsv"
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

const (
	columnName    = "الاسم"
	columnScore   = "النقاط"
	columnAbsence = "أيام الغياب"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered class export.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders read-only views of the roster and both ledgers.
type ExportService struct {
	roster *RosterService
	tsv    csvRenderer
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(roster *RosterService, tsv, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{roster: roster, tsv: tsv, csv: csv, pdf: pdf, logger: logger}
}

// ClassTSV renders one tab separated line per student after a header line:
// name, score and number of absent days.
func (s *ExportService) ClassTSV(ctx context.Context, className string) (string, error) {
	data, err := s.classDataset(className)
	if err != nil {
		return "", err
	}
	payload, err := s.tsv.Render(data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render class export")
	}
	return string(payload), nil
}

// ClassFile renders the class dataset in the requested format.
func (s *ExportService) ClassFile(ctx context.Context, className, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatTSV
	}
	data, err := s.classDataset(className)
	if err != nil {
		return nil, err
	}

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case FormatTSV:
		payload, err = s.tsv.Render(data)
		contentType = "text/tab-separated-values; charset=utf-8"
	case FormatCSV:
		payload, err = s.csv.Render(data)
		contentType = "text/csv; charset=utf-8"
	case FormatPDF:
		payload, err = s.pdf.Render(data, className)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be tsv, csv or pdf")
	}
	if err != nil {
		s.logger.Error("class export failed", zap.String("class", className), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render class export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", className, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

// StudentReport renders a narrative block for one student with the behaviour
// history and attendance table sorted by date, most recent first.
func (s *ExportService) StudentReport(ctx context.Context, className, studentID string) (string, error) {
	detail, err := s.roster.StudentDetail(ctx, className, studentID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "الطالب: %s\n", detail.Name)
	fmt.Fprintf(&b, "الصف: %s\n", detail.Class)
	fmt.Fprintf(&b, "النقاط: %d\n", detail.Score)
	fmt.Fprintf(&b, "أيام الغياب: %d\n", detail.AbsenceCount)

	b.WriteString("\nسجل السلوك:\n")
	events := historyByDateDesc(detail.History)
	if len(events) == 0 {
		b.WriteString("لا يوجد\n")
	}
	for _, event := range events {
		date := event.Date
		if date == "" {
			date = "-"
		}
		sign := "+"
		if event.Type == models.PolarityNegative {
			sign = "-"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n", date, sign, event.Note)
	}

	b.WriteString("\nسجل الحضور:\n")
	if len(detail.Attendance) == 0 {
		b.WriteString("لا يوجد\n")
	}
	for _, entry := range detail.Attendance {
		label := "حاضر"
		if entry.Status == models.AttendanceAbsent {
			label = "غائب"
		}
		fmt.Fprintf(&b, "%s\t%s\n", entry.Date, label)
	}
	return b.String(), nil
}

func (s *ExportService) classDataset(className string) (export.Dataset, error) {
	data := export.Dataset{Headers: []string{columnName, columnScore, columnAbsence}}
	err := s.roster.viewClass(className, func(class *models.Class) error {
		data.Rows = make([]map[string]string, len(class.Students))
		for i, student := range class.Students {
			data.Rows[i] = map[string]string{
				columnName:    student.Name,
				columnScore:   strconv.Itoa(student.Score()),
				columnAbsence: strconv.Itoa(student.AbsenceCount()),
			}
		}
		return nil
	})
	return data, err
}

// historyByDateDesc orders events by date, most recent first. Events on the
// same date keep most-recently-recorded first and undated events go last.
func historyByDateDesc(history []models.BehaviorEvent) []models.BehaviorEvent {
	out := make([]models.BehaviorEvent, len(history))
	for i, event := range history {
		out[len(history)-1-i] = event
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
