package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/export"
)

func newTestExport(t *testing.T) (*ExportService, *RosterService, *AttendanceService, *BehaviorService) {
	t.Helper()
	roster, _, _ := newTestRoster(t)
	mustCreateClass(t, roster, "5A")
	svc := NewExportService(roster, export.NewTSVExporter(), export.NewCSVExporter(), export.NewPDFExporter(""), zap.NewNop())
	attendance := NewAttendanceService(roster, nil, nil)
	behavior := NewBehaviorService(roster, DefaultVocabulary(), false, nil, nil)
	return svc, roster, attendance, behavior
}

func TestExportServiceClassTSV(t *testing.T) {
	svc, roster, attendance, behavior := newTestExport(t)
	ctx := context.Background()
	ahmed := mustAddStudent(t, roster, "5A", "أحمد علي")
	mustAddStudent(t, roster, "5A", "سعيد يوسف")

	_, err := behavior.Record(ctx, "5A", ahmed, RecordBehaviorRequest{Date: "2024-01-01", Type: "pos", Note: "تعاون"})
	require.NoError(t, err)
	_, err = behavior.Record(ctx, "5A", ahmed, RecordBehaviorRequest{Date: "2024-01-02", Type: "pos", Note: "نظافة"})
	require.NoError(t, err)
	_, err = attendance.Toggle(ctx, "5A", ahmed, "2024-03-01")
	require.NoError(t, err)

	out, err := svc.ClassTSV(ctx, "5A")
	require.NoError(t, err)
	assert.Equal(t, "الاسم\tالنقاط\tأيام الغياب\nأحمد علي\t2\t1\nسعيد يوسف\t0\t0\n", out)

	// exporting twice yields the same text and changes nothing
	again, err := svc.ClassTSV(ctx, "5A")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = svc.ClassTSV(ctx, "9Z")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestExportServiceClassFile(t *testing.T) {
	svc, roster, _, _ := newTestExport(t)
	ctx := context.Background()
	mustAddStudent(t, roster, "5A", "Omar Ali")

	file, err := svc.ClassFile(ctx, "5A", "")
	require.NoError(t, err)
	assert.Equal(t, "5A.tsv", file.Filename)
	assert.Contains(t, file.ContentType, "tab-separated")

	file, err = svc.ClassFile(ctx, "5A", "CSV")
	require.NoError(t, err)
	assert.Equal(t, "5A.csv", file.Filename)
	assert.True(t, strings.HasSuffix(string(file.Payload), "Omar Ali,0,0\n"))

	file, err = svc.ClassFile(ctx, "5A", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))

	_, err = svc.ClassFile(ctx, "5A", "docx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportServiceStudentReport(t *testing.T) {
	svc, roster, attendance, behavior := newTestExport(t)
	ctx := context.Background()
	id := mustAddStudent(t, roster, "5A", "أحمد علي")

	records := []RecordBehaviorRequest{
		{Date: "2024-01-02", Type: "neg", Note: "تأخر"},
		{Date: "2024-01-05", Type: "pos", Note: "تعاون"},
		{Date: "2024-01-02", Type: "pos", Note: "نظافة"},
	}
	for _, req := range records {
		_, err := behavior.Record(ctx, "5A", id, req)
		require.NoError(t, err)
	}
	for _, date := range []string{"2024-02-01", "2024-02-03", "2024-02-03", "2024-02-02"} {
		_, err := attendance.Toggle(ctx, "5A", id, date)
		require.NoError(t, err)
	}

	report, err := svc.StudentReport(ctx, "5A", id)
	require.NoError(t, err)

	want := strings.Join([]string{
		"الطالب: أحمد علي",
		"الصف: 5A",
		"النقاط: 1",
		"أيام الغياب: 2",
		"",
		"سجل السلوك:",
		"2024-01-05\t+\tتعاون",
		"2024-01-02\t+\tنظافة",
		"2024-01-02\t-\tتأخر",
		"",
		"سجل الحضور:",
		"2024-02-03\tحاضر",
		"2024-02-02\tغائب",
		"2024-02-01\tغائب",
		"",
	}, "\n")
	assert.Equal(t, want, report)
}

func TestExportServiceStudentReportEmptyLedgers(t *testing.T) {
	svc, roster, _, _ := newTestExport(t)
	ctx := context.Background()
	id := mustAddStudent(t, roster, "5A", "Omar Ali")

	report, err := svc.StudentReport(ctx, "5A", id)
	require.NoError(t, err)
	assert.Contains(t, report, "سجل السلوك:\nلا يوجد\n")
	assert.Contains(t, report, "سجل الحضور:\nلا يوجد\n")

	_, err = svc.StudentReport(ctx, "5A", "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
