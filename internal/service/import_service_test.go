package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/tabular"
)

const threeRowRoster = "الاسم\nأحمد علي\n123\n"

func newTestImport(t *testing.T, maxSize int64) (*ImportService, *RosterService, *countingStore) {
	t.Helper()
	roster, store, _ := newTestRoster(t)
	normalizer := NewNameNormalizer(NormalizerConfig{MinLength: 3, HeaderMarkers: []string{"اسم"}})
	svc := NewImportService(roster, tabular.NewDecoder(tabular.Options{}), normalizer, NewMetricsService(), ImportConfig{MaxFileSizeBytes: maxSize}, zap.NewNop())
	return svc, roster, store
}

func csvRequest(class, body string) ImportRequest {
	return ImportRequest{Class: class, Filename: "roster.csv", Size: int64(len(body)), Source: strings.NewReader(body)}
}

func TestImportServiceThreeRowScenario(t *testing.T) {
	svc, roster, _ := newTestImport(t, 0)
	ctx := context.Background()
	mustCreateClass(t, roster, "5A")

	report, err := svc.Import(ctx, csvRequest("5A", threeRowRoster))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 2, report.Rejected)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, []string{"أحمد علي"}, report.Names)
	assert.Equal(t, "utf-8-sig", report.Encoding)

	names, err := roster.StudentNames(ctx, "5A")
	require.NoError(t, err)
	assert.Equal(t, []string{"أحمد علي"}, names)
}

func TestImportServiceIsIdempotent(t *testing.T) {
	svc, roster, store := newTestImport(t, 0)
	ctx := context.Background()
	mustCreateClass(t, roster, "5A")
	body := "الاسم\nأحمد علي\nسعيد يوسف\nليلى حسن\n"

	first, err := svc.Import(ctx, csvRequest("5A", body))
	require.NoError(t, err)
	assert.Equal(t, 3, first.Added)
	saves := store.saves

	second, err := svc.Import(ctx, csvRequest("5A", body))
	require.NoError(t, err)
	assert.Zero(t, second.Added)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, saves, store.saves)

	students, err := roster.Students(ctx, "5A", "")
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func TestImportServiceDetectsCodePage(t *testing.T) {
	ctx := context.Background()
	body := "الاسم\nأحمد علي,5A\nسعيد يوسف,5A\n"
	encoded, err := charmap.Windows1256.NewEncoder().String(body)
	require.NoError(t, err)

	legacy, legacyRoster, _ := newTestImport(t, 0)
	mustCreateClass(t, legacyRoster, "5A")
	fromCodePage, err := legacy.Import(ctx, csvRequest("5A", encoded))
	require.NoError(t, err)

	modern, modernRoster, _ := newTestImport(t, 0)
	mustCreateClass(t, modernRoster, "5A")
	fromUTF8, err := modern.Import(ctx, csvRequest("5A", body))
	require.NoError(t, err)

	assert.Equal(t, "windows-1256", fromCodePage.Encoding)
	assert.False(t, fromCodePage.Fallback)
	assert.Equal(t, fromUTF8.Names, fromCodePage.Names)
	assert.Equal(t, []string{"أحمد علي", "سعيد يوسف"}, fromCodePage.Names)
}

func TestImportServiceWorkbook(t *testing.T) {
	svc, roster, _ := newTestImport(t, 0)
	ctx := context.Background()
	mustCreateClass(t, roster, "5A")

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "اسم الطالب"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "أحمد علي"))
	require.NoError(t, f.SetCellValue("Sheet1", "C5", "سعيد يوسف"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	report, err := svc.Import(ctx, ImportRequest{Class: "5A", Filename: "class.xlsx", Source: bytes.NewReader(buf.Bytes())})
	require.NoError(t, err)
	assert.Equal(t, []string{"أحمد علي", "سعيد يوسف"}, report.Names)
	assert.Empty(t, report.Encoding)
}

func TestImportServiceFailuresLeaveRosterUntouched(t *testing.T) {
	svc, roster, store := newTestImport(t, 64)
	ctx := context.Background()
	mustCreateClass(t, roster, "5A")
	saves := store.saves

	cases := []struct {
		name string
		req  ImportRequest
		want *appErrors.Error
	}{
		{"unsupported extension", ImportRequest{Class: "5A", Filename: "roster.pdf", Source: strings.NewReader(threeRowRoster)}, appErrors.ErrUnsupportedFileType},
		{"declared too large", ImportRequest{Class: "5A", Filename: "roster.csv", Size: 65, Source: strings.NewReader(threeRowRoster)}, appErrors.ErrFileTooLarge},
		{"actually too large", ImportRequest{Class: "5A", Filename: "roster.csv", Source: strings.NewReader(strings.Repeat("أحمد علي\n", 10))}, appErrors.ErrFileTooLarge},
		{"corrupt workbook", ImportRequest{Class: "5A", Filename: "roster.xlsx", Source: strings.NewReader("not a workbook")}, appErrors.ErrDecodeFailure},
		{"missing source", ImportRequest{Class: "5A", Filename: "roster.csv"}, appErrors.ErrDecodeFailure},
		{"unreadable source", ImportRequest{Class: "5A", Filename: "roster.csv", Source: failingReader{}}, appErrors.ErrDecodeFailure},
		{"unknown class", csvRequest("9Z", threeRowRoster), appErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := svc.Import(ctx, tc.req)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.Is(err, tc.want), err.Error())
		})
	}

	names, err := roster.StudentNames(ctx, "5A")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, saves, store.saves)
}

func TestImportServiceReportsFlushFailure(t *testing.T) {
	svc, roster, store := newTestImport(t, 0)
	ctx := context.Background()
	mustCreateClass(t, roster, "5A")

	store.failing = true
	report, err := svc.Import(ctx, csvRequest("5A", threeRowRoster))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPersistence))
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Added)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
