package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/geeksandijan/hrbot/internal/storage"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "all_arizalar.xlsx", FileName(""))
	assert.Equal(t, "Mentor_arizalar.xlsx", FileName("Mentor"))
}

func TestApplicationsWorkbook(t *testing.T) {
	apps := []storage.Application{
		{
			ID: 2, Name: "Dilnoza", Age: 28, Phone: "998901234567", Vacancy: "Mentor",
			Subject: storage.Ptr("SMM"), Experience: "4 yil", Username: "dilnoza",
			PhotoID: "p2", CVFileID: storage.Ptr("cv2"),
			CreatedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: 1, Name: "Ali Valiyev", Age: 20, Phone: "+998901234567", Vacancy: "Sotuvchi",
			Experience: "3 yil", Workplace: storage.Ptr("ABC firma"), Username: "N/A",
			PhotoID: "p1", CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		},
	}
	data, err := Applications(apps)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{Sheet}, f.GetSheetList())
	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"2", "Dilnoza", "28", "998901234567", "Mentor", "SMM", "4 yil", "", "dilnoza", "p2", "cv2", "2024-05-02 10:00:00"}, rows[1])
	assert.Equal(t, "ABC firma", rows[2][7])
	assert.Equal(t, "", rows[2][5])
}

func TestEmptyWorkbookHasHeaderOnly(t *testing.T) {
	data, err := Applications(nil)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
