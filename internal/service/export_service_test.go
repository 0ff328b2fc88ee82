package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
)

func exportFixture() ([]models.TimetableEntry, models.Catalog) {
	catalog := scenarioCatalog()
	catalog.Teachers[0].Name = "Asha"
	catalog.TimeSlots = append(catalog.TimeSlots, models.TimeSlot{ID: "brk", StartTime: "09:45", EndTime: "10:00", DurationMinutes: 15, SlotType: models.SlotBreak})
	room := "Art Studio"
	entries := []models.TimetableEntry{
		{SubjectID: "math", TeacherID: "t1", TimeSlotID: "1", DayOfWeek: 1},
		{SubjectID: "art", TeacherID: "t1", TimeSlotID: "2", DayOfWeek: 3, RoomNumber: &room},
		{SubjectID: "ghost", TeacherID: "tx", TimeSlotID: "99", DayOfWeek: 6},
	}
	return entries, catalog
}

func TestBuildTimetableDataset(t *testing.T) {
	entries, catalog := exportFixture()
	data := BuildTimetableDataset("class-1", entries, catalog, time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC))

	assert.Equal(t, []string{"Time", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}, data.Headers)
	require.Len(t, data.Rows, 6)
	assert.Equal(t, "08:00-08:45", data.Rows[0]["Time"])
	assert.Equal(t, "Mathematics / Asha", data.Rows[0]["Monday"])
	assert.Equal(t, "Art / Asha / Art Studio", data.Rows[1]["Wednesday"])
	assert.Equal(t, "09:45-10:00", data.Rows[2]["Time"])
	assert.Equal(t, "break", data.Rows[2]["Friday"])
	assert.Equal(t, "slot 99", data.Rows[5]["Time"])
	assert.Equal(t, "ghost / tx", data.Rows[5]["Saturday"])
	assert.Contains(t, data.Title, "class-1")
}

func TestExportServiceRenderCSV(t *testing.T) {
	entries, catalog := exportFixture()
	file, err := NewExportService(nil, nil).Render(ExportCSV, "class-1", entries, catalog)
	require.NoError(t, err)
	assert.Equal(t, "timetable-class-1.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	assert.Equal(t, "Time,Monday,Tuesday,Wednesday,Thursday,Friday,Saturday", strings.TrimSpace(lines[0]))
	assert.Contains(t, string(file.Body), "Mathematics / Asha")
}

func TestExportServiceRenderPDF(t *testing.T) {
	entries, catalog := exportFixture()
	file, err := NewExportService(nil, nil).Render("PDF", "class-1", entries, catalog)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	_, err := NewExportService(nil, nil).Render("xlsx", "class-1", nil, models.Catalog{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
