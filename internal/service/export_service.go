package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
	"github.com/noah-isme/nep-timetable-api/pkg/export"
)

// ExportFormat selects a renderer.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type datasetRenderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered timetable ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService lays a class timetable out as a slot-by-day grid and renders it.
type ExportService struct {
	renderers map[ExportFormat]datasetRenderer
	now       func() time.Time
}

// NewExportService constructs the service with CSV and PDF renderers.
func NewExportService(csv, pdf datasetRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		renderers: map[ExportFormat]datasetRenderer{ExportCSV: csv, ExportPDF: pdf},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Render builds the grid for classID and renders it in the requested format.
func (s *ExportService) Render(format ExportFormat, classID string, entries []models.TimetableEntry, catalog models.Catalog) (*ExportFile, error) {
	renderer, ok := s.renderers[ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	body, err := renderer.Render(BuildTimetableDataset(classID, entries, catalog, s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("timetable-%s.%s", classID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// BuildTimetableDataset produces one row per time slot (chronological, breaks included) and one column per
// school day. Cells read "Subject / Teacher / Room"; unknown IDs are shown raw.
func BuildTimetableDataset(classID string, entries []models.TimetableEntry, catalog models.Catalog, generatedAt time.Time) export.Dataset {
	subjects := catalog.SubjectIndex()
	teachers := catalog.TeacherIndex()

	headers := []string{"Time"}
	for day := models.FirstSchoolDay; day <= models.LastSchoolDay; day++ {
		headers = append(headers, models.DayName(day))
	}

	cells := make(map[string]map[string]string)
	for _, entry := range entries {
		row, ok := cells[entry.TimeSlotID]
		if !ok {
			row = make(map[string]string)
			cells[entry.TimeSlotID] = row
		}
		row[models.DayName(entry.DayOfWeek)] = describeEntry(entry, subjects, teachers)
	}

	slots := make([]models.TimeSlot, len(catalog.TimeSlots))
	copy(slots, catalog.TimeSlots)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].StartsBefore(slots[j]) })

	rows := make([]map[string]string, 0, len(slots))
	listed := make(map[string]bool, len(slots))
	for _, slot := range slots {
		listed[slot.ID] = true
		row := map[string]string{"Time": slot.Label()}
		if !slot.IsAssignable() {
			label := strings.ReplaceAll(string(slot.SlotType), "_", " ")
			for _, day := range headers[1:] {
				row[day] = label
			}
		}
		for day, text := range cells[slot.ID] {
			row[day] = text
		}
		rows = append(rows, row)
	}

	var orphan []string
	for slotID := range cells {
		if !listed[slotID] {
			orphan = append(orphan, slotID)
		}
	}
	sort.Strings(orphan)
	for _, slotID := range orphan {
		row := map[string]string{"Time": "slot " + slotID}
		for day, text := range cells[slotID] {
			row[day] = text
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title:    "Timetable - class " + classID,
		Subtitle: []string{"Generated " + generatedAt.Format(time.RFC1123)},
		Headers:  headers,
		Rows:     rows,
	}
}

func describeEntry(entry models.TimetableEntry, subjects map[string]models.Subject, teachers map[string]models.Teacher) string {
	subject := entry.SubjectID
	if s, ok := subjects[entry.SubjectID]; ok {
		subject = s.Name
	}
	parts := []string{subject}
	if t, ok := teachers[entry.TeacherID]; ok {
		parts = append(parts, t.Name)
	} else if entry.TeacherID != "" {
		parts = append(parts, entry.TeacherID)
	}
	if entry.RoomNumber != nil && *entry.RoomNumber != "" {
		parts = append(parts, *entry.RoomNumber)
	}
	return strings.Join(parts, " / ")
}
