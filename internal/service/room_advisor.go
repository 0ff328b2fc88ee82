package service

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/noah-isme/nep-timetable-api/internal/models"
)

// RoomAdvisor proposes a room label for a subject. Labels are advisory and never checked for conflicts.
type RoomAdvisor interface {
	Suggest(subject models.Subject) string
}

type roomRule struct {
	label   string
	numbers int
}

var roomRules = map[models.SubjectCategory]roomRule{
	models.CategoryArtEducation:      {label: "Art Studio"},
	models.CategoryPhysicalEducation: {label: "Sports Ground"},
	models.CategoryValueEducation:    {label: "Activity Hall"},
	models.CategoryVocational:        {label: "Skills Lab %d", numbers: 4},
}

var genericRoom = roomRule{label: "Room %d", numbers: 20}

// TableRoomAdvisor looks rooms up by subject category and appends a cosmetic number for shared rooms.
type TableRoomAdvisor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoomAdvisor builds a table advisor. A nil source seeds from the clock.
func NewRoomAdvisor(src rand.Source) *TableRoomAdvisor {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &TableRoomAdvisor{rng: rand.New(src)}
}

// Suggest implements RoomAdvisor.
func (a *TableRoomAdvisor) Suggest(subject models.Subject) string {
	rule, ok := roomRules[subject.Category]
	if !ok {
		rule = genericRoom
	}
	if rule.numbers <= 0 {
		return rule.label
	}
	a.mu.Lock()
	n := a.rng.Intn(rule.numbers) + 1
	a.mu.Unlock()
	return fmt.Sprintf(rule.label, n)
}
