package service

import (
	"strings"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
)

// specializationRules lets categories whose subject names vary ("Visual Arts", "Yoga") match on a
// category keyword instead of the subject name.
var specializationRules = map[models.SubjectCategory]string{
	models.CategoryArtEducation:      "art",
	models.CategoryPhysicalEducation: "physical",
}

// MatchTeacher picks the best-fit teacher for a subject. The first teacher (in catalog order) with a
// specialization containing the subject's first name token, or the category keyword, wins. Otherwise
// the teacher at position mod len(teachers) is used.
func MatchTeacher(subject models.Subject, position int, teachers []models.Teacher) (models.Teacher, error) {
	if len(teachers) == 0 {
		return models.Teacher{}, appErrors.Clone(appErrors.ErrNoTeachersAvailable, "no teachers available to teach "+subject.Name)
	}

	token := firstNameToken(subject.Name)
	keyword := specializationRules[subject.Category]
	for _, teacher := range teachers {
		if specializationMatches(teacher.Specializations, token, keyword) {
			return teacher, nil
		}
	}

	if position < 0 {
		position = -position
	}
	return teachers[position%len(teachers)], nil
}

func specializationMatches(specializations []string, token, keyword string) bool {
	for _, spec := range specializations {
		spec = strings.ToLower(spec)
		if token != "" && strings.Contains(spec, token) {
			return true
		}
		if keyword != "" && strings.Contains(spec, keyword) {
			return true
		}
	}
	return false
}

func firstNameToken(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
