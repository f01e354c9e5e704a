package service

import (
	"regexp"
	"strconv"
	"strings"
)

// Subjects that always receive a guaranteed daily baseline when present.
var coreQuotaSubjects = map[string]bool{
	"Mathematics": true,
	"English":     true,
	"Urdu":        true,
}

var gradeDigits = regexp.MustCompile(`\d+`)

// GradeLevel parses the first embedded integer out of a free-text class label
// such as "Grade 8", "Class 5" or plain "9".
func GradeLevel(className string) (int, bool) {
	match := gradeDigits.FindString(className)
	if match == "" {
		return 0, false
	}
	level, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return level, true
}

// RequiredSubjectNames returns the mandatory subject set for a grade level
// and section. Used only when a class has no explicitly configured subjects.
func RequiredSubjectNames(className, section string) []string {
	level, ok := GradeLevel(className)
	if !ok {
		return []string{"English", "Urdu", "Mathematics", "Science"}
	}

	switch {
	case level >= 1 && level <= 5:
		return []string{"English", "Urdu", "Mathematics", "General Knowledge", "Islamiat"}
	case level >= 6 && level <= 8:
		return []string{"English", "Urdu", "Mathematics", "Science", "Islamiat", "Social Studies", "Computer Science"}
	case level == 9 || level == 10:
		subjects := []string{"English", "Islamiat", "Chemistry", "Physics", "Mathematics"}
		if level == 10 {
			subjects = append(subjects, "Pakistan Studies")
		}
		switch strings.ToUpper(strings.TrimSpace(section)) {
		case "A":
			subjects = append(subjects, "Biology")
		case "B":
			subjects = append(subjects, "Computer Science")
		default:
			subjects = append(subjects, "Biology")
		}
		return subjects
	default:
		return []string{"English", "Urdu", "Mathematics", "Science"}
	}
}

// PeriodQuotas splits a class's weekly period budget across its subjects.
// Mathematics, English and Urdu get a baseline of one period per working day;
// the rest of the budget is divided evenly, with the integer remainder handed
// out one period each to the earliest subjects in list order. Subject order is
// therefore part of the contract: the same list always yields the same split.
func PeriodQuotas(subjectNames []string, workingDays, periodsPerDay int) map[string]int {
	total := workingDays * periodsPerDay
	quotas := make(map[string]int, len(subjectNames))
	if len(subjectNames) == 0 || total <= 0 {
		return quotas
	}

	baseline := workingDays
	if total < baseline {
		baseline = total
	}

	remaining := total
	for _, name := range subjectNames {
		if coreQuotaSubjects[name] {
			quotas[name] = baseline
			remaining -= baseline
		}
	}
	if remaining < 0 {
		remaining = 0
	}

	share := remaining / len(subjectNames)
	extra := remaining % len(subjectNames)
	for i, name := range subjectNames {
		quotas[name] += share
		if i < extra {
			quotas[name]++
		}
	}
	return quotas
}
