package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeLevel(t *testing.T) {
	cases := []struct {
		label string
		level int
		ok    bool
	}{
		{"Grade 8", 8, true},
		{"Class 5", 5, true},
		{"9", 9, true},
		{"Class 10 B", 10, true},
		{"Nursery", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		level, ok := GradeLevel(tc.label)
		assert.Equal(t, tc.ok, ok, tc.label)
		assert.Equal(t, tc.level, level, tc.label)
	}
}

func TestRequiredSubjectNamesPolicy(t *testing.T) {
	assert.Equal(t,
		[]string{"English", "Urdu", "Mathematics", "General Knowledge", "Islamiat"},
		RequiredSubjectNames("Grade 3", "A"))

	assert.Equal(t,
		[]string{"English", "Urdu", "Mathematics", "Science", "Islamiat", "Social Studies", "Computer Science"},
		RequiredSubjectNames("Class 7", "B"))

	// Grade 9: science group follows the section letter.
	assert.Contains(t, RequiredSubjectNames("Grade 9", "A"), "Biology")
	assert.Contains(t, RequiredSubjectNames("Grade 9", "B"), "Computer Science")
	assert.Contains(t, RequiredSubjectNames("Grade 9", "C"), "Biology")
	assert.NotContains(t, RequiredSubjectNames("Grade 9", "A"), "Pakistan Studies")

	ten := RequiredSubjectNames("Grade 10", "b")
	assert.Contains(t, ten, "Pakistan Studies")
	assert.Contains(t, ten, "Computer Science")

	assert.Equal(t,
		[]string{"English", "Urdu", "Mathematics", "Science"},
		RequiredSubjectNames("Playgroup", ""))
}

func TestRequiredSubjectNamesIsStable(t *testing.T) {
	first := RequiredSubjectNames("Grade 6", "A")
	second := RequiredSubjectNames("Grade 6", "A")
	assert.Equal(t, first, second)
}

func TestPeriodQuotasCoreBaseline(t *testing.T) {
	subjects := []string{"English", "Urdu", "Mathematics", "General Knowledge", "Islamiat"}
	quotas := PeriodQuotas(subjects, 5, 6)

	assert.Equal(t, 8, quotas["English"])
	assert.Equal(t, 8, quotas["Urdu"])
	assert.Equal(t, 8, quotas["Mathematics"])
	assert.Equal(t, 3, quotas["General Knowledge"])
	assert.Equal(t, 3, quotas["Islamiat"])

	total := 0
	for _, q := range quotas {
		total += q
	}
	assert.Equal(t, 30, total)
}

func TestPeriodQuotasEvenSplitWithoutCores(t *testing.T) {
	quotas := PeriodQuotas([]string{"Science", "History", "Geography", "Art", "Music", "Drama"}, 5, 6)
	for name, q := range quotas {
		assert.Equal(t, 5, q, name)
	}
}

func TestPeriodQuotasRemainderFollowsListOrder(t *testing.T) {
	// 4 subjects over 5x6: 30/4 = 7 rem 2, first two subjects get the extra.
	quotas := PeriodQuotas([]string{"Science", "History", "Geography", "Art"}, 5, 6)
	assert.Equal(t, 8, quotas["Science"])
	assert.Equal(t, 8, quotas["History"])
	assert.Equal(t, 7, quotas["Geography"])
	assert.Equal(t, 7, quotas["Art"])
}

func TestPeriodQuotasEmptyInputs(t *testing.T) {
	assert.Empty(t, PeriodQuotas(nil, 5, 6))
	assert.Empty(t, PeriodQuotas([]string{"Science"}, 0, 6))
}
