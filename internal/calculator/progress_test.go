package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptwarrior/warrior/internal/models"
)

func module(id string, lessons int, prereqs ...string) *models.Module {
	m := &models.Module{ID: id, Title: "Module " + id, Level: models.LevelRecruit, Prerequisites: prereqs}
	for i := 1; i <= lessons; i++ {
		m.Lessons = append(m.Lessons, models.Lesson{ID: string(rune('0' + i)), Title: "Lesson", Order: i})
	}
	return m
}

func done(moduleID, lessonID string, at time.Time) *models.LessonProgress {
	return &models.LessonProgress{ModuleID: moduleID, LessonID: lessonID, Completed: true, LastAccessedAt: at}
}

func TestSummarizeModule(t *testing.T) {
	at := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	m := module("m1", 3)
	progress := LessonsByModule([]*models.LessonProgress{
		done("m1", "1", at),
		{ModuleID: "m1", LessonID: "2", LastAccessedAt: at.Add(time.Hour)},
		done("m1", "gone", at.Add(2*time.Hour)),
		done("m2", "1", at),
	})

	s := SummarizeModule(m, progress["m1"])
	assert.Equal(t, 3, s.TotalLessons)
	assert.Equal(t, 1, s.CompletedLessons)
	assert.Equal(t, 33, s.Progress)
	require.NotNil(t, s.LastAccessedAt)
	assert.Equal(t, at.Add(time.Hour), *s.LastAccessedAt)

	empty := SummarizeModule(module("m3", 0), nil)
	assert.Zero(t, empty.Progress)
	assert.Nil(t, empty.LastAccessedAt)
}

func TestModuleUnlocked(t *testing.T) {
	at := time.Now()
	basics := module("basics", 2)
	risk := module("risk", 1, "basics")
	advanced := module("advanced", 1, "basics", "retired")
	modules := map[string]*models.Module{"basics": basics, "risk": risk, "advanced": advanced}

	assert.True(t, ModuleUnlocked(basics, modules, nil))

	half := LessonsByModule([]*models.LessonProgress{done("basics", "1", at)})
	assert.False(t, ModuleUnlocked(risk, modules, half))

	all := LessonsByModule([]*models.LessonProgress{done("basics", "1", at), done("basics", "2", at)})
	assert.True(t, ModuleUnlocked(risk, modules, all))
	assert.True(t, ModuleUnlocked(advanced, modules, all), "missing prerequisites are skipped")
}

func TestValidateModule(t *testing.T) {
	good := module("m1", 2)
	require.NoError(t, ValidateModule(good))

	tests := []struct {
		name   string
		mutate func(m *models.Module)
	}{
		{"no title", func(m *models.Module) { m.Title = " " }},
		{"bad level", func(m *models.Module) { m.Level = "GENERAL" }},
		{"lesson without id", func(m *models.Module) { m.Lessons[0].ID = "" }},
		{"repeated lesson", func(m *models.Module) { m.Lessons[1].ID = m.Lessons[0].ID }},
		{"requires itself", func(m *models.Module) { m.Prerequisites = []string{"m1"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := module("m1", 2)
			tt.mutate(m)
			assert.ErrorIs(t, ValidateModule(m), ErrInvalidModule)
		})
	}
	assert.ErrorIs(t, ValidateModule(nil), ErrInvalidModule)
}
