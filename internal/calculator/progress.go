package calculator

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mptwarrior/warrior/internal/models"
)

var ErrInvalidModule = errors.New("invalid module")

// ValidateModule checks a module before it is stored.
func ValidateModule(m *models.Module) error {
	switch {
	case m == nil:
		return fmt.Errorf("%w: module is required", ErrInvalidModule)
	case strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Title) == "":
		return fmt.Errorf("%w: id and title are required", ErrInvalidModule)
	case !m.Level.Valid():
		return fmt.Errorf("%w: %s has unknown level %q", ErrInvalidModule, m.ID, m.Level)
	}

	seen := make(map[string]bool, len(m.Lessons))
	for _, l := range m.Lessons {
		switch {
		case strings.TrimSpace(l.ID) == "":
			return fmt.Errorf("%w: %s has a lesson without an id", ErrInvalidModule, m.ID)
		case seen[l.ID]:
			return fmt.Errorf("%w: %s repeats lesson %s", ErrInvalidModule, m.ID, l.ID)
		case l.EstimatedMinutes < 0:
			return fmt.Errorf("%w: lesson %s has negative minutes", ErrInvalidModule, l.ID)
		}
		seen[l.ID] = true
	}
	for _, p := range m.Prerequisites {
		if p == m.ID {
			return fmt.Errorf("%w: %s cannot require itself", ErrInvalidModule, m.ID)
		}
	}
	return nil
}

// LessonsByModule indexes progress documents as module ID -> lesson ID.
func LessonsByModule(progress []*models.LessonProgress) map[string]map[string]*models.LessonProgress {
	out := make(map[string]map[string]*models.LessonProgress)
	for _, p := range progress {
		if out[p.ModuleID] == nil {
			out[p.ModuleID] = make(map[string]*models.LessonProgress)
		}
		out[p.ModuleID][p.LessonID] = p
	}
	return out
}

// SummarizeModule counts the module's completed lessons. Progress on lessons
// no longer in the module is ignored.
func SummarizeModule(m *models.Module, progress map[string]*models.LessonProgress) models.ModuleSummary {
	s := models.ModuleSummary{
		ModuleID:     m.ID,
		Title:        m.Title,
		Level:        m.Level,
		Order:        m.Order,
		TotalLessons: len(m.Lessons),
	}
	var last time.Time
	for _, l := range m.Lessons {
		p, ok := progress[l.ID]
		if !ok {
			continue
		}
		if p.Completed {
			s.CompletedLessons++
		}
		if p.LastAccessedAt.After(last) {
			last = p.LastAccessedAt
		}
	}
	if s.TotalLessons > 0 {
		s.Progress = int(math.Round(float64(s.CompletedLessons) / float64(s.TotalLessons) * 100))
	}
	if !last.IsZero() {
		s.LastAccessedAt = &last
	}
	return s
}

// ModuleUnlocked reports whether every lesson of every prerequisite is
// completed. Prerequisites that no longer exist are skipped.
func ModuleUnlocked(m *models.Module, modules map[string]*models.Module, progress map[string]map[string]*models.LessonProgress) bool {
	for _, id := range m.Prerequisites {
		pre, ok := modules[id]
		if !ok {
			continue
		}
		for _, l := range pre.Lessons {
			p := progress[id][l.ID]
			if p == nil || !p.Completed {
				return false
			}
		}
	}
	return true
}
