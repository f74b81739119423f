package models

import "time"

// ModuleLevel groups academy modules by trader experience.
type ModuleLevel string

const (
	LevelRecruit ModuleLevel = "RECRUIT"
	LevelWarrior ModuleLevel = "WARRIOR"
	LevelVeteran ModuleLevel = "VETERAN"
)

// Valid reports whether l is a known level.
func (l ModuleLevel) Valid() bool {
	switch l {
	case LevelRecruit, LevelWarrior, LevelVeteran:
		return true
	}
	return false
}

// Module is one course of the academy. ID is the partition key and also
// the module ID its quiz questions carry.
type Module struct {
	ID          string      `json:"id" yaml:"id"`
	Level       ModuleLevel `json:"level" yaml:"level"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Order       int         `json:"order" yaml:"order"`
	Lessons     []Lesson    `json:"lessons" yaml:"lessons"`

	// Prerequisites are module IDs whose lessons must all be completed first.
	Prerequisites []string `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

// Lesson returns the lesson with the given ID, or nil.
func (m *Module) Lesson(id string) *Lesson {
	for i := range m.Lessons {
		if m.Lessons[i].ID == id {
			return &m.Lessons[i]
		}
	}
	return nil
}

// Lesson is a single reading or video inside a module.
type Lesson struct {
	ID               string `json:"id" yaml:"id"`
	Title            string `json:"title" yaml:"title"`
	Content          string `json:"content" yaml:"content"`
	ImageURL         string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	VideoURL         string `json:"videoUrl,omitempty" yaml:"videoUrl,omitempty"`
	Order            int    `json:"order" yaml:"order"`
	EstimatedMinutes int    `json:"estimatedMinutes" yaml:"estimatedMinutes"`
}

// LessonProgress is one user's state on one lesson. ID is
// ProgressID(userId, moduleId, lessonId) and UserID is the partition key.
type LessonProgress struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	ModuleID    string     `json:"moduleId"`
	LessonID    string     `json:"lessonId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// TimeSpent is in minutes, summed over every completion report.
	TimeSpent      int       `json:"timeSpent"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProgressID names the single progress document a user has for a lesson.
func ProgressID(userID, moduleID, lessonID string) string {
	return userID + "_" + moduleID + "_" + lessonID
}

// ModuleSummary is a user's progress through one module's lessons.
type ModuleSummary struct {
	ModuleID         string      `json:"moduleId"`
	Title            string      `json:"title"`
	Level            ModuleLevel `json:"level"`
	Order            int         `json:"order"`
	TotalLessons     int         `json:"totalLessons"`
	CompletedLessons int         `json:"completedLessons"`

	// Progress is the rounded completion percentage.
	Progress       int        `json:"progress"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
	Unlocked       bool       `json:"unlocked"`
}
