package models

import "time"

// QuestionType selects how an answer is graded.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionEssay          QuestionType = "essay"
)

// AutoGraded reports whether answers can be scored without a reviewer.
func (t QuestionType) AutoGraded() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse
}

// QuizQuestion belongs to one academy module. ModuleID is the partition key;
// IDs are unique within a module only.
type QuizQuestion struct {
	ID       string       `json:"id" yaml:"id"`
	ModuleID string       `json:"moduleId" yaml:"moduleId"`
	Type     QuestionType `json:"type" yaml:"type"`
	Question string       `json:"question" yaml:"question"`
	Options  []string     `json:"options,omitempty" yaml:"options,omitempty"`

	// CorrectAnswer is the index into Options for auto-graded questions.
	CorrectAnswer *int `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty"`

	Points   int    `json:"points" yaml:"points"`
	Order    int    `json:"order" yaml:"order"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

// QuizAnswer is one user's latest submission for one question.
// ID is AnswerID(userId, moduleId, questionId) and UserID is the partition key.
type QuizAnswer struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	ModuleID   string `json:"moduleId"`
	QuestionID string `json:"questionId"`

	// Answer is the option index for auto-graded questions or free text for essays.
	Answer string `json:"answer"`

	// Score is 0-100, nil while an essay awaits grading.
	Score     *int   `json:"score"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
	Feedback  string `json:"feedback,omitempty"`
	GradedBy  string `json:"gradedBy,omitempty"`

	SubmittedAt time.Time  `json:"submittedAt"`
	GradedAt    *time.Time `json:"gradedAt,omitempty"`
}

// AnswerID names the single answer document a user has for a module's question.
func AnswerID(userID, moduleID, questionID string) string {
	return userID + "_" + moduleID + "_" + questionID
}

// ModuleScore summarizes a user's progress through one module's quiz.
type ModuleScore struct {
	ModuleID       string  `json:"moduleId"`
	TotalQuestions int     `json:"totalQuestions"`
	Answered       int     `json:"answered"`
	PendingGrading int     `json:"pendingGrading"`
	Percentage     float64 `json:"percentage"`
	Completed      bool    `json:"completed"`
}
