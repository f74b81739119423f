package api

import "github.com/mptwarrior/warrior/internal/models"

type ListQuestionsRequest struct {
	ModuleID string `json:"moduleId"`
}

type ListQuestionsResponse struct {
	// Questions never include the correct answer.
	Questions []*models.QuizQuestion `json:"questions"`
}

type SubmitAnswerRequest struct {
	ModuleID   string `json:"moduleId"`
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type SubmitAnswerResponse struct {
	Answer *models.QuizAnswer `json:"answer"`
}

type GetModuleScoreRequest struct {
	ModuleID string `json:"moduleId"`
}

type GetModuleScoreResponse struct {
	Score models.ModuleScore `json:"score"`
}

type ListUngradedAnswersRequest struct{}

type ListUngradedAnswersResponse struct {
	Answers []*models.QuizAnswer `json:"answers"`
}

type GradeEssayRequest struct {
	UserID     string `json:"userId"`
	ModuleID   string `json:"moduleId"`
	QuestionID string `json:"questionId"`
	Score      int    `json:"score"`
	Feedback   string `json:"feedback,omitempty"`
}

type GradeEssayResponse struct {
	Answer *models.QuizAnswer `json:"answer"`
}

type UpsertQuestionRequest struct {
	Question *models.QuizQuestion `json:"question"`
}

type UpsertQuestionResponse struct {
	Question *models.QuizQuestion `json:"question"`
}

type ListModulesRequest struct{}

type ListModulesResponse struct {
	Modules []models.ModuleSummary `json:"modules"`
}

type GetModuleRequest struct {
	ModuleID string `json:"moduleId"`
}

type GetModuleResponse struct {
	Module   *models.Module           `json:"module"`
	Summary  models.ModuleSummary     `json:"summary"`
	Progress []*models.LessonProgress `json:"progress"`
}

type LessonRequest struct {
	ModuleID string `json:"moduleId"`
	LessonID string `json:"lessonId"`
}

type MarkLessonCompleteRequest struct {
	ModuleID string `json:"moduleId"`
	LessonID string `json:"lessonId"`
	// TimeSpent is in minutes and adds to any earlier total.
	TimeSpent int `json:"timeSpent,omitempty"`
}

type LessonProgressResponse struct {
	Progress *models.LessonProgress `json:"progress"`
	Summary  models.ModuleSummary   `json:"summary"`
}

type UpsertModuleRequest struct {
	Module *models.Module `json:"module"`
}

type UpsertModuleResponse struct {
	Module *models.Module `json:"module"`
}
