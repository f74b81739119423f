package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mptwarrior/warrior/internal/models"
)

var (
	// ErrInvalidAnswer is returned when an auto-graded answer is not an option index.
	ErrInvalidAnswer = errors.New("answer must be the index of one of the options")

	ErrInvalidQuestion = errors.New("invalid quiz question")
)

// ValidateQuestion checks a question before it is stored.
func ValidateQuestion(q *models.QuizQuestion) error {
	switch {
	case q == nil:
		return fmt.Errorf("%w: question is required", ErrInvalidQuestion)
	case strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.ModuleID) == "":
		return fmt.Errorf("%w: id and moduleId are required", ErrInvalidQuestion)
	case strings.TrimSpace(q.Question) == "":
		return fmt.Errorf("%w: %s has no text", ErrInvalidQuestion, q.ID)
	case q.Points < 0:
		return fmt.Errorf("%w: %s has negative points", ErrInvalidQuestion, q.ID)
	}

	switch q.Type {
	case models.QuestionEssay:
		return nil
	case models.QuestionMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: %s needs at least two options", ErrInvalidQuestion, q.ID)
		}
	case models.QuestionTrueFalse:
	default:
		return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidQuestion, q.ID, q.Type)
	}

	options := len(q.Options)
	if q.Type == models.QuestionTrueFalse && options == 0 {
		options = 2
	}
	if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer >= options {
		return fmt.Errorf("%w: %s needs a correct answer index", ErrInvalidQuestion, q.ID)
	}
	return nil
}

// Grade scores an answer to an auto-graded question: 100 when it picks the
// correct option, 0 otherwise. True/false questions without options accept
// "true"/"false" as well as 0/1.
func Grade(q *models.QuizQuestion, answer string) (score int, correct bool, err error) {
	answer = strings.TrimSpace(answer)
	options := len(q.Options)
	if q.Type == models.QuestionTrueFalse && options == 0 {
		options = 2
		switch strings.ToLower(answer) {
		case "true":
			answer = "0"
		case "false":
			answer = "1"
		}
	}

	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 0 || idx >= options {
		return 0, false, ErrInvalidAnswer
	}
	if q.CorrectAnswer != nil && *q.CorrectAnswer == idx {
		return 100, true, nil
	}
	return 0, false, nil
}

// ScoreModule summarizes one module from its questions and the user's answers
// to that module, keyed by question ID. The percentage weights each graded answer by its
// question's points (a question without points counts as one).
func ScoreModule(moduleID string, questions []*models.QuizQuestion, answers map[string]*models.QuizAnswer) models.ModuleScore {
	s := models.ModuleScore{ModuleID: moduleID, TotalQuestions: len(questions)}

	var earned, possible float64
	for _, q := range questions {
		a, ok := answers[q.ID]
		if !ok {
			continue
		}
		s.Answered++
		if a.Score == nil {
			s.PendingGrading++
			continue
		}
		weight := float64(max(q.Points, 1))
		earned += float64(*a.Score) * weight
		possible += 100 * weight
	}

	if possible > 0 {
		s.Percentage = math.Round(earned/possible*10000) / 100
	}
	s.Completed = s.TotalQuestions > 0 && s.Answered == s.TotalQuestions && s.PendingGrading == 0
	return s
}

// QuizProgress is a user's standing across every academy module.
type QuizProgress struct {
	Modules          []models.ModuleScore
	TotalModules     int
	ModulesCompleted int
	// AverageScore is the mean percentage over completed modules.
	AverageScore float64
}

// SummarizeQuiz groups questions by module and scores each one.
// Modules are reported in first-seen order of questions.
func SummarizeQuiz(questions []*models.QuizQuestion, answers []*models.QuizAnswer) QuizProgress {
	byModule := make(map[string][]*models.QuizQuestion)
	var order []string
	for _, q := range questions {
		if _, ok := byModule[q.ModuleID]; !ok {
			order = append(order, q.ModuleID)
		}
		byModule[q.ModuleID] = append(byModule[q.ModuleID], q)
	}

	answered := make(map[string]map[string]*models.QuizAnswer)
	for _, a := range answers {
		if answered[a.ModuleID] == nil {
			answered[a.ModuleID] = make(map[string]*models.QuizAnswer)
		}
		answered[a.ModuleID][a.QuestionID] = a
	}

	p := QuizProgress{TotalModules: len(order)}
	var sum float64
	for _, moduleID := range order {
		s := ScoreModule(moduleID, byModule[moduleID], answered[moduleID])
		p.Modules = append(p.Modules, s)
		if s.Completed {
			p.ModulesCompleted++
			sum += s.Percentage
		}
	}
	if p.ModulesCompleted > 0 {
		p.AverageScore = sum / float64(p.ModulesCompleted)
	}
	return p
}
