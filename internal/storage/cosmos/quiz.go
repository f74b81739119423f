package cosmos

import (
	"context"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/mptwarrior/warrior/internal/models"
)

// UpsertQuestion writes a question into its module's partition.
func (s *Store) UpsertQuestion(ctx context.Context, q *models.QuizQuestion) error {
	return upsertItem(ctx, s.questions, q.ModuleID, q, "question "+q.ID)
}

// GetQuestion point-reads a question.
func (s *Store) GetQuestion(ctx context.Context, moduleID, questionID string) (*models.QuizQuestion, error) {
	q, _, err := readItem[models.QuizQuestion](ctx, s.questions, moduleID, questionID, "question "+questionID)
	return q, err
}

// ListQuestions reads a module's partition in display order.
func (s *Store) ListQuestions(ctx context.Context, moduleID string) ([]*models.QuizQuestion, error) {
	return queryItems[models.QuizQuestion](ctx, s.questions, azcosmos.NewPartitionKeyString(moduleID),
		"SELECT * FROM c WHERE c.moduleId = @moduleId ORDER BY c[\"order\"] ASC", param("@moduleId", moduleID))
}

// ListAllQuestions reads every module.
func (s *Store) ListAllQuestions(ctx context.Context) ([]*models.QuizQuestion, error) {
	questions, err := queryItems[models.QuizQuestion](ctx, s.questions, allPartitions, "SELECT * FROM c")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].ModuleID != questions[j].ModuleID {
			return questions[i].ModuleID < questions[j].ModuleID
		}
		return questions[i].Order < questions[j].Order
	})
	return questions, nil
}

// UpsertAnswer writes the answer under models.AnswerID, so a resubmission
// replaces the earlier document.
func (s *Store) UpsertAnswer(ctx context.Context, a *models.QuizAnswer) error {
	a.ID = models.AnswerID(a.UserID, a.ModuleID, a.QuestionID)
	return upsertItem(ctx, s.answers, a.UserID, a, "answer "+a.ID)
}

// GetAnswer point-reads the user's answer to a module's question.
func (s *Store) GetAnswer(ctx context.Context, userID, moduleID, questionID string) (*models.QuizAnswer, error) {
	id := models.AnswerID(userID, moduleID, questionID)
	a, _, err := readItem[models.QuizAnswer](ctx, s.answers, userID, id, "answer "+id)
	return a, err
}

// ListAnswers reads the user's partition.
func (s *Store) ListAnswers(ctx context.Context, userID string) ([]*models.QuizAnswer, error) {
	return queryItems[models.QuizAnswer](ctx, s.answers, azcosmos.NewPartitionKeyString(userID),
		"SELECT * FROM c WHERE c.userId = @userId ORDER BY c.submittedAt ASC", param("@userId", userID))
}

// ListUngradedAnswers finds answers without a score across all users.
func (s *Store) ListUngradedAnswers(ctx context.Context) ([]*models.QuizAnswer, error) {
	answers, err := queryItems[models.QuizAnswer](ctx, s.answers, allPartitions,
		"SELECT * FROM c WHERE NOT IS_DEFINED(c.score) OR IS_NULL(c.score)")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].SubmittedAt.Before(answers[j].SubmittedAt)
	})
	return answers, nil
}
