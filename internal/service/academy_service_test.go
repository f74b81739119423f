package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/pkg/api"
)

func intPtr(v int) *int { return &v }

// seedModule stores a two-question quiz for module-1: one multiple choice
// worth 10 points and one essay worth 30.
func seedModule(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, q := range []*models.QuizQuestion{
		{ID: "m1-q1", ModuleID: "module-1", Type: models.QuestionMultipleChoice, Question: "What is a stop loss?",
			Options: []string{"An exit that caps risk", "A broker fee"}, CorrectAnswer: intPtr(0), Points: 10, Order: 1},
		{ID: "m1-q2", ModuleID: "module-1", Type: models.QuestionEssay, Question: "Describe your plan.", Points: 30, Order: 2},
	} {
		q.CreatedAt, q.UpdatedAt = now, now
		require.NoError(t, env.store.UpsertQuestion(ctx, q))
	}
}

func TestListQuestionsHidesAnswers(t *testing.T) {
	env := newTestEnv(t)
	seedModule(t, env)
	_, token := env.warrior()

	resp, err := env.academyClient(token).ListQuestions(context.Background(), connect.NewRequest(&api.ListQuestionsRequest{ModuleID: "module-1"}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Questions, 2)
	assert.Equal(t, "m1-q1", resp.Msg.Questions[0].ID)
	for _, q := range resp.Msg.Questions {
		assert.Nil(t, q.CorrectAnswer, q.ID)
	}

	stored, err := env.store.GetQuestion(context.Background(), "module-1", "m1-q1")
	require.NoError(t, err)
	assert.NotNil(t, stored.CorrectAnswer)
}

func TestQuizFlow(t *testing.T) {
	env := newTestEnv(t)
	seedModule(t, env)
	ctx := context.Background()
	student, token := env.warrior()
	_, adminToken := env.admin()
	_, superToken := env.superAdmin()
	client := env.academyClient(token)

	mc, err := client.SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-1", QuestionID: "m1-q1", Answer: "1"}))
	require.NoError(t, err)
	require.NotNil(t, mc.Msg.Answer.Score)
	assert.Equal(t, 0, *mc.Msg.Answer.Score)
	assert.False(t, *mc.Msg.Answer.IsCorrect)
	assert.Equal(t, models.AnswerID(student.ID, "module-1", "m1-q1"), mc.Msg.Answer.ID)

	// Resubmitting replaces the earlier answer.
	mc, err = client.SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-1", QuestionID: "m1-q1", Answer: "0"}))
	require.NoError(t, err)
	assert.Equal(t, 100, *mc.Msg.Answer.Score)
	assert.Equal(t, "auto", mc.Msg.Answer.GradedBy)

	essay, err := client.SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-1", QuestionID: "m1-q2", Answer: "Risk 1% per trade."}))
	require.NoError(t, err)
	assert.Nil(t, essay.Msg.Answer.Score)

	score, err := client.GetModuleScore(ctx, connect.NewRequest(&api.GetModuleScoreRequest{ModuleID: "module-1"}))
	require.NoError(t, err)
	assert.Equal(t, 2, score.Msg.Score.Answered)
	assert.Equal(t, 1, score.Msg.Score.PendingGrading)
	assert.False(t, score.Msg.Score.Completed)

	ungraded, err := env.academyClient(adminToken).ListUngradedAnswers(ctx, connect.NewRequest(&api.ListUngradedAnswersRequest{}))
	require.NoError(t, err)
	require.Len(t, ungraded.Msg.Answers, 1)
	assert.Equal(t, "m1-q2", ungraded.Msg.Answers[0].QuestionID)

	// Admins review, only super admins grade.
	grade := &api.GradeEssayRequest{UserID: student.ID, ModuleID: "module-1", QuestionID: "m1-q2", Score: 80, Feedback: "Solid"}
	_, err = env.academyClient(adminToken).GradeEssay(ctx, connect.NewRequest(grade))
	requireCode(t, err, connect.CodePermissionDenied)

	graded, err := env.academyClient(superToken).GradeEssay(ctx, connect.NewRequest(grade))
	require.NoError(t, err)
	assert.Equal(t, 80, *graded.Msg.Answer.Score)
	assert.Equal(t, "Solid", graded.Msg.Answer.Feedback)

	score, err = client.GetModuleScore(ctx, connect.NewRequest(&api.GetModuleScoreRequest{ModuleID: "module-1"}))
	require.NoError(t, err)
	assert.True(t, score.Msg.Score.Completed)
	assert.Equal(t, 0, score.Msg.Score.PendingGrading)
	// (100*10 + 80*30) / 40
	assert.InDelta(t, 85, score.Msg.Score.Percentage, 1e-9)
}

func TestGradeEssayValidation(t *testing.T) {
	env := newTestEnv(t)
	seedModule(t, env)
	ctx := context.Background()
	student, token := env.warrior()
	_, superToken := env.superAdmin()

	_, err := env.academyClient(token).SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-1", QuestionID: "m1-q1", Answer: "0"}))
	require.NoError(t, err)

	grader := env.academyClient(superToken)
	tests := []struct {
		name string
		req  *api.GradeEssayRequest
		want connect.Code
	}{
		{"missing module", &api.GradeEssayRequest{UserID: student.ID, QuestionID: "m1-q2", Score: 50}, connect.CodeInvalidArgument},
		{"score too high", &api.GradeEssayRequest{UserID: student.ID, ModuleID: "module-1", QuestionID: "m1-q1", Score: 101}, connect.CodeInvalidArgument},
		{"not an essay", &api.GradeEssayRequest{UserID: student.ID, ModuleID: "module-1", QuestionID: "m1-q1", Score: 50}, connect.CodeInvalidArgument},
		{"no answer", &api.GradeEssayRequest{UserID: student.ID, ModuleID: "module-1", QuestionID: "m1-q2", Score: 50}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := grader.GradeEssay(ctx, connect.NewRequest(tt.req))
			requireCode(t, err, tt.want)
		})
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	env := newTestEnv(t)
	seedModule(t, env)
	ctx := context.Background()
	_, token := env.warrior()
	client := env.academyClient(token)

	_, err := client.SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-1", QuestionID: "m1-q1", Answer: "7"}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = client.SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-1", QuestionID: "missing", Answer: "0"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = client.SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-1", QuestionID: "m1-q1"}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestUpsertQuestion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, adminToken := env.admin()
	_, warriorToken := env.warrior()

	q := &models.QuizQuestion{ID: "m2-q1", ModuleID: "module-2", Type: models.QuestionTrueFalse, Question: "Leverage magnifies losses.", CorrectAnswer: intPtr(0), Points: 5}

	_, err := env.academyClient(warriorToken).UpsertQuestion(ctx, connect.NewRequest(&api.UpsertQuestionRequest{Question: q}))
	requireCode(t, err, connect.CodePermissionDenied)

	resp, err := env.academyClient(adminToken).UpsertQuestion(ctx, connect.NewRequest(&api.UpsertQuestionRequest{Question: q}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.Question.CreatedAt.IsZero())

	bad := *q
	bad.CorrectAnswer = intPtr(2)
	_, err = env.academyClient(adminToken).UpsertQuestion(ctx, connect.NewRequest(&api.UpsertQuestionRequest{Question: &bad}))
	requireCode(t, err, connect.CodeInvalidArgument)

	// True/false answers may be spelled out.
	answer, err := env.academyClient(warriorToken).SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-2", QuestionID: "m2-q1", Answer: "true"}))
	require.NoError(t, err)
	assert.Equal(t, 100, *answer.Msg.Answer.Score)
}

func TestSameQuestionIDInTwoModules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, module := range []string{"module-1", "module-2"} {
		require.NoError(t, env.store.UpsertQuestion(ctx, &models.QuizQuestion{
			ID: "q1", ModuleID: module, Type: models.QuestionTrueFalse, Question: "Is risk optional?",
			CorrectAnswer: intPtr(1), Points: 5, CreatedAt: now, UpdatedAt: now,
		}))
	}
	_, token := env.warrior()
	client := env.academyClient(token)

	_, err := client.SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-1", QuestionID: "q1", Answer: "false"}))
	require.NoError(t, err)
	_, err = client.SubmitAnswer(ctx, connect.NewRequest(&api.SubmitAnswerRequest{ModuleID: "module-2", QuestionID: "q1", Answer: "true"}))
	require.NoError(t, err)

	first, err := client.GetModuleScore(ctx, connect.NewRequest(&api.GetModuleScoreRequest{ModuleID: "module-1"}))
	require.NoError(t, err)
	second, err := client.GetModuleScore(ctx, connect.NewRequest(&api.GetModuleScoreRequest{ModuleID: "module-2"}))
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.Msg.Score.Percentage)
	assert.Equal(t, 0.0, second.Msg.Score.Percentage)
	assert.True(t, first.Msg.Score.Completed)
	assert.True(t, second.Msg.Score.Completed)
}

// seedCourse stores a one-lesson recruit module and a veteran module that
// requires it.
func seedCourse(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, m := range []*models.Module{
		{ID: "recruit-1", Level: models.LevelRecruit, Title: "Risk Basics", Order: 1,
			Lessons: []models.Lesson{{ID: "l1", Title: "Position sizing", Order: 1, EstimatedMinutes: 10}}},
		{ID: "veteran-1", Level: models.LevelVeteran, Title: "Trade Management", Order: 2,
			Lessons:       []models.Lesson{{ID: "l1", Title: "Scaling out", Order: 1}, {ID: "l2", Title: "Trailing stops", Order: 2}},
			Prerequisites: []string{"recruit-1"}},
	} {
		m.CreatedAt, m.UpdatedAt = now, now
		require.NoError(t, env.store.UpsertModule(ctx, m))
	}
}

func TestLessonProgressUnlocksModules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCourse(t, env)
	_, token := env.warrior()
	client := env.academyClient(token)

	list, err := client.ListModules(ctx, connect.NewRequest(&api.ListModulesRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Modules, 2)
	assert.Equal(t, "recruit-1", list.Msg.Modules[0].ModuleID)
	assert.True(t, list.Msg.Modules[0].Unlocked)
	assert.False(t, list.Msg.Modules[1].Unlocked)

	_, err = client.GetModule(ctx, connect.NewRequest(&api.GetModuleRequest{ModuleID: "veteran-1"}))
	requireCode(t, err, connect.CodeFailedPrecondition)
	_, err = client.MarkLessonComplete(ctx, connect.NewRequest(&api.MarkLessonCompleteRequest{ModuleID: "veteran-1", LessonID: "l1"}))
	requireCode(t, err, connect.CodeFailedPrecondition)

	visit, err := client.RecordLessonAccess(ctx, connect.NewRequest(&api.LessonRequest{ModuleID: "recruit-1", LessonID: "l1"}))
	require.NoError(t, err)
	assert.False(t, visit.Msg.Progress.Completed)
	assert.Equal(t, 0, visit.Msg.Summary.Progress)

	done, err := client.MarkLessonComplete(ctx, connect.NewRequest(&api.MarkLessonCompleteRequest{ModuleID: "recruit-1", LessonID: "l1", TimeSpent: 12}))
	require.NoError(t, err)
	require.True(t, done.Msg.Progress.Completed)
	require.NotNil(t, done.Msg.Progress.CompletedAt)
	completedAt := *done.Msg.Progress.CompletedAt
	assert.Equal(t, 100, done.Msg.Summary.Progress)
	assert.Equal(t, 12, done.Msg.Progress.TimeSpent)

	again, err := client.MarkLessonComplete(ctx, connect.NewRequest(&api.MarkLessonCompleteRequest{ModuleID: "recruit-1", LessonID: "l1", TimeSpent: 5}))
	require.NoError(t, err)
	assert.Equal(t, 17, again.Msg.Progress.TimeSpent, "time adds up")
	assert.True(t, completedAt.Equal(*again.Msg.Progress.CompletedAt), "first completion time is kept")

	opened, err := client.GetModule(ctx, connect.NewRequest(&api.GetModuleRequest{ModuleID: "veteran-1"}))
	require.NoError(t, err)
	assert.True(t, opened.Msg.Summary.Unlocked)
	assert.Len(t, opened.Msg.Module.Lessons, 2)
	assert.Empty(t, opened.Msg.Progress)

	half, err := client.MarkLessonComplete(ctx, connect.NewRequest(&api.MarkLessonCompleteRequest{ModuleID: "veteran-1", LessonID: "l2"}))
	require.NoError(t, err)
	assert.Equal(t, 50, half.Msg.Summary.Progress)
	assert.Equal(t, 1, half.Msg.Summary.CompletedLessons)
}

func TestLessonProgressValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCourse(t, env)
	_, token := env.warrior()
	client := env.academyClient(token)

	_, err := client.GetModule(ctx, connect.NewRequest(&api.GetModuleRequest{ModuleID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)
	_, err = client.RecordLessonAccess(ctx, connect.NewRequest(&api.LessonRequest{ModuleID: "recruit-1", LessonID: "l9"}))
	requireCode(t, err, connect.CodeNotFound)
	_, err = client.RecordLessonAccess(ctx, connect.NewRequest(&api.LessonRequest{ModuleID: "recruit-1"}))
	requireCode(t, err, connect.CodeInvalidArgument)
	_, err = client.MarkLessonComplete(ctx, connect.NewRequest(&api.MarkLessonCompleteRequest{ModuleID: "recruit-1", LessonID: "l1", TimeSpent: -1}))
	requireCode(t, err, connect.CodeInvalidArgument)
	_, err = client.MarkLessonComplete(ctx, connect.NewRequest(&api.MarkLessonCompleteRequest{ModuleID: "recruit-1", LessonID: "l1", TimeSpent: 1441}))
	requireCode(t, err, connect.CodeInvalidArgument)
	_, err = env.academyClient("").ListModules(ctx, connect.NewRequest(&api.ListModulesRequest{}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestUpsertModule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, warriorToken := env.warrior()
	_, adminToken := env.admin()

	m := &models.Module{ID: "warrior-1", Level: models.LevelWarrior, Title: "Reading Structure", Order: 3,
		Lessons: []models.Lesson{{ID: "l1", Title: "Swing points", Order: 1}}}
	_, err := env.academyClient(warriorToken).UpsertModule(ctx, connect.NewRequest(&api.UpsertModuleRequest{Module: m}))
	requireCode(t, err, connect.CodePermissionDenied)

	created, err := env.academyClient(adminToken).UpsertModule(ctx, connect.NewRequest(&api.UpsertModuleRequest{Module: m}))
	require.NoError(t, err)
	firstCreated := created.Msg.Module.CreatedAt
	assert.False(t, firstCreated.IsZero())

	m.Title = "Reading Market Structure"
	updated, err := env.academyClient(adminToken).UpsertModule(ctx, connect.NewRequest(&api.UpsertModuleRequest{Module: m}))
	require.NoError(t, err)
	assert.True(t, firstCreated.Equal(updated.Msg.Module.CreatedAt), "creation time survives an update")

	stored, err := env.store.GetModule(ctx, "warrior-1")
	require.NoError(t, err)
	assert.Equal(t, "Reading Market Structure", stored.Title)

	bad := &models.Module{ID: "bad", Level: "GENERAL", Title: "No level", Lessons: []models.Lesson{{ID: "l1"}}}
	_, err = env.academyClient(adminToken).UpsertModule(ctx, connect.NewRequest(&api.UpsertModuleRequest{Module: bad}))
	requireCode(t, err, connect.CodeInvalidArgument)
}
