package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "warrior-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr[T any](v T) *T { return &v }

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	user := &models.User{
		ID:           "user-1",
		WarriorID:    "MPT-2026-12345",
		Email:        "warrior@example.com",
		Name:         "Budi",
		PasswordHash: "hash",
		WhatsApp:     "+628123",
		Role:         models.RoleWarrior,
		Status:       models.StatusPending,
		Settings:     models.DefaultUserSettings(),
		JoinDate:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	t.Run("CreateUser and GetUserByEmail ignores case", func(t *testing.T) {
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		got, err := store.GetUserByEmail(ctx, "WARRIOR@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, user.ID)
		}
		if got.Settings != user.Settings {
			t.Errorf("Settings mismatch: got %+v, want %+v", got.Settings, user.Settings)
		}
		if !got.JoinDate.Equal(now) {
			t.Errorf("JoinDate mismatch: got %v, want %v", got.JoinDate, now)
		}
		if got.ApprovedDate != nil {
			t.Errorf("Expected nil ApprovedDate, got %v", got.ApprovedDate)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup := *user
		dup.ID = "user-2"
		dup.Email = "Warrior@Example.com"
		err := store.CreateUser(ctx, &dup)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("UpdateUser persists approval", func(t *testing.T) {
		approved := now.Add(time.Hour)
		user.Status = models.StatusActive
		user.ApprovedDate = &approved
		user.ApprovedBy = "admin-1"
		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Status != models.StatusActive {
			t.Errorf("Status mismatch: got %s", got.Status)
		}
		if got.ApprovedDate == nil || !got.ApprovedDate.Equal(approved) {
			t.Errorf("ApprovedDate mismatch: got %v, want %v", got.ApprovedDate, approved)
		}
	})

	t.Run("ListUsers filters by status", func(t *testing.T) {
		pending := *user
		pending.ID = "user-3"
		pending.Email = "pending@example.com"
		pending.Status = models.StatusPending
		pending.ApprovedDate = nil
		if err := store.CreateUser(ctx, &pending); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		users, err := store.ListUsers(ctx, storage.UserFilter{Status: models.StatusPending})
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(users) != 1 || users[0].ID != "user-3" {
			t.Errorf("Expected only user-3, got %d users", len(users))
		}
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		missing := &models.User{ID: "nope", Email: "nope@example.com"}
		if err := store.UpdateUser(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on update, got %v", err)
		}
	})
}

func TestTrades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	trade := &models.Trade{
		ID:             "trade-1",
		UserID:         "user-1",
		Pair:           "XAUUSD",
		Position:       models.PositionBuy,
		Result:         models.ResultWin,
		Pips:           42.5,
		EntryPrice:     ptr(2034.1),
		StopLoss:       ptr(2030.0),
		Notes:          "clean breakout",
		EmotionalState: "calm",
		Tags:           []string{"breakout", "london"},
		TradeDate:      base,
		CreatedAt:      base,
		UpdatedAt:      base,
	}

	t.Run("create then get returns the same fields", func(t *testing.T) {
		if err := store.CreateTrade(ctx, trade); err != nil {
			t.Fatalf("CreateTrade failed: %v", err)
		}
		got, err := store.GetTrade(ctx, "user-1", "trade-1")
		if err != nil {
			t.Fatalf("GetTrade failed: %v", err)
		}
		if got.Pair != trade.Pair || got.Position != trade.Position || got.Result != trade.Result {
			t.Errorf("Trade mismatch: got %+v", got)
		}
		if got.Pips != trade.Pips {
			t.Errorf("Pips mismatch: got %v, want %v", got.Pips, trade.Pips)
		}
		if got.EntryPrice == nil || *got.EntryPrice != 2034.1 {
			t.Errorf("EntryPrice mismatch: got %v", got.EntryPrice)
		}
		if got.ExitPrice != nil {
			t.Errorf("Expected nil ExitPrice, got %v", *got.ExitPrice)
		}
		if len(got.Tags) != 2 || got.Tags[1] != "london" {
			t.Errorf("Tags mismatch: got %v", got.Tags)
		}
		if !got.TradeDate.Equal(base) {
			t.Errorf("TradeDate mismatch: got %v, want %v", got.TradeDate, base)
		}
	})

	t.Run("other users cannot read the trade", func(t *testing.T) {
		_, err := store.GetTrade(ctx, "user-2", "trade-1")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListTrades orders newest first and filters", func(t *testing.T) {
		for i, result := range []models.TradeResult{models.ResultLoss, models.ResultWin} {
			tr := &models.Trade{
				ID:        "trade-" + string(rune('a'+i)),
				UserID:    "user-1",
				Pair:      "EURUSD",
				Position:  models.PositionSell,
				Result:    result,
				Pips:      -10,
				TradeDate: base.AddDate(0, 0, i+1),
				CreatedAt: base,
				UpdatedAt: base,
			}
			if err := store.CreateTrade(ctx, tr); err != nil {
				t.Fatalf("CreateTrade failed: %v", err)
			}
		}

		all, err := store.ListTrades(ctx, "user-1", models.TradeFilter{})
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if len(all) != 3 || all[0].ID != "trade-b" || all[2].ID != "trade-1" {
			t.Errorf("Unexpected order: %v", tradeIDs(all))
		}

		eur, err := store.ListTrades(ctx, "user-1", models.TradeFilter{Pair: "eurusd", Result: models.ResultLoss})
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if len(eur) != 1 || eur[0].ID != "trade-a" {
			t.Errorf("Unexpected filtered trades: %v", tradeIDs(eur))
		}

		page, err := store.ListTrades(ctx, "user-1", models.TradeFilter{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("ListTrades failed: %v", err)
		}
		if len(page) != 1 || page[0].ID != "trade-a" {
			t.Errorf("Unexpected page: %v", tradeIDs(page))
		}
	})

	t.Run("DeleteTrade and CountTrades", func(t *testing.T) {
		if err := store.DeleteTrade(ctx, "user-1", "trade-a"); err != nil {
			t.Fatalf("DeleteTrade failed: %v", err)
		}
		if err := store.DeleteTrade(ctx, "user-1", "trade-a"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
		n, err := store.CountTrades(ctx)
		if err != nil {
			t.Fatalf("CountTrades failed: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 trades, got %d", n)
		}
	})
}

func tradeIDs(trades []*models.Trade) []string {
	ids := make([]string, len(trades))
	for i, tr := range trades {
		ids[i] = tr.ID
	}
	return ids
}

func TestIncrementCodeUseNeverExceedsMaxUses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	code := &models.InvitationCode{
		ID:        "code-1",
		Code:      "MPT-TEST-2026",
		MaxUses:   3,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		IsActive:  true,
		Role:      models.RoleWarrior,
		CreatedAt: time.Now(),
	}
	if err := store.CreateCode(ctx, code); err != nil {
		t.Fatalf("CreateCode failed: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		exhausted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.IncrementCodeUse(ctx, code.Code)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, storage.ErrCodeExhausted):
				exhausted++
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 3 || exhausted != 7 {
		t.Errorf("Expected 3 uses and 7 rejections, got %d and %d", succeeded, exhausted)
	}

	got, err := store.GetCode(ctx, code.Code)
	if err != nil {
		t.Fatalf("GetCode failed: %v", err)
	}
	if got.UsedCount != 3 {
		t.Errorf("Expected used_count 3, got %d", got.UsedCount)
	}

	if _, err := store.IncrementCodeUse(ctx, "MPT-NONE-2026"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestLeaderboardSnapshots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	snaps := []*models.RankSnapshot{
		{ID: "2026-W08_u1", Week: "2026-W08", UserID: "u1", Rank: 2, TotalPoints: 100, Tier: models.TierRecruit, RecordedAt: now},
		{ID: "2026-W09_u1", Week: "2026-W09", UserID: "u1", Rank: 1, TotalPoints: 180, Tier: models.TierRecruit, RecordedAt: now},
		{ID: "2026-W08_u2", Week: "2026-W08", UserID: "u2", Rank: 1, TotalPoints: 150, Tier: models.TierRecruit, RecordedAt: now},
		{ID: "2026-W10_u1", Week: "2026-W10", UserID: "u1", Rank: 1, TotalPoints: 260, Tier: models.TierRecruit, RecordedAt: now},
	}
	for _, s := range snaps {
		if err := store.UpsertRankSnapshot(ctx, s); err != nil {
			t.Fatalf("UpsertRankSnapshot failed: %v", err)
		}
	}

	latest, err := store.LatestSnapshotsBefore(ctx, "2026-W10")
	if err != nil {
		t.Fatalf("LatestSnapshotsBefore failed: %v", err)
	}
	if latest["u1"] == nil || latest["u1"].Week != "2026-W09" {
		t.Errorf("Expected u1's W09 snapshot, got %+v", latest["u1"])
	}
	if latest["u2"] == nil || latest["u2"].TotalPoints != 150 {
		t.Errorf("Expected u2's W08 snapshot, got %+v", latest["u2"])
	}

	// Re-running a week replaces its snapshot.
	snaps[1].TotalPoints = 190
	if err := store.UpsertRankSnapshot(ctx, snaps[1]); err != nil {
		t.Fatalf("UpsertRankSnapshot failed: %v", err)
	}
	week, err := store.ListRankSnapshots(ctx, "2026-W09")
	if err != nil {
		t.Fatalf("ListRankSnapshots failed: %v", err)
	}
	if len(week) != 1 || week[0].TotalPoints != 190 {
		t.Errorf("Expected one replaced snapshot, got %+v", week)
	}
}

func TestLeaderboardEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"u2", "u1"} {
		entry := &models.LeaderboardEntry{
			ID:          id,
			UserID:      id,
			UserName:    id,
			TotalPoints: 100 * (i + 1),
			Tier:        models.TierRecruit,
			Badges:      []models.Badge{models.BadgeTopPerformer},
			Rank:        2 - i,
			RankTrend:   models.TrendStable,
			Week:        "2026-W10",
			UpdatedAt:   time.Now(),
		}
		if err := store.UpsertLeaderboardEntry(ctx, entry); err != nil {
			t.Fatalf("UpsertLeaderboardEntry failed: %v", err)
		}
	}

	entries, err := store.ListLeaderboardEntries(ctx)
	if err != nil {
		t.Fatalf("ListLeaderboardEntries failed: %v", err)
	}
	if len(entries) != 2 || entries[0].UserID != "u1" {
		t.Fatalf("Expected u1 first, got %+v", entries)
	}
	if len(entries[0].Badges) != 1 || entries[0].Badges[0] != models.BadgeTopPerformer {
		t.Errorf("Badges mismatch: %v", entries[0].Badges)
	}
	if entries[0].PreviousRank != nil {
		t.Errorf("Expected nil PreviousRank, got %v", *entries[0].PreviousRank)
	}

	if err := store.DeleteLeaderboardEntry(ctx, "u2"); err != nil {
		t.Fatalf("DeleteLeaderboardEntry failed: %v", err)
	}
	if _, err := store.GetLeaderboardEntry(ctx, "u2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestQuizAnswers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	q := &models.QuizQuestion{
		ID:            "q1",
		ModuleID:      "module-1",
		Type:          models.QuestionMultipleChoice,
		Question:      "What is a pip?",
		Options:       []string{"a", "b"},
		CorrectAnswer: ptr(1),
		Points:        10,
		Order:         1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.UpsertQuestion(ctx, q); err != nil {
		t.Fatalf("UpsertQuestion failed: %v", err)
	}
	got, err := store.GetQuestion(ctx, "module-1", "q1")
	if err != nil {
		t.Fatalf("GetQuestion failed: %v", err)
	}
	if got.CorrectAnswer == nil || *got.CorrectAnswer != 1 || len(got.Options) != 2 {
		t.Errorf("Question mismatch: %+v", got)
	}

	essay := &models.QuizAnswer{
		UserID: "u1", ModuleID: "module-1", QuestionID: "q2",
		Answer: "Risk first.", SubmittedAt: now,
	}
	if err := store.UpsertAnswer(ctx, essay); err != nil {
		t.Fatalf("UpsertAnswer failed: %v", err)
	}
	ungraded, err := store.ListUngradedAnswers(ctx)
	if err != nil {
		t.Fatalf("ListUngradedAnswers failed: %v", err)
	}
	if len(ungraded) != 1 {
		t.Fatalf("Expected 1 ungraded answer, got %d", len(ungraded))
	}

	essay.Score = ptr(85)
	essay.GradedBy = "admin"
	essay.GradedAt = &now
	if err := store.UpsertAnswer(ctx, essay); err != nil {
		t.Fatalf("UpsertAnswer failed: %v", err)
	}
	ungraded, err = store.ListUngradedAnswers(ctx)
	if err != nil {
		t.Fatalf("ListUngradedAnswers failed: %v", err)
	}
	if len(ungraded) != 0 {
		t.Errorf("Expected no ungraded answers, got %d", len(ungraded))
	}

	graded, err := store.GetAnswer(ctx, "u1", "module-1", "q2")
	if err != nil {
		t.Fatalf("GetAnswer failed: %v", err)
	}
	if graded.Score == nil || *graded.Score != 85 {
		t.Errorf("Score mismatch: %v", graded.Score)
	}
}

func TestQuizIDsAreScopedToModule(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, module := range []string{"module-1", "module-2"} {
		q := &models.QuizQuestion{
			ID: "q1", ModuleID: module, Type: models.QuestionEssay,
			Question: "Explain " + module, Points: 10, CreatedAt: now, UpdatedAt: now,
		}
		if err := store.UpsertQuestion(ctx, q); err != nil {
			t.Fatalf("UpsertQuestion(%s) failed: %v", module, err)
		}
	}
	for _, module := range []string{"module-1", "module-2"} {
		questions, err := store.ListQuestions(ctx, module)
		if err != nil {
			t.Fatalf("ListQuestions failed: %v", err)
		}
		if len(questions) != 1 || questions[0].Question != "Explain "+module {
			t.Errorf("%s: expected its own q1, got %+v", module, questions)
		}
	}

	for i, module := range []string{"module-1", "module-2"} {
		a := &models.QuizAnswer{
			UserID: "u1", ModuleID: module, QuestionID: "q1",
			Answer: module, Score: ptr(10 * (i + 1)), SubmittedAt: now,
		}
		if err := store.UpsertAnswer(ctx, a); err != nil {
			t.Fatalf("UpsertAnswer(%s) failed: %v", module, err)
		}
	}
	answers, err := store.ListAnswers(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAnswers failed: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("Expected 2 answers, got %d", len(answers))
	}
	second, err := store.GetAnswer(ctx, "u1", "module-2", "q1")
	if err != nil {
		t.Fatalf("GetAnswer failed: %v", err)
	}
	if second.Answer != "module-2" || *second.Score != 20 {
		t.Errorf("Answer mismatch: %+v", second)
	}
	if second.ID != models.AnswerID("u1", "module-2", "q1") {
		t.Errorf("Unexpected answer id %q", second.ID)
	}
}

func TestChat(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	thread := &models.ChatThread{ID: "t1", UserID: "u1", CreatedAt: base, UpdatedAt: base}
	if err := store.CreateThread(ctx, thread); err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}

	contents := []string{"How do I size a lot?", "Risk 1% per trade.", "What about GOLD?"}
	for i, c := range contents {
		role := models.ChatRoleUser
		if i%2 == 1 {
			role = models.ChatRoleAssistant
		}
		msg := &models.ChatMessage{
			ID: "m" + string(rune('0'+i)), ThreadID: "t1", UserID: "u1",
			Role: role, Content: c, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	t.Run("last N keeps chronological order", func(t *testing.T) {
		msgs, err := store.ListMessages(ctx, "t1", 2)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(msgs) != 2 || msgs[0].ID != "m1" || msgs[1].ID != "m2" {
			t.Errorf("Unexpected messages: %+v", msgs)
		}
	})

	t.Run("search ignores case", func(t *testing.T) {
		msgs, err := store.SearchMessages(ctx, "u1", "gold", 10)
		if err != nil {
			t.Fatalf("SearchMessages failed: %v", err)
		}
		if len(msgs) != 1 || msgs[0].ID != "m2" {
			t.Errorf("Unexpected search result: %+v", msgs)
		}
		none, err := store.SearchMessages(ctx, "u2", "gold", 10)
		if err != nil {
			t.Fatalf("SearchMessages failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no results for another user, got %d", len(none))
		}
	})

	t.Run("delete cascades to messages", func(t *testing.T) {
		if err := store.DeleteThread(ctx, "u2", "t1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for foreign owner, got %v", err)
		}
		if err := store.DeleteThread(ctx, "u1", "t1"); err != nil {
			t.Fatalf("DeleteThread failed: %v", err)
		}
		msgs, err := store.ListMessages(ctx, "t1", 0)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(msgs) != 0 {
			t.Errorf("Expected messages deleted, got %d", len(msgs))
		}
	})
}

func TestAuditLogsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		entry := &models.AuditLog{
			ID:          "a" + string(rune('0'+i)),
			Action:      models.AuditCodeCreated,
			PerformedBy: "admin",
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Metadata:    map[string]string{"code": "MPT-X"},
		}
		if err := store.CreateAuditLog(ctx, entry); err != nil {
			t.Fatalf("CreateAuditLog failed: %v", err)
		}
	}

	logs, err := store.ListAuditLogs(ctx, 2)
	if err != nil {
		t.Fatalf("ListAuditLogs failed: %v", err)
	}
	if len(logs) != 2 || logs[0].ID != "a2" || logs[1].ID != "a1" {
		t.Errorf("Unexpected audit order: %+v", logs)
	}
	if logs[0].Metadata["code"] != "MPT-X" {
		t.Errorf("Metadata mismatch: %v", logs[0].Metadata)
	}
}

func TestDisciplineScore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	user := &models.User{
		ID: "d1", WarriorID: "MPT-2026-00001", Email: "d1@example.com", Name: "D1",
		Role: models.RoleWarrior, Status: models.StatusActive, Settings: models.DefaultUserSettings(),
		JoinDate: now, CreatedAt: now, UpdatedAt: now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	before, after, err := store.AdjustDisciplineScore(ctx, "d1", 995)
	if err != nil {
		t.Fatalf("AdjustDisciplineScore failed: %v", err)
	}
	if before != 0 || after != 995 {
		t.Errorf("Expected 0 -> 995, got %d -> %d", before, after)
	}
	if _, after, _ = store.AdjustDisciplineScore(ctx, "d1", 10); after != models.MaxDisciplineScore {
		t.Errorf("Expected score capped at %d, got %d", models.MaxDisciplineScore, after)
	}

	// A plain profile update carries a stale score; it must not win.
	user.Name = "Renamed"
	user.DisciplineScore = 3
	if err := store.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	got, err := store.GetUserByID(ctx, "d1")
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Name != "Renamed" || got.DisciplineScore != models.MaxDisciplineScore {
		t.Errorf("Expected renamed user with score %d, got %q with %d", models.MaxDisciplineScore, got.Name, got.DisciplineScore)
	}

	if _, _, err := store.AdjustDisciplineScore(ctx, "ghost", 5); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}

	for i, action := range []models.DisciplineAction{models.DisciplineJournalEntry, models.DisciplineNoStopLoss} {
		entry := &models.DisciplineLog{
			ID: "log-" + string(action), UserID: "d1", Action: action, Points: 1,
			Timestamp: now.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateDisciplineLog(ctx, entry); err != nil {
			t.Fatalf("CreateDisciplineLog failed: %v", err)
		}
	}
	logs, err := store.ListDisciplineLogs(ctx, "d1", 10)
	if err != nil {
		t.Fatalf("ListDisciplineLogs failed: %v", err)
	}
	if len(logs) != 2 || logs[0].Action != models.DisciplineNoStopLoss {
		t.Errorf("Expected newest log first, got %+v", logs)
	}
}

func TestModulesAndLessonProgress(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, id := range []string{"risk", "basics"} {
		m := &models.Module{
			ID: id, Level: models.LevelRecruit, Title: id, Order: 2 - i,
			Lessons:   []models.Lesson{{ID: "l1", Title: "Intro", Content: "...", EstimatedMinutes: 5}},
			CreatedAt: now, UpdatedAt: now,
		}
		if id == "risk" {
			m.Prerequisites = []string{"basics"}
		}
		if err := store.UpsertModule(ctx, m); err != nil {
			t.Fatalf("UpsertModule failed: %v", err)
		}
	}

	modules, err := store.ListModules(ctx)
	if err != nil {
		t.Fatalf("ListModules failed: %v", err)
	}
	if len(modules) != 2 || modules[0].ID != "basics" {
		t.Fatalf("Expected basics first, got %+v", modules)
	}
	risk, err := store.GetModule(ctx, "risk")
	if err != nil {
		t.Fatalf("GetModule failed: %v", err)
	}
	if len(risk.Lessons) != 1 || len(risk.Prerequisites) != 1 || risk.Prerequisites[0] != "basics" {
		t.Errorf("Module did not round-trip: %+v", risk)
	}
	if _, err := store.GetModule(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Both modules have a lesson "l1"; their progress must stay apart.
	for _, moduleID := range []string{"basics", "risk"} {
		p := &models.LessonProgress{
			UserID: "u1", ModuleID: moduleID, LessonID: "l1", TimeSpent: 5,
			LastAccessedAt: now, CreatedAt: now, UpdatedAt: now,
		}
		if err := store.UpsertLessonProgress(ctx, p); err != nil {
			t.Fatalf("UpsertLessonProgress failed: %v", err)
		}
		if p.ID != models.ProgressID("u1", moduleID, "l1") {
			t.Errorf("Expected ID to be set, got %q", p.ID)
		}
	}

	p, err := store.GetLessonProgress(ctx, "u1", "basics", "l1")
	if err != nil {
		t.Fatalf("GetLessonProgress failed: %v", err)
	}
	p.Completed = true
	p.CompletedAt = ptr(now)
	p.TimeSpent += 10
	if err := store.UpsertLessonProgress(ctx, p); err != nil {
		t.Fatalf("UpsertLessonProgress failed: %v", err)
	}

	all, err := store.ListLessonProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("ListLessonProgress failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 progress rows, got %d", len(all))
	}
	for _, p := range all {
		switch p.ModuleID {
		case "basics":
			if !p.Completed || p.TimeSpent != 15 || p.CompletedAt == nil {
				t.Errorf("basics progress not updated: %+v", p)
			}
		case "risk":
			if p.Completed || p.TimeSpent != 5 {
				t.Errorf("risk progress changed: %+v", p)
			}
		}
	}
}
