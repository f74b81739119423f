// Package models defines the core domain models for MPT Warrior.
//
// Every model maps to one document in a named container of the production
// document store, so the JSON field names are part of the storage contract
// and must not change casually:
//
//   - User: a registered trader or administrator (container "users", partition /id)
//   - InvitationCode: registration gate token (container "invitation-codes", partition /code)
//   - Trade: one logged position outcome (container "trades", partition /userId)
//   - LeaderboardEntry: the current ranking of one user (container "user-leaderboard", partition /userId)
//   - RankSnapshot: one user's ranking in one ISO week (container "leaderboard-history", partition /week)
//   - QuizQuestion / QuizAnswer: academy quizzes (containers "quiz-questions" /moduleId and "quiz-answers" /userId)
//   - Module / LessonProgress: academy lessons (containers "educational-modules" /id and "user-progress" /userId)
//   - DisciplineLog: one change to a discipline score (container "discipline-logs", partition /userId)
//   - ChatThread / ChatMessage: AI mentor history (containers "chat-threads" /userId and "chat-messages" /threadId)
//   - AuditLog: admin and registration trail (container "audit-logs", partition /performed_by)
//
// # Design Principles
//
//  1. Relationships are string IDs, never pointers.
//  2. Models carry no behavior beyond small predicates; business rules live in
//     the calculator, discipline, invitation and leaderboard packages.
//  3. Timestamps are time.Time in UTC; the SQLite backend stores them as Unix nanoseconds.
package models
