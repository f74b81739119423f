package sqlite

import "database/sql"

// schema mirrors the Cosmos DB containers one table per container.
// Structured fields that Cosmos stores as nested JSON are TEXT columns holding JSON.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    warrior_id TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE COLLATE NOCASE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    whatsapp TEXT NOT NULL DEFAULT '',
    telegram_id TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL,
    status TEXT NOT NULL,
    invitation_code TEXT NOT NULL DEFAULT '',
    invited_by TEXT NOT NULL DEFAULT '',
    is_founder INTEGER NOT NULL DEFAULT 0,
    bonus_points INTEGER NOT NULL DEFAULT 0,
    settings TEXT NOT NULL DEFAULT '{}',
    join_date INTEGER NOT NULL,
    approved_date INTEGER,
    approved_by TEXT NOT NULL DEFAULT '',
    last_login INTEGER,
    login_count INTEGER NOT NULL DEFAULT 0,
    discipline_score INTEGER NOT NULL DEFAULT 0,
    avatar TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    pair TEXT NOT NULL,
    position TEXT NOT NULL,
    result TEXT NOT NULL,
    pips REAL NOT NULL,
    entry_price REAL,
    exit_price REAL,
    stop_loss REAL,
    take_profit REAL,
    lot_size REAL,
    notes TEXT NOT NULL DEFAULT '',
    emotional_state TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    screenshot TEXT NOT NULL DEFAULT '',
    trade_date INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS invitation_codes (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    created_by TEXT NOT NULL DEFAULT '',
    max_uses INTEGER NOT NULL,
    used_count INTEGER NOT NULL DEFAULT 0,
    expires_at INTEGER NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    role TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS leaderboard_entries (
    user_id TEXT PRIMARY KEY,
    user_name TEXT NOT NULL,
    whatsapp TEXT NOT NULL DEFAULT '',
    total_points INTEGER NOT NULL,
    weekly_points INTEGER NOT NULL,
    breakdown TEXT NOT NULL DEFAULT '{}',
    tier TEXT NOT NULL,
    badges TEXT NOT NULL DEFAULT '[]',
    win_rate REAL NOT NULL DEFAULT 0,
    rank INTEGER NOT NULL,
    previous_rank INTEGER,
    rank_trend TEXT NOT NULL,
    week TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rank_snapshots (
    id TEXT PRIMARY KEY,
    week TEXT NOT NULL,
    user_id TEXT NOT NULL,
    rank INTEGER NOT NULL,
    total_points INTEGER NOT NULL,
    weekly_points INTEGER NOT NULL,
    tier TEXT NOT NULL,
    recorded_at INTEGER NOT NULL,
    UNIQUE (week, user_id)
);

CREATE TABLE IF NOT EXISTS quiz_questions (
    id TEXT NOT NULL,
    module_id TEXT NOT NULL,
    type TEXT NOT NULL,
    question TEXT NOT NULL,
    options TEXT NOT NULL DEFAULT '[]',
    correct_answer INTEGER,
    points INTEGER NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0,
    category TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (module_id, id)
);

CREATE TABLE IF NOT EXISTS quiz_answers (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    module_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    answer TEXT NOT NULL,
    score INTEGER,
    is_correct INTEGER,
    feedback TEXT NOT NULL DEFAULT '',
    graded_by TEXT NOT NULL DEFAULT '',
    submitted_at INTEGER NOT NULL,
    graded_at INTEGER,
    UNIQUE (user_id, module_id, question_id)
);

CREATE TABLE IF NOT EXISTS modules (
    id TEXT PRIMARY KEY,
    level TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0,
    lessons TEXT NOT NULL DEFAULT '[]',
    prerequisites TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS lesson_progress (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    module_id TEXT NOT NULL,
    lesson_id TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    completed_at INTEGER,
    time_spent INTEGER NOT NULL DEFAULT 0,
    last_accessed_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (user_id, module_id, lesson_id)
);

CREATE TABLE IF NOT EXISTS discipline_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    action TEXT NOT NULL,
    points INTEGER NOT NULL,
    previous_score INTEGER NOT NULL,
    new_score INTEGER NOT NULL,
    trade_id TEXT NOT NULL DEFAULT '',
    reason TEXT NOT NULL DEFAULT '',
    timestamp INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_threads (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
    id TEXT PRIMARY KEY,
    thread_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    model TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (thread_id) REFERENCES chat_threads(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id TEXT PRIMARY KEY,
    action TEXT NOT NULL,
    performed_by TEXT NOT NULL,
    target_user TEXT NOT NULL DEFAULT '',
    timestamp INTEGER NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_users_status ON users(status);
CREATE INDEX IF NOT EXISTS idx_trades_user_date ON trades(user_id, trade_date);
CREATE INDEX IF NOT EXISTS idx_snapshots_user_week ON rank_snapshots(user_id, week);
CREATE INDEX IF NOT EXISTS idx_quiz_questions_module ON quiz_questions(module_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_quiz_answers_user ON quiz_answers(user_id);
CREATE INDEX IF NOT EXISTS idx_lesson_progress_user ON lesson_progress(user_id);
CREATE INDEX IF NOT EXISTS idx_discipline_logs_user ON discipline_logs(user_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_chat_threads_user ON chat_threads(user_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_chat_messages_thread ON chat_messages(thread_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
