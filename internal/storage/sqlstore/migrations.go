package sqlstore

import "context"

// schema sets up the database. It runs on startup and is safe to repeat.
// Decimal amounts are stored as TEXT to keep them exact on both drivers.
// Tables referenced by foreign keys must be created first.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    nickname TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    photo_url TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    account_group TEXT NOT NULL CHECK (account_group IN ('revenue', 'expense')),
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS postings (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    posting_date TEXT NOT NULL,
    value TEXT NOT NULL,
    account_group TEXT NOT NULL CHECK (account_group IN ('revenue', 'expense')),
    beneficiary TEXT NOT NULL DEFAULT '',
    reference_month TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS monthly_fees (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
    reference_month TEXT NOT NULL,
    amount TEXT NOT NULL,
    paid_on TEXT,
    posting_id TEXT REFERENCES postings(id),
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
    id TEXT PRIMARY KEY,
    game_date TEXT NOT NULL,
    game_time TEXT NOT NULL,
    location TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('scheduled', 'played', 'cancelled')),
    notes TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS confirmations (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
    status TEXT NOT NULL CHECK (status IN ('confirmed')),
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    display_name TEXT NOT NULL,
    nickname TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_members_nickname ON members(nickname);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE UNIQUE INDEX IF NOT EXISTS idx_confirmations_game_member ON confirmations(game_id, member_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_monthly_fees_member_month ON monthly_fees(member_id, reference_month);
CREATE INDEX IF NOT EXISTS idx_postings_date ON postings(posting_date);
CREATE INDEX IF NOT EXISTS idx_postings_account_id ON postings(account_id);
CREATE INDEX IF NOT EXISTS idx_monthly_fees_posting_id ON monthly_fees(posting_id);
CREATE INDEX IF NOT EXISTS idx_games_date ON games(game_date);
`

// Migrate executes the schema setup.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
