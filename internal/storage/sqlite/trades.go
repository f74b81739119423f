package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

const tradeColumns = `id, user_id, pair, position, result, pips, entry_price, exit_price, stop_loss,
	take_profit, lot_size, notes, emotional_state, tags, screenshot, trade_date, created_at, updated_at`

// CreateTrade persists a new trade.
func (s *SQLiteStore) CreateTrade(ctx context.Context, trade *models.Trade) error {
	tags, err := encodeJSON(trade.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trades (`+tradeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID,
		trade.UserID,
		trade.Pair,
		string(trade.Position),
		string(trade.Result),
		trade.Pips,
		nullFloat(trade.EntryPrice),
		nullFloat(trade.ExitPrice),
		nullFloat(trade.StopLoss),
		nullFloat(trade.TakeProfit),
		nullFloat(trade.LotSize),
		trade.Notes,
		trade.EmotionalState,
		tags,
		trade.Screenshot,
		toUnix(trade.TradeDate),
		toUnix(trade.CreatedAt),
		toUnix(trade.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("trade %s: %w", trade.ID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// GetTrade retrieves one of the user's trades.
func (s *SQLiteStore) GetTrade(ctx context.Context, userID, tradeID string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE id = ? AND user_id = ?`,
		tradeID, userID,
	)
	trade, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trade %s: %w", tradeID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// ListTrades returns the user's trades, newest trade date first.
func (s *SQLiteStore) ListTrades(ctx context.Context, userID string, filter models.TradeFilter) ([]*models.Trade, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Pair != "" {
		where = append(where, "pair = ?")
		args = append(args, strings.ToUpper(filter.Pair))
	}
	if filter.Result != "" {
		where = append(where, "result = ?")
		args = append(args, string(filter.Result))
	}
	if !filter.Since.IsZero() {
		where = append(where, "trade_date >= ?")
		args = append(args, toUnix(filter.Since))
	}

	query := `SELECT ` + tradeColumns + ` FROM trades WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY trade_date DESC, created_at DESC`
	switch {
	case filter.Limit > 0:
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	case filter.Offset > 0:
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}
	return trades, nil
}

// UpdateTrade overwrites the trade's mutable fields. Owner and ID never change.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	tags, err := encodeJSON(trade.Tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET
			pair = ?, position = ?, result = ?, pips = ?, entry_price = ?, exit_price = ?,
			stop_loss = ?, take_profit = ?, lot_size = ?, notes = ?, emotional_state = ?,
			tags = ?, screenshot = ?, trade_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		trade.Pair, string(trade.Position), string(trade.Result), trade.Pips,
		nullFloat(trade.EntryPrice), nullFloat(trade.ExitPrice),
		nullFloat(trade.StopLoss), nullFloat(trade.TakeProfit), nullFloat(trade.LotSize),
		trade.Notes, trade.EmotionalState, tags, trade.Screenshot,
		toUnix(trade.TradeDate), toUnix(trade.UpdatedAt),
		trade.ID, trade.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	return expectOneRow(res, "trade", trade.ID)
}

// DeleteTrade removes one of the user's trades.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ? AND user_id = ?", tradeID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	return expectOneRow(res, "trade", tradeID)
}

// CountTrades counts every trade in the journal.
func (s *SQLiteStore) CountTrades(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trades").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return n, nil
}

func scanTrade(row scanner) (*models.Trade, error) {
	var (
		trade                         models.Trade
		position, result, tags        string
		entry, exit, stop, take, lot  sql.NullFloat64
		tradeDate, createdAt, updated int64
	)
	err := row.Scan(
		&trade.ID,
		&trade.UserID,
		&trade.Pair,
		&position,
		&result,
		&trade.Pips,
		&entry,
		&exit,
		&stop,
		&take,
		&lot,
		&trade.Notes,
		&trade.EmotionalState,
		&tags,
		&trade.Screenshot,
		&tradeDate,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	trade.Position = models.Position(position)
	trade.Result = models.TradeResult(result)
	trade.EntryPrice = floatPtr(entry)
	trade.ExitPrice = floatPtr(exit)
	trade.StopLoss = floatPtr(stop)
	trade.TakeProfit = floatPtr(take)
	trade.LotSize = floatPtr(lot)
	if err := decodeJSON(tags, &trade.Tags); err != nil {
		return nil, err
	}
	trade.TradeDate = fromUnix(tradeDate)
	trade.CreatedAt = fromUnix(createdAt)
	trade.UpdatedAt = fromUnix(updated)
	return &trade, nil
}
