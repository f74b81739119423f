package cosmos

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/mptwarrior/warrior/internal/models"
)

// CreateTrade stores a trade in its owner's partition.
func (s *Store) CreateTrade(ctx context.Context, trade *models.Trade) error {
	return createItem(ctx, s.trades, trade.UserID, trade, "trade "+trade.ID)
}

// GetTrade point-reads a trade. Reading from the owner's partition is the
// ownership check.
func (s *Store) GetTrade(ctx context.Context, userID, tradeID string) (*models.Trade, error) {
	trade, _, err := readItem[models.Trade](ctx, s.trades, userID, tradeID, "trade "+tradeID)
	return trade, err
}

// ListTrades queries the owner's partition, newest trade date first.
func (s *Store) ListTrades(ctx context.Context, userID string, filter models.TradeFilter) ([]*models.Trade, error) {
	where := []string{"c.userId = @userId"}
	params := []azcosmos.QueryParameter{param("@userId", userID)}
	if filter.Pair != "" {
		where = append(where, "c.pair = @pair")
		params = append(params, param("@pair", strings.ToUpper(filter.Pair)))
	}
	if filter.Result != "" {
		where = append(where, "c.result = @result")
		params = append(params, param("@result", string(filter.Result)))
	}
	if !filter.Since.IsZero() {
		where = append(where, "c.tradeDate >= @since")
		params = append(params, param("@since", filter.Since.UTC()))
	}

	query := "SELECT * FROM c WHERE " + strings.Join(where, " AND ") + " ORDER BY c.tradeDate DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" OFFSET %d LIMIT %d", filter.Offset, filter.Limit)
	} else if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d LIMIT %d", filter.Offset, maxQueryLimit)
	}

	return queryItems[models.Trade](ctx, s.trades, azcosmos.NewPartitionKeyString(userID), query, params...)
}

// maxQueryLimit bounds OFFSET queries that have no explicit limit.
const maxQueryLimit = 100000

// UpdateTrade replaces a trade in its owner's partition.
func (s *Store) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	return replaceItem(ctx, s.trades, trade.UserID, trade.ID, trade, "", "trade "+trade.ID)
}

// DeleteTrade removes a trade from its owner's partition.
func (s *Store) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	return deleteItem(ctx, s.trades, userID, tradeID, "trade "+tradeID)
}

// CountTrades counts trades across every partition. COUNT needs a query
// plan across partitions, so ids are fetched and counted locally.
func (s *Store) CountTrades(ctx context.Context) (int, error) {
	raw, err := queryRaw(ctx, s.trades, allPartitions, "SELECT c.id FROM c")
	if err != nil {
		return 0, err
	}
	return countIDs(raw), nil
}
