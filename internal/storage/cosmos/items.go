package cosmos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/tidwall/gjson"

	"github.com/mptwarrior/warrior/internal/storage"
)

// allPartitions scopes a query to the whole container.
var allPartitions = azcosmos.NewPartitionKey()

// mapError translates Cosmos status codes into storage sentinels.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
		case http.StatusConflict, http.StatusPreconditionFailed:
			return fmt.Errorf("%s: %w", what, storage.ErrConflict)
		}
	}
	return fmt.Errorf("failed to access %s: %w", what, err)
}

func param(name string, value any) azcosmos.QueryParameter {
	return azcosmos.QueryParameter{Name: name, Value: value}
}

func readItem[T any](ctx context.Context, c *azcosmos.ContainerClient, pk, id, what string) (*T, azcore.ETag, error) {
	resp, err := c.ReadItem(ctx, azcosmos.NewPartitionKeyString(pk), id, nil)
	if err != nil {
		return nil, "", mapError(err, what)
	}
	var v T
	if err := json.Unmarshal(resp.Value, &v); err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return &v, resp.ETag, nil
}

func createItem(ctx context.Context, c *azcosmos.ContainerClient, pk string, v any, what string) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", what, err)
	}
	_, err = c.CreateItem(ctx, azcosmos.NewPartitionKeyString(pk), body, nil)
	return mapError(err, what)
}

func upsertItem(ctx context.Context, c *azcosmos.ContainerClient, pk string, v any, what string) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", what, err)
	}
	_, err = c.UpsertItem(ctx, azcosmos.NewPartitionKeyString(pk), body, nil)
	return mapError(err, what)
}

// replaceItem overwrites an existing document. A non-empty etag makes the
// write conditional; losing the race yields storage.ErrConflict.
func replaceItem(ctx context.Context, c *azcosmos.ContainerClient, pk, id string, v any, etag azcore.ETag, what string) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", what, err)
	}
	var opts *azcosmos.ItemOptions
	if etag != "" {
		opts = &azcosmos.ItemOptions{IfMatchEtag: &etag}
	}
	_, err = c.ReplaceItem(ctx, azcosmos.NewPartitionKeyString(pk), id, body, opts)
	return mapError(err, what)
}

func deleteItem(ctx context.Context, c *azcosmos.ContainerClient, pk, id, what string) error {
	_, err := c.DeleteItem(ctx, azcosmos.NewPartitionKeyString(pk), id, nil)
	return mapError(err, what)
}

// queryRaw drains every page of a query and returns the raw documents.
func queryRaw(ctx context.Context, c *azcosmos.ContainerClient, pk azcosmos.PartitionKey, query string, params ...azcosmos.QueryParameter) ([][]byte, error) {
	pager := c.NewQueryItemsPager(query, pk, &azcosmos.QueryOptions{QueryParameters: params})

	var items [][]byte
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, mapError(err, "query")
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func queryItems[T any](ctx context.Context, c *azcosmos.ContainerClient, pk azcosmos.PartitionKey, query string, params ...azcosmos.QueryParameter) ([]*T, error) {
	raw, err := queryRaw(ctx, c, pk, query, params...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("failed to decode query result: %w", err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// etagOf pulls the system _etag property out of a raw query result.
func etagOf(raw []byte) azcore.ETag {
	return azcore.ETag(gjson.GetBytes(raw, "_etag").String())
}

// countIDs counts documents in an id projection without decoding them.
func countIDs(raw [][]byte) int {
	n := 0
	for _, item := range raw {
		if gjson.GetBytes(item, "id").Exists() {
			n++
		}
	}
	return n
}
