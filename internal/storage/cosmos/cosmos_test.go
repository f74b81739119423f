package cosmos

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, storage.ErrNotFound},
		{"conflict", http.StatusConflict, storage.ErrConflict},
		{"etag mismatch", http.StatusPreconditionFailed, storage.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(&azcore.ResponseError{StatusCode: tt.status}, "user u1")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		err := mapError(boom, "user u1")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, mapError(nil, "user u1"))
	})
}

func TestEtagOf(t *testing.T) {
	raw := []byte(`{"id":"1","code":"MPT-ABCD-2026","_etag":"\"0000d-etag\"","_ts":1700000000}`)
	assert.Equal(t, azcore.ETag(`"0000d-etag"`), etagOf(raw))
	assert.Equal(t, azcore.ETag(""), etagOf([]byte(`{"id":"1"}`)))
}

func TestCountIDs(t *testing.T) {
	raw := [][]byte{[]byte(`{"id":"a"}`), []byte(`{"id":"b"}`), []byte(`{}`)}
	assert.Equal(t, 2, countIDs(raw))
}

func TestLatestPerUser(t *testing.T) {
	snaps := []*models.RankSnapshot{
		{UserID: "u1", Week: "2026-W08", TotalPoints: 10},
		{UserID: "u1", Week: "2026-W10", TotalPoints: 30},
		{UserID: "u1", Week: "2026-W09", TotalPoints: 20},
		{UserID: "u2", Week: "2025-W52", TotalPoints: 5},
	}
	latest := latestPerUser(snaps)
	require.Len(t, latest, 2)
	assert.Equal(t, 30, latest["u1"].TotalPoints)
	assert.Equal(t, "2025-W52", latest["u2"].Week)
}

func TestNewRequiresLocation(t *testing.T) {
	_, err := New(Config{Database: "mpt-warrior"})
	assert.Error(t, err)

	_, err = New(Config{Endpoint: "https://example.documents.azure.com:443/"})
	assert.Error(t, err)
}
