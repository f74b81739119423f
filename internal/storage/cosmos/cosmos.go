// Package cosmos implements storage.Store on Azure Cosmos DB.
//
// Each model lives in its own container with the partition key documented in
// the models package. Containers must already exist; this package never
// provisions them. Queries that span partitions are kept to plain filters
// and any ordering or aggregation happens in Go, since the SDK serves
// cross-partition queries only when they need no query plan.
package cosmos

import (
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/mptwarrior/warrior/internal/storage"
)

// Container names.
const (
	ContainerUsers       = "users"
	ContainerTrades      = "trades"
	ContainerCodes       = "invitation-codes"
	ContainerLeaderboard = "user-leaderboard"
	ContainerHistory     = "leaderboard-history"
	ContainerQuestions   = "quiz-questions"
	ContainerAnswers     = "quiz-answers"
	ContainerModules     = "educational-modules"
	ContainerProgress    = "user-progress"
	ContainerDiscipline  = "discipline-logs"
	ContainerThreads     = "chat-threads"
	ContainerMessages    = "chat-messages"
	ContainerAudit       = "audit-logs"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Config selects how to reach the account. ConnectionString wins over
// Endpoint+Key; Endpoint alone authenticates with DefaultAzureCredential.
type Config struct {
	ConnectionString string
	Endpoint         string
	Key              string
	Database         string
}

// Store implements storage.Store using Cosmos DB containers.
type Store struct {
	client *azcosmos.Client

	users       *azcosmos.ContainerClient
	trades      *azcosmos.ContainerClient
	codes       *azcosmos.ContainerClient
	leaderboard *azcosmos.ContainerClient
	history     *azcosmos.ContainerClient
	questions   *azcosmos.ContainerClient
	answers     *azcosmos.ContainerClient
	modules     *azcosmos.ContainerClient
	progress    *azcosmos.ContainerClient
	discipline  *azcosmos.ContainerClient
	threads     *azcosmos.ContainerClient
	messages    *azcosmos.ContainerClient
	audit       *azcosmos.ContainerClient
}

// New connects to the account described by cfg and binds every container.
func New(cfg Config) (*Store, error) {
	if cfg.Database == "" {
		return nil, errors.New("cosmos database name is required")
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{client: client}
	bindings := []struct {
		name   string
		target **azcosmos.ContainerClient
	}{
		{ContainerUsers, &s.users},
		{ContainerTrades, &s.trades},
		{ContainerCodes, &s.codes},
		{ContainerLeaderboard, &s.leaderboard},
		{ContainerHistory, &s.history},
		{ContainerQuestions, &s.questions},
		{ContainerAnswers, &s.answers},
		{ContainerModules, &s.modules},
		{ContainerProgress, &s.progress},
		{ContainerDiscipline, &s.discipline},
		{ContainerThreads, &s.threads},
		{ContainerMessages, &s.messages},
		{ContainerAudit, &s.audit},
	}
	for _, b := range bindings {
		c, err := client.NewContainer(cfg.Database, b.name)
		if err != nil {
			return nil, fmt.Errorf("failed to bind container %s: %w", b.name, err)
		}
		*b.target = c
	}

	return s, nil
}

func newClient(cfg Config) (*azcosmos.Client, error) {
	switch {
	case cfg.ConnectionString != "":
		client, err := azcosmos.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cosmos client from connection string: %w", err)
		}
		return client, nil

	case cfg.Endpoint != "" && cfg.Key != "":
		cred, err := azcosmos.NewKeyCredential(cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to create cosmos key credential: %w", err)
		}
		client, err := azcosmos.NewClientWithKey(cfg.Endpoint, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cosmos client: %w", err)
		}
		return client, nil

	case cfg.Endpoint != "":
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load azure credentials: %w", err)
		}
		client, err := azcosmos.NewClient(cfg.Endpoint, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cosmos client: %w", err)
		}
		return client, nil
	}

	return nil, errors.New("cosmos endpoint or connection string is required")
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close() error {
	return nil
}
