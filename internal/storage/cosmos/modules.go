package cosmos

import (
	"context"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/mptwarrior/warrior/internal/models"
)

// UpsertModule writes a module into its own partition.
func (s *Store) UpsertModule(ctx context.Context, m *models.Module) error {
	return upsertItem(ctx, s.modules, m.ID, m, "module "+m.ID)
}

// GetModule point-reads a module.
func (s *Store) GetModule(ctx context.Context, moduleID string) (*models.Module, error) {
	m, _, err := readItem[models.Module](ctx, s.modules, moduleID, moduleID, "module "+moduleID)
	return m, err
}

// ListModules reads every module and orders them in Go.
func (s *Store) ListModules(ctx context.Context) ([]*models.Module, error) {
	modules, err := queryItems[models.Module](ctx, s.modules, allPartitions, "SELECT * FROM c")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Order != modules[j].Order {
			return modules[i].Order < modules[j].Order
		}
		return modules[i].ID < modules[j].ID
	})
	return modules, nil
}

// UpsertLessonProgress writes under models.ProgressID in the user's partition.
func (s *Store) UpsertLessonProgress(ctx context.Context, p *models.LessonProgress) error {
	p.ID = models.ProgressID(p.UserID, p.ModuleID, p.LessonID)
	return upsertItem(ctx, s.progress, p.UserID, p, "progress "+p.ID)
}

// GetLessonProgress point-reads the user's progress on one lesson.
func (s *Store) GetLessonProgress(ctx context.Context, userID, moduleID, lessonID string) (*models.LessonProgress, error) {
	id := models.ProgressID(userID, moduleID, lessonID)
	p, _, err := readItem[models.LessonProgress](ctx, s.progress, userID, id, "progress "+id)
	return p, err
}

// ListLessonProgress reads the user's partition.
func (s *Store) ListLessonProgress(ctx context.Context, userID string) ([]*models.LessonProgress, error) {
	return queryItems[models.LessonProgress](ctx, s.progress, azcosmos.NewPartitionKeyString(userID),
		"SELECT * FROM c WHERE c.userId = @userId", param("@userId", userID))
}
