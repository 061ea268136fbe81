package postgres

import (
	"context"

	db "github.com/karystudio/podpool/config/storage/postgresql"
	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

type repositoryStore struct {
	db  *db.DB
	log *zap.Logger
}

// NewRepositoryStore creates a new postgres repository store
func NewRepositoryStore(db *db.DB, log *zap.Logger) port.RepositoryStore {
	return &repositoryStore{
		db:  db,
		log: log,
	}
}

func (r *repositoryStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Repository, error) {
	query, args, err := r.db.QueryBuilder.
		Select("id", "workspace_id", "repository_url", "branch").
		From("repositories").
		Where("workspace_id = ?", workspaceID).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*domain.Repository
	for rows.Next() {
		var repo domain.Repository
		if err := rows.Scan(&repo.ID, &repo.WorkspaceID, &repo.RepositoryURL, &repo.Branch); err != nil {
			return nil, err
		}
		repos = append(repos, &repo)
	}
	return repos, rows.Err()
}
