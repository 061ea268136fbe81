// Package postgres provides the persistence adapters backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	db "github.com/karystudio/podpool/config/storage/postgresql"
	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

type workspaceRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewWorkspaceRepository creates a new postgres workspace repository
func NewWorkspaceRepository(db *db.DB, log *zap.Logger) port.WorkspaceRepository {
	return &workspaceRepository{
		db:  db,
		log: log,
	}
}

func (r *workspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	query, args, err := r.db.QueryBuilder.
		Select("id", "slug", "owner_id").
		From("workspaces").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ws domain.Workspace
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&ws.ID, &ws.Slug, &ws.OwnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "workspace"}
		}
		return nil, err
	}

	members, err := r.loadMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	ws.Members = members

	return &ws, nil
}

func (r *workspaceRepository) loadMembers(ctx context.Context, workspaceID string) ([]domain.Member, error) {
	query, args, err := r.db.QueryBuilder.
		Select("user_id", "role").
		From("workspace_members").
		Where("workspace_id = ?", workspaceID).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
