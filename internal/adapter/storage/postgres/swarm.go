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

type swarmRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewSwarmRepository creates a new postgres swarm repository
func NewSwarmRepository(db *db.DB, log *zap.Logger) port.SwarmRepository {
	return &swarmRepository{
		db:  db,
		log: log,
	}
}

func (r *swarmRepository) GetByWorkspaceID(ctx context.Context, workspaceID string) (*domain.Swarm, error) {
	query, args, err := r.db.QueryBuilder.
		Select("id", "workspace_id", "pool_name", "pool_api_key", "swarm_url", "status").
		From("swarms").
		Where("workspace_id = ?", workspaceID).
		ToSql()
	if err != nil {
		return nil, err
	}

	// pool_name / pool_api_key / swarm_url stay nullable until onboarding
	// finishes, so scan through pointers.
	var (
		swarm      domain.Swarm
		poolName   *string
		poolAPIKey *string
		swarmURL   *string
	)
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&swarm.ID, &swarm.WorkspaceID, &poolName, &poolAPIKey, &swarmURL, &swarm.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "swarm"}
		}
		return nil, err
	}

	if poolName != nil {
		swarm.PoolName = *poolName
	}
	if poolAPIKey != nil {
		swarm.PoolAPIKey = *poolAPIKey
	}
	if swarmURL != nil {
		swarm.SwarmURL = *swarmURL
	}

	return &swarm, nil
}
