package store

import (
	"context"
	"fmt"
	"time"

	"rtoassist/internal/utils"
	"rtoassist/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestTableName = "rtoassist.rto_assistance_requests"

var requestColumns = utils.StructTagValues(types.RtoAssistanceRequest{})

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// CreateRequest inserts req and assigns its ID.
func (r *RequestRepository) CreateRequest(ctx context.Context, req *types.RtoAssistanceRequest) error {

	req.ID = utils.NanoID()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.UpdatedAt = req.CreatedAt

	query, args, err := psql().Insert(requestTableName).SetMap(utils.StructToMap(req)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert request query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create rto assistance request")
}

func (r *RequestRepository) Request(ctx context.Context, id string) (*types.RtoAssistanceRequest, error) {

	query, args, err := psql().Select(requestColumns...).From(requestTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request query: %w", err)
	}

	var req = new(types.RtoAssistanceRequest)
	err = pgxscan.Get(ctx, r.pool, req, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch request %s: %w", id, err)
	}

	return req, nil
}

// Requests lists the requests of a scope, newest first.
func (r *RequestRepository) Requests(ctx context.Context, scope types.RequestScope) ([]*types.RtoAssistanceRequest, error) {

	builder := psql().Select(requestColumns...).From(requestTableName).
		OrderBy("created_at DESC")

	if status, ok := scope.Status(); ok {
		builder = builder.Where(sq.Eq{"status": status})
	} else if scope != types.RequestScopeAll {
		return nil, fmt.Errorf("unknown request scope %q", scope)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate requests query: %w", err)
	}

	var requests = make([]*types.RtoAssistanceRequest, 0)
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s requests: %w", scope, err)
	}

	return requests, nil
}

// UpdateRequestStatus reports false when no request has the given ID.
func (r *RequestRepository) UpdateRequestStatus(ctx context.Context, id string, status types.RequestStatus) (bool, error) {

	query, args, err := psql().Update(requestTableName).
		SetMap(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate update status query for request %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update status of request %s: %w", id, err)
	}

	return tag.RowsAffected() == 1, nil
}
