package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

const pushColumns = `id, owner, state, name, stage, ltime, created_at, modified_at, created_by, modified_by, version`

// PushRepository persists pushes. Multi-entity push transitions run in
// a single transaction so that no operation partially applies.
type PushRepository struct {
	db *sqlx.DB
}

// NewPushRepository constructs the repository.
func NewPushRepository(db *sqlx.DB) *PushRepository {
	return &PushRepository{db: db}
}

// Create inserts a new push row.
func (r *PushRepository) Create(ctx context.Context, push *models.Push) error {
	if push.ID == "" {
		push.ID = uuid.NewString()
	}
	if push.State == "" {
		push.State = models.PushDefaultState
	}
	now := time.Now().UTC()
	if push.CreatedAt.IsZero() {
		push.CreatedAt = now
	}
	push.ModifiedAt = now
	push.Version = 1

	const query = `INSERT INTO pushes
	(id, owner, state, name, stage, ltime, created_at, modified_at, created_by, modified_by, version)
	VALUES (:id, :owner, :state, :name, :stage, :ltime, :created_at, :modified_at, :created_by, :modified_by, :version)`
	if _, err := r.db.NamedExecContext(ctx, query, push); err != nil {
		return fmt.Errorf("create push: %w", err)
	}
	return nil
}

// GetByID fetches a push by identifier.
func (r *PushRepository) GetByID(ctx context.Context, id string) (*models.Push, error) {
	query := fmt.Sprintf(`SELECT %s FROM pushes WHERE id = $1`, pushColumns)
	var push models.Push
	if err := r.db.GetContext(ctx, &push, query, id); err != nil {
		return nil, err
	}
	return &push, nil
}

// Current returns the oldest-created push still accepting or on stage,
// or sql.ErrNoRows when there is none.
func (r *PushRepository) Current(ctx context.Context) (*models.Push, error) {
	query := fmt.Sprintf(`SELECT %s FROM pushes WHERE state IN ($1, $2)
	ORDER BY created_at ASC LIMIT 1`, pushColumns)
	var push models.Push
	if err := r.db.GetContext(ctx, &push, query, models.PushStateAccepting, models.PushStateOnStage); err != nil {
		return nil, err
	}
	return &push, nil
}

// Open returns the most recently created pushes that are accepting,
// on stage, or live.
func (r *PushRepository) Open(ctx context.Context, limit int) ([]models.Push, error) {
	if limit <= 0 {
		limit = 25
	}
	query := fmt.Sprintf(`SELECT %s FROM pushes WHERE state IN ($1, $2, $3)
	ORDER BY created_at DESC LIMIT %d`, pushColumns, limit)
	var pushes []models.Push
	err := r.db.SelectContext(ctx, &pushes, query,
		models.PushStateAccepting, models.PushStateOnStage, models.PushStateLive)
	if err != nil {
		return nil, fmt.Errorf("list open pushes: %w", err)
	}
	return pushes, nil
}

// ForOwner returns a user's most recently touched open or live pushes.
func (r *PushRepository) ForOwner(ctx context.Context, owner string, limit int) ([]models.Push, error) {
	if limit <= 0 {
		limit = 25
	}
	query := fmt.Sprintf(`SELECT %s FROM pushes WHERE owner = $1 AND state IN ($2, $3, $4)
	ORDER BY modified_at DESC LIMIT %d`, pushColumns, limit)
	var pushes []models.Push
	err := r.db.SelectContext(ctx, &pushes, query, owner,
		models.PushStateAccepting, models.PushStateOnStage, models.PushStateLive)
	if err != nil {
		return nil, fmt.Errorf("list pushes for owner: %w", err)
	}
	return pushes, nil
}

// LiveBetween returns live pushes whose live timestamp falls in
// [from, to), ordered by live time ascending.
func (r *PushRepository) LiveBetween(ctx context.Context, from, to time.Time) ([]models.Push, error) {
	query := fmt.Sprintf(`SELECT %s FROM pushes WHERE state = $1 AND ltime >= $2 AND ltime < $3
	ORDER BY ltime ASC`, pushColumns)
	var pushes []models.Push
	if err := r.db.SelectContext(ctx, &pushes, query, models.PushStateLive, from, to); err != nil {
		return nil, fmt.Errorf("list live pushes: %w", err)
	}
	return pushes, nil
}

// Update persists a push guarded by its version. It returns
// sql.ErrNoRows when the row changed underneath the caller.
func (r *PushRepository) Update(ctx context.Context, push *models.Push) error {
	expected := push.Version
	push.ModifiedAt = time.Now().UTC()
	push.Version = expected + 1

	result, err := r.db.NamedExecContext(ctx, pushUpdateQuery, updatePushArgs(push, expected))
	if err != nil {
		push.Version = expected
		return fmt.Errorf("update push: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		push.Version = expected
		return fmt.Errorf("check push update rows: %w", err)
	}
	if rows == 0 {
		push.Version = expected
		return sql.ErrNoRows
	}
	return nil
}

// UpdateWithRequests persists a push transition together with its
// member requests in one transaction. Either everything commits or
// nothing does; a version mismatch on any row aborts with
// sql.ErrNoRows.
func (r *PushRepository) UpdateWithRequests(ctx context.Context, push *models.Push, requests []*models.Request) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin push transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	for _, request := range requests {
		expected := request.Version
		request.ModifiedAt = now
		request.Version = expected + 1
		result, execErr := tx.NamedExecContext(ctx, requestUpdateQuery, updateRequestArgs(request, expected))
		if execErr != nil {
			request.Version = expected
			return fmt.Errorf("update member request: %w", execErr)
		}
		rows, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			request.Version = expected
			return fmt.Errorf("check member request rows: %w", rowsErr)
		}
		if rows == 0 {
			request.Version = expected
			return sql.ErrNoRows
		}
	}

	expected := push.Version
	push.ModifiedAt = now
	push.Version = expected + 1
	result, execErr := tx.NamedExecContext(ctx, pushUpdateQuery, updatePushArgs(push, expected))
	if execErr != nil {
		push.Version = expected
		return fmt.Errorf("update push: %w", execErr)
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		push.Version = expected
		return fmt.Errorf("check push update rows: %w", rowsErr)
	}
	if rows == 0 {
		push.Version = expected
		return sql.ErrNoRows
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit push transaction: %w", err)
	}
	return nil
}

const pushUpdateQuery = `UPDATE pushes SET
	owner = :owner, state = :state, name = :name, stage = :stage, ltime = :ltime,
	modified_at = :modified_at, modified_by = :modified_by, version = :version
	WHERE id = :id AND version = :expected_version`

func updatePushArgs(push *models.Push, expectedVersion int) map[string]interface{} {
	return map[string]interface{}{
		"id":               push.ID,
		"owner":            push.Owner,
		"state":            push.State,
		"name":             push.Name,
		"stage":            push.Stage,
		"ltime":            push.LTime,
		"modified_at":      push.ModifiedAt,
		"modified_by":      push.ModifiedBy,
		"version":          push.Version,
		"expected_version": expectedVersion,
	}
}
