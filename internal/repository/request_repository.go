package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

const requestColumns = `id, owner, subject, branch, message, state, reject_reason, target_date,
       push_plans, js_serials, img_serials, urgent, tests_pass, tests_pass_url, push_id,
       created_at, modified_at, created_by, modified_by, version`

// RequestRepository persists deploy requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request row.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.State == "" {
		request.State = models.RequestDefaultState
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.ModifiedAt = now
	request.Version = 1

	const query = `INSERT INTO requests
	(id, owner, subject, branch, message, state, reject_reason, target_date,
	 push_plans, js_serials, img_serials, urgent, tests_pass, tests_pass_url, push_id,
	 created_at, modified_at, created_by, modified_by, version)
	VALUES (:id, :owner, :subject, :branch, :message, :state, :reject_reason, :target_date,
	 :push_plans, :js_serials, :img_serials, :urgent, :tests_pass, :tests_pass_url, :push_id,
	 :created_at, :modified_at, :created_by, :modified_by, :version)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1`, requestColumns)
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Current returns every request awaiting a push, urgent first, then
// soonest due, passing-tests first, oldest modification first.
func (r *RequestRepository) Current(ctx context.Context) ([]models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE state = $1
	ORDER BY urgent DESC, target_date ASC, tests_pass DESC, modified_at ASC`, requestColumns)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, models.RequestStateRequested); err != nil {
		return nil, fmt.Errorf("list current requests: %w", err)
	}
	return requests, nil
}

// ByPush returns the requests belonging to a push, urgent first,
// oldest modification first.
func (r *RequestRepository) ByPush(ctx context.Context, pushID string) ([]models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE push_id = $1
	ORDER BY urgent DESC, modified_at ASC`, requestColumns)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, pushID); err != nil {
		return nil, fmt.Errorf("list push requests: %w", err)
	}
	return requests, nil
}

// ForOwner returns a user's most recently touched requests in every
// state except abandoned.
func (r *RequestRepository) ForOwner(ctx context.Context, owner string, limit int) ([]models.Request, error) {
	if limit <= 0 {
		limit = 25
	}
	states := make([]string, 0, len(models.AllRequestStates)-1)
	args := []interface{}{owner}
	for _, state := range models.AllRequestStates {
		if state == models.RequestStateAbandoned {
			continue
		}
		args = append(args, state)
		states = append(states, fmt.Sprintf("$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE owner = $1 AND state IN (%s)
	ORDER BY modified_at DESC LIMIT %d`, requestColumns, strings.Join(states, ","), limit)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list requests for owner: %w", err)
	}
	return requests, nil
}

// Update persists a request guarded by its version. It returns
// sql.ErrNoRows when the row changed underneath the caller.
func (r *RequestRepository) Update(ctx context.Context, request *models.Request) error {
	expected := request.Version
	request.ModifiedAt = time.Now().UTC()
	request.Version = expected + 1

	result, err := r.db.NamedExecContext(ctx, requestUpdateQuery, updateRequestArgs(request, expected))
	if err != nil {
		request.Version = expected
		return fmt.Errorf("update request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		request.Version = expected
		return fmt.Errorf("check request update rows: %w", err)
	}
	if rows == 0 {
		request.Version = expected
		return sql.ErrNoRows
	}
	return nil
}

const requestUpdateQuery = `UPDATE requests SET
	owner = :owner, subject = :subject, branch = :branch, message = :message,
	state = :state, reject_reason = :reject_reason, target_date = :target_date,
	push_plans = :push_plans, js_serials = :js_serials, img_serials = :img_serials,
	urgent = :urgent, tests_pass = :tests_pass, tests_pass_url = :tests_pass_url,
	push_id = :push_id, modified_at = :modified_at, modified_by = :modified_by,
	version = :version
	WHERE id = :id AND version = :expected_version`

func updateRequestArgs(request *models.Request, expectedVersion int) map[string]interface{} {
	return map[string]interface{}{
		"id":               request.ID,
		"owner":            request.Owner,
		"subject":          request.Subject,
		"branch":           request.Branch,
		"message":          request.Message,
		"state":            request.State,
		"reject_reason":    request.RejectReason,
		"target_date":      request.TargetDate,
		"push_plans":       request.PushPlans,
		"js_serials":       request.JSSerials,
		"img_serials":      request.ImgSerials,
		"urgent":           request.Urgent,
		"tests_pass":       request.TestsPass,
		"tests_pass_url":   request.TestsPassURL,
		"push_id":          request.PushID,
		"modified_at":      request.ModifiedAt,
		"modified_by":      request.ModifiedBy,
		"version":          request.Version,
		"expected_version": expectedVersion,
	}
}
