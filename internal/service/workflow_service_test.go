package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/internal/dto"
	"github.com/pushmasterhq/pushmaster-api/internal/models"
	"github.com/pushmasterhq/pushmaster-api/pkg/config"
	appErrors "github.com/pushmasterhq/pushmaster-api/pkg/errors"
)

// memCacheRepo is an in-memory CacheRepository used across service tests.
type memCacheRepo struct {
	data map[string][]byte
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{data: map[string][]byte{}}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memCacheRepo) has(key string) bool {
	_, ok := m.data[key]
	return ok
}

type stubRequestStore struct {
	byID      map[string]*models.Request
	seq       int
	listCalls int
	updateErr error
}

func newStubRequestStore() *stubRequestStore {
	return &stubRequestStore{byID: map[string]*models.Request{}}
}

func (s *stubRequestStore) Create(ctx context.Context, request *models.Request) error {
	if request.ID == "" {
		s.seq++
		request.ID = fmt.Sprintf("req-%d", s.seq)
	}
	if request.State == "" {
		request.State = models.RequestDefaultState
	}
	now := time.Now().UTC()
	request.CreatedAt = now
	request.ModifiedAt = now
	request.Version = 1
	clone := *request
	s.byID[request.ID] = &clone
	return nil
}

func (s *stubRequestStore) GetByID(ctx context.Context, id string) (*models.Request, error) {
	request, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *request
	return &clone, nil
}

func (s *stubRequestStore) Current(ctx context.Context) ([]models.Request, error) {
	s.listCalls++
	var out []models.Request
	for _, request := range s.byID {
		if request.State == models.RequestStateRequested {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (s *stubRequestStore) ByPush(ctx context.Context, pushID string) ([]models.Request, error) {
	var out []models.Request
	for _, request := range s.byID {
		if request.HasPush() && *request.PushID == pushID {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (s *stubRequestStore) ForOwner(ctx context.Context, owner string, limit int) ([]models.Request, error) {
	var out []models.Request
	for _, request := range s.byID {
		if request.Owner == owner && request.State != models.RequestStateAbandoned {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (s *stubRequestStore) Update(ctx context.Context, request *models.Request) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.byID[request.ID]; !ok {
		return sql.ErrNoRows
	}
	request.ModifiedAt = time.Now().UTC()
	request.Version++
	clone := *request
	s.byID[request.ID] = &clone
	return nil
}

type stubPushStore struct {
	byID     map[string]*models.Push
	requests *stubRequestStore
	seq      int
}

func newStubPushStore(requests *stubRequestStore) *stubPushStore {
	return &stubPushStore{byID: map[string]*models.Push{}, requests: requests}
}

func (s *stubPushStore) Create(ctx context.Context, push *models.Push) error {
	if push.ID == "" {
		s.seq++
		push.ID = fmt.Sprintf("push-%d", s.seq)
	}
	if push.State == "" {
		push.State = models.PushDefaultState
	}
	now := time.Now().UTC()
	push.CreatedAt = now
	push.ModifiedAt = now
	push.Version = 1
	clone := *push
	s.byID[push.ID] = &clone
	return nil
}

func (s *stubPushStore) GetByID(ctx context.Context, id string) (*models.Push, error) {
	push, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *push
	return &clone, nil
}

func (s *stubPushStore) Current(ctx context.Context) (*models.Push, error) {
	var current *models.Push
	for _, push := range s.byID {
		if !push.StateIn(models.PushStateAccepting, models.PushStateOnStage) {
			continue
		}
		if current == nil || push.CreatedAt.Before(current.CreatedAt) {
			current = push
		}
	}
	if current == nil {
		return nil, sql.ErrNoRows
	}
	clone := *current
	return &clone, nil
}

func (s *stubPushStore) Open(ctx context.Context, limit int) ([]models.Push, error) {
	var out []models.Push
	for _, push := range s.byID {
		if push.StateIn(models.OpenPushStates...) {
			out = append(out, *push)
		}
	}
	return out, nil
}

func (s *stubPushStore) ForOwner(ctx context.Context, owner string, limit int) ([]models.Push, error) {
	var out []models.Push
	for _, push := range s.byID {
		if push.Owner == owner && push.StateIn(models.OpenPushStates...) {
			out = append(out, *push)
		}
	}
	return out, nil
}

func (s *stubPushStore) LiveBetween(ctx context.Context, from, to time.Time) ([]models.Push, error) {
	var out []models.Push
	for _, push := range s.byID {
		if push.State != models.PushStateLive || push.LTime == nil {
			continue
		}
		if !push.LTime.Before(from) && push.LTime.Before(to) {
			out = append(out, *push)
		}
	}
	return out, nil
}

func (s *stubPushStore) Update(ctx context.Context, push *models.Push) error {
	if _, ok := s.byID[push.ID]; !ok {
		return sql.ErrNoRows
	}
	push.ModifiedAt = time.Now().UTC()
	push.Version++
	clone := *push
	s.byID[push.ID] = &clone
	return nil
}

func (s *stubPushStore) UpdateWithRequests(ctx context.Context, push *models.Push, requests []*models.Request) error {
	for _, request := range requests {
		if err := s.requests.Update(ctx, request); err != nil {
			return err
		}
	}
	return s.Update(ctx, push)
}

type sentNotice struct {
	kind    string
	to      string
	content string
}

type recordingNotifier struct {
	sent []sentNotice
}

func (n *recordingNotifier) SendMail(to []string, subject, body, replyTo string) {
	n.sent = append(n.sent, sentNotice{kind: "mail", to: strings.Join(to, ","), content: subject + "|" + body})
}

func (n *recordingNotifier) SendIM(to, template string, params map[string]string) {
	n.sent = append(n.sent, sentNotice{kind: "im", to: to, content: RenderIM(template, params)})
}

func (n *recordingNotifier) ims() []sentNotice {
	var out []sentNotice
	for _, notice := range n.sent {
		if notice.kind == "im" {
			out = append(out, notice)
		}
	}
	return out
}

type workflowEnv struct {
	requests *stubRequestStore
	pushes   *stubPushStore
	cache    *memCacheRepo
	notifier *recordingNotifier
	query    *QueryService
	wf       *WorkflowService
}

func newWorkflowEnv(t *testing.T) *workflowEnv {
	t.Helper()
	requests := newStubRequestStore()
	pushes := newStubPushStore(requests)
	cacheRepo := newMemCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Hour, zap.NewNop(), true)
	query := NewQueryService(requests, pushes, cacheSvc, nil, time.Hour, zap.NewNop())
	notifier := &recordingNotifier{}

	cfg := &config.Config{
		Mail: config.MailConfig{
			Domain:      "@example.com",
			Sender:      "pushmaster@example.com",
			To:          "eng@example.com",
			RequestList: "push-requests@example.com",
		},
		Site:   config.SiteConfig{BaseURL: "http://pushmaster.test"},
		Pushes: config.PushesConfig{Stages: []string{"stagea", "stagex"}},
	}
	wf := NewWorkflowService(requests, pushes, query, notifier, cfg, zap.NewNop())
	return &workflowEnv{requests: requests, pushes: pushes, cache: cacheRepo, notifier: notifier, query: query, wf: wf}
}

var (
	dev = models.Identity{Email: "dev@example.com", Name: "Dev One"}
	pm  = models.Identity{Email: "pm@example.com", Name: "Push Master"}
)

func TestWorkflowFullLifecycle(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature", TestsPass: true})
	require.NoError(t, err)
	require.Equal(t, models.RequestStateRequested, request.State)

	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{Name: "Monday push"})
	require.NoError(t, err)
	require.Equal(t, models.PushStateAccepting, push.State)
	require.Equal(t, "stagea", push.Stage)

	request, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)
	require.Equal(t, models.RequestStateAccepted, request.State)
	require.Equal(t, push.ID, *request.PushID)

	request, err = env.wf.SetCheckedIn(ctx, dev, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateCheckedIn, request.State)

	push, err = env.wf.SendToStage(ctx, pm, push.ID, dto.SendToStagePayload{Stage: "stagex"})
	require.NoError(t, err)
	require.Equal(t, models.PushStateOnStage, push.State)
	require.Equal(t, "stagex", push.Stage)

	staged, err := env.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateOnStage, staged.State)

	request, err = env.wf.SetTested(ctx, dev, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateTested, request.State)

	push, err = env.wf.SendToLive(ctx, pm, push.ID)
	require.NoError(t, err)
	require.Equal(t, models.PushStateLive, push.State)
	require.NotNil(t, push.LTime)

	live, err := env.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateLive, live.State)

	ims := env.notifier.ims()
	require.Len(t, ims, 4)
	require.Contains(t, ims[0].content, "accepted your request")
	require.Contains(t, ims[1].content, "checked into")
	require.Contains(t, ims[2].content, "Please verify your changes on stagex")
	require.Contains(t, ims[3].content, "All changes for the push are verified on stage")
	require.Equal(t, pm.Email, ims[3].to)
}

func TestWorkflowSendToStageWithoutCheckins(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)

	before := len(env.notifier.sent)
	push, err = env.wf.SendToStage(ctx, pm, push.ID, dto.SendToStagePayload{Stage: "stagea"})
	require.NoError(t, err)
	require.Equal(t, models.PushStateAccepting, push.State, "nothing checked in leaves the push untouched")
	require.Len(t, env.notifier.sent, before, "a no-op stage sends nothing")
}

func TestWorkflowSendToLiveRequiresVerification(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)
	_, err = env.wf.SetCheckedIn(ctx, dev, request.ID)
	require.NoError(t, err)
	_, err = env.wf.SendToStage(ctx, pm, push.ID, dto.SendToStagePayload{Stage: "stagea"})
	require.NoError(t, err)

	_, err = env.wf.SendToLive(ctx, pm, push.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	push, err = env.wf.ForceLive(ctx, pm, push.ID)
	require.NoError(t, err)
	require.Equal(t, models.PushStateLive, push.State)
}

func TestWorkflowAbandonPushRestoresRequests(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)
	_, err = env.wf.SetCheckedIn(ctx, dev, request.ID)
	require.NoError(t, err)

	push, err = env.wf.AbandonPush(ctx, pm, push.ID)
	require.NoError(t, err)
	require.Equal(t, models.PushStateAbandoned, push.State)

	restored, err := env.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateRequested, restored.State)
	require.False(t, restored.HasPush())
}

func TestWorkflowUnliveRollsBack(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)
	push, err = env.wf.ForceLive(ctx, pm, push.ID)
	require.NoError(t, err)

	push, err = env.wf.Unlive(ctx, pm, push.ID)
	require.NoError(t, err)
	require.Equal(t, models.PushStateOnStage, push.State)
	require.Nil(t, push.LTime)

	rolled, err := env.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateTested, rolled.State)
}

func TestWorkflowAbandonAcceptedLeavesPush(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)

	// Prime the push's member view so the bust is observable.
	_, err = env.query.PushRequests(ctx, push)
	require.NoError(t, err)
	require.True(t, env.cache.has(push.RequestsCacheKey()))

	abandoned, err := env.wf.AbandonRequest(ctx, dev, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateAbandoned, abandoned.State)
	require.False(t, abandoned.HasPush())
	require.False(t, env.cache.has(push.RequestsCacheKey()), "abandoning a member busts the push's member view")

	// Past check-in the request is committed to the push.
	other, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Another feature"})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: other.ID})
	require.NoError(t, err)
	_, err = env.wf.SetCheckedIn(ctx, dev, other.ID)
	require.NoError(t, err)
	_, err = env.wf.AbandonRequest(ctx, dev, other.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestWorkflowForceLiveKeepsModifiedTime(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)

	stamp := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	env.pushes.byID[push.ID].ModifiedAt = stamp

	live, err := env.wf.ForceLive(ctx, pm, push.ID)
	require.NoError(t, err)
	require.NotNil(t, live.LTime)
	require.True(t, live.LTime.Equal(stamp), "forced live keeps the push's last-modified time")
}

func TestWorkflowWithdrawRequiresOpenPush(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)

	env.pushes.byID[push.ID].State = models.PushStateLive
	_, err = env.wf.WithdrawRequest(ctx, dev, request.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestWorkflowRestageSameStageMovesOnlyNewCheckins(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	first, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	second, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Another feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: first.ID})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: second.ID})
	require.NoError(t, err)
	_, err = env.wf.SetCheckedIn(ctx, dev, first.ID)
	require.NoError(t, err)

	push, err = env.wf.SendToStage(ctx, pm, push.ID, dto.SendToStagePayload{Stage: "stagea"})
	require.NoError(t, err)
	require.Equal(t, models.PushStateOnStage, push.State)

	var stageMail *sentNotice
	for i := range env.notifier.sent {
		if env.notifier.sent[i].kind == "mail" && strings.Contains(env.notifier.sent[i].content, "Please verify") {
			stageMail = &env.notifier.sent[i]
		}
	}
	require.NotNil(t, stageMail)
	require.Contains(t, stageMail.to, dev.Email)
	require.Contains(t, stageMail.to, "eng@example.com")

	_, err = env.wf.SetCheckedIn(ctx, dev, second.ID)
	require.NoError(t, err)

	// Prime the open-pushes view; re-staging on the same stage must
	// not bust it or touch the push row.
	_, err = env.query.OpenPushes(ctx)
	require.NoError(t, err)
	version := env.pushes.byID[push.ID].Version

	push, err = env.wf.SendToStage(ctx, pm, push.ID, dto.SendToStagePayload{Stage: "stagea"})
	require.NoError(t, err)
	require.True(t, env.cache.has("push-open"))
	require.Equal(t, version, env.pushes.byID[push.ID].Version)

	moved, err := env.requests.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateOnStage, moved.State)
}

func TestWorkflowWithdrawReturnsToQueue(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)

	request, err = env.wf.WithdrawRequest(ctx, dev, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStateRequested, request.State)
	require.False(t, request.HasPush())

	last := env.notifier.sent[len(env.notifier.sent)-1]
	require.Equal(t, "mail", last.kind)
	require.Contains(t, last.content, "I withdrew my request.")
	require.Contains(t, last.to, pm.Email)
}

func TestWorkflowRejectRules(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)

	rejected, err := env.wf.RejectRequest(ctx, pm, request.ID, "tests are red")
	require.NoError(t, err)
	require.Equal(t, models.RequestStateRejected, rejected.State)
	require.Equal(t, "tests are red", rejected.RejectReason)

	ims := env.notifier.ims()
	require.NotEmpty(t, ims)
	require.Contains(t, ims[len(ims)-1].content, "tests are red")

	// A rejected request can be edited and resubmitted.
	edited, err := env.wf.EditRequest(ctx, dev, request.ID, dto.RequestPayload{Subject: "Ship feature v2"})
	require.NoError(t, err)
	require.Equal(t, models.RequestStateRequested, edited.State)
	require.Empty(t, edited.RejectReason)

	// Live requests are beyond rejection.
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	_, err = env.wf.AcceptRequest(ctx, pm, push.ID, dto.AcceptRequestPayload{RequestID: request.ID})
	require.NoError(t, err)
	_, err = env.wf.ForceLive(ctx, pm, push.ID)
	require.NoError(t, err)
	_, err = env.wf.RejectRequest(ctx, pm, request.ID, "too late")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestWorkflowTakeOwnership(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	push, err := env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)

	other := models.Identity{Email: "other@example.com"}
	require.NoError(t, env.wf.TakeOwnership(ctx, other, models.EntityKindRequest, request.ID))
	require.NoError(t, env.wf.TakeOwnership(ctx, other, models.EntityKindPush, push.ID))

	request, err = env.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, other.Email, request.Owner)
	push, err = env.pushes.GetByID(ctx, push.ID)
	require.NoError(t, err)
	require.Equal(t, other.Email, push.Owner)

	_, err = env.wf.ForceLive(ctx, other, push.ID)
	require.NoError(t, err)
	err = env.wf.TakeOwnership(ctx, dev, models.EntityKindPush, push.ID)
	require.Error(t, err, "live pushes cannot change owner")
}

func TestWorkflowConcurrentUpdateMapsToConflict(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	request, err := env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)

	env.requests.updateErr = sql.ErrNoRows
	_, err = env.wf.AbandonRequest(ctx, dev, request.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestWorkflowBustsCaches(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	// Prime the current-requests and push views.
	_, err := env.query.CurrentRequests(ctx)
	require.NoError(t, err)
	_, err = env.query.OpenPushes(ctx)
	require.NoError(t, err)
	require.True(t, env.cache.has("request-current"))
	require.True(t, env.cache.has("push-open"))

	_, err = env.wf.CreateRequest(ctx, dev, dto.RequestPayload{Subject: "Ship feature"})
	require.NoError(t, err)
	require.False(t, env.cache.has("request-current"), "creating a request busts the current view")

	_, err = env.wf.CreatePush(ctx, pm, dto.CreatePushPayload{})
	require.NoError(t, err)
	require.False(t, env.cache.has("push-open"), "creating a push busts the open-pushes view")
}
