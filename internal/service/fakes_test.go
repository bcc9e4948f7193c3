package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/notify"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

// fakeNotifier records fan-out calls so tests can assert ordering and targets
// without a real dispatcher.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) log(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	copy(out, n.events)
	return out
}

func (n *fakeNotifier) JobCreated(job *domain.Job, collectorTopic string) {
	n.log("job_created:" + collectorTopic)
}
func (n *fakeNotifier) JobCompleted(job *domain.Job) { n.log("job_completed") }
func (n *fakeNotifier) TokenRequested(token *domain.Token, deviceToken string) {
	n.log("token_requested:" + token.TokenCode)
}
func (n *fakeNotifier) TokenIssued(token *domain.Token) { n.log("token_issued:" + token.TokenCode) }
func (n *fakeNotifier) SupportReceived(mobile string)   { n.log("support_received:" + mobile) }
func (n *fakeNotifier) SupportResolved(mobile string, status domain.SupportStatus) {
	n.log("support_resolved:" + mobile)
}
func (n *fakeNotifier) Welcome(deviceToken, name string) { n.log("welcome:" + name) }
func (n *fakeNotifier) SendPushNow(ctx context.Context, target notify.PushTarget, title, body string) error {
	n.log("push_now")
	return nil
}

// fakeTokenRepo is an in-memory TokenRepository that mirrors the store's
// partial-unique behavior: a second REQUESTED insert for the same mobile
// fails with ErrRequestedExists. forceRaceOnCreate makes the next Create
// fail that way regardless, to model losing the insert race after a clean
// existence check.
type fakeTokenRepo struct {
	mu                sync.Mutex
	tokens            []*domain.Token
	nextID            int64
	forceRaceOnCreate bool
	raceWinnerCode    string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{nextID: 1}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceRaceOnCreate {
		r.forceRaceOnCreate = false
		winner := &domain.Token{
			ID:           r.nextID,
			TokenCode:    r.raceWinnerCode,
			MobileNumber: token.MobileNumber,
			Quantity:     1,
			Status:       domain.TokenStatusRequested,
			CreatedAt:    time.Now(),
		}
		r.nextID++
		r.tokens = append(r.tokens, winner)
		return repository.ErrRequestedExists
	}
	for _, t := range r.tokens {
		if t.MobileNumber == token.MobileNumber && t.Status == domain.TokenStatusRequested {
			return repository.ErrRequestedExists
		}
	}
	token.ID = r.nextID
	r.nextID++
	token.CreatedAt = time.Now()
	stored := *token
	r.tokens = append(r.tokens, &stored)
	return nil
}

func (r *fakeTokenRepo) GetRequestedByMobile(ctx context.Context, mobile string) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.MobileNumber == mobile && t.Status == domain.TokenStatusRequested {
			copied := *t
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTokenRepo) Issue(ctx context.Context, code, mobile string, quantity int) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenCode == code && t.MobileNumber == mobile && t.Status == domain.TokenStatusRequested {
			now := time.Now()
			t.Status = domain.TokenStatusIssued
			t.Quantity = quantity
			t.ReceivedAt = &now
			copied := *t
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTokenRepo) ListByMobile(ctx context.Context, mobile string) ([]domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Token
	for _, t := range r.tokens {
		if t.MobileNumber == mobile {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) ListWithFilter(ctx context.Context, filter repository.TokenFilter) ([]domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Token
	for _, t := range r.tokens {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTokenRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTokenRepo) DeleteExpiredRequested(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.Token
	var removed int64
	for _, t := range r.tokens {
		if t.Status == domain.TokenStatusRequested && t.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.tokens = kept
	return removed, nil
}

// fakeJobRepo is an in-memory JobRepository with the same conditional
// transition semantics as the SQL implementation.
type fakeJobRepo struct {
	mu     sync.Mutex
	jobs   map[int64]*domain.Job
	nextID int64
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[int64]*domain.Job), nextID: 1}
}

func (r *fakeJobRepo) Create(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = r.nextID
	r.nextID++
	job.CreatedAt = time.Now()
	stored := *job
	r.jobs[job.ID] = &stored
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) Complete(ctx context.Context, id int64, collectorMobile, proofURL string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != domain.JobStatusActive {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	job.Status = domain.JobStatusPaymentRequired
	job.JobPhotoDone = &proofURL
	job.FinishedByID = &collectorMobile
	job.FinishedAt = &now
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) ListActive(ctx context.Context) ([]domain.Job, error) {
	return r.listWhere(func(j *domain.Job) bool { return j.Status == domain.JobStatusActive })
}

func (r *fakeJobRepo) ListPostedBy(ctx context.Context, mobile string) ([]domain.Job, error) {
	return r.listWhere(func(j *domain.Job) bool { return j.PostedByID == mobile })
}

func (r *fakeJobRepo) ListCollectedBy(ctx context.Context, mobile string) ([]domain.Job, error) {
	return r.listWhere(func(j *domain.Job) bool {
		return j.FinishedByID != nil && *j.FinishedByID == mobile
	})
}

func (r *fakeJobRepo) listWhere(pred func(*domain.Job) bool) ([]domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Job
	for _, j := range r.jobs {
		if pred(j) {
			out = append(out, *j)
		}
	}
	return out, nil
}
