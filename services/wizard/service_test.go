package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	draftRepo "regwizard/database/repository/draft"
	"regwizard/models"
	"regwizard/services/location"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(repo draftRepo.DraftRepository, clk *clock) *DefaultWizardService {
	return NewDefaultWizardService(ServiceConfig{
		Repo:       repo,
		Detector:   location.FixedDetector{Country: "India"},
		Submitter:  DelaySubmitter{},
		Logger:     zap.NewNop(),
		SummaryTTL: time.Minute,
		Now:        clk.Now,
	})
}

func TestSessionReusesController(t *testing.T) {
	svc := newTestService(draftRepo.NewMemoryDraftRepo(), &clock{now: fixedNow})
	a := svc.Session(context.Background(), "abc")
	b := svc.Session(context.Background(), "abc")
	assert.Same(t, a, b)
	assert.Equal(t, 1, svc.ActiveSessions())
}

func TestSessionRestoresSavedDraft(t *testing.T) {
	repo := draftRepo.NewMemoryDraftRepo()
	saved := models.SavedDraft{Draft: models.NewDraft(), LastSaved: fixedNow}
	saved.FirstName = "Jane"
	saved.Step = 2
	require.NoError(t, repo.Save(context.Background(), "abc", saved))

	svc := newTestService(repo, &clock{now: fixedNow})
	v := svc.Session(context.Background(), "abc").View()
	assert.Equal(t, "Jane", v.Draft.FirstName)
	assert.Equal(t, 2, v.Step)
}

func TestSessionIgnoresCorruptDraft(t *testing.T) {
	repo := draftRepo.NewMemoryDraftRepo()
	repo.PutRaw("abc", []byte("{oops"))

	svc := newTestService(repo, &clock{now: fixedNow})
	v := svc.Session(context.Background(), "abc").View()
	assert.Equal(t, models.NewDraft(), v.Draft)

	saved, err := repo.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, saved, "the corrupt record should be deleted")
}

func TestOpenDetectsCountry(t *testing.T) {
	svc := newTestService(draftRepo.NewMemoryDraftRepo(), &clock{now: fixedNow})
	ctrl := svc.Open(context.Background(), "abc", location.Hint{})
	assert.Equal(t, "India", ctrl.Draft().Country)

	ctrl.Update(models.Country, "Canada")
	ctrl = svc.Open(context.Background(), "abc", location.Hint{})
	assert.Equal(t, "Canada", ctrl.Draft().Country)
}

func TestSubmitStoresSummaryUntilExpiry(t *testing.T) {
	clk := &clock{now: fixedNow}
	svc := newTestService(draftRepo.NewMemoryDraftRepo(), clk)
	fillAll(svc.Session(context.Background(), "abc"))

	ref, summary, err := svc.Submit(context.Background(), "abc")
	require.NoError(t, err)
	require.NotEmpty(t, ref)
	assert.Equal(t, "ABCDE1234F", summary.Draft.PANNumber)

	got, ok := svc.Summary(ref)
	require.True(t, ok)
	assert.Equal(t, summary, got)

	_, ok = svc.Summary("unknown")
	assert.False(t, ok)

	clk.Advance(2 * time.Minute)
	_, ok = svc.Summary(ref)
	assert.False(t, ok)
}

func TestSubmitInvalidDraft(t *testing.T) {
	svc := newTestService(draftRepo.NewMemoryDraftRepo(), &clock{now: fixedNow})
	_, _, err := svc.Submit(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrFormInvalid)
}

func TestPruneIdle(t *testing.T) {
	clk := &clock{now: fixedNow}
	repo := draftRepo.NewMemoryDraftRepo()
	svc := newTestService(repo, clk)

	svc.Session(context.Background(), "old").Update(models.FirstName, "Jane")
	clk.Advance(time.Hour)
	svc.Session(context.Background(), "fresh")

	assert.Equal(t, 1, svc.PruneIdle(30*time.Minute))
	assert.Equal(t, 1, svc.ActiveSessions())

	// The draft survives in the store and is reloaded on demand.
	assert.Equal(t, "Jane", svc.Session(context.Background(), "old").Draft().FirstName)
}

func TestSummaryStoreSweep(t *testing.T) {
	clk := &clock{now: fixedNow}
	store := NewSummaryStore(time.Minute, clk.Now)
	store.Put("a", models.Summary{})
	clk.Advance(30 * time.Second)
	store.Put("b", models.Summary{})
	clk.Advance(45 * time.Second)

	assert.Equal(t, 1, store.Sweep())
	_, ok := store.Get("b")
	assert.True(t, ok)
}

type slowLoadRepo struct {
	*draftRepo.MemoryDraftRepo
	slowID  string
	release chan struct{}
}

func (r *slowLoadRepo) Load(ctx context.Context, sessionID string) (*models.SavedDraft, error) {
	if sessionID == r.slowID {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.MemoryDraftRepo.Load(ctx, sessionID)
}

func TestSlowLoadDoesNotBlockOtherSessions(t *testing.T) {
	repo := &slowLoadRepo{MemoryDraftRepo: draftRepo.NewMemoryDraftRepo(), slowID: "slow", release: make(chan struct{})}
	svc := newTestService(repo, &clock{now: fixedNow})

	slowDone := make(chan *Controller)
	go func() { slowDone <- svc.Session(context.Background(), "slow") }()

	fastDone := make(chan struct{})
	go func() {
		svc.Session(context.Background(), "fast")
		close(fastDone)
	}()
	select {
	case <-fastDone:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("session \"fast\" waited on the load of \"slow\"")
	}

	close(repo.release)
	slow := <-slowDone
	assert.Same(t, slow, svc.Session(context.Background(), "slow"))
	assert.Equal(t, 2, svc.ActiveSessions())
}

func TestConcurrentFirstAccessSharesController(t *testing.T) {
	svc := newTestService(draftRepo.NewMemoryDraftRepo(), &clock{now: fixedNow})

	const n = 16
	got := make([]*Controller, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = svc.Session(context.Background(), "shared")
		}()
	}
	wg.Wait()

	for _, c := range got {
		assert.Same(t, got[0], c)
	}
	assert.Equal(t, 1, svc.ActiveSessions())
}
