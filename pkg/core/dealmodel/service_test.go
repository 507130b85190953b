package dealmodel

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"levfin_model/pkg/core/assumption"
	"levfin_model/pkg/core/logger"
	"levfin_model/pkg/core/projection"
	"levfin_model/pkg/core/store"
)

func baseCase() assumption.Assumptions {
	return assumption.Assumptions{
		LTMRevenue:           500_000_000,
		LTMEbitda:            125_000_000,
		RevenueGrowthPercent: []float64{5, 6, 7, 5, 4},
		EbitdaMarginPercent:  []float64{25, 26, 27, 27, 28},
		CapexPercent:         []float64{3, 3, 3, 2.5, 2.5},
		EbitdaAdjustments:    []float64{5_000_000, 3_000_000, 2_000_000, 1_000_000, 0},
		TaxRatePercent:       25,
		DepreciationPercent:  4,
		Debt: assumption.DebtTranche{
			Principal:             400_000_000,
			InterestRatePercent:   9.5,
			MandatoryAmortPercent: 1,
		},
		CashSweepPercent: 50,
	}
}

type fixture struct {
	svc  *Service
	repo *store.FileRepo
	mr   *miniredis.Miniredis
}

func newFixture(t *testing.T, withCache bool) fixture {
	t.Helper()
	repo, err := store.NewFileRepo(t.TempDir())
	require.NoError(t, err)

	f := fixture{repo: repo}
	var cache *store.PublishedCache
	if withCache {
		f.mr = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: f.mr.Addr()})
		t.Cleanup(func() { client.Close() })
		cache = store.NewPublishedCache(client, 0)
	}

	eng := projection.NewProjectionEngine(assumption.ModeStrict, logger.NewTest(t))
	f.svc = NewService(eng, repo, cache, logger.NewTest(t))
	return f
}

func cacheKey(id uuid.UUID) string {
	return "levfin:published:" + id.String()
}

func TestSaveDraft(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	m, err := f.svc.SaveDraft(ctx, uuid.Nil, "deal-1", "management case", baseCase())
	require.NoError(t, err)
	require.NotNil(t, m.Result)
	assert.False(t, m.IsPublished)
	assert.Equal(t, projection.Project(baseCase()), *m.Result)

	stored, err := f.repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Result, stored.Result)
}

func TestSaveDraft_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	a := baseCase()
	a.CapexPercent = a.CapexPercent[:3]
	_, err := f.svc.SaveDraft(ctx, uuid.Nil, "deal-1", "short", a)
	assert.ErrorIs(t, err, assumption.ErrArrayLength)

	_, err = f.svc.SaveDraft(ctx, uuid.Nil, "", "no deal", baseCase())
	assert.Error(t, err)

	list, err := f.repo.ListByDeal(ctx, "deal-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPublish_PrimesCache(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	m, err := f.svc.SaveDraft(ctx, uuid.Nil, "deal-1", "management case", baseCase())
	require.NoError(t, err)

	_, err = f.svc.PublishedResult(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotPublished)

	pub, err := f.svc.Publish(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, pub.IsPublished)
	assert.True(t, f.mr.Exists(cacheKey(m.ID)))

	res, err := f.svc.PublishedResult(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Result, res)
}

func TestPublishedResult_ServedFromCache(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	m, err := f.svc.SaveDraft(ctx, uuid.Nil, "deal-1", "management case", baseCase())
	require.NoError(t, err)
	_, err = f.svc.Publish(ctx, m.ID)
	require.NoError(t, err)

	// a cache hit does not touch the repository
	cached := projection.ProjectionResult{Summary: projection.Summary{ExitLeverage: 9.99}}
	require.NoError(t, store.NewPublishedCache(redis.NewClient(&redis.Options{Addr: f.mr.Addr()}), 0).Put(ctx, m.ID, &cached))

	res, err := f.svc.PublishedResult(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.99, res.Summary.ExitLeverage)
}

func TestSaveDraft_UnpublishesAndInvalidates(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	m, err := f.svc.SaveDraft(ctx, uuid.Nil, "deal-1", "management case", baseCase())
	require.NoError(t, err)
	_, err = f.svc.Publish(ctx, m.ID)
	require.NoError(t, err)

	revised := baseCase()
	revised.CashSweepPercent = 75
	_, err = f.svc.SaveDraft(ctx, m.ID, "deal-1", "management case v2", revised)
	require.NoError(t, err)

	assert.False(t, f.mr.Exists(cacheKey(m.ID)))
	_, err = f.svc.PublishedResult(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotPublished)
}

func TestPublish_SwitchesDealCase(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	a, err := f.svc.SaveDraft(ctx, uuid.Nil, "deal-1", "sponsor case", baseCase())
	require.NoError(t, err)
	downside := baseCase()
	downside.EbitdaMarginPercent = []float64{20, 20, 20, 20, 20}
	b, err := f.svc.SaveDraft(ctx, uuid.Nil, "deal-1", "bank case", downside)
	require.NoError(t, err)

	_, err = f.svc.Publish(ctx, a.ID)
	require.NoError(t, err)
	_, err = f.svc.Publish(ctx, b.ID)
	require.NoError(t, err)

	assert.False(t, f.mr.Exists(cacheKey(a.ID)))
	assert.True(t, f.mr.Exists(cacheKey(b.ID)))

	got, err := f.svc.PublishedForDeal(ctx, "deal-1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, "bank case", got.Name)
	assert.Equal(t, b.Result.Summary, got.Result.Summary)

	_, err = f.svc.PublishedForDeal(ctx, "deal-2")
	assert.ErrorIs(t, err, ErrNoPublishedModel)
}

func TestPublishedResult_WithoutCache(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	m, err := f.svc.SaveDraft(ctx, uuid.Nil, "deal-1", "management case", baseCase())
	require.NoError(t, err)
	_, err = f.svc.Publish(ctx, m.ID)
	require.NoError(t, err)

	res, err := f.svc.PublishedResult(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Result.Summary, res.Summary)

	_, err = f.svc.PublishedResult(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPublishedResult_ProjectsMissingResult(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	// stored by an older writer that did not keep results
	m := &store.DealModel{DealID: "deal-1", Name: "legacy", Assumptions: baseCase()}
	require.NoError(t, f.repo.Save(ctx, m))
	_, err := f.svc.Publish(ctx, m.ID)
	require.NoError(t, err)

	res, err := f.svc.PublishedResult(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, projection.Project(baseCase()), *res)
}

func TestPublish_UnprojectableModelStaysDraft(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	// written directly, bypassing SaveDraft's validation
	bad := baseCase()
	bad.CashSweepPercent = 150
	m := &store.DealModel{DealID: "deal-1", Name: "bad sweep", Assumptions: bad}
	require.NoError(t, f.repo.Save(ctx, m))

	_, err := f.svc.Publish(ctx, m.ID)
	assert.ErrorIs(t, err, assumption.ErrInvalidValue)

	stored, err := f.repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPublished)
	assert.False(t, f.mr.Exists(cacheKey(m.ID)))

	_, err = f.svc.PublishedForDeal(ctx, "deal-1")
	assert.ErrorIs(t, err, ErrNoPublishedModel)
}

func TestPublish_MissingModel(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Publish(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
