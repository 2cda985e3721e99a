package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
)

// flakyCache fails the first DeleteByPattern calls before delegating.
type flakyCache struct {
	*memCache
	mu       sync.Mutex
	failures int
}

func (c *flakyCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	if c.failures > 0 {
		c.failures--
		c.mu.Unlock()
		return errors.New("redis: connection reset")
	}
	c.mu.Unlock()
	return c.memCache.DeleteByPattern(ctx, pattern)
}

func (c *flakyCache) deletedPatterns() []string {
	c.memCache.mu.Lock()
	defer c.memCache.mu.Unlock()
	return append([]string(nil), c.memCache.deleted...)
}

type recordingQueue struct {
	patterns []string
}

func (q *recordingQueue) Enqueue(pattern string) error {
	q.patterns = append(q.patterns, pattern)
	return nil
}

func TestCacheServiceQueuesFailedInvalidation(t *testing.T) {
	repo := &flakyCache{memCache: newMemCache(), failures: 1}
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	queue := &recordingQueue{}
	svc.UseRetryQueue(queue)

	err := svc.Invalidate(context.Background(), ListPattern(ListAttendance))
	require.Error(t, err)
	assert.Equal(t, []string{"list:attendance:*"}, queue.patterns)

	require.NoError(t, svc.Invalidate(context.Background(), ListPattern(ListContent)))
	assert.Len(t, queue.patterns, 1)
}

func TestCacheServiceRetryQueueDrainsPattern(t *testing.T) {
	repo := &flakyCache{memCache: newMemCache(), failures: 2}
	require.NoError(t, repo.Set(context.Background(), "list:attendance:abc:1:10", []int{1}, time.Minute))

	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	queue := jobs.NewQueue[string]("cache-invalidate", svc.InvalidationHandler(), jobs.QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	queue.Start(context.Background())
	defer queue.Stop()
	svc.UseRetryQueue(queue)

	require.Error(t, svc.Invalidate(context.Background(), ListPattern(ListAttendance)))
	assert.Eventually(t, func() bool {
		return len(repo.deletedPatterns()) == 1
	}, time.Second, 5*time.Millisecond)

	var dest []int
	_, err := svc.Get(context.Background(), "list:attendance:abc:1:10", &dest)
	require.NoError(t, err)
	assert.Empty(t, dest)
}

func TestCacheServiceDisabledSkipsRepo(t *testing.T) {
	svc := NewCacheService(nil, nil, 0, nil, true)
	assert.False(t, svc.Enabled())

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, svc.Invalidate(context.Background(), "list:*"))
}

func TestListKeyDistinguishesCraftedFilterValues(t *testing.T) {
	page := listquery.PageRequest{Page: 1, Limit: 10}
	class := listquery.Scope(
		listquery.Eq(listquery.FieldClassGrade, "10"),
		listquery.Eq(listquery.FieldClassSection, "A"),
	)
	spec := ContentList().Spec

	separate, err := spec.Build(class, map[string]string{"subject": "Math", "type": "quiz"})
	require.NoError(t, err)
	joined, err := spec.Build(class, map[string]string{"subject": "Math&type=quiz"})
	require.NoError(t, err)

	assert.NotEqual(t, separate.Key(), joined.Key())
	assert.NotEqual(t, ListKey(ListContent, separate, page), ListKey(ListContent, joined, page))
}

func TestListKeyKeepsSubsecondBounds(t *testing.T) {
	page := listquery.PageRequest{Page: 1, Limit: 10}
	whole := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)

	a := listquery.Unrestricted().And(listquery.Condition{Field: listquery.FieldDate, Op: listquery.OpGte, Value: whole})
	b := listquery.Unrestricted().And(listquery.Condition{Field: listquery.FieldDate, Op: listquery.OpGte, Value: half})

	assert.NotEqual(t, ListKey(ListAttendance, a, page), ListKey(ListAttendance, b, page))
}
