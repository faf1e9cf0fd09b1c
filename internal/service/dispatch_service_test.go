package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"voiceform-be/internal/config"
	"voiceform-be/internal/constant"
	"voiceform-be/internal/entity"
	"voiceform-be/internal/repository/memory"
	"voiceform-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectEvents subscribes before the action under test and returns the event
// types seen within the window.
func collectEvents(t *testing.T, ts *testStack, window time.Duration) func() []string {
	t.Helper()
	messages, err := ts.pubSub.Subscribe(context.Background(), testTopic)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	go func() {
		for msg := range messages {
			var env struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg.Payload, &env); err == nil {
				mu.Lock()
				seen = append(seen, env.Type)
				mu.Unlock()
			}
			msg.Ack()
		}
	}()

	return func() []string {
		time.Sleep(window)
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func countType(seen []string, eventType string) int {
	n := 0
	for _, s := range seen {
		if s == eventType {
			n++
		}
	}
	return n
}

func TestDispatchBucketsOutcomes(t *testing.T) {
	ts := newTestStack(t, config.SessionConfig{})
	sess := ts.create(t, "First", "Second", "Third")

	resp, err := ts.dispatch.Dispatch(context.Background(), sess.Id, map[string]string{
		"First":   "  Alice  ",
		"Second":  strings.Repeat("y", constant.MaxFieldValueLength+1),
		"Unknown": "whatever",
		"Third":   "   ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", resp.Applied["First"])
	assert.Len(t, resp.Applied["Second"], constant.MaxFieldValueLength)
	assert.Equal(t, []string{"Second"}, resp.Truncated)
	assert.Equal(t, []string{"Unknown"}, resp.IgnoredUnknown)
	assert.Equal(t, []string{"Third"}, resp.IgnoredEmpty)
	assert.Equal(t, 1, resp.RemainingCount)
	assert.False(t, resp.Complete)
	assert.Equal(t, sess.Schema.CatalogHash(), resp.CatalogHash)
}

func TestDispatchHonorsConfiguredValueCap(t *testing.T) {
	ts := newTestStackFull(t, config.SessionConfig{},
		config.FormConfig{MaxFields: 300, MaxValueLength: 5},
		memory.NewRouteStore(time.Hour))
	sess := ts.create(t, "A")

	resp, err := ts.dispatch.Dispatch(context.Background(), sess.Id, map[string]string{"A": "abcdefgh"})
	require.NoError(t, err)
	assert.Equal(t, "abcde", resp.Applied["A"])
	assert.Equal(t, []string{"A"}, resp.Truncated)
}

func TestDispatchRejectsExpiredSessionStillInRegistry(t *testing.T) {
	ts := newTestStack(t, config.SessionConfig{})
	sess := ts.create(t, "A")

	// The sweep decides expiry and kills under the session lock before the
	// registry entry goes away; an update landing in that window must fail
	// instead of being acknowledged and then thrown away.
	sess.Lock()
	sess.Kill()
	sess.Unlock()
	require.True(t, ts.sessions.Resident(sess.Id))

	_, err := ts.dispatch.Dispatch(context.Background(), sess.Id, map[string]string{"A": "1"})
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestDispatchUnknownSession(t *testing.T) {
	ts := newTestStack(t, config.SessionConfig{})
	_, err := ts.dispatch.Dispatch(context.Background(), "missing", map[string]string{"A": "1"})
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestDispatchCompletionNoticeIsOneShot(t *testing.T) {
	ts := newTestStack(t, config.SessionConfig{})
	sess := ts.create(t, "A", "B")
	drain := collectEvents(t, ts, 200*time.Millisecond)

	resp, err := ts.dispatch.Dispatch(context.Background(), sess.Id, map[string]string{"A": "1", "B": "2"})
	require.NoError(t, err)
	assert.True(t, resp.Complete)
	assert.Equal(t, entity.TrackerAwaitingConfirmation, sess.Tracker.State())

	// Re-applying after completion reports complete but fires no second notice.
	resp, err = ts.dispatch.Dispatch(context.Background(), sess.Id, map[string]string{"A": "changed"})
	require.NoError(t, err)
	assert.True(t, resp.Complete)

	seen := drain()
	assert.Equal(t, 1, countType(seen, events.TypeFormCompleted))
	assert.Equal(t, 2, countType(seen, events.TypeFieldsApplied))
}

func TestDispatchCompletionUnderConcurrency(t *testing.T) {
	ts := newTestStack(t, config.SessionConfig{})
	sess := ts.create(t, "A", "B")
	drain := collectEvents(t, ts, 300*time.Millisecond)

	ts.fill(t, sess.Id, "A")

	// Two racing writers both land the final field.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ts.dispatch.Dispatch(context.Background(), sess.Id, map[string]string{"B": "final"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := drain()
	assert.Equal(t, 1, countType(seen, events.TypeFormCompleted),
		"exactly one completion notice regardless of write interleaving")
}

func TestDispatchSkipsFieldsAppliedWhenNothingApplied(t *testing.T) {
	ts := newTestStack(t, config.SessionConfig{})
	sess := ts.create(t, "A")
	drain := collectEvents(t, ts, 150*time.Millisecond)

	resp, err := ts.dispatch.Dispatch(context.Background(), sess.Id, map[string]string{"Nope": "x"})
	require.NoError(t, err)
	assert.Empty(t, resp.Applied)

	seen := drain()
	assert.Equal(t, 0, countType(seen, events.TypeFieldsApplied))
}
