package alert

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
	"github.com/flavummontem/holiday-tg-bot/internal/metrics"
	"github.com/flavummontem/holiday-tg-bot/internal/store"
)

// fakeSource serves fixed holiday lists and records purge calls.
type fakeSource struct {
	byCountry map[string][]domain.Holiday
	gets      int
	purges    int
}

func (f *fakeSource) Get(_ context.Context, country string, _ time.Time) []domain.Holiday {
	f.gets++
	return f.byCountry[country]
}

func (f *fakeSource) Purge(_ context.Context, _ time.Time) { f.purges++ }

// recordingSender captures outbound messages; fails while err is set.
type recordingSender struct {
	sent map[int64][]string
	err  error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: map[int64][]string{}}
}

func (s *recordingSender) SendMessage(chatID int64, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

func newTestEngine(t *testing.T, src *fakeSource, snd *recordingSender) (*Engine, store.Repo) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo, src, snd, zap.NewNop(), metrics.Registry("holiday_bot_test")), repo
}

func addUser(t *testing.T, repo store.Repo, chatID int64, subs ...domain.Subscription) {
	t.Helper()
	ctx := context.Background()
	_, err := repo.EnsureUser(ctx, chatID, "")
	require.NoError(t, err)
	for _, s := range subs {
		require.NoError(t, repo.AddSubscription(ctx, chatID, s.Country, s.Mode))
	}
}

// Wednesday, so no digest interferes with alert counting.
var wednesday = time.Date(2024, time.December, 11, 9, 0, 0, 0, time.UTC)

func TestRunDaily_SendsExactlyOnce(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{
		"DE": {{Date: "2024-12-25", Name: "Christmas"}},
	}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 42, domain.Subscription{Country: "DE", Mode: domain.ModeCustom})

	require.NoError(t, e.RunDaily(context.Background(), wednesday))

	require.Len(t, snd.sent[42], 1)
	assert.Contains(t, snd.sent[42][0], "Christmas")
	assert.Contains(t, snd.sent[42][0], "In 14 days")

	sent, err := repo.WasSent(context.Background(),
		domain.DedupKey(42, "DE", domain.ModeCustom, "2024-12-25", 14))
	require.NoError(t, err)
	assert.True(t, sent)

	// Re-running the pass with an unchanged sent log sends nothing new.
	require.NoError(t, e.RunDaily(context.Background(), wednesday))
	assert.Len(t, snd.sent[42], 1)
}

func TestRunDaily_ModesAlertIndependently(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{
		"KZ": {{Date: "2024-12-25", Name: "Christmas"}},
	}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 7,
		domain.Subscription{Country: "KZ", Mode: domain.ModeBusiness},
		domain.Subscription{Country: "KZ", Mode: domain.ModeCustom},
	)

	require.NoError(t, e.RunDaily(context.Background(), wednesday))

	require.Len(t, snd.sent[7], 2)
	assert.Contains(t, snd.sent[7][0], "Business presence")
	assert.Contains(t, snd.sent[7][1], "Watchlist")
}

func TestRunDaily_DeltaOutsideAlertSet(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{
		"DE": {
			{Date: "2024-12-21", Name: "Ten days out"}, // delta 10, not in {14,7,3,1}
			{Date: "2024-12-01", Name: "Already passed"},
			{Date: "bogus", Name: "Unparseable"},
		},
	}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 1, domain.Subscription{Country: "DE", Mode: domain.ModeCustom})

	require.NoError(t, e.RunDaily(context.Background(), wednesday))
	assert.Empty(t, snd.sent[1])
}

func TestRunDaily_PresetChangesAlertSet(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{
		"DE": {{Date: "2024-12-25", Name: "Christmas"}}, // delta 14
	}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 1, domain.Subscription{Country: "DE", Mode: domain.ModeCustom})
	require.NoError(t, repo.SetAlertPreset(context.Background(), 1, domain.PresetEve))

	require.NoError(t, e.RunDaily(context.Background(), wednesday))
	assert.Empty(t, snd.sent[1], "delta 14 is not in the eve preset")
}

func TestRunDaily_MuteSuppressesAndExpires(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{
		"DE": {{Date: "2024-12-25", Name: "Christmas"}},
	}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 9, domain.Subscription{Country: "DE", Mode: domain.ModeCustom})

	ctx := context.Background()
	until := time.Date(2024, time.December, 11, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetMuteUntil(ctx, 9, &until))

	require.NoError(t, e.RunDaily(ctx, wednesday)) // today == mute_until
	assert.Empty(t, snd.sent[9])

	// Day after mute_until alerting resumes (Christmas is now delta 13;
	// use a holiday at delta 7 from Dec 18 instead).
	src.byCountry["DE"] = []domain.Holiday{{Date: "2024-12-25", Name: "Christmas"}}
	dayAfter := wednesday.AddDate(0, 0, 7) // Dec 18, delta 7
	require.NoError(t, e.RunDaily(ctx, dayAfter))
	require.Len(t, snd.sent[9], 1)
	assert.Contains(t, snd.sent[9][0], "In 7 days")
}

func TestRunDaily_UserTimezoneShiftsToday(t *testing.T) {
	// 20:00 UTC Dec 10 is already Dec 11 in Tashkent: delta to Dec 25 is 14
	// for the Tashkent user but 15 for a UTC user.
	now := time.Date(2024, time.December, 10, 20, 0, 0, 0, time.UTC)
	src := &fakeSource{byCountry: map[string][]domain.Holiday{
		"UZ": {{Date: "2024-12-25", Name: "Constitution Day"}},
	}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 1, domain.Subscription{Country: "UZ", Mode: domain.ModeCustom})
	addUser(t, repo, 2, domain.Subscription{Country: "UZ", Mode: domain.ModeCustom})
	require.NoError(t, repo.SetTimezone(context.Background(), 1, "Asia/Tashkent"))

	require.NoError(t, e.RunDaily(context.Background(), now))

	assert.Len(t, snd.sent[1], 1, "Tashkent user is at delta 14")
	assert.Empty(t, snd.sent[2], "UTC user is at delta 15")
}

func TestRunDaily_SendFailureLeavesKeyUnrecorded(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{
		"DE": {{Date: "2024-12-25", Name: "Christmas"}},
	}}
	snd := newRecordingSender()
	snd.err = errors.New("flood limit")
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 3, domain.Subscription{Country: "DE", Mode: domain.ModeCustom})

	ctx := context.Background()
	require.NoError(t, e.RunDaily(ctx, wednesday))
	assert.Empty(t, snd.sent[3])

	sent, err := repo.WasSent(ctx, domain.DedupKey(3, "DE", domain.ModeCustom, "2024-12-25", 14))
	require.NoError(t, err)
	assert.False(t, sent)

	// Once sending recovers, the next pass delivers.
	snd.err = nil
	require.NoError(t, e.RunDaily(ctx, wednesday))
	assert.Len(t, snd.sent[3], 1)
}

func TestMaybeRunDaily_OncePerUTCDay(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 1, domain.Subscription{Country: "DE", Mode: domain.ModeCustom})

	e.now = func() time.Time { return wednesday }
	e.maybeRunDaily(context.Background())
	first := src.gets
	assert.Positive(t, first)

	e.maybeRunDaily(context.Background())
	assert.Equal(t, first, src.gets, "second tick on the same day must not re-run the pass")

	e.now = func() time.Time { return wednesday.AddDate(0, 0, 1) }
	e.maybeRunDaily(context.Background())
	assert.Greater(t, src.gets, first, "next day runs again")
}

func TestRunDaily_RunsRetention(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)

	ctx := context.Background()
	old := wednesday.AddDate(0, 0, -(sentRetentionDays + 1))
	require.NoError(t, repo.MarkSentBatch(ctx, []string{"ancient-key"}, old))

	require.NoError(t, e.RunDaily(ctx, wednesday))

	assert.Equal(t, 1, src.purges)
	sent, err := repo.WasSent(ctx, "ancient-key")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestDigest_MondaySummary(t *testing.T) {
	// Monday 2024-12-09 UTC.
	monday := time.Date(2024, time.December, 9, 8, 0, 0, 0, time.UTC)
	src := &fakeSource{byCountry: map[string][]domain.Holiday{
		"KZ": {
			{Date: "2024-12-16", Name: "Independence Day"}, // delta 7
			{Date: "2025-01-07", Name: "Orthodox Christmas"}, // delta 29, outside window
		},
		"AE": {{Date: "2024-12-12", Name: "Some Holiday"}}, // delta 3
	}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 5,
		domain.Subscription{Country: "KZ", Mode: domain.ModeBusiness},
		domain.Subscription{Country: "KZ", Mode: domain.ModeCustom}, // same country twice
		domain.Subscription{Country: "AE", Mode: domain.ModeEmployee},
	)
	// Eve preset so deltas 7 and 3 produce no alert messages, digest only.
	require.NoError(t, repo.SetAlertPreset(context.Background(), 5, domain.PresetEve))

	require.NoError(t, e.RunDaily(context.Background(), monday))

	require.Len(t, snd.sent[5], 1)
	digest := snd.sent[5][0]
	assert.Contains(t, digest, "Weekly digest")
	assert.Contains(t, digest, "Independence Day")
	assert.NotContains(t, digest, "Orthodox Christmas")
	assert.Equal(t, 1, strings.Count(digest, "Independence Day"),
		"same holiday listed once despite two modes")
	assert.Less(t, strings.Index(digest, "Some Holiday"), strings.Index(digest, "Independence Day"),
		"entries sorted ascending by date")
}

func TestDigest_NothingUpcoming(t *testing.T) {
	monday := time.Date(2024, time.December, 9, 8, 0, 0, 0, time.UTC)
	src := &fakeSource{byCountry: map[string][]domain.Holiday{}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 6, domain.Subscription{Country: "DE", Mode: domain.ModeCustom})

	require.NoError(t, e.RunDaily(context.Background(), monday))

	require.Len(t, snd.sent[6], 1)
	assert.Contains(t, snd.sent[6][0], "No holidays in the next 14 days")
}

func TestDigest_NotOnOtherDays(t *testing.T) {
	src := &fakeSource{byCountry: map[string][]domain.Holiday{}}
	snd := newRecordingSender()
	e, repo := newTestEngine(t, src, snd)
	addUser(t, repo, 6, domain.Subscription{Country: "DE", Mode: domain.ModeCustom})

	require.NoError(t, e.RunDaily(context.Background(), wednesday))
	assert.Empty(t, snd.sent[6])
}
