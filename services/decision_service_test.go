package services

import (
	"context"
	"sync"
	"testing"

	"aligned_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDecisionFixture(t *testing.T) (*DecisionService, *memoryMatchStore, *fakeEmitter, *models.Match) {
	t.Helper()
	store := newMemoryMatchStore()
	directory := newFakeDirectory(
		models.MemberProfile{MemberID: "ava", Tier: models.TierPlatinum, City: "London", Industry: "finance", FullName: "Ava Osei", Title: "Partner", Company: "Northgate", Bio: "Early-stage investor", PhotoKey: "member-photos/ava/1"},
		models.MemberProfile{MemberID: "ben", Tier: models.TierSilver, City: "Lisbon", Industry: "design", FullName: "Ben Ito", Title: "Founder", Company: "Studio Ito", Bio: "Designs spaces", PhotoKey: "member-photos/ben/1"},
	)
	emitter := &fakeEmitter{}
	service := &DecisionService{Store: store, Directory: directory, Notifier: emitter}

	match, err := store.CreateMatch(context.Background(), "2026-W01", "ava", "ben", 72)
	require.NoError(t, err)
	return service, store, emitter, match
}

func TestDecideFirstAcceptMovesToAccepted(t *testing.T) {
	service, store, emitter, match := newDecisionFixture(t)

	view, err := service.Decide(context.Background(), "ava", match.MatchID, models.DecisionAccept)
	require.NoError(t, err)

	assert.Equal(t, models.StageAccepted, view.Stage)
	assert.Equal(t, models.DecisionAccept, view.YourDecision)

	stored, err := store.GetMatch(context.Background(), match.MatchID)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionAccept, stored.DecisionA)
	assert.Equal(t, models.DecisionPending, stored.DecisionB)
	assert.Zero(t, emitter.count(), "no reveal before mutual acceptance")

	// The partner's identity stays hidden until reveal.
	assert.Empty(t, view.Partner.FullName)
	assert.Empty(t, view.Partner.PhotoKey)
	assert.Equal(t, "design", view.Partner.Industry)
	assert.Equal(t, "Lisbon", view.Partner.City)
}

func TestDecideMutualAcceptReveals(t *testing.T) {
	service, store, emitter, match := newDecisionFixture(t)

	_, err := service.Decide(context.Background(), "ava", match.MatchID, models.DecisionAccept)
	require.NoError(t, err)

	view, err := service.Decide(context.Background(), "ben", match.MatchID, models.DecisionAccept)
	require.NoError(t, err)

	assert.Equal(t, models.StageRevealed, view.Stage)
	assert.Equal(t, "Ava Osei", view.Partner.FullName)
	assert.Equal(t, "Northgate", view.Partner.Company)
	assert.Equal(t, 1, emitter.count(), "exactly one reveal emission")

	stored, err := store.GetMatch(context.Background(), match.MatchID)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionAccept, stored.DecisionA)
	assert.Equal(t, models.DecisionAccept, stored.DecisionB)
}

func TestDecidePassDeclinesImmediately(t *testing.T) {
	service, _, emitter, match := newDecisionFixture(t)

	view, err := service.Decide(context.Background(), "ava", match.MatchID, models.DecisionPass)
	require.NoError(t, err)
	assert.Equal(t, models.StageDeclined, view.Stage)
	assert.Zero(t, emitter.count())

	// The other side's decision is irrelevant once one side passes.
	_, err = service.Decide(context.Background(), "ben", match.MatchID, models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrMatchClosed)
}

func TestDecideSecondSubmissionRejected(t *testing.T) {
	service, store, _, match := newDecisionFixture(t)

	_, err := service.Decide(context.Background(), "ava", match.MatchID, models.DecisionAccept)
	require.NoError(t, err)

	_, err = service.Decide(context.Background(), "ava", match.MatchID, models.DecisionPass)
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)

	// The rejected attempt must not have changed anything.
	stored, err := store.GetMatch(context.Background(), match.MatchID)
	require.NoError(t, err)
	assert.Equal(t, models.StageAccepted, stored.Stage)
	assert.Equal(t, models.DecisionAccept, stored.DecisionA)
	assert.Equal(t, models.DecisionPending, stored.DecisionB)
}

func TestDecideOutsiderRejected(t *testing.T) {
	service, _, _, match := newDecisionFixture(t)

	_, err := service.Decide(context.Background(), "mallory", match.MatchID, models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrNotParticipant)
}

func TestDecideInvalidVerbRejected(t *testing.T) {
	service, _, _, match := newDecisionFixture(t)

	_, err := service.Decide(context.Background(), "ava", match.MatchID, "maybe")
	assert.ErrorIs(t, err, models.ErrInvalidDecision)
}

func TestDecideUnknownMatch(t *testing.T) {
	service, _, _, _ := newDecisionFixture(t)

	_, err := service.Decide(context.Background(), "ava", "missing", models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrMatchNotFound)
}

func TestConcurrentAcceptsRevealExactlyOnce(t *testing.T) {
	service, store, emitter, match := newDecisionFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, memberID := range []string{"ava", "ben"} {
		wg.Add(1)
		go func(i int, memberID string) {
			defer wg.Done()
			_, errs[i] = service.Decide(context.Background(), memberID, match.MatchID, models.DecisionAccept)
		}(i, memberID)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	stored, err := store.GetMatch(context.Background(), match.MatchID)
	require.NoError(t, err)
	assert.Equal(t, models.StageRevealed, stored.Stage)
	assert.Equal(t, models.DecisionAccept, stored.DecisionA)
	assert.Equal(t, models.DecisionAccept, stored.DecisionB)
	assert.Equal(t, 1, emitter.count(), "reveal must fire exactly once, never zero or twice")
}

func TestExpiredMatchRejectsDecisions(t *testing.T) {
	service, store, emitter, match := newDecisionFixture(t)

	expired, err := store.ExpireCycle(context.Background(), "2026-W01")
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	_, err = service.Decide(context.Background(), "ava", match.MatchID, models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrMatchClosed)
	assert.Zero(t, emitter.count())

	// Sweeping again finds nothing left to expire.
	again, err := store.ExpireCycle(context.Background(), "2026-W01")
	require.NoError(t, err)
	assert.Zero(t, again)

	view, err := service.CurrentMatch(context.Background(), "ava")
	require.NoError(t, err)
	assert.Nil(t, view, "expired matches are not active")
}

func TestCurrentMatchReturnsNilWhenNone(t *testing.T) {
	store := newMemoryMatchStore()
	service := &DecisionService{Store: store, Directory: newFakeDirectory(), Notifier: &fakeEmitter{}}

	view, err := service.CurrentMatch(context.Background(), "ava")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestCurrentMatchDisclosesForRequester(t *testing.T) {
	service, _, _, match := newDecisionFixture(t)

	view, err := service.CurrentMatch(context.Background(), "ben")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, match.MatchID, view.MatchID)
	assert.Equal(t, models.DecisionPending, view.YourDecision)
	assert.Equal(t, "finance", view.Partner.Industry)
	assert.Empty(t, view.Partner.FullName)
}

func TestMatchHistoryKeepsClosureDisclosure(t *testing.T) {
	service, store, _, match := newDecisionFixture(t)

	_, err := service.Decide(context.Background(), "ava", match.MatchID, models.DecisionPass)
	require.NoError(t, err)

	// A later match that reveals fully.
	second, err := store.CreateMatch(context.Background(), "2026-W02", "ava", "cleo", 64)
	require.NoError(t, err)
	service.Directory.(*fakeDirectory).profiles["cleo"] = models.MemberProfile{
		MemberID: "cleo", Tier: models.TierSilver, City: "Berlin", Industry: "media", FullName: "Cleo Marsh",
	}
	_, err = service.Decide(context.Background(), "ava", second.MatchID, models.DecisionAccept)
	require.NoError(t, err)
	_, err = service.Decide(context.Background(), "cleo", second.MatchID, models.DecisionAccept)
	require.NoError(t, err)

	views, err := service.MatchHistory(context.Background(), "ava")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := map[string]models.DisclosedMatchView{}
	for _, view := range views {
		byID[view.MatchID] = view
	}

	declined := byID[match.MatchID]
	assert.Equal(t, models.StageDeclined, declined.Stage)
	assert.Empty(t, declined.Partner.FullName, "closure never upgrades disclosure")
	assert.Equal(t, "design", declined.Partner.Industry)

	revealed := byID[second.MatchID]
	assert.Equal(t, models.StageRevealed, revealed.Stage)
	assert.Equal(t, "Cleo Marsh", revealed.Partner.FullName)
}
