package services

import (
	"context"
	"fmt"
	"sync"

	"aligned_server/models"
)

// memoryMatchStore mirrors the DynamoDB store's semantics in memory. All
// operations serialize through one mutex, the way concurrent decisions on the
// same match serialize through the store's conditional writes.
type memoryMatchStore struct {
	mu      sync.Mutex
	matches map[string]*models.Match
	guards  map[string]struct{} // memberID|cycleID
	pairs   map[string]struct{} // unordered pair
	seq     int
}

func newMemoryMatchStore() *memoryMatchStore {
	return &memoryMatchStore{
		matches: make(map[string]*models.Match),
		guards:  make(map[string]struct{}),
		pairs:   make(map[string]struct{}),
	}
}

func guardKey(memberID, cycleID string) string { return memberID + "|" + cycleID }

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// seedPair marks two members as having been matched in some earlier cycle.
func (m *memoryMatchStore) seedPair(a, b string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[pairKey(a, b)] = struct{}{}
}

func (m *memoryMatchStore) CreateMatch(ctx context.Context, cycleID, memberA, memberB string, alignmentScore int) (*models.Match, error) {
	if memberA == memberB {
		return nil, models.ErrSelfPairing
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.guards[guardKey(memberA, cycleID)]; exists {
		return nil, models.ErrDuplicatePairing
	}
	if _, exists := m.guards[guardKey(memberB, cycleID)]; exists {
		return nil, models.ErrDuplicatePairing
	}
	if _, exists := m.pairs[pairKey(memberA, memberB)]; exists {
		return nil, models.ErrDuplicatePairing
	}

	m.seq++
	match := &models.Match{
		MatchID:        fmt.Sprintf("match-%d", m.seq),
		CycleID:        cycleID,
		MemberA:        memberA,
		MemberB:        memberB,
		Stage:          models.StageNew,
		DecisionA:      models.DecisionPending,
		DecisionB:      models.DecisionPending,
		AlignmentScore: alignmentScore,
		CreatedAt:      fmt.Sprintf("2026-01-01T00:00:%02dZ", m.seq%60),
	}
	m.matches[match.MatchID] = match
	m.guards[guardKey(memberA, cycleID)] = struct{}{}
	m.guards[guardKey(memberB, cycleID)] = struct{}{}
	m.pairs[pairKey(memberA, memberB)] = struct{}{}

	copied := *match
	return &copied, nil
}

func (m *memoryMatchStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[matchID]
	if !ok {
		return nil, models.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (m *memoryMatchStore) GetActiveMatch(ctx context.Context, memberID string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.matches {
		if !match.IsActive() {
			continue
		}
		if match.MemberA == memberID || match.MemberB == memberID {
			copied := *match
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryMatchStore) GetMatchesByMember(ctx context.Context, memberID string) ([]models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []models.Match
	for _, match := range m.matches {
		if match.MemberA == memberID || match.MemberB == memberID {
			matches = append(matches, *match)
		}
	}
	return matches, nil
}

func (m *memoryMatchStore) RecordDecision(ctx context.Context, matchID, memberID, decision string) (*models.Match, error) {
	if !models.ValidDecision(decision) {
		return nil, models.ErrInvalidDecision
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	match, ok := m.matches[matchID]
	if !ok {
		return nil, models.ErrMatchNotFound
	}
	own, participant := match.DecisionOf(memberID)
	if !participant {
		return nil, models.ErrNotParticipant
	}
	if match.IsTerminal() {
		return nil, models.ErrMatchClosed
	}
	if own != models.DecisionPending {
		return nil, models.ErrAlreadyDecided
	}

	partnerID, _ := match.PartnerOf(memberID)
	partnerDecision, _ := match.DecisionOf(partnerID)
	if memberID == match.MemberA {
		match.DecisionA = decision
	} else {
		match.DecisionB = decision
	}
	match.Stage = models.NextStage(partnerDecision, decision)

	copied := *match
	return &copied, nil
}

func (m *memoryMatchStore) ExpireCycle(ctx context.Context, cycleID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expired := 0
	for _, match := range m.matches {
		if match.CycleID == cycleID && match.IsActive() {
			match.Stage = models.StageExpired
			expired++
		}
	}
	return expired, nil
}

func (m *memoryMatchStore) PastPartners(ctx context.Context, memberID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	partners := make(map[string]struct{})
	for key := range m.pairs {
		for i := 0; i < len(key); i++ {
			if key[i] == '|' {
				a, b := key[:i], key[i+1:]
				if a == memberID {
					partners[b] = struct{}{}
				}
				if b == memberID {
					partners[a] = struct{}{}
				}
				break
			}
		}
	}
	return partners, nil
}

// fakeDirectory serves profiles from a map.
type fakeDirectory struct {
	profiles map[string]models.MemberProfile
}

func newFakeDirectory(profiles ...models.MemberProfile) *fakeDirectory {
	d := &fakeDirectory{profiles: make(map[string]models.MemberProfile)}
	for _, profile := range profiles {
		d.profiles[profile.MemberID] = profile
	}
	return d
}

func (d *fakeDirectory) GetProfile(ctx context.Context, memberID string) (*models.MemberProfile, error) {
	profile, ok := d.profiles[memberID]
	if !ok {
		return nil, models.ErrMemberNotFound
	}
	copied := profile
	return &copied, nil
}

func (d *fakeDirectory) GetEligibleMembers(ctx context.Context, minTier string) ([]models.MemberProfile, error) {
	var eligible []models.MemberProfile
	for _, profile := range d.profiles {
		if models.TierAtLeast(profile.Tier, minTier) {
			eligible = append(eligible, profile)
		}
	}
	return eligible, nil
}

// fakeEmitter records reveal emissions.
type fakeEmitter struct {
	mu      sync.Mutex
	reveals []string
}

func (e *fakeEmitter) EmitRevealed(matchID, memberA, memberB string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reveals = append(e.reveals, matchID)
}

func (e *fakeEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.reveals)
}
