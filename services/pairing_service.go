package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"aligned_server/models"
)

// PairingService produces one new match per eligible member per cycle,
// avoiding repeats across the lifetime of the system.
type PairingService struct {
	Store     MatchStore
	Directory MemberDirectory
	MinTier   string // defaults to silver
}

type candidatePair struct {
	memberA string
	memberB string
	score   int
}

// RunCycle generates matches for cycleID and returns how many were created.
// Safe to re-run after a partial failure: the store's guards reject pairs
// already covered this cycle and the run carries on.
func (s *PairingService) RunCycle(ctx context.Context, cycleID string) (int, error) {
	minTier := s.MinTier
	if minTier == "" {
		minTier = models.TierSilver
	}

	log.Printf("🔄 Running pairing cycle %s (min tier %s)", cycleID, minTier)
	members, err := s.Directory.GetEligibleMembers(ctx, minTier)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch eligible members: %w", err)
	}

	// Eligibility is gated upstream; re-check so a stale pool cannot leak
	// lower tiers into the cycle.
	var pool []models.MemberProfile
	for _, member := range members {
		if !models.TierAtLeast(member.Tier, minTier) {
			log.Printf("⚠️ Skipping member %s: tier %s below %s", member.MemberID, member.Tier, minTier)
			continue
		}
		pool = append(pool, member)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].MemberID < pool[j].MemberID })

	history := make(map[string]map[string]struct{}, len(pool))
	for _, member := range pool {
		partners, err := s.Store.PastPartners(ctx, member.MemberID)
		if err != nil {
			return 0, fmt.Errorf("failed to load pairing history for %s: %w", member.MemberID, err)
		}
		history[member.MemberID] = partners
	}

	var candidates []candidatePair
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			a, b := pool[i], pool[j]
			if _, repeated := history[a.MemberID][b.MemberID]; repeated {
				continue
			}
			score, err := AlignmentScore(&a, &b)
			if err != nil {
				// A scoring failure excludes the pair, never the run.
				log.Printf("⚠️ Skipping pair (%s, %s): %v", a.MemberID, b.MemberID, err)
				continue
			}
			candidates = append(candidates, candidatePair{memberA: a.MemberID, memberB: b.MemberID, score: score})
		}
	}

	// Greedy matching, best scores first. Ties break on member ids so the
	// same pool always yields the same pairs.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].memberA != candidates[j].memberA {
			return candidates[i].memberA < candidates[j].memberA
		}
		return candidates[i].memberB < candidates[j].memberB
	})

	paired := make(map[string]struct{})
	created := 0
	for _, candidate := range candidates {
		if _, taken := paired[candidate.memberA]; taken {
			continue
		}
		if _, taken := paired[candidate.memberB]; taken {
			continue
		}

		_, err := s.Store.CreateMatch(ctx, cycleID, candidate.memberA, candidate.memberB, candidate.score)
		if errors.Is(err, models.ErrDuplicatePairing) {
			log.Printf("ℹ️ Pair (%s, %s) already covered in cycle %s", candidate.memberA, candidate.memberB, cycleID)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to create match in cycle %s: %w", cycleID, err)
		}
		paired[candidate.memberA] = struct{}{}
		paired[candidate.memberB] = struct{}{}
		created++
	}

	log.Printf("✅ Cycle %s: created %d matches, %d of %d members left unmatched", cycleID, created, len(pool)-len(paired), len(pool))
	return created, nil
}

// AlignmentScore computes the 0–100 compatibility signal for a candidate
// pair. The heuristic is a replaceable policy: the stage machine never
// depends on how the score was produced, only that it is set at creation.
func AlignmentScore(a, b *models.MemberProfile) (int, error) {
	if a.Industry == "" || b.Industry == "" {
		return 0, fmt.Errorf("missing industry for %s or %s", a.MemberID, b.MemberID)
	}

	score := 50
	if a.Industry == b.Industry {
		score += 20
	}
	if a.City != "" && a.City == b.City {
		score += 15
	}
	if a.Tier == b.Tier {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
