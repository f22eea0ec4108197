package services

import (
	"context"
	"errors"
	"log"

	"aligned_server/models"
)

// NotificationEmitter fans reveal events out to both participants.
// Fire-and-forget: emission failure never affects the triggering operation.
type NotificationEmitter interface {
	EmitRevealed(matchID, memberA, memberB string)
}

// DecisionService applies accept/pass decisions and triggers reveal fan-out.
type DecisionService struct {
	Store     MatchStore
	Directory MemberDirectory
	Notifier  NotificationEmitter
}

// Decide records memberID's decision on matchID and returns the resulting
// disclosed view. Exactly one of two concurrent accepts observes the
// transition into revealed, so the reveal event is emitted exactly once.
func (s *DecisionService) Decide(ctx context.Context, memberID, matchID, decision string) (*models.DisclosedMatchView, error) {
	if !models.ValidDecision(decision) {
		return nil, models.ErrInvalidDecision
	}

	updated, err := s.Store.RecordDecision(ctx, matchID, memberID, decision)
	if err != nil {
		return nil, err
	}

	if updated.Stage == models.StageRevealed && s.Notifier != nil {
		// The stage transition has committed; fan-out is best-effort.
		s.Notifier.EmitRevealed(updated.MatchID, updated.MemberA, updated.MemberB)
	}

	return s.discloseFor(ctx, updated, memberID)
}

// CurrentMatch returns the member's open match, or nil when none exists.
func (s *DecisionService) CurrentMatch(ctx context.Context, memberID string) (*models.DisclosedMatchView, error) {
	match, err := s.Store.GetActiveMatch(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}
	return s.discloseFor(ctx, match, memberID)
}

// MatchHistory returns disclosed views of every match the member has been
// part of, newest first. Terminal matches keep their closure-time disclosure.
func (s *DecisionService) MatchHistory(ctx context.Context, memberID string) ([]models.DisclosedMatchView, error) {
	matches, err := s.Store.GetMatchesByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	views := make([]models.DisclosedMatchView, 0, len(matches))
	for i := range matches {
		view, err := s.discloseFor(ctx, &matches[i], memberID)
		if err != nil {
			log.Printf("❌ Failed to disclose match %s for %s: %v", matches[i].MatchID, memberID, err)
			continue
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *DecisionService) discloseFor(ctx context.Context, match *models.Match, memberID string) (*models.DisclosedMatchView, error) {
	partnerID, participant := match.PartnerOf(memberID)
	if !participant {
		return nil, models.ErrNotParticipant
	}

	partner, err := s.Directory.GetProfile(ctx, partnerID)
	if err != nil && !errors.Is(err, models.ErrMemberNotFound) {
		return nil, err
	}
	// A vanished partner profile degrades to a view with no partner fields.
	return ResolveDisclosure(match, memberID, partner)
}
