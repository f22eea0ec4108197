package services

import "aligned_server/models"

// ResolveDisclosure computes the stage-appropriate view of a match for one
// requesting participant. It is a pure function of its inputs; partner is the
// other participant's directory profile, already fetched by the caller, and
// may be nil if that profile no longer exists.
//
// Coarse fields (industry, city) are visible from the moment the pairing
// exists. Full identity requires the match to have reached revealed; closing
// a match (declined, expired) never upgrades what was disclosed before.
// The alignment score is not personally identifying and is always visible.
func ResolveDisclosure(match *models.Match, requesterID string, partner *models.MemberProfile) (*models.DisclosedMatchView, error) {
	own, participant := match.DecisionOf(requesterID)
	if !participant {
		return nil, models.ErrNotParticipant
	}

	view := &models.DisclosedMatchView{
		MatchID:        match.MatchID,
		CycleID:        match.CycleID,
		Stage:          match.Stage,
		YourDecision:   own,
		AlignmentScore: match.AlignmentScore,
		CreatedAt:      match.CreatedAt,
		RevealedAt:     match.RevealedAt,
	}
	if partner == nil {
		return view, nil
	}

	view.Partner.Industry = partner.Industry
	view.Partner.City = partner.City

	if match.Stage == models.StageRevealed {
		view.Partner.MemberID = partner.MemberID
		view.Partner.FullName = partner.FullName
		view.Partner.Title = partner.Title
		view.Partner.Company = partner.Company
		view.Partner.Bio = partner.Bio
		view.Partner.PhotoKey = partner.PhotoKey
	}
	return view, nil
}
