package models

// PartnerView is the stage-appropriate slice of the partner's profile.
// Before reveal only the coarse fields (industry, city) are populated.
type PartnerView struct {
	MemberID string `json:"memberId,omitempty"`
	Industry string `json:"industry,omitempty"`
	City     string `json:"city,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Bio      string `json:"bio,omitempty"`
	PhotoKey string `json:"photoKey,omitempty"`
}

// DisclosedMatchView is what a participant is allowed to see of a match.
type DisclosedMatchView struct {
	MatchID        string      `json:"matchId"`
	CycleID        string      `json:"cycleId"`
	Stage          string      `json:"stage"`
	YourDecision   string      `json:"yourDecision"`
	AlignmentScore int         `json:"alignmentScore"`
	CreatedAt      string      `json:"createdAt"`
	RevealedAt     *string     `json:"revealedAt,omitempty"`
	Partner        PartnerView `json:"partner"`
}
