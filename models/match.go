package models

// Stage values for the lifecycle of an Aligned match.
const (
	StageNew      = "new"
	StageAccepted = "accepted"
	StageRevealed = "revealed"
	StageDeclined = "declined"
	StageExpired  = "expired"
)

// Decision values recorded per participant.
const (
	DecisionPending = "pending"
	DecisionAccept  = "accept"
	DecisionPass    = "pass"
)

// Match represents one pairing for one weekly cycle.
type Match struct {
	MatchID        string  `dynamodbav:"matchId" json:"matchId"`
	CycleID        string  `dynamodbav:"cycleId" json:"cycleId"`
	MemberA        string  `dynamodbav:"memberA" json:"memberA"`
	MemberB        string  `dynamodbav:"memberB" json:"memberB"`
	Stage          string  `dynamodbav:"stage" json:"stage"`
	DecisionA      string  `dynamodbav:"decisionA" json:"decisionA"`
	DecisionB      string  `dynamodbav:"decisionB" json:"decisionB"`
	AlignmentScore int     `dynamodbav:"alignmentScore" json:"alignmentScore"` // set at creation, never updated
	CreatedAt      string  `dynamodbav:"createdAt" json:"createdAt"`
	DecidedAt      *string `dynamodbav:"decidedAt,omitempty" json:"decidedAt,omitempty"`
	RevealedAt     *string `dynamodbav:"revealedAt,omitempty" json:"revealedAt,omitempty"`
	LastUpdated    string  `dynamodbav:"lastUpdated" json:"lastUpdated"`
}

// MatchesTable is the DynamoDB table name for Aligned matches
const MatchesTable = "AlignedMatches"

// GSIs for querying matches by participant or by cycle
const (
	MemberAIndex = "memberA-index" // PK: memberA
	MemberBIndex = "memberB-index" // PK: memberB
	CycleIndex   = "cycle-index"   // PK: cycleId
)

// PairingsTable holds per-cycle participation guards and lifetime pairing history
const PairingsTable = "AlignedPairings"

// Key prefixes used in PairingsTable
const (
	MemberKeyPrefix = "MEMBER#"
	CycleKeyPrefix  = "CYCLE#"
	PairedKeyPrefix = "PAIRED#"
)

// PairingRecord is one row of PairingsTable. A CYCLE# row marks a member as
// paired for that cycle; a PAIRED# row marks two members as having been
// matched at some point in any cycle.
type PairingRecord struct {
	PK        string `dynamodbav:"PK" json:"PK"` // "MEMBER#<memberId>"
	SK        string `dynamodbav:"SK" json:"SK"` // "CYCLE#<cycleId>" or "PAIRED#<partnerId>"
	MatchID   string `dynamodbav:"matchId" json:"matchId"`
	CycleID   string `dynamodbav:"cycleId" json:"cycleId"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// IsActive reports whether the match still admits decisions.
func (m *Match) IsActive() bool {
	return m.Stage == StageNew || m.Stage == StageAccepted
}

// IsTerminal reports whether the match permits no further writes.
func (m *Match) IsTerminal() bool {
	return m.Stage == StageRevealed || m.Stage == StageDeclined || m.Stage == StageExpired
}

// DecisionOf returns the recorded decision of memberID, and whether memberID
// is a participant of the match at all.
func (m *Match) DecisionOf(memberID string) (string, bool) {
	switch memberID {
	case m.MemberA:
		return m.DecisionA, true
	case m.MemberB:
		return m.DecisionB, true
	}
	return "", false
}

// PartnerOf returns the other participant's id.
func (m *Match) PartnerOf(memberID string) (string, bool) {
	switch memberID {
	case m.MemberA:
		return m.MemberB, true
	case m.MemberB:
		return m.MemberA, true
	}
	return "", false
}

// NextStage computes the stage that results from a member submitting decision
// while their partner's recorded decision is partnerDecision. A pass closes
// the match immediately; a second accept reveals it.
func NextStage(partnerDecision, decision string) string {
	if decision == DecisionPass {
		return StageDeclined
	}
	if partnerDecision == DecisionAccept {
		return StageRevealed
	}
	return StageAccepted
}

// ValidDecision reports whether decision is a verb members may submit.
func ValidDecision(decision string) bool {
	return decision == DecisionAccept || decision == DecisionPass
}
