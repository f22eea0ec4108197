package models

// Membership tiers, lowest to highest.
const (
	TierMember   = "member"
	TierSilver   = "silver"
	TierPlatinum = "platinum"
	TierLaureate = "laureate"
)

var tierRank = map[string]int{
	TierMember:   0,
	TierSilver:   1,
	TierPlatinum: 2,
	TierLaureate: 3,
}

// KnownTier reports whether tier is a recognized membership level.
func KnownTier(tier string) bool {
	_, ok := tierRank[tier]
	return ok
}

// TierAtLeast reports whether tier meets minTier. Unknown tiers never qualify.
func TierAtLeast(tier, minTier string) bool {
	rank, ok := tierRank[tier]
	minRank, minOK := tierRank[minTier]
	if !ok || !minOK {
		return false
	}
	return rank >= minRank
}

// MemberProfile mirrors the directory record for one member. The matching
// engine treats these fields as read-only; the upsert surface exists for
// directory administration only.
type MemberProfile struct {
	MemberID string `dynamodbav:"memberId" json:"memberId"`
	Tier     string `dynamodbav:"tier" json:"tier"`
	City     string `dynamodbav:"city,omitempty" json:"city,omitempty"`
	Industry string `dynamodbav:"industry,omitempty" json:"industry,omitempty"`
	FullName string `dynamodbav:"fullName,omitempty" json:"fullName,omitempty"`
	Title    string `dynamodbav:"title,omitempty" json:"title,omitempty"`
	Company  string `dynamodbav:"company,omitempty" json:"company,omitempty"`
	Bio      string `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	PhotoKey string `dynamodbav:"photoKey,omitempty" json:"photoKey,omitempty"`
}

// MembersTable is the DynamoDB table name for member profiles
const MembersTable = "AlignedMembers"
