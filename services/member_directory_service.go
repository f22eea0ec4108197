package services

import (
	"context"
	"fmt"
	"log"

	"aligned_server/models"
	"aligned_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemberDirectory is the read-only view of the membership system the matching
// engine consumes. Tier changes, invitations and session state live outside
// the engine; it only ever reads tier as a value.
type MemberDirectory interface {
	GetProfile(ctx context.Context, memberID string) (*models.MemberProfile, error)
	GetEligibleMembers(ctx context.Context, minTier string) ([]models.MemberProfile, error)
}

// MemberDirectoryService implements MemberDirectory on the AlignedMembers
// table and carries the directory admin surface (upsert/delete).
type MemberDirectoryService struct {
	Dynamo *DynamoService
}

func memberKey(memberID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"memberId": &types.AttributeValueMemberS{Value: memberID},
	}
}

// GetProfile fetches one member's profile.
func (s *MemberDirectoryService) GetProfile(ctx context.Context, memberID string) (*models.MemberProfile, error) {
	item, err := s.Dynamo.GetItem(ctx, models.MembersTable, memberKey(memberID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if item == nil {
		return nil, models.ErrMemberNotFound
	}

	var profile models.MemberProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", memberID, err)
	}
	return &profile, nil
}

// GetEligibleMembers returns every member at or above minTier.
func (s *MemberDirectoryService) GetEligibleMembers(ctx context.Context, minTier string) ([]models.MemberProfile, error) {
	filter := func(item map[string]types.AttributeValue) bool {
		return models.TierAtLeast(utils.ExtractString(item, "tier"), minTier)
	}

	var profiles []models.MemberProfile
	if err := s.Dynamo.ScanWithFilter(ctx, models.MembersTable, filter, &profiles); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	log.Printf("🔍 Found %d members at tier %s or above", len(profiles), minTier)
	return profiles, nil
}

// UpsertProfile creates or replaces a member profile.
func (s *MemberDirectoryService) UpsertProfile(ctx context.Context, profile *models.MemberProfile) error {
	if profile.MemberID == "" {
		return fmt.Errorf("memberId is required")
	}
	if !models.KnownTier(profile.Tier) {
		return fmt.Errorf("unknown tier %q", profile.Tier)
	}

	if err := s.Dynamo.PutItem(ctx, models.MembersTable, profile); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	log.Printf("✅ Upserted profile for member %s (tier %s)", profile.MemberID, profile.Tier)
	return nil
}

// DeleteProfile removes a member profile from the directory.
func (s *MemberDirectoryService) DeleteProfile(ctx context.Context, memberID string) error {
	if err := s.Dynamo.DeleteItem(ctx, models.MembersTable, memberKey(memberID)); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	log.Printf("🧹 Deleted profile for member %s", memberID)
	return nil
}
