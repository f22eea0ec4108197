package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"aligned_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// MatchStore is the durable source of truth for pairings, decisions, and stage.
type MatchStore interface {
	CreateMatch(ctx context.Context, cycleID, memberA, memberB string, alignmentScore int) (*models.Match, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	GetActiveMatch(ctx context.Context, memberID string) (*models.Match, error)
	GetMatchesByMember(ctx context.Context, memberID string) ([]models.Match, error)
	RecordDecision(ctx context.Context, matchID, memberID, decision string) (*models.Match, error)
	ExpireCycle(ctx context.Context, cycleID string) (int, error)
	PastPartners(ctx context.Context, memberID string) (map[string]struct{}, error)
}

// MatchStoreService implements MatchStore on DynamoDB.
type MatchStoreService struct {
	Dynamo *DynamoService
}

// decisionRetryLimit bounds how often a decision write is recomputed after
// losing a conditional-check race against a concurrent writer.
const decisionRetryLimit = 4

// errDecisionConflict marks a lost conditional-update race: the match changed
// between our read and our write, so the transition must be recomputed.
var errDecisionConflict = errors.New("decision write conflict")

// storeBackoff bounds retries of transient DynamoDB failures.
func storeBackoff(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 3 * time.Second
	return backoff.WithContext(policy, ctx)
}

func matchKey(matchID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
}

// CreateMatch writes a new match plus its cycle guards and pairing-history
// rows in one transaction. Every item is conditioned on non-existence, so a
// member already paired this cycle, or a pair matched in any earlier cycle,
// cancels the whole transaction.
func (s *MatchStoreService) CreateMatch(ctx context.Context, cycleID, memberA, memberB string, alignmentScore int) (*models.Match, error) {
	if memberA == memberB {
		return nil, models.ErrSelfPairing
	}

	now := time.Now().UTC().Format(time.RFC3339)
	match := models.Match{
		MatchID:        uuid.New().String(),
		CycleID:        cycleID,
		MemberA:        memberA,
		MemberB:        memberB,
		Stage:          models.StageNew,
		DecisionA:      models.DecisionPending,
		DecisionB:      models.DecisionPending,
		AlignmentScore: alignmentScore,
		CreatedAt:      now,
		LastUpdated:    now,
	}

	matchItem, err := attributevalue.MarshalMap(match)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(models.MatchesTable),
				Item:                matchItem,
				ConditionExpression: aws.String("attribute_not_exists(matchId)"),
			},
		},
	}
	guards := []struct{ pk, sk string }{
		{models.MemberKeyPrefix + memberA, models.CycleKeyPrefix + cycleID},
		{models.MemberKeyPrefix + memberB, models.CycleKeyPrefix + cycleID},
		{models.MemberKeyPrefix + memberA, models.PairedKeyPrefix + memberB},
		{models.MemberKeyPrefix + memberB, models.PairedKeyPrefix + memberA},
	}
	for _, guard := range guards {
		item, err := pairingPut(guard.pk, guard.sk, &match)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	op := func() error {
		err := s.Dynamo.TransactWriteItems(ctx, items)
		if err == nil {
			return nil
		}
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return backoff.Permanent(models.ErrDuplicatePairing)
				}
			}
		}
		log.Printf("⚠️ Transient failure creating match %s: %v", match.MatchID, err)
		return err
	}
	if err := backoff.Retry(op, storeBackoff(ctx)); err != nil {
		if errors.Is(err, models.ErrDuplicatePairing) {
			return nil, models.ErrDuplicatePairing
		}
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	log.Printf("✅ Created match %s in cycle %s (%s, %s, score %d)", match.MatchID, cycleID, memberA, memberB, alignmentScore)
	return &match, nil
}

func pairingPut(pk, sk string, match *models.Match) (types.TransactWriteItem, error) {
	record := models.PairingRecord{
		PK:        pk,
		SK:        sk,
		MatchID:   match.MatchID,
		CycleID:   match.CycleID,
		CreatedAt: match.CreatedAt,
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal pairing record: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(models.PairingsTable),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		},
	}, nil
}

// GetMatch fetches a match by id.
func (s *MatchStoreService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, matchKey(matchID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if item == nil {
		return nil, models.ErrMatchNotFound
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match %s: %w", matchID, err)
	}
	return &match, nil
}

// GetMatchesByMember fetches every match involving memberID, newest first.
func (s *MatchStoreService) GetMatchesByMember(ctx context.Context, memberID string) ([]models.Match, error) {
	indexes := []struct{ name, attribute string }{
		{models.MemberAIndex, "memberA"},
		{models.MemberBIndex, "memberB"},
	}

	var matches []models.Match
	for _, index := range indexes {
		keyCondition := fmt.Sprintf("%s = :memberId", index.attribute)
		expressionValues := map[string]types.AttributeValue{
			":memberId": &types.AttributeValueMemberS{Value: memberID},
		}

		items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, index.name, keyCondition, expressionValues, nil, 100)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}

		for _, item := range items {
			var match models.Match
			if err := attributevalue.UnmarshalMap(item, &match); err != nil {
				log.Printf("❌ Error unmarshalling match from %s: %v", index.name, err)
				continue
			}
			matches = append(matches, match)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt > matches[j].CreatedAt })
	return matches, nil
}

// GetActiveMatch returns the member's open match (stage new or accepted), or
// nil when none exists. The cycle guard guarantees at most one.
func (s *MatchStoreService) GetActiveMatch(ctx context.Context, memberID string) (*models.Match, error) {
	matches, err := s.GetMatchesByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if matches[i].IsActive() {
			return &matches[i], nil
		}
	}
	return nil, nil
}

// RecordDecision applies one member's accept/pass as an atomic conditional
// update. The read classifies the request, the write pins the exact state the
// transition was computed from; losing the race to a concurrent writer means
// re-reading and re-classifying, so of two simultaneous accepts exactly one
// performs the accepted→revealed write.
func (s *MatchStoreService) RecordDecision(ctx context.Context, matchID, memberID, decision string) (*models.Match, error) {
	if !models.ValidDecision(decision) {
		return nil, models.ErrInvalidDecision
	}

	for attempt := 0; attempt < decisionRetryLimit; attempt++ {
		match, err := s.GetMatch(ctx, matchID)
		if err != nil {
			return nil, err
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

		updated, err := s.applyDecision(ctx, match, memberID, decision)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, errDecisionConflict) {
			return nil, err
		}
		log.Printf("🔁 Concurrent write on match %s, re-reading (attempt %d)", matchID, attempt+1)
	}
	return nil, fmt.Errorf("%w: decision conflict persisted on match %s", models.ErrStoreUnavailable, matchID)
}

func (s *MatchStoreService) applyDecision(ctx context.Context, match *models.Match, memberID, decision string) (*models.Match, error) {
	slot, partnerSlot := "decisionA", "decisionB"
	partnerDecision := match.DecisionB
	if memberID == match.MemberB {
		slot, partnerSlot = "decisionB", "decisionA"
		partnerDecision = match.DecisionA
	}
	nextStage := models.NextStage(partnerDecision, decision)
	now := time.Now().UTC().Format(time.RFC3339)

	updateExpression := "SET #slot = :decision, #stage = :nextStage, #lastUpdated = :now"
	expressionValues := map[string]types.AttributeValue{
		":decision":        &types.AttributeValueMemberS{Value: decision},
		":nextStage":       &types.AttributeValueMemberS{Value: nextStage},
		":now":             &types.AttributeValueMemberS{Value: now},
		":curStage":        &types.AttributeValueMemberS{Value: match.Stage},
		":pending":         &types.AttributeValueMemberS{Value: models.DecisionPending},
		":partnerDecision": &types.AttributeValueMemberS{Value: partnerDecision},
	}
	expressionNames := map[string]string{
		"#slot":        slot,
		"#partnerSlot": partnerSlot,
		"#stage":       "stage",
		"#lastUpdated": "lastUpdated",
	}
	if nextStage == models.StageDeclined || nextStage == models.StageRevealed {
		updateExpression += ", #decidedAt = :now"
		expressionNames["#decidedAt"] = "decidedAt"
	}
	if nextStage == models.StageRevealed {
		updateExpression += ", #revealedAt = :now"
		expressionNames["#revealedAt"] = "revealedAt"
	}

	// Pin the stage and both decision slots we computed the transition from.
	conditionExpression := "#stage = :curStage AND #slot = :pending AND #partnerSlot = :partnerDecision"

	var attributes map[string]types.AttributeValue
	op := func() error {
		var err error
		attributes, err = s.Dynamo.UpdateItemWithCondition(ctx, models.MatchesTable, matchKey(match.MatchID), updateExpression, conditionExpression, expressionValues, expressionNames)
		if err == nil {
			return nil
		}
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return backoff.Permanent(errDecisionConflict)
		}
		log.Printf("⚠️ Transient failure updating match %s: %v", match.MatchID, err)
		return err
	}
	if err := backoff.Retry(op, storeBackoff(ctx)); err != nil {
		if errors.Is(err, errDecisionConflict) {
			return nil, errDecisionConflict
		}
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	var updated models.Match
	if err := attributevalue.UnmarshalMap(attributes, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated match %s: %w", match.MatchID, err)
	}
	log.Printf("✅ Recorded %s by %s on match %s (stage %s → %s)", decision, memberID, match.MatchID, match.Stage, nextStage)
	return &updated, nil
}

// ExpireCycle sweeps every still-open match of a closed cycle to expired.
// Losing a race against a late decision is fine: the conditional flip simply
// skips matches that went terminal first. Safe to re-run.
func (s *MatchStoreService) ExpireCycle(ctx context.Context, cycleID string) (int, error) {
	keyCondition := "cycleId = :cycleId"
	expressionValues := map[string]types.AttributeValue{
		":cycleId": &types.AttributeValueMemberS{Value: cycleID},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, models.CycleIndex, keyCondition, expressionValues, nil, 500)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	expired := 0
	for _, item := range items {
		var match models.Match
		if err := attributevalue.UnmarshalMap(item, &match); err != nil {
			log.Printf("❌ Error unmarshalling match in cycle %s: %v", cycleID, err)
			continue
		}
		if match.IsTerminal() {
			continue
		}

		now := time.Now().UTC().Format(time.RFC3339)
		updateExpression := "SET #stage = :expired, #lastUpdated = :now"
		conditionExpression := "#stage IN (:new, :accepted)"
		values := map[string]types.AttributeValue{
			":expired":  &types.AttributeValueMemberS{Value: models.StageExpired},
			":now":      &types.AttributeValueMemberS{Value: now},
			":new":      &types.AttributeValueMemberS{Value: models.StageNew},
			":accepted": &types.AttributeValueMemberS{Value: models.StageAccepted},
		}
		names := map[string]string{
			"#stage":       "stage",
			"#lastUpdated": "lastUpdated",
		}

		_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.MatchesTable, matchKey(match.MatchID), updateExpression, conditionExpression, values, names)
		if err != nil {
			var conditionFailed *types.ConditionalCheckFailedException
			if errors.As(err, &conditionFailed) {
				continue
			}
			return expired, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		expired++
	}

	log.Printf("🧹 Expired %d stale matches in cycle %s", expired, cycleID)
	return expired, nil
}

// PastPartners returns every member this member has ever been matched with.
func (s *MatchStoreService) PastPartners(ctx context.Context, memberID string) (map[string]struct{}, error) {
	keyCondition := "PK = :pk AND begins_with(SK, :paired)"
	expressionValues := map[string]types.AttributeValue{
		":pk":     &types.AttributeValueMemberS{Value: models.MemberKeyPrefix + memberID},
		":paired": &types.AttributeValueMemberS{Value: models.PairedKeyPrefix},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.PairingsTable, keyCondition, expressionValues, nil, 1000)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	partners := make(map[string]struct{}, len(items))
	for _, item := range items {
		var record models.PairingRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			log.Printf("❌ Error unmarshalling pairing record for %s: %v", memberID, err)
			continue
		}
		partners[strings.TrimPrefix(record.SK, models.PairedKeyPrefix)] = struct{}{}
	}
	return partners, nil
}
