package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"plandrift/internal/storage"
	"plandrift/pkg/logging"
)

const (
	// RepoTimestampIndex is the global secondary index used for history queries.
	RepoTimestampIndex = "repo_name-timestamp-index"

	resourceType = "DynamoDB"
)

// PlanTable stores plan records in a DynamoDB table keyed by plan_id
type PlanTable struct {
	client DynamoDBAPI
	table  string
	logger logging.Logger
}

// NewPlanTableWithDefaultConfig creates a PlanTable with the default AWS SDK configuration
func NewPlanTableWithDefaultConfig(ctx context.Context, table, region string, logger logging.Logger) (*PlanTable, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return NewPlanTableWithClient(dynamodb.NewFromConfig(cfg), table, logger), nil
}

// NewPlanTableWithClient creates a PlanTable with a provided client
func NewPlanTableWithClient(client DynamoDBAPI, table string, logger logging.Logger) *PlanTable {
	return &PlanTable{
		client: client,
		table:  table,
		logger: logger,
	}
}

// Save writes the record, replacing any item with the same plan id.
func (t *PlanTable) Save(ctx context.Context, record *storage.PlanRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.table),
		Item:      marshalRecord(record),
	})
	if err != nil {
		return ClassifyAWSError(err, resourceType, record.PlanID)
	}
	return nil
}

// Get loads one record by plan id.
func (t *PlanTable) Get(ctx context.Context, planID string) (*storage.PlanRecord, error) {
	resp, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.table),
		Key: map[string]types.AttributeValue{
			"plan_id": &types.AttributeValueMemberS{Value: planID},
		},
	})
	if err != nil {
		return nil, ClassifyAWSError(err, resourceType, planID)
	}
	if len(resp.Item) == 0 {
		return nil, fmt.Errorf("plan %s: %w", planID, storage.ErrNotFound)
	}

	return unmarshalRecord(resp.Item)
}

// ListByRepo queries the repo/timestamp index newest first, following
// pagination until limit records are collected.
func (t *PlanTable) ListByRepo(ctx context.Context, repo string, limit int) ([]*storage.PlanRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(t.table),
		IndexName:              aws.String(RepoTimestampIndex),
		KeyConditionExpression: aws.String("repo_name = :repo"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":repo": &types.AttributeValueMemberS{Value: repo},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	var out []*storage.PlanRecord
	for {
		resp, err := t.client.Query(ctx, input)
		if err != nil {
			return nil, ClassifyAWSError(err, resourceType, repo)
		}

		for _, item := range resp.Items {
			record, err := unmarshalRecord(item)
			if err != nil {
				t.logger.Warn("Skipping unreadable plan item for %s: %v", repo, err)
				continue
			}
			out = append(out, record)
			if limit > 0 && len(out) == limit {
				return out, nil
			}
		}

		if len(resp.LastEvaluatedKey) == 0 {
			return out, nil
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
}

// Close is a no-op; the SDK client holds no resources.
func (t *PlanTable) Close() error {
	return nil
}

func marshalRecord(r *storage.PlanRecord) map[string]types.AttributeValue {
	summary := make([]types.AttributeValue, len(r.ChangeSummary))
	for i, label := range r.ChangeSummary {
		summary[i] = &types.AttributeValueMemberS{Value: label}
	}

	return map[string]types.AttributeValue{
		"plan_id":          &types.AttributeValueMemberS{Value: r.PlanID},
		"repo_name":        &types.AttributeValueMemberS{Value: r.RepoName},
		"timestamp":        &types.AttributeValueMemberS{Value: r.Timestamp.UTC().Format(storage.TimestampLayout)},
		"plan_content":     &types.AttributeValueMemberS{Value: r.PlanContent},
		"drift_detected":   &types.AttributeValueMemberBOOL{Value: r.DriftDetected},
		"changes_detected": &types.AttributeValueMemberN{Value: strconv.Itoa(r.ChangesDetected)},
		"change_summary":   &types.AttributeValueMemberL{Value: summary},
		"risk_level":       &types.AttributeValueMemberS{Value: r.RiskLevel},
	}
}

func unmarshalRecord(item map[string]types.AttributeValue) (*storage.PlanRecord, error) {
	r := &storage.PlanRecord{
		PlanID:      stringAttr(item, "plan_id"),
		RepoName:    stringAttr(item, "repo_name"),
		PlanContent: stringAttr(item, "plan_content"),
		RiskLevel:   stringAttr(item, "risk_level"),
	}
	if r.PlanID == "" {
		return nil, fmt.Errorf("item has no plan_id")
	}

	if ts := stringAttr(item, "timestamp"); ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("plan %s has invalid timestamp %q: %w", r.PlanID, ts, err)
		}
		r.Timestamp = parsed.UTC()
	}

	if v, ok := item["drift_detected"].(*types.AttributeValueMemberBOOL); ok {
		r.DriftDetected = v.Value
	}

	if v, ok := item["changes_detected"].(*types.AttributeValueMemberN); ok {
		n, err := strconv.Atoi(v.Value)
		if err != nil {
			return nil, fmt.Errorf("plan %s has invalid changes_detected %q: %w", r.PlanID, v.Value, err)
		}
		r.ChangesDetected = n
	}

	r.ChangeSummary = []string{}
	if v, ok := item["change_summary"].(*types.AttributeValueMemberL); ok {
		for _, entry := range v.Value {
			if s, ok := entry.(*types.AttributeValueMemberS); ok {
				r.ChangeSummary = append(r.ChangeSummary, s.Value)
			}
		}
	}

	return r, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
