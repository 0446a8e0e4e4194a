package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
)

// DynamoLedger stores records in a DynamoDB table keyed by "id"
// (campaign ID and child ID joined with '#').
type DynamoLedger struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoLedger creates a DynamoDB-backed ledger. The table must already exist.
func NewDynamoLedger(cfg config.LedgerConfig) (*DynamoLedger, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
	}

	// For local testing with DynamoDB Local
	if cfg.DynamoEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.DynamoEndpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewDynamoLedgerWithClient(dynamodb.New(sess), cfg.DynamoTable), nil
}

func NewDynamoLedgerWithClient(client dynamodbiface.DynamoDBAPI, tableName string) *DynamoLedger {
	return &DynamoLedger{client: client, tableName: tableName}
}

func (d *DynamoLedger) Lookup(ctx context.Context, campaignID, childID string) (*model.LedgerRecord, error) {
	result, err := d.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"id": {S: aws.String(ledgerKey(campaignID, childID))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger record: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var rec model.LedgerRecord
	if err := dynamodbattribute.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger record: %w", err)
	}
	return &rec, nil
}

// Record writes the item only if no item with the same key exists.
func (d *DynamoLedger) Record(ctx context.Context, rec model.LedgerRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	item, err := dynamodbattribute.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger record: %w", err)
	}
	item["id"] = &dynamodb.AttributeValue{S: aws.String(ledgerKey(rec.CampaignID, rec.ChildID))}

	_, err = d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return nil
		}
		return fmt.Errorf("failed to store ledger record: %w", err)
	}
	return nil
}

// Close is a no-op; the DynamoDB client holds no connection.
func (d *DynamoLedger) Close() error {
	return nil
}

var _ ChildLedger = (*DynamoLedger)(nil)
