package repository

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	appErrors "github.com/Spizzerp/CampaignNotionAutomation/internal/errors"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
)

func TestMemoryLedger_RecordIsFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	rec, err := l.Lookup(ctx, "c1", "k1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, l.Record(ctx, model.LedgerRecord{CampaignID: "c1", ChildID: "k1", EntryID: "e1"}))
	require.NoError(t, l.Record(ctx, model.LedgerRecord{CampaignID: "c1", ChildID: "k1", EntryID: "e2"}))

	rec, err = l.Lookup(ctx, "c1", "k1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "e1", rec.EntryID)

	rec, err = l.Lookup(ctx, "c2", "k1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNewLedger_Selection(t *testing.T) {
	l, err := NewLedger(context.Background(), config.LedgerConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryLedger{}, l)

	l, err = NewLedger(context.Background(), config.LedgerConfig{Type: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopLedger{}, l)

	_, err = NewLedger(context.Background(), config.LedgerConfig{Type: "etcd"})
	assert.ErrorIs(t, err, appErrors.ErrUnknownBackend)
}

// fakeDynamo keeps items in a map keyed by the "id" attribute.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	items map[string]map[string]*dynamodb.AttributeValue
	puts  int
}

func (f *fakeDynamo) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[*in.Key["id"].S]}, nil
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.puts++
	key := *in.Item["id"].S
	if _, exists := f.items[key]; exists && in.ConditionExpression != nil {
		return nil, awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "exists", nil)
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoLedger_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeDynamo{items: map[string]map[string]*dynamodb.AttributeValue{}}
	l := NewDynamoLedgerWithClient(fake, "ledger")

	created := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, l.Record(ctx, model.LedgerRecord{CampaignID: "c1", ChildID: "k1", EntryID: "e1", CreatedAt: created}))
	require.NoError(t, l.Record(ctx, model.LedgerRecord{CampaignID: "c1", ChildID: "k1", EntryID: "e2"}))
	assert.Equal(t, 2, fake.puts)

	rec, err := l.Lookup(ctx, "c1", "k1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "e1", rec.EntryID)
	assert.True(t, created.Equal(rec.CreatedAt))

	rec, err = l.Lookup(ctx, "c1", "k2")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
