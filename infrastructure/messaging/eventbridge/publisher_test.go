package eventbridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"slidecanvas/domain/core/valueobjects"
	"slidecanvas/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBridge struct {
	calls    []*eventbridge.PutEventsInput
	failures []error
}

func (f *fakeBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in)
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func moves(n int) []events.DomainEvent {
	project := valueobjects.NewProjectID()
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewNodeMoved(project, 1, valueobjects.NewNodeID(),
			valueobjects.Point{}, valueobjects.Point{X: float64(i)}, time.Now())
	}
	return out
}

func newTestPublisher(client API) *Publisher {
	p := NewPublisher(client, "canvas-bus", zap.NewNop())
	p.backoff = time.Millisecond
	return p
}

func TestPublisher_BatchesByTen(t *testing.T) {
	fake := &fakeBridge{}
	p := newTestPublisher(fake)

	require.NoError(t, p.Publish(context.Background(), moves(23)))
	require.Len(t, fake.calls, 3)
	assert.Len(t, fake.calls[0].Entries, 10)
	assert.Len(t, fake.calls[1].Entries, 10)
	assert.Len(t, fake.calls[2].Entries, 3)

	entry := fake.calls[0].Entries[0]
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeNodeMoved, aws.ToString(entry.DetailType))
	assert.Equal(t, "canvas-bus", aws.ToString(entry.EventBusName))

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, events.TypeNodeMoved, detail["event_type"])
}

func TestPublisher_NothingToSend(t *testing.T) {
	fake := &fakeBridge{}
	require.NoError(t, newTestPublisher(fake).Publish(context.Background(), nil))
	assert.Empty(t, fake.calls)
}

func TestPublisher_RetriesThrottling(t *testing.T) {
	fake := &fakeBridge{failures: []error{
		&smithy.GenericAPIError{Code: "ThrottlingException", Fault: smithy.FaultClient},
	}}
	require.NoError(t, newTestPublisher(fake).Publish(context.Background(), moves(1)))
	assert.Len(t, fake.calls, 2)
}

func TestPublisher_DoesNotRetryClientErrors(t *testing.T) {
	fake := &fakeBridge{failures: []error{
		&smithy.GenericAPIError{Code: "ValidationException", Fault: smithy.FaultClient},
	}}
	err := newTestPublisher(fake).Publish(context.Background(), moves(1))
	require.Error(t, err)
	assert.Len(t, fake.calls, 1)
}

func TestPublisher_PartialFailure(t *testing.T) {
	client := &partialFailureBridge{}
	err := newTestPublisher(client).Publish(context.Background(), moves(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 events failed")
}

type partialFailureBridge struct{}

func (partialFailureBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	return &eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{EventId: aws.String("ok")},
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")},
		},
	}, nil
}
