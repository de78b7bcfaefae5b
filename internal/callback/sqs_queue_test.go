package callback

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	sent    []string
	deleted []string
	out     []types.Message
	err     error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, aws.ToString(in.MessageBody))
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.ReceiveMessageOutput{Messages: f.out}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSQueueRoundTrip(t *testing.T) {
	fake := &fakeSQS{out: []types.Message{{
		MessageId:     aws.String("m1"),
		Body:          aws.String("{}"),
		ReceiptHandle: aws.String("rh1"),
	}}}
	q := NewSQSQueue(fake, "https://sqs.local/queue")
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "hello"))
	assert.Equal(t, []string{"hello"}, fake.sent)

	msgs, err := q.Receive(ctx, 5, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)

	require.NoError(t, q.Delete(ctx, msgs[0].ReceiptHandle))
	assert.Equal(t, []string{"rh1"}, fake.deleted)
}

func TestSQSQueueWrapsErrors(t *testing.T) {
	q := NewSQSQueue(&fakeSQS{err: errors.New("throttled")}, "u")
	err := q.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNewSQSQueuePanicsWithoutURL(t *testing.T) {
	assert.Panics(t, func() { NewSQSQueue(&fakeSQS{}, "") })
}
