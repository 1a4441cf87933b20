package server

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabeth/quickq/logging"
	"github.com/tabeth/quickq/store"
)

// newSDKTestServer runs the full router over a real SQLite metadata store
// and returns an SDK client pointed at it.
func newSDKTestServer(t *testing.T) (*sqs.Client, *App) {
	t.Helper()
	ctx := context.Background()

	metadata, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "quickq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { metadata.Close() })

	app := New(metadata, store.NewRegistry(), "", "myqueue", logging.NewTestLogger())
	require.NoError(t, app.Bootstrap(ctx))

	srv := httptest.NewServer(NewRouter(app, 5*time.Second, 1<<20))
	t.Cleanup(srv.Close)
	app.Hostname = srv.URL

	client := sqs.New(sqs.Options{
		Region:           "us-east-1",
		Credentials:      aws.AnonymousCredentials{},
		EndpointResolver: sqs.EndpointResolverFromURL(srv.URL),
		RetryMaxAttempts: 1,
	})
	return client, app
}

func TestSDK_CreateListSendReceive(t *testing.T) {
	client, _ := newSDKTestServer(t)
	ctx := context.Background()

	created, err := client.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: aws.String("orders"),
		Attributes: map[string]string{
			"DelaySeconds":       "10",
			"MaximumMessageSize": "262144",
		},
		Tags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(aws.ToString(created.QueueUrl), "/orders"))

	_, err = client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String("orders")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QueueAlreadyExists")

	_, err = client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String("other")})
	require.NoError(t, err)

	listed, err := client.ListQueues(ctx, &sqs.ListQueuesInput{})
	require.NoError(t, err)
	assert.Len(t, listed.QueueUrls, 2)

	listed, err = client.ListQueues(ctx, &sqs.ListQueuesInput{MaxResults: aws.Int32(1)})
	require.NoError(t, err)
	assert.Len(t, listed.QueueUrls, 1)

	listed, err = client.ListQueues(ctx, &sqs.ListQueuesInput{QueueNamePrefix: aws.String("oth")})
	require.NoError(t, err)
	require.Len(t, listed.QueueUrls, 1)
	assert.True(t, strings.HasSuffix(listed.QueueUrls[0], "/other"))

	var sentIDs []string
	for i := 0; i < 3; i++ {
		sent, err := client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    created.QueueUrl,
			MessageBody: aws.String(fmt.Sprintf("message %d", i)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"seq": {DataType: aws.String("Number"), StringValue: aws.String(fmt.Sprint(i))},
			},
		})
		require.NoError(t, err)
		sentIDs = append(sentIDs, aws.ToString(sent.MessageId))
	}

	got, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              created.QueueUrl,
		MaxNumberOfMessages:   10,
		MessageAttributeNames: []string{"All"},
	})
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	for i, m := range got.Messages {
		assert.Equal(t, sentIDs[i], aws.ToString(m.MessageId))
		sum := md5.Sum([]byte(aws.ToString(m.Body)))
		assert.Equal(t, hex.EncodeToString(sum[:]), aws.ToString(m.MD5OfBody))
		assert.Equal(t, fmt.Sprint(i), aws.ToString(m.MessageAttributes["seq"].StringValue))
	}

	got, err = client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{QueueUrl: created.QueueUrl})
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}

func TestSDK_UnknownQueue(t *testing.T) {
	client, app := newSDKTestServer(t)
	_, err := client.SendMessage(context.Background(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(app.Hostname + "/missing"),
		MessageBody: aws.String("hello"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NonExistentQueue")
}

func TestSDK_RehydratesAfterRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quickq.db")

	metadata, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = metadata.CreateQueue(ctx, store.QueueRecord{Name: "persisted", Type: "Standard"})
	require.NoError(t, err)
	require.NoError(t, metadata.Close())

	metadata, err = store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer metadata.Close()
	app := New(metadata, store.NewRegistry(), "http://localhost", "", nil)
	require.NoError(t, app.Bootstrap(ctx))
	assert.True(t, app.Queues.Has("persisted"))
	assert.False(t, app.Queues.Has("myqueue"))
}
