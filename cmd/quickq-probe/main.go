// quickq-probe drives a running quickq server through the AWS SDK: it lists
// queues and, when asked, creates a queue and round-trips one message.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/tabeth/quickq/logging"
)

func main() {
	_ = godotenv.Load()

	var args struct {
		Endpoint string `arg:"-e,--endpoint,env:QUICKQ_ENDPOINT" default:"http://localhost:9324" help:"quickq base URL"`
		Region   string `arg:"--region,env:AWS_REGION" default:"us-east-1" help:"region sent to the server"`
		Queue    string `arg:"-q,--queue" help:"create this queue and send/receive one message on it"`
		Body     string `arg:"-b,--body" default:"hello from quickq-probe" help:"message body to send"`
		Prefix   string `arg:"--prefix" help:"QueueNamePrefix for ListQueues"`
	}
	arg.MustParse(&args)

	logger := logging.NewTestLogger()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	endpointResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			PartitionID:   "aws",
			URL:           args.Endpoint,
			SigningRegion: args.Region,
		}, nil
	})
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(args.Region),
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
		config.WithEndpointResolverWithOptions(endpointResolver),
	)
	if err != nil {
		log.Fatalf("probe: error creating aws cfg: %v", err)
	}
	client := sqs.NewFromConfig(awsCfg)

	if args.Queue != "" {
		if err := roundTrip(ctx, client, args.Queue, args.Body); err != nil {
			logger.Fatalw("round trip failed", "queue", args.Queue, "error", err)
		}
		logger.Infow("round trip ok", "queue", args.Queue)
	}

	input := &sqs.ListQueuesInput{}
	if args.Prefix != "" {
		input.QueueNamePrefix = aws.String(args.Prefix)
	}
	out, err := client.ListQueues(ctx, input)
	if err != nil {
		logger.Fatalw("list queues failed", "error", err)
	}
	for _, url := range out.QueueUrls {
		fmt.Println(url)
	}
}

func roundTrip(ctx context.Context, client *sqs.Client, queue, body string) error {
	created, err := client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(queue)})
	if err != nil {
		return fmt.Errorf("creating queue: %w", err)
	}
	sent, err := client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    created.QueueUrl,
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	got, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            created.QueueUrl,
		MaxNumberOfMessages: 1,
	})
	if err != nil {
		return fmt.Errorf("receiving message: %w", err)
	}
	if len(got.Messages) != 1 || aws.ToString(got.Messages[0].MessageId) != aws.ToString(sent.MessageId) {
		return fmt.Errorf("expected message %s back, got %d messages", aws.ToString(sent.MessageId), len(got.Messages))
	}
	return nil
}
