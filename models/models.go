// Package models contains the data structures used throughout the application.
// These structures define the shape of API requests and responses, as well as the
// in-memory representation of messages held by the queue registry.
package models

// Queue type names persisted alongside each queue row.
const (
	QueueTypeStandard = "Standard"
	QueueTypeFifo     = "Fifo"
)

// FifoSuffix marks a queue name as belonging to the FIFO family.
const FifoSuffix = ".fifo"

// CreateQueueRequest maps to the input of the SQS CreateQueue action.
// Attributes and Tags are filled from the indexed form parameters
// (Attribute.N.Name / Tag.N.Key) after decoding.
type CreateQueueRequest struct {
	// QueueName is the name of the queue to be created.
	QueueName string `validate:"required,max=80"`
	// Attributes is a map of attributes for the queue (e.g., "VisibilityTimeout", "FifoQueue").
	Attributes map[string]string
	// Tags is a map of key-value pairs to attach to the queue.
	Tags map[string]string
}

// ListQueuesRequest defines the parameters for the SQS ListQueues action.
type ListQueuesRequest struct {
	// MaxResults is the maximum number of results to return in a single call.
	MaxResults int `validate:"min=1,max=1000"`
	// NextToken is accepted for compatibility; pagination is not honored.
	NextToken string
	// QueueNamePrefix is an optional filter to list only queues starting with this prefix.
	QueueNamePrefix string
}

// MessageAttributeValue represents the value of a custom message attribute in SQS.
type MessageAttributeValue struct {
	// DataType indicates the type of the attribute (e.g., "String", "Number", "Binary").
	DataType string
	// StringValue is set for String and Number attributes.
	StringValue string
	// BinaryValue is set for Binary attributes.
	BinaryValue []byte
}

// SendMessageRequest maps to the input of the SQS SendMessage action.
type SendMessageRequest struct {
	// QueueUrl is the URL of the target queue. Empty means the default queue.
	QueueUrl string
	// MessageBody is the body of the message.
	MessageBody string `validate:"required"`
	// DelaySeconds is validated but not applied; delayed delivery is not modeled.
	DelaySeconds *int `validate:"omitempty,min=0,max=900"`
	// MessageAttributes is a map of custom attributes for the message.
	MessageAttributes map[string]MessageAttributeValue `validate:"max=10"`
}

// ReceiveMessageRequest maps to the input of the SQS ReceiveMessage action.
type ReceiveMessageRequest struct {
	// QueueUrl is the URL of the source queue. Empty means the default queue.
	QueueUrl string
	// MaxNumberOfMessages is the maximum number of messages to return (1-10).
	MaxNumberOfMessages int `validate:"min=1,max=10"`
}

// Message is the in-memory representation of a queued message.
// It is owned by exactly one queue and is never mutated once enqueued.
type Message struct {
	ID              string
	Body            string
	MD5OfBody       string
	Attributes      map[string]MessageAttributeValue
	MD5OfAttributes string
	SentTimestamp   int64 // Unix milliseconds.
}
