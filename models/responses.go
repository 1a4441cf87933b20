package models

import "encoding/xml"

// Namespace is the XML namespace of the 2012-11-05 SQS query API.
const Namespace = "http://queue.amazonaws.com/doc/2012-11-05/"

// ResponseMetadata is attached to every successful response.
type ResponseMetadata struct {
	RequestId string `xml:"RequestId"`
}

type CreateQueueResult struct {
	QueueUrl string `xml:"QueueUrl"`
}

// CreateQueueResponse is the XML document returned by CreateQueue.
type CreateQueueResponse struct {
	XMLName           xml.Name          `xml:"http://queue.amazonaws.com/doc/2012-11-05/ CreateQueueResponse"`
	CreateQueueResult CreateQueueResult `xml:"CreateQueueResult"`
	ResponseMetadata  ResponseMetadata  `xml:"ResponseMetadata"`
}

type ListQueuesResult struct {
	QueueUrls []string `xml:"QueueUrl"`
}

// ListQueuesResponse is the XML document returned by ListQueues.
type ListQueuesResponse struct {
	XMLName          xml.Name         `xml:"http://queue.amazonaws.com/doc/2012-11-05/ ListQueuesResponse"`
	ListQueuesResult ListQueuesResult `xml:"ListQueuesResult"`
	ResponseMetadata ResponseMetadata `xml:"ResponseMetadata"`
}

type SendMessageResult struct {
	MessageId              string `xml:"MessageId"`
	MD5OfMessageBody       string `xml:"MD5OfMessageBody"`
	MD5OfMessageAttributes string `xml:"MD5OfMessageAttributes,omitempty"`
}

// SendMessageResponse is the XML document returned by SendMessage.
type SendMessageResponse struct {
	XMLName           xml.Name          `xml:"http://queue.amazonaws.com/doc/2012-11-05/ SendMessageResponse"`
	SendMessageResult SendMessageResult `xml:"SendMessageResult"`
	ResponseMetadata  ResponseMetadata  `xml:"ResponseMetadata"`
}

// Attribute is a system attribute (e.g. SentTimestamp) of a received message.
type Attribute struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

// XMLAttributeValue is the wire form of MessageAttributeValue.
// BinaryValue carries base64 text.
type XMLAttributeValue struct {
	StringValue string `xml:"StringValue,omitempty"`
	BinaryValue string `xml:"BinaryValue,omitempty"`
	DataType    string `xml:"DataType"`
}

type MessageAttribute struct {
	Name  string            `xml:"Name"`
	Value XMLAttributeValue `xml:"Value"`
}

// ResponseMessage is a single message as returned by ReceiveMessage.
type ResponseMessage struct {
	MessageId              string             `xml:"MessageId"`
	ReceiptHandle          string             `xml:"ReceiptHandle"`
	MD5OfBody              string             `xml:"MD5OfBody"`
	Body                   string             `xml:"Body"`
	Attributes             []Attribute        `xml:"Attribute"`
	MD5OfMessageAttributes string             `xml:"MD5OfMessageAttributes,omitempty"`
	MessageAttributes      []MessageAttribute `xml:"MessageAttribute"`
}

type ReceiveMessageResult struct {
	Messages []ResponseMessage `xml:"Message"`
}

// ReceiveMessageResponse is the XML document returned by ReceiveMessage.
// An empty queue yields an empty ReceiveMessageResult.
type ReceiveMessageResponse struct {
	XMLName              xml.Name             `xml:"http://queue.amazonaws.com/doc/2012-11-05/ ReceiveMessageResponse"`
	ReceiveMessageResult ReceiveMessageResult `xml:"ReceiveMessageResult"`
	ResponseMetadata     ResponseMetadata     `xml:"ResponseMetadata"`
}

// ErrorDetail is the body of an ErrorResponse.
type ErrorDetail struct {
	Type    string `xml:"Type"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
	Detail  string `xml:"Detail"`
}

// ErrorResponse is the query-protocol error envelope understood by AWS clients.
type ErrorResponse struct {
	XMLName   xml.Name    `xml:"http://queue.amazonaws.com/doc/2012-11-05/ ErrorResponse"`
	Error     ErrorDetail `xml:"Error"`
	RequestId string      `xml:"RequestId"`
}
