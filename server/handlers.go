package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/tabeth/quickq/models"
	"github.com/tabeth/quickq/params"
	"github.com/tabeth/quickq/store"
)

// SQS queue name rules: up to 80 alphanumerics, hyphens and underscores,
// optionally followed by the .fifo suffix.
var queueNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,80}(\.fifo)?$`)

const (
	defaultMaxResults      = 1000
	defaultMaxMessages     = 1
	maxMessageBodyBytes    = 256 * 1024
	approximateReceiveOnce = "1"
)

// CreateQueueHandler validates the queue name and attributes, persists the
// queue and then registers it in memory.
func (app *App) CreateQueueHandler(w http.ResponseWriter, r *http.Request, form map[string]string) {
	req := models.CreateQueueRequest{QueueName: form["QueueName"]}
	if apiErr := app.checkStruct(req); apiErr != nil {
		app.sendErrorResponse(w, r, apiErr)
		return
	}
	if !queueNameRegex.MatchString(req.QueueName) {
		app.sendErrorResponse(w, r, models.MalformedRequest("InvalidParameterValue",
			"Can only include alphanumeric characters, hyphens, or underscores. 1 to 80 in length"))
		return
	}

	entries := params.Extract(form, "Attribute")
	if err := params.ValidateQueueAttributes(req.QueueName, entries); err != nil {
		app.sendErrorResponse(w, r, attributeError(err))
		return
	}
	req.Attributes = params.ToMap(entries)
	req.Tags = params.Tags(form)

	_, err := app.Metadata.CreateQueue(r.Context(), store.QueueRecord{
		Name:       req.QueueName,
		Type:       params.QueueType(req.QueueName),
		Attributes: req.Attributes,
		Tags:       req.Tags,
	})
	if err != nil {
		if errors.Is(err, store.ErrQueueAlreadyExists) {
			app.sendErrorResponse(w, r, queueAlreadyExists(req.QueueName))
			return
		}
		app.sendErrorResponse(w, r, models.StoreFailure("Failed to create queue", err))
		return
	}
	// The metadata store decides duplicates. The name may already be live in
	// memory as the default queue, which keeps its messages.
	app.Queues.EnsureQueue(req.QueueName, req.Tags)
	app.Logger.Infow("queue created", "queue", req.QueueName, "attributes", len(req.Attributes), "tags", len(req.Tags))

	app.writeXML(w, r, models.CreateQueueResponse{
		CreateQueueResult: models.CreateQueueResult{QueueUrl: app.queueURL(req.QueueName)},
		ResponseMetadata:  models.ResponseMetadata{RequestId: requestID(r)},
	})
}

// ListQueuesHandler lists queue URLs from the metadata store. NextToken is
// accepted but pagination is not implemented; results stop at MaxResults.
func (app *App) ListQueuesHandler(w http.ResponseWriter, r *http.Request, form map[string]string) {
	req := models.ListQueuesRequest{
		MaxResults:      defaultMaxResults,
		NextToken:       form["NextToken"],
		QueueNamePrefix: form["QueueNamePrefix"],
	}
	if v, ok := form["MaxResults"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			app.sendErrorResponse(w, r, invalidParameter("MaxResults"))
			return
		}
		req.MaxResults = n
	}
	if apiErr := app.checkStruct(req); apiErr != nil {
		app.sendErrorResponse(w, r, apiErr)
		return
	}

	names, err := app.Metadata.ListQueues(r.Context(), req.MaxResults, req.QueueNamePrefix)
	if err != nil {
		app.sendErrorResponse(w, r, models.StoreFailure("Failed to list queues", err))
		return
	}
	urls := make([]string, len(names))
	for i, name := range names {
		urls[i] = app.queueURL(name)
	}

	app.writeXML(w, r, models.ListQueuesResponse{
		ListQueuesResult: models.ListQueuesResult{QueueUrls: urls},
		ResponseMetadata: models.ResponseMetadata{RequestId: requestID(r)},
	})
}

// SendMessageHandler appends a message to the addressed queue.
// DelaySeconds is range-checked but delivery is never delayed.
func (app *App) SendMessageHandler(w http.ResponseWriter, r *http.Request, form map[string]string) {
	req := models.SendMessageRequest{
		QueueUrl:    form["QueueUrl"],
		MessageBody: form["MessageBody"],
	}
	if v, ok := form["DelaySeconds"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			app.sendErrorResponse(w, r, invalidParameter("DelaySeconds"))
			return
		}
		req.DelaySeconds = &n
	}
	attrs, err := params.MessageAttributes(params.Extract(form, "MessageAttribute"))
	if err != nil {
		app.sendErrorResponse(w, r, models.Wrap(models.KindMalformedRequest, "InvalidParameterValue", err.Error(), err))
		return
	}
	req.MessageAttributes = attrs

	if apiErr := app.checkStruct(req); apiErr != nil {
		app.sendErrorResponse(w, r, apiErr)
		return
	}
	if len(req.MessageBody) > maxMessageBodyBytes {
		app.sendErrorResponse(w, r, models.MalformedRequest("InvalidParameterValue",
			fmt.Sprintf("The message body must be between 1 and %d bytes long.", maxMessageBodyBytes)))
		return
	}
	if !params.ValidMessageText(req.MessageBody) {
		app.sendErrorResponse(w, r, models.MalformedRequest("InvalidMessageContents",
			"The message contains characters outside the allowed set."))
		return
	}

	queueName, apiErr := app.queueName(req.QueueUrl)
	if apiErr != nil {
		app.sendErrorResponse(w, r, apiErr)
		return
	}

	msg := models.Message{
		ID:              uuid.NewString(),
		Body:            req.MessageBody,
		MD5OfBody:       md5Hex([]byte(req.MessageBody)),
		Attributes:      req.MessageAttributes,
		MD5OfAttributes: attributesMD5(req.MessageAttributes),
		SentTimestamp:   time.Now().UnixMilli(),
	}
	if err := app.Queues.Push(queueName, msg); err != nil {
		if errors.Is(err, store.ErrQueueDoesNotExist) {
			app.sendErrorResponse(w, r, models.QueueNotFound())
			return
		}
		app.sendErrorResponse(w, r, models.StoreFailure("Failed to send message", err))
		return
	}

	app.writeXML(w, r, models.SendMessageResponse{
		SendMessageResult: models.SendMessageResult{
			MessageId:              msg.ID,
			MD5OfMessageBody:       msg.MD5OfBody,
			MD5OfMessageAttributes: msg.MD5OfAttributes,
		},
		ResponseMetadata: models.ResponseMetadata{RequestId: requestID(r)},
	})
}

// ReceiveMessageHandler pops up to MaxNumberOfMessages from the addressed
// queue. Popped messages are gone; there is no visibility timeout.
func (app *App) ReceiveMessageHandler(w http.ResponseWriter, r *http.Request, form map[string]string) {
	req := models.ReceiveMessageRequest{
		QueueUrl:            form["QueueUrl"],
		MaxNumberOfMessages: defaultMaxMessages,
	}
	if v, ok := form["MaxNumberOfMessages"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			app.sendErrorResponse(w, r, invalidParameter("MaxNumberOfMessages"))
			return
		}
		req.MaxNumberOfMessages = n
	}
	if apiErr := app.checkStruct(req); apiErr != nil {
		app.sendErrorResponse(w, r, apiErr)
		return
	}

	queueName, apiErr := app.queueName(req.QueueUrl)
	if apiErr != nil {
		app.sendErrorResponse(w, r, apiErr)
		return
	}
	msgs, err := app.Queues.PopN(queueName, req.MaxNumberOfMessages)
	if err != nil {
		if errors.Is(err, store.ErrQueueDoesNotExist) {
			app.sendErrorResponse(w, r, models.QueueNotFound())
			return
		}
		app.sendErrorResponse(w, r, models.StoreFailure("Failed to receive messages", err))
		return
	}

	out := make([]models.ResponseMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toResponseMessage(m))
	}
	app.writeXML(w, r, models.ReceiveMessageResponse{
		ReceiveMessageResult: models.ReceiveMessageResult{Messages: out},
		ResponseMetadata:     models.ResponseMetadata{RequestId: requestID(r)},
	})
}

func toResponseMessage(m models.Message) models.ResponseMessage {
	rm := models.ResponseMessage{
		MessageId:     m.ID,
		ReceiptHandle: uuid.NewString(),
		MD5OfBody:     m.MD5OfBody,
		Body:          m.Body,
		Attributes: []models.Attribute{
			{Name: "SentTimestamp", Value: strconv.FormatInt(m.SentTimestamp, 10)},
			{Name: "ApproximateReceiveCount", Value: approximateReceiveOnce},
		},
		MD5OfMessageAttributes: m.MD5OfAttributes,
	}
	names := make([]string, 0, len(m.Attributes))
	for name := range m.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := m.Attributes[name]
		xv := models.XMLAttributeValue{DataType: v.DataType, StringValue: v.StringValue}
		if v.BinaryValue != nil {
			xv.BinaryValue = base64.StdEncoding.EncodeToString(v.BinaryValue)
		}
		rm.MessageAttributes = append(rm.MessageAttributes, models.MessageAttribute{Name: name, Value: xv})
	}
	return rm
}

// checkStruct runs the struct tag validation and reports the first failing
// field as a query-protocol error.
func (app *App) checkStruct(v any) *models.APIError {
	err := app.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.MalformedRequest("InvalidParameterValue", err.Error())
	}
	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return models.MalformedRequest("MissingParameter", "The request must contain the parameter "+fe.Field()+".")
	}
	return invalidParameter(fe.Field())
}

func invalidParameter(name string) *models.APIError {
	return models.MalformedRequest("InvalidParameterValue", "Value for parameter "+name+" is invalid.")
}

func queueAlreadyExists(name string) *models.APIError {
	return models.New(models.KindQueueAlreadyExists, "QueueAlreadyExists",
		"A queue already exists with the same name: "+name)
}

func attributeError(err error) *models.APIError {
	var valErr *params.InvalidAttributeValueError
	if errors.As(err, &valErr) {
		return models.Wrap(models.KindInvalidAttribute, "InvalidAttributeValue", err.Error(), err)
	}
	var nameErr *params.InvalidAttributeError
	if errors.As(err, &nameErr) {
		return models.Wrap(models.KindInvalidAttribute, "InvalidAttributeName",
			"Unknown Attribute "+nameErr.Name+".", err)
	}
	return models.Wrap(models.KindInvalidAttribute, "InvalidAttributeName", err.Error(), err)
}
