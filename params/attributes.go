package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tabeth/quickq/models"
)

// ErrInvalidAttribute matches every attribute error returned by this package.
var ErrInvalidAttribute = errors.New("invalid attribute")

// InvalidAttributeError reports an attribute name outside the allow-list.
type InvalidAttributeError struct {
	Name string
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %s", e.Name)
}

func (e *InvalidAttributeError) Is(target error) bool {
	return target == ErrInvalidAttribute
}

// InvalidAttributeValueError reports an allow-listed attribute with a bad value.
type InvalidAttributeValueError struct {
	Name   string
	Reason string
}

func (e *InvalidAttributeValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Name, e.Reason)
}

func (e *InvalidAttributeValueError) Is(target error) bool {
	return target == ErrInvalidAttribute
}

var queueAttributeNames = map[string]bool{
	"DelaySeconds":                  true,
	"MaximumMessageSize":            true,
	"MessageRetentionPeriod":        true,
	"Policy":                        true,
	"ReceiveMessageWaitTimeSeconds": true,
	"RedrivePolicy":                 true,
	"VisibilityTimeout":             true,
	"FifoQueue":                     true,
	"ContentBasedDeduplication":     true,
	"KmsMasterKeyId":                true,
	"KmsDataKeyReusePeriodSeconds":  true,
	"SqsManagedSseEnabled":          true,
}

var fifoAttributeNames = map[string]bool{
	"DeduplicationScope":  true,
	"FifoThroughputLimit": true,
}

// IsFifo reports whether the queue name carries the FIFO suffix.
func IsFifo(queueName string) bool {
	return strings.HasSuffix(queueName, models.FifoSuffix)
}

// QueueType derives the persisted queue type from its name.
func QueueType(queueName string) string {
	if IsFifo(queueName) {
		return models.QueueTypeFifo
	}
	return models.QueueTypeStandard
}

// ValidateQueueAttributes checks CreateQueue attributes in index order and
// stops at the first problem. Names must be on the allow-list (FIFO-only
// names need a .fifo queue name) and values must be in range.
func ValidateQueueAttributes(queueName string, entries []Entry) error {
	fifo := IsFifo(queueName)
	for _, e := range entries {
		if !queueAttributeNames[e.Name] && !(fifo && fifoAttributeNames[e.Name]) {
			return &InvalidAttributeError{Name: e.Name}
		}
	}
	for _, e := range entries {
		if reason := checkAttributeValue(e.Name, e.Value); reason != "" {
			return &InvalidAttributeValueError{Name: e.Name, Reason: reason}
		}
	}
	attrs := ToMap(entries)
	if !fifo && attrs["FifoQueue"] == "true" {
		return &InvalidAttributeValueError{Name: "FifoQueue", Reason: "queue name must end in .fifo"}
	}
	if attrs["FifoThroughputLimit"] == "perMessageGroupId" {
		if scope, ok := attrs["DeduplicationScope"]; ok && scope != "messageGroup" {
			return &InvalidAttributeValueError{Name: "FifoThroughputLimit", Reason: "perMessageGroupId requires DeduplicationScope messageGroup"}
		}
	}
	return nil
}

func checkAttributeValue(name, val string) string {
	switch name {
	case "DelaySeconds":
		return checkInt(val, 0, 900)
	case "MaximumMessageSize":
		return checkInt(val, 1024, 262144)
	case "MessageRetentionPeriod":
		return checkInt(val, 60, 1209600)
	case "ReceiveMessageWaitTimeSeconds":
		return checkInt(val, 0, 20)
	case "VisibilityTimeout":
		return checkInt(val, 0, 43200)
	case "KmsDataKeyReusePeriodSeconds":
		return checkInt(val, 60, 86400)
	case "FifoQueue", "ContentBasedDeduplication", "SqsManagedSseEnabled":
		if val != "true" && val != "false" {
			return "must be 'true' or 'false'"
		}
	case "Policy", "RedrivePolicy":
		if !json.Valid([]byte(val)) {
			return "must be a valid JSON object"
		}
	case "KmsMasterKeyId":
		if strings.TrimSpace(val) == "" {
			return "must not be empty"
		}
	case "DeduplicationScope":
		if val != "messageGroup" && val != "queue" {
			return "must be 'messageGroup' or 'queue'"
		}
	case "FifoThroughputLimit":
		if val != "perQueue" && val != "perMessageGroupId" {
			return "must be 'perQueue' or 'perMessageGroupId'"
		}
	}
	return ""
}

func checkInt(valStr string, min, max int) string {
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return "must be an integer"
	}
	if val < min || val > max {
		return fmt.Sprintf("must be between %d and %d", min, max)
	}
	return ""
}

// Tags extracts queue tags from both the Tag and Tags prefixes. Tag names
// are not validated. Tags entries override Tag entries with the same name.
func Tags(form map[string]string) map[string]string {
	tags := ToMap(Extract(form, "Tag"))
	for k, v := range ToMap(Extract(form, "Tags")) {
		tags[k] = v
	}
	return tags
}
