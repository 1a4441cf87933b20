package params

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tabeth/quickq/models"
)

// ErrInvalidMessageAttribute is wrapped by every message attribute decoding error.
var ErrInvalidMessageAttribute = errors.New("invalid message attribute")

var messageAttributeNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Decimal numbers with an optional exponent; NaN, Inf and hex floats are rejected.
var numberValueRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// MessageAttributes turns MessageAttribute.N.* entries into typed values.
// The DataType defaults to String when only a plain Value was sent.
func MessageAttributes(entries []Entry) (map[string]models.MessageAttributeValue, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	attrs := make(map[string]models.MessageAttributeValue, len(entries))
	for _, e := range entries {
		if !isValidMessageAttributeName(e.Name) {
			return nil, fmt.Errorf("%w: name %q is not allowed", ErrInvalidMessageAttribute, e.Name)
		}
		dataType := e.Field("Value.DataType")
		if dataType == "" {
			dataType = "String"
		}
		v := models.MessageAttributeValue{DataType: dataType}
		switch {
		case strings.HasPrefix(dataType, "Binary"):
			raw, err := base64.StdEncoding.DecodeString(e.Field("Value.BinaryValue"))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: binary value is not base64", ErrInvalidMessageAttribute, e.Name)
			}
			v.BinaryValue = raw
		case strings.HasPrefix(dataType, "String"), strings.HasPrefix(dataType, "Number"):
			if !ValidMessageText(e.Value) {
				return nil, fmt.Errorf("%w: %s: value contains characters outside the allowed set", ErrInvalidMessageAttribute, e.Name)
			}
			if strings.HasPrefix(dataType, "Number") {
				if !numberValueRegex.MatchString(e.Value) {
					return nil, fmt.Errorf("%w: %s: value %q is not a number", ErrInvalidMessageAttribute, e.Name, e.Value)
				}
			}
			v.StringValue = e.Value
		default:
			return nil, fmt.Errorf("%w: %s: unsupported data type %q", ErrInvalidMessageAttribute, e.Name, dataType)
		}
		attrs[e.Name] = v
	}
	return attrs, nil
}

func isValidMessageAttributeName(name string) bool {
	if len(name) > 256 {
		return false
	}
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "aws.") || strings.HasPrefix(lower, "amazon.") {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, "..") {
		return false
	}
	return messageAttributeNameRegex.MatchString(name)
}

// ValidMessageText reports whether s is valid UTF-8 made only of the
// characters SQS accepts in bodies and attribute values: #x9, #xA, #xD and
// #x20 to #x10FFFF excluding surrogates and #xFFFE/#xFFFF.
func ValidMessageText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == 0x9, r == 0xA, r == 0xD:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}
