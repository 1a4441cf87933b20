package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabeth/quickq/models"
)

func TestMD5Hex(t *testing.T) {
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", md5Hex([]byte("hello")))
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", md5Hex(nil))
}

func TestAttributesMD5(t *testing.T) {
	assert.Empty(t, attributesMD5(nil))

	single := map[string]models.MessageAttributeValue{
		"color": {DataType: "String", StringValue: "blue"},
	}
	assert.Equal(t, "da1b33cc3cbfe8b1630921e78e6b9880", attributesMD5(single))

	mixed := map[string]models.MessageAttributeValue{
		"count": {DataType: "Number", StringValue: "42"},
		"color": {DataType: "String", StringValue: "blue"},
		"blob":  {DataType: "Binary", BinaryValue: []byte{1, 2, 3}},
	}
	assert.Equal(t, "857b05cef48a9ec6d6af922a5fe640f6", attributesMD5(mixed))
}
