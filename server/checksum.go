package server

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/tabeth/quickq/models"
)

// md5Hex is the integrity fingerprint SQS clients verify on bodies and
// attribute sets. It is not used for anything security related.
func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// hashAttributes produces the byte layout SQS hashes for MD5OfMessageAttributes:
// attributes sorted by name, each encoded as length-prefixed name, length-prefixed
// data type, a transport byte (1 string, 2 binary) and the length-prefixed value.
func hashAttributes(attributes map[string]models.MessageAttributeValue) []byte {
	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		v := attributes[k]
		writeLengthPrefixed(&buf, []byte(k))
		writeLengthPrefixed(&buf, []byte(v.DataType))
		if strings.HasPrefix(v.DataType, "Binary") {
			buf.WriteByte(2)
			writeLengthPrefixed(&buf, v.BinaryValue)
		} else {
			buf.WriteByte(1)
			writeLengthPrefixed(&buf, []byte(v.StringValue))
		}
	}
	return buf.Bytes()
}

func writeLengthPrefixed(buf *bytes.Buffer, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	buf.Write(n[:])
	buf.Write(b)
}

// attributesMD5 returns "" when there are no attributes, matching SQS which
// omits the field entirely.
func attributesMD5(attributes map[string]models.MessageAttributeValue) string {
	if len(attributes) == 0 {
		return ""
	}
	return md5Hex(hashAttributes(attributes))
}
