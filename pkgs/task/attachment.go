package task

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// MaxAttachmentSize caps inline attachments. They are small sample
// datasets embedded in the payload itself, not a file transport.
const MaxAttachmentSize = 1 << 20

// Attachment is a named inline data reference. URL is a data URI, so
// the recipient needs no extra fetch to get the bytes.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func EncodeAttachment(name, mediaType string, data []byte) (Attachment, error) {
	if len(data) > MaxAttachmentSize {
		return Attachment{}, fmt.Errorf("attachment %s is %d bytes, max is %d", name, len(data), MaxAttachmentSize)
	}
	uri := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return Attachment{Name: name, URL: uri}, nil
}

// DecodeDataURI reverses EncodeAttachment. Decoded bytes round-trip
// exactly through encode/decode.
func DecodeDataURI(uri string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, b64, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI: no comma separator")
	}
	mediaType = strings.TrimSuffix(meta, ";base64")
	if mediaType == meta {
		return "", nil, fmt.Errorf("unsupported data URI encoding: %s", meta)
	}
	data, err = base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return mediaType, data, nil
}
