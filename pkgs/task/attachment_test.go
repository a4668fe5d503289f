package task

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte("product,sale\nA,100\nB,50\n"),
		{0x00, 0xff, 0x10, 0x80, 0x7f},
		{},
	}

	for _, content := range cases {
		a, err := EncodeAttachment("data.csv", "text/csv", content)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(a.URL, "data:text/csv;base64,"))

		mediaType, decoded, err := DecodeDataURI(a.URL)
		assert.NoError(t, err)
		assert.Equal(t, "text/csv", mediaType)
		assert.Equal(t, content, decoded)
	}
}

func TestAttachmentSizeCeiling(t *testing.T) {
	big := make([]byte, MaxAttachmentSize+1)
	_, err := EncodeAttachment("huge.bin", "application/octet-stream", big)
	assert.Error(t, err)
}

func TestDecodeDataURIRejectsMalformed(t *testing.T) {
	for _, uri := range []string{
		"https://example.com/data.csv",
		"data:text/csv;base64",
		"data:text/csv,plain-not-base64",
		"data:text/csv;base64,%%%",
	} {
		_, _, err := DecodeDataURI(uri)
		assert.Error(t, err, uri)
	}
}
