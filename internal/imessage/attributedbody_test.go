package imessage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeAttributedBody(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		want string
	}{
		{"empty", nil, ""},
		{"control bytes only", []byte{0x01, 0x02, 0x03}, ""},
		{
			"text among control bytes",
			[]byte("\x04\x0bstreamtyped\x00hey this is the actual message\x00\x01x"),
			"hey this is the actual message",
		},
		{
			"metadata markers skipped",
			[]byte("NSString\x00__kIMMessagePartAttributeName\x00short real text\x00"),
			"short real text",
		},
		{
			"longest run wins",
			[]byte("ab\x00the longer candidate here\x00cd"),
			"the longer candidate here",
		},
		{"single char runs dropped", []byte("a\x00b\x00c"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeAttributedBody(tt.blob))
		})
	}
}
