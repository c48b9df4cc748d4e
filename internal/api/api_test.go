package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)

	b, err := c.Marshal(&SubmitEntryRequest{Kind: "text", Text: "Rs 5"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"text","text":"Rs 5"}`, string(b))
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/diary.DiaryService/SubmitEntry", FullMethod("SubmitEntry"))
}

func TestServiceDesc(t *testing.T) {
	assert.Equal(t, ServiceName, DiaryServiceDesc.ServiceName)

	var names []string
	for _, m := range DiaryServiceDesc.Methods {
		names = append(names, m.MethodName)
	}
	assert.Equal(t, []string{
		"SubmitEntry", "GetEntry", "ListEntries", "DeleteEntry", "ListExpenses",
		"RequestAudioUpload", "AskQuestion", "GetQuota", "Ping",
	}, names)
}
