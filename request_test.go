package ossv4signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestSeedsDefaults(t *testing.T) {
	req := NewRequest(MethodGet)

	ua, ok := req.Header("User-Agent")
	require.True(t, ok)
	assert.NotEmpty(t, ua)

	sentinel, ok := req.Header("x-oss-content-sha256")
	require.True(t, ok)
	assert.Equal(t, "UNSIGNED-PAYLOAD", sentinel)

	// the timestamp belongs to the signing step, not construction
	_, ok = req.Header("x-oss-date")
	assert.False(t, ok)
}

func TestHeadersCaseInsensitive(t *testing.T) {
	req := NewRequest(MethodPut)
	req.SetHeader("Content-Type", "text/plain")
	req.SetHeader("content-TYPE", "image/png")

	got, ok := req.Header("CONTENT-TYPE")
	require.True(t, ok)
	assert.Equal(t, "image/png", got)

	// stored once, under the lower-cased key
	headers := req.Headers()
	_, ok = headers["content-type"]
	assert.True(t, ok)
	_, ok = headers["Content-Type"]
	assert.False(t, ok)
}

func TestBuilderChaining(t *testing.T) {
	req := NewRequest(MethodGet).
		SetMethod(MethodHead).
		SetBucket("examplebucket").
		SetObject("dir/file.txt").
		SetHeader("x-oss-meta-k", "v").
		AddAdditionalHeader("ABC").
		SetQuery("versionId", "123")

	assert.Equal(t, MethodHead, req.Method())
	assert.Equal(t, "examplebucket", req.Bucket())
	assert.Equal(t, "dir/file.txt", req.Object())
	assert.Equal(t, "123", req.Query()["versionId"])
}

func TestQueryLastWriteWins(t *testing.T) {
	req := NewRequest(MethodGet)
	req.SetQuery("marker", "a")
	req.SetQuery("marker", "b")

	assert.Equal(t, map[string]string{"marker": "b"}, req.Query())
}

func TestSetBodyText(t *testing.T) {
	req := NewRequest(MethodPut).SetBodyText("hello")

	assert.Equal(t, BodyText, req.Body().Kind)
	assert.Equal(t, "hello", req.Body().Text)

	length, ok := req.Header("Content-Length")
	require.True(t, ok)
	assert.Equal(t, "5", length)

	ct, ok := req.Header("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "text/plain;charset=utf-8", ct)
}

func TestSetBodyTextKeepsCallerContentType(t *testing.T) {
	req := NewRequest(MethodPut).
		SetHeader("Content-Type", "application/json").
		SetBodyText(`{}`)

	ct, _ := req.Header("Content-Type")
	assert.Equal(t, "application/json", ct)
}

func TestSetBodyBytes(t *testing.T) {
	req := NewRequest(MethodPut).SetBodyBytes([]byte{1, 2, 3})

	assert.Equal(t, BodyBytes, req.Body().Kind)
	length, _ := req.Header("Content-Length")
	assert.Equal(t, "3", length)
	ct, _ := req.Header("Content-Type")
	assert.Equal(t, "application/octet-stream", ct)
}

func TestSetBodyFile(t *testing.T) {
	req := NewRequest(MethodPut).SetBodyFile("photo.png")

	assert.Equal(t, BodyFile, req.Body().Kind)
	assert.Equal(t, "photo.png", req.Body().FilePath)

	// the file is never opened here, so no length is known
	_, ok := req.Header("Content-Length")
	assert.False(t, ok)

	ct, ok := req.Header("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "image/png", ct)
}

func TestSetBodyFileRange(t *testing.T) {
	req := NewRequest(MethodPut).SetBodyFileRange("data.bin", 1024, 4096)

	body := req.Body()
	assert.Equal(t, BodyFile, body.Kind)
	assert.Equal(t, int64(1024), body.RangeStart)
	assert.Equal(t, int64(4096), body.RangeLength)

	length, ok := req.Header("Content-Length")
	require.True(t, ok)
	assert.Equal(t, "4096", length)
}

func TestHeadersReturnsCopy(t *testing.T) {
	req := NewRequest(MethodGet)
	headers := req.Headers()
	headers["x-oss-meta-leak"] = "nope"

	_, ok := req.Header("x-oss-meta-leak")
	assert.False(t, ok)
}
