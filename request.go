package ossv4signer

import (
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yuqiang-yuan/ossv4signer/internal/osssign"
)

// Method is the HTTP method of a pending operation.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPut    Method = "PUT"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
	MethodHead   Method = "HEAD"
)

// BodyKind tags the request body descriptor.
type BodyKind int

const (
	BodyEmpty BodyKind = iota
	BodyText
	BodyBytes
	BodyFile
)

// Body describes the request payload for the transport collaborator. The
// signer itself never reads it; the payload hash is the unsigned sentinel.
type Body struct {
	Kind  BodyKind
	Text  string
	Bytes []byte
	// FilePath with RangeLength > 0 means only [RangeStart, RangeStart+RangeLength)
	// of the file is sent.
	FilePath    string
	RangeStart  int64
	RangeLength int64
}

const defaultUserAgent = "ossv4signer/0.1"

// Request is a mutable description of one pending operation. Create one per
// operation, apply builder calls, hand it to exactly one signing path and
// discard it: signing embeds a timestamp, so a Request is never reused
// across two signing attempts.
//
// Header names are compared case-insensitively; keys are stored lower-cased
// and trimmed. Query keys and values are stored raw, encoding happens only
// during canonicalization. A repeated query key overwrites the earlier value.
type Request struct {
	method     Method
	bucket     string
	key        string
	headers    map[string]string
	additional map[string]struct{}
	query      map[string]string
	body       Body
}

// NewRequest returns a request seeded with the default header set: the
// client identifier and the unsigned-payload sentinel. The timestamp header
// is written by the signing step from an injected signing time, not here.
func NewRequest(method Method) *Request {
	r := &Request{
		method:     method,
		headers:    make(map[string]string),
		additional: make(map[string]struct{}),
		query:      make(map[string]string),
	}
	r.SetHeader("User-Agent", defaultUserAgent)
	r.SetHeader(osssign.ContentSha256Header, osssign.UnsignedPayload)
	return r
}

func (r *Request) SetMethod(method Method) *Request {
	r.method = method
	return r
}

// SetBucket targets the bucket. Bucket naming rules are the caller's to
// check before dispatch; the signer does not re-validate.
func (r *Request) SetBucket(bucket string) *Request {
	r.bucket = bucket
	return r
}

// SetObject targets an object key inside the bucket. The key may contain
// "/"-separated segments.
func (r *Request) SetObject(key string) *Request {
	r.key = key
	return r
}

func (r *Request) SetHeader(name, value string) *Request {
	r.headers[headerKey(name)] = value
	return r
}

// Header reports the stored value for a header name, case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.headers[headerKey(name)]
	return v, ok
}

// Headers returns a copy of the header set with lower-cased keys, for the
// transport that will carry the signed request.
func (r *Request) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

// AddAdditionalHeader marks a header name as mandatory-signed: it is folded
// into the canonical header block and announced to the server even when it
// would not qualify by default.
func (r *Request) AddAdditionalHeader(name string) *Request {
	r.additional[headerKey(name)] = struct{}{}
	return r
}

func (r *Request) SetQuery(key, value string) *Request {
	r.query[key] = value
	return r
}

// Query returns a copy of the query parameter set.
func (r *Request) Query() map[string]string {
	out := make(map[string]string, len(r.query))
	for k, v := range r.query {
		out[k] = v
	}
	return out
}

func (r *Request) Method() Method { return r.method }
func (r *Request) Bucket() string { return r.bucket }
func (r *Request) Object() string { return r.key }
func (r *Request) Body() Body { return r.body }

// SetBodyText attaches a text payload and sets Content-Length, plus a
// text/plain Content-Type unless the caller already chose one.
func (r *Request) SetBodyText(text string) *Request {
	r.body = Body{Kind: BodyText, Text: text}
	r.SetHeader("Content-Length", strconv.Itoa(len(text)))
	if _, ok := r.Header("Content-Type"); !ok {
		r.SetHeader("Content-Type", "text/plain;charset=utf-8")
	}
	return r
}

// SetBodyBytes attaches a binary payload and sets Content-Length, plus an
// octet-stream Content-Type unless the caller already chose one.
func (r *Request) SetBodyBytes(data []byte) *Request {
	r.body = Body{Kind: BodyBytes, Bytes: data}
	r.SetHeader("Content-Length", strconv.Itoa(len(data)))
	if _, ok := r.Header("Content-Type"); !ok {
		r.SetHeader("Content-Type", "application/octet-stream")
	}
	return r
}

// SetBodyFile attaches a file payload. Content-Type is guessed from the
// extension when possible. Content-Length is left to the transport, which
// is the layer that actually opens the file.
func (r *Request) SetBodyFile(path string) *Request {
	r.body = Body{Kind: BodyFile, FilePath: path}
	r.setFileContentType(path)
	return r
}

// SetBodyFileRange attaches a byte range of a file. The range length is
// statically known, so Content-Length is set here.
func (r *Request) SetBodyFileRange(path string, start, length int64) *Request {
	r.body = Body{Kind: BodyFile, FilePath: path, RangeStart: start, RangeLength: length}
	r.SetHeader("Content-Length", strconv.FormatInt(length, 10))
	r.setFileContentType(path)
	return r
}

func (r *Request) setFileContentType(path string) {
	if _, ok := r.Header("Content-Type"); ok {
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		r.SetHeader("Content-Type", ct)
	}
}

// osssignRequest exposes the request to the signing pipeline. Maps are
// shared on purpose: header-auth writes the timestamp header and the presign
// paths write their query parameters into this request, which is consumed by
// the one signing attempt it was built for.
func (r *Request) osssignRequest() *osssign.Request {
	return &osssign.Request{
		Method:            string(r.method),
		Bucket:            r.bucket,
		Key:               r.key,
		Headers:           r.headers,
		AdditionalHeaders: r.additional,
		Query:             r.query,
	}
}

func headerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
