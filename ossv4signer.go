package ossv4signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"hash"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yuqiang-yuan/ossv4signer/internal/osssign"
)

// Signer is the long-lived signing context of one OSS client: the access key
// pair, the region and the endpoint requests are addressed to. It must be
// treated as immutable once in use; rotate credentials by constructing a new
// Signer, never by mutating one that is shared. Concurrent reads are safe.
type Signer struct {
	AccessKeyID string
	// SecretAccessKeyHmacSha256 should return a new hash.Hash every time it is called.
	// The key for this hmac must be the string: "aliyun_v4"+AccessKeySecret
	// A common implementation will be to return hmac.New() from this function.
	SecretAccessKeyHmacSha256 func() hash.Hash
	Region                    string
	// Endpoint is the regional OSS endpoint, e.g. "oss-cn-hangzhou.aliyuncs.com".
	// A scheme prefix is honored; https is assumed otherwise.
	Endpoint string
	// Logger, when set, receives the canonical request and string-to-sign at
	// debug level. A canonicalization mismatch surfaces only as a rejected
	// signature at the server, so this is the only local view of what was
	// actually signed.
	Logger logrus.FieldLogger
}

// SignForHeader signs req for immediate, caller-executed use. The request's
// x-oss-date header is populated from the signing time and the Authorization
// and Date header values are returned. Signing time defaults to the current
// time unless injected with SigningTime.
func (s *Signer) SignForHeader(req *Request, opts ...Option) (authorization, date string) {
	signOpts := options{
		ts: time.Now(),
	}

	for _, opt := range opts {
		opt.setOption(&signOpts)
	}

	return s.internalSigner().SignHeader(req.osssignRequest(), signOpts.ts)
}

// Presign returns a complete presigned URL valid for the expire window,
// safe to hand to an unauthenticated HTTP client. Request headers never
// participate in the signature; only query-encoded parameters do.
func (s *Signer) Presign(req *Request, expires time.Duration, opts ...Option) string {
	signOpts := options{
		ts: time.Now(),
	}

	for _, opt := range opts {
		opt.setOption(&signOpts)
	}

	return s.internalSigner().Presign(req.osssignRequest(), expires, signOpts.ts)
}

// PresignRaw is Presign with the request's header set folded into the
// signature. It returns the signed URL together with the headers that must
// accompany it, for callers executing through a different HTTP stack.
func (s *Signer) PresignRaw(req *Request, expires time.Duration, opts ...Option) (string, http.Header) {
	signOpts := options{
		ts: time.Now(),
	}

	for _, opt := range opts {
		opt.setOption(&signOpts)
	}

	return s.internalSigner().PresignRaw(req.osssignRequest(), expires, signOpts.ts)
}

func (s *Signer) internalSigner() *osssign.Signer {
	return &osssign.Signer{
		AccessKeyID:               s.AccessKeyID,
		SecretAccessKeyHmacSha256: s.SecretAccessKeyHmacSha256,
		Region:                    s.Region,
		Endpoint:                  s.Endpoint,
		Logger:                    s.Logger,
	}
}

type options struct {
	ts time.Time
}

type Option interface {
	setOption(*options) error
}

type timeOpt struct {
	ts time.Time
}

func (o timeOpt) setOption(opts *options) error {
	opts.ts = o.ts
	return nil
}

// SigningTime pins the signing timestamp instead of reading the clock.
func SigningTime(ts time.Time) Option {
	return timeOpt{ts: ts}
}

// StaticAccessKeyHmac wraps an in-memory access key secret in the hash
// factory form the Signer consumes.
func StaticAccessKeyHmac(accessKeySecret string) func() hash.Hash {
	return func() hash.Hash {
		return hmac.New(sha256.New, []byte("aliyun_v4"+accessKeySecret))
	}
}

// FromEnvironment builds a Signer from OSS_ACCESS_KEY_ID,
// OSS_ACCESS_KEY_SECRET, OSS_REGION and OSS_ENDPOINT. Missing identity
// material is an error here, once, rather than a rejected signature later.
// OSS_ENDPOINT may be omitted; the region's public endpoint is assumed.
func FromEnvironment() (*Signer, error) {
	id := os.Getenv("OSS_ACCESS_KEY_ID")
	secret := os.Getenv("OSS_ACCESS_KEY_SECRET")
	if id == "" || secret == "" {
		return nil, fmt.Errorf("ossv4signer: OSS_ACCESS_KEY_ID and OSS_ACCESS_KEY_SECRET must be set")
	}

	region := os.Getenv("OSS_REGION")
	if region == "" {
		return nil, fmt.Errorf("ossv4signer: OSS_REGION must be set")
	}

	endpoint := os.Getenv("OSS_ENDPOINT")
	if endpoint == "" {
		endpoint = "oss-" + region + ".aliyuncs.com"
	}

	return &Signer{
		AccessKeyID:               id,
		SecretAccessKeyHmacSha256: StaticAccessKeyHmac(secret),
		Region:                    region,
		Endpoint:                  endpoint,
	}, nil
}
