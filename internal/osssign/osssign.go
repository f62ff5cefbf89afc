package osssign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Signer computes OSS V4 signatures. It holds no per-request state; every
// call builds an independent signing context, so a single Signer is safe for
// concurrent use.
type Signer struct {
	// SecretAccessKeyHmacSha256 should return a new hash.Hash every time it is called.
	// The key for this hmac must be the string: "aliyun_v4"+AccessKeySecret
	// A common implementation will be to return hmac.New() from this function.
	SecretAccessKeyHmacSha256 func() hash.Hash
	AccessKeyID               string
	Region                    string
	Endpoint                  string
	Logger                    logrus.FieldLogger
}

// Request is the canonical description of one pending operation, as handed
// over by the public request builder. Header keys are lower-cased and
// trimmed; query keys and values are never pre-encoded.
type Request struct {
	Method            string
	Bucket            string
	Key               string
	Headers           map[string]string
	AdditionalHeaders map[string]struct{}
	Query             map[string]string
}

type signMode int

const (
	modeHeader signMode = iota
	modePresign
	modePresignRaw
)

// SignHeader signs for the header-auth path: the timestamp is written into
// the request's x-oss-date header, the full header set participates in
// canonicalization, and the Authorization and Date header values are
// returned for the caller to attach.
func (s *Signer) SignHeader(req *Request, ts time.Time) (authorization, date string) {
	ctx := s.newCtx(req, modeHeader, 0, ts)
	ctx.build()
	return ctx.authorization, formatHTTPDate(ts)
}

// Presign signs for the presigned-URL path. Request headers never
// participate: the timestamp, expiry, algorithm version and credential are
// carried in query parameters, with the signature appended last. The result
// is a complete virtual-host style URL usable without any header payload.
func (s *Signer) Presign(req *Request, exp time.Duration, ts time.Time) string {
	ctx := s.newCtx(req, modePresign, exp, ts)
	ctx.build()
	return ctx.signedURL
}

// PresignRaw is Presign with the caller's header set folded into the signed
// result. The returned header map must be sent verbatim by whatever HTTP
// stack executes the URL. An x-oss-date header is inserted if absent so the
// map stays consistent with what was signed.
func (s *Signer) PresignRaw(req *Request, exp time.Duration, ts time.Time) (string, http.Header) {
	ctx := s.newCtx(req, modePresignRaw, exp, ts)
	ctx.build()

	hdr := make(http.Header, len(ctx.headers))
	for k, v := range ctx.headers {
		hdr.Set(k, v)
	}
	return ctx.signedURL, hdr
}

func (s *Signer) newCtx(req *Request, mode signMode, exp time.Duration, ts time.Time) *signingCtx {
	ctx := &signingCtx{
		Method:              req.Method,
		Bucket:              req.Bucket,
		Key:                 req.Key,
		headers:             req.Headers,
		additional:          req.AdditionalHeaders,
		query:               req.Query,
		Time:                ts,
		ExpireTime:          exp,
		mode:                mode,
		AccessKeyID:         s.AccessKeyID,
		Region:              s.Region,
		Endpoint:            s.Endpoint,
		SecretAccessKeyHMAC: s.SecretAccessKeyHmacSha256,
		Logger:              s.Logger,
	}

	if mode == modePresign {
		// Presigned URLs never bind headers. Drop them before anything is
		// canonicalized, whatever the caller put there.
		ctx.headers = map[string]string{}
	}
	if ctx.headers == nil {
		ctx.headers = map[string]string{}
	}
	if ctx.query == nil {
		ctx.query = map[string]string{}
	}
	return ctx
}

type signingCtx struct {
	Method string
	Bucket string
	Key    string

	headers    map[string]string
	additional map[string]struct{}
	query      map[string]string

	Time       time.Time
	ExpireTime time.Duration
	mode       signMode

	AccessKeyID         string
	Region              string
	Endpoint            string
	SecretAccessKeyHMAC func() hash.Hash
	Logger              logrus.FieldLogger

	credentialScope string
	canonicalURI    string
	canonicalQry    string
	canonicalHdrs   string
	additionalList  string
	canonicalString string
	stringToSign    string
	signature       string
	authorization   string
	signedURL       string
}

func (ctx *signingCtx) build() {
	ctx.buildTime()            // no depends
	ctx.buildCredentialScope() // no depends
	ctx.buildCanonicalString() // depends on time and scope query values
	ctx.buildStringToSign()    // depends on canonical string
	ctx.buildSignature()       // depends on string to sign

	if ctx.Logger != nil {
		ctx.Logger.WithField("signature", ctx.signature).
			Debugf("canonical request:\n%s\nstring to sign:\n%s", ctx.canonicalString, ctx.stringToSign)
	}

	if ctx.mode == modeHeader {
		parts := []string{
			authHeaderPrefix + " Credential=" + ctx.AccessKeyID + "/" + ctx.credentialScope,
		}
		if ctx.additionalList != "" {
			parts = append(parts, "AdditionalHeaders="+ctx.additionalList)
		}
		parts = append(parts, "Signature="+ctx.signature)
		ctx.authorization = strings.Join(parts, ",")
		return
	}

	ctx.signedURL = ctx.buildURL()
}

// buildTime writes the timestamp into its carrier: a header for header-auth,
// query parameters for both presign flavors. Raw presign additionally keeps
// an x-oss-date header, inserted only when the caller has not set one.
func (ctx *signingCtx) buildTime() {
	if ctx.mode == modeHeader {
		ctx.headers[dateHeader] = formatTime(ctx.Time)
		return
	}

	if ctx.mode == modePresignRaw {
		if _, ok := ctx.headers[dateHeader]; !ok {
			ctx.headers[dateHeader] = formatTime(ctx.Time)
		}
	}

	duration := int64(ctx.ExpireTime / time.Second)
	ctx.query[signatureVersionQueryKey] = authHeaderPrefix
	ctx.query[dateQueryKey] = formatTime(ctx.Time)
	ctx.query[expiresQueryKey] = strconv.FormatInt(duration, 10)
}

func (ctx *signingCtx) buildCredentialScope() {
	ctx.credentialScope = strings.Join([]string{
		formatShortTime(ctx.Time),
		ctx.Region,
		serviceName,
		ossV4Request,
	}, "/")

	if ctx.mode != modeHeader {
		ctx.query[credentialQueryKey] = ctx.AccessKeyID + "/" + ctx.credentialScope
	}
}

func (ctx *signingCtx) buildCanonicalString() {
	if ctx.mode != modeHeader && len(ctx.additional) > 0 {
		ctx.query[additionalHeadersQueryKey] = additionalHeadersList(ctx.additional)
	}

	ctx.canonicalURI = canonicalURI(ctx.Bucket, ctx.Key)
	ctx.canonicalQry = canonicalQuery(ctx.query)
	ctx.canonicalHdrs = canonicalHeaders(ctx.headers, ctx.additional)
	ctx.additionalList = additionalHeadersList(ctx.additional)

	// The header block carries its own trailing newline, so joining here
	// leaves a blank line between it and the additional-headers list. The
	// server reconstructs the request the same way; keep it bit-exact.
	ctx.canonicalString = strings.Join([]string{
		ctx.Method,
		ctx.canonicalURI,
		ctx.canonicalQry,
		ctx.canonicalHdrs,
		ctx.additionalList,
		UnsignedPayload,
	}, "\n")
}

func (ctx *signingCtx) buildStringToSign() {
	ctx.stringToSign = strings.Join([]string{
		authHeaderPrefix,
		formatTime(ctx.Time),
		ctx.credentialScope,
		hex.EncodeToString(hashSHA256([]byte(ctx.canonicalString))),
	}, "\n")
}

func (ctx *signingCtx) buildSignature() {
	key := ctx.deriveSigningKey(ctx.Time)
	ctx.signature = hex.EncodeToString(hmacSHA256(key, []byte(ctx.stringToSign)))
}

// buildURL assembles the absolute virtual-host style URL with the signature
// as the final query parameter.
func (ctx *signingCtx) buildURL() string {
	scheme := "https"
	host := ctx.Endpoint
	if i := strings.Index(host, "://"); i >= 0 {
		scheme = host[:i]
		host = host[i+len("://"):]
	}
	host = strings.TrimSuffix(host, "/")
	if ctx.Bucket != "" {
		host = ctx.Bucket + "." + host
	}

	path := "/"
	if ctx.Key != "" {
		path += escapeKeyPath(ctx.Key)
	}

	return scheme + "://" + host + path + "?" + ctx.canonicalQry +
		"&" + signatureQueryKey + "=" + ctx.signature
}

// deriveSigningKey scopes the long-lived secret to a day, a region and the
// service through a fixed four step HMAC chain.
func (ctx *signingCtx) deriveSigningKey(dt time.Time) []byte {
	secretHmac := ctx.SecretAccessKeyHMAC()
	secretHmac.Write([]byte(formatShortTime(dt)))
	kDate := secretHmac.Sum(nil)

	kRegion := hmacSHA256(kDate, []byte(ctx.Region))
	kService := hmacSHA256(kRegion, []byte(serviceName))
	signingKey := hmacSHA256(kService, []byte(ossV4Request))
	return signingKey
}

func formatTime(dt time.Time) string {
	return dt.UTC().Format(timeFormat)
}

func formatShortTime(dt time.Time) string {
	return dt.UTC().Format(shortTimeFormat)
}

func formatHTTPDate(dt time.Time) string {
	return dt.UTC().Format(http.TimeFormat)
}

func hashSHA256(data []byte) []byte {
	hash := sha256.New()
	hash.Write(data)
	return hash.Sum(nil)
}

func hmacSHA256(key []byte, data []byte) []byte {
	hash := hmac.New(sha256.New, key)
	hash.Write(data)
	return hash.Sum(nil)
}
