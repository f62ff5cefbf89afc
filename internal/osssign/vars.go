package osssign

const (
	authHeaderPrefix = "OSS4-HMAC-SHA256"
	timeFormat       = "20060102T150405Z"
	shortTimeFormat  = "20060102"
	serviceName      = "oss"
	ossV4Request     = "aliyun_v4_request"

	dateHeader = "x-oss-date"

	signatureVersionQueryKey  = "x-oss-signature-version"
	dateQueryKey              = "x-oss-date"
	expiresQueryKey           = "x-oss-expires"
	credentialQueryKey        = "x-oss-credential"
	signatureQueryKey         = "x-oss-signature"
	additionalHeadersQueryKey = "x-oss-additional-headers"
)

// UnsignedPayload is the fixed content-sha256 sentinel. Payload hashing is
// never performed; the server is told so explicitly.
const UnsignedPayload = "UNSIGNED-PAYLOAD"

// ContentSha256Header carries the payload hash sentinel on every request.
const ContentSha256Header = "x-oss-content-sha256"

// defaultSignedHeaders is the allow list for building canonical headers.
// Header names explicitly marked as additional are retained on top of this.
var defaultSignedHeaders = rules{
	allowList{
		mapRule{
			"content-type": struct{}{},
			"content-md5":  struct{}{},
		},
	},
	patterns{"x-oss-"},
}
