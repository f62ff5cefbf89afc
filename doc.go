/*
Package ossv4signer implements the Alibaba Cloud OSS V4 (OSS4-HMAC-SHA256)
request signing algorithm.

The algorithm is briefly described here.

Step 1: build a canonical request string in the format
`<METHOD>\n<URI>\n<QUERY>\n<HEADERS>\n<ADDITIONAL_HEADERS>\n<PAYLOAD>`.

  - `METHOD`: HTTP method in upper case.
  - `URI`: "/" when no bucket is addressed, "/<bucket>/" for a bucket, or
    "/<bucket>/<key>" for an object. The key is split on "/", empty segments
    are dropped and each segment is percent-encoded on its own, so a literal
    "/" in the key survives while every other reserved character is encoded.
  - `QUERY`: each key and value percent-encoded, pairs sorted by encoded key
    and joined with "&". A key with an empty value is emitted bare. An empty
    query set yields the empty string.
  - `HEADERS`: content-type, content-md5, every header whose lower-cased name
    starts with "x-oss-" and every name marked as additional, as sorted
    `name:value` lines. Names are lower-cased, values whitespace-trimmed.
    The block always ends with a newline; with no headers it is exactly "\n".
  - `ADDITIONAL_HEADERS`: the lower-cased, sorted, ";"-joined names the
    server must fold into its own reconstruction beyond the default set.
  - `PAYLOAD`: the fixed sentinel `UNSIGNED-PAYLOAD`; bodies are not hashed.

Step 2: build the string to sign
`OSS4-HMAC-SHA256\n<TIMESTAMP>\n<DATE>/<region>/oss/aliyun_v4_request\nhex(sha256(canonical request))`
where TIMESTAMP is the `20060102T150405Z` signing time and DATE its first
eight digits.

Step 3: derive the signing key by chaining HMAC-SHA256 four times: key
`"aliyun_v4"+secret` over DATE, then the region, then "oss", then
"aliyun_v4_request".

Step 4: the signature is `hex(hmac-sha256(signing key, string to sign))`.

For header-auth the signature travels in the Authorization header; for
presigned URLs the timestamp, expiry, credential and signature travel as
x-oss-* query parameters and headers are excluded from signing entirely.

The secret key never enters this package directly: a Signer carries a
factory returning a keyed hash.Hash, so the first HMAC of the chain can be
computed by an in-memory key or by external hardware such as a TPM.
*/
package ossv4signer
