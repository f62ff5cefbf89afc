package osssign

import (
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// escape percent-encodes s, keeping only the RFC 3986 unreserved set. Hex
// digits are upper case; the server rebuilds the exact same bytes.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
			c == '-' || c == '_' || c == '.' || c == '~' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

// escapeKeyPath splits the object key on "/", drops empty segments and
// percent-encodes each segment independently. A literal "/" inside the
// logical key is therefore never re-encoded, everything else reserved is.
func escapeKeyPath(key string) string {
	var segs []string
	for _, seg := range strings.Split(key, "/") {
		if seg == "" {
			continue
		}
		segs = append(segs, escape(seg))
	}
	return strings.Join(segs, "/")
}

func canonicalURI(bucket, key string) string {
	if bucket == "" {
		return "/"
	}
	if key == "" {
		return "/" + escape(bucket) + "/"
	}
	return "/" + escape(bucket) + "/" + escapeKeyPath(key)
}

// canonicalQuery encodes every key and value, sorts the pairs by encoded key
// and joins them with "&". A key with an empty value is emitted bare, with
// no trailing "=". An empty query set yields the empty string.
func canonicalQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	type pair struct {
		key   string
		value string
	}
	pairs := make([]pair, 0, len(query))
	for k, v := range query {
		pairs = append(pairs, pair{escape(k), escape(v)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.value == "" {
			parts = append(parts, p.key)
			continue
		}
		parts = append(parts, p.key+"="+p.value)
	}
	return strings.Join(parts, "&")
}

// canonicalHeaders builds the canonical header block. Retained are
// content-type, content-md5, any x-oss- prefixed header and any header named
// in additional. Keys are lower-cased, values whitespace-trimmed, lines
// sorted by key and terminated with "\n". An empty set yields exactly "\n".
func canonicalHeaders(headers map[string]string, additional map[string]struct{}) string {
	retained := make(map[string]string, len(headers))
	for k, v := range headers {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, ok := additional[lk]; !ok && !defaultSignedHeaders.IsValid(lk) {
			continue
		}
		retained[lk] = strings.TrimSpace(v)
	}
	if len(retained) == 0 {
		return "\n"
	}

	keys := make([]string, 0, len(retained))
	for k := range retained {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(retained[k])
		b.WriteByte('\n')
	}
	return b.String()
}

// additionalHeadersList is the lower-cased, sorted, ";"-joined list of
// header names the server must fold into its own canonicalization.
func additionalHeadersList(additional map[string]struct{}) string {
	if len(additional) == 0 {
		return ""
	}
	names := make([]string, 0, len(additional))
	for name := range additional {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	return strings.Join(names, ";")
}
