package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
)

// =====================================================
// VNPAY SIGNATURE
// =====================================================

// HashData builds the exact byte string VNPay signs:
//  1. every param except vnp_SecureHash / vnp_SecureHashType; empty values stay as "key="
//  2. keys sorted bytewise
//  3. key=phpURLEncode(value), joined with '&'
//
// The same string is used as the query string of the payment URL.
func HashData(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == paramSecureHash || k == paramSecureHashType {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+phpURLEncode(params[k]))
	}
	return strings.Join(parts, "&")
}

// Sign returns lowercase hex HMAC-SHA512 of HashData(params)
func Sign(params map[string]string, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(HashData(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the hash and compares in constant time, byte-exact.
func Verify(params map[string]string, secret string) bool {
	received := params[paramSecureHash]
	if received == "" {
		return false
	}
	expected := Sign(params, secret)
	return hmac.Equal([]byte(received), []byte(expected))
}

// BuildPaymentURL appends the signed query string to baseURL
func BuildPaymentURL(baseURL string, params map[string]string, secret string) string {
	return baseURL + "?" + HashData(params) + "&" + paramSecureHash + "=" + Sign(params, secret)
}

// phpURLEncode encodes like PHP urlencode / Python quote_plus: space -> '+'
func phpURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%20", "+")
}
