package clients

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Signer produces the HMAC-SHA256 request signature the affiliate API expects:
// parameters sorted by name, concatenated as name+value, signed with the app
// secret, hex uppercase.
type Signer struct {
	appKey    string
	appSecret string
}

func NewSigner(appKey, appSecret string) *Signer {
	return &Signer{appKey: appKey, appSecret: appSecret}
}

func (s *Signer) AppKey() string {
	return s.appKey
}

// Sign signs the given parameter set. Pure: the caller supplies every
// parameter, including the timestamp.
func (s *Signer) Sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	mac := hmac.New(sha256.New, []byte(s.appSecret))
	mac.Write([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
