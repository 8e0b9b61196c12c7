package payment

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
)

// Verifier はYooMoney通知のsha1_hashを検証する。
type Verifier struct {
	secret string
}

// NewVerifier はYooMoneyの通知シークレットを使うVerifierを生成する。
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Digest は通知の正準文字列に対するSHA-1ダイジェストを小文字の16進文字列で返す。
func (v *Verifier) Digest(n Notification) string {
	sum := sha1.Sum([]byte(n.CanonicalString(v.secret)))
	return hex.EncodeToString(sum[:])
}

// Verify は通知の署名が正しい場合にtrueを返す。副作用はない。
// シークレット未設定の場合は常にfalseを返す。
func (v *Verifier) Verify(n Notification) bool {
	if v.secret == "" || n.SHA1Hash == "" {
		return false
	}
	expected := v.Digest(n)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SHA1Hash)) == 1
}
