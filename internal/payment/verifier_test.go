package payment

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"testing"
)

const testSecret = "01234567890ABCDEF01234567890"

func sampleNotification() Notification {
	return Notification{
		NotificationType: "p2p-incoming",
		OperationID:      "1234567",
		Amount:           "300.00",
		Currency:         "643",
		Datetime:         "2011-07-01T09:00:00.000+04:00",
		Sender:           "41001XXXXXXXX",
		Codepro:          "false",
		Label:            "a@b.com_5_download",
	}
}

func signed(n Notification, secret string) Notification {
	sum := sha1.Sum([]byte(n.CanonicalString(secret)))
	n.SHA1Hash = hex.EncodeToString(sum[:])
	return n
}

func TestCanonicalString_FieldOrder(t *testing.T) {
	got := sampleNotification().CanonicalString("s3cret")
	want := "p2p-incoming&1234567&300.00&643&2011-07-01T09:00:00.000+04:00&41001XXXXXXXX&false&s3cret&a@b.com_5_download"
	if got != want {
		t.Errorf("CanonicalString =\n%q\nwant\n%q", got, want)
	}
}

// YooMoneyのドキュメントに記載されている例で検証する。
func TestVerify_ProviderDocumentedExample(t *testing.T) {
	n := Notification{
		NotificationType: "p2p-incoming",
		OperationID:      "1234567",
		Amount:           "300.00",
		Currency:         "643",
		Datetime:         "2011-07-01T09:00:00.000+04:00",
		Sender:           "41001XXXXXXXX",
		Codepro:          "false",
		Label:            "YM.label.12345",
		SHA1Hash:         "a2ee4a9195f4a90e893cff4f62eeba0b662321f9",
	}

	if !NewVerifier(testSecret).Verify(n) {
		t.Error("expected documented example to verify")
	}
}

func TestVerify_ValidSignature(t *testing.T) {
	n := signed(sampleNotification(), testSecret)
	if !NewVerifier(testSecret).Verify(n) {
		t.Error("expected valid signature to verify")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	n := signed(sampleNotification(), "other-secret")
	if NewVerifier(testSecret).Verify(n) {
		t.Error("signature computed with another secret must not verify")
	}
}

func TestVerify_EmptySecretRejectsEverything(t *testing.T) {
	n := signed(sampleNotification(), "")
	if NewVerifier("").Verify(n) {
		t.Error("verifier without secret must reject")
	}
}

func TestVerify_MissingHash(t *testing.T) {
	if NewVerifier(testSecret).Verify(sampleNotification()) {
		t.Error("notification without sha1_hash must not verify")
	}
}

// どのフィールドを1文字変えても検証が失敗することを確認する。
func TestVerify_SingleCharacterMutationFlipsResult(t *testing.T) {
	v := NewVerifier(testSecret)
	base := signed(sampleNotification(), testSecret)

	mutate := func(s string) string {
		if s == "" {
			return "x"
		}
		b := []byte(s)
		if b[0] == 'x' {
			b[0] = 'y'
		} else {
			b[0] = 'x'
		}
		return string(b)
	}

	fields := map[string]func(n *Notification){
		"notification_type": func(n *Notification) { n.NotificationType = mutate(n.NotificationType) },
		"operation_id":      func(n *Notification) { n.OperationID = mutate(n.OperationID) },
		"amount":            func(n *Notification) { n.Amount = mutate(n.Amount) },
		"currency":          func(n *Notification) { n.Currency = mutate(n.Currency) },
		"datetime":          func(n *Notification) { n.Datetime = mutate(n.Datetime) },
		"sender":            func(n *Notification) { n.Sender = mutate(n.Sender) },
		"codepro":           func(n *Notification) { n.Codepro = mutate(n.Codepro) },
		"label":             func(n *Notification) { n.Label = mutate(n.Label) },
		"sha1_hash":         func(n *Notification) { n.SHA1Hash = mutate(n.SHA1Hash) },
	}

	for name, fn := range fields {
		t.Run(name, func(t *testing.T) {
			n := base
			fn(&n)
			if v.Verify(n) {
				t.Errorf("mutating %s should fail verification", name)
			}
		})
	}
}

func TestParseNotification_DecodesForm(t *testing.T) {
	form := url.Values{}
	form.Set("notification_type", "card-incoming")
	form.Set("operation_id", "op-1")
	form.Set("amount", "199.00")
	form.Set("currency", "643")
	form.Set("datetime", "2024-05-01T10:00:00Z")
	form.Set("sender", "")
	form.Set("codepro", "false")
	form.Set("label", "a_b@c.com_5_download")
	form.Set("sha1_hash", "abc")

	n, err := ParseNotification(form.Encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Label != "a_b@c.com_5_download" {
		t.Errorf("Label = %q", n.Label)
	}
	if n.Datetime != "2024-05-01T10:00:00Z" {
		t.Errorf("Datetime = %q", n.Datetime)
	}
	if n.Amount != "199.00" || n.OperationID != "op-1" || n.SHA1Hash != "abc" {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestParseNotification_MissingFieldsAreEmpty(t *testing.T) {
	n, err := ParseNotification("label=x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.OperationID != "" || n.SHA1Hash != "" {
		t.Errorf("expected empty fields, got %+v", n)
	}
}

func TestParseNotification_InvalidEncoding(t *testing.T) {
	if _, err := ParseNotification("label=%zz"); err == nil {
		t.Error("expected error for invalid percent-encoding")
	}
}
