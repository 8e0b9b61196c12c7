package payment

import (
	"errors"
	"testing"
)

func TestLabel_RoundTrip(t *testing.T) {
	tests := []Label{
		{UserEmail: "a@b.com", BookID: 5, PurchaseType: "download"},
		{UserEmail: "reader@example.ru", BookID: 1234567, PurchaseType: "ebook"},
		{UserEmail: "first_last@example.com", BookID: 9, PurchaseType: "download"},
		{UserEmail: "a__b_@x.y", BookID: 1, PurchaseType: "audio"},
	}

	for _, want := range tests {
		t.Run(want.String(), func(t *testing.T) {
			got, err := ParseLabel(EncodeLabel(want.UserEmail, want.BookID, want.PurchaseType))
			if err != nil {
				t.Fatalf("ParseLabel returned error: %v", err)
			}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestEncodeLabel_WireFormat(t *testing.T) {
	if got := EncodeLabel("a@b.com", 5, "download"); got != "a@b.com_5_download" {
		t.Errorf("EncodeLabel = %q, want %q", got, "a@b.com_5_download")
	}
}

func TestParseLabel_ExtraSegments(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"a@b.com_5_download_x", Label{UserEmail: "a@b.com", BookID: 5, PurchaseType: "download"}},
		{"a@b.com_5_ebook_promo_2024", Label{UserEmail: "a@b.com", BookID: 5, PurchaseType: "ebook"}},
		// 末尾からの分解で成立する場合はそちらを優先する
		{"first_last@b.com_7_ebook", Label{UserEmail: "first_last@b.com", BookID: 7, PurchaseType: "ebook"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLabel(tt.in)
			if err != nil {
				t.Fatalf("ParseLabel returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLabel_Malformed(t *testing.T) {
	tests := []string{
		"",
		"a@b.com",
		"a@b.com_5",
		"a@b.com_five_download",
		"_5_download",
		"a@b.com_5_",
		"a@b.com_-1_download",
		"a@b.com_0_download",
		"a@b.com__download",
		"a@b.com_five_download_x",
		"a@b.com_5__x",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLabel(in)
			if !errors.Is(err, ErrMalformedLabel) {
				t.Errorf("ParseLabel(%q) error = %v, want ErrMalformedLabel", in, err)
			}
		})
	}
}

func TestValidPurchaseType(t *testing.T) {
	if !ValidPurchaseType("download") {
		t.Error("download should be valid")
	}
	if ValidPurchaseType("") {
		t.Error("empty type should be invalid")
	}
	if ValidPurchaseType("gift_card") {
		t.Error("type containing separator should be invalid")
	}
}
