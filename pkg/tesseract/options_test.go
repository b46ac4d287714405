package tesseract

import (
	"slices"
	"testing"
	"time"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	if o.DPI != 300 || o.PSM != 3 || o.OEM != 3 {
		t.Errorf("unexpected defaults: %+v", o)
	}
	if o.Timeout != 30*time.Second {
		t.Errorf("want 30s default timeout, got %v", o.Timeout)
	}
	if o.Lang != Languages {
		t.Errorf("want package default language %q, got %q", Languages, o.Lang)
	}
}

func TestOptionsArgs(t *testing.T) {
	o := NewOptions(
		WithLang("deu+eng"),
		WithDPI(150),
		WithPSM(6),
		WithOEM(1),
		WithVar("tessedit_char_whitelist", "0123456789"),
		WithUserWords("words.txt"),
	)
	want := []string{
		"-l", "deu+eng",
		"--dpi", "150",
		"--psm", "6",
		"--oem", "1",
		"--user-words", "words.txt",
		"-c", "tessedit_char_whitelist=0123456789",
	}
	if got := o.args(); !slices.Equal(got, want) {
		t.Errorf("args mismatch:\nwant %v\ngot  %v", want, got)
	}
}

func TestOptionsFingerprintStable(t *testing.T) {
	a := NewOptions(WithVar("b", "2"), WithVar("a", "1")).Fingerprint()
	b := NewOptions(WithVar("a", "1"), WithVar("b", "2")).Fingerprint()
	if a != b {
		t.Errorf("fingerprint not stable: %q vs %q", a, b)
	}
	c := NewOptions(WithDPI(72)).Fingerprint()
	if a == c {
		t.Error("different options must not share a fingerprint")
	}
}

func TestValidateLanguages(t *testing.T) {
	if ok, _ := ValidateLanguages("eng+deu"); !ok {
		t.Error("eng+deu should be valid")
	}
	if ok, _ := ValidateLanguages("Latin"); !ok {
		t.Error("script packs should be valid")
	}
	ok, reason := ValidateLanguages("eng+klingon")
	if ok {
		t.Error("unknown code should be rejected")
	}
	if reason == "" {
		t.Error("rejection should name the offending code")
	}
}
