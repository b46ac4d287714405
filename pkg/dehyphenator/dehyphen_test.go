package dehyphenator

import (
	"bytes"
	"strings"
	"testing"
)

func TestSoftHyphenRemoved(t *testing.T) {
	got, err := String("recog-\nnition works")
	if err != nil {
		t.Fatal(err)
	}
	want := "recognition works\n"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestCompoundHyphenKept(t *testing.T) {
	// next line starts uppercase: the hyphen joins a compound
	got, err := String("Nord-\nRhein")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "-") {
		t.Errorf("compound hyphen was dropped: %q", got)
	}
}

func TestUppercaseBeforeHyphenKept(t *testing.T) {
	got, err := String("UNO-\nberichte")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "UNO-") {
		t.Errorf("hyphen after uppercase rune was dropped: %q", got)
	}
}

func TestFoldNewlines(t *testing.T) {
	var buf bytes.Buffer
	err := Dehyphenate(strings.NewReader("one\ntwo\nthree"), &buf, true)
	if err != nil {
		t.Fatal(err)
	}
	want := "one two three "
	if buf.String() != want {
		t.Errorf("want %q, got %q", want, buf.String())
	}
}

func TestEmptyAndHyphenOnlyLinesSkipped(t *testing.T) {
	got, err := String("one\n\n-\ntwo")
	if err != nil {
		t.Fatal(err)
	}
	want := "one\n\n\ntwo\n"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestOutputIsNFC(t *testing.T) {
	// 'e' followed by combining acute accent must come out composed
	got, err := String("café")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "café") {
		t.Errorf("output not NFC normalized: %q", got)
	}
}
