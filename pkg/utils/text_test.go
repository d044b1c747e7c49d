package utils

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
}

func TestTruncateUTF8(t *testing.T) {
	if TruncateUTF8("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if TruncateUTF8("hello", 0) != "hello" {
		t.Error("maxBytes 0 returns as-is")
	}
	if got := TruncateUTF8("hello world", 5); got != "hello" {
		t.Errorf("got %q", got)
	}

	// "café" is 5 bytes; cutting at 4 lands inside the 2-byte é.
	got := TruncateUTF8("café", 4)
	if got != "caf" {
		t.Errorf("got %q, want %q", got, "caf")
	}
	if !utf8.ValidString(got) {
		t.Errorf("result %q is not valid UTF-8", got)
	}

	// A legitimate replacement character at the boundary survives.
	s := "ab�"
	if got := TruncateUTF8(s, len(s)); got != s {
		t.Errorf("got %q, want %q", got, s)
	}
}
