package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	if err != nil {
		t.Fatal(err)
	}
	if got != "a\nb" {
		t.Fatalf("got %q, want %q", got, "a\nb")
	}
}

func TestGetSecret(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte(" tok \n"), nil }
	var out bytes.Buffer
	got, err := GetSecret("Token: ", &out)
	if err != nil || got != "tok" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	if _, err := GetSecret("Token: ", &out); err == nil {
		t.Fatal("expected error")
	}
}
