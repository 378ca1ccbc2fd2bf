package forward

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func relay(t *testing.T, raw string, kind Kind) string {
	t.Helper()
	src := bufio.NewReader(strings.NewReader(raw))
	var dst bytes.Buffer
	w := bufio.NewWriter(&dst)
	if err := Message(src, w, kind); err != nil {
		t.Fatalf("Message: %v", err)
	}
	return dst.String()
}

func TestContentLengthRoundTrip(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"
	if got := relay(t, raw, Response); got != raw {
		t.Fatalf("got %q, want %q", got, raw)
	}
}

func TestChunkedRoundTrip(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	if got := relay(t, raw, Response); got != raw {
		t.Fatalf("got %q, want %q", got, raw)
	}
}

func TestNoBodyRequestRoundTrip(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: x\r\n\r\n"
	if got := relay(t, raw, Request); got != raw {
		t.Fatalf("got %q, want %q", got, raw)
	}
}

func TestCloseDelimitedResponseRoundTrip(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nConnection: close\r\n\r\nthe rest of the bytes until EOF"
	if got := relay(t, raw, Response); got != raw {
		t.Fatalf("got %q, want %q", got, raw)
	}
}

func TestRequestWithNoLengthHasNoBody(t *testing.T) {
	// A request with no Content-Length and no chunked encoding must not
	// consume bytes past the header block, even if more bytes follow on
	// the wire (e.g. pipelined data or a body the client had no business
	// sending).
	raw := "GET / HTTP/1.1\r\nHost: x\r\n\r\n"
	trailing := "extra-bytes-not-part-of-this-message"
	src := bufio.NewReader(strings.NewReader(raw + trailing))
	var dst bytes.Buffer
	w := bufio.NewWriter(&dst)
	if err := Message(src, w, Request); err != nil {
		t.Fatalf("Message: %v", err)
	}
	if dst.String() != raw {
		t.Fatalf("got %q, want %q", dst.String(), raw)
	}
	rest, _ := src.Peek(len(trailing))
	if string(rest) != trailing {
		t.Fatalf("expected untouched trailing bytes, got %q", rest)
	}
}

func TestMalformedChunkSizeAborts(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nZZZ\r\nhello\r\n0\r\n\r\n"
	src := bufio.NewReader(strings.NewReader(raw))
	var dst bytes.Buffer
	w := bufio.NewWriter(&dst)
	if err := Message(src, w, Response); err == nil {
		t.Fatal("expected error for malformed chunk size")
	}
}

func TestCaseInsensitiveHeaders(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nCONTENT-LENGTH: 2\r\n\r\nhi"
	if got := relay(t, raw, Response); got != raw {
		t.Fatalf("got %q, want %q", got, raw)
	}
}

func TestMalformedContentLengthIgnored(t *testing.T) {
	// A malformed Content-Length leaves contentLength at -1; for a
	// request that means no body is relayed.
	raw := "POST / HTTP/1.1\r\nContent-Length: notanumber\r\n\r\n"
	if got := relay(t, raw, Request); got != raw {
		t.Fatalf("got %q, want %q", got, raw)
	}
}
