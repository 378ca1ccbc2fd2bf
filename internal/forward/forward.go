// Package forward implements the HTTP/1.1 framing-aware byte relay used
// once per direction for every proxied request: enough of the header and
// body grammar to preserve exact framing, without buffering a whole body
// and without a full HTTP parser.
package forward

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// bufSize is the fixed buffer size used for body relays.
const bufSize = 8 * 1024

// Kind distinguishes a request from a response; only a response may use the
// close-delimited body strategy.
type Kind int

const (
	Request Kind = iota
	Response
)

// Message relays one HTTP/1.1 message (request or response) from src to
// dst: header phase then body phase, then flushes dst. It never alters the
// bytes it relays; only the Content-Length and Transfer-Encoding headers are
// inspected, and only to choose a body-framing strategy.
func Message(src *bufio.Reader, dst io.Writer, kind Kind) error {
	contentLength, chunked, err := relayHeaders(src, dst)
	if err != nil {
		return err
	}

	switch {
	case chunked:
		if err := relayChunked(src, dst); err != nil {
			return err
		}
	case contentLength > 0:
		if err := relayFixedLength(src, dst, contentLength); err != nil {
			return err
		}
	case kind == Response && contentLength == -1:
		if err := relayUntilEOF(src, dst); err != nil {
			return err
		}
	}

	if f, ok := dst.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// relayHeaders reads header lines one byte at a time from src, writing each
// byte through to dst unmodified, until the blank line that ends the header
// block. It returns the parsed Content-Length (-1 if absent or malformed)
// and whether Transfer-Encoding named chunked.
func relayHeaders(src *bufio.Reader, dst io.Writer) (contentLength int64, chunked bool, err error) {
	contentLength = -1
	var line bytes.Buffer

	for {
		b, rerr := src.ReadByte()
		if rerr != nil {
			return contentLength, chunked, rerr
		}
		if _, werr := dst.Write([]byte{b}); werr != nil {
			return contentLength, chunked, werr
		}

		if b == '\n' {
			text := strings.TrimRight(line.String(), "\r")
			if text == "" {
				return contentLength, chunked, nil
			}
			parseHeaderLine(text, &contentLength, &chunked)
			line.Reset()
			continue
		}
		if b != '\r' {
			line.WriteByte(b)
		}
	}
}

func parseHeaderLine(line string, contentLength *int64, chunked *bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return
	}
	name := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])

	switch strings.ToLower(name) {
	case "content-length":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n >= 0 {
			*contentLength = n
		}
	case "transfer-encoding":
		if strings.Contains(strings.ToLower(value), "chunked") {
			*chunked = true
		}
	}
}

// relayFixedLength copies exactly n bytes from src to dst through a
// fixed-size buffer. If src reaches end-of-stream before n is exhausted the
// body ends early; the shortfall is logged at debug level and is not a
// protocol error here.
func relayFixedLength(src io.Reader, dst io.Writer, n int64) error {
	buf := make([]byte, bufSize)
	remaining := n
	for remaining > 0 {
		toRead := int64(len(buf))
		if remaining < toRead {
			toRead = remaining
		}
		nr, rerr := src.Read(buf[:toRead])
		if nr > 0 {
			if _, werr := dst.Write(buf[:nr]); werr != nil {
				return werr
			}
			remaining -= int64(nr)
		}
		if rerr != nil {
			if rerr == io.EOF {
				if remaining > 0 {
					slog.Debug("forward: body ended before Content-Length was reached", "missing", remaining)
				}
				return nil
			}
			return rerr
		}
	}
	return nil
}

// relayUntilEOF copies from src to dst until src signals end-of-stream.
func relayUntilEOF(src io.Reader, dst io.Writer) error {
	buf := make([]byte, bufSize)
	_, err := io.CopyBuffer(dst, src, buf)
	if err == io.EOF {
		return nil
	}
	return err
}

// relayChunked relays a chunked-encoded body: chunk-size line, chunk data,
// trailing CRLF, repeated until a zero-size chunk, then exactly one more
// line (the terminating blank line, or the first trailer line when trailers
// are present; any further trailer lines are not relayed).
func relayChunked(src *bufio.Reader, dst io.Writer) error {
	buf := make([]byte, bufSize)

	for {
		sizeLine, err := relayLine(src, dst)
		if err != nil {
			return err
		}

		sizeText := sizeLine
		if i := strings.IndexByte(sizeText, ';'); i >= 0 {
			sizeText = sizeText[:i]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeText), 16, 64)
		if err != nil {
			return fmt.Errorf("forward: malformed chunk size %q: %w", sizeLine, err)
		}

		if size == 0 {
			// One line: the terminating CRLF, or the first trailer line.
			_, err := relayLine(src, dst)
			return err
		}

		remaining := size
		for remaining > 0 {
			toRead := int64(len(buf))
			if remaining < toRead {
				toRead = remaining
			}
			nr, rerr := src.Read(buf[:toRead])
			if nr > 0 {
				if _, werr := dst.Write(buf[:nr]); werr != nil {
					return werr
				}
				remaining -= int64(nr)
			}
			if rerr != nil {
				return rerr
			}
		}

		if _, err := relayLine(src, dst); err != nil {
			return err
		}
	}
}

// relayLine reads one line (through the terminating '\n') from src, writing
// every byte through to dst, and returns the line with any trailing CR
// stripped.
func relayLine(src *bufio.Reader, dst io.Writer) (string, error) {
	var line bytes.Buffer
	for {
		b, err := src.ReadByte()
		if err != nil {
			return "", err
		}
		if _, werr := dst.Write([]byte{b}); werr != nil {
			return "", werr
		}
		if b == '\n' {
			return strings.TrimRight(line.String(), "\r"), nil
		}
		if b != '\r' {
			line.WriteByte(b)
		}
	}
}
