package scpi

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readDefiniteBlock strips the IEEE 488.2 block header and trailing
// terminator from the stream and returns the payload.
//
// The framing is '#', one digit giving the width of the length field, the
// decimal payload length, then the payload itself. '#0' marks an
// indefinite-length block read until the stream ends.
func readDefiniteBlock(r *bufio.Reader) ([]byte, error) {
	lead, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if lead != '#' {
		return nil, fmt.Errorf("bad block header: expected '#', got %q", lead)
	}

	widthByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	width := int(widthByte - '0')
	if width < 0 || width > 9 {
		return nil, fmt.Errorf("bad block header: length width %q", widthByte)
	}

	if width == 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return trimTerminator(data), nil
	}

	lenDigits := make([]byte, width)
	if _, err := io.ReadFull(r, lenDigits); err != nil {
		return nil, err
	}
	size, err := strconv.Atoi(string(lenDigits))
	if err != nil {
		return nil, fmt.Errorf("bad block header: length %q", lenDigits)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}

	// Consume the trailing terminator left on the wire, if any.
	for {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if b != '\n' && b != '\r' {
			r.UnreadByte()
			break
		}
	}
	return data, nil
}

func trimTerminator(data []byte) []byte {
	for len(data) > 0 {
		last := data[len(data)-1]
		if last != '\n' && last != '\r' {
			break
		}
		data = data[:len(data)-1]
	}
	return data
}

// decodeASCIIBlock turns a comma-separated list of decimal byte values
// into raw bytes.
func decodeASCIIBlock(line string) ([]byte, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return []byte{}, nil
	}
	fields := strings.Split(line, ",")
	data := make([]byte, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("bad ascii value %q: %w", f, err)
		}
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("ascii value %d out of byte range", v)
		}
		data = append(data, byte(v))
	}
	return data, nil
}
