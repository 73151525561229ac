package persistence

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// Constants for the graph log binary protocol.
const (
	// MagicByte is the marker used to identify the start of a valid frame.
	// It helps in scanning for recovery if the file is heavily corrupted.
	MagicByte = 0xA5

	// HeaderSize is the fixed size of the frame metadata:
	// 1 byte (Magic) + 1 byte (OpCode) + 4 bytes (Length) + 4 bytes (CRC32) = 10 bytes.
	HeaderSize = 10

	// MaxPayloadSize bounds a frame payload. Node and edge payloads are a
	// couple of handles; anything larger is a damaged header.
	MaxPayloadSize = 4 << 20

	// OpNode records an actor. Payload: the handle.
	OpNode = 0x01
	// OpEdge records an interaction. Payload: uvarint(len(from)) + from + to.
	OpEdge = 0x02
)

var (
	// ErrInvalidMagic indicates the file stream lost synchronization or is not a valid log.
	ErrInvalidMagic = errors.New("invalid magic byte")
	// ErrChecksumMismatch indicates data corruption within the frame payload.
	ErrChecksumMismatch = errors.New("crc32 checksum mismatch")
	// ErrIncompleteFrame indicates the file ended abruptly (e.g., power loss during write).
	ErrIncompleteFrame = errors.New("incomplete frame")
	// ErrUnknownOp indicates a frame with an op code this version cannot apply.
	ErrUnknownOp = errors.New("unknown op code")
	// ErrMalformedPayload indicates a frame whose payload does not decode.
	ErrMalformedPayload = errors.New("malformed frame payload")
)

// Frame is one decoded log entry.
type Frame struct {
	Op      byte
	Payload []byte
}

// FrameWriter handles the safe writing of binary frames to an io.Writer.
type FrameWriter struct {
	w io.Writer
}

// NewFrameWriter creates a writer that wraps an underlying io.Writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame encodes the payload into a binary frame and writes it.
// Frame Format: [Magic(1)][OpCode(1)][Length(4)][CRC(4)][Payload(N)]
func (fw *FrameWriter) WriteFrame(op byte, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return ErrMalformedPayload
	}
	header := make([]byte, HeaderSize)
	header[0] = MagicByte
	header[1] = op
	binary.LittleEndian.PutUint32(header[2:6], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[6:10], crc32.ChecksumIEEE(payload))

	// With a bufio.Writer underneath these two writes become one syscall.
	if _, err := fw.w.Write(header); err != nil {
		return err
	}
	_, err := fw.w.Write(payload)
	return err
}

// ReadFrame reads the next frame from the reader.
// It performs validation of the Magic Byte and the CRC32 Checksum.
// Returns the frame, the total bytes read (header + payload), and an error.
// A clean end of stream at a frame boundary returns io.EOF.
func ReadFrame(r io.Reader) (Frame, int, error) {
	header := make([]byte, HeaderSize)

	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return Frame{}, 0, io.EOF
		}
		// Partial header: torn write.
		return Frame{}, 0, ErrIncompleteFrame
	}

	if header[0] != MagicByte {
		return Frame{}, HeaderSize, ErrInvalidMagic
	}

	length := binary.LittleEndian.Uint32(header[2:6])
	expectedCRC := binary.LittleEndian.Uint32(header[6:10])
	if length > MaxPayloadSize {
		return Frame{}, HeaderSize, ErrMalformedPayload
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, HeaderSize, ErrIncompleteFrame
	}

	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return Frame{}, HeaderSize + int(length), ErrChecksumMismatch
	}

	return Frame{Op: header[1], Payload: payload}, HeaderSize + int(length), nil
}

// EncodeEdge builds an OpEdge payload.
func EncodeEdge(from, to string) []byte {
	buf := binary.AppendUvarint(nil, uint64(len(from)))
	buf = append(buf, from...)
	return append(buf, to...)
}

// DecodeEdge parses an OpEdge payload.
func DecodeEdge(payload []byte) (from, to string, err error) {
	n, size := binary.Uvarint(payload)
	if size <= 0 || uint64(len(payload)-size) < n {
		return "", "", ErrMalformedPayload
	}
	rest := payload[size:]
	from, to = string(rest[:n]), string(rest[n:])
	if from == "" || to == "" {
		return "", "", ErrMalformedPayload
	}
	return from, to, nil
}
