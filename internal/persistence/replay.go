package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/talgya/skirmish/internal/engine"
)

// Format is a replay encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFor picks the encoding from a file extension: .msgpack and .mp
// select msgpack, anything else JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	}
	return FormatJSON
}

// EncodeRecording serializes a recording. Both encodings use the JSON field
// names so renderers see the same keys either way.
func EncodeRecording(f Format, rec *engine.Recording) ([]byte, error) {
	switch f {
	case FormatJSON:
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode json recording: %w", err)
		}
		return b, nil
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("encode msgpack recording: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown replay format %q", f)
}

// DecodeRecording parses a recording produced by EncodeRecording.
func DecodeRecording(f Format, data []byte) (*engine.Recording, error) {
	var rec engine.Recording
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode json recording: %w", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode msgpack recording: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown replay format %q", f)
	}
	return &rec, nil
}

// WriteRecording writes a replay file, choosing the encoding from the
// file extension.
func WriteRecording(path string, rec *engine.Recording) error {
	data, err := EncodeRecording(FormatFor(path), rec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write replay: %w", err)
	}
	return nil
}

// ReadRecording reads a replay file written by WriteRecording.
func ReadRecording(path string) (*engine.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	return DecodeRecording(FormatFor(path), data)
}
