// Package codec converts records to and from single lines of JSON.
package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rcliao/recall/internal/model"
)

// Record is an item plus its derived embedding.
type Record struct {
	Item      model.Item `json:"item"`
	Embedding []float32  `json:"embedding,omitempty"`
}

// MaxLineBytes bounds a single record line, newline excluded. Longer
// lines are refused on encode and skipped on decode.
const MaxLineBytes = 64 << 20

// ErrLineTooLong is returned by Encode for records over MaxLineBytes.
var ErrLineTooLong = errors.New("record line too long")

// Encode serializes r as one newline-terminated line. encoding/json escapes
// control characters inside strings, so the only raw newline is the
// terminator.
func Encode(r Record) ([]byte, error) {
	return encode(r, MaxLineBytes)
}

func encode(r Record, limit int) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record %q: %w", r.Item.ID, err)
	}
	if len(b) > limit {
		return nil, fmt.Errorf("encode record %q: %d bytes: %w", r.Item.ID, len(b), ErrLineTooLong)
	}
	return append(b, '\n'), nil
}

// EncodeAll serializes records back to back in order.
func EncodeAll(recs []Record) ([]byte, error) {
	var buf bytes.Buffer
	for _, r := range recs {
		b, err := Encode(r)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// Decode parses one line. ok is false when the line is not a JSON object
// with an "item" object whose id, kind, text and createdAt are strings and
// whose kind is valid.
func Decode(line []byte) (rec Record, ok bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return Record{}, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return Record{}, false
	}
	itemRaw, found := raw["item"]
	if !found {
		return Record{}, false
	}
	item, ok := decodeItem(itemRaw)
	if !ok {
		return Record{}, false
	}

	rec = Record{Item: item}
	if embRaw, found := raw["embedding"]; found {
		var emb []float32
		if err := json.Unmarshal(embRaw, &emb); err == nil {
			rec.Embedding = emb
		}
	}
	return rec, true
}

func decodeItem(data json.RawMessage) (model.Item, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return model.Item{}, false
	}
	for _, key := range []string{"id", "kind", "text", "createdAt"} {
		if !isString(fields[key]) {
			return model.Item{}, false
		}
	}

	var item model.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return model.Item{}, false
	}
	if !item.Kind.Valid() {
		return model.Item{}, false
	}
	return item, true
}

func isString(v json.RawMessage) bool {
	if len(v) == 0 || v[0] != '"' {
		return false
	}
	var s string
	return json.Unmarshal(v, &s) == nil
}

// DecodeAll reads every line from r and returns the valid records in order
// along with the number of non-blank lines that were skipped. Lines over
// MaxLineBytes count as skipped.
func DecodeAll(r io.Reader) (recs []Record, skipped int, err error) {
	return decodeLines(r, MaxLineBytes)
}

func decodeLines(r io.Reader, limit int) (recs []Record, skipped int, err error) {
	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	oversized := false
	for {
		chunk, rerr := br.ReadSlice('\n')
		if !oversized {
			n := len(line) + len(chunk)
			if bytes.HasSuffix(chunk, []byte{'\n'}) {
				n--
			}
			if n > limit {
				oversized = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(rerr, bufio.ErrBufferFull) {
			continue
		}
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, skipped, fmt.Errorf("read records: %w", rerr)
		}

		switch {
		case oversized:
			skipped++
		case len(bytes.TrimSpace(line)) == 0:
		default:
			if rec, ok := Decode(line); ok {
				recs = append(recs, rec)
			} else {
				skipped++
			}
		}
		line = line[:0]
		oversized = false

		if rerr != nil {
			return recs, skipped, nil
		}
	}
}
