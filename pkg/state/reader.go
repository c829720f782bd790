package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ormasoftchile/adbind/pkg/property"
)

// Querier runs the tool in query mode. *dsconfigad.Client implements it.
type Querier interface {
	Query(ctx context.Context) ([]byte, error)
}

// Reader produces Snapshots. It never issues mutating calls.
type Reader struct {
	Tool   Querier
	Decode Decoder
	Logger *slog.Logger
}

// NewReader returns a Reader decoding plist output.
func NewReader(tool Querier) *Reader {
	return &Reader{Tool: tool, Decode: DecodePlist}
}

// Read queries the tool and builds a fresh Snapshot.
func (r *Reader) Read(ctx context.Context) (*Snapshot, error) {
	out, err := r.Tool.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("query binding state: %w", err)
	}
	decode := r.Decode
	if decode == nil {
		decode = DecodePlist
	}
	doc, err := decode(out)
	if err != nil {
		return nil, fmt.Errorf("read binding state: %w", err)
	}
	return r.transform(flatten(doc)), nil
}

// Transform converts already-decoded query output into a Snapshot.
func Transform(doc map[string]any) *Snapshot {
	return (&Reader{}).transform(flatten(doc))
}

func (r *Reader) transform(flat map[string]any) *Snapshot {
	if len(flat) == 0 {
		return Empty()
	}
	props := make(map[property.Key]property.Value, len(flat))
	for label, raw := range flat {
		key, err := property.FromLabel(label)
		if err != nil {
			r.logger().Debug("ignoring unknown label", "label", label)
			continue
		}
		v, ok := property.FromNative(raw)
		if !ok {
			r.logger().Debug("ignoring unrepresentable value", "label", label, "type", fmt.Sprintf("%T", raw))
			continue
		}
		props[key] = v
	}
	if c, ok := props[property.Computer]; ok {
		props[property.Computer] = property.Scalar(chop(c.String()))
	}
	return NewSnapshot(props)
}

// chop drops the trailing artifact character dsconfigad appends to the
// computer account ("ws01$").
func chop(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(r[:len(r)-1])
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}
