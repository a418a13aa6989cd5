// Package codec turns providers into byte streams and back.
//
// A stream is a sequence of frames:
//
//	"PRVD" | format version (1 byte) | payload length (uint32, big endian) | payload | SHA-256(payload)
//
// The payload is a msgpack record holding the provider name plus descriptive
// fields. Only the name is used on decode: it is resolved through a
// provider.Registry so the caller gets back the live, registered instance.
package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Chapsvision-dev/provider-identity/internal/provider"
)

const (
	magic         = "PRVD"
	formatVersion = byte(1)
	headerLen     = len(magic) + 1 + 4
	sumLen        = sha256.Size

	// MaxPayload bounds a single frame so a corrupt length cannot force a huge allocation.
	MaxPayload = 1 << 20
)

// record is the on-stream form of a provider.
type record struct {
	Name    string `msgpack:"name"`
	Version string `msgpack:"version,omitempty"`
	Info    string `msgpack:"info,omitempty"`
	ID      string `msgpack:"id,omitempty"`
}

// Encoder writes provider frames to an underlying writer.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// Encode writes one frame for p.
func (e *Encoder) Encode(p *provider.Provider) error {
	if p == nil {
		return provider.ErrNilProvider
	}
	if p.Name() == "" {
		return provider.ErrEmptyName
	}
	payload, err := msgpack.Marshal(&record{
		Name:    p.Name(),
		Version: p.Version().String(),
		Info:    p.Info(),
		ID:      p.ID().String(),
	})
	if err != nil {
		return err
	}
	if len(payload) > MaxPayload {
		return errors.New("encode provider stream: payload too large")
	}

	frame := make([]byte, 0, headerLen+len(payload)+sumLen)
	frame = append(frame, magic...)
	frame = append(frame, formatVersion)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)
	sum := sha256.Sum256(payload)
	frame = append(frame, sum[:]...)

	_, err = e.w.Write(frame)
	return err
}

// Decoder reads provider frames and resolves them through a registry.
type Decoder struct {
	r   io.Reader
	reg *provider.Registry
}

// NewDecoder returns a decoder resolving names through reg (provider.Default when nil).
func NewDecoder(r io.Reader, reg *provider.Registry) *Decoder {
	if reg == nil {
		reg = provider.Default
	}
	return &Decoder{r: r, reg: reg}
}

// Decode reads the next frame and returns the registered provider it names.
// It returns io.EOF when the stream ends on a frame boundary.
func (d *Decoder) Decode() (*provider.Provider, error) {
	rec, err := d.next()
	if err != nil {
		return nil, err
	}
	p, ok := d.reg.Lookup(rec.Name)
	if !ok {
		return nil, &UnresolvedProviderError{Name: rec.Name}
	}
	if rec.ID != "" && rec.ID != p.ID().String() {
		log.Debug().
			Str("action", "decode").
			Str("provider", rec.Name).
			Str("stream_id", rec.ID).
			Str("registered_id", p.ID().String()).
			Msg("stream written by another instance; resolved to registered one")
	}
	return p, nil
}

func (d *Decoder) next() (record, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		if err == io.EOF {
			return record{}, io.EOF
		}
		return record{}, &DecodeError{Reason: "truncated header", Err: err}
	}
	if string(hdr[:len(magic)]) != magic {
		return record{}, &DecodeError{Reason: "bad magic"}
	}
	if v := hdr[len(magic)]; v != formatVersion {
		return record{}, &DecodeError{Reason: fmt.Sprintf("unsupported format version %d", v)}
	}
	n := binary.BigEndian.Uint32(hdr[len(magic)+1:])
	if n == 0 || n > MaxPayload {
		return record{}, &DecodeError{Reason: "invalid payload length"}
	}

	body := make([]byte, int(n)+sumLen)
	if _, err := io.ReadFull(d.r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return record{}, &DecodeError{Reason: "truncated payload", Err: err}
	}
	payload, want := body[:n], body[n:]
	if got := sha256.Sum256(payload); !bytes.Equal(got[:], want) {
		return record{}, &DecodeError{Reason: "checksum mismatch"}
	}

	var rec record
	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return record{}, &DecodeError{Reason: "malformed payload", Err: err}
	}
	if rec.Name == "" {
		return record{}, &DecodeError{Reason: "missing provider name"}
	}
	return rec, nil
}

// Encode returns the single-frame stream for p.
func Encode(p *provider.Provider) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode resolves a single-frame stream through reg (provider.Default when nil).
func Decode(data []byte, reg *provider.Registry) (*provider.Provider, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty stream"}
	}
	r := bytes.NewReader(data)
	p, err := NewDecoder(r, reg).Decode()
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, &DecodeError{Reason: "trailing data after frame"}
	}
	return p, nil
}

// EncodeAll writes one frame per provider into a single stream.
func EncodeAll(ps ...*provider.Provider) ([]byte, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, p := range ps {
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeAll resolves every frame in data, in order.
func DecodeAll(data []byte, reg *provider.Registry) ([]*provider.Provider, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty stream"}
	}
	dec := NewDecoder(bytes.NewReader(data), reg)
	var out []*provider.Provider
	for {
		p, err := dec.Decode()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}
