package domain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Kind is the content kind held by a slot.
type Kind uint8

// Content kinds. The zero value is KindEmpty.
const (
	KindEmpty Kind = iota
	KindImage
	KindAnimation
	KindText
)

// Kinds lists every non-empty kind in declaration order.
var Kinds = []Kind{KindImage, KindAnimation, KindText}

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindImage:
		return "image"
	case KindAnimation:
		return "animation"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Ext returns the file extension used when exporting the kind.
// KindEmpty has no extension.
func (k Kind) Ext() string {
	switch k {
	case KindImage:
		return "png"
	case KindAnimation:
		return "gif"
	case KindText:
		return "txt"
	default:
		return ""
	}
}

// ContentType returns the MIME type served for the kind.
func (k Kind) ContentType() string {
	switch k {
	case KindImage:
		return "image/png"
	case KindAnimation:
		return "image/gif"
	case KindText:
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k <= KindText
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrInvalidKind.WithDetailsf("kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "empty", "":
		return KindEmpty, nil
	case "image", "img", "png":
		return KindImage, nil
	case "animation", "anim", "gif":
		return KindAnimation, nil
	case "text", "txt":
		return KindText, nil
	default:
		return KindEmpty, ErrInvalidKind.WithDetailsf("unknown kind %q", s)
	}
}

// KindForExt maps an export file extension back to its kind.
func KindForExt(ext string) (Kind, bool) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, k := range Kinds {
		if k.Ext() == ext {
			return k, true
		}
	}
	return KindEmpty, false
}

// Record is the content of one slot.
// Kind is KindEmpty iff Data is nil.
type Record struct {
	Kind Kind
	Data []byte
}

// EmptyRecord returns the record of a cleared slot.
func EmptyRecord() Record {
	return Record{Kind: KindEmpty}
}

// NewRecord builds a record and checks the kind/payload invariant.
// An empty payload is treated as absent.
func NewRecord(kind Kind, data []byte) (Record, error) {
	if !kind.Valid() {
		return Record{}, ErrInvalidKind.WithDetailsf("kind %d", uint8(kind))
	}
	if len(data) == 0 {
		data = nil
	}
	switch {
	case kind == KindEmpty && data != nil:
		return Record{}, ErrInvalidKind.WithDetails("empty slot cannot carry data")
	case kind != KindEmpty && data == nil:
		return Record{}, ErrInvalidKind.WithDetailsf("%s slot requires data", kind)
	}
	return Record{Kind: kind, Data: data}, nil
}

// IsEmpty reports whether the record holds no content.
func (r Record) IsEmpty() bool {
	return r.Kind == KindEmpty
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r.Data == nil {
		return Record{Kind: r.Kind}
	}
	return Record{Kind: r.Kind, Data: bytes.Clone(r.Data)}
}

// Equal reports whether both records have the same kind and payload.
func (r Record) Equal(other Record) bool {
	return r.Kind == other.Kind && bytes.Equal(r.Data, other.Data)
}

// Digest returns a stable fingerprint of the payload, or "" for empty slots.
func (r Record) Digest() string {
	if r.IsEmpty() {
		return ""
	}
	h1, h2 := murmur3.Sum128(r.Data)
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// SlotInfo summarizes a slot for listings.
type SlotInfo struct {
	Index  int    `json:"index"`
	Kind   Kind   `json:"kind"`
	Size   int    `json:"size"`
	Digest string `json:"digest,omitempty"`
}

// Info summarizes the record stored at index.
func (r Record) Info(index int) SlotInfo {
	return SlotInfo{
		Index:  index,
		Kind:   r.Kind,
		Size:   len(r.Data),
		Digest: r.Digest(),
	}
}
