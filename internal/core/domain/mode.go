package domain

import (
	"encoding/json"
	"fmt"
)

// ModeKind identifies the display supervisor's top-level state.
type ModeKind uint8

// Display modes. The zero value is ModeDark.
const (
	ModeDark ModeKind = iota
	ModeLive
	ModeSlot
	ModeRoundRobin
)

// Descriptor mode tags.
const (
	TagBlack      = "black"
	TagLive       = "live"
	TagSlot       = "slot"
	TagRoundRobin = "round_robin"
)

// String returns the descriptor tag of the mode.
func (m ModeKind) String() string {
	switch m {
	case ModeDark:
		return TagBlack
	case ModeLive:
		return TagLive
	case ModeSlot:
		return TagSlot
	case ModeRoundRobin:
		return TagRoundRobin
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Mode is the active display mode. Slot is meaningful only for ModeSlot.
type Mode struct {
	Kind ModeKind
	Slot int
}

// Dark, Live, RoundRobin and ShowSlot construct modes.
var (
	Dark       = Mode{Kind: ModeDark}
	Live       = Mode{Kind: ModeLive}
	RoundRobin = Mode{Kind: ModeRoundRobin}
)

// ShowSlot returns the mode displaying slot i.
func ShowSlot(i int) Mode {
	return Mode{Kind: ModeSlot, Slot: i}
}

// String renders the mode for logs.
func (m Mode) String() string {
	if m.Kind == ModeSlot {
		return fmt.Sprintf("slot(%d)", m.Slot)
	}
	return m.Kind.String()
}

// Descriptor returns the persisted form of the mode.
func (m Mode) Descriptor() Descriptor {
	d := Descriptor{Mode: m.Kind.String()}
	if m.Kind == ModeSlot {
		slot := m.Slot
		d.Slot = &slot
	}
	return d
}

// Descriptor is the serializable snapshot of a display mode.
//
//	{"mode":"slot","slot":2}
type Descriptor struct {
	Mode string `json:"mode"`
	Slot *int   `json:"slot,omitempty"`
}

// Validate checks the descriptor and returns the mode it describes.
func (d Descriptor) Validate() (Mode, error) {
	switch d.Mode {
	case TagBlack, TagLive, TagRoundRobin:
		if d.Slot != nil {
			return Mode{}, ErrInvalidStateDescriptor.WithDetailsf("mode %q does not take a slot", d.Mode)
		}
		switch d.Mode {
		case TagBlack:
			return Dark, nil
		case TagLive:
			return Live, nil
		default:
			return RoundRobin, nil
		}
	case TagSlot:
		if d.Slot == nil {
			return Mode{}, ErrInvalidStateDescriptor.WithDetails("mode \"slot\" requires a slot")
		}
		if *d.Slot < 0 {
			return Mode{}, ErrInvalidStateDescriptor.WithDetailsf("negative slot %d", *d.Slot)
		}
		return ShowSlot(*d.Slot), nil
	case "":
		return Mode{}, ErrInvalidStateDescriptor.WithDetails("missing mode")
	default:
		return Mode{}, ErrInvalidStateDescriptor.WithDetailsf("unknown mode %q", d.Mode)
	}
}

// Equal reports whether two descriptors describe the same state.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.Mode != other.Mode {
		return false
	}
	if d.Slot == nil || other.Slot == nil {
		return d.Slot == nil && other.Slot == nil
	}
	return *d.Slot == *other.Slot
}

// String returns the JSON form of the descriptor.
func (d Descriptor) String() string {
	data, err := json.Marshal(d)
	if err != nil {
		return d.Mode
	}
	return string(data)
}

// ParseDescriptor decodes and validates a JSON descriptor.
func ParseDescriptor(data []byte) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, ErrInvalidStateDescriptor.WithCause(err)
	}
	if _, err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}
