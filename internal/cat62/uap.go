// Package cat62 implements the EUROCONTROL ASTERIX Category 62 binary codec:
// fixed-point item encoding, FSPEC presence bitmaps, record assembly in UAP
// order and datablock framing.
package cat62

import "math"

// Category is the ASTERIX category byte carried by every CAT62 datablock.
const Category = 0x3E // 62

// SpareFRN is a defined spare slot in the CAT62 UAP. It can appear in an
// FSPEC but has no associated data bytes.
const SpareFRN = 11

// CAT62 data item identifiers (Edition 1.19).
const (
	ItemDataSource  = "I062/010"
	ItemTrackNumber = "I062/040"
	ItemTimeOfTrack = "I062/070"
	ItemPosition    = "I062/105"
	ItemSlantRange  = "I062/100"
	ItemVelocity    = "I062/185"
	ItemAccel       = "I062/210"
	ItemMode3A      = "I062/060"
	ItemTargetIdent = "I062/245"
	ItemDerivedData = "I062/380"
	ItemFlightLevel = "I062/136"
	ItemGeomAlt     = "I062/130"
	ItemROCD        = "I062/220"
)

// Per-item LSB scale factors in physical units per raw integer step.
const (
	lsbWGS84       = 180.0 / (1 << 25) // degrees
	lsbVelocity    = 0.25              // m/s
	lsbFlightLevel = 0.25              // FL
	lsbROCD        = 6.25              // ft/min
	lsbTime        = 1.0 / 128.0       // seconds
)

// DecodeFunc turns an item's raw bytes into named physical field values.
type DecodeFunc func(data []byte) map[string]float64

// HandlerFunc fully owns the decoding of one item: it receives the record
// buffer, the offset where the item starts and the datablock limit, and
// returns the offset past the item. Items with a handler bypass the
// fixed-width walk, which is how variable-length compound items are hooked
// in without touching the framing logic.
type HandlerFunc func(data []byte, offset, limit int, rec *Record) (int, error)

// Item describes one UAP entry: the FRN-ordered position, the encoded byte
// width and how (or whether) the item's bytes are decoded.
type Item struct {
	Name    string
	FRN     int
	Size    int        // fixed byte width; 0 when Handler owns the walk
	Decode  DecodeFunc // nil: bytes are skipped silently
	Handler HandlerFunc
}

// UAP is the User Application Profile: the immutable mapping between item
// names, Field Reference Numbers and item codecs. Build it once and share
// it; it is never mutated after construction.
type UAP struct {
	byFRN     map[int]Item
	frnByName map[string]int
	maxFRN    int
}

// NewUAP builds a profile from the given item definitions.
func NewUAP(items []Item) *UAP {
	u := &UAP{
		byFRN:     make(map[int]Item, len(items)),
		frnByName: make(map[string]int, len(items)),
	}
	for _, it := range items {
		u.byFRN[it.FRN] = it
		u.frnByName[it.Name] = it.FRN
		if it.FRN > u.maxFRN {
			u.maxFRN = it.FRN
		}
	}
	return u
}

// ItemByFRN looks up the item registered for a Field Reference Number.
func (u *UAP) ItemByFRN(frn int) (Item, bool) {
	it, ok := u.byFRN[frn]
	return it, ok
}

// FRN returns the Field Reference Number for an item name.
func (u *UAP) FRN(name string) (int, bool) {
	frn, ok := u.frnByName[name]
	return frn, ok
}

// DefaultUAP returns the CAT62 profile covering the first two FSPEC octets.
// Items without a decoder are skipped over during decode; their byte widths
// are still needed to keep the offset walk aligned. FRN 10 (I062/380,
// aircraft derived data) is a variable-length compound item handled by
// skipDerivedData.
func DefaultUAP() *UAP {
	return NewUAP([]Item{
		{Name: ItemDataSource, FRN: 1, Size: 2, Decode: decodeDataSource},
		{Name: ItemTrackNumber, FRN: 2, Size: 2, Decode: decodeTrackNumber},
		{Name: ItemTimeOfTrack, FRN: 3, Size: 3, Decode: decodeTimeOfTrack},
		{Name: ItemPosition, FRN: 4, Size: 8, Decode: decodePosition},
		{Name: ItemSlantRange, FRN: 5, Size: 6},
		{Name: ItemVelocity, FRN: 6, Size: 4, Decode: decodeVelocity},
		{Name: ItemAccel, FRN: 7, Size: 4},
		{Name: ItemMode3A, FRN: 8, Size: 2},
		{Name: ItemTargetIdent, FRN: 9, Size: 7},
		{Name: ItemDerivedData, FRN: 10, Handler: skipDerivedData},
		{Name: ItemFlightLevel, FRN: 12, Size: 2, Decode: decodeFlightLevel},
		{Name: ItemGeomAlt, FRN: 13, Size: 2},
		{Name: ItemROCD, FRN: 14, Size: 2, Decode: decodeROCD},
	})
}

func decodeDataSource(data []byte) map[string]float64 {
	return map[string]float64{
		"sac": float64(data[0]),
		"sic": float64(data[1]),
	}
}

func decodeTrackNumber(data []byte) map[string]float64 {
	raw := uint16(data[0])<<8 | uint16(data[1])
	return map[string]float64{"track_number": float64(raw & 0x0FFF)}
}

func decodeTimeOfTrack(data []byte) map[string]float64 {
	return map[string]float64{
		"time_of_track_seconds": DecodeInt(data, false, lsbTime),
	}
}

func decodePosition(data []byte) map[string]float64 {
	return map[string]float64{
		"lat": roundTo(DecodeInt(data[0:4], true, lsbWGS84), 8),
		"lon": roundTo(DecodeInt(data[4:8], true, lsbWGS84), 8),
	}
}

func decodeVelocity(data []byte) map[string]float64 {
	return map[string]float64{
		"vx": roundTo(DecodeInt(data[0:2], true, lsbVelocity), 4),
		"vy": roundTo(DecodeInt(data[2:4], true, lsbVelocity), 4),
	}
}

func decodeFlightLevel(data []byte) map[string]float64 {
	return map[string]float64{
		"measured_flight_level": roundTo(DecodeInt(data, true, lsbFlightLevel), 4),
	}
}

func decodeROCD(data []byte) map[string]float64 {
	return map[string]float64{
		"rocd": roundTo(DecodeInt(data, true, lsbROCD), 4),
	}
}

// skipDerivedData consumes only the 2-byte primary subfield indicator of
// I062/380 and marks the item as present but not decoded. Subfield walking
// is not implemented; register a replacement handler to decode it fully.
func skipDerivedData(data []byte, offset, limit int, rec *Record) (int, error) {
	if offset+2 > limit {
		return offset, &TruncatedFieldError{Item: ItemDerivedData, Offset: offset}
	}
	rec.Undecoded = append(rec.Undecoded, ItemDerivedData)
	return offset + 2, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
