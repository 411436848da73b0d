package cat62

import (
	"encoding/hex"
	"strings"

	"github.com/sirupsen/logrus"
)

// Plot is one aircraft surveillance snapshot to encode as a CAT62 record.
type Plot struct {
	SAC         uint8
	SIC         uint8
	TrackNumber uint16 // low 12 bits are encoded; higher bits are dropped
	TimeOfTrack float64
	Lat         float64
	Lon         float64
	FlightLevel float64
	Vx          float64
	Vy          float64
	ROCD        float64
}

// Record is one decoded CAT62 record: a flat mapping of field name to
// physical value, the hex dump of the record's own FSPEC and the names of
// items that were present but not decoded.
type Record struct {
	FSPECHex  string
	Fields    map[string]float64
	Undecoded []string
}

// Codec encodes and decodes CAT62 records and datablocks against an
// injected UAP table. It is stateless across calls and safe for concurrent
// use once constructed.
type Codec struct {
	uap    *UAP
	logger *logrus.Logger
}

// NewCodec creates a codec over the default CAT62 profile.
func NewCodec(logger *logrus.Logger) *Codec {
	return NewCodecWithUAP(DefaultUAP(), logger)
}

// NewCodecWithUAP creates a codec over a caller-supplied profile.
func NewCodecWithUAP(uap *UAP, logger *logrus.Logger) *Codec {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Codec{uap: uap, logger: logger}
}

// encodedItems is the fixed item set produced per record, in ascending FRN
// (UAP) order. The concatenation order of item bytes must match this.
var encodedItems = []string{
	ItemDataSource,  // FRN 1
	ItemTrackNumber, // FRN 2
	ItemTimeOfTrack, // FRN 3
	ItemPosition,    // FRN 4
	ItemVelocity,    // FRN 6
	ItemFlightLevel, // FRN 12
	ItemROCD,        // FRN 14
}

// EncodeRecord assembles one record: FSPEC followed by the item encodings in
// UAP order. Out-of-range values saturate per the fixed-point codec; the
// track number is masked to its 12-bit field.
func (c *Codec) EncodeRecord(p Plot) []byte {
	frns := make([]int, 0, len(encodedItems))
	for _, name := range encodedItems {
		if frn, ok := c.uap.FRN(name); ok {
			frns = append(frns, frn)
		}
	}
	fspec := BuildFSPEC(frns)

	tn := p.TrackNumber & 0x0FFF

	// Item bytes follow the FSPEC in ascending FRN order: I062/010, /040,
	// /070, /105, /185, /136, /220. Each item is written only when the
	// profile knows it, so the byte stream always matches the FSPEC even
	// under an injected table that drops some of these items.
	rec := make([]byte, 0, len(fspec)+23)
	rec = append(rec, fspec...)
	for _, name := range encodedItems {
		if _, ok := c.uap.FRN(name); !ok {
			continue
		}
		switch name {
		case ItemDataSource:
			rec = append(rec, p.SAC, p.SIC)
		case ItemTrackNumber:
			rec = append(rec, byte(tn>>8), byte(tn))
		case ItemTimeOfTrack:
			rec = append(rec, EncodeInt(p.TimeOfTrack, 3, false, lsbTime)...)
		case ItemPosition:
			rec = append(rec, EncodeInt(p.Lat, 4, true, lsbWGS84)...)
			rec = append(rec, EncodeInt(p.Lon, 4, true, lsbWGS84)...)
		case ItemVelocity:
			rec = append(rec, EncodeInt(p.Vx, 2, true, lsbVelocity)...)
			rec = append(rec, EncodeInt(p.Vy, 2, true, lsbVelocity)...)
		case ItemFlightLevel:
			rec = append(rec, EncodeInt(p.FlightLevel, 2, true, lsbFlightLevel)...)
		case ItemROCD:
			rec = append(rec, EncodeInt(p.ROCD, 2, true, lsbROCD)...)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"track_number": tn,
		"fspec":        strings.ToUpper(hex.EncodeToString(fspec)),
		"record_bytes": len(rec),
	}).Debug("Encoded CAT62 record")

	return rec
}

// DecodeRecord parses one record starting at offset. The limit is the end of
// the enclosing datablock's declared length; any item read past it is a
// structural fault. It returns the decoded record and the offset of the next
// record.
//
// Per-item policy: the spare FRN consumes nothing; items with a handler own
// their walk; an FRN unknown to the UAP abandons the remainder of this
// record (prior fields are kept, the datablock decode continues); items
// without a decoder are skipped but still advance the offset.
func (c *Codec) DecodeRecord(data []byte, offset, limit int) (Record, int, error) {
	rec := Record{Fields: make(map[string]float64)}

	fspecStart := offset
	frns, offset, err := ParseFSPEC(data, fspecStart, limit)
	if err != nil {
		return rec, offset, err
	}
	rec.FSPECHex = strings.ToUpper(hex.EncodeToString(data[fspecStart:offset]))

	for _, frn := range frns {
		if frn == SpareFRN {
			continue
		}

		item, ok := c.uap.ItemByFRN(frn)
		if !ok {
			c.logger.WithFields(logrus.Fields{
				"frn":    frn,
				"offset": offset,
			}).Warn("Unknown FRN, abandoning remainder of record")
			break
		}

		if item.Handler != nil {
			offset, err = item.Handler(data, offset, limit, &rec)
			if err != nil {
				return rec, offset, err
			}
			continue
		}

		if offset+item.Size > limit {
			return rec, offset, &TruncatedFieldError{Item: item.Name, Offset: offset}
		}
		itemBytes := data[offset : offset+item.Size]
		offset += item.Size

		if item.Decode == nil {
			c.logger.WithFields(logrus.Fields{
				"item": item.Name,
				"size": item.Size,
			}).Debug("Skipped item without decoder")
			continue
		}
		for k, v := range item.Decode(itemBytes) {
			rec.Fields[k] = v
		}
	}

	return rec, offset, nil
}
