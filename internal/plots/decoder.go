package plots

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/cat62"
)

// Position is the decoded WGS-84 position.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Velocity is the decoded Cartesian velocity.
type Velocity struct {
	VxMS float64 `json:"vx_ms"`
	VyMS float64 `json:"vy_ms"`
}

// TrackRecord is one decoded CAT62 record enriched with derived values the
// binary format does not carry.
type TrackRecord struct {
	RecordIndex    int       `json:"record_index"`
	TrackNumber    *int      `json:"track_number,omitempty"`
	Position       *Position `json:"position,omitempty"`
	FlightLevel    *float64  `json:"measured_flight_level_FL,omitempty"`
	Velocity       *Velocity `json:"velocity,omitempty"`
	GroundSpeedMS  *float64  `json:"ground_speed_ms,omitempty"`
	HeadingDeg     *float64  `json:"heading_deg,omitempty"`
	ROCDFtMin      *float64  `json:"rate_of_climb_descent_ftmin,omitempty"`
	TimeOfTrackSec *float64  `json:"time_of_track_seconds,omitempty"`
	TimeOfTrackISO *string   `json:"time_of_track_iso"`
	FSPECHex       string    `json:"fspec_hex"`
	UndecodedItems []string  `json:"undecoded_items,omitempty"`
}

// Response is the full decode result for one datablock.
type Response struct {
	Count   int           `json:"count"`
	Records []TrackRecord `json:"records"`
}

// Decoder turns CAT62 datablocks into enriched JSON-ready track records.
type Decoder struct {
	codec  *cat62.Codec
	logger *logrus.Logger
}

// NewDecoder creates a decoder over the given codec.
func NewDecoder(codec *cat62.Codec, logger *logrus.Logger) *Decoder {
	return &Decoder{codec: codec, logger: logger}
}

// DecodeDatablock parses a binary datablock and enriches every record.
// referenceDate (YYYY-MM-DD, optional) names the UTC day used to rebuild ISO
// timestamps; today's UTC date is used when empty.
func (d *Decoder) DecodeDatablock(raw []byte, referenceDate string) (Response, error) {
	records, err := d.codec.DecodeDatablock(raw)
	if err != nil {
		return Response{}, err
	}

	d.logger.WithField("records", len(records)).Info("Decoded raw records from binary datablock")

	out := Response{Count: len(records), Records: make([]TrackRecord, 0, len(records))}
	for i, rec := range records {
		out.Records = append(out.Records, d.enrich(rec, i+1, referenceDate))
	}
	return out, nil
}

func (d *Decoder) enrich(rec cat62.Record, index int, referenceDate string) TrackRecord {
	out := TrackRecord{
		RecordIndex:    index,
		FSPECHex:       rec.FSPECHex,
		UndecodedItems: rec.Undecoded,
	}

	if tn, ok := rec.Fields["track_number"]; ok {
		n := int(tn)
		out.TrackNumber = &n
	}
	lat, hasLat := rec.Fields["lat"]
	lon, hasLon := rec.Fields["lon"]
	if hasLat && hasLon {
		out.Position = &Position{Lat: lat, Lon: lon}
	}
	if fl, ok := rec.Fields["measured_flight_level"]; ok {
		out.FlightLevel = &fl
	}
	vx, hasVx := rec.Fields["vx"]
	vy, hasVy := rec.Fields["vy"]
	if hasVx && hasVy {
		out.Velocity = &Velocity{VxMS: vx, VyMS: vy}
		speed := round4(GroundSpeed(vx, vy))
		heading := round4(Heading(vx, vy))
		out.GroundSpeedMS = &speed
		out.HeadingDeg = &heading
	}
	if rocd, ok := rec.Fields["rocd"]; ok {
		out.ROCDFtMin = &rocd
	}
	if sec, ok := rec.Fields["time_of_track_seconds"]; ok {
		rounded := round4(sec)
		out.TimeOfTrackSec = &rounded
		// On conversion failure the ISO field stays null rather than
		// being dropped from the response.
		iso, err := SecondsSinceMidnightToISO(sec, referenceDate)
		if err != nil {
			d.logger.WithError(err).Warn("Failed to convert time to ISO")
		} else {
			out.TimeOfTrackISO = &iso
		}
	}

	return out
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
