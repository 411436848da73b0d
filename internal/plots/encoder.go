// Package plots converts between the JSON plot documents consumed by the
// service and CAT62 binary datablocks, adding the derived values (ISO
// timestamps, ground speed, heading) the binary format does not carry.
package plots

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/cat62"
)

// ErrInvalidJSON marks input that failed JSON parsing, as opposed to a
// well-formed document failing plot validation.
var ErrInvalidJSON = errors.New("invalid JSON")

// Default Data Source Identifier. A placeholder that an operational system
// replaces with the real radar site codes.
const (
	DefaultSAC = 0
	DefaultSIC = 1
)

// Document is the top-level JSON input. Only the plots array is encoded;
// other keys (id, centre_ctrl, fpl) are ignored.
type Document struct {
	Plots []PlotInput `json:"plots"`
}

// PlotInput is one plot entry. The item-keyed sub-objects mirror the CAT62
// item identifiers so operators can read the input against the spec.
type PlotInput struct {
	Position    *PositionInput    `json:"I062/105"`
	FlightLevel *FlightLevelInput `json:"I062/136"`
	Velocity    *VelocityInput    `json:"I062/185"`
	ROCD        *ROCDInput        `json:"I062/220"`
	TimeOfTrack string            `json:"time_of_track"`
}

// PositionInput carries WGS-84 coordinates in degrees.
type PositionInput struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// FlightLevelInput carries the measured flight level in FL units.
type FlightLevelInput struct {
	MeasuredFlightLevel *float64 `json:"measured_flight_level"`
}

// VelocityInput carries Cartesian velocity in m/s (East, North).
type VelocityInput struct {
	Vx *float64 `json:"vx"`
	Vy *float64 `json:"vy"`
}

// ROCDInput carries the rate of climb/descent in ft/min.
type ROCDInput struct {
	ROCD *float64 `json:"rocd"`
}

// Encoder turns JSON plot documents into CAT62 datablocks.
type Encoder struct {
	codec  *cat62.Codec
	logger *logrus.Logger
	sac    uint8
	sic    uint8
}

// NewEncoder creates an encoder with the given Data Source Identifier.
func NewEncoder(codec *cat62.Codec, logger *logrus.Logger, sac, sic uint8) *Encoder {
	return &Encoder{codec: codec, logger: logger, sac: sac, sic: sic}
}

// EncodeJSON parses a raw JSON document and encodes its plots.
func (e *Encoder) EncodeJSON(raw []byte) ([]byte, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return e.EncodePlots(doc)
}

// EncodePlots encodes every plot of the document as a CAT62 record, with
// track numbers assigned 1..N, and assembles a single datablock.
func (e *Encoder) EncodePlots(doc Document) ([]byte, error) {
	if len(doc.Plots) == 0 {
		return nil, fmt.Errorf("input JSON does not contain a non-empty 'plots' array")
	}

	e.logger.WithField("plots", len(doc.Plots)).Info("Encoding plots from input JSON")

	records := make([][]byte, 0, len(doc.Plots))
	for i, in := range doc.Plots {
		plot, err := e.buildPlot(in, uint16(i+1))
		if err != nil {
			return nil, fmt.Errorf("plot %d: %w", i+1, err)
		}
		records = append(records, e.codec.EncodeRecord(plot))
	}

	block := e.codec.EncodeDatablock(records)
	e.logger.WithFields(logrus.Fields{
		"records":     len(records),
		"total_bytes": len(block),
	}).Info("Assembled CAT62 datablock")
	return block, nil
}

// requiredField pulls a numeric value from a nested item, erroring on an
// absent item or field.
func requiredField(item, field string, value *float64) (float64, error) {
	if value == nil {
		return 0, fmt.Errorf("item '%s' is missing required field '%s'", item, field)
	}
	return *value, nil
}

func (e *Encoder) buildPlot(in PlotInput, trackNumber uint16) (cat62.Plot, error) {
	var p cat62.Plot

	if in.Position == nil {
		return p, fmt.Errorf("plot is missing required item '%s'", cat62.ItemPosition)
	}
	if in.FlightLevel == nil {
		return p, fmt.Errorf("plot is missing required item '%s'", cat62.ItemFlightLevel)
	}
	if in.Velocity == nil {
		return p, fmt.Errorf("plot is missing required item '%s'", cat62.ItemVelocity)
	}
	if in.ROCD == nil {
		return p, fmt.Errorf("plot is missing required item '%s'", cat62.ItemROCD)
	}

	lat, err := requiredField(cat62.ItemPosition, "lat", in.Position.Lat)
	if err != nil {
		return p, err
	}
	lon, err := requiredField(cat62.ItemPosition, "lon", in.Position.Lon)
	if err != nil {
		return p, err
	}
	fl, err := requiredField(cat62.ItemFlightLevel, "measured_flight_level", in.FlightLevel.MeasuredFlightLevel)
	if err != nil {
		return p, err
	}
	vx, err := requiredField(cat62.ItemVelocity, "vx", in.Velocity.Vx)
	if err != nil {
		return p, err
	}
	vy, err := requiredField(cat62.ItemVelocity, "vy", in.Velocity.Vy)
	if err != nil {
		return p, err
	}
	rocd, err := requiredField(cat62.ItemROCD, "rocd", in.ROCD.ROCD)
	if err != nil {
		return p, err
	}
	if in.TimeOfTrack == "" {
		return p, fmt.Errorf("plot is missing required field 'time_of_track'")
	}
	seconds, err := ISOToSecondsSinceMidnight(in.TimeOfTrack)
	if err != nil {
		return p, err
	}

	// Derived informational values; I062/185 carries raw Vx/Vy and the
	// consumer derives speed and heading.
	e.logger.WithFields(logrus.Fields{
		"track_number":    trackNumber,
		"lat":             lat,
		"lon":             lon,
		"flight_level":    fl,
		"vx":              vx,
		"vy":              vy,
		"ground_speed_ms": GroundSpeed(vx, vy),
		"heading_deg":     Heading(vx, vy),
		"rocd":            rocd,
		"time_s":          seconds,
	}).Debug("Plot derived values")

	return cat62.Plot{
		SAC:         e.sac,
		SIC:         e.sic,
		TrackNumber: trackNumber,
		TimeOfTrack: seconds,
		Lat:         lat,
		Lon:         lon,
		FlightLevel: fl,
		Vx:          vx,
		Vy:          vy,
		ROCD:        rocd,
	}, nil
}
