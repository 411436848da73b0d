package cat62

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatablockFraming(t *testing.T) {
	codec := testCodec()

	r1 := codec.EncodeRecord(referencePlot())
	p2 := referencePlot()
	p2.TrackNumber = 2
	p2.Lat = -12.5
	r2 := codec.EncodeRecord(p2)

	block := codec.EncodeDatablock([][]byte{r1, r2})

	require.Len(t, block, 3+len(r1)+len(r2))
	assert.Equal(t, byte(Category), block[0])
	declared := int(block[1])<<8 | int(block[2])
	assert.Equal(t, len(block), declared)

	records, err := codec.DecodeDatablock(block)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1.0, records[0].Fields["track_number"])
	assert.Equal(t, 2.0, records[1].Fields["track_number"])
	assert.InDelta(t, -12.5, records[1].Fields["lat"], 1e-4)
}

func TestDecodeDatablockEmptyPayload(t *testing.T) {
	records, err := testCodec().DecodeDatablock([]byte{Category, 0x00, 0x03})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeDatablockWrongCategory(t *testing.T) {
	_, err := testCodec().DecodeDatablock([]byte{0x30, 0x00, 0x03})
	require.ErrorIs(t, err, ErrWrongCategory)
}

func TestDecodeDatablockTooShort(t *testing.T) {
	_, err := testCodec().DecodeDatablock([]byte{Category, 0x00})
	require.ErrorIs(t, err, ErrTruncatedDatablock)
}

func TestDecodeDatablockDeclaredLengthExceedsBuffer(t *testing.T) {
	codec := testCodec()
	block := codec.EncodeDatablock([][]byte{codec.EncodeRecord(referencePlot())})

	_, err := codec.DecodeDatablock(block[:len(block)-4])
	require.ErrorIs(t, err, ErrTruncatedDatablock)
}

func TestDecodeDatablockIgnoresTrailingBytes(t *testing.T) {
	// The declared length is the sole boundary; bytes past it are never
	// read, even when they look like garbage.
	codec := testCodec()
	block := codec.EncodeDatablock([][]byte{codec.EncodeRecord(referencePlot())})
	block = append(block, 0xDE, 0xAD, 0xBE, 0xEF)

	records, err := codec.DecodeDatablock(block)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDecodeDatablockTruncatedRecordAborts(t *testing.T) {
	codec := testCodec()
	r1 := codec.EncodeRecord(referencePlot())

	// Declared length cuts into the first record's position item.
	declared := 3 + 12
	block := append([]byte{Category, 0x00, byte(declared)}, r1[:12]...)

	_, err := codec.DecodeDatablock(block)
	require.Error(t, err)

	var truncated *TruncatedFieldError
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, ItemPosition, truncated.Item)
}

func TestDecodeDatablockUnknownFRNDoesNotAbort(t *testing.T) {
	// Second record declares an FRN the UAP does not know. Its earlier
	// items decode, the rest of that record is abandoned, and the call
	// still succeeds with both records.
	codec := testCodec()
	r1 := codec.EncodeRecord(referencePlot())

	r2 := append([]byte{}, BuildFSPEC([]int{2, 15})...)
	r2 = append(r2, 0x00, 0x09) // I062/040

	block := codec.EncodeDatablock([][]byte{r1, r2})
	records, err := codec.DecodeDatablock(block)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1.0, records[0].Fields["track_number"])
	assert.Equal(t, 9.0, records[1].Fields["track_number"])
	assert.InDelta(t, 28.6139, records[0].Fields["lat"], 1e-4)
}
