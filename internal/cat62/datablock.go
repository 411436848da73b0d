package cat62

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

// headerSize is the fixed datablock header: category byte plus a 2-byte
// big-endian total length that counts the header itself.
const headerSize = 3

// MaxDatablockLen bounds a datablock by its 16-bit length field.
const MaxDatablockLen = 0xFFFF

// EncodeDatablock wraps pre-encoded records in a CAT62 datablock:
// 0x3E || total length (2 bytes, big-endian) || concatenated records.
func (c *Codec) EncodeDatablock(records [][]byte) []byte {
	payloadLen := 0
	for _, r := range records {
		payloadLen += len(r)
	}
	total := headerSize + payloadLen

	block := make([]byte, headerSize, total)
	block[0] = Category
	binary.BigEndian.PutUint16(block[1:3], uint16(total))
	for _, r := range records {
		block = append(block, r...)
	}

	c.logger.WithFields(logrus.Fields{
		"records":     len(records),
		"total_bytes": total,
	}).Debug("Assembled CAT62 datablock")

	return block
}

// DecodeDatablock validates the datablock header and decodes every record it
// contains, in order. The declared length is the sole parsing boundary;
// bytes beyond it are never read. A structural fault in any record aborts
// the whole call.
func (c *Codec) DecodeDatablock(raw []byte) ([]Record, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedDatablock, len(raw))
	}
	if raw[0] != Category {
		return nil, fmt.Errorf("%w: got category %d", ErrWrongCategory, raw[0])
	}
	declared := int(binary.BigEndian.Uint16(raw[1:3]))
	if declared > len(raw) {
		return nil, fmt.Errorf("%w: declared %d, have %d", ErrTruncatedDatablock, declared, len(raw))
	}

	var records []Record
	offset := headerSize
	for offset < declared {
		rec, next, err := c.DecodeRecord(raw, offset, declared)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		offset = next
	}

	c.logger.WithFields(logrus.Fields{
		"records":        len(records),
		"declared_bytes": declared,
	}).Debug("Parsed CAT62 datablock")

	return records, nil
}
