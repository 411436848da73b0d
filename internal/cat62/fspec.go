package cat62

// FSPEC layout: each octet carries seven presence bits (bit 8, the MSB, down
// to bit 2) plus the FX extension flag in bit 1. Octet k (0-based) covers
// FRNs 7k+1 .. 7k+7; bit weight 2^p (p=7..1) maps to FRN 7k+(8-p).

const fxBit = 0x01

// BuildFSPEC constructs the presence bitmap for a set of Field Reference
// Numbers. The result spans ceil(maxFRN/7) octets with the FX bit set on
// every octet except the last. An empty set yields a single zero octet.
func BuildFSPEC(frns []int) []byte {
	maxFRN := 0
	for _, frn := range frns {
		if frn > maxFRN {
			maxFRN = frn
		}
	}
	if maxFRN == 0 {
		return []byte{0x00}
	}

	octets := make([]byte, (maxFRN+6)/7)
	for _, frn := range frns {
		if frn < 1 {
			continue
		}
		octetIdx := (frn - 1) / 7
		bitWithin := (frn - 1) % 7 // 0 = MSB side of the octet
		octets[octetIdx] |= 1 << (7 - bitWithin)
	}
	for i := 0; i < len(octets)-1; i++ {
		octets[i] |= fxBit
	}
	return octets
}

// ParseFSPEC reads the variable-length bitmap starting at offset, bounded by
// limit. It returns the active FRNs in ascending order and the offset of the
// first item data byte. Reading past the limit is a structural fault.
func ParseFSPEC(data []byte, offset, limit int) ([]int, int, error) {
	var frns []int
	octetIdx := 0
	for {
		if offset >= limit || offset >= len(data) {
			return nil, offset, &TruncatedFieldError{Item: "FSPEC", Offset: offset}
		}
		octet := data[offset]
		offset++
		for p := 7; p >= 1; p-- { // bit weights 128 down to 2
			if octet&(1<<p) != 0 {
				frns = append(frns, octetIdx*7+(8-p))
			}
		}
		if octet&fxBit == 0 {
			break
		}
		octetIdx++
	}
	return frns, offset, nil
}
