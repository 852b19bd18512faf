package block

const (
	twoBytePlus1 = 0x10000
	twoByteHalf  = twoBytePlus1/2 - 1
)

// Checksum returns the sum of all bytes modulo 256. It is appended as the
// final byte of every outbound command.
func Checksum(data []byte) byte {
	var sum int
	for _, b := range data {
		sum += int(b)
	}
	return byte(sum % 256)
}

// DecodeSigned16 combines a little-endian byte pair into a signed 16-bit
// two's-complement value.
func DecodeSigned16(low, high byte) int {
	v := int(high)*256 + int(low)
	if v > twoByteHalf {
		v -= twoBytePlus1
	}
	return v
}

// EncodeSigned16 is the inverse of DecodeSigned16.
func EncodeSigned16(v int) uint16 {
	if v < 0 {
		v += twoBytePlus1
	}
	return uint16(v)
}

// CheckRange returns an *OutOfRangeError when value is outside [min, max].
func CheckRange(name string, value, min, max int) error {
	if value < min || max < value {
		return &OutOfRangeError{Name: name, Min: min, Max: max, Value: value}
	}
	return nil
}

// appendChecksum appends Checksum(cmd) to cmd.
func appendChecksum(cmd []byte) []byte {
	return append(cmd, Checksum(cmd))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
