package k8090

// payloadSize is the number of leading packet bytes covered by the checksum.
const payloadSize = 5

// Checksum returns the two's complement of the sum of the first five bytes
// of b, so that adding it to that sum gives zero modulo 256.
func Checksum(b []byte) byte {
	var sum byte
	for _, x := range b[:payloadSize] {
		sum += x
	}
	return -sum
}

func SetChecksum(b []byte) {
	b[payloadSize] = Checksum(b)
}

func checksum(b []byte) bool {
	return len(b) > payloadSize && b[payloadSize] == Checksum(b)
}
