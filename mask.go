package k8090

import (
	"fmt"
	"math/bits"
	"strconv"
)

// Relays is the number of channels on the card.
const Relays = 8

// Mask is a set of relay channels, bit 0 being channel 1.
type Mask uint8

const AllRelays Mask = 0xff

// Relay returns the mask holding only channel n (1-8).
func Relay(n int) Mask {
	if n < 1 || n > Relays {
		panic(fmt.Sprintf("invalid relay: %d", n))
	}
	return 1 << (n - 1)
}

func (m Mask) Has(n int) bool {
	return n >= 1 && n <= Relays && m&(1<<(n-1)) != 0
}

func (m Mask) Count() int {
	return bits.OnesCount8(uint8(m))
}

// IsSingle reports whether exactly one channel is set.
func (m Mask) IsSingle() bool {
	return m != 0 && m&(m-1) == 0
}

// Channels lists the channel numbers in ascending order.
func (m Mask) Channels() []int {
	chs := make([]int, 0, m.Count())
	for n := 1; n <= Relays; n++ {
		if m.Has(n) {
			chs = append(chs, n)
		}
	}
	return chs
}

func (m Mask) String() string {
	if m == 0 {
		return "-"
	}
	b := make([]byte, 0, 2*Relays)
	for i, n := range m.Channels() {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, int64(n), 10)
	}
	return string(b)
}
