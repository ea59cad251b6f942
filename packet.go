package k8090

import "fmt"

const (
	PacketSize = 7

	STX byte = 0x04
	ETX byte = 0x0f
)

const (
	CmdTurnOn  byte = 0x11
	CmdTurnOff byte = 0x12
	CmdToggle  byte = 0x14
	CmdStatus  byte = 0x18
	CmdVersion byte = 0x71
)

// Packet is one K8090 frame:
//
//	[0] STX  [1] command  [2] mask  [3] param1  [4] param2  [5] checksum  [6] ETX
type Packet [PacketSize]byte

func NewPacket(cmd byte, mask Mask, p1, p2 byte) Packet {
	var p Packet
	p[0] = STX
	p[1] = cmd
	p[2] = byte(mask)
	p[3] = p1
	p[4] = p2
	SetChecksum(p[:])
	p[6] = ETX
	return p
}

func (p Packet) Command() byte {
	return p[1]
}

func (p Packet) Mask() Mask {
	return Mask(p[2])
}

func (p Packet) Param1() byte {
	return p[3]
}

func (p Packet) Param2() byte {
	return p[4]
}

// Valid checks the checksum only. STX and ETX are not verified.
func (p Packet) Valid() bool {
	return checksum(p[:])
}

func (p Packet) String() string {
	return fmt.Sprintf("{ %.2x, %.2x, %.2x, %.2x, %.2x, %.2x, %.2x }",
		p[0], p[1], p[2], p[3], p[4], p[5], p[6])
}
