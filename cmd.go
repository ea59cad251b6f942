package k8090

import (
	"fmt"
	"strconv"
)

type Cmd interface {
	TxBytes() []byte
	Code() byte
	Mask() Mask
	Tx() string

	RxBytes() *[]byte
	IsValidRx() bool
	Rx() string

	String() string
}

type cmd struct {
	tx Packet
	rx []byte
}

func newCmd(code byte, mask Mask, reply bool) cmd {
	c := cmd{tx: NewPacket(code, mask, 0, 0)}
	if reply {
		c.rx = make([]byte, 0, PacketSize)
	}
	return c
}

func (c *cmd) TxBytes() []byte {
	return c.tx[:]
}

func (c *cmd) Code() byte {
	return c.tx.Command()
}

func (c *cmd) Mask() Mask {
	return c.tx.Mask()
}

func (c *cmd) RxBytes() *[]byte {
	return &c.rx
}

func (c *cmd) IsValidRx() bool {
	return len(c.rx) == PacketSize && checksum(c.rx)
}

// packet returns the received frame, zero until a full one arrived.
func (c *cmd) packet() (p Packet) {
	if len(c.rx) == PacketSize {
		copy(p[:], c.rx)
	}
	return
}

func (c *cmd) hexRx() string {
	return fmt.Sprintf("[% X]", c.rx)
}

//----------------------------------------------------------------------

type OnCmd struct {
	cmd
}

func NewOnCmd(mask Mask) *OnCmd {
	return &OnCmd{newCmd(CmdTurnOn, mask, false)}
}

func (c *OnCmd) Tx() string {
	return "ON " + c.Mask().String()
}

func (c *OnCmd) Rx() string {
	return ""
}

func (c *OnCmd) String() string {
	return c.Tx()
}

//----------------------------------------------------------------------

type OffCmd struct {
	cmd
}

func NewOffCmd(mask Mask) *OffCmd {
	return &OffCmd{newCmd(CmdTurnOff, mask, false)}
}

func (c *OffCmd) Tx() string {
	return "OFF " + c.Mask().String()
}

func (c *OffCmd) Rx() string {
	return ""
}

func (c *OffCmd) String() string {
	return c.Tx()
}

//----------------------------------------------------------------------

type ToggleCmd struct {
	cmd
}

func NewToggleCmd(mask Mask) *ToggleCmd {
	return &ToggleCmd{newCmd(CmdToggle, mask, false)}
}

func (c *ToggleCmd) Tx() string {
	return "TOGGLE " + c.Mask().String()
}

func (c *ToggleCmd) Rx() string {
	return ""
}

func (c *ToggleCmd) String() string {
	return c.Tx()
}

//----------------------------------------------------------------------

// StatusCmd queries every channel; the request mask is always zero.
type StatusCmd struct {
	cmd
}

func NewStatusCmd() *StatusCmd {
	return &StatusCmd{newCmd(CmdStatus, 0, true)}
}

// On is the set of channels currently switched on.
func (c *StatusCmd) On() Mask {
	return Mask(c.packet().Param1())
}

// Timed is the set of channels running a device-side timer.
func (c *StatusCmd) Timed() Mask {
	return Mask(c.packet().Param2())
}

func (c *StatusCmd) Tx() string {
	return "STATUS"
}

func (c *StatusCmd) Rx() string {
	if !c.IsValidRx() {
		return c.hexRx()
	}
	return "STATUS on=" + c.On().String() + " timed=" + c.Timed().String()
}

func (c *StatusCmd) String() string {
	return c.Tx() + "\n" + c.Rx()
}

//----------------------------------------------------------------------

type Version struct {
	Year     int
	Revision int
}

func (v Version) String() string {
	return strconv.Itoa(v.Year) + "." + strconv.Itoa(v.Revision)
}

type VersionCmd struct {
	cmd
}

func NewVersionCmd() *VersionCmd {
	return &VersionCmd{newCmd(CmdVersion, 0, true)}
}

// Version decodes param1 as years since 1994 (16 means 2010) and param2
// as the revision within that year.
func (c *VersionCmd) Version() Version {
	p := c.packet()
	return Version{
		Year:     int(p.Param1()) - 16 + 2010,
		Revision: int(p.Param2()),
	}
}

func (c *VersionCmd) Tx() string {
	return "VERSION"
}

func (c *VersionCmd) Rx() string {
	if !c.IsValidRx() {
		return c.hexRx()
	}
	return "VERSION " + c.Version().String()
}

func (c *VersionCmd) String() string {
	return c.Tx() + "\n" + c.Rx()
}
