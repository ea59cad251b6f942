package k8090

import (
	"io"
	"time"

	"github.com/bangzek/clock"
)

const (
	TIMEOUT     = time.Second
	CYCLE_DELAY = 2 * time.Second
)

var (
	ctime interface{ Now() time.Time } = clock.New()
	sleep                              = time.Sleep
)

type PortOpener interface {
	Open() (io.ReadWriteCloser, error)
}

// Controller drives one card over one port. It is not safe for concurrent
// use.
type Controller struct {
	Port    PortOpener
	Timeout time.Duration

	port io.ReadWriteCloser
}

func (c *Controller) Close() {
	if c.port != nil {
		c.port.Close()
		c.port = nil
	}
}

// Send writes the command and, when it expects one, reads and validates the
// response. The port is closed on any error.
func (c *Controller) Send(cmd Cmd) error {
	if c.Timeout <= 0 {
		c.Timeout = TIMEOUT
	}
	if c.port == nil {
		var err error
		if c.port, err = c.Port.Open(); err != nil {
			return err
		}
	}

	tx := cmd.TxBytes()
	debugLog("=> %s", Packet(tx))
	debugLog("TX: %s", cmd.Tx())
	if n, err := c.port.Write(tx); err != nil {
		c.Close()
		return TransportErr{"write", err}
	} else if n != len(tx) {
		c.Close()
		return TransportErr{"write", io.ErrShortWrite}
	}

	rx := cmd.RxBytes()
	if cap(*rx) == 0 {
		return nil
	}

	*rx = (*rx)[:0]
	for deadline := ctime.Now().Add(c.Timeout); ; {
		if full, err := c.read(rx); err != nil {
			c.Close()
			return TransportErr{"read", err}
		} else if full {
			break
		}

		if ctime.Now().After(deadline) {
			if len(*rx) > 0 {
				debugLog("<= [% x]", *rx)
			}
			c.Close()
			return TransportErr{"read", ErrTimeout}
		}
	}

	debugLog("<= %s", Packet(*rx))
	if !cmd.IsValidRx() {
		c.Close()
		return ChecksumErr(Packet(*rx))
	}
	debugLog("RX: %s", cmd.Rx())
	return nil
}

// read fills b up to its capacity. It reports false without error when the
// port returned nothing before its own timeout.
func (c *Controller) read(b *[]byte) (bool, error) {
	for len(*b) < cap(*b) {
		n, err := c.port.Read((*b)[len(*b):cap(*b)])
		*b = (*b)[:len(*b)+n]
		if err != nil {
			return false, err
		} else if n == 0 {
			return false, nil
		}
	}
	return true, nil
}

func (c *Controller) TurnOn(m Mask) error {
	return c.Send(NewOnCmd(m))
}

func (c *Controller) TurnOff(m Mask) error {
	return c.Send(NewOffCmd(m))
}

func (c *Controller) Toggle(m Mask) error {
	return c.Send(NewToggleCmd(m))
}

// Cycle switches m off, blocks for CYCLE_DELAY and switches m back on. There
// is no device command for it and the pause cannot be interrupted.
func (c *Controller) Cycle(m Mask) error {
	if err := c.TurnOff(m); err != nil {
		return err
	}
	log("Cycling %s, waiting %s", m, CYCLE_DELAY)
	sleep(CYCLE_DELAY)
	return c.TurnOn(m)
}

// Status returns the channels that are on and those running a timer.
func (c *Controller) Status() (on, timed Mask, err error) {
	cmd := NewStatusCmd()
	if err = c.Send(cmd); err != nil {
		return
	}
	return cmd.On(), cmd.Timed(), nil
}

func (c *Controller) Version() (Version, error) {
	cmd := NewVersionCmd()
	if err := c.Send(cmd); err != nil {
		return Version{}, err
	}
	return cmd.Version(), nil
}
