package k8090

import (
	"io"
	"time"

	"github.com/albenik/go-serial/v2"
)

const (
	DEVICE         = "/dev/ttyACM0"
	SERIAL_TIMEOUT = 800 * time.Millisecond
	BAUDRATE       = 19200
)

type OpenErr struct {
	Dev string
	Err error
}

func (e OpenErr) Error() string {
	return e.Err.Error() + " while opening " + e.Dev
}

func (e OpenErr) Unwrap() error {
	return e.Err
}

// SerialPort opens the card's ACM device raw at 19200 8N1 without flow
// control.
type SerialPort struct {
	Dev     string
	Timeout time.Duration
}

func (p *SerialPort) Open() (io.ReadWriteCloser, error) {
	if p.Dev == "" {
		p.Dev = DEVICE
	}
	if p.Timeout <= 0 {
		p.Timeout = SERIAL_TIMEOUT
	}

	debugLog("Opening %s", p.Dev)
	port, err := serial.Open(p.Dev,
		serial.WithBaudrate(BAUDRATE),
		serial.WithDataBits(8),
		serial.WithParity(serial.NoParity),
		serial.WithStopBits(serial.OneStopBit),
		serial.WithReadTimeout(int(p.Timeout.Milliseconds())),
		serial.WithWriteTimeout(int(p.Timeout.Milliseconds())))
	if err != nil {
		return nil, OpenErr{p.Dev, err}
	}
	debugLog("%s opened", p.Dev)
	return port, nil
}
