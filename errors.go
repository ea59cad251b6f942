package k8090

import "errors"

var (
	ErrTimeout  = errors.New("timeout")
	ErrChecksum = errors.New("bad checksum on read")
)

// TransportErr is a failed read or write on an opened port.
type TransportErr struct {
	Op  string
	Err error
}

func (e TransportErr) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e TransportErr) Unwrap() error {
	return e.Err
}

// ChecksumErr holds the response that failed validation.
type ChecksumErr Packet

func (e ChecksumErr) Error() string {
	return ErrChecksum.Error() + ": " + Packet(e).String()
}

func (e ChecksumErr) Is(target error) bool {
	return target == ErrChecksum
}
