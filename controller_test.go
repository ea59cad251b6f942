package k8090_test

import (
	"errors"
	"fmt"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bangzek/clock"
	. "github.com/bangzek/k8090"
)

var _ = Describe("Controller", func() {
	const dsn = clock.DefaultScriptNow
	Context("command without response", func() {
		It("writes the packet only", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			log := NewLog()
			Expect(con.TurnOn(0b101)).To(Succeed())
			con.Close()
			Expect(port.Calls).To(Equal(1))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 11 05 00 00 E6 0F]",
				"CLOSE",
			}))
			Expect(log.Msgs).To(Equal([]string{
				"D:=> { 04, 11, 05, 00, 00, e6, 0f }",
				"D:TX: ON 1,3",
			}))
		})
	})

	Context("status", func() {
		It("decodes on and timed relays", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
				},
				Reads: []ReadScript{
					{[]byte{0x04, 0x51, 0x00, 0x05, 0x01, 0xa5, 0x0f}, nil},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			log := NewLog()
			on, timed, err := con.Status()
			Expect(err).To(Succeed())
			Expect(on).To(Equal(Mask(0b101)))
			Expect(timed).To(Equal(Mask(0b001)))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 18 00 00 00 E4 0F]",
				"READ",
			}))
			Expect(log.Msgs).To(Equal([]string{
				"D:=> { 04, 18, 00, 00, 00, e4, 0f }",
				"D:TX: STATUS",
				"D:<= { 04, 51, 00, 05, 01, a5, 0f }",
				"D:RX: STATUS on=1,3 timed=1",
			}))
		})
	})

	Context("version in two reads", func() {
		It("joins the pieces", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
				},
				Reads: []ReadScript{
					{[]byte{0x04, 0x71, 0x00}, nil},
					{[]byte{0x12, 0x03, 0x76, 0x0f}, nil},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			NewLog()
			v, err := con.Version()
			Expect(err).To(Succeed())
			Expect(v).To(Equal(Version{2012, 3}))
			Expect(v.String()).To(Equal("2012.3"))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 71 00 00 00 8B 0F]",
				"READ",
				"READ",
			}))
		})
	})

	Context("two sends", func() {
		It("opens the port once", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
					{7, nil},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			NewLog()
			Expect(con.TurnOff(0b1)).To(Succeed())
			Expect(con.Toggle(AllRelays)).To(Succeed())
			Expect(port.Calls).To(Equal(1))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 12 01 00 00 E9 0F]",
				"WRITE [04 14 FF 00 00 E9 0F]",
			}))
		})
	})

	Context("cycle", func() {
		var sleeps []time.Duration
		BeforeEach(func() {
			sleeps = nil
			SetSleep(func(d time.Duration) {
				sleeps = append(sleeps, d)
			})
			DeferCleanup(SetSleep, time.Sleep)
		})

		It("turns off, waits and turns on", func() {
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
					{7, nil},
				},
			}
			con := &Controller{
				Port: &MockPort{Opens: []OpenScript{{rwc, nil}}},
			}
			log := NewLog()
			Expect(con.Cycle(0b101)).To(Succeed())
			Expect(sleeps).To(Equal([]time.Duration{CYCLE_DELAY}))
			Expect(CYCLE_DELAY).To(Equal(2 * time.Second))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 12 05 00 00 E5 0F]",
				"WRITE [04 11 05 00 00 E6 0F]",
			}))
			Expect(log.Msgs).To(ContainElement("I:Cycling 1,3, waiting 2s"))
		})

		It("does not wait when off fails", func() {
			err := errors.New("gone")
			rwc := &MockRwc{Writes: []WriteScript{{0, err}}}
			con := &Controller{
				Port: &MockPort{Opens: []OpenScript{{rwc, nil}}},
			}
			NewLog()
			Expect(con.Cycle(0b1)).To(MatchError(err))
			Expect(sleeps).To(BeEmpty())
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 12 01 00 00 E9 0F]",
				"CLOSE",
			}))
		})
	})

	Context("error on open", func() {
		It("returns that err and retries the open on next send", func() {
			err1 := errors.New("one")
			err2 := errors.New("two")
			port := &MockPort{
				Opens: []OpenScript{
					{nil, err1},
					{nil, err2},
				},
			}
			con := &Controller{
				Port: port,
			}
			log := NewLog()
			Expect(con.TurnOn(1)).To(MatchError(err1))
			Expect(con.TurnOff(1)).To(MatchError(err2))
			Expect(port.Calls).To(Equal(2))
			Expect(log.Msgs).To(BeEmpty())
		})
	})

	Context("error on tx", func() {
		It("returns a TransportErr", func() {
			err1 := errors.New("one")
			rwc1 := &MockRwc{Writes: []WriteScript{{7, err1}}}
			rwc2 := &MockRwc{Writes: []WriteScript{{5, nil}}}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc1, nil},
					{rwc2, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			NewLog()
			err := con.TurnOn(0b1)
			Expect(err).To(MatchError(err1))
			Expect(err).To(BeAssignableToTypeOf(TransportErr{}))
			Expect(err).To(MatchError("write: one"))
			Expect(con.TurnOn(0b1)).To(MatchError(io.ErrShortWrite))
			Expect(port.Calls).To(Equal(2))
			Expect(rwc1.Calls).To(Equal([]string{
				"WRITE [04 11 01 00 00 EA 0F]",
				"CLOSE",
			}))
			Expect(rwc2.Calls).To(Equal([]string{
				"WRITE [04 11 01 00 00 EA 0F]",
				"CLOSE",
			}))
		})
	})

	Context("error on rx", func() {
		It("returns a TransportErr", func() {
			err := errors.New("something")
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
				},
				Reads: []ReadScript{
					{[]byte{0x04, 0x51}, err},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			log := NewLog()
			_, _, e := con.Status()
			Expect(e).To(MatchError(err))
			Expect(e).To(MatchError("read: something"))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 18 00 00 00 E4 0F]",
				"READ",
				"CLOSE",
			}))
			Expect(log.Msgs).To(Equal([]string{
				"D:=> { 04, 18, 00, 00, 00, e4, 0f }",
				"D:TX: STATUS",
			}))
		})
	})

	Context("bad checksum", func() {
		It("returns ChecksumErr", func() {
			rx := []byte{0x04, 0x71, 0x00, 0x12, 0x03, 0x77, 0x0f}
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
				},
				Reads: []ReadScript{
					{rx, nil},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			log := NewLog()
			_, err := con.Version()
			Expect(err).To(MatchError(ErrChecksum))
			Expect(err).To(MatchError(
				"bad checksum on read: { 04, 71, 00, 12, 03, 77, 0f }"))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 71 00 00 00 8B 0F]",
				"READ",
				"CLOSE",
			}))
			Expect(log.Msgs).To(Equal([]string{
				"D:=> { 04, 71, 00, 00, 00, 8b, 0f }",
				"D:TX: VERSION",
				"D:<= { 04, 71, 00, 12, 03, 77, 0f }",
			}))
		})
	})

	Context("timeout", func() {
		It("returns ErrTimeout", func() {
			t := time.Date(2024, time.March, 2, 10, 11, 12, 0, time.UTC)
			mc := new(clock.Mock)
			mc.NowScripts = []time.Duration{
				0, 0, TIMEOUT,
			}
			SetClock(mc)
			DeferCleanup(SetClock, clock.New())
			mc.Start(t)
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
				},
				Reads: []ReadScript{
					{nil, nil},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			NewLog()
			_, _, err := con.Status()
			Expect(err).To(MatchError(ErrTimeout))
			Expect(err).To(MatchError("read: timeout"))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 18 00 00 00 E4 0F]",
				"READ",
				"READ",
				"CLOSE",
			}))
			mc.Stop()
			Expect(mc.Calls()).To(HaveExactElements(
				"now",
				"now",
				"now",
			))
			Expect(mc.Times()).To(HaveExactElements(
				t.Add(dsn),
				t.Add(2*dsn),
				t.Add(2*dsn+TIMEOUT),
			))
		})

		It("traces what arrived before giving up", func() {
			t := time.Date(2024, time.March, 2, 10, 11, 12, 0, time.UTC)
			mc := new(clock.Mock)
			mc.NowScripts = []time.Duration{
				0, 0, TIMEOUT,
			}
			SetClock(mc)
			DeferCleanup(SetClock, clock.New())
			mc.Start(t)
			rwc := &MockRwc{
				Writes: []WriteScript{
					{7, nil},
				},
				Reads: []ReadScript{
					{[]byte{0x04, 0x51, 0x00}, nil},
				},
			}
			port := &MockPort{
				Opens: []OpenScript{
					{rwc, nil},
				},
			}
			con := &Controller{
				Port: port,
			}
			log := NewLog()
			_, _, err := con.Status()
			mc.Stop()
			Expect(err).To(MatchError(ErrTimeout))
			Expect(err).To(MatchError("read: timeout"))
			Expect(rwc.Calls).To(Equal([]string{
				"WRITE [04 18 00 00 00 E4 0F]",
				"READ",
				"READ",
				"READ",
				"CLOSE",
			}))
			Expect(log.Msgs).To(Equal([]string{
				"D:=> { 04, 18, 00, 00, 00, e4, 0f }",
				"D:TX: STATUS",
				"D:<= [04 51 00]",
			}))
		})
	})
})

type MockPort struct {
	Opens []OpenScript

	Calls int
}

type OpenScript struct {
	Rwc io.ReadWriteCloser
	Err error
}

func (m *MockPort) Open() (rwc io.ReadWriteCloser, err error) {
	if m.Calls < len(m.Opens) {
		rwc = m.Opens[m.Calls].Rwc
		err = m.Opens[m.Calls].Err
	}
	m.Calls++
	return
}

type MockRwc struct {
	Writes []WriteScript
	Reads  []ReadScript

	Calls []string

	iWrite int
	iRead  int
}

type WriteScript struct {
	N   int
	Err error
}

type ReadScript struct {
	Bytes []byte
	Err   error
}

func (m *MockRwc) Write(b []byte) (n int, err error) {
	if m.iWrite < len(m.Writes) {
		n = m.Writes[m.iWrite].N
		err = m.Writes[m.iWrite].Err
	}
	m.Calls = append(m.Calls, fmt.Sprintf("WRITE [% X]", b))
	m.iWrite++
	return
}

func (m *MockRwc) Read(b []byte) (n int, err error) {
	if m.iRead < len(m.Reads) {
		s := m.Reads[m.iRead]
		if len(b) < len(s.Bytes) {
			panic(fmt.Sprintf("Invalid MockRwc.ReadScript[%d].Bytes %d>%d",
				m.iRead, len(s.Bytes), len(b)))
		}
		if len(s.Bytes) > 0 {
			copy(b, s.Bytes)
			n = len(s.Bytes)
		}
		err = s.Err
	}
	m.Calls = append(m.Calls, "READ")
	m.iRead++
	return
}

func (m *MockRwc) Close() error {
	m.Calls = append(m.Calls, "CLOSE")
	return nil
}
