package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bangzek/k8090"
	"github.com/bangzek/k8090/internal/config"
	"github.com/bangzek/k8090/relayset"
)

type device interface {
	TurnOn(k8090.Mask) error
	TurnOff(k8090.Mask) error
	Toggle(k8090.Mask) error
	Cycle(k8090.Mask) error
	Status() (on, timed k8090.Mask, err error)
	Version() (k8090.Version, error)
	Close()
}

var openDevice = func(cfg config.Config) device {
	return &k8090.Controller{
		Port:    &k8090.SerialPort{Dev: cfg.Device},
		Timeout: cfg.Timeout,
	}
}

// run issues the actions in a fixed order: firmware, off, on, toggle, cycle
// and status. It stops at the first error.
func run(
	ctx context.Context,
	dev device,
	r *relayset.Resolver,
	acts relayset.Actions,
	firmware bool,
	out io.Writer,
) error {
	if firmware {
		v, err := dev.Version()
		if err != nil {
			return fmt.Errorf("firmware: %w", err)
		}
		fmt.Fprintln(out, v)
	}

	for _, x := range []struct {
		name string
		mask k8090.Mask
		do   func(k8090.Mask) error
	}{
		{"off", acts.Off, dev.TurnOff},
		{"on", acts.On, dev.TurnOn},
		{"toggle", acts.Toggle, dev.Toggle},
		{"cycle", acts.Cycle, dev.Cycle},
	} {
		if x.mask == 0 {
			continue
		}
		LOG.Debugf(ctx, "%s %s", x.name, x.mask)
		if err := x.do(x.mask); err != nil {
			return fmt.Errorf("%s: %w", x.name, err)
		}
	}

	if acts.Status != 0 {
		names, err := relayset.BuildTable(r)
		if err != nil {
			return err
		}
		on, timed, err := dev.Status()
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		printStatus(out, names, acts.Status, on, timed)
	}
	return nil
}

func printStatus(w io.Writer, names *relayset.Table, want, on, timed k8090.Mask) {
	for _, n := range want.Channels() {
		state := "--"
		if on.Has(n) {
			state = "ON"
		}
		suffix := ""
		if timed.Has(n) {
			suffix = " (TIMED)"
		}
		fmt.Fprintf(w, "%-8s => %s%s\n", names.Name(n), state, suffix)
	}
}
