package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bangzek/k8090"
	"github.com/bangzek/k8090/internal/config"
	"github.com/bangzek/k8090/relayset"
)

// allRelays is what a bare --off, --toggle or --status stands for. A command
// line argument cannot hold a NUL, so a typed value never matches it.
const allRelays = "\x00all"

var errUsage = errors.New("usage")

const usage = `usage: power <options>, with:
--on=<relay-list>           turn relay(s) ON
--off[=<relay-list>]        turn relay(s) OFF (defaults to all)
--toggle[=<relay-list>]     toggle relay(s) (defaults to all)
--cycle=<relay-list>        power cycle relay(s)
--status[=<relay-list>]     get relay(s) status (defaults to all)
--firmware                  query firmware version
--debug                     dump serial traffic to stderr
--device=<path>             path to ACM device (default /dev/ttyACM0)
--alias-dir=<path>          alias directory (default /etc/power)
--config=<path>             read settings and aliases from a YAML file
--help                      this help
(relay-list: [1-8] or alias, [1-8]...)
`

// relayList collects every occurrence of a flag; the lists are resolved
// once the alias store is known.
type relayList []string

func (l *relayList) String() string {
	return strings.Join(*l, ",")
}

func (l *relayList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

func (l *relayList) Type() string {
	return "relay-list"
}

func (l relayList) mask(r *relayset.Resolver) (k8090.Mask, error) {
	var m k8090.Mask
	for _, s := range l {
		if s == allRelays {
			m |= k8090.AllRelays
			continue
		}
		x, _, err := r.Resolve(s)
		if err != nil {
			return 0, err
		}
		m |= x
	}
	return m, nil
}

type options struct {
	on, off, toggle, cycle, status relayList

	firmware bool
	debug    bool
	device   string
	aliasDir string
	config   string
}

func (o *options) actions(r *relayset.Resolver) (a relayset.Actions, err error) {
	for _, x := range []struct {
		name string
		list relayList
		mask *k8090.Mask
	}{
		{"on", o.on, &a.On},
		{"off", o.off, &a.Off},
		{"toggle", o.toggle, &a.Toggle},
		{"cycle", o.cycle, &a.Cycle},
		{"status", o.status, &a.Status},
	} {
		if *x.mask, err = x.list.mask(r); err != nil {
			return a, fmt.Errorf("--%s: %w", x.name, err)
		}
	}
	return a, nil
}

// settings merges the config file, if any, with the flags given on the
// command line; flags win.
func (o *options) settings(fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Defaults()
	if o.config != "" {
		var err error
		if cfg, err = config.Load(o.config); err != nil {
			return cfg, err
		}
	}
	if fs.Changed("device") {
		cfg.Device = o.device
	}
	if fs.Changed("alias-dir") {
		cfg.AliasDir = o.aliasDir
	}
	if fs.Changed("debug") {
		cfg.Debug = o.debug
	}
	return cfg, nil
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:           "power",
		Short:         "Switch the relays of a K8090 card",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unexpected argument %q", errUsage, args[0])
			}
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			cfg, err := o.settings(c.Flags())
			if err != nil {
				return err
			}
			setupLogger(c.ErrOrStderr(), cfg.Debug)
			LOG.Debugf(ctx, "use config: %+v", cfg)

			r := &relayset.Resolver{Store: cfg.Store()}
			acts, err := o.actions(r)
			if err != nil {
				return err
			}
			acts = acts.Resolve()
			LOG.Debugf(ctx, "actions: %+v", acts)
			if acts.IsZero() && !o.firmware {
				return nil
			}

			dev := openDevice(cfg)
			defer dev.Close()
			return run(ctx, dev, r, acts, o.firmware, stdout)
		},
	}

	fs := cmd.Flags()
	fs.Var(&o.on, "on", "turn relay(s) ON")
	fs.Var(&o.off, "off", "turn relay(s) OFF (defaults to all)")
	fs.Var(&o.toggle, "toggle", "toggle relay(s) (defaults to all)")
	fs.Var(&o.cycle, "cycle", "power cycle relay(s)")
	fs.Var(&o.status, "status", "get relay(s) status (defaults to all)")
	for _, name := range []string{"off", "toggle", "status"} {
		fs.Lookup(name).NoOptDefVal = allRelays
	}
	fs.BoolVar(&o.firmware, "firmware", false, "query firmware version")
	fs.BoolVar(&o.debug, "debug", false, "dump serial traffic to stderr")
	fs.StringVar(&o.device, "device", k8090.DEVICE, "path to ACM device")
	fs.StringVar(&o.aliasDir, "alias-dir", relayset.DefaultDir, "alias directory")
	fs.StringVar(&o.config, "config", "", "read settings and aliases from a YAML file")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		fmt.Fprint(c.ErrOrStderr(), usage)
	})
	return cmd
}

func isUsageErr(err error) bool {
	return errors.Is(err, errUsage) || errors.Is(err, relayset.ErrInvalidInput)
}

// execute runs the command line and returns the exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	setupLogger(stderr, false)
	bridgeLogger(ctx)

	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		LOG.Errorf(ctx, "%v", err)
		if isUsageErr(err) {
			fmt.Fprint(stderr, usage)
		}
		return 1
	}
	return 0
}
