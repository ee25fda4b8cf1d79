// Package cliopts provides short/long flag aliasing on top of the
// standard flag package, since none of the retrieved examples pull in a
// third-party CLI library (no cobra, no pflag, no urfave/cli).
package cliopts

import (
	"errors"
	"flag"
)

// ErrHelp is returned by Parse when -h/--help was given, mirroring the
// wire protocol's NeedHelp kind so callers can share one "print usage and
// exit 0" path.
var ErrHelp = errors.New("help requested")

// String registers p under both long and short names with the same usage
// string and default value.
func String(fs *flag.FlagSet, p *string, long, short, def, usage string) {
	fs.StringVar(p, long, def, usage)
	fs.StringVar(p, short, def, usage)
}

func Uint(fs *flag.FlagSet, p *uint, long, short string, def uint, usage string) {
	fs.UintVar(p, long, def, usage)
	fs.UintVar(p, short, def, usage)
}

func Uint64(fs *flag.FlagSet, p *uint64, long, short string, def uint64, usage string) {
	fs.Uint64Var(p, long, def, usage)
	fs.Uint64Var(p, short, def, usage)
}

// Parse runs fs.Parse(args) and translates flag.ErrHelp into ErrHelp so
// callers never need to know about the stdlib sentinel directly.
func Parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return ErrHelp
	}
	return err
}
