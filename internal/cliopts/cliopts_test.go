package cliopts

import (
	"flag"
	"testing"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func TestStringAliasesShareTarget(t *testing.T) {
	fs := newFlagSet()
	var name string
	String(fs, &name, "server-name", "n", "default", "server name")

	if err := Parse(fs, []string{"-n", "custom"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if name != "custom" {
		t.Fatalf("got %q, want custom", name)
	}
}

func TestLongFormOverridesSameTarget(t *testing.T) {
	fs := newFlagSet()
	var name string
	String(fs, &name, "server-name", "n", "default", "server name")

	if err := Parse(fs, []string{"--server-name", "long"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if name != "long" {
		t.Fatalf("got %q, want long", name)
	}
}

func TestUintAliasesShareTarget(t *testing.T) {
	fs := newFlagSet()
	var port uint
	Uint(fs, &port, "port", "p", 0, "port")

	if err := Parse(fs, []string{"-p", "4242"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if port != 4242 {
		t.Fatalf("got %d, want 4242", port)
	}
}

func TestParseTranslatesHelpSentinel(t *testing.T) {
	fs := newFlagSet()
	var name string
	String(fs, &name, "server-name", "n", "default", "server name")

	err := Parse(fs, []string{"-h"})
	if err != ErrHelp {
		t.Fatalf("got %v, want ErrHelp", err)
	}
}

func TestDefaultValueAppliesWhenUnset(t *testing.T) {
	fs := newFlagSet()
	var name string
	String(fs, &name, "server-name", "n", "default", "server name")

	if err := Parse(fs, nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if name != "default" {
		t.Fatalf("got %q, want default", name)
	}
}
