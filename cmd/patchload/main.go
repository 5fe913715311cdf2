// patchload reads machine code from the file "load", replaces the first "XXX"
// in it with three bytes from standard input and jumps to it.
//
// Settings come from PATCHLOAD_* environment variables; see
// patchload.ConfigFromEnv.
package main

import (
	"flag"
	"os"
	"strconv"

	"k8s.io/klog/v2"

	"github.com/pboyd/patchload"
)

func main() {
	cfg, err := patchload.ConfigFromEnv()
	if err != nil {
		klog.Fatalf("Configuration error: %v", err)
	}

	// klog is configured through its own flag set since the command line
	// isn't parsed.
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	err = fs.Set("v", strconv.Itoa(cfg.Verbosity))
	if err != nil {
		klog.Warningf("Unable to set log verbosity to %d: %v", cfg.Verbosity, err)
	}

	// Diagnostics go straight to the file descriptor. Nothing buffered
	// would survive the jump.
	l, err := patchload.New(cfg, patchload.WithInput(os.Stdin), patchload.WithOutput(os.Stdout))
	if err != nil {
		klog.Fatalf("Configuration error: %v", err)
	}

	err = l.Run()
	klog.Fatalf("Loader failed: %v", err)
}
