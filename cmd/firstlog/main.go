// Package main is the entry point for the firstlog plugin host.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/emberedit/firstlog/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, showInfo, showOrder := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	if showInfo {
		fmt.Print(application.InfoReport())
		return 0
	}

	if showOrder {
		application.LogLoadingOrder()
		return 0
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() (app.Options, bool, bool) {
	opts := app.Options{EditorVersion: version}
	var showVersion bool
	var showInfo bool
	var showOrder bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to settings file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to settings file (shorthand)")
	flag.StringVar(&opts.PackagesPath, "packages", "", "Plugin packages directory")
	flag.StringVar(&opts.PackagesPath, "p", "", "Plugin packages directory (shorthand)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Mirror console output to this file")
	flag.BoolVar(&opts.Panel, "panel", false, "Open the console panel")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Enable debug output")
	flag.BoolVar(&opts.Verbose, "d", false, "Enable debug output (shorthand)")
	flag.BoolVar(&showInfo, "info", false, "Print plugin information and exit")
	flag.BoolVar(&showOrder, "order", false, "Log the plugin loading order and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "firstlog - plugin event logger and hot reloader\n\n")
		fmt.Fprintf(os.Stderr, "Usage: firstlog [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  firstlog -p ./Packages             Load plugins and log events\n")
		fmt.Fprintf(os.Stderr, "  firstlog -p ./Packages -panel      Open the console panel\n")
		fmt.Fprintf(os.Stderr, "  firstlog -p ./Packages -info       Print the plugin report\n")
		fmt.Fprintf(os.Stderr, "  firstlog -p ./Packages -order      Log the plugin loading order\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("firstlog %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts, showInfo, showOrder
}
