// Command exportcheck validates DJ USB exports: the export.pdb database, the
// ANLZ analysis files and the device descriptors next to them.
//
// Usage:
//
//	exportcheck usb /media/usb
//	exportcheck pdb PIONEER/rekordbox/export.pdb
//	exportcheck anlz PIONEER/USBANLZ/P016/0000875E/ANLZ0000.EXT
//	exportcheck device PIONEER/DEVSETTING.DAT PIONEER/djprofile.nxs
//
// The exit status is 0 when every validated file passes and 1 otherwise.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
	"github.com/FocuswithJustin/exportcheck/internal/config"
	"github.com/FocuswithJustin/exportcheck/internal/logging"
	"github.com/FocuswithJustin/exportcheck/internal/report"
	"github.com/FocuswithJustin/exportcheck/internal/scan"
)

const version = "0.1.0"

// errVerification is returned when a validated file fails.
var errVerification = errors.New("verification failed")

// Globals are the flags shared by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"YAML profile overriding the default checks" type:"existingfile"`
	Format    string `name:"format" short:"f" help:"Output format (text, json)" enum:"text,json" default:"text"`
	Color     string `name:"color" help:"Colour output (auto, always, never)" enum:"auto,always,never" default:"auto"`
	Verbose   bool   `name:"verbose" short:"v" help:"Show tables, sections and descriptor fields"`
	Workers   int    `name:"workers" short:"j" help:"Concurrent file validations (0 uses the profile or CPU count)" default:"0"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"warn"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" enum:"text,json" default:"text"`

	ctx    context.Context `kong:"-"`
	stdout io.Writer       `kong:"-"`
}

// CLI defines the command-line interface for exportcheck.
type CLI struct {
	Globals

	USB     USBCmd     `cmd:"" name:"usb" help:"Validate a whole USB export tree"`
	PDB     PDBCmd     `cmd:"" name:"pdb" help:"Validate an export database (export.pdb)"`
	ANLZ    ANLZCmd    `cmd:"" name:"anlz" help:"Validate analysis files (.DAT, .EXT, .2EX)"`
	Device  DeviceCmd  `cmd:"" help:"Validate DEVSETTING.DAT or djprofile.nxs"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

func (g *Globals) context() context.Context {
	if g.ctx != nil {
		return g.ctx
	}
	return context.Background()
}

func (g *Globals) out() io.Writer {
	if g.stdout != nil {
		return g.stdout
	}
	return os.Stdout
}

// scanner builds a Scanner from the profile and flags, and configures logging.
func (g *Globals) scanner() (*scan.Scanner, error) {
	logging.InitLogger(logging.ParseLevel(g.LogLevel), logging.ParseFormat(g.LogFormat))

	opts := scan.DefaultOptions()
	if g.Config != "" {
		p, err := config.Load(g.Config)
		if err != nil {
			return nil, err
		}
		if opts, err = p.Options(); err != nil {
			return nil, exerrors.Wrapf(err, "profile %s", g.Config)
		}
		logging.Info("profile_loaded", "path", g.Config)
	}
	if g.Workers > 0 {
		opts.Workers = g.Workers
	}
	return scan.New(opts), nil
}

func (g *Globals) renderer() (*report.Renderer, error) {
	format := report.FormatText
	if g.Format != "" {
		f, err := report.ParseFormat(g.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	useColor := !color.NoColor
	switch g.Color {
	case "always":
		useColor = true
	case "never":
		useColor = false
	}
	return report.New(g.out(), report.Options{Format: format, Color: useColor, Verbose: g.Verbose}), nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("exportcheck"),
		kong.Description("Structural validator for DJ USB exports"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cli.Globals.ctx = sigCtx

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
