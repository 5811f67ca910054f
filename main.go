package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "lc1c",
		Usage:     "assembler for the LC1 teaching machine",
		ArgsUsage: "SOURCE_FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "o", Usage: "write object output to `PATH` (default: stdout)"},
			&cli.BoolFlag{Name: "U", Usage: "Unix->DOS mode: append CR before each newline"},
			&cli.BoolFlag{Name: "v", Usage: "verbose: trace optimizer decisions to stderr"},
			&cli.BoolFlag{Name: "O0", Usage: "disable all optimizer passes"},
			&cli.BoolFlag{Name: "OD", Usage: "enable deep optimization (implies peephole + id-const)"},
			&cli.StringFlag{Name: "config", Usage: "use an explicit config `PATH` instead of ./.lc1c.toml"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		if ec, ok := err.(cli.ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowAppHelp(c)
		return cli.Exit("", 1)
	}

	configPath := c.String("config")
	if configPath == "" {
		configPath = ".lc1c.toml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("INVOCATION ERROR: %v", err), 1)
	}

	level := OptimizeLevel(cfg.Optimize.Level)
	if level == "" {
		level = OptimizeDefault
	}
	if c.Bool("O0") {
		level = OptimizeOff
	} else if c.Bool("OD") {
		level = OptimizeDeep
	}

	verbose := cfg.Output.Verbose || c.Bool("v")
	unix2dos := cfg.Output.Unix2Dos || c.Bool("U")
	diag := NewDiag(verbose)

	var stmts []Stmt
	var parseErrs []error
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("INVOCATION ERROR: %v", err), 1)
		}
		fileStmts, errs := ParseFile(path, string(data))
		stmts = append(stmts, fileStmts...)
		parseErrs = append(parseErrs, errs...)
	}
	for _, e := range parseErrs {
		fmt.Fprintln(os.Stderr, e)
	}

	if len(stmts) == 0 {
		return nil
	}

	if level != OptimizeOff {
		stmts = peepholeOptimize(stmts, peepTraceFn(diag, verbose))
		if level == OptimizeDeep {
			stmts = optimizeDeep(stmts, diag.Warnf, diag.Tracef)
			stmts = peepholeOptimize(stmts, peepTraceFn(diag, verbose))
		}
	}

	resolved, err := ResolveLabels(stmts, level != OptimizeOff, diag.Tracef)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out := os.Stdout
	if outPath := c.String("o"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("INVOCATION ERROR: %v", err), 1)
		}
		defer f.Close()
		out = f
	}

	if err := WriteProgram(out, resolved, unix2dos); err != nil {
		if err == ErrInternalState {
			return cli.Exit(err.Error(), 2)
		}
		return cli.Exit(fmt.Sprintf("INVOCATION ERROR: %v", err), 1)
	}

	return nil
}

func peepTraceFn(d *Diag, verbose bool) func(prev, cur Cmd, pos int) {
	if !verbose {
		return nil
	}
	return func(prev, cur Cmd, pos int) {
		d.Tracef("optimize %02x%02x @ %d", uint8(prev), uint8(cur), pos)
	}
}
