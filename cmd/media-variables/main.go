package main

import (
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"

	"bennypowers.dev/mediavars/internal/config"
	"bennypowers.dev/mediavars/internal/designtokens"
	"bennypowers.dev/mediavars/internal/log"
	"bennypowers.dev/mediavars/internal/parser/css"
	"bennypowers.dev/mediavars/internal/processor"
	"bennypowers.dev/mediavars/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds parsed command line flags. Booleans and strings that were
// not set on the command line leave the config value alone.
type options struct {
	configPath     string
	outDir         string
	logLevel       string
	preserve       bool
	strictScan     bool
	failOnWarnings bool
	list           bool
	version        bool
	set            map[string]bool
	files          []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("media-variables", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: media-variables [flags] [files...]\n\n")
		fs.PrintDefaults()
	}

	opts := &options{set: map[string]bool{}}
	fs.StringVar(&opts.configPath, "config", "", "Path to a config file (default: discover .config/media-variables.*)")
	fs.StringVar(&opts.outDir, "out-dir", "", "Write transformed files here instead of stdout")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.preserve, "preserve", false, "Keep :root custom properties and @custom-media rules")
	fs.BoolVar(&opts.strictScan, "strict-scan", false, "Require a word boundary before calc( and var(")
	fs.BoolVar(&opts.failOnWarnings, "fail-on-warnings", false, "Exit with status 1 when any warning is reported")
	fs.BoolVar(&opts.list, "list", false, "List custom properties and var() calls instead of transforming")
	fs.BoolVar(&opts.version, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	opts.files = fs.Args()
	return opts, nil
}

// apply overlays explicitly set flags on cfg
func (o *options) apply(cfg *config.Config) {
	if o.set["out-dir"] {
		cfg.OutDir = o.outDir
	}
	if o.set["log-level"] {
		cfg.LogLevel = o.logLevel
	}
	if o.set["preserve"] {
		cfg.Preserve = o.preserve
	}
	if o.set["strict-scan"] {
		cfg.StrictScan = o.strictScan
	}
	if o.set["fail-on-warnings"] {
		cfg.FailOnWarnings = o.failOnWarnings
	}
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.Discover(cwd)
}

func run(args []string, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)

	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if opts.version {
		fmt.Fprintf(stdout, "media-variables %s\n", version.Full())
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	log.SetLevel(cfg.Level())

	var files []string
	if len(opts.files) > 0 {
		cwd, _ := os.Getwd()
		files, err = config.ExpandGlobs(cwd, opts.files)
	} else {
		files, err = cfg.Files()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintf(stderr, "Error: no input files\n")
		return 1
	}

	if opts.list {
		return list(files, stdout)
	}

	variables, err := designtokens.LoadAll(cfg.TokenFiles())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	maps.Copy(variables, cfg.Variables)
	log.Debug("Loaded %d predefined variables", len(variables))

	proc := processor.New(processor.Options{
		Preserve:   cfg.Preserve,
		StrictScan: cfg.StrictScan,
		Variables:  variables,
	})

	status := 0
	warned := false
	for _, file := range files {
		n, err := processFile(proc, file, cfg.OutDir, stdout)
		if err != nil {
			log.Error("%s: %v", file, err)
			status = 1
			continue
		}
		warned = warned || n > 0
	}
	if warned && cfg.FailOnWarnings {
		status = 1
	}
	return status
}

// processFile transforms one file and returns the number of warnings
func processFile(proc *processor.Processor, file, outDir string, stdout io.Writer) (int, error) {
	kind := processor.KindOf(file)
	if kind == processor.UnknownKind {
		return 0, fmt.Errorf("unsupported file type %q", filepath.Ext(file))
	}

	data, err := os.ReadFile(file) //nolint:gosec // G304: user-selected input file
	if err != nil {
		return 0, err
	}

	result, err := proc.Process(kind, string(data))
	if err != nil {
		return 0, err
	}
	for _, w := range result.Warnings {
		log.Warn("%s: %s", file, w)
	}

	if outDir == "" {
		_, err = io.WriteString(stdout, result.Output)
		return len(result.Warnings), err
	}
	dest := filepath.Join(outDir, filepath.Base(file))
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dest, []byte(result.Output), 0o600); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	log.Info("Wrote %s", dest)
	return len(result.Warnings), nil
}

// list prints custom property definitions and var() calls of CSS files
func list(files []string, stdout io.Writer) int {
	p := css.AcquireParser()
	defer css.ReleaseParser(p)

	status := 0
	for _, file := range files {
		if processor.KindOf(file) != processor.CSSKind {
			log.Debug("Skipping %s: -list only reads CSS", file)
			continue
		}
		data, err := os.ReadFile(file) //nolint:gosec // G304: user-selected input file
		if err != nil {
			log.Error("%s: %v", file, err)
			status = 1
			continue
		}
		set, err := p.ParseVariables(string(data))
		if err != nil {
			log.Error("%s: %v", file, err)
			status = 1
			continue
		}
		for _, v := range set.Variables {
			fmt.Fprintf(stdout, "%s:%d:%d: %s: %s\n", file, v.Range.Start.Line+1, v.Range.Start.Character+1, v.Name, v.Value)
		}
		for _, c := range set.VarCalls {
			fallback := ""
			if c.Fallback != nil {
				fallback = " (fallback " + *c.Fallback + ")"
			}
			fmt.Fprintf(stdout, "%s:%d:%d: var(%s)%s\n", file, c.Range.Start.Line+1, c.Range.Start.Character+1, c.Name, fallback)
		}
	}
	return status
}
