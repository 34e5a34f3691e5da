// Package main is the entry point for the alphasolve notebook REPL.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher"
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handlers"
	"github.com/icanthink42/alpha-solve-analytical/internal/script"
	"github.com/icanthink42/alpha-solve-analytical/internal/session"
	"github.com/icanthink42/alpha-solve-analytical/internal/trace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	LogLevel    string
	SessionPath string
	Scripts     []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg := trace.DefaultLoggerConfig()
	cfg.Level = trace.ParseLogLevel(opts.LogLevel)
	log := trace.NewLogger(cfg)

	tracer := trace.NewLogTracer(log)
	disp := dispatcher.NewWithDefaults()
	disp.SetTracer(tracer)
	handlers.RegisterAll(disp, tracer)

	for _, path := range opts.Scripts {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading script %s: %v\n", path, err)
			return 1
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		h, err := script.NewHandler(name, string(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer h.Close()
		disp.Register(h)
		log.Info("registered scripted handler %s", name)
	}

	var sess *session.Session
	if opts.SessionPath != "" {
		if _, err := os.Stat(opts.SessionPath); err == nil {
			sess, err = session.LoadFile(opts.SessionPath, disp, session.WithLogger(log))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
			log.Info("resumed session %s", sess.ID())
		}
	}
	if sess == nil {
		sess = session.New(disp, session.WithLogger(log))
	}

	if err := repl(sess); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.SessionPath != "" {
		if err := sess.SaveFile(opts.SessionPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

// repl reads one cell per line and prints its outputs. Directives are
// resolved by prompting for each advertised title.
func repl(sess *session.Session) error {
	in := bufio.NewScanner(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	fmt.Fprintln(out, "alphasolve - one cell per line, :help for commands")
	fmt.Fprint(out, "> ")
	out.Flush()

	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		switch {
		case line == "":
		case line == ":quit" || line == ":q":
			return nil
		case line == ":help":
			fmt.Fprintln(out, "  :context     show bound variables")
			fmt.Fprintln(out, "  :quit        exit")
			fmt.Fprintln(out, "  anything else is evaluated as a cell")
		case line == ":context":
			for _, v := range sess.Context().Variables() {
				fmt.Fprintf(out, "  %s (%s): %s\n", v.Name, v.Kind, strings.Join(v.Values, ", "))
			}
		default:
			selections, err := askSelections(in, out, sess.Directives(line))
			if err != nil {
				return err
			}
			rec := sess.EvalWithSelections(line, selections)
			if rec.Status == handler.StatusNoHandler {
				fmt.Fprintln(out, "(no handler)")
			}
			for _, o := range rec.Outputs {
				fmt.Fprintln(out, o)
			}
		}
		fmt.Fprint(out, "> ")
		out.Flush()
	}
	return in.Err()
}

// askSelections prompts for each directive and returns the picked
// options keyed by directive title. Empty input takes the default.
func askSelections(in *bufio.Scanner, out *bufio.Writer, dirs []handler.Directive) (map[string]string, error) {
	if len(dirs) == 0 {
		return nil, nil
	}
	selections := make(map[string]string, len(dirs))
	for _, d := range dirs {
		fmt.Fprintf(out, "%s [%s] (default %s): ", d.Title, strings.Join(d.Options, ", "), d.Default)
		out.Flush()
		if !in.Scan() {
			return nil, in.Err()
		}
		choice := strings.TrimSpace(in.Text())
		if choice == "" {
			choice = d.Default
		}
		selections[d.Title] = choice
	}
	return selections, nil
}

func parseFlags() options {
	var opts options
	var scripts string
	var showVersion bool

	flag.StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.SessionPath, "session", "", "Session file to resume and save")
	flag.StringVar(&opts.SessionPath, "s", "", "Session file (shorthand)")
	flag.StringVar(&scripts, "scripts", "", "Comma-separated Lua handler files to register")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "alphasolve - analytical math notebook evaluator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: alphasolve [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  alphasolve                          Interactive notebook\n")
		fmt.Fprintf(os.Stderr, "  alphasolve -s notebook.json         Resume a saved session\n")
		fmt.Fprintf(os.Stderr, "  alphasolve -scripts extra.lua       Add a scripted handler\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("alphasolve %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	if scripts != "" {
		for _, p := range strings.Split(scripts, ",") {
			if p = strings.TrimSpace(p); p != "" {
				opts.Scripts = append(opts.Scripts, p)
			}
		}
	}
	return opts
}
