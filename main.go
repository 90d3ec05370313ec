package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"swupfix/internal/config"
	"swupfix/internal/logger"
	"swupfix/internal/model"
	"swupfix/internal/report"
	"swupfix/internal/rewrite"
	"swupfix/internal/sections"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: swupfix [options]\n\n")
		fmt.Fprintf(os.Stderr, "swupfix rewrites swup:contentReplaced listeners in theme sections\n")
		fmt.Fprintf(os.Stderr, "into calls to window.onSwupContentReplaced, so page transitions\n")
		fmt.Fprintf(os.Stderr, "do not register the same listener twice.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  swupfix                  # Rewrite ../sections next to the binary\n")
		fmt.Fprintf(os.Stderr, "  swupfix -n               # Show what would change\n")
		fmt.Fprintf(os.Stderr, "  swupfix -d theme/sections --json\n")
	}

	dirFlag := pflag.StringP("dir", "d", "", "Sections directory (default: ../sections relative to the binary)")
	configFlag := pflag.StringP("config", "c", "", "Config file (default: swupfix.yaml in . or next to the binary)")
	dryRunFlag := pflag.BoolP("dry-run", "n", false, "Print diffs instead of writing files")
	jsonFlag := pflag.BoolP("json", "j", false, "Output the run summary as JSON")
	verboseFlag := pflag.BoolP("verbose", "v", false, "Enable debug logging on stderr")
	printConfigFlag := pflag.Bool("print-config", false, "Print the effective configuration as YAML and exit")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("swupfix version %s\n", model.Version)
		return
	}

	fsys := afero.NewOsFs()
	cfg, err := config.Load(fsys, *configFlag, config.ExecutableDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dirFlag != "" {
		cfg.SectionsDir = *dirFlag
	}
	cfg.SectionsDir = model.ExpandTilde(cfg.SectionsDir)
	if *verboseFlag {
		cfg.Log.Level = "debug"
	}

	if *printConfigFlag {
		out, err := cfg.YAML()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding config: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := runFix(fsys, cfg, log, os.Stdout, *dryRunFlag, *jsonFlag); err != nil {
		log.Fatal("rewrite aborted", zap.Error(err))
	}
}

// runFix rewrites every configured section and reports to w. Only I/O
// faults are returned; missing and complex sections are part of the report.
func runFix(fsys afero.Fs, cfg *config.Config, log *zap.Logger, w io.Writer, dryRun, jsonOut bool) error {
	rw := rewrite.New(
		rewrite.WithRegister(cfg.Register),
		rewrite.WithEvent(cfg.Event),
		rewrite.WithHook(cfg.Hook),
		rewrite.WithTidyIndent(cfg.TidyIndent),
	)
	fixer := sections.New(fsys, cfg.SectionsDir, rw,
		sections.WithSuffix(cfg.Suffix),
		sections.WithDryRun(dryRun),
		sections.WithLogger(log),
	)
	log.Debug("starting",
		zap.String("dir", fixer.Dir()),
		zap.Int("files", len(cfg.Files)),
		zap.String("pattern", rw.Pattern()),
		zap.Bool("dry_run", dryRun))

	targets := fixer.Targets(cfg.Files)

	if jsonOut {
		sum, err := fixer.Run(targets, nil)
		if err != nil {
			return err
		}
		return report.JSON(w, sum)
	}

	p := report.New(w)
	p.Header(rw.Event())
	sum, err := fixer.Run(targets, p.File)
	if err != nil {
		return err
	}
	p.Summary(sum)
	log.Debug("done", zap.Int("fixed", sum.Fixed), zap.Int("checked", len(sum.Files)))
	return nil
}
