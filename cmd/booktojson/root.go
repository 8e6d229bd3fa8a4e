package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/booktojson/internal/book"
	"github.com/dgallion1/booktojson/internal/cleaner"
	"github.com/dgallion1/booktojson/internal/config"
	"github.com/dgallion1/booktojson/internal/convert"
	"github.com/dgallion1/booktojson/internal/export"
	"github.com/dgallion1/booktojson/internal/logging"
	"github.com/dgallion1/booktojson/internal/parser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "booktojson book.pdf|book.epub",
		Short:         "Extract the numbered chapters of a PDF or EPUB into JSON",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: got %d", ErrBadArgumentCount, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return convertBook(cmd, args[0], stdout)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	pf := cmd.PersistentFlags()
	pf.String("config", "", "YAML config file")
	pf.String("pdf-engine", parser.EngineMuPDF, "PDF text engine (mupdf|native)")
	pf.String("epub-titles", parser.TitlesName, "EPUB chapter titles (name|heading)")
	pf.String("title-match", cleaner.MatchSubstring.String(), "repeated title matching (substring|word)")
	pf.Bool("nfc", false, "normalize text to Unicode NFC")
	pf.String("log-level", "info", "log level (debug|info|warn|error)")
	pf.String("log-format", "console", "log format (console|json)")

	f := cmd.Flags()
	f.StringP("out", "o", "out.json", "output file")
	f.String("format", "", "output format (json|markdown|html|docx); inferred from --out when empty")
	return cmd
}

// loadConfig layers environment, the optional config file and explicit flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path, cfg); err != nil {
			return cfg, err
		}
	}

	strFlags := map[string]*string{
		"out":         &cfg.Out,
		"format":      &cfg.Format,
		"pdf-engine":  &cfg.PDFEngine,
		"epub-titles": &cfg.EPUBTitles,
		"title-match": &cfg.TitleMatch,
		"log-level":   &cfg.LogLevel,
		"log-format":  &cfg.LogFormat,
		"port":        &cfg.Port,
	}
	for name, dst := range strFlags {
		if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
			*dst = fl.Value.String()
		}
	}
	if cmd.Flags().Changed("nfc") {
		cfg.NFC, _ = cmd.Flags().GetBool("nfc")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", errUsage, err)
	}
	return cfg, nil
}

func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return cfg, log, nil
}

func convertBook(cmd *cobra.Command, input string, stdout io.Writer) error {
	if !parser.IsSupportedExtension(input) {
		return fmt.Errorf("%w: %s", parser.ErrUnsupportedFormat, input)
	}

	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	match, err := cleaner.ParseMatching(cfg.TitleMatch)
	if err != nil {
		return err
	}

	conv := convert.New(convert.Options{
		PDFEngine:  cfg.PDFEngine,
		EPUBTitles: cfg.EPUBTitles,
		TitleMatch: match,
		NFC:        cfg.NFC,
	}, log)

	chapters, err := conv.ConvertFile(cmd.Context(), input)
	switch {
	case errors.Is(err, parser.ErrNoTableOfContents):
		fmt.Fprintln(stdout, "no TOC found")
		log.Warn("no table of contents", zap.String("file", input))
		chapters = []book.Chapter{}
	case err != nil:
		return err
	}

	if err := export.WriteFile(cfg.Out, chapters, format); err != nil {
		return err
	}
	log.Info("wrote chapters",
		zap.String("out", cfg.Out),
		zap.String("format", string(format)),
		zap.Int("chapters", len(chapters)),
	)
	return nil
}
