// Package build wires stylesheet parsing, content scanning and generation
// together and implements program subcommands.
package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"twdefaults/config"
	"twdefaults/content"
	"twdefaults/css"
	"twdefaults/engine"
	"twdefaults/variant"
)

// Builder generates stylesheet from utilities and content according to
// configuration. It remembers last output and does not rewrite unchanged
// results, so watching a tree which contains the output does not loop.
type Builder struct {
	log     *zap.Logger
	cfg     *config.BuildConfig
	rpt     *config.Report
	parser  *css.Parser
	engine  *engine.Engine
	scanner *content.Scanner

	last  []byte
	runs  int
	stdin []byte // read once, watch mode reuses it
}

// New prepares builder. Report may be nil.
func New(cfg *config.Config, rpt *config.Report, log *zap.Logger) (*Builder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	scanner, err := content.NewScanner(cfg.Build.Content, log)
	if err != nil {
		return nil, err
	}

	plugin := variant.New(cfg.Plugin.Options())
	log.Debug("Variant configured",
		zap.String("modifier", plugin.Modifier()),
		zap.Stringer("strategy", cfg.Plugin.Strategy),
		zap.String("layer", cfg.Plugin.Layer))

	return &Builder{
		log:     log.Named("build"),
		cfg:     &cfg.Build,
		rpt:     rpt,
		parser:  css.NewParser(log),
		engine:  engine.New(cfg.Build.Separator, log).Use(plugin),
		scanner: scanner,
	}, nil
}

// Build scans root, generates stylesheet and writes it out. When input or
// output are not configured stdin and stdout are used.
func (b *Builder) Build(ctx context.Context, root string, stdin io.Reader, stdout io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.runs++

	data, err := b.input(stdin)
	if err != nil {
		return err
	}
	sheet, err := b.parser.Parse(data, b.cfg.Input)
	if err != nil {
		return fmt.Errorf("unable to parse utilities stylesheet: %w", err)
	}

	candidates, err := b.scanner.Scan(ctx, root, b.cfg.Archives...)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		// unreadable files are not fatal
		b.log.Warn("Some content could not be scanned", zap.Error(err))
	}

	out, err := b.engine.Generate(sheet, candidates)
	if err != nil {
		return fmt.Errorf("unable to generate stylesheet: %w", err)
	}
	result := []byte(out.String())

	b.rpt.StoreData("css/output.css", result)
	if bytes.Equal(result, b.last) {
		b.log.Debug("Output unchanged", zap.Int("run", b.runs))
		return nil
	}
	b.last = result

	if err := b.output(result, stdout); err != nil {
		return err
	}
	b.log.Info("Stylesheet generated",
		zap.Int("candidates", len(candidates)),
		zap.Int("bytes", len(result)),
		zap.String("output", nameOr(b.cfg.Output, "STDOUT")))
	return nil
}

func (b *Builder) input(stdin io.Reader) ([]byte, error) {
	if b.cfg.Input == "" {
		if b.stdin == nil {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("unable to read utilities from STDIN: %w", err)
			}
			b.stdin = data
			b.rpt.StoreData("css/input.css", data)
		}
		return b.stdin, nil
	}

	data, err := os.ReadFile(b.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("unable to read utilities: %w", err)
	}
	b.rpt.Store("css/"+filepath.Base(b.cfg.Input), b.cfg.Input)
	return data, nil
}

func (b *Builder) output(data []byte, stdout io.Writer) error {
	if b.cfg.Output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.cfg.Output), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(b.cfg.Output, data, 0644); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}
	return nil
}

func nameOr(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
