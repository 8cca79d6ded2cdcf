package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"twdefaults/css"
	"twdefaults/engine"
	"twdefaults/selector"
	"twdefaults/state"
	"twdefaults/variant"
	"twdefaults/watch"
)

// Run implements "build" subcommand.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	root := cmd.Args().Get(0)
	if len(root) == 0 {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many content roots", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	if cmd.IsSet("input") {
		env.Cfg.Build.Input = cmd.String("input")
	}
	if cmd.IsSet("output") {
		env.Cfg.Build.Output = cmd.String("output")
	}

	b, err := New(env.Cfg, env.Rpt, env.Log)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("root", root), zap.String("content", b.scanner.Pattern()))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if err := b.Build(ctx, root, env.Stdin, env.Stdout); err != nil {
		return err
	}
	if !cmd.Bool("watch") {
		return nil
	}

	paths := append([]string{root}, env.Cfg.Build.Archives...)
	if env.Cfg.Build.Input != "" {
		paths = append(paths, env.Cfg.Build.Input)
	}
	log.Info("Watching for changes", zap.Strings("paths", paths))

	err = watch.Run(ctx, paths, cmd.Duration("debounce"), func(ctx context.Context) {
		if err := b.Build(ctx, root, env.Stdin, env.Stdout); err != nil && ctx.Err() == nil {
			log.Error("Rebuild failed", zap.Error(err))
		}
	}, env.Log)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Rewrite implements "rewrite" subcommand: it applies default variant to
// selectors from command line (or stdin) and prints results one per line.
func Rewrite(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("rewrite")

	opts := env.Cfg.Plugin.Options()
	if cmd.IsSet("modifier") {
		opts.Modifier = cmd.String("modifier")
	}
	if cmd.IsSet("strategy") {
		s, err := variant.ParseStrategy(cmd.String("strategy"))
		if err != nil {
			return fmt.Errorf("unable to use strategy: %w", err)
		}
		opts.Strategy = s
	}
	separator := env.Cfg.Build.Separator
	if cmd.IsSet("separator") {
		separator = cmd.String("separator")
	}

	plugin := variant.New(opts)
	eng := engine.New(separator, env.Log).Use(plugin)
	fn, ok := eng.Variant(plugin.Modifier())
	if !ok {
		return fmt.Errorf("variant %q is not registered", plugin.Modifier())
	}

	selectors := cmd.Args().Slice()
	if len(selectors) == 0 {
		var err error
		if selectors, err = readLines(env.Stdin); err != nil {
			return fmt.Errorf("unable to read selectors: %w", err)
		}
	}
	log.Debug("Rewriting selectors", zap.Int("count", len(selectors)), zap.String("modifier", plugin.Modifier()), zap.Stringer("strategy", opts.Strategy))

	for _, sel := range selectors {
		out, err := rewriteOne(fn, sel, opts.Layer != "")
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, out)

		if cmd.Bool("tree") {
			tree, err := selector.Parse(firstSelector(out))
			if err != nil {
				log.Warn("Unable to parse rewritten selector", zap.String("selector", out), zap.Error(err))
				continue
			}
			fmt.Fprint(env.Stdout, tree.Dump())
		}
	}
	return nil
}

func rewriteOne(fn variant.Func, sel string, layered bool) (string, error) {
	root := css.NewRoot()
	rule := css.NewRule(sel)
	root.Append(rule)
	if err := fn(variant.Context{Container: root}); err != nil {
		return "", err
	}
	if layered {
		return strings.TrimSpace(root.String()), nil
	}
	return rule.Selector, nil
}

// firstSelector returns selector of the first rule when rewriting produced
// a layer block.
func firstSelector(out string) string {
	root, err := css.NewParser(nil).Parse([]byte(out))
	if err != nil {
		return out
	}
	var sel string
	_ = css.WalkRules(root, func(r *css.Rule) error {
		if sel == "" {
			sel = r.Selector
		}
		return nil
	})
	if sel == "" {
		return out
	}
	return sel
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// Flags returns flags for "build" subcommand.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "keep running and rebuild on content changes"},
		&cli.DurationFlag{Name: "debounce", Value: watch.DefaultDebounce, Usage: "delay before rebuilding after change"},
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "utilities stylesheet `FILE` (STDIN when not set)"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "generated stylesheet `FILE` (STDOUT when not set)"},
	}
}

// RewriteFlags returns flags for "rewrite" subcommand.
func RewriteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "modifier", Aliases: []string{"m"}, Usage: "variant `NAME`"},
		&cli.StringFlag{Name: "separator", Aliases: []string{"s"}, Usage: "variant separator"},
		&cli.StringFlag{Name: "strategy", Usage: "rewriting strategy (" + strings.Join(variant.StrategyNames(), ", ") + ")"},
		&cli.BoolFlag{Name: "tree", Aliases: []string{"t"}, Usage: "dump parse tree of each rewritten selector"},
	}
}
