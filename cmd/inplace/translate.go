package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaguanLabs/inplace"
	"github.com/ZaguanLabs/inplace/cache"
	"github.com/ZaguanLabs/inplace/internal/app"
	"github.com/ZaguanLabs/inplace/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type translateOptions struct {
	output     string
	jsonOutput bool
	dryRun     bool
	quiet      bool
}

func newTranslateCmd(g *globalOptions) *cobra.Command {
	opts := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate an HTML page in place",
		Long: `Translate every text block of an HTML page and insert each translation
right after its source element. Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, g, opts, args)
		},
	}

	f := cmd.Flags()
	f.String("service", string(inplace.ServiceGoogle), "Translation service (tencent, google, openai)")
	f.String("credential", "", "Credential for the openai service")
	f.String("selector", inplace.DefaultSelector, "CSS selector for candidate elements")
	f.String("lang", inplace.DefaultTargetLang, "Target language for relay backends")
	f.String("relay", config.RelayLocal, "Relay mode (local, http, lambda)")
	f.String("relay-url", "", "Relay URL in http mode")
	f.String("function", "", "Relay function name in lambda mode")
	f.Duration("timeout", time.Minute, "Per-request timeout in local mode")
	f.String("cache", config.CacheMemory, "Reply cache (none, memory, redis, sqlite)")
	f.Duration("cache-ttl", time.Hour, "Reply cache TTL (0 for no expiry)")
	f.String("cache-file", "", "Load the reply cache from this file and save it back afterwards")
	f.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	f.BoolVar(&opts.jsonOutput, "json", false, "Output result as JSON")
	f.BoolVar(&opts.dryRun, "dry-run", false, "List the elements that would be translated")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")

	return cmd
}

func readInput(g *globalOptions, args []string) (content, name string, err error) {
	if len(args) == 0 {
		data, err := io.ReadAll(g.stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(args[0]), nil
}

func runTranslate(cmd *cobra.Command, g *globalOptions, opts *translateOptions, args []string) error {
	cfg, err := config.Load(g.configFile, cmd.Flags())
	if err != nil {
		return err
	}

	input, inputName, err := readInput(g, args)
	if err != nil {
		return err
	}

	if opts.dryRun {
		return runDryRun(g.stdout, input, inputName, cfg.Selector, opts.jsonOutput)
	}

	logger, err := app.NewLogger(cfg.Log, g.stderr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()

	rt, err := app.NewClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := loadCacheFile(ctx, rt.Cache, cfg.Cache.File, logger); err != nil {
		return err
	}

	overlay := inplace.New(rt.Channel, inplace.WithLogger(logger))

	if !opts.quiet {
		fmt.Fprintf(g.stderr, "Translating %s with %s...\n", inputName, cfg.ServiceID())
	}

	start := time.Now()
	result, err := overlay.TranslateDocument(ctx, input, cfg.Selector, cfg.ServiceID(), cfg.Credential)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	if err := saveCacheFile(ctx, rt.Cache, cfg.Cache.File, logger); err != nil {
		return err
	}

	var out io.Writer = g.stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if opts.jsonOutput {
		return outputJSON(out, result, elapsed)
	}

	fmt.Fprint(out, result.Content)

	if !opts.quiet {
		fmt.Fprintf(g.stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(g.stderr, "  Elements found: %d\n", result.Total)
		fmt.Fprintf(g.stderr, "  Translated:     %d\n", result.Committed)
		fmt.Fprintf(g.stderr, "  Failed:         %d\n", result.Failed)
		fmt.Fprintf(g.stderr, "  Skipped:        %d\n", result.Skipped)
	}

	return nil
}

func loadCacheFile(ctx context.Context, c cache.ReplyCache, path string, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	if c == nil {
		logger.Warn("cache file ignored: no local reply cache", zap.String("path", path))
		return nil
	}

	res, err := cache.NewImporter(c).ImportFromFile(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading cache file: %w", err)
	}
	logger.Info("loaded reply cache", zap.String("path", path), zap.Int("entries", res.Imported))
	return nil
}

func saveCacheFile(ctx context.Context, c cache.ReplyCache, path string, logger *zap.Logger) error {
	if path == "" || c == nil {
		return nil
	}
	enumerable, ok := c.(cache.Enumerable)
	if !ok {
		logger.Warn("cache file not written: cache cannot be listed", zap.String("path", path))
		return nil
	}

	md := map[string]string{"tool": inplace.Name, "version": version}
	if err := cache.NewExporter(enumerable).ExportToFile(ctx, path, md); err != nil {
		return fmt.Errorf("saving cache file: %w", err)
	}
	return nil
}

// runDryRun shows what would be translated without calling the relay.
func runDryRun(stdout io.Writer, input, inputName, selector string, jsonOut bool) error {
	doc, err := inplace.ParseDocument(input)
	if err != nil {
		return err
	}
	anchors := doc.Describe(selector)

	if jsonOut {
		type dryRunOutput struct {
			InputFile string   `json:"input_file"`
			Count     int      `json:"count"`
			Paths     []string `json:"paths"`
			Texts     []string `json:"texts"`
		}

		out := dryRunOutput{InputFile: inputName, Count: len(anchors)}
		for _, a := range anchors {
			out.Paths = append(out.Paths, a.Path)
			out.Texts = append(out.Texts, a.Text)
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(stdout, "Dry run: %s\n", inputName)
	fmt.Fprintf(stdout, "Found %d translatable elements:\n\n", len(anchors))
	for i, a := range anchors {
		fmt.Fprintf(stdout, "%3d. %q\n", i+1, truncate(a.Text, 60))
		fmt.Fprintf(stdout, "     Path: %s\n", a.Path)
	}
	return nil
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	Content   string `json:"content"`
	Total     int    `json:"total"`
	Committed int    `json:"committed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// outputJSON writes the result as JSON.
func outputJSON(w io.Writer, result *inplace.ProcessedContent, elapsed time.Duration) error {
	out := JSONOutput{
		Content:   result.Content,
		Total:     result.Total,
		Committed: result.Committed,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
		ElapsedMs: elapsed.Milliseconds(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
