package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/openapi2ts/internal/emitter"
	"github.com/mark3labs/openapi2ts/internal/emitter/clientemitter"
	"github.com/mark3labs/openapi2ts/internal/emitter/docsemitter"
	"github.com/mark3labs/openapi2ts/internal/emitter/hooksemitter"
	"github.com/mark3labs/openapi2ts/internal/emitter/playgroundemitter"
	genspec "github.com/mark3labs/openapi2ts/internal/spec"
)

// allTargets lists the renderers in the order they run.
var allTargets = []string{"client", "hooks", "docs", "playground"}

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Inputs      []string
	Out         string
	BaseURL     string
	ClientName  string
	Targets     []string
	IncludeTags []string
	ExcludeTags []string
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate TypeScript artifacts from an OpenAPI/Swagger document",
		Long: "Generate a typed TypeScript client, React hooks, Markdown docs, and an HTML " +
			"playground from an OpenAPI/Swagger document. Options can be provided via flags, " +
			"config files, or defaults.",
		Example: strings.TrimSpace(`  openapi2ts generate --input spec.yaml --out ./generated
  openapi2ts generate --input spec.yaml --out ./generated --targets client,docs
  openapi2ts --config openapi2ts.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("input", nil, "Path or URL of an OpenAPI/Swagger document (repeatable)")
	flags.String("out", "", "Output directory for generated artifacts")
	flags.String("base-url", "", "Base URL baked into the client and playground (defaults to the document's first server)")
	flags.String("client-name", "", "Exported client object name (defaults to api)")
	flags.StringSlice("targets", nil, "Artifacts to render: client, hooks, docs, playground (default all)")
	flags.StringSlice("include-tags", nil, "Only keep endpoints carrying one of these tags")
	flags.StringSlice("exclude-tags", nil, "Drop endpoints carrying any of these tags")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output files when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetStringSlice("input")
		if err != nil {
			return err
		}
		cfg.Inputs = sanitizeList(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("base-url") {
		value, err := flags.GetString("base-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = strings.TrimSpace(value)
	}
	if flags.Changed("client-name") {
		value, err := flags.GetString("client-name")
		if err != nil {
			return err
		}
		cfg.ClientName = strings.TrimSpace(value)
	}
	if flags.Changed("targets") {
		value, err := flags.GetStringSlice("targets")
		if err != nil {
			return err
		}
		cfg.Targets = sanitizeList(value)
	}
	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeList(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeList(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Inputs = sanitizeList(c.Inputs)
	c.Out = strings.TrimSpace(c.Out)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.ClientName = strings.TrimSpace(c.ClientName)
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	targets := sanitizeList(c.Targets)
	for i, t := range targets {
		targets[i] = strings.ToLower(t)
	}
	c.Targets = targets
}

func (c *GenerateConfig) validate() error {
	if len(c.Inputs) == 0 {
		return newUsageError("generate: at least one --input is required (set via flag or config file)")
	}
	if c.Out == "" {
		return newUsageError("generate: --out is required (set via flag or config file)")
	}

	if len(c.Targets) == 0 {
		c.Targets = append([]string(nil), allTargets...)
	} else {
		for _, t := range c.Targets {
			if !knownTarget(t) {
				return newUsageError(fmt.Sprintf("generate: unknown target %q (allowed: %s)", t, strings.Join(allTargets, ", ")))
			}
		}
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func knownTarget(t string) bool {
	for _, known := range allTargets {
		if t == known {
			return true
		}
	}
	return false
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	setupLogging(cfg.Verbose)

	// Load every input in parallel, keeping results in caller order.
	results := make([]*genspec.LoadResult, len(cfg.Inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, input := range cfg.Inputs {
		i, input := i, input
		g.Go(func() error {
			res, err := genspec.Load(gctx, input)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return specFailure(err)
	}

	docs := make([]*genspec.Document, len(results))
	for i, res := range results {
		doc, err := genspec.BuildDocument(ctx, res)
		if err != nil {
			return specFailure(err)
		}
		docs[i] = doc
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	slugs := docSlugs(docs)
	for i, doc := range docs {
		eps := genspec.ExtractEndpoints(doc,
			genspec.WithIncludeTags(cfg.IncludeTags),
			genspec.WithExcludeTags(cfg.ExcludeTags),
		)
		slog.Debug("document ready",
			"input", cfg.Inputs[i],
			"title", doc.Title,
			"endpoints", len(eps),
			"schemas", len(doc.SchemaOrder),
		)

		outDir, displayDir := cfg.Out, absOut
		if slugs != nil {
			outDir = filepath.Join(cfg.Out, slugs[i])
			displayDir = filepath.Join(absOut, slugs[i])
		}

		planned, err := emitTargets(ctx, doc, eps, cfg, outDir)
		if err != nil {
			return wrapOutputError(err, displayDir)
		}
		if cfg.DryRun {
			printPlan(displayDir, planned)
		}
	}

	return nil
}

func emitTargets(ctx context.Context, doc *genspec.Document, eps []genspec.Endpoint, cfg *GenerateConfig, outDir string) ([]emitter.PlannedFile, error) {
	var planned []emitter.PlannedFile
	for _, target := range cfg.Targets {
		switch target {
		case "client":
			res, err := clientemitter.Emit(ctx, doc, eps, clientemitter.Options{
				OutDir:     outDir,
				BaseURL:    cfg.BaseURL,
				ClientName: cfg.ClientName,
				Force:      cfg.Force,
				DryRun:     cfg.DryRun,
				Verbose:    cfg.Verbose,
			})
			if err != nil {
				return nil, err
			}
			planned = append(planned, res.Planned...)
		case "hooks":
			res, err := hooksemitter.Emit(ctx, doc, eps, hooksemitter.Options{
				OutDir:  outDir,
				Force:   cfg.Force,
				DryRun:  cfg.DryRun,
				Verbose: cfg.Verbose,
			})
			if err != nil {
				return nil, err
			}
			planned = append(planned, res.Planned...)
		case "docs":
			res, err := docsemitter.Emit(ctx, doc, eps, docsemitter.Options{
				OutDir:  outDir,
				Force:   cfg.Force,
				DryRun:  cfg.DryRun,
				Verbose: cfg.Verbose,
			})
			if err != nil {
				return nil, err
			}
			planned = append(planned, res.Planned...)
		case "playground":
			res, err := playgroundemitter.Emit(ctx, doc, eps, playgroundemitter.Options{
				OutDir:  outDir,
				BaseURL: cfg.BaseURL,
				Force:   cfg.Force,
				DryRun:  cfg.DryRun,
				Verbose: cfg.Verbose,
			})
			if err != nil {
				return nil, err
			}
			planned = append(planned, res.Planned...)
		}
	}
	return planned, nil
}

// docSlugs derives one output subdirectory per document for multi-input runs.
// A single document writes into the output directory directly.
func docSlugs(docs []*genspec.Document) []string {
	if len(docs) < 2 {
		return nil
	}
	taken := make(map[string]bool, len(docs))
	slugs := make([]string, len(docs))
	for i, doc := range docs {
		base := slugify(doc.Title)
		if base == "" {
			base = "doc-" + strconv.Itoa(i+1)
		}
		s := base
		for n := 2; taken[s]; n++ {
			s = base + "-" + strconv.Itoa(n)
		}
		taken[s] = true
		slugs[i] = s
	}
	return slugs
}

func slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// specFailure formats loader and resolver errors with their location and
// pointer context. These are pipeline failures, not usage errors, so the
// process exits 1 rather than 2.
func specFailure(err error) error {
	var se *genspec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			msg += "\nLocation: " + se.Location
		}
		if se.JSONPointer != "" {
			msg += "\nPointer: " + se.JSONPointer
		}
		return errors.New(msg)
	}
	return err
}

func printPlan(outDir string, planned []emitter.PlannedFile) {
	sort.Slice(planned, func(i, j int) bool { return planned[i].RelPath < planned[j].RelPath })
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(planned))
	for _, p := range planned {
		fmt.Fprintf(os.Stdout, "- %s (%d bytes)\n", p.RelPath, p.Size)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "input", "inputs":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Inputs = sanitizeList(list)
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "baseurl":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.BaseURL = str
		case "clientname":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ClientName = str
		case "targets":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Targets = sanitizeList(list)
		case "includetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.IncludeTags = sanitizeList(list)
		case "excludetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ExcludeTags = sanitizeList(list)
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
