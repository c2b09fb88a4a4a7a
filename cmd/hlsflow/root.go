package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sameehj/hlsflow/pkg/backend"
	"github.com/sameehj/hlsflow/pkg/catalog"
	"github.com/sameehj/hlsflow/pkg/config"
	"github.com/sameehj/hlsflow/pkg/runtime/logging"
)

type options struct {
	configFile string
	catalog    string
	output     string
	logLevel   string
}

// session is everything a sub-command needs once the catalog has been built.
type session struct {
	cfg      *config.Config
	env      *backend.Env
	backends []*backend.Backend
	logger   *slog.Logger
}

func (s *session) backend(name string) (*backend.Backend, error) {
	for _, b := range s.backends {
		if strings.EqualFold(b.Name, name) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("backend not built: %s", name)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "hlsflow",
		Short:         "Inspect and run the optimization flows of HLS code-generation backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ~/.hlsflow/config.yaml)")
	root.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "pass/backend catalog (default: builtin)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, yaml or json")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		passesCmd(opts),
		flowsCmd(opts),
		showCmd(opts),
		expandCmd(opts),
		checkCmd(opts),
		runCmd(opts),
		metricsCmd(opts),
		versionCmd(),
	)
	return root
}

func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	if _, err := config.LoadDotEnv("."); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.catalog != "" {
		cfg.CatalogPath = opts.catalog
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	env := backend.NewEnv(logger)
	built, err := cat.Build(env, cfg.Backends...)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, env: env, backends: built, logger: env.Logger}, nil
}

// render writes v as yaml or json, or calls text for the plain format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch strings.ToLower(format) {
	case "", "text":
		return text(w)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
