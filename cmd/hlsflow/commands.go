package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sameehj/hlsflow/pkg/backend"
	"github.com/sameehj/hlsflow/pkg/flow"
	"github.com/sameehj/hlsflow/pkg/metrics"
	"github.com/sameehj/hlsflow/pkg/types"
)

func passesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "passes [backend]",
		Short: "List the passes registered for a backend, or the registered backend scopes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			ids := s.env.Passes.Backends()
			if len(args) == 1 {
				ids = s.env.Passes.PassesFor(args[0])
			}
			return render(cmd.OutOrStdout(), opts.output, ids, func(w io.Writer) error {
				for _, id := range ids {
					if id == "" {
						id = "(any)"
					}
					fmt.Fprintln(w, id)
				}
				return nil
			})
		},
	}
}

func flowsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "flows [backend]",
		Short: "List registered flows, optionally for one backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			keys := s.env.Flows.Keys()
			if len(args) == 1 {
				keys = s.env.Flows.FlowsFor(args[0])
			}
			flows := make([]types.Flow, 0, len(keys))
			for _, k := range keys {
				f, err := s.env.Flows.Get(k)
				if err != nil {
					return err
				}
				flows = append(flows, f)
			}
			return render(cmd.OutOrStdout(), opts.output, flows, func(w io.Writer) error {
				for _, f := range flows {
					fmt.Fprintf(w, "%-36s passes=%-3d requires=%s\n", f.Key(), len(f.Passes), joinKeys(f.Requires))
				}
				return nil
			})
		},
	}
}

func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <flow>",
		Short: "Show one flow, e.g. vitis:ip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			key, err := types.ParseFlowKey(args[0])
			if err != nil {
				return err
			}
			f, err := s.env.Flows.Get(key)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, f, func(w io.Writer) error {
				fmt.Fprintf(w, "flow:     %s\n", f.Key())
				fmt.Fprintf(w, "requires: %s\n", joinKeys(f.Requires))
				fmt.Fprintln(w, "passes:")
				for _, p := range f.Passes {
					fmt.Fprintf(w, "  - %s\n", p)
				}
				return nil
			})
		},
	}
}

func expandCmd(opts *options) *cobra.Command {
	var build bool
	cmd := &cobra.Command{
		Use:   "expand <flow|backend>",
		Short: "Print the ordered pass sequence a flow, or with --build a backend build, executes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			var refs []types.PassRef
			if build {
				b, err := s.backend(args[0])
				if err != nil {
					return err
				}
				refs, err = b.BuildSequence(s.env.Flows)
				if err != nil {
					return err
				}
			} else {
				key, err := types.ParseFlowKey(args[0])
				if err != nil {
					return err
				}
				if refs, err = s.env.Flows.Expand(key); err != nil {
					return err
				}
			}
			return render(cmd.OutOrStdout(), opts.output, refs, func(w io.Writer) error {
				for i, r := range refs {
					fmt.Fprintf(w, "%3d  %-44s %s\n", i+1, r.ID, r.Flow)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&build, "build", false, "treat the argument as a backend and expand its build roots")
	return cmd
}

type checkReport struct {
	Backend   string   `yaml:"backend" json:"backend"`
	Default   string   `yaml:"default" json:"default"`
	Extras    []string `yaml:"extras,omitempty" json:"extras,omitempty"`
	Unreached []string `yaml:"unreached,omitempty" json:"unreached,omitempty"`
}

func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [backend...]",
		Short: "Verify that every registered pass is reachable from some flow of its backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			if err := s.env.Flows.Validate(); err != nil {
				return err
			}
			targets := s.backends
			if len(args) > 0 {
				targets = nil
				for _, name := range args {
					b, err := s.backend(name)
					if err != nil {
						return err
					}
					targets = append(targets, b)
				}
			}

			var reports []checkReport
			failed := false
			for _, b := range targets {
				unreached, err := backend.Check(s.env, b)
				if err != nil {
					return err
				}
				failed = failed || len(unreached) > 0
				reports = append(reports, checkReport{
					Backend:   b.Name,
					Default:   b.Default.String(),
					Extras:    b.ExtraPasses,
					Unreached: unreached,
				})
			}
			err = render(cmd.OutOrStdout(), opts.output, reports, func(w io.Writer) error {
				for _, r := range reports {
					status := "ok"
					if len(r.Unreached) > 0 {
						status = "unreached: " + strings.Join(r.Unreached, ", ")
					}
					fmt.Fprintf(w, "%-10s default=%-12s extras=%d %s\n", r.Backend, r.Default, len(r.Extras), status)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if failed {
				return fmt.Errorf("some passes are not reachable from any flow")
			}
			return nil
		},
	}
}

func runCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <flow>",
		Short: "Dry-run a flow through the runner and report each pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			key, err := types.ParseFlowKey(args[0])
			if err != nil {
				return err
			}
			runner := flow.NewRunner(s.env.Flows, flow.DryRun)
			runner.SetLogger(s.logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			run, err := runner.Run(ctx, key)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, run, func(w io.Writer) error {
				fmt.Fprintf(w, "run %s: %s %s (%d passes)\n", run.ID, run.Flow, run.State, len(run.Steps))
				return nil
			})
		},
	}
}

type metricSample struct {
	Name   string            `yaml:"name" json:"name"`
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Value  float64           `yaml:"value" json:"value"`
}

func metricsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Build the catalog and print the registration metrics it produced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metrics.Reset()
			reg := prometheus.NewRegistry()
			if err := metrics.Register(reg); err != nil {
				return err
			}
			if _, err := openSession(cmd, opts); err != nil {
				return err
			}
			families, err := reg.Gather()
			if err != nil {
				return err
			}

			var samples []metricSample
			for _, mf := range families {
				for _, m := range mf.GetMetric() {
					sample := metricSample{Name: mf.GetName(), Labels: map[string]string{}}
					for _, lp := range m.GetLabel() {
						sample.Labels[lp.GetName()] = lp.GetValue()
					}
					switch {
					case m.GetCounter() != nil:
						sample.Value = m.GetCounter().GetValue()
					case m.GetGauge() != nil:
						sample.Value = m.GetGauge().GetValue()
					}
					samples = append(samples, sample)
				}
			}
			return render(cmd.OutOrStdout(), opts.output, samples, func(w io.Writer) error {
				for _, sm := range samples {
					keys := make([]string, 0, len(sm.Labels))
					for k := range sm.Labels {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					pairs := make([]string, len(keys))
					for i, k := range keys {
						pairs[i] = fmt.Sprintf("%s=%q", k, sm.Labels[k])
					}
					fmt.Fprintf(w, "%s{%s} %g\n", sm.Name, strings.Join(pairs, ","), sm.Value)
				}
				return nil
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hlsflow %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

func joinKeys(keys []types.FlowKey) string {
	if len(keys) == 0 {
		return "-"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}
