package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/execution"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/pipeline"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func interpretCmd() *cobra.Command {
	var (
		asJSON  bool
		withAll bool
		insight bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:     "interpret [command...]",
		Aliases: []string{"i"},
		Short:   "Interpret a test command and print the executable action",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cleanup, err := buildInterpreter(appCfg, interpreterOptions{forceInsight: insight, record: true})
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signalContext()
			defer cancel()

			interp := p.Interpret(ctx, strings.Join(args, " "))
			out := cmd.OutOrStdout()

			var plan *execution.Plan
			if dryRun {
				plan, err = execution.NewDryRun().Dispatch(ctx, interp.Action)
				if err != nil && !errors.Is(err, execution.ErrNotExecutable) {
					return err
				}
			}

			if asJSON {
				switch {
				case withAll:
					return writeJSON(out, interp)
				case plan != nil:
					return writeJSON(out, struct {
						Action any             `json:"action"`
						Plan   *execution.Plan `json:"plan"`
					}{interp.Action, plan})
				default:
					return writeJSON(out, interp.Action)
				}
			}

			fmt.Fprintln(out, renderAction(interp))
			if interp.Insight != nil {
				fmt.Fprintln(out, renderInsight(interp.Insight))
			}
			if dryRun {
				if plan == nil {
					fmt.Fprintln(out, warnStyle.Render("Nothing to run: "+interp.Action.ActionType))
				} else {
					fmt.Fprintln(out, renderPlan(plan))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the action as JSON")
	cmd.Flags().BoolVar(&withAll, "trace", false, "with --json, print every stage instead of the action only")
	cmd.Flags().BoolVar(&insight, "insight", false, "request LLM insight regardless of the configured mode")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the execution plan for the action")

	return cmd
}

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [command...]",
		Short: "Show the output of every interpretation stage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cleanup, err := buildInterpreter(appCfg, interpreterOptions{})
			if err != nil {
				return err
			}
			defer cleanup()

			interp := p.Interpret(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), renderExplain(interp))
			return nil
		},
	}
}

func batchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Interpret one command per line from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open batch file: %w", err)
				}
				defer f.Close()
				in = f
			}

			inputs, err := readCommands(in)
			if err != nil {
				return err
			}

			p, cleanup, err := buildInterpreter(appCfg, interpreterOptions{record: true})
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signalContext()
			defer cancel()

			results, err := p.InterpretBatch(ctx, inputs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				actions := make([]any, 0, len(results))
				for _, r := range results {
					actions = append(actions, r.Action)
				}
				return writeJSON(out, actions)
			}
			fmt.Fprint(out, renderBatch(results, p.Stats()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print actions as a JSON array")
	return cmd
}

// readCommands returns the non-empty lines of r, skipping # comments.
func readCommands(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return out, nil
}

func renderBatch(results []*pipeline.Interpretation, stats pipeline.Stats) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%3d  %-22s  %-20s  %s  %s\n",
			i+1, r.Action.ActionType, r.Action.ServiceName, confidenceText(r), truncate(r.Input, 40))
	}
	fmt.Fprintf(&b, "\n%d commands, %.0f%% confident, %d unknown, %d errors\n",
		stats.TotalRequests, stats.ConfidentRatio(), stats.UnknownCount, stats.ErrorCount)
	return b.String()
}
