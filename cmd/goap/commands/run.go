package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/spf13/cobra"

	"github.com/joeycumines/go-goap/internal/config"
	"github.com/joeycumines/go-goap/internal/goap"
	"github.com/joeycumines/go-goap/internal/reactive"
	"github.com/joeycumines/go-goap/internal/scenario"
)

var (
	errTickLimit  = errors.New("tick limit reached")
	errPlanFailed = errors.New("behavior tree failed")
)

// supervisor counts ticks of a root node and converts its outcome into the
// ticker's stop conditions: Success stops cleanly, Failure and the tick
// limit stop with an error.
type supervisor struct {
	maxTicks int
	ticks    int
	reached  bool
}

func (s *supervisor) wrap(node bt.Node) bt.Node {
	tick, children := node()
	return bt.New(func(children []bt.Node) (bt.Status, error) {
		if s.ticks >= s.maxTicks {
			return bt.Failure, errTickLimit
		}
		s.ticks++
		status, err := tick(children)
		switch {
		case err != nil:
			return bt.Failure, err
		case status == bt.Success:
			s.reached = true
			return bt.Failure, nil
		case status == bt.Failure:
			return bt.Failure, errPlanFailed
		}
		return status, nil
	}, children...)
}

func newRunCommand(a *app) *cobra.Command {
	var (
		flags        plannerFlags
		mode         string
		tickInterval time.Duration
		maxTicks     int
	)
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Execute a scenario until its goal holds",
		Long: `Run ticks a behavior tree over the scenario's live world until the goal is
satisfied, using each action's scripted statuses as its behavior.

Modes:
  agent     the replanning agent: plan, execute, replan on failure
  reactive  a PA-BT tree expanded backward from the goal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mode") {
				a.settings.Mode = mode
			}
			if cmd.Flags().Changed("tick-interval") {
				a.settings.TickInterval = tickInterval
			}
			if cmd.Flags().Changed("max-ticks") {
				a.settings.MaxTicks = maxTicks
			}
			if err := validateRunSettings(a.settings); err != nil {
				return a.printer.Error("Invalid run settings", err.Error(), nil)
			}

			w, err := a.loadWorld(args[0], a.scenarioOptions(cmd, &flags))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.runWorld(ctx, args[0], w)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "", "execution mode: agent, reactive (default from config)")
	cmd.Flags().DurationVar(&tickInterval, "tick-interval", 0, "delay between ticks (default from config)")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "ticks before giving up (default from config)")
	return cmd
}

func validateRunSettings(s *config.Settings) error {
	if err := config.DefaultSchema().Lookup(config.SectionRun, "mode").Validate(s.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if s.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", s.TickInterval)
	}
	if s.MaxTicks <= 0 {
		return fmt.Errorf("max ticks must be positive, got %d", s.MaxTicks)
	}
	return nil
}

func (a *app) runWorld(ctx context.Context, path string, w *scenario.World) error {
	var root bt.Node
	switch a.settings.Mode {
	case "reactive":
		state := reactive.NewState(w.Actions, w.Live, reactive.WithLogger(a.logger))
		if err := w.Bind(state); err != nil {
			return a.printer.Error("Failed to bind actions", err.Error(), nil)
		}
		node, err := reactive.NewPlan(state, w.Goal)
		if err != nil {
			return a.printer.Error("Failed to build reactive plan", err.Error(), nil)
		}
		root = node
	default:
		root = w.Agent.Node(w.Goal)
	}

	a.printer.Step("Running %s in %s mode (agent %s)\n", path, a.settings.Mode, w.Agent.ID())

	sup := &supervisor{maxTicks: a.settings.MaxTicks}
	ticker := bt.NewTickerStopOnFailure(ctx, a.settings.TickInterval, sup.wrap(root))
	<-ticker.Done()
	err := ticker.Err()

	for i, name := range w.Trace() {
		a.printer.Info("  %d. %s\n", i+1, name)
	}

	details := map[string]string{
		"scenario": path,
		"mode":     a.settings.Mode,
		"ticks":    strconv.Itoa(sup.ticks),
	}
	switch {
	case sup.reached:
	case errors.Is(err, errTickLimit):
		return a.printer.Error("Goal not reached", fmt.Sprintf("Stopped after %d ticks.", sup.ticks), details,
			"Raise --max-ticks",
			"Run 'goap plan' to check that the goal is reachable")
	case errors.Is(err, errPlanFailed):
		return a.printer.Error("Goal not reached", "The behavior tree failed.", details,
			"Run 'goap plan' to check that the goal is reachable")
	case ctx.Err() != nil:
		return a.printer.Error("Interrupted", ctx.Err().Error(), details)
	case err != nil:
		return a.printer.Error("Run failed", err.Error(), details)
	default:
		return a.printer.Error("Run stopped", "The ticker stopped before the goal was reached.", details)
	}

	summary := fmt.Sprintf("Goal reached after %d ticks", sup.ticks)
	if a.settings.Mode != "reactive" {
		summary += fmt.Sprintf(" (%d replans)", w.Agent.Replans())
	}
	a.printer.Success("%s\n", summary)
	a.printFacts(w)
	return nil
}

func (a *app) printFacts(w *scenario.World) {
	a.printer.Info("Final state:\n")
	for _, k := range w.Schema.Keys() {
		v, ok := w.Live.Lookup(k)
		if !ok {
			continue
		}
		a.printer.Info("  %s: %v (%t)\n", w.Schema.Name(k), v, w.Schema.Project(map[goap.Key]any{k: v})[k])
	}
}
