package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joeycumines/go-goap/internal/goap"
	"github.com/joeycumines/go-goap/internal/scenario"
)

// plannerFlags override the [planner] config section.
type plannerFlags struct {
	maxNodes       int
	heuristicScale float64
}

func (f *plannerFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxNodes, "max-nodes", 0, "states explored per search (default from config)")
	cmd.Flags().Float64Var(&f.heuristicScale, "heuristic-scale", 0, "heuristic multiplier (default from config)")
}

func (a *app) scenarioOptions(cmd *cobra.Command, f *plannerFlags) scenario.Options {
	opts := scenario.Options{
		MaxNodes:       a.settings.MaxNodes,
		HeuristicScale: a.settings.HeuristicScale,
		Logger:         a.logger,
	}
	if cmd.Flags().Changed("max-nodes") {
		opts.MaxNodes = f.maxNodes
	}
	if cmd.Flags().Changed("heuristic-scale") {
		opts.HeuristicScale = f.heuristicScale
	}
	return opts
}

func (a *app) loadWorld(path string, opts scenario.Options) (*scenario.World, error) {
	s, err := scenario.Load(path)
	if err != nil {
		return nil, a.printer.Error("Failed to load scenario", err.Error(), nil,
			"Check the document against scenario.schema.json")
	}
	w, err := s.Build(opts)
	if err != nil {
		return nil, a.printer.Error("Failed to build scenario", err.Error(), map[string]string{"scenario": path})
	}
	return w, nil
}

func newPlanCommand(a *app) *cobra.Command {
	var flags plannerFlags
	cmd := &cobra.Command{
		Use:   "plan <scenario>",
		Short: "Print the cheapest plan for a scenario",
		Long: `Plan searches the scenario's action graph from its initial facts to its goal
and prints the resulting action sequence with per-action costs.

A search that hits --max-nodes prints the partial plan toward the most
promising state explored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.scenarioOptions(cmd, &flags)
			w, err := a.loadWorld(args[0], opts)
			if err != nil {
				return err
			}
			p, err := w.Plan(opts)
			if err != nil {
				return a.printer.Error("Planning failed", err.Error(), nil)
			}
			return a.printPlan(w, p)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) printPlan(w *scenario.World, p goap.Plan) error {
	name := w.Scenario.Name
	if name == "" {
		name = "scenario"
	}
	a.printer.Step("Planning %s: %s -> %s\n", name, p.From, p.To)

	if p.Path == nil {
		return a.printer.Error("No plan found",
			fmt.Sprintf("The goal is unreachable from the initial state (explored %d states).", p.Stats.Explored),
			map[string]string{"from": p.From.String(), "goal": p.To.String()},
			"Add an action whose effects lead toward the goal",
			"Check the facts and converters that define the initial state")
	}

	for i, action := range p.Actions {
		act, _ := w.Actions.Action(action)
		a.printer.Info("  %d. %s (cost %s) -> %s\n", i+1, action,
			strconv.FormatFloat(act.Cost(), 'g', -1, 64), p.Path[i+1])
	}

	summary := fmt.Sprintf("%d actions, cost %s, explored %d states",
		len(p.Actions), strconv.FormatFloat(p.Cost, 'g', 4, 64), p.Stats.Explored)
	if !p.Reached {
		a.printer.Warning("Partial plan (search bound reached): %s\n", summary)
		return nil
	}
	a.printer.Success("Plan found: %s\n", summary)
	return nil
}
