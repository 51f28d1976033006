package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moltda/pkg/homology"
	pkgio "github.com/matzehuels/moltda/pkg/io"
)

// computeCommand creates the compute command.
func (c *CLI) computeCommand() *cobra.Command {
	var (
		flags    vectorizeFlags
		engine   string
		exact    bool
		periodic bool
	)

	cmd := &cobra.Command{
		Use:   "compute [cloud.xyz|cloud.json]",
		Short: "Compute persistence diagrams of a point cloud and vectorize them",
		Long: `Run an external homology engine on a point cloud, convert its diagrams to
Euclidean units and vectorize them.

The engine command receives {"coords", "weights", "exact", "periodic"} as JSON
on stdin and must print a list of diagrams, one per dimension, on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c, cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("engine") {
				engine = c.Config.Engine.Command
			}
			if !cmd.Flags().Changed("exact") {
				exact = c.Config.Engine.Exact
			}
			if !cmd.Flags().Changed("periodic") {
				periodic = c.Config.Engine.Periodic
			}
			if engine == "" {
				return fmt.Errorf("no engine: pass --engine or set [engine] command in the config")
			}

			ctx := cmd.Context()
			cl, err := pkgio.ImportCloud(args[0])
			if err != nil {
				return err
			}
			eng, err := homology.NewCommandEngine(engine, c.Logger)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			timer := startTimer(loggerFromContext(ctx))
			spinner := startStages(ctx, os.Stderr, "Checking engine cache for "+args[0]+"...")
			hopts := homology.Options{Exact: exact, Periodic: periodic}
			res, err := runner.ExecuteCloud(ctx, eng, engine, cl, hopts, opts)
			spinner.Stop()
			if err != nil {
				return err
			}
			timer.done("computed", append([]any{"cloud", args[0], "atoms", cl.Len(), "engine_cached", res.CacheInfo.EngineHit}, resultFields(res)...)...)

			written, err := writeArtifacts(args[0], flags.output, res)
			if err != nil {
				return err
			}
			reportResult(res, written)
			if res.CacheInfo.EngineHit {
				printDetail("engine output from cache")
			}

			if flags.save {
				id, err := c.saveRecord(ctx, args[0], opts, res)
				if err != nil {
					return err
				}
				printKeyValue("Saved", id)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&engine, "engine", "", "homology engine command, e.g. \"dionysus-alpha --json\"")
	cmd.Flags().BoolVar(&exact, "exact", false, "ask the engine for exact arithmetic")
	cmd.Flags().BoolVar(&periodic, "periodic", false, "ask the engine for periodic boundary conditions")

	return cmd
}
