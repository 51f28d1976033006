package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moltda/pkg/pipeline"
)

// vectorizeCommand creates the vectorize command.
func (c *CLI) vectorizeCommand() *cobra.Command {
	var flags vectorizeFlags

	cmd := &cobra.Command{
		Use:   "vectorize [diagrams.json|diagrams.csv]",
		Short: "Convert a persistence diagram file into persistence images",
		Long: `Convert a persistence diagram file into one persistence image per homology dimension.

Bounds are estimated per dimension unless --maxB and --maxP are given.
By default the result is written to <stem>_result.json in the working
directory, whatever directory the input is in. Use --output to choose a path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c, cmd)
			if err != nil {
				return err
			}
			opts.Input = args[0]
			return c.runVectorize(cmd, opts, &flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runVectorize(cmd *cobra.Command, opts pipeline.Options, flags *vectorizeFlags) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	timer := startTimer(loggerFromContext(ctx))
	spinner := startStages(ctx, os.Stderr, "Vectorizing "+opts.Input+"...")
	res, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	timer.done("vectorized", append([]any{"input", opts.Input}, resultFields(res)...)...)

	written, err := writeArtifacts(opts.Input, flags.output, res)
	if err != nil {
		return err
	}
	reportResult(res, written)

	if flags.save {
		id, err := c.saveRecord(ctx, opts.Input, opts, res)
		if err != nil {
			return err
		}
		printKeyValue("Saved", id)
		printNextStep("Render an image", "moltda results png "+id+" "+strconv.Itoa(opts.Dims[0]))
	}
	return nil
}
