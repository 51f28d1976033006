package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/moltda/pkg/diagram"
	pkgio "github.com/matzehuels/moltda/pkg/io"
	"github.com/matzehuels/moltda/pkg/persim"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

// batchCommand creates the batch command.
func (c *CLI) batchCommand() *cobra.Command {
	var flags vectorizeFlags

	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Vectorize several diagram files on one shared scale",
		Long: `Vectorize several diagram files so that images of the same dimension are comparable.

Bounds are estimated per dimension jointly over all files unless --maxB and
--maxP are given. With --output, results are written into that directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c, cmd)
			if err != nil {
				return err
			}
			return c.runBatch(cmd, args, opts, &flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runBatch(cmd *cobra.Command, inputs []string, opts pipeline.Options, flags *vectorizeFlags) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	timer := startTimer(loggerFromContext(ctx))
	spinner := startStages(ctx, os.Stderr, fmt.Sprintf("Reading %d files...", len(inputs)))
	sets := make([]diagram.Arrays, len(inputs))
	pairs := 0
	for i, input := range inputs {
		arrays, _, err := runner.LoadWithCacheInfo(ctx, input, opts)
		if err != nil {
			spinner.Stop()
			return fmt.Errorf("%s: %w", input, err)
		}
		sets[i] = arrays
		pairs += arrays.Len()
	}

	results, err := runner.VectorizeBatch(ctx, sets, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	timer.done("vectorized batch", "files", len(inputs), "pairs", pairs)

	for i, res := range results {
		if err := runner.RenderInto(res, opts); err != nil {
			return fmt.Errorf("%s: %w", inputs[i], err)
		}
		output := ""
		if flags.output != "" {
			output = filepath.Join(flags.output, filepath.Base(pkgio.ResultPath(inputs[i])))
		}
		if _, err := writeArtifacts(inputs[i], output, res); err != nil {
			return err
		}
		if flags.save {
			if _, err := c.saveRecord(ctx, inputs[i], opts, res); err != nil {
				return err
			}
		}
	}

	printNewline()
	fmt.Println(batchTable(inputs, results))
	printSpecs(opts.Dims, results[0].Specs)
	return nil
}

// batchTable renders one row per input: pairs, and the peak intensity of every
// vectorized dimension.
func batchTable(inputs []string, results []*pipeline.Result) string {
	headers := []string{"File", "Pairs"}
	if len(results) > 0 {
		for _, d := range results[0].Dims {
			headers = append(headers, "Peak "+diagram.DimKey(d))
		}
	}
	headers = append(headers, "")

	rows := make([][]string, len(results))
	for i, res := range results {
		row := []string{filepath.Base(inputs[i]), fmt.Sprintf("%d", res.Stats.Pairs)}
		for _, img := range res.Images {
			peak, _, _ := img.Max()
			row = append(row, fmt.Sprintf("%.4g", peak))
		}
		status := iconFresh
		if res.CacheInfo.ImageHit {
			status = iconCached
		}
		rows[i] = append(row, status)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	last := len(headers) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == last && rows[row][col] == iconCached:
				return base.Inherit(styleCached)
			case col == last:
				return base.Inherit(styleComputed)
			case col > 0:
				return base.Inherit(StyleNumber)
			}
			return base
		})
	return t.Render()
}

// printSpecs prints the shared bounds used for each dimension.
func printSpecs(dims []int, specs []persim.Specs) {
	for i, d := range dims {
		if i < len(specs) {
			printKeyValue(diagram.DimKey(d), specs[i].String())
		}
	}
}
