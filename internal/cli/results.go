package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moltda/pkg/diagram"
	pkgio "github.com/matzehuels/moltda/pkg/io"
)

// resultsCommand creates the results management command.
func (c *CLI) resultsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Manage saved results",
	}

	cmd.AddCommand(c.resultsListCommand())
	cmd.AddCommand(c.resultsShowCommand())
	cmd.AddCommand(c.resultsPNGCommand())
	cmd.AddCommand(c.resultsDeleteCommand())

	return cmd
}

func (c *CLI) resultsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved results, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			list, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No saved results")
				return nil
			}
			for _, s := range list {
				fmt.Printf("%s  %s  %s\n", StyleHighlight.Render(s.ID), StyleDim.Render(s.CreatedAt.Local().Format("2006-01-02 15:04")), s.Name)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results (0 for all)")
	return cmd
}

func (c *CLI) resultsShowCommand() *cobra.Command {
	var diagramsOnly bool
	cmd := &cobra.Command{
		Use:               "show [id]",
		Short:             "Print a saved result as JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeResultIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if diagramsOnly {
				return pkgio.WriteDiagramsJSON(rec.Result.Diagrams, os.Stdout)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
	cmd.Flags().BoolVar(&diagramsOnly, "diagrams", false, "print only the diagrams, in a form vectorize accepts")
	return cmd
}

func (c *CLI) resultsPNGCommand() *cobra.Command {
	var (
		output string
		scale  int
	)
	cmd := &cobra.Command{
		Use:               "png [id] [dim]",
		Short:             "Write one image of a saved result as PNG",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeResultIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid dimension %q", args[1])
			}
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = rec.ID + "_" + diagram.DimKey(dim) + ".png"
			}
			for i, d := range rec.Result.Dims {
				if d == dim {
					if err := pkgio.ExportPNG(rec.Result.Images[i], scale, output); err != nil {
						return err
					}
					printFile(output)
					return nil
				}
			}
			return fmt.Errorf("result %s has no dimension %d", rec.ID, dim)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <id>_dim<N>.png)")
	cmd.Flags().IntVar(&scale, "scale", pkgio.DefaultPNGScale, "PNG pixels per image cell")
	return cmd
}

func (c *CLI) resultsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete [id]",
		Short:             "Delete a saved result",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeResultIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
