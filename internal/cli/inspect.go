package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command, an interactive browser over a
// generated directory.
func (c *CLI) inspectCommand() *cobra.Command {
	var summaryOnly bool

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Browse a generated image directory",
		Long: `Browse a generated directory. Without an argument the configured augmented
output directory is used. --summary prints totals without starting the browser.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				dir = cfg.Output.AugDir
			}

			files, err := scanDataset(dir)
			if err != nil {
				return err
			}
			if summaryOnly {
				printSummary(dir, files)
				return nil
			}
			if len(files) == 0 {
				printInfo("No images in %s", dir)
				return nil
			}

			p := tea.NewProgram(NewDatasetModel(dir, files), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("browser: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "print totals only")
	return cmd
}

func printSummary(dir string, files []datasetFile) {
	s := summarize(files)
	printKeyValue("Directory", dir)
	printKeyValue("Files", humanize.Comma(int64(s.Files)))
	printKeyValue("Images", humanize.Comma(int64(s.Images)))
	printKeyValue("Originals", humanize.Comma(int64(s.Originals)))
	printKeyValue("Size", humanize.Bytes(uint64(s.Bytes)))
	if s.Images > 0 {
		printKeyValue("Per image", fmt.Sprintf("%.1f files", float64(s.Files)/float64(s.Images)))
	}
}
