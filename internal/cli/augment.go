package cli

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/matzehuels/faceaug/pkg/dataset"
)

type augmentOpts struct {
	output   string
	variants int
	index    int
	seed     uint64
	noCache  bool
}

// augmentCommand creates the augment command, which writes the variants of
// one image at full size.
func (c *CLI) augmentCommand() *cobra.Command {
	var opts augmentOpts

	cmd := &cobra.Command{
		Use:   "augment <image>",
		Short: "Write the augmented variants of a single image",
		Long: `Write an image and its augmented variants to a directory without cropping
or resizing. --index selects the random stream, so the variants match those
"generate" produces for the image at that position.

Example:
  faceaug augment face.jpg -o preview --variants 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("variants") {
				cfg.Augment.Count = opts.variants
			}
			if cmd.Flags().Changed("seed") {
				cfg.Augment.Seed = opts.seed
			}
			popts, err := cfg.PipelineOptions(nil)
			if err != nil {
				return err
			}
			popts.Logger = logger
			popts.AugDir = opts.output
			popts.WriteAug = true
			popts.WriteUnaug = false
			popts.Crop = image.Rectangle{}
			popts.Size = 0

			img, err := dataset.LoadImage(args[0])
			if err != nil {
				return err
			}
			sink := popts.Sink()
			if err := sink.Prepare(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Process(ctx, opts.index, args[0], img, sink, popts)
			if err != nil {
				return err
			}

			printSuccess("Wrote %d variants of %s", res.Variants, args[0])
			printDetail("%dx%d, %d channel(s)", img.Width, img.Height, img.Channels)
			for _, f := range res.Files {
				printFile(f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "augmented", "output directory")
	cmd.Flags().IntVar(&opts.variants, "variants", 0, "augmented variants (default from config)")
	cmd.Flags().IntVar(&opts.index, "index", 0, "dataset index selecting the random stream")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the augmented-set cache")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if opts.index < 0 {
			return fmt.Errorf("--index must not be negative, got %d", opts.index)
		}
		return nil
	}

	return cmd
}
