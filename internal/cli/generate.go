package cli

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/matzehuels/faceaug/internal/config"
	"github.com/matzehuels/faceaug/pkg/pipeline"
)

// generateOpts holds the command-line flags of "generate". Flags that were
// set override the configuration file.
type generateOpts struct {
	startAt    int
	count      int
	variants   int
	seed       uint64
	workers    int
	augDir     string
	unaugDir   string
	writeUnaug bool
	refresh    bool
	noCache    bool
	noProgress bool
}

// apply copies the flags the user set onto cfg.
func (o *generateOpts) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("start-at") {
		cfg.Dataset.StartAt = o.startAt
	}
	if flags.Changed("count") {
		cfg.Dataset.Count = o.count
	}
	if flags.Changed("variants") {
		cfg.Augment.Count = o.variants
	}
	if flags.Changed("seed") {
		cfg.Augment.Seed = o.seed
	}
	if flags.Changed("workers") {
		cfg.Augment.Workers = o.workers
	}
	if flags.Changed("aug-dir") {
		cfg.Output.AugDir = o.augDir
	}
	if flags.Changed("unaug-dir") {
		cfg.Output.UnaugDir = o.unaugDir
	}
	if flags.Changed("unaug") {
		cfg.Output.WriteUnaug = o.writeUnaug
	}
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate <dir> [dir...]",
		Short: "Augment a directory tree of face images into a training set",
		Long: `Augment every image found in the given directories and their direct
subdirectories. Each source image is written as variant 000 followed by its
augmented variants, cropped and resized as configured.

Results do not depend on processing order: --start-at and --count select a
window of the sorted image list and produce the same files a full run would.

Examples:
  faceaug generate data/lfw
  faceaug generate data/lfw --count 100 --variants 5 --unaug
  faceaug generate data/lfw --start-at 100 --count 100 --workers 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, args, &opts)
		},
	}

	cmd.Flags().IntVar(&opts.startAt, "start-at", 0, "index of the first image to process")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "number of images to process (0 = all)")
	cmd.Flags().IntVar(&opts.variants, "variants", pipeline.DefaultVariants, "augmented variants per image")
	cmd.Flags().Uint64Var(&opts.seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "render variants in parallel (0 = serial)")
	cmd.Flags().StringVar(&opts.augDir, "aug-dir", "", "output directory for augmented images")
	cmd.Flags().StringVar(&opts.unaugDir, "unaug-dir", "", "output directory for unaugmented images")
	cmd.Flags().BoolVar(&opts.writeUnaug, "unaug", false, "also write the unaugmented originals")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached variants")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the augmented-set cache")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, dirs []string, opts *generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)

	popts, err := cfg.PipelineOptions(dirs)
	if err != nil {
		return err
	}
	popts.Refresh = opts.refresh
	popts.Logger = logger

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var bar *progressbar.ProgressBar
	if !opts.noProgress {
		popts.OnStart = func(total int) {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("augmenting"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("img"),
				progressbar.OptionSetTheme(progressbar.ThemeASCII),
				progressbar.OptionClearOnFinish(),
			)
		}
		popts.OnImage = func(pipeline.ImageResult) {
			_ = bar.Add(1)
		}
	}

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, popts)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		if result != nil && result.Images > 0 {
			printWarning("Stopped after %d images", result.Images)
		}
		return err
	}
	prog.done("Generation finished")

	printSuccess("Generated training set")
	printStats(result.Images, result.Variants, len(result.Files), result.CacheHits)
	printTimings(result.Stats.AugmentTime, result.Stats.WriteTime, result.Stats.TotalTime)
	if popts.WriteAug {
		printFile(popts.AugDir)
	}
	if popts.WriteUnaug {
		printFile(popts.UnaugDir)
	}
	if popts.WriteAug {
		printNewline()
		printNextStep("Browse the output", appName+" inspect "+popts.AugDir)
	}
	return nil
}
