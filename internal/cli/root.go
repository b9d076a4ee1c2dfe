package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/faceaug/pkg/buildinfo"
	"github.com/matzehuels/faceaug/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The logger is attached to the command context before any subcommand runs
// and is accessible via loggerFromContext. With --verbose, pipeline, cache
// and service events are logged through observability.LogHooks.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "faceaug builds augmented face image training sets",
		Long: `faceaug generates randomly transformed variants of face images (scale, rotation,
shear, translation, flips, brightness and noise) and writes them as a cropped,
resized training set. It can also run as a service that augments uploaded images.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.verbose() {
				observability.NewLogHooks(c.Logger).Register()
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ~/.config/faceaug/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.augmentCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
