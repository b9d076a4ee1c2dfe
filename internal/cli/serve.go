package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/faceaug/internal/config"
	"github.com/matzehuels/faceaug/pkg/observability"
	"github.com/matzehuels/faceaug/pkg/service"
	"github.com/matzehuels/faceaug/pkg/state"
)

type serveOpts struct {
	bind    string
	backend string
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept face images over HTTP and augment them into the training set",
		Long: `Run the upload service. Every uploaded image is stored, augmented and written
to the augmented output directory. The resulting image set is saved to the
state backend (file, redis or mongo) and restored on the next start.

Endpoints:
  POST /v1/images          upload an image, returns the written file names
  GET  /v1/images          list images
  GET  /v1/images/{name}   fetch one image
  GET  /healthz            liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.bind, "bind", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.backend, "state", "", "state backend: file, redis or mongo (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the augmented-set cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.bind != "" {
		cfg.Service.Bind = opts.bind
	}
	if opts.backend != "" {
		cfg.Service.StateBackend = opts.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	observability.NewLogHooks(logger).Register()

	popts, err := cfg.PipelineOptions(nil)
	if err != nil {
		return err
	}

	store, err := openStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer runner.Close()

	svc, err := service.New(runner, store, service.Options{
		InputDir: cfg.Service.InputDir,
		Pipeline: popts,
		Logger:   logger,
	})
	if err != nil {
		_ = store.Close()
		return err
	}
	defer svc.Close()

	spinner := newSpinnerWithContext(ctx, "Restoring state...")
	spinner.Start()
	restored, err := svc.Restore(ctx)
	if err != nil {
		spinner.StopWithError("Restore failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Restored %d images from %s state", restored, cfg.Service.StateBackend))
	printKeyValue("Listening", StyleLink.Render("http://"+cfg.Service.Bind))
	printKeyValue("Output", popts.AugDir)
	printKeyValue("Uploads", cfg.Service.InputDir)

	return svc.Serve(ctx, cfg.Service.Bind, cfg.Service.MaxUploadBytes)
}

// openStateStore connects the configured state backend.
func openStateStore(ctx context.Context, cfg *config.Config) (state.Store, error) {
	switch cfg.Service.StateBackend {
	case config.BackendRedis:
		return state.NewRedisStore(ctx, cfg.Service.RedisAddr, cfg.Service.RedisKey)
	case config.BackendMongo:
		return state.NewMongoStore(ctx, cfg.Service.MongoURI, cfg.Service.MongoDatabase)
	case config.BackendFile, "":
		return state.NewFileStore(cfg.Service.StatePath)
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.Service.StateBackend)
}
