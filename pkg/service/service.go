// Package service implements the image intake service: uploaded face
// images are stored, augmented into the training set, and the resulting
// image set is persisted so that a restarted service can restore it.
package service

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/faceaug/pkg/dataset"
	"github.com/matzehuels/faceaug/pkg/errors"
	"github.com/matzehuels/faceaug/pkg/observability"
	"github.com/matzehuels/faceaug/pkg/pipeline"
	"github.com/matzehuels/faceaug/pkg/state"
)

// Options configures a Service.
type Options struct {
	// InputDir receives the raw uploads.
	InputDir string
	// Pipeline holds the augmentation and output settings. Its AugDir is
	// the directory gathered into the state.
	Pipeline pipeline.Options
	Logger   *log.Logger
}

// Receipt describes an accepted upload.
type Receipt struct {
	ID    string   `json:"id"`
	Index int      `json:"index"`
	Files []string `json:"files"`
}

// Service accepts uploads one at a time.
type Service struct {
	runner   *pipeline.Runner
	store    state.Store
	opts     pipeline.Options
	sink     *dataset.Sink
	inputDir string
	logger   *log.Logger

	mu    sync.Mutex
	state *state.State
	next  int
}

// New creates the service and its directories. Call Restore before
// accepting uploads.
func New(runner *pipeline.Runner, store state.Store, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.InputDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "input directory is not set")
	}
	popts := opts.Pipeline
	popts.Logger = logger
	popts.WriteAug = true
	if err := popts.ValidateForAugment(); err != nil {
		return nil, err
	}
	sink := popts.Sink()
	if err := sink.Prepare(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.InputDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", opts.InputDir)
	}
	return &Service{
		runner:   runner,
		store:    store,
		opts:     popts,
		sink:     sink,
		inputDir: opts.InputDir,
		logger:   logger,
		state:    &state.State{},
	}, nil
}

// Restore loads the saved state and writes its images back into the
// augmented directory. Later uploads continue the image numbering.
func (s *Service) Restore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.store.Load(ctx)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeStorage, err, "load state")
		observability.Service().OnRestore(ctx, 0, err)
		return 0, err
	}
	for _, e := range st.Images {
		if err := errors.ValidateImageName(e.Name); err != nil {
			s.logger.Warn("skipping state entry", "name", e.Name, "err", err)
			continue
		}
		if err := os.WriteFile(filepath.Join(s.opts.AugDir, e.Name), e.Data, 0o644); err != nil {
			err = errors.Wrap(errors.ErrCodeStorage, err, "restore %s", e.Name)
			observability.Service().OnRestore(ctx, 0, err)
			return 0, err
		}
		if idx, ok := imageIndex(e.Name); ok && idx >= s.next {
			s.next = idx + 1
		}
	}
	s.state = st
	observability.Service().OnRestore(ctx, st.Len(), nil)
	return st.Len(), nil
}

// AcceptImage validates and stores an uploaded image, augments it into the
// training set and saves the new state.
func (s *Service) AcceptImage(ctx context.Context, data []byte) (*Receipt, error) {
	start := time.Now()
	id := uuid.NewString()
	receipt, err := s.accept(ctx, id, data)
	variants := 0
	if receipt != nil {
		variants = len(receipt.Files) - 1
	}
	observability.Service().OnAccept(ctx, id, len(data), variants, time.Since(start), err)
	return receipt, err
}

func (s *Service) accept(ctx context.Context, id string, data []byte) (*Receipt, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "unrecognized image data")
	}
	img, err := dataset.DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	upload := filepath.Join(s.inputDir, id+"."+extension(format))
	if err := os.WriteFile(upload, data, 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "store upload")
	}

	index := s.next
	res, err := s.runner.Process(ctx, index, id, img, s.sink, s.opts)
	if err != nil {
		return nil, err
	}
	s.next++

	st, err := s.gather()
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, st); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "save state")
	}
	s.state = st

	files := make([]string, len(res.Files))
	for i, f := range res.Files {
		files[i] = filepath.Base(f)
	}
	return &Receipt{ID: id, Index: index, Files: files}, nil
}

// gather reads every image file of the augmented directory into a new
// state.
func (s *Service) gather() (*state.State, error) {
	entries, err := os.ReadDir(s.opts.AugDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read %s", s.opts.AugDir)
	}
	st := &state.State{}
	for _, e := range entries {
		if !e.Type().IsRegular() || errors.ValidateImageName(e.Name()) != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.opts.AugDir, e.Name()))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "read %s", e.Name())
		}
		created := time.Now().UTC()
		if old, ok := s.state.Get(e.Name()); ok {
			created = old.CreatedAt
		}
		st.Put(state.Entry{Name: e.Name(), Data: data, CreatedAt: created})
	}
	return st, nil
}

// Images returns the names in the current state.
func (s *Service) Images() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Names()
}

// Image returns the bytes of one image of the current state.
func (s *Service) Image(name string) ([]byte, error) {
	if err := errors.ValidateImageName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.state.Get(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "image %s not found", name)
	}
	return e.Data, nil
}

// Close releases the state store.
func (s *Service) Close() error {
	return s.store.Close()
}

// imageIndex parses the image number of "{image:06d}_{variant:03d}.ext".
func imageIndex(name string) (int, bool) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(prefix)
	return n, err == nil
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
