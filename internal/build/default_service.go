package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpage/internal/config"
	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/logfields"
	"git.home.luguber.info/inful/docpage/internal/manifest"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/metrics"
	"git.home.luguber.info/inful/docpage/internal/notify"
	"git.home.luguber.info/inful/docpage/internal/observability"
	"git.home.luguber.info/inful/docpage/internal/output"
	"git.home.luguber.info/inful/docpage/internal/page"
	"git.home.luguber.info/inful/docpage/internal/pagedef"
	"git.home.luguber.info/inful/docpage/internal/vcs"
	"git.home.luguber.info/inful/docpage/internal/version"
)

// RevisionFunc resolves the VCS revision of the tree containing dir.
type RevisionFunc func(dir string) (vcs.Revision, error)

// Service is the build pipeline.
type Service struct {
	recorder metrics.Recorder
	notifier notify.Notifier
	logger   *slog.Logger
	revision RevisionFunc
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder shared with the assembler.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithNotifier sets where page built events go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRevisionFunc replaces the git HEAD lookup.
func WithRevisionFunc(f RevisionFunc) Option {
	return func(s *Service) {
		if f != nil {
			s.revision = f
		}
	}
}

// NewService creates a Service with no-op metrics and notifications.
func NewService(opts ...Option) *Service {
	s := &Service{
		recorder: metrics.NoopRecorder{},
		notifier: notify.NoopNotifier{},
		logger:   slog.Default(),
		revision: vcs.HeadRevision,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loads the metadata store and builds every page. The first page that
// fails aborts the run; pages built before it stay written.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result := &Result{BuildID: uuid.NewString(), StartTime: start}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	finish := func(status Status) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(start)
	}

	cfg := req.Config
	if cfg == nil {
		finish(StatusFailed)
		return result, ferrors.ConfigError("config required").Build()
	}

	store, err := s.loadStore(observability.WithStage(ctx, "metadata"), cfg)
	if err != nil {
		finish(StatusFailed)
		return result, err
	}
	result.Records = store.Len()
	s.recorder.SetMetadataRecords(store.Len())

	paths := req.Pages
	if len(paths) == 0 {
		if paths, err = cfg.PagePaths(); err != nil {
			finish(StatusFailed)
			return result, err
		}
	}
	if len(paths) == 0 {
		observability.WarnContext(ctx, "No page definitions configured")
		finish(StatusSuccess)
		return result, nil
	}

	rev := s.resolveRevision(ctx, cfg)

	for _, path := range paths {
		pr, err := s.buildPage(ctx, req, store, rev, path)
		result.Pages = append(result.Pages, pr)
		if err != nil {
			finish(StatusFailed)
			return result, err
		}
	}

	finish(overall(result.Pages))
	observability.InfoContext(ctx, "Build complete",
		slog.Int("pages", len(result.Pages)),
		slog.Int("built", result.Built()),
		logfields.Missing(result.MissingMetadata()),
		logfields.Duration(result.Duration),
		slog.String("status", string(result.Status)))
	return result, nil
}

// LoadStore reads the configured metadata store.
func LoadStore(ctx context.Context, cfg *config.Config) (*metadata.Store, error) {
	src, err := metadata.SourceFor(cfg.Metadata.Format, cfg.Metadata.Path)
	if err != nil {
		return nil, ferrors.ConfigError("unsupported metadata source").
			WithCause(err).
			WithContext("path", cfg.Metadata.Path).
			Build()
	}
	store, err := metadata.Load(ctx, src)
	if err != nil {
		b := ferrors.MetadataError("failed to load metadata store").
			WithCause(err).
			WithContext("source", src.Name())
		if errors.Is(err, os.ErrNotExist) {
			b = ferrors.FileSystemError("metadata store not found").
				Fatal().
				WithCause(err).
				WithContext("source", src.Name())
		}
		return nil, b.Build()
	}
	return store, nil
}

func (s *Service) loadStore(ctx context.Context, cfg *config.Config) (*metadata.Store, error) {
	store, err := LoadStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	observability.InfoContext(ctx, "Metadata store loaded",
		logfields.MetadataSource(store.Source()),
		slog.Int("records", store.Len()))
	return store, nil
}

func (s *Service) resolveRevision(ctx context.Context, cfg *config.Config) vcs.Revision {
	dir := cfg.Dir()
	if dir == "" {
		dir = "."
	}
	rev, err := s.revision(dir)
	if err != nil {
		observability.WarnContext(ctx, "Failed to resolve VCS revision", logfields.Error(err))
		return vcs.Revision{}
	}
	return rev
}

func (s *Service) buildPage(ctx context.Context, req Request, store *metadata.Store, rev vcs.Revision, path string) (PageResult, error) {
	start := time.Now()
	pr := PageResult{Definition: path, Status: StatusFailed}

	def, err := pagedef.Load(path)
	if err != nil {
		return pr, err
	}
	pr.Name = def.Name
	ctx = observability.WithPage(ctx, def.Name)

	spec, err := def.Spec()
	if err != nil {
		return pr, err
	}

	cfg := req.Config
	pr.Output = output.PagePath(cfg.Output.Directory, def.Name, cfg.Output.Format)
	pr.Manifest = output.ManifestPath(cfg.Output.Directory, def.Name)

	m := manifest.New(def.Name)
	m.Inputs = inputsFor(def, store, rev)
	if hash, err := m.Hash(); err == nil {
		pr.InputHash = hash
	}

	if !req.Force && pr.InputHash != "" && unchanged(pr.Output, pr.Manifest, pr.InputHash) {
		pr.Status = StatusSkipped
		pr.Duration = time.Since(start)
		observability.InfoContext(ctx, "Page unchanged, skipping", logfields.Output(pr.Output))
		return pr, nil
	}

	asm := page.NewAssembler(store, def.FS(),
		page.WithRecorder(s.recorder),
		page.WithLogger(observability.Logger(ctx, s.logger)))
	p, err := asm.Build(ctx, spec)
	if err != nil {
		return pr, err
	}

	data, err := output.Encode(p, cfg.Output.Format)
	if err != nil {
		return pr, ferrors.InternalError("failed to encode page").WithCause(err).WithContext("page", def.Name).Build()
	}
	if err := output.WriteFile(pr.Output, data); err != nil {
		return pr, ferrors.FileSystemError("failed to write page").WithCause(err).WithContext("path", pr.Output).Build()
	}

	fingerprint, err := manifest.Fingerprint(p)
	if err != nil {
		return pr, ferrors.InternalError("failed to fingerprint page").WithCause(err).WithContext("page", def.Name).Build()
	}

	pr.Blocks = p.Len()
	pr.Fingerprint = fingerprint
	for _, id := range p.Missing() {
		pr.Missing = append(pr.Missing, id.String())
	}
	pr.Status = StatusSuccess
	if len(pr.Missing) > 0 {
		pr.Status = StatusDegraded
	}
	pr.Duration = time.Since(start)

	m.Outputs = manifest.Outputs{
		Path:            pr.Output,
		Fingerprint:     fingerprint,
		Blocks:          blockCounts(p),
		MissingMetadata: pr.Missing,
	}
	m.Status = string(pr.Status)
	m.Duration = pr.Duration.Milliseconds()
	if err := writeManifest(pr.Manifest, m); err != nil {
		return pr, err
	}

	observability.InfoContext(ctx, "Page written",
		logfields.Output(pr.Output),
		logfields.Blocks(pr.Blocks),
		logfields.Missing(len(pr.Missing)),
		logfields.Duration(pr.Duration))

	s.announce(ctx, pr, m)
	return pr, nil
}

func (s *Service) announce(ctx context.Context, pr PageResult, m *manifest.BuildManifest) {
	event := notify.PageBuiltEvent{
		BuildID:         observability.GetContext(ctx).BuildID,
		Page:            pr.Name,
		Path:            pr.Output,
		Fingerprint:     pr.Fingerprint,
		Status:          string(pr.Status),
		MissingMetadata: pr.Missing,
		Timestamp:       m.Timestamp,
	}
	if err := s.notifier.PageBuilt(ctx, event); err != nil {
		observability.WarnContext(ctx, "Failed to publish page built event", logfields.Error(err))
	}
}

// inputsFor hashes the definition and every readable source. Unreadable
// sources are left out; the assembler reports them.
func inputsFor(def *pagedef.Definition, store *metadata.Store, rev vcs.Revision) manifest.Inputs {
	in := manifest.Inputs{
		Definition: def.Path(),
		Metadata: manifest.MetadataInput{
			Source:  store.Source(),
			Digest:  store.Digest(),
			Records: store.Len(),
		},
		ToolVersion: version.Version,
	}
	if !rev.IsZero() {
		in.Revision = rev.String()
	}
	if data, err := os.ReadFile(def.Path()); err == nil {
		in.DefinitionHash = manifest.HashBytes(data)
	}
	for _, rel := range def.SourcePaths() {
		data, err := os.ReadFile(filepath.Join(def.Dir(), filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		in.Sources = append(in.Sources, manifest.SourceInput{Path: rel, Hash: manifest.HashBytes(data)})
	}
	return in
}

// unchanged reports whether the previous manifest at manifestPath recorded
// the same input hash for a successful build whose output still exists.
func unchanged(outputPath, manifestPath, hash string) bool {
	if _, err := os.Stat(outputPath); err != nil {
		return false
	}
	prev, err := manifest.ReadFile(manifestPath)
	if err != nil || prev.Status == manifest.StatusFailed {
		return false
	}
	prevHash, err := prev.Hash()
	return err == nil && prevHash == hash
}

func blockCounts(p *page.Page) map[string]int {
	counts := make(map[string]int)
	for kind, n := range p.CountByKind() {
		counts[string(kind)] = n
	}
	return counts
}

func writeManifest(path string, m *manifest.BuildManifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return ferrors.InternalError("failed to encode manifest").WithCause(err).Build()
	}
	if err := output.WriteFile(path, data); err != nil {
		return ferrors.FileSystemError("failed to write manifest").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
