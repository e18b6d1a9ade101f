package page

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"time"

	"git.home.luguber.info/inful/docpage/internal/logfields"
	"git.home.luguber.info/inful/docpage/internal/markdown"
	"git.home.luguber.info/inful/docpage/internal/metadata"
	"git.home.luguber.info/inful/docpage/internal/metrics"
)

// Assembler builds pages against one metadata store and one file tree.
// It holds no per-build state and may be used from several goroutines.
type Assembler struct {
	store     *metadata.Store
	fsys      fs.FS
	recorder  metrics.Recorder
	logger    *slog.Logger
	languages map[string]string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(a *Assembler) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithLanguage maps a file extension (".py") to a highlight language.
func WithLanguage(ext, language string) Option {
	return func(a *Assembler) { a.languages[ext] = language }
}

// NewAssembler returns an Assembler reading API records from store and
// source files from fsys. Paths in a Spec are fsys paths.
func NewAssembler(store *metadata.Store, fsys fs.FS, opts ...Option) *Assembler {
	a := &Assembler{
		store:     store,
		fsys:      fsys,
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
		languages: maps.Clone(defaultLanguages),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build assembles spec into a Page.
//
// Every file the spec references is read, and every markdown file parsed,
// before any block is produced. An unreadable file fails the build with
// ErrMissingSourceFile and a malformed markdown file with ErrInvalidSpec,
// both without output.
// API entries whose identifier is not in the store become absent API blocks.
func (a *Assembler) Build(ctx context.Context, spec Spec) (*Page, error) {
	start := time.Now()
	log := a.logger.With(logfields.Page(spec.Name))

	files, docs, err := a.readSources(ctx, spec)
	if err != nil {
		a.recorder.IncBuildOutcome(spec.Name, metrics.OutcomeFailed)
		return nil, err
	}

	p := &Page{Name: spec.Name, Title: spec.Title, Blocks: make([]Block, 0, len(spec.Entries))}
	missing := 0
	for _, e := range spec.Entries {
		var b Block
		switch e := e.(type) {
		case ExampleEntry:
			b = ExampleBlock(e.Example)
		case SourceEntry:
			lang := e.Language
			if lang == "" {
				lang = languageFor(a.languages, e.Path)
			}
			b = SourceBlock(Source{Path: e.Path, Language: lang, Text: string(files[e.Path])})
		case APIDocEntry:
			name := e.Name
			if name == "" {
				name = e.Identifier.Base()
			}
			rec, ok := a.store.Get(e.Identifier)
			if !ok {
				missing++
				a.recorder.IncMissingMetadata(spec.Name)
				log.Warn("No API metadata for component",
					logfields.Identifier(e.Identifier.String()),
					logfields.Component(name))
			}
			b = APIDocBlock(e.Identifier, rec, ok, name)
		case MarkdownEntry:
			doc := docs[e.Path]
			b = MarkdownBlock(Markdown{Path: e.Path, Title: doc.Title, Text: string(doc.Body)})
			if p.Title == "" {
				p.Title = doc.Title
			}
		default:
			a.recorder.IncBuildOutcome(spec.Name, metrics.OutcomeFailed)
			return nil, invalidSpec(spec.Name, fmt.Sprintf("unsupported entry %T", e))
		}
		a.recorder.IncBlock(string(b.Kind()))
		p.Blocks = append(p.Blocks, b)
	}
	if p.Title == "" {
		p.Title = spec.Name
	}

	elapsed := time.Since(start)
	a.recorder.ObservePageBuildDuration(spec.Name, elapsed)
	outcome := metrics.OutcomeSuccess
	if missing > 0 {
		outcome = metrics.OutcomeDegraded
	}
	a.recorder.IncBuildOutcome(spec.Name, outcome)

	log.Debug("Page assembled",
		logfields.Blocks(len(p.Blocks)),
		logfields.Missing(missing),
		logfields.Duration(elapsed))
	return p, nil
}

func (a *Assembler) readSources(ctx context.Context, spec Spec) (map[string][]byte, map[string]*markdown.Document, error) {
	files := make(map[string][]byte)
	for _, path := range spec.sourcePaths() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if _, seen := files[path]; seen {
			continue
		}
		if a.fsys == nil {
			return nil, nil, missingSourceFile(spec.Name, path, fs.ErrInvalid)
		}
		data, err := fs.ReadFile(a.fsys, path)
		if err != nil {
			return nil, nil, missingSourceFile(spec.Name, path, err)
		}
		files[path] = data
	}

	docs := make(map[string]*markdown.Document)
	for _, e := range spec.Entries {
		md, ok := e.(MarkdownEntry)
		if !ok {
			continue
		}
		if _, seen := docs[md.Path]; seen {
			continue
		}
		doc, err := markdown.Parse(files[md.Path])
		if err != nil {
			return nil, nil, invalidSpec(spec.Name, fmt.Sprintf("markdown %s: %v", md.Path, err))
		}
		docs[md.Path] = doc
	}
	return files, docs, nil
}
