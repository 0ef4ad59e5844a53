package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/go-logr/logr"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-liquid-schemas/internal/module/evaluator"
	"github.com/goliatone/go-liquid-schemas/internal/module/loader"
	"github.com/goliatone/go-liquid-schemas/internal/module/resolver"
	"github.com/goliatone/go-liquid-schemas/pkg/marker"
	"github.com/goliatone/go-liquid-schemas/pkg/module"
	"github.com/goliatone/go-liquid-schemas/pkg/payload"
	"github.com/goliatone/go-liquid-schemas/pkg/settings"
	"github.com/goliatone/go-liquid-schemas/pkg/transform"
)

const defaultConcurrency = 8

// Status describes what a build did with an output.
type Status string

const (
	// StatusWritten means the output was written.
	StatusWritten Status = "written"
	// StatusUnchanged means the session already holds the same content.
	StatusUnchanged Status = "unchanged"
	// StatusPending means writing is disabled and the content is only
	// reported.
	StatusPending Status = "pending"
)

// Output is one rewritten template or settings file.
type Output struct {
	Template  string
	Path      string
	Schema    string
	Specifier string
	Variant   marker.Variant
	Content   string
	Digest    digest.Digest
	Status    Status
}

// Result summarises a build. Outputs and Skipped follow template order.
type Result struct {
	Outputs []Output
	// Skipped lists templates without a schema reference.
	Skipped []string
}

// Written returns the paths written by the build.
func (r Result) Written() []string {
	return r.paths(StatusWritten)
}

// Unchanged returns the paths whose content matched the session.
func (r Result) Unchanged() []string {
	return r.paths(StatusUnchanged)
}

func (r Result) paths(status Status) []string {
	var out []string
	for _, o := range r.Outputs {
		if o.Status == status {
			out = append(out, o.Path)
		}
	}
	return out
}

// Builder rewrites section templates. Configure it with New; a Builder is
// safe to reuse across builds and sessions.
type Builder struct {
	root      string
	files     fs.FS
	writer    Writer
	sections  []string
	outputDir string

	resolver        module.Resolver
	resolverOptions []module.ResolverOption
	loader          module.Loader
	loaderOptions   []module.LoaderOption
	evaluator       module.Evaluator
	globals         map[string]any

	encode         payload.EncodeOptions
	sanitize       bool
	sanitizeFields []string
	formatter      Formatter
	write          bool
	concurrency    int
	log            logr.Logger
}

// New constructs a Builder. Collaborators that are not injected use the
// built-in file resolver, loader and evaluator rooted at the project
// directory (default ".").
func New(options ...Option) *Builder {
	b := &Builder{
		encode:      payload.DefaultEncodeOptions(),
		write:       true,
		concurrency: defaultConcurrency,
		log:         logr.Discard(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	b.applyDefaults()
	return b
}

func (b *Builder) applyDefaults() {
	if b.root == "" {
		b.root = "."
	}
	if b.files == nil {
		b.files = os.DirFS(b.root)
	}
	if b.writer == nil {
		b.writer = DirWriter{Root: b.root}
	}
	if b.resolver == nil {
		opts := append([]module.ResolverOption{module.WithResolverFileSystem(b.files)}, b.resolverOptions...)
		b.resolver = resolver.New(module.NewResolverOptions(opts...))
	}
	if b.loader == nil {
		opts := append([]module.LoaderOption{module.WithFileSystem(b.files)}, b.loaderOptions...)
		b.loader = loader.New(module.NewLoaderOptions(opts...))
	}
	if b.evaluator == nil {
		b.evaluator = evaluator.New(
			evaluator.WithTemplateFS(b.files),
			evaluator.WithGlobals(b.globals),
		)
	}
}

type plan struct {
	template  string
	deferred  transform.Deferred
	specifier string
	source    module.Source
	output    string
	skipped   bool
	err       error
}

type compiled struct {
	payload string
	err     error
}

// Build rewrites every section template matched by the configured patterns.
// Templates are processed independently: the returned Result covers every
// template that succeeded even when a *BuildError is also returned.
func (b *Builder) Build(ctx context.Context, session *Session) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("build: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(b.sections) == 0 {
		return Result{}, ErrNoSections
	}
	if session == nil {
		session = NewSession()
	}

	templates, err := expandPatterns(b.files, b.sections)
	if err != nil {
		return Result{}, err
	}
	b.log.V(1).Info("expanded section patterns", "patterns", b.sections, "templates", len(templates))

	plans, err := b.scan(ctx, templates)
	if err != nil {
		return Result{}, err
	}
	b.checkCollisions(plans)

	session.resetReferences()
	sources := make(map[string]module.Source)
	for _, p := range plans {
		if p.skipped || p.err != nil {
			continue
		}
		session.addReference(p.source.Location(), p.template)
		sources[module.SourceKey(p.source)] = p.source
	}

	modules, err := b.compileModules(ctx, sources)
	if err != nil {
		return Result{}, err
	}

	outputs := make([]*Output, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, p := range plans {
		i, p := i, p
		if p.skipped || p.err != nil {
			continue
		}
		c := modules[module.SourceKey(p.source)]
		if c.err != nil {
			p.err = c.err
			continue
		}
		g.Go(func() error {
			out, err := b.render(gctx, session, p, c.payload)
			if err != nil {
				p.err = err
				return nil
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var (
		result   Result
		failures []*TemplateError
	)
	for i, p := range plans {
		switch {
		case p.skipped:
			result.Skipped = append(result.Skipped, p.template)
		case p.err != nil:
			failures = append(failures, &TemplateError{Template: p.template, Specifier: p.specifier, Err: p.err})
			b.log.V(1).Info("template failed", "template", p.template, "error", p.err.Error())
		case outputs[i] != nil:
			result.Outputs = append(result.Outputs, *outputs[i])
		}
	}

	b.log.Info("build finished",
		"templates", len(templates),
		"written", len(result.Written()),
		"unchanged", len(result.Unchanged()),
		"skipped", len(result.Skipped),
		"failed", len(failures),
	)

	if len(failures) > 0 {
		return result, &BuildError{Failures: failures}
	}
	return result, nil
}

func (b *Builder) scan(ctx context.Context, templates []string) ([]*plan, error) {
	plans := make([]*plan, len(templates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, name := range templates {
		i, name := i, name
		g.Go(func() error {
			plans[i] = b.scanTemplate(gctx, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (b *Builder) scanTemplate(ctx context.Context, name string) *plan {
	p := &plan{template: name}

	raw, err := fs.ReadFile(b.files, name)
	if err != nil {
		p.err = fmt.Errorf("read template: %w", err)
		return p
	}
	text := string(raw)

	refs := marker.FindAll(text)
	switch len(refs) {
	case 0:
		p.skipped = true
		b.log.V(1).Info("no schema reference", "template", name)
		return p
	case 1:
	default:
		p.err = fmt.Errorf("%w: found %d", ErrMultipleReferences, len(refs))
		return p
	}

	p.deferred = transform.Defer(text)
	p.specifier = p.deferred.Match().Specifier
	p.output = b.outputPath(name)

	src, err := b.resolver.Resolve(ctx, p.specifier, name)
	if err != nil {
		p.err = err
		return p
	}
	p.source = src
	return p
}

func (b *Builder) outputPath(template string) string {
	if b.outputDir == "" {
		return template
	}
	return path.Join(b.outputDir, path.Base(template))
}

func (b *Builder) checkCollisions(plans []*plan) {
	owners := make(map[string]string, len(plans))
	for _, p := range plans {
		if p.skipped || p.err != nil {
			continue
		}
		if owner, taken := owners[p.output]; taken {
			p.err = fmt.Errorf("%w: %s is also written by %s", ErrOutputCollision, p.output, owner)
			continue
		}
		owners[p.output] = p.template
	}
}

func (b *Builder) compileModules(ctx context.Context, sources map[string]module.Source) (map[string]compiled, error) {
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	results := make([]compiled, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			encoded, err := b.compile(gctx, sources[key])
			results[i] = compiled{payload: encoded, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]compiled, len(keys))
	for i, key := range keys {
		out[key] = results[i]
	}
	return out, nil
}

// compile loads, evaluates and encodes the default export of src.
func (b *Builder) compile(ctx context.Context, src module.Source) (string, error) {
	value, err := b.defaultExport(ctx, src)
	if err != nil {
		return "", err
	}
	if b.sanitize {
		value = payload.Sanitize(value, b.sanitizeFields...)
	}
	encoded, err := payload.Encode(value, b.encode)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", src.Location(), err)
	}
	b.log.V(1).Info("compiled schema module", "module", src.Location(), "bytes", len(encoded))
	return encoded, nil
}

func (b *Builder) defaultExport(ctx context.Context, src module.Source) (module.Value, error) {
	doc, err := b.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	mod, err := b.evaluator.Evaluate(ctx, doc)
	if err != nil {
		return nil, err
	}
	return mod.Default()
}

func (b *Builder) render(ctx context.Context, session *Session, p *plan, encoded string) (*Output, error) {
	content := p.deferred.Fill(encoded)
	if b.formatter != nil {
		formatted, err := b.formatter(ctx, p.template, content)
		if err != nil {
			return nil, fmt.Errorf("format: %w", err)
		}
		content = formatted
	}

	d, status, err := b.emit(session, p.output, content)
	if err != nil {
		return nil, err
	}
	b.log.V(1).Info("rendered template", "template", p.template, "output", p.output, "status", string(status))

	return &Output{
		Template:  p.template,
		Path:      p.output,
		Schema:    p.source.Location(),
		Specifier: p.specifier,
		Variant:   p.deferred.Match().Variant,
		Content:   content,
		Digest:    d,
		Status:    status,
	}, nil
}

// emit writes content to output unless the session already recorded the
// same digest for it.
func (b *Builder) emit(session *Session, output, content string) (digest.Digest, Status, error) {
	d := digest.FromString(content)
	if prev, ok := session.Digest(output); ok && prev == d && b.outputExists(output) {
		return d, StatusUnchanged, nil
	}
	if !b.write {
		return d, StatusPending, nil
	}
	if err := b.writer.WriteFile(output, []byte(content)); err != nil {
		return "", "", err
	}
	session.Remember(output, d)
	return d, StatusWritten, nil
}

func (b *Builder) outputExists(output string) bool {
	checker, ok := b.writer.(existenceChecker)
	if !ok {
		return true
	}
	return checker.Exists(output)
}

// BuildSettings evaluates the settings module named by input and writes the
// normalised theme settings array to output (settings.DefaultOutput when
// empty). input is resolved like a specifier written at the project root.
func (b *Builder) BuildSettings(ctx context.Context, session *Session, input, output string) (Output, error) {
	if ctx == nil {
		return Output{}, errors.New("build: context is required")
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return Output{}, errors.New("build: settings input is required")
	}
	if output = strings.TrimSpace(output); output == "" {
		output = settings.DefaultOutput
	}
	if session == nil {
		session = NewSession()
	}

	src, err := b.resolver.Resolve(ctx, input, ".")
	if err != nil {
		return Output{}, fmt.Errorf("build: settings: %w", err)
	}
	value, err := b.defaultExport(ctx, src)
	if err != nil {
		return Output{}, fmt.Errorf("build: settings: %w", err)
	}
	value, err = settings.Normalize(value)
	if err != nil {
		return Output{}, fmt.Errorf("build: settings %s: %w", src.Location(), err)
	}
	if b.sanitize {
		value = payload.Sanitize(value, b.sanitizeFields...)
	}
	content, err := payload.Encode(value, b.encode)
	if err != nil {
		return Output{}, fmt.Errorf("build: settings: encode: %w", err)
	}

	d, status, err := b.emit(session, output, content)
	if err != nil {
		return Output{}, fmt.Errorf("build: settings: %w", err)
	}
	b.log.Info("settings schema built", "module", src.Location(), "output", output, "status", string(status))

	return Output{
		Path:      output,
		Schema:    src.Location(),
		Specifier: input,
		Content:   content,
		Digest:    d,
		Status:    status,
	}, nil
}
