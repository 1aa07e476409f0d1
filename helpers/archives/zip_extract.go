package archives

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// Mode selects how member failures affect the rest of an extraction.
type Mode int

const (
	// CollectAll extracts every member and reports failures per member.
	CollectAll Mode = iota
	// FailFast stops at the first member that fails.
	FailFast
)

// MemberState is the extraction state of a single member.
type MemberState int

const (
	Extracting MemberState = iota
	Extracted
	Failed
)

func (s MemberState) String() string {
	switch s {
	case Extracting:
		return "extracting"
	case Extracted:
		return "extracted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("MemberState(%d)", int(s))
}

// Observer is notified about the outcome of every member.
type Observer interface {
	MemberExtracted(name string, size int)
	MemberFailed(name string, err error)
}

type options struct {
	mode        Mode
	concurrency int
	observer    Observer
	filter      func(name string) bool
}

type Option func(*options)

func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

func WithFailFast() Option {
	return WithMode(FailFast)
}

// WithConcurrency extracts up to n members at once. Values below 2 keep
// extraction sequential.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithFilter limits extraction to the members filter accepts. Skipped
// members are absent from the results.
func WithFilter(filter func(name string) bool) Option {
	return func(o *options) {
		o.filter = filter
	}
}

// Result is the outcome of extracting one member. Data is set by
// Archive.Extract, Path by Archive.ExtractTo.
type Result struct {
	Name   string
	Offset int64
	State  MemberState
	Data   []byte
	Path   string
	Err    error
}

// Results maps member names to their extraction result.
type Results map[string]*Result

// Failed returns the failed results ordered by name.
func (r Results) Failed() []*Result {
	var failed []*Result
	for _, result := range r {
		if result.State == Failed {
			failed = append(failed, result)
		}
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i].Name < failed[j].Name })
	return failed
}

// Paths returns the written path of every extracted member.
func (r Results) Paths() map[string]string {
	paths := make(map[string]string, len(r))
	for name, result := range r {
		if result.State == Extracted && result.Path != "" {
			paths[name] = result.Path
		}
	}
	return paths
}

// Archive is a cataloged archive ready for member extraction.
type Archive struct {
	r       io.ReaderAt
	size    int64
	catalog *Catalog
	closer  io.Closer
}

// NewArchive catalogs the archive held by r. Any structural problem with
// the trailer or the central directory is returned here.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	catalog, err := ReadCatalog(r, size)
	if err != nil {
		return nil, err
	}

	return &Archive{r: r, size: size, catalog: catalog}, nil
}

// OpenArchive opens and catalogs the archive stored in fileName.
func OpenArchive(fileName string) (*Archive, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, ioFailure(err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ioFailure(err)
	}

	archive, err := NewArchive(f, fi.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	archive.closer = f

	return archive, nil
}

func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *Archive) Catalog() *Catalog {
	return a.catalog
}

// ReadMember extracts a single member into memory.
func (a *Archive) ReadMember(name string) (*ExtractedMember, error) {
	entry, ok := a.catalog.Entry(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrMemberNotFound)
	}

	return ExtractMember(a.r, a.size, entry)
}

// Extract decompresses every member into memory.
func (a *Archive) Extract(ctx context.Context, opts ...Option) (Results, error) {
	return a.run(ctx, "", opts)
}

// ExtractTo decompresses every member and writes it below dir.
func (a *Archive) ExtractTo(ctx context.Context, dir string, opts ...Option) (Results, error) {
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, ioFailure(err)
	}

	return a.run(ctx, dir, opts)
}

func (a *Archive) run(ctx context.Context, dir string, opts []Option) (Results, error) {
	o := options{mode: CollectAll, concurrency: 1}
	for _, opt := range opts {
		opt(&o)
	}

	entries := a.catalog.Entries()
	if o.filter != nil {
		entries = lo.Filter(entries, func(entry *DirectoryEntry, _ int) bool {
			return o.filter(entry.Name)
		})
	}
	results := make(Results, len(entries))

	if o.concurrency > 1 {
		return results, a.runParallel(ctx, dir, entries, results, o)
	}

	var errs *multierror.Error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			if o.mode == FailFast {
				return results, err
			}
			return results, multierror.Append(errs, err).ErrorOrNil()
		}

		result := a.extractEntry(entry, dir, o.observer)
		results[entry.Name] = result

		if result.Err != nil {
			if o.mode == FailFast {
				return results, result.Err
			}
			errs = multierror.Append(errs, result.Err)
		}
	}

	return results, errs.ErrorOrNil()
}

// runParallel extracts members on a bounded pool. Each member reads through
// its own cursor, so members never share a read position.
func (a *Archive) runParallel(
	ctx context.Context,
	dir string,
	entries []*DirectoryEntry,
	results Results,
	o options,
) error {
	var (
		mu   sync.Mutex
		errs *multierror.Error
	)

	p := pool.New().WithMaxGoroutines(o.concurrency).WithErrors().WithContext(ctx)
	if o.mode == FailFast {
		p = p.WithCancelOnError().WithFirstError()
	}

	for _, entry := range entries {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := a.extractEntry(entry, dir, o.observer)

			mu.Lock()
			defer mu.Unlock()

			results[entry.Name] = result
			if result.Err != nil {
				errs = multierror.Append(errs, result.Err)
			}

			return result.Err
		})
	}

	err := p.Wait()
	if o.mode == FailFast {
		return err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		errs = multierror.Append(errs, ctxErr)
	}

	return errs.ErrorOrNil()
}

func (a *Archive) extractEntry(entry *DirectoryEntry, dir string, observer Observer) *Result {
	result := &Result{Name: entry.Name, Offset: entry.LocalHeaderOffset, State: Extracting}

	logger := logrus.WithFields(logrus.Fields{
		"name":   entry.Name,
		"offset": entry.LocalHeaderOffset,
	})

	member, err := ExtractMember(a.r, a.size, entry)
	if err == nil && dir != "" {
		result.Path, err = WriteMember(dir, member)
	}

	if err != nil {
		result.State = Failed
		result.Err = err

		logger.WithError(err).Warningln("Failed to extract member")
		if observer != nil {
			observer.MemberFailed(entry.Name, err)
		}

		return result
	}

	result.State = Extracted
	if dir == "" {
		result.Data = member.Data
	}

	logger.WithField("size", len(member.Data)).Debugln("Extracted member")
	if observer != nil {
		observer.MemberExtracted(entry.Name, len(member.Data))
	}

	return result
}

// ExtractZipFile extracts every member of the archive stored in fileName
// into dir.
func ExtractZipFile(ctx context.Context, fileName string, dir string, opts ...Option) (Results, error) {
	archive, err := OpenArchive(fileName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = archive.Close() }()

	return archive.ExtractTo(ctx, dir, opts...)
}
