package dbsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
)

// MinDumpSize is the size below which a dump is assumed to hold no rows.
const MinDumpSize = 100

var (
	ErrDumpFailed   = errors.New("dump failed")
	ErrImportFailed = errors.New("import failed")
	ErrLocked       = errors.New("another migration holds the dump lock")
)

// Migrator copies the data of the container database into a remote target
// through a transient dump file.
type Migrator struct {
	Container    *Container
	Local        LocalDB
	DumpFile     string
	IgnoreTables []string
	// KeepDump leaves the dump file in place after the run.
	KeepDump bool
}

// Result describes a finished migration.
type Result struct {
	DumpBytes int64
	// SuspiciouslySmall is set when the dump is smaller than MinDumpSize.
	SuspiciouslySmall bool
}

// Run dumps the local database and loads it into target.
func (m *Migrator) Run(ctx context.Context, target *Target) (*Result, error) {
	lock := flock.New(m.DumpFile + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", m.DumpFile, err)
	}
	if !locked {
		return nil, ErrLocked
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	if !m.KeepDump {
		defer func() {
			if err := os.Remove(m.DumpFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.Warn("failed to remove dump file", "path", m.DumpFile, "error", err)
			}
		}()
	}

	slog.Info("exporting container database", "container", m.Container.Name, "database", m.Local.Database)
	size, err := m.dump(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{DumpBytes: size}
	if size < MinDumpSize {
		res.SuspiciouslySmall = true
		slog.Warn("dump looks empty, does the local database hold data?", "size", humanize.Bytes(uint64(size)))
	} else {
		slog.Info("dump written", "path", m.DumpFile, "size", humanize.Bytes(uint64(size)))
	}

	slog.Info("importing into remote database", "target", target.String())
	if err := m.load(ctx, target); err != nil {
		return nil, err
	}
	return res, nil
}

func (m *Migrator) dump(ctx context.Context) (int64, error) {
	f, err := os.Create(m.DumpFile)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDumpFailed, err)
	}
	defer f.Close()

	if err := m.Container.Exec(ctx, nil, f, DumpArgs(m.Local, m.IgnoreTables)...); err != nil {
		return 0, fmt.Errorf("%w: is container %s running? %w", ErrDumpFailed, m.Container.Name, err)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDumpFailed, err)
	}
	return info.Size(), nil
}

func (m *Migrator) load(ctx context.Context, target *Target) error {
	f, err := os.Open(m.DumpFile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImportFailed, err)
	}
	defer f.Close()

	if err := m.Container.Exec(ctx, f, nil, ImportArgs(target)...); err != nil {
		return fmt.Errorf("%w: check the url and that database %q exists: %w", ErrImportFailed, target.Database, err)
	}
	return nil
}
