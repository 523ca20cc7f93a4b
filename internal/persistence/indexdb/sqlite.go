// Package indexdb keeps a queryable sqlite read model of a run: the program,
// run metadata and per-tick digests and stats. The JSONL tick log stays the
// source of truth; the index may drop rows when it falls behind.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"antics.dev/internal/logger"
	"antics.dev/internal/persistence/indexdb/migrations"
	"antics.dev/internal/sim/formica"
	"antics.dev/internal/sim/world"
)

type Options struct {
	// Queue bounds pending tick rows. Zero means 4096.
	Queue int
	// Every indexes one tick in N. Zero or one indexes all of them.
	Every  int
	Logger logrus.FieldLogger
}

type SQLiteIndex struct {
	db    *sql.DB
	log   logrus.FieldLogger
	every uint64

	ch   chan world.TickLogEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	written atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// Stats is a point-in-time view of the writer queue.
type Stats struct {
	QueueDepth    int
	QueueCapacity int
	Written       uint64
	Dropped       uint64
	Failed        uint64
}

var migrateMu sync.Mutex

func OpenSQLite(ctx context.Context, path string, opts Options) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	queue := opts.Queue
	if queue <= 0 {
		queue = 4096
	}
	s := &SQLiteIndex{
		db:    db,
		log:   log,
		every: uint64(max(opts.Every, 1)),
		ch:    make(chan world.TickLogEntry, queue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate applies the embedded schema. goose keeps its settings in package
// state, hence the lock.
func migrate(ctx context.Context, db *sql.DB, log logrus.FieldLogger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// gooseLogger keeps migration chatter at debug level.
type gooseLogger struct{ l logrus.FieldLogger }

func (g gooseLogger) Printf(format string, v ...any) { g.l.Debugf(format, v...) }
func (g gooseLogger) Fatalf(format string, v ...any) { g.l.Fatalf(format, v...) }

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteTick queues entry without blocking. Sampled-out ticks are skipped and
// a full queue drops the row.
func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	if entry.Tick%s.every != 0 {
		return nil
	}
	select {
	case s.ch <- entry:
	default:
		s.dropped.Add(1)
	}
	return nil
}

var _ world.TickLogger = (*SQLiteIndex)(nil)

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		Written:       s.written.Load(),
		Dropped:       s.dropped.Load(),
		Failed:        s.failed.Load(),
	}
}

// RecordProgram stores the assembled program under its digest.
func (s *SQLiteIndex) RecordProgram(ctx context.Context, p formica.Program) (string, error) {
	digest := p.Digest()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO programs(digest,length,listing,recorded_at) VALUES(?,?,?,?)`,
		digest, p.Len(), formica.Disassemble(p), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("record program: %w", err)
	}
	return digest, nil
}

func (s *SQLiteIndex) SetMeta(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, key, value); err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteIndex) Meta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// ProgramListing returns the disassembly stored for digest.
func (s *SQLiteIndex) ProgramListing(ctx context.Context, digest string) (string, bool, error) {
	var listing string
	err := s.db.QueryRowContext(ctx, `SELECT listing FROM programs WHERE digest=?`, digest).Scan(&listing)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return listing, true, nil
}

// TickDigest looks up the digest indexed for tick.
func (s *SQLiteIndex) TickDigest(ctx context.Context, tick uint64) (string, bool, error) {
	var d string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM ticks WHERE tick=?`, int64(tick)).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d, true, nil
}

// TickRow is the indexed projection of one tick.
type TickRow struct {
	Tick        uint64
	Digest      string
	Executed    int
	Advanced    int
	PickedUp    int
	Dropped     int
	NestFood    uint64
	CarriedFood uint64
}

// Ticks returns indexed rows in [from, to], oldest first.
func (s *SQLiteIndex) Ticks(ctx context.Context, from, to uint64) ([]TickRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick,digest,executed,advanced,picked_up,dropped,nest_food,carried_food
		 FROM ticks WHERE tick BETWEEN ? AND ? ORDER BY tick`, int64(from), int64(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TickRow
	for rows.Next() {
		var r TickRow
		var tick, nest, carried int64
		if err := rows.Scan(&tick, &r.Digest, &r.Executed, &r.Advanced, &r.PickedUp, &r.Dropped, &nest, &carried); err != nil {
			return nil, err
		}
		r.Tick, r.NestFood, r.CarriedFood = uint64(tick), uint64(nest), uint64(carried)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, err := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,executed,advanced,blocked,picked_up,dropped,deposited,erased,nest_food,carried_food,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		s.log.WithError(err).Error("index: prepare failed; tick rows will be discarded")
		for range s.ch {
			s.failed.Add(1)
		}
		return
	}
	defer insertTick.Close()

	var (
		tx            *sql.Tx
		pending       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.failed.Add(uint64(pending))
			s.log.WithError(err).Warn("index: commit failed")
		} else {
			s.written.Add(uint64(pending))
		}
		tx = nil
		pending = 0
		lastCommit = time.Now()
	}

	for e := range s.ch {
		if tx == nil {
			txx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				s.failed.Add(1)
				time.Sleep(50 * time.Millisecond)
				continue
			}
			tx = txx
		}
		raw, _ := json.Marshal(e)
		st := e.Stats
		if _, err := tx.Stmt(insertTick).Exec(
			int64(e.Tick), e.Digest,
			st.Executed, st.Advanced, st.Blocked, st.PickedUp, st.Dropped, st.Deposited, st.Erased,
			int64(st.NestFood), int64(st.CarriedFood),
			string(raw),
		); err != nil {
			s.failed.Add(1)
			continue
		}
		pending++
		if pending >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}
	commit()
}
