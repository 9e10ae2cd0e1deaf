package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"rtscore.dev/internal/sim/rules"
	"rtscore.dev/internal/sim/tuning"
	"rtscore.dev/internal/sim/world"
)

// SQLiteIndex is a secondary read model of the tick log. Writes are queued
// and applied by one goroutine; the simulation never waits on it.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan world.TickLogEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTicks    atomic.Uint64
	indexedTicks atomic.Uint64

	commitEvery int
}

type Options struct {
	// QueueSize bounds pending tick entries; beyond it entries are dropped.
	QueueSize int
	// CommitEvery is the number of rows per transaction.
	CommitEvery int
}

func (o *Options) applyDefaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = 4096
	}
	if o.CommitEvery <= 0 {
		o.CommitEvery = 2000
	}
}

// OptionsFromTuning maps the index section of the tuning file.
func OptionsFromTuning(t tuning.Tuning) Options {
	return Options{QueueSize: t.Index.QueueSize, CommitEvery: t.Index.BatchSize}
}

func OpenSQLite(path string, opts Options) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	opts.applyDefaults()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:          db,
		ch:          make(chan world.TickLogEntry, opts.QueueSize),
		commitEvery: opts.CommitEvery,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rules (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			orders INTEGER NOT NULL,
			events INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			player INTEGER NOT NULL,
			kind TEXT NOT NULL,
			actor INTEGER NOT NULL,
			order_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_player_tick ON orders(player, tick);`,
		`CREATE TABLE IF NOT EXISTS events (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			actor INTEGER NOT NULL,
			other INTEGER NOT NULL,
			player INTEGER NOT NULL,
			name TEXT,
			amount INTEGER NOT NULL,
			reason TEXT,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_tick ON events(type, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_events_actor_tick ON events(actor, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

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

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- entry:
	default:
		// Drop if the indexer falls behind; the tick log remains the source of truth.
		s.dropTicks.Add(1)
	}
	return nil
}

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	DropTickTotal uint64 `json:"drop_tick_total"`
	IndexedTicks  uint64 `json:"indexed_ticks"`
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropTickTotal: s.dropTicks.Load(),
		IndexedTicks:  s.indexedTicks.Load(),
	}
}

// UpsertRules records the digest of every rules document, the combined rules
// digest and the applied tuning.
func (s *SQLiteIndex) UpsertRules(rs *rules.Ruleset, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
	}
	rows := make([]kv, 0, len(rs.Digests)+2)
	for _, name := range rules.Files {
		if d := rs.Digests[name]; d != "" {
			rows = append(rows, kv{name: name, digest: d})
		}
	}
	rows = append(rows, kv{name: "ruleset", digest: rs.Digest})
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:])})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('rules_version',?)`, fmt.Sprint(rules.Version)); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO rules(name,digest,updated_at) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.name, r.digest, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,orders,events,raw_json) VALUES(?,?,?,?,?)`)
	insertOrder, _ := s.db.Prepare(`INSERT OR REPLACE INTO orders(tick,seq,player,kind,actor,order_json) VALUES(?,?,?,?,?,?)`)
	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(tick,seq,type,actor,other,player,name,amount,reason,x,y) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertOrder, insertEvent} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for entry := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		if err := s.indexTick(tx, insertTick, insertOrder, insertEvent, entry, &opCount); err != nil {
			rollback()
			continue
		}
		s.indexedTicks.Add(1)
		if opCount >= s.commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}
	commit()
}

func (s *SQLiteIndex) indexTick(tx *sql.Tx, insertTick, insertOrder, insertEvent *sql.Stmt, e world.TickLogEntry, opCount *int) error {
	if insertTick == nil || insertOrder == nil || insertEvent == nil {
		return fmt.Errorf("statements not prepared")
	}
	b, _ := json.Marshal(e)
	if _, err := tx.Stmt(insertTick).Exec(int64(e.Tick), e.Digest, len(e.Orders), len(e.Events), string(b)); err != nil {
		return err
	}
	*opCount++
	for i, o := range e.Orders {
		oj, _ := json.Marshal(o)
		if _, err := tx.Stmt(insertOrder).Exec(int64(e.Tick), i, o.Player, string(o.Kind), int64(o.Actor), string(oj)); err != nil {
			return err
		}
		*opCount++
	}
	for i, ev := range e.Events {
		if _, err := tx.Stmt(insertEvent).Exec(
			int64(e.Tick), i, string(ev.Type),
			int64(ev.Actor), int64(ev.Other), ev.Player,
			ev.Name, ev.Amount, ev.Reason,
			ev.Pos[0], ev.Pos[1],
		); err != nil {
			return err
		}
		*opCount++
	}
	return nil
}
