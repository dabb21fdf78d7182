package storage

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"code.sztanpet.net/zvpsz/piezo-player/internal/config"
	"code.sztanpet.net/zvpsz/piezo-player/internal/file"
	"github.com/go-sql-driver/mysql"
	"github.com/juju/loggo"
)

// Storage persists played Tunes to disk before inserting them into a
// database; a board without network coverage still keeps its play history.
type Storage struct {
	ctx       context.Context
	path      string
	machineID string
	db        *sql.DB
	insert    chan inData

	stmtMu sync.RWMutex
	inStmt *sql.Stmt

	bufMu sync.Mutex
	inBuf map[[20]byte]Tune
}

type inData struct {
	path string
	data Tune
}

// Tune is one accepted admission worth remembering: where the command came
// from, what it said, and how many samples it queued.
type Tune struct {
	Source    string // "telegram", "tty", "boot"
	Notes     string
	Samples   int
	CreatedAt time.Time
}

var logger = loggo.GetLogger("main.storage")
var pathProcessDurr = 1 * time.Minute

// New needs cfg for the DSN, the state directory and the machine id.
// The spill directory is created eagerly; the DB connection is not
// validated until the first insert.
func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	path := filepath.Join(cfg.StatePath, "storage")
	// Open doesn't open a connection to validate the DSN!
	db, err := sql.Open("mysql", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(30 * time.Second)
	db.SetMaxIdleConns(3)
	db.SetMaxOpenConns(3)

	err = os.MkdirAll(path, 0700)
	if err != nil {
		return nil, err
	}

	s := &Storage{
		ctx:       ctx,
		path:      path,
		machineID: cfg.MachineID,
		db:        db,
		inBuf:     map[[20]byte]Tune{},
		insert:    make(chan inData, 1),
	}

	go s.consumeData()

	return s, nil
}

// TestConnection makes sure the configured DSN actually works and the
// connection to the database is alive.
func (s *Storage) TestConnection() error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	return s.db.PingContext(ctx)
}

func (s *Storage) pathForTune(data Tune) string {
	return filepath.Join(s.path, strconv.FormatInt(data.CreatedAt.UnixNano(), 10))
}

// Insert persists the Tune to disk for resilience and tries to insert it
// into the DB. It never blocks the caller on the database.
func (s *Storage) Insert(data Tune) {
	if data.CreatedAt.IsZero() {
		panic("Tune.CreatedAt cannot be zero")
	}

	// persist to disk first
	// assumption: UnixNano() gives a safely unique and sortable filename
	dp := s.pathForTune(data)
	_ = file.Serialize(dp, &data)

	// buffer in memory too, covering the cases where both persisting and
	// inserting fail, or the insert channel would block
	s.bufMu.Lock()
	ix := sha1.Sum([]byte(dp))
	s.inBuf[ix] = data
	s.bufMu.Unlock()

	// try to send the data up to the DB asap, on success the serialized
	// file is deleted
	select {
	case <-s.ctx.Done():
	case s.insert <- inData{path: dp, data: data}:
	default:
	}
}

// consumeData listens on the insert channel; successful inserts drop their
// disk and memory copies, failed ones are retried by the periodic sweep.
func (s *Storage) consumeData() {
	t := time.NewTicker(pathProcessDurr)
	var cancel context.CancelFunc
	defer func() {
		if cancel != nil {
			cancel()
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			logger.Infof("consumeData: context cancelled, exiting")
			return

		case in := <-s.insert:
			err := s.dbInsert(in.data)
			if err != nil {
				// processPath and processBuf retry later
				continue
			}

			if err := os.Remove(in.path); err != nil {
				// there is a unique index on created_at, so a
				// re-insert of this file is tolerated and we
				// just try removing it again
				logger.Errorf("Failed to remove path: %v error was: %v", in.path, err)
			}

			s.bufMu.Lock()
			delete(s.inBuf, sha1.Sum([]byte(in.path)))
			s.bufMu.Unlock()

		case <-t.C:
			if cancel != nil {
				cancel()
			}
			var ctx context.Context
			ctx, cancel = context.WithCancel(s.ctx)
			go func() {
				s.processBuf(ctx)
				s.processPath(ctx)
			}()
		}
	}
}

func (s *Storage) processBuf(ctx context.Context) {
	s.bufMu.Lock()
	now := time.Now()
	var toInsert []inData
	for _, data := range s.inBuf {
		// leave fresh entries to the direct insert path
		if diff := now.Sub(data.CreatedAt); diff < time.Second {
			continue
		}

		toInsert = append(toInsert, inData{
			path: s.pathForTune(data),
			data: data,
		})
	}
	s.bufMu.Unlock()

	if len(toInsert) == 0 {
		return
	}

	logger.Tracef("number of tunes buffered: %v", len(toInsert))
	for _, in := range toInsert {
		select {
		case <-ctx.Done():
			return
		case s.insert <- in:
		}
	}
}

// processPath retries inserting the spill files in Storage.path.
func (s *Storage) processPath(ctx context.Context) {
	files, err := os.ReadDir(s.path)
	if err != nil {
		logger.Errorf("listing s.path failed (%v), skipping processing", err)
		return
	}

	logger.Tracef("number of files to insert: %v", len(files))
	for _, f := range files {
		id := inData{
			path: filepath.Join(s.path, f.Name()),
		}

		err := file.Unserialize(id.path, &id.data)
		if err != nil {
			logger.Errorf("failed unserializing %v, error was: %v", id.path, err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case s.insert <- id:
		}
	}
}

func (s *Storage) dbInsert(row Tune) error {
	err := s.ensureStatement()
	if err != nil {
		return err
	}

	s.stmtMu.RLock()
	defer s.stmtMu.RUnlock()

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	// the result is irrelevant, only the error matters
	_, err = s.inStmt.ExecContext(
		ctx,
		s.machineID,
		row.Source,
		row.Notes,
		row.Samples,
		row.CreatedAt.UnixNano(),
	)

	if err != nil {
		me, ok := err.(*mysql.MySQLError)
		if !ok {
			return err
		}

		// ignore unique errors, the row is already up there
		// unique error codes from:
		// https://dev.mysql.com/doc/refman/5.7/en/server-error-reference.html
		switch me.Number {
		case 1062, 1586:
			return nil
		}

		return err
	}

	return nil
}

func (s *Storage) ensureStatement() error {
	// take a read lock first to check if inStmt is set,
	// and only if it is not, take the write lock to set it
	s.stmtMu.RLock()
	if s.inStmt != nil {
		s.stmtMu.RUnlock()
		return nil
	}
	s.stmtMu.RUnlock()

	// db.Stmt is safe to use concurrently, but the pointer to it is not
	// safe to modify concurrently
	s.stmtMu.Lock()
	defer s.stmtMu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO tunes (machine_id, source, notes, samples, created_at, timestamp)
		VALUES (?, ?, ?, ?, ?, NOW())
	`)
	if err != nil {
		_ = s.db.Close()
		return err
	}
	s.inStmt = stmt

	return nil
}
