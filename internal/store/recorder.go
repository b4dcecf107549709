// Package store records detected kicks to a SQLite database so a session can
// be inspected after the fact.
package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/olivier-w/sugarviz/internal/analysis"
)

// pendingKicks bounds how many kicks may wait for the writer.
const pendingKicks = 64

// Session describes the source a recording was made from.
type Session struct {
	Source     string
	Title      string
	SampleRate float64
	Started    time.Time
}

// KickRecord is one stored kick.
type KickRecord struct {
	Seq      uint64
	At       time.Time
	BassHz   float64
	BassMag  float64
	X, Y, Z  float64
	Strength float64
	Volume   float64
}

// Recorder writes kicks for one session. Record is safe to call from the
// analyzer goroutine; the database is written on a separate goroutine.
type Recorder struct {
	db      *sql.DB
	session int64

	kicks   chan KickRecord
	wg      sync.WaitGroup
	once    sync.Once
	written atomic.Uint64
	dropped atomic.Uint64
}

// Open opens or creates the database at path and starts a new session.
func Open(path string, s Session) (*Recorder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving database path: %w", err)
	}
	db, err := sql.Open("sqlite3", absPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	res, err := db.Exec(
		"INSERT INTO sessions (source, title, sample_rate, started_at) VALUES (?, ?, ?, ?)",
		s.Source, s.Title, s.SampleRate, s.Started.UnixMilli(),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session: %w", err)
	}

	r := &Recorder{
		db:      db,
		session: id,
		kicks:   make(chan KickRecord, pendingKicks),
	}
	r.wg.Add(1)
	go r.write()

	logrus.WithFields(logrus.Fields{
		"function": "store.Open",
		"path":     absPath,
		"session":  id,
	}).Info("Recording kicks")
	return r, nil
}

func createTables(db *sql.DB) error {
	createSessions := `
    CREATE TABLE IF NOT EXISTS sessions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        source TEXT NOT NULL,
        title TEXT NOT NULL,
        sample_rate REAL NOT NULL,
        started_at INTEGER NOT NULL,
        ended_at INTEGER,
        windows INTEGER
    );
    `
	createKicks := `
    CREATE TABLE IF NOT EXISTS kicks (
        session_id INTEGER NOT NULL,
        seq INTEGER NOT NULL,
        at_ms INTEGER NOT NULL,
        bass_hz REAL NOT NULL,
        bass_mag REAL NOT NULL,
        x REAL NOT NULL,
        y REAL NOT NULL,
        z REAL NOT NULL,
        strength REAL NOT NULL,
        volume REAL NOT NULL,
        PRIMARY KEY (session_id, seq)
    );
    `
	if _, err := db.Exec(createSessions); err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}
	if _, err := db.Exec(createKicks); err != nil {
		return fmt.Errorf("creating kicks table: %w", err)
	}
	return nil
}

// Session returns the id of the session being recorded.
func (r *Recorder) Session() int64 { return r.session }

// Record queues the kick carried by s. Snapshots without a kick are ignored.
// When the writer falls behind the kick is dropped rather than blocking.
func (r *Recorder) Record(s analysis.Snapshot) {
	if s.Kick == nil {
		return
	}
	k := KickRecord{
		Seq:      s.Seq,
		At:       s.Time,
		BassHz:   analysis.BassBand.Hz(s.BassNote.Freq),
		BassMag:  s.BassNote.Mag,
		X:        s.Kick.X,
		Y:        s.Kick.Y,
		Z:        s.Kick.Z,
		Strength: s.Kick.Strength,
		Volume:   s.Volume,
	}
	select {
	case r.kicks <- k:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) write() {
	defer r.wg.Done()
	for k := range r.kicks {
		_, err := r.db.Exec(
			"INSERT OR REPLACE INTO kicks (session_id, seq, at_ms, bass_hz, bass_mag, x, y, z, strength, volume) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			r.session, k.Seq, k.At.UnixMilli(), k.BassHz, k.BassMag, k.X, k.Y, k.Z, k.Strength, k.Volume,
		)
		if err != nil {
			r.dropped.Add(1)
			logrus.WithFields(logrus.Fields{
				"function": "Recorder.write",
				"seq":      k.Seq,
				"error":    err.Error(),
			}).Warn("Failed to store kick")
			continue
		}
		r.written.Add(1)
	}
}

// Written returns how many kicks have been stored.
func (r *Recorder) Written() uint64 { return r.written.Load() }

// Dropped returns how many kicks were lost to a full queue or a failed write.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Kicks returns the stored kicks of a session in sequence order.
func (r *Recorder) Kicks(session int64) ([]KickRecord, error) {
	rows, err := r.db.Query(
		"SELECT seq, at_ms, bass_hz, bass_mag, x, y, z, strength, volume FROM kicks WHERE session_id = ? ORDER BY seq",
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("querying kicks: %w", err)
	}
	defer rows.Close()

	var out []KickRecord
	for rows.Next() {
		var k KickRecord
		var atMs int64
		if err := rows.Scan(&k.Seq, &atMs, &k.BassHz, &k.BassMag, &k.X, &k.Y, &k.Z, &k.Strength, &k.Volume); err != nil {
			return nil, fmt.Errorf("reading kick: %w", err)
		}
		k.At = time.UnixMilli(atMs)
		out = append(out, k)
	}
	return out, rows.Err()
}

// Close stops accepting kicks, flushes the queue, stamps the session end and
// closes the database. Record must not be called after Close.
func (r *Recorder) Close(windows uint64) error {
	var err error
	r.once.Do(func() {
		close(r.kicks)
		r.wg.Wait()
		_, err = r.db.Exec(
			"UPDATE sessions SET ended_at = ?, windows = ? WHERE id = ?",
			time.Now().UnixMilli(), windows, r.session,
		)
		if err != nil {
			err = fmt.Errorf("closing session: %w", err)
		}
		if cerr := r.db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}
