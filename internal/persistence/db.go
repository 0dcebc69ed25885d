// Package persistence provides SQLite-based colony state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/config"
	"github.com/talgya/apiary/internal/hive"
)

// ErrNoSnapshot is returned by Load when the database holds no saved
// colony.
var ErrNoSnapshot = errors.New("no snapshot in database")

// DB wraps a SQLite connection for colony state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cells (
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		state INTEGER NOT NULL,
		development_time REAL NOT NULL,
		max_development_time REAL NOT NULL,
		content_amount REAL NOT NULL,
		dirty INTEGER NOT NULL,
		dead_bees INTEGER NOT NULL,
		PRIMARY KEY (q, r)
	);

	CREATE TABLE IF NOT EXISTS bees (
		id INTEGER PRIMARY KEY,
		kind INTEGER NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		age REAL NOT NULL,
		max_age REAL NOT NULL,
		task INTEGER NOT NULL,
		task_timer REAL NOT NULL,
		target_q INTEGER NOT NULL,
		target_r INTEGER NOT NULL,
		has_target INTEGER NOT NULL,
		has_nectar INTEGER NOT NULL,
		has_pollen INTEGER NOT NULL,
		has_water INTEGER NOT NULL,
		has_food INTEGER NOT NULL,
		has_dead_bee INTEGER NOT NULL,
		outside INTEGER NOT NULL,
		eggs_laid INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS summaries (
		date TEXT PRIMARY KEY,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		eggs_laid INTEGER NOT NULL,
		foraging_trips INTEGER NOT NULL,
		nectar_stored REAL NOT NULL,
		pollen_stored REAL NOT NULL,
		water_stored REAL NOT NULL,
		larvae_fed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sim_time REAL NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS colony_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_sim_time ON events(sim_time);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunID returns the persistent colony run identifier, creating one on
// first use.
func (db *DB) RunID() (string, error) {
	id, err := db.GetMeta("run_id")
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	if err := db.SaveMeta("run_id", id); err != nil {
		return "", err
	}
	return id, nil
}

// SaveSnapshot performs a full-replace save of the colony state.
func (db *DB) SaveSnapshot(s *hive.Snapshot) error {
	slog.Info("saving colony state", "cells", len(s.Cells), "bees", len(s.Bees))

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveCells(tx, s.Cells); err != nil {
		return fmt.Errorf("save cells: %w", err)
	}
	if err := saveBees(tx, s.Bees); err != nil {
		return fmt.Errorf("save bees: %w", err)
	}
	if err := saveSummaries(tx, s.Today, s.Summaries); err != nil {
		return fmt.Errorf("save summaries: %w", err)
	}
	if err := saveMetaTx(tx, s); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("colony state saved")
	return nil
}

func saveCells(tx *sqlx.Tx, cells []hive.CellSnapshot) error {
	if _, err := tx.Exec("DELETE FROM cells"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO cells
		(q, r, state, development_time, max_development_time, content_amount, dirty, dead_bees)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cells {
		_, err := stmt.Exec(
			c.Q, c.R, c.State, c.DevelopmentTime, c.MaxDevelopmentTime,
			c.ContentAmount, boolInt(c.Dirty), c.DeadBees,
		)
		if err != nil {
			return fmt.Errorf("insert cell (%d,%d): %w", c.Q, c.R, err)
		}
	}
	return nil
}

func saveBees(tx *sqlx.Tx, beeRows []hive.BeeSnapshot) error {
	if _, err := tx.Exec("DELETE FROM bees"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO bees
		(id, kind, q, r, age, max_age, task, task_timer, target_q, target_r,
		 has_target, has_nectar, has_pollen, has_water, has_food, has_dead_bee,
		 outside, eggs_laid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range beeRows {
		_, err := stmt.Exec(
			b.ID, b.Kind, b.Q, b.R, b.Age, b.MaxAge, b.Task, b.TaskTimer,
			b.TargetQ, b.TargetR,
			boolInt(b.HasTarget), boolInt(b.HasNectar), boolInt(b.HasPollen),
			boolInt(b.HasWater), boolInt(b.HasFood), boolInt(b.HasDeadBee),
			boolInt(b.Outside), b.EggsLaid,
		)
		if err != nil {
			return fmt.Errorf("insert bee %d: %w", b.ID, err)
		}
	}
	return nil
}

func saveSummaries(tx *sqlx.Tx, today hive.DaySummary, history []hive.DaySummary) error {
	if _, err := tx.Exec("DELETE FROM summaries"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO summaries
		(date, births, deaths, eggs_laid, foraging_trips,
		 nectar_stored, pollen_stored, water_stored, larvae_fed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows := append(append([]hive.DaySummary(nil), history...), today)
	for _, d := range rows {
		if d.Date == "" {
			continue
		}
		_, err := stmt.Exec(
			d.Date, d.Births, d.Deaths, d.EggsLaid, d.ForagingTrips,
			d.NectarStored, d.PollenStored, d.WaterStored, d.LarvaeFed,
		)
		if err != nil {
			return fmt.Errorf("insert summary %s: %w", d.Date, err)
		}
	}
	return nil
}

func saveMetaTx(tx *sqlx.Tx, s *hive.Snapshot) error {
	cfgJSON, err := json.Marshal(s.Config)
	if err != nil {
		return err
	}
	meta := map[string]string{
		"sim_time":    fmt.Sprintf("%f", s.SimTime),
		"date":        s.Date.Format(time.RFC3339),
		"next_id":     fmt.Sprintf("%d", s.NextID),
		"temperature": fmt.Sprintf("%f", s.Temperature),
		"config":      string(cfgJSON),
	}
	if s.EmergencyQueen != nil {
		meta["emergency_queen"] = fmt.Sprintf("%d,%d", s.EmergencyQueen.Q, s.EmergencyQueen.R)
	} else {
		meta["emergency_queen"] = ""
	}
	for k, v := range meta {
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO colony_meta (key, value) VALUES (?, ?)",
			k, v,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []hive.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (sim_time, description, category) VALUES (?, ?, ?)",
			e.SimTime, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in colony metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO colony_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM colony_meta WHERE key = ?", key)
	return value, err
}

// LoadSnapshot reads the saved colony state, or ErrNoSnapshot if the
// database is fresh.
func (db *DB) LoadSnapshot() (*hive.Snapshot, error) {
	cfgJSON, err := db.GetMeta("config")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}

	var cfg config.Config
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	s := &hive.Snapshot{Config: &cfg}
	if err := db.loadMeta(s); err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}

	if err := db.conn.Select(&s.Cells, `SELECT
		q, r, state, development_time, max_development_time,
		content_amount, dirty, dead_bees FROM cells`); err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	if err := db.conn.Select(&s.Bees, `SELECT
		id, kind, q, r, age, max_age, task, task_timer, target_q, target_r,
		has_target, has_nectar, has_pollen, has_water, has_food, has_dead_bee,
		outside, eggs_laid FROM bees`); err != nil {
		return nil, fmt.Errorf("load bees: %w", err)
	}

	var summaries []hive.DaySummary
	if err := db.conn.Select(&summaries, `SELECT
		date, births, deaths, eggs_laid, foraging_trips,
		nectar_stored, pollen_stored, water_stored, larvae_fed
		FROM summaries ORDER BY date`); err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	if n := len(summaries); n > 0 {
		s.Today = summaries[n-1]
		s.Summaries = summaries[:n-1]
	}

	return s, nil
}

func (db *DB) loadMeta(s *hive.Snapshot) error {
	get := func(key string) (string, error) {
		v, err := db.GetMeta(key)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return v, err
	}

	simTime, err := get("sim_time")
	if err != nil {
		return err
	}
	fmt.Sscanf(simTime, "%f", &s.SimTime)

	dateStr, err := get("date")
	if err != nil {
		return err
	}
	if dateStr != "" {
		if t, perr := time.Parse(time.RFC3339, dateStr); perr == nil {
			s.Date = t
		}
	}

	nextID, err := get("next_id")
	if err != nil {
		return err
	}
	fmt.Sscanf(nextID, "%d", &s.NextID)

	temp, err := get("temperature")
	if err != nil {
		return err
	}
	fmt.Sscanf(temp, "%f", &s.Temperature)

	eq, err := get("emergency_queen")
	if err != nil {
		return err
	}
	if eq != "" {
		var q, r int
		if _, serr := fmt.Sscanf(eq, "%d,%d", &q, &r); serr == nil {
			s.EmergencyQueen = &comb.HexCoord{Q: q, R: r}
		}
	}

	return nil
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]hive.Event, error) {
	var events []hive.Event
	err := db.conn.Select(&events,
		"SELECT sim_time, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
