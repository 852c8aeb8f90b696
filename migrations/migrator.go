// Package migrations applies versioned schema changes and records them in a
// tracking table, one transaction per migration.
package migrations

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Migration is one versioned schema change. Versions sort lexically in apply order.
type Migration struct {
	Version string
	Name    string
	Up      func(*gorm.DB) error
	Down    func(*gorm.DB) error
}

// Record is a row of the tracking table.
type Record struct {
	Version   string    `gorm:"primaryKey;size:32"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName pins the tracking table name.
func (Record) TableName() string { return "schema_migrations" }

// Status describes one known migration and whether it is applied.
type Status struct {
	Version   string
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// ErrNothingToRollback is returned by Down when no migration is applied.
var ErrNothingToRollback = errors.New("no applied migrations to roll back")

// Migrator runs a fixed, ordered set of migrations against a database.
type Migrator struct {
	db         *gorm.DB
	migrations []*Migration
}

// New creates a Migrator for the given migrations (defaults to All()).
func New(db *gorm.DB, ms ...*Migration) *Migrator {
	if len(ms) == 0 {
		ms = All()
	}
	sorted := make([]*Migration, len(ms))
	copy(sorted, ms)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return &Migrator{db: db, migrations: sorted}
}

func (m *Migrator) ensureVersionTable() error {
	return m.db.AutoMigrate(&Record{})
}

// Applied returns the applied versions keyed by version.
func (m *Migrator) Applied() (map[string]Record, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}
	var records []Record
	if err := m.db.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(records))
	for _, r := range records {
		out[r.Version] = r
	}
	return out, nil
}

// Pending returns migrations not yet applied, in apply order.
func (m *Migrator) Pending() ([]*Migration, error) {
	applied, err := m.Applied()
	if err != nil {
		return nil, err
	}
	var pending []*Migration
	for _, mr := range m.migrations {
		if _, ok := applied[mr.Version]; !ok {
			pending = append(pending, mr)
		}
	}
	return pending, nil
}

// Up applies every pending migration and returns the ones it applied.
func (m *Migrator) Up() ([]*Migration, error) {
	pending, err := m.Pending()
	if err != nil {
		return nil, err
	}
	var done []*Migration
	for _, mr := range pending {
		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := mr.Up(tx); err != nil {
				return err
			}
			return tx.Create(&Record{Version: mr.Version, Name: mr.Name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return done, fmt.Errorf("apply migration %s (%s): %w", mr.Name, mr.Version, err)
		}
		done = append(done, mr)
	}
	return done, nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down() (*Migration, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}
	var last Record
	err := m.db.Order("version DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNothingToRollback
	}
	if err != nil {
		return nil, err
	}

	var target *Migration
	for _, mr := range m.migrations {
		if mr.Version == last.Version {
			target = mr
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("applied migration %s is not known to this binary", last.Version)
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if target.Down != nil {
			if err := target.Down(tx); err != nil {
				return err
			}
		}
		return tx.Delete(&last).Error
	})
	if err != nil {
		return nil, fmt.Errorf("roll back migration %s (%s): %w", target.Name, target.Version, err)
	}
	return target, nil
}

// Status lists every known migration in apply order.
func (m *Migrator) Status() ([]Status, error) {
	applied, err := m.Applied()
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(m.migrations))
	for _, mr := range m.migrations {
		st := Status{Version: mr.Version, Name: mr.Name}
		if r, ok := applied[mr.Version]; ok {
			at := r.AppliedAt
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}
