package ledger

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Outcome is how a simulated checkout session ended.
type Outcome string

const (
	OutcomeConfirmed               Outcome = "confirmed"
	OutcomeAbandonedOutOfStock     Outcome = "abandoned_out_of_stock"
	OutcomeAbandonedEmptyCart      Outcome = "abandoned_empty_cart"
	OutcomeAbandonedDeclined       Outcome = "abandoned_declined"
	OutcomeRejectedUnauthenticated Outcome = "rejected_unauthenticated"
	OutcomeTimedOut                Outcome = "timed_out"
)

type SessionOutcome struct {
	ID            uint    `gorm:"primaryKey"`
	SessionID     string  `gorm:"uniqueIndex;not null"`
	CustomerLabel string  `gorm:"index;not null"`
	Outcome       Outcome `gorm:"index;not null"`
	OrderNumber   string
	FinalStage    string
	Notifications int
	DurationMs    int64
	CreatedAt     time.Time
}

type StageSummary struct {
	FinalStage string
	Total      int64
}

type LabelSummary struct {
	CustomerLabel string
	Outcome       Outcome
	Total         int64
}

// Ledger records simulated session outcomes in SQLite.
type Ledger struct {
	db *gorm.DB
}

// Open opens (and migrates) the ledger at dsn. ":memory:" gives a throwaway ledger.
func Open(dsn string, verbose bool) (*Ledger, error) {
	level := logger.Silent
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  (&zerologGormLogger{}).LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening ledger %s", dsn)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "ledger connection pool")
	}
	// One connection: keeps ":memory:" to a single database and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&SessionOutcome{}); err != nil {
		return nil, errors.Wrap(err, "migrating ledger")
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Record(o SessionOutcome) error {
	if o.SessionID == "" {
		return errors.New("session id required")
	}
	return errors.Wrapf(l.db.Create(&o).Error, "recording outcome for %s", o.SessionID)
}

func (l *Ledger) Count() (int64, error) {
	var n int64
	err := l.db.Model(&SessionOutcome{}).Count(&n).Error
	return n, errors.Wrap(err, "counting outcomes")
}

func (l *Ledger) CountByOutcome(outcome Outcome) (int64, error) {
	var n int64
	err := l.db.Model(&SessionOutcome{}).Where("outcome = ?", outcome).Count(&n).Error
	return n, errors.Wrapf(err, "counting %s outcomes", outcome)
}

// SummaryByLabel groups outcome counts per customer label.
func (l *Ledger) SummaryByLabel() ([]LabelSummary, error) {
	var rows []LabelSummary
	err := l.db.Model(&SessionOutcome{}).
		Select("customer_label, outcome, count(*) as total").
		Group("customer_label, outcome").
		Order("customer_label, outcome").
		Scan(&rows).Error
	return rows, errors.Wrap(err, "summarizing outcomes")
}

// AbandonedByStage counts unconfirmed sessions per stage they stopped at.
// Sessions that never reached the flow carry no stage and are left out.
func (l *Ledger) AbandonedByStage() ([]StageSummary, error) {
	var rows []StageSummary
	err := l.db.Model(&SessionOutcome{}).
		Select("final_stage, count(*) as total").
		Where("outcome <> ? AND final_stage <> ''", OutcomeConfirmed).
		Group("final_stage").
		Order("final_stage").
		Scan(&rows).Error
	return rows, errors.Wrap(err, "summarizing abandonment")
}

func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return errors.Wrap(err, "closing ledger")
	}
	return sqlDB.Close()
}
