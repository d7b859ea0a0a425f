// Package stats records upload activity in a DuckDB file and serves the
// aggregate queries behind the dashboard summary.
package stats

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/mediboard/backend/internal/models"
	"github.com/mediboard/backend/internal/picker"
)

// Outcome classifies a recorded event.
type Outcome string

const (
	OutcomeSubmit    Outcome = "submit"
	OutcomeAccepted  Outcome = "accepted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeTruncated Outcome = "truncated"
)

// Event is one row of upload activity.
type Event struct {
	Time      time.Time
	PickerID  string
	Profile   string
	FileName  string
	Mime      string
	SizeBytes int64
	Outcome   Outcome
	Reason    string
	Count     int
}

// EventStore batches upload events into a DuckDB file.
type EventStore struct {
	mu        sync.Mutex
	db        *sql.DB
	dbPath    string
	batch     []Event
	batchSize int
	recorded  int
}

// NewEventStore creates or opens the events database at dbPath.
func NewEventStore(dbPath string) (*EventStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS upload_events (
			ts         BIGINT NOT NULL,
			picker_id  VARCHAR NOT NULL,
			profile    VARCHAR,
			file_name  VARCHAR,
			mime       VARCHAR,
			size_bytes BIGINT NOT NULL,
			outcome    VARCHAR NOT NULL,
			reason     VARCHAR,
			cnt        INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	return &EventStore{
		db:        db,
		dbPath:    dbPath,
		batchSize: 512,
		batch:     make([]Event, 0, 512),
	}, nil
}

// Record queues a single event for insertion.
func (s *EventStore) Record(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if e.Count == 0 {
		e.Count = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = append(s.batch, e)
	s.recorded++
	if len(s.batch) >= s.batchSize {
		if err := s.flushBatchLocked(); err != nil {
			fmt.Printf("[EventStore] flush error: %v\n", err)
		}
	}
}

// RecordOutcome expands one SubmitBatch outcome into its event rows.
func (s *EventStore) RecordOutcome(pickerID, profileName string, out picker.Outcome) {
	now := time.Now()

	s.Record(Event{Time: now, PickerID: pickerID, Profile: profileName, Outcome: OutcomeSubmit})
	for _, f := range out.Accepted {
		s.Record(Event{
			Time: now, PickerID: pickerID, Profile: profileName,
			FileName: f.Name, Mime: f.MimeType, SizeBytes: f.SizeBytes,
			Outcome: OutcomeAccepted,
		})
	}
	for _, rej := range out.Rejected {
		s.Record(Event{
			Time: now, PickerID: pickerID, Profile: profileName,
			FileName: rej.File.Name, Mime: rej.File.MimeType, SizeBytes: rej.File.SizeBytes,
			Outcome: OutcomeRejected, Reason: string(rej.Reason),
		})
	}
	if out.Truncated > 0 {
		// The slot-limited tail is dropped without per-file reporting; a
		// single counted row keeps the aggregate right.
		s.Record(Event{
			Time: now, PickerID: pickerID, Profile: profileName,
			Outcome: OutcomeTruncated, Reason: string(picker.ReasonCountExceeded),
			Count: out.Truncated,
		})
	}
}

// flushBatchLocked writes the pending batch with the native Appender API.
// Caller holds s.mu.
func (s *EventStore) flushBatchLocked() error {
	if len(s.batch) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "upload_events")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, e := range s.batch {
			err := appender.AppendRow(
				e.Time.UnixMilli(),
				e.PickerID,
				e.Profile,
				e.FileName,
				e.Mime,
				e.SizeBytes,
				string(e.Outcome),
				e.Reason,
				int32(e.Count),
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}

		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	s.batch = s.batch[:0]
	return nil
}

// Flush forces pending events onto disk.
func (s *EventStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushBatchLocked()
}

// Summary aggregates all recorded activity for the dashboard.
func (s *EventStore) Summary() (*models.DashboardSummary, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	summary := &models.DashboardSummary{
		RejectsByReason: make(map[string]int),
		GeneratedAt:     time.Now(),
	}

	row := s.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN outcome = 'submit'    THEN cnt END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'accepted'  THEN cnt END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'rejected'  THEN cnt END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'truncated' THEN cnt END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'accepted'  THEN size_bytes END), 0)
		FROM upload_events
	`)
	err := row.Scan(
		&summary.TotalSubmits,
		&summary.AcceptedFiles,
		&summary.RejectedFiles,
		&summary.TruncatedFiles,
		&summary.BytesAccepted,
	)
	if err != nil {
		return nil, fmt.Errorf("summary totals: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT reason, SUM(cnt)
		FROM upload_events
		WHERE outcome IN ('rejected', 'truncated') AND reason <> ''
		GROUP BY reason
	`)
	if err != nil {
		return nil, fmt.Errorf("summary reasons: %w", err)
	}
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			rows.Close()
			return nil, err
		}
		summary.RejectsByReason[reason] = count
	}
	rows.Close()

	rows, err = s.db.Query(`
		SELECT mime, SUM(cnt) AS c
		FROM upload_events
		WHERE outcome = 'accepted' AND mime <> ''
		GROUP BY mime
		ORDER BY c DESC, mime
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("summary mime breakdown: %w", err)
	}
	for rows.Next() {
		var mc models.MimeCount
		if err := rows.Scan(&mc.Mime, &mc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		summary.TopMimeTypes = append(summary.TopMimeTypes, mc)
	}
	rows.Close()

	return summary, nil
}

// Close flushes pending events and closes the database.
func (s *EventStore) Close() error {
	s.mu.Lock()
	flushErr := s.flushBatchLocked()
	s.mu.Unlock()

	closeErr := s.db.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
