package persistence

import (
	"database/sql"
	"strings"
	"time"
)

// SQLiteSessionStore is a SessionStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteSessionStore struct {
	db *sql.DB
}

var _ SessionStore = (*SQLiteSessionStore)(nil)

// NewSQLiteSessionStore initializes the required schema in the given
// database and returns a new SQLiteSessionStore.
func NewSQLiteSessionStore(db *sql.DB) (*SQLiteSessionStore, error) {
	s := &SQLiteSessionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSessionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS wizard_sessions (
			id TEXT PRIMARY KEY,
			step INTEGER NOT NULL,
			card_number TEXT NOT NULL,
			expiration_date TEXT NOT NULL,
			cvv TEXT NOT NULL,
			card_holder_name TEXT NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			country TEXT NOT NULL,
			is_loading INTEGER NOT NULL,
			error TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteSessionStore) SaveSession(rec *SessionRecord) error {
	p := toPayload(rec)

	_, err := s.db.Exec(`
		INSERT INTO wizard_sessions (
			id, step, card_number, expiration_date, cvv, card_holder_name,
			address, city, postal_code, country, is_loading, error, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Step,
		p.Payment.CardNumber,
		p.Payment.ExpirationDate,
		p.Payment.CVV,
		p.Payment.CardHolderName,
		p.Billing.Address,
		p.Billing.City,
		p.Billing.PostalCode,
		p.Billing.Country,
		boolToInt(p.IsLoading),
		p.Error,
		p.UpdatedAt.UTC(),
	)
	return err
}

func (s *SQLiteSessionStore) UpdateSession(rec *SessionRecord) error {
	p := toPayload(rec)

	res, err := s.db.Exec(`
		UPDATE wizard_sessions
		SET step = ?, card_number = ?, expiration_date = ?, cvv = ?, card_holder_name = ?,
		    address = ?, city = ?, postal_code = ?, country = ?, is_loading = ?, error = ?, updated_at = ?
		WHERE id = ?`,
		p.Step,
		p.Payment.CardNumber,
		p.Payment.ExpirationDate,
		p.Payment.CVV,
		p.Payment.CardHolderName,
		p.Billing.Address,
		p.Billing.City,
		p.Billing.PostalCode,
		p.Billing.Country,
		boolToInt(p.IsLoading),
		p.Error,
		p.UpdatedAt.UTC(),
		p.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteSessionStore) GetSession(id string) (*SessionRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, step, card_number, expiration_date, cvv, card_holder_name,
		       address, city, postal_code, country, is_loading, error, updated_at
		FROM wizard_sessions WHERE id = ?`, id)

	rec, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	return rec, err
}

func (s *SQLiteSessionStore) ListSessions(filter SessionFilter) ([]*SessionRecord, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Step > 0 {
		clauses = append(clauses, "step = ?")
		args = append(args, filter.Step)
	}
	if filter.Loading != nil {
		clauses = append(clauses, "is_loading = ?")
		args = append(args, boolToInt(*filter.Loading))
	}

	q := `
		SELECT id, step, card_number, expiration_date, cvv, card_holder_name,
		       address, city, postal_code, country, is_loading, error, updated_at
		FROM wizard_sessions`
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var (
		p       sessionPayload
		loading int
		updated time.Time
	)
	err := row.Scan(
		&p.ID,
		&p.Step,
		&p.Payment.CardNumber,
		&p.Payment.ExpirationDate,
		&p.Payment.CVV,
		&p.Payment.CardHolderName,
		&p.Billing.Address,
		&p.Billing.City,
		&p.Billing.PostalCode,
		&p.Billing.Country,
		&loading,
		&p.Error,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	p.IsLoading = loading != 0
	p.UpdatedAt = updated
	return fromPayload(p), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
