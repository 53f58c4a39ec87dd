/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence interface the domain packages declare
  (contract.Store, shift.Store, wage.Store, payment.Store,
  calendar.Store) in one place. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  workplaces, contracts:   Employment agreements and their weekly pattern
  shifts:                  Dated work records (soft-deleted, never removed)
  correction_requests:     Approval workflow on committed shifts
  salaries, payments:      Itemized statements and their settlement record
  holidays:                Public holiday calendar (date unique)
  auth_tokens:             Session tokens (purged daily)
  generation_runs,
  sweep_runs:              Audit records of periodic batch runs

ATOMIC UNITS:
  Multi-write operations are store methods wrapped in one SQL
  transaction: ResolveCorrection (shift overwrite + request resolution),
  ReplaceHolidayYear (delete + bulk insert), ReplaceSalary (statement
  swap + settlement re-creation). Either all writes commit or none do.

CRITICAL INDEXES:
  UNIQUE(contract_id, work_date) on shifts     - generation idempotency
  UNIQUE(contract_id, year, month) on salaries - replace semantics
  UNIQUE(salary_id) on payments                - one settlement per salary
  UNIQUE(date) on holidays                     - calendar integrity

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/wage.db")   // ":memory:" for tests
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - contract/factory.go, shift/types.go, wage/types.go, payment/types.go,
    calendar/service.go: Interface definitions
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/wage-engine/calendar"
	"github.com/warp/wage-engine/contract"
	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/payment"
	"github.com/warp/wage-engine/shift"
	"github.com/warp/wage-engine/wage"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time interface checks.
var (
	_ contract.Store = (*Store)(nil)
	_ shift.Store    = (*Store)(nil)
	_ wage.Store     = (*Store)(nil)
	_ payment.Store  = (*Store)(nil)
	_ calendar.Store = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Workplaces
	CREATE TABLE IF NOT EXISTS workplaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		employer_id TEXT NOT NULL,
		fewer_than_five BOOLEAN NOT NULL DEFAULT FALSE,
		paid_weekends BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Contracts
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		workplace_id TEXT NOT NULL REFERENCES workplaces(id),
		hourly_wage TEXT NOT NULL,
		work_days_json TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		payment_day INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_worker ON contracts(worker_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_workplace ON contracts(workplace_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_active ON contracts(active);

	-- Shifts (soft-deleted via status, never removed)
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		work_date TEXT NOT NULL,
		start_min INTEGER NOT NULL,
		end_min INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'SCHEDULED',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: one shift per contract per date - the generator's
	-- idempotency backstop
	CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_contract_date
		ON shifts(contract_id, work_date);
	CREATE INDEX IF NOT EXISTS idx_shifts_contract_status
		ON shifts(contract_id, status);

	-- Correction requests
	CREATE TABLE IF NOT EXISTS correction_requests (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(id),
		requested_by_id TEXT NOT NULL,
		requested_by_role TEXT NOT NULL,
		proposed_date TEXT NOT NULL,
		proposed_start_min INTEGER NOT NULL,
		proposed_end_min INTEGER NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		reviewed_by_id TEXT,
		reviewed_by_role TEXT,
		reviewed_at TEXT,
		review_comment TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_corrections_shift
		ON correction_requests(shift_id);
	CREATE INDEX IF NOT EXISTS idx_corrections_status
		ON correction_requests(status);

	-- Salaries (one statement per contract per billing month)
	CREATE TABLE IF NOT EXISTS salaries (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		total_hours TEXT NOT NULL,
		base_pay TEXT NOT NULL,
		overtime_pay TEXT NOT NULL,
		night_pay TEXT NOT NULL,
		holiday_pay TEXT NOT NULL,
		gross_pay TEXT NOT NULL,
		national_pension TEXT NOT NULL,
		health_insurance TEXT NOT NULL,
		long_term_care TEXT NOT NULL,
		employment_insurance TEXT NOT NULL,
		income_tax TEXT NOT NULL,
		local_income_tax TEXT NOT NULL,
		total_deduction TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		due_date TEXT NOT NULL,
		computed_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_salaries_contract_period
		ON salaries(contract_id, year, month);
	CREATE INDEX IF NOT EXISTS idx_salaries_due_date
		ON salaries(due_date);

	-- Payments (one settlement record per salary)
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		salary_id TEXT NOT NULL REFERENCES salaries(id),
		method TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		completed_at TEXT,
		transaction_ref TEXT,
		failure_reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_salary
		ON payments(salary_id);
	CREATE INDEX IF NOT EXISTS idx_payments_status
		ON payments(status);

	-- Holidays (date unique - the refresh replaces whole years)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT,
		remarks TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date);

	-- Auth tokens (identity itself lives elsewhere; only expiry matters here)
	CREATE TABLE IF NOT EXISTS auth_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_auth_tokens_expires
		ON auth_tokens(expires_at);

	-- Generation runs (horizon extension audit)
	CREATE TABLE IF NOT EXISTS generation_runs (
		id TEXT PRIMARY KEY,
		target_year INTEGER NOT NULL,
		target_month INTEGER NOT NULL,
		contracts INTEGER NOT NULL,
		created INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);

	-- Sweep runs (payment expiry audit)
	CREATE TABLE IF NOT EXISTS sweep_runs (
		id TEXT PRIMARY KEY,
		as_of TEXT NOT NULL,
		eligible INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		errored INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKPLACES & CONTRACTS (contract.Store)
// =============================================================================

func (s *Store) SaveWorkplace(ctx context.Context, w *contract.Workplace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workplaces (id, name, employer_id, fewer_than_five, paid_weekends, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			fewer_than_five = excluded.fewer_than_five,
			paid_weekends = excluded.paid_weekends
	`, w.ID, w.Name, w.EmployerID, w.FewerThanFiveEmployees, w.PaidWeekends,
		formatTime(w.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save workplace: %w", err)
	}
	return nil
}

func (s *Store) GetWorkplace(ctx context.Context, id string) (*contract.Workplace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var w contract.Workplace
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, employer_id, fewer_than_five, paid_weekends, created_at
		FROM workplaces WHERE id = ?
	`, id).Scan(&w.ID, &w.Name, &w.EmployerID, &w.FewerThanFiveEmployees, &w.PaidWeekends, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.NotFoundError{Entity: "workplace", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workplace: %w", err)
	}
	w.CreatedAt = parseTime(createdAt)
	return &w, nil
}

func (s *Store) SaveContract(ctx context.Context, c *contract.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	workDaysJSON, err := json.Marshal(encodeWorkDays(c.WorkDays))
	if err != nil {
		return fmt.Errorf("failed to encode work days: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contracts
		(id, worker_id, workplace_id, hourly_wage, work_days_json, start_date,
		 end_date, payment_day, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hourly_wage = excluded.hourly_wage,
			work_days_json = excluded.work_days_json,
			end_date = excluded.end_date,
			payment_day = excluded.payment_day,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, c.ID, c.WorkerID, c.WorkplaceID, c.HourlyWage.String(), string(workDaysJSON),
		c.StartDate.String(), nullDate(c.EndDate), c.PaymentDay, c.Active,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

func (s *Store) GetContract(ctx context.Context, id string) (*contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, worker_id, workplace_id, hourly_wage, work_days_json, start_date,
		       end_date, payment_day, active, created_at, updated_at
		FROM contracts WHERE id = ?
	`, id)
	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.NotFoundError{Entity: "contract", ID: id}
	}
	return c, err
}

func (s *Store) ListActiveContracts(ctx context.Context) ([]contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, workplace_id, hourly_wage, work_days_json, start_date,
		       end_date, payment_day, active, created_at, updated_at
		FROM contracts WHERE active = TRUE ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows so the scan helpers work
// for single-row and list queries alike.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*contract.Contract, error) {
	var c contract.Contract
	var wageStr, workDaysJSON, startDate, createdAt, updatedAt string
	var endDate sql.NullString

	err := row.Scan(&c.ID, &c.WorkerID, &c.WorkplaceID, &wageStr, &workDaysJSON,
		&startDate, &endDate, &c.PaymentDay, &c.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.HourlyWage, err = labor.MoneyFromString(wageStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt hourly wage for contract %s: %w", c.ID, err)
	}

	var encoded []workDayRecord
	if err := json.Unmarshal([]byte(workDaysJSON), &encoded); err != nil {
		return nil, fmt.Errorf("corrupt work days for contract %s: %w", c.ID, err)
	}
	c.WorkDays = decodeWorkDays(encoded)

	c.StartDate, err = labor.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	if endDate.Valid {
		d, err := labor.ParseDate(endDate.String)
		if err != nil {
			return nil, err
		}
		c.EndDate = &d
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// workDayRecord is the JSON shape of one weekly pattern entry.
type workDayRecord struct {
	Weekday  int `json:"weekday"`
	StartMin int `json:"startMin"`
	EndMin   int `json:"endMin"`
}

func encodeWorkDays(workDays []contract.WorkDay) []workDayRecord {
	encoded := make([]workDayRecord, 0, len(workDays))
	for _, wd := range workDays {
		encoded = append(encoded, workDayRecord{
			Weekday: wd.Weekday, StartMin: wd.Start.Minutes, EndMin: wd.End.Minutes,
		})
	}
	return encoded
}

func decodeWorkDays(encoded []workDayRecord) []contract.WorkDay {
	workDays := make([]contract.WorkDay, 0, len(encoded))
	for _, r := range encoded {
		workDays = append(workDays, contract.WorkDay{
			Weekday: r.Weekday,
			Start:   labor.TimeOfDay{Minutes: r.StartMin},
			End:     labor.TimeOfDay{Minutes: r.EndMin},
		})
	}
	return workDays
}

// =============================================================================
// SHIFTS (shift.Store)
// =============================================================================

func (s *Store) SaveShift(ctx context.Context, sh *shift.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (id, contract_id, work_date, start_min, end_min, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sh.ID, sh.ContractID, sh.WorkDate.String(), sh.Start.Minutes, sh.End.Minutes,
		string(sh.Status), formatTime(sh.CreatedAt), formatTime(sh.UpdatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return &labor.ValidationError{Field: "workDate",
				Message: fmt.Sprintf("shift already exists for %s", sh.WorkDate)}
		}
		return fmt.Errorf("failed to save shift: %w", err)
	}
	return nil
}

func (s *Store) GetShift(ctx context.Context, id string) (*shift.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract_id, work_date, start_min, end_min, status, created_at, updated_at
		FROM shifts WHERE id = ?
	`, id)
	sh, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.NotFoundError{Entity: "shift", ID: id}
	}
	return sh, err
}

func (s *Store) ShiftExists(ctx context.Context, contractID string, date labor.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM shifts WHERE contract_id = ? AND work_date = ?
	`, contractID, date.String()).Scan(&count)
	return count > 0, err
}

func (s *Store) ListShiftsForMonth(ctx context.Context, contractID string, year int, month time.Month) ([]shift.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryShifts(ctx, `
		SELECT id, contract_id, work_date, start_min, end_min, status, created_at, updated_at
		FROM shifts
		WHERE contract_id = ? AND work_date >= ? AND work_date <= ?
		ORDER BY work_date ASC
	`, contractID, labor.FirstOfMonth(year, month).String(), labor.LastOfMonth(year, month).String())
}

// ListPayableShifts is the wage calculator's view of the month:
// SCHEDULED and COMPLETED only, soft-deleted shifts filtered out.
func (s *Store) ListPayableShifts(ctx context.Context, contractID string, year int, month time.Month) ([]shift.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryShifts(ctx, `
		SELECT id, contract_id, work_date, start_min, end_min, status, created_at, updated_at
		FROM shifts
		WHERE contract_id = ? AND work_date >= ? AND work_date <= ?
		  AND status IN ('SCHEDULED', 'COMPLETED')
		ORDER BY work_date ASC
	`, contractID, labor.FirstOfMonth(year, month).String(), labor.LastOfMonth(year, month).String())
}

func (s *Store) UpdateShiftStatus(ctx context.Context, id string, status shift.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE shifts SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("failed to update shift status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &labor.NotFoundError{Entity: "shift", ID: id}
	}
	return nil
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]shift.Shift, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []shift.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *sh)
	}
	return shifts, rows.Err()
}

func scanShift(row rowScanner) (*shift.Shift, error) {
	var sh shift.Shift
	var workDate, status, createdAt, updatedAt string
	err := row.Scan(&sh.ID, &sh.ContractID, &workDate, &sh.Start.Minutes, &sh.End.Minutes,
		&status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	sh.WorkDate, err = labor.ParseDate(workDate)
	if err != nil {
		return nil, err
	}
	sh.Status = shift.Status(status)
	sh.CreatedAt = parseTime(createdAt)
	sh.UpdatedAt = parseTime(updatedAt)
	return &sh, nil
}

// =============================================================================
// CORRECTION REQUESTS (shift.Store, continued)
// =============================================================================

func (s *Store) SaveCorrectionRequest(ctx context.Context, r *shift.CorrectionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO correction_requests
		(id, shift_id, requested_by_id, requested_by_role, proposed_date,
		 proposed_start_min, proposed_end_min, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ShiftID, r.RequestedBy.ID, string(r.RequestedBy.Role),
		r.ProposedDate.String(), r.ProposedStart.Minutes, r.ProposedEnd.Minutes,
		r.Reason, string(r.Status), formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save correction request: %w", err)
	}
	return nil
}

func (s *Store) GetCorrectionRequest(ctx context.Context, id string) (*shift.CorrectionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, correctionSelect+` WHERE id = ?`, id)
	r, err := scanCorrection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.NotFoundError{Entity: "correction request", ID: id}
	}
	return r, err
}

func (s *Store) ListCorrectionsForShift(ctx context.Context, shiftID string) ([]shift.CorrectionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, correctionSelect+` WHERE shift_id = ? ORDER BY created_at ASC`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query correction requests: %w", err)
	}
	defer rows.Close()

	var requests []shift.CorrectionRequest
	for rows.Next() {
		r, err := scanCorrection(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// ResolveCorrection persists a resolved request and, when the amendment
// is non-nil (approval), the amended shift - in one transaction. The
// status guard on the UPDATE keeps a concurrent double-resolution from
// slipping through.
func (s *Store) ResolveCorrection(ctx context.Context, r *shift.CorrectionRequest, amended *shift.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var reviewedByID, reviewedByRole, reviewedAt any
	if r.ReviewedBy != nil {
		reviewedByID = r.ReviewedBy.ID
		reviewedByRole = string(r.ReviewedBy.Role)
	}
	if r.ReviewedAt != nil {
		reviewedAt = formatTime(*r.ReviewedAt)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE correction_requests
		SET status = ?, reviewed_by_id = ?, reviewed_by_role = ?, reviewed_at = ?, review_comment = ?
		WHERE id = ? AND status = 'PENDING'
	`, string(r.Status), reviewedByID, reviewedByRole, reviewedAt, r.ReviewComment, r.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve correction request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &labor.InvalidStateError{Entity: "correction request", ID: r.ID,
			Current: "resolved", Attempt: "resolve"}
	}

	if amended != nil {
		_, err := tx.ExecContext(ctx, `
			UPDATE shifts SET work_date = ?, start_min = ?, end_min = ?, updated_at = ?
			WHERE id = ?
		`, amended.WorkDate.String(), amended.Start.Minutes, amended.End.Minutes,
			formatTime(amended.UpdatedAt), amended.ID)
		if err != nil {
			if isUniqueConstraintError(err) {
				return &labor.ValidationError{Field: "proposedDate",
					Message: fmt.Sprintf("another shift already exists on %s", amended.WorkDate)}
			}
			return fmt.Errorf("failed to amend shift: %w", err)
		}
	}

	return tx.Commit()
}

const correctionSelect = `
	SELECT id, shift_id, requested_by_id, requested_by_role, proposed_date,
	       proposed_start_min, proposed_end_min, reason, status,
	       reviewed_by_id, reviewed_by_role, reviewed_at, review_comment, created_at
	FROM correction_requests`

func scanCorrection(row rowScanner) (*shift.CorrectionRequest, error) {
	var r shift.CorrectionRequest
	var proposedDate, requestedByRole, status, createdAt string
	var reason, reviewedByID, reviewedByRole, reviewedAt, reviewComment sql.NullString

	err := row.Scan(&r.ID, &r.ShiftID, &r.RequestedBy.ID, &requestedByRole, &proposedDate,
		&r.ProposedStart.Minutes, &r.ProposedEnd.Minutes, &reason, &status,
		&reviewedByID, &reviewedByRole, &reviewedAt, &reviewComment, &createdAt)
	if err != nil {
		return nil, err
	}

	r.RequestedBy.Role = labor.Role(requestedByRole)
	r.ProposedDate, err = labor.ParseDate(proposedDate)
	if err != nil {
		return nil, err
	}
	r.Reason = reason.String
	r.Status = shift.CorrectionStatus(status)
	if reviewedByID.Valid {
		r.ReviewedBy = &labor.Actor{ID: reviewedByID.String, Role: labor.Role(reviewedByRole.String)}
	}
	if reviewedAt.Valid {
		t := parseTime(reviewedAt.String)
		r.ReviewedAt = &t
	}
	r.ReviewComment = reviewComment.String
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// =============================================================================
// SALARIES (wage.Store)
// =============================================================================

// ReplaceSalary swaps any prior statement for the same (contract, year,
// month) with the new one and re-creates its pending settlement record.
// One transaction: a recomputation can never leave a statement without
// its payment, or a payment pointing at a deleted statement.
// A month whose payment is already COMPLETED or FAILED is settled; the
// replacement is refused so the terminal record and its transaction
// reference survive.
func (s *Store) ReplaceSalary(ctx context.Context, sal *wage.Salary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var priorID, priorStatus string
	err = tx.QueryRowContext(ctx, `
		SELECT p.id, p.status FROM payments p
		JOIN salaries sa ON p.salary_id = sa.id
		WHERE sa.contract_id = ? AND sa.year = ? AND sa.month = ?
	`, sal.ContractID, sal.Year, int(sal.Month)).Scan(&priorID, &priorStatus)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check prior payment: %w", err)
	}
	if err == nil && priorStatus != string(payment.StatusPending) {
		return &labor.InvalidStateError{Entity: "payment", ID: priorID,
			Current: priorStatus, Attempt: "replace salary"}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM payments WHERE salary_id IN
			(SELECT id FROM salaries WHERE contract_id = ? AND year = ? AND month = ?)
	`, sal.ContractID, sal.Year, int(sal.Month))
	if err != nil {
		return fmt.Errorf("failed to clear prior payment: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM salaries WHERE contract_id = ? AND year = ? AND month = ?
	`, sal.ContractID, sal.Year, int(sal.Month))
	if err != nil {
		return fmt.Errorf("failed to clear prior salary: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO salaries
		(id, contract_id, year, month, total_hours, base_pay, overtime_pay, night_pay,
		 holiday_pay, gross_pay, national_pension, health_insurance, long_term_care,
		 employment_insurance, income_tax, local_income_tax, total_deduction, net_pay,
		 due_date, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sal.ID, sal.ContractID, sal.Year, int(sal.Month),
		sal.TotalHours.String(), sal.BasePay.String(), sal.OvertimePay.String(),
		sal.NightPay.String(), sal.HolidayPay.String(), sal.GrossPay.String(),
		sal.NationalPension.String(), sal.HealthInsurance.String(), sal.LongTermCare.String(),
		sal.EmploymentInsurance.String(), sal.IncomeTax.String(), sal.LocalIncomeTax.String(),
		sal.TotalDeduction.String(), sal.NetPay.String(),
		sal.PaymentDueDate.String(), formatTime(sal.ComputedAt))
	if err != nil {
		return fmt.Errorf("failed to insert salary: %w", err)
	}

	p := payment.NewPending(sal.ID, payment.MethodBankTransfer)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, salary_id, method, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.SalaryID, string(p.Method), string(p.Status), formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create settlement record: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetSalary(ctx context.Context, contractID string, year int, month time.Month) (*wage.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, salarySelect+` WHERE contract_id = ? AND year = ? AND month = ?`,
		contractID, year, int(month))
	sal, err := scanSalary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.NotFoundError{Entity: "salary",
			ID: fmt.Sprintf("%s/%d-%02d", contractID, year, int(month))}
	}
	return sal, err
}

func (s *Store) GetSalaryByID(ctx context.Context, id string) (*wage.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, salarySelect+` WHERE id = ?`, id)
	sal, err := scanSalary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.NotFoundError{Entity: "salary", ID: id}
	}
	return sal, err
}

const salarySelect = `
	SELECT id, contract_id, year, month, total_hours, base_pay, overtime_pay, night_pay,
	       holiday_pay, gross_pay, national_pension, health_insurance, long_term_care,
	       employment_insurance, income_tax, local_income_tax, total_deduction, net_pay,
	       due_date, computed_at
	FROM salaries`

func scanSalary(row rowScanner) (*wage.Salary, error) {
	var sal wage.Salary
	var month int
	var dueDate, computedAt string
	raw := make([]string, 14)
	dests := []any{&sal.ID, &sal.ContractID, &sal.Year, &month}
	for i := range raw {
		dests = append(dests, &raw[i])
	}
	dests = append(dests, &dueDate, &computedAt)

	if err := row.Scan(dests...); err != nil {
		return nil, err
	}

	sal.Month = time.Month(month)

	// Column order matches salarySelect.
	fields := []*labor.Money{
		&sal.TotalHours, &sal.BasePay, &sal.OvertimePay, &sal.NightPay,
		&sal.HolidayPay, &sal.GrossPay, &sal.NationalPension, &sal.HealthInsurance,
		&sal.LongTermCare, &sal.EmploymentInsurance, &sal.IncomeTax,
		&sal.LocalIncomeTax, &sal.TotalDeduction, &sal.NetPay,
	}
	for i, dst := range fields {
		m, err := labor.MoneyFromString(raw[i])
		if err != nil {
			return nil, fmt.Errorf("corrupt money value in salary %s: %w", sal.ID, err)
		}
		*dst = m
	}

	var err error
	sal.PaymentDueDate, err = labor.ParseDate(dueDate)
	if err != nil {
		return nil, err
	}
	sal.ComputedAt = parseTime(computedAt)
	return &sal, nil
}

// =============================================================================
// PAYMENTS (payment.Store)
// =============================================================================

func (s *Store) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, paymentSelect+` WHERE id = ?`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.NotFoundError{Entity: "payment", ID: id}
	}
	return p, err
}

func (s *Store) GetPaymentForSalary(ctx context.Context, salaryID string) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, paymentSelect+` WHERE salary_id = ?`, salaryID)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.NotFoundError{Entity: "payment", ID: "salary:" + salaryID}
	}
	return p, err
}

// MarkPaymentCompleted transitions PENDING -> COMPLETED. The status guard
// in the WHERE clause makes terminality atomic: an already-terminal
// record matches no rows and the transition is refused.
func (s *Store) MarkPaymentCompleted(ctx context.Context, id, transactionRef string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE payments
		SET status = 'COMPLETED', completed_at = ?, transaction_ref = ?
		WHERE id = ? AND status = 'PENDING'
	`, formatTime(at), transactionRef, id)
	if err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}
	return s.checkPaymentTransition(ctx, res, id, "complete")
}

func (s *Store) MarkPaymentFailed(ctx context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE payments
		SET status = 'FAILED', failure_reason = ?
		WHERE id = ? AND status = 'PENDING'
	`, reason, id)
	if err != nil {
		return fmt.Errorf("failed to fail payment: %w", err)
	}
	return s.checkPaymentTransition(ctx, res, id, "fail")
}

// checkPaymentTransition distinguishes "no such payment" from "payment
// already terminal" when a guarded UPDATE touched zero rows.
func (s *Store) checkPaymentTransition(ctx context.Context, res sql.Result, id, attempt string) error {
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM payments WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return &labor.NotFoundError{Entity: "payment", ID: id}
	}
	if err != nil {
		return err
	}
	return &labor.InvalidStateError{Entity: "payment", ID: id, Current: status, Attempt: attempt}
}

func (s *Store) ListOverduePending(ctx context.Context, asOf labor.Date) ([]payment.OverduePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.salary_id, p.method, p.status, p.completed_at, p.transaction_ref,
		       p.failure_reason, p.created_at, s.due_date
		FROM payments p
		JOIN salaries s ON p.salary_id = s.id
		WHERE p.status = 'PENDING' AND s.due_date < ?
		ORDER BY s.due_date ASC
	`, asOf.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue payments: %w", err)
	}
	defer rows.Close()

	var overdue []payment.OverduePayment
	for rows.Next() {
		var p payment.Payment
		var method, status, createdAt, dueDate string
		var completedAt, transactionRef, failureReason sql.NullString
		err := rows.Scan(&p.ID, &p.SalaryID, &method, &status, &completedAt,
			&transactionRef, &failureReason, &createdAt, &dueDate)
		if err != nil {
			return nil, err
		}
		p.Method = payment.Method(method)
		p.Status = payment.Status(status)
		p.TransactionRef = transactionRef.String
		p.FailureReason = failureReason.String
		p.CreatedAt = parseTime(createdAt)

		due, err := labor.ParseDate(dueDate)
		if err != nil {
			return nil, err
		}
		overdue = append(overdue, payment.OverduePayment{Payment: p, DueDate: due})
	}
	return overdue, rows.Err()
}

const paymentSelect = `
	SELECT id, salary_id, method, status, completed_at, transaction_ref, failure_reason, created_at
	FROM payments`

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var p payment.Payment
	var method, status, createdAt string
	var completedAt, transactionRef, failureReason sql.NullString

	err := row.Scan(&p.ID, &p.SalaryID, &method, &status, &completedAt,
		&transactionRef, &failureReason, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Method = payment.Method(method)
	p.Status = payment.Status(status)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		p.CompletedAt = &t
	}
	p.TransactionRef = transactionRef.String
	p.FailureReason = failureReason.String
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// =============================================================================
// HOLIDAYS (calendar.Store)
// =============================================================================

func (s *Store) IsHoliday(ctx context.Context, date labor.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM holidays WHERE date = ?`, date.String()).Scan(&count)
	return count > 0, err
}

func (s *Store) ListHolidaysYear(ctx context.Context, year int) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryHolidays(ctx,
		labor.NewDate(year, time.January, 1), labor.NewDate(year, time.December, 31))
}

func (s *Store) ListHolidaysMonth(ctx context.Context, year int, month time.Month) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryHolidays(ctx, labor.FirstOfMonth(year, month), labor.LastOfMonth(year, month))
}

// ReplaceHolidayYear swaps the year's row set: delete then bulk insert
// in one transaction. The caller hands over a fully-validated payload,
// so a commit here can never leave partial data behind.
func (s *Store) ReplaceHolidayYear(ctx context.Context, year int, holidays []calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM holidays WHERE date >= ? AND date <= ?`,
		labor.NewDate(year, time.January, 1).String(),
		labor.NewDate(year, time.December, 31).String())
	if err != nil {
		return fmt.Errorf("failed to clear holiday year: %w", err)
	}

	for _, h := range holidays {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO holidays (id, date, name, type, remarks, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, h.ID, h.Date.String(), h.Name, h.Type, h.Remarks, formatTime(h.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert holiday %s: %w", h.Date, err)
		}
	}

	return tx.Commit()
}

func (s *Store) queryHolidays(ctx context.Context, from, to labor.Date) ([]calendar.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, name, type, remarks, created_at FROM holidays
		WHERE date >= ? AND date <= ? ORDER BY date ASC
	`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		var date, createdAt string
		var holidayType, remarks sql.NullString
		if err := rows.Scan(&h.ID, &date, &h.Name, &holidayType, &remarks, &createdAt); err != nil {
			return nil, err
		}
		h.Date, err = labor.ParseDate(date)
		if err != nil {
			return nil, err
		}
		h.Type = holidayType.String
		h.Remarks = remarks.String
		h.CreatedAt = parseTime(createdAt)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// AUTH TOKENS
// =============================================================================

// InsertAuthToken records a session token. Identity lives outside the
// engine; only enough is kept here to purge stale tokens on schedule.
func (s *Store) InsertAuthToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_tokens (id, user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, labor.NewID(), userID, token, formatTime(expiresAt), formatTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to insert auth token: %w", err)
	}
	return nil
}

// PurgeExpiredTokens deletes every token past its expiry, returning the
// count for the scheduler's log line.
func (s *Store) PurgeExpiredTokens(ctx context.Context, asOf time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE expires_at < ?`, formatTime(asOf))
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// RUN RECORDS
// =============================================================================

func (s *Store) SaveGenerationRun(ctx context.Context, run shift.GenerationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_runs
		(id, target_year, target_month, contracts, created, skipped, failed, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.TargetYear, int(run.TargetMonth), run.Contracts, run.Created,
		run.Skipped, run.Failed, formatTime(run.StartedAt), formatTime(run.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to save generation run: %w", err)
	}
	return nil
}

func (s *Store) SaveSweepRun(ctx context.Context, run payment.SweepRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sweep_runs
		(id, as_of, eligible, failed, errored, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.AsOf.String(), run.Eligible, run.Failed, run.Errored,
		formatTime(run.StartedAt), formatTime(run.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to save sweep run: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullDate(d *labor.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
