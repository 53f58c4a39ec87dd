/*
Package labor provides the shared kernel for the wage engine.

PURPOSE:
  This package contains the domain-neutral building blocks that every
  other package leans on: fixed-point money, day/time-of-day values,
  actor identity, and the error taxonomy. Contract, shift, wage, and
  payment packages all express their rules in these terms.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A fixed-point currency amount (never float64)
  - Actor: An already-authenticated party (worker or employer)
  - ID helpers: uuid-backed identifier generation

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so accumulated wage math never drifts
  2. Explicitness: No implicit conversions between money and raw decimals
  3. Identity-agnostic: Actors arrive pre-authenticated; this package only
     carries who they are, never how they logged in

USAGE:
  wage := labor.NewMoney(10000)
  pay := wage.MulDecimal(hours)        // hours is a decimal.Decimal
  total := pay.Add(labor.NewMoney(500))

SEE ALSO:
  - time.go: Date and TimeOfDay values
  - errors.go: Error taxonomy shared by all operations
*/
package labor

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point currency amount
// =============================================================================

// Money is a currency amount backed by decimal.Decimal. The engine never
// represents wages or pay components as floats.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money                  { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money                  { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) MulDecimal(d decimal.Decimal) Money { return Money{Value: m.Value.Mul(d)} }
func (m Money) Round2() Money                      { return Money{Value: m.Value.Round(2)} }
func (m Money) IsNegative() bool                   { return m.Value.IsNegative() }
func (m Money) IsZero() bool                       { return m.Value.IsZero() }
func (m Money) Equal(o Money) bool                 { return m.Value.Equal(o.Value) }
func (m Money) String() string                     { return m.Value.String() }

// WithinTolerance reports whether two amounts differ by at most tol.
// Used by invariant checks (net = gross - deductions within 0.01).
func (m Money) WithinTolerance(o Money, tol decimal.Decimal) bool {
	return m.Value.Sub(o.Value).Abs().LessThanOrEqual(tol)
}

// =============================================================================
// ACTORS - Pre-authenticated parties
// =============================================================================

type Role string

const (
	RoleWorker   Role = "worker"
	RoleEmployer Role = "employer"
	RoleSystem   Role = "system"
)

// Actor identifies an already-authenticated party. Authentication itself
// is out of scope; callers hand the engine a resolved identity and the
// engine only asserts ownership (e.g. correction resolver must be the
// counterparty).
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsWorker() bool   { return a.Role == RoleWorker }
func (a Actor) IsEmployer() bool { return a.Role == RoleEmployer }

// Counterparty reports whether b is on the opposite side of the
// employment relationship from a.
func (a Actor) Counterparty(b Actor) bool {
	return (a.Role == RoleWorker && b.Role == RoleEmployer) ||
		(a.Role == RoleEmployer && b.Role == RoleWorker)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// NewID returns a new record identifier.
func NewID() string { return uuid.NewString() }
