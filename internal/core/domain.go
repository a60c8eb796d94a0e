package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SourceManual    ExpenseSource = "manual"
	SourceRecurrent ExpenseSource = "recurrent"
	SourceEmail     ExpenseSource = "email"

	MovementIncome  SavingMovement = "income"
	MovementOutcome SavingMovement = "outcome"
)

type (
	// ExpenseSource records where an expense row came from: manual API entry,
	// the recurrence materializer, or the email ingestion pipeline.
	ExpenseSource string

	// SavingMovement distinguishes money moved into a saving from money
	// taken out of it. Both directions live in the same table and are summed
	// as stored.
	SavingMovement string

	User struct {
		ID            int64
		Email         string
		Name          string
		Subject       string // opaque identity subject, validated upstream
		IsActive      bool
		StartCycleDay int
		EndCycleDay   int
		CreatedAt     time.Time
	}

	// Cycle is a user's billing period, one calendar month. At most one cycle
	// per user is active at a time. The four Created flags gate the per-kind
	// recurrence materialization passes.
	Cycle struct {
		ID          int64
		UserID      int64
		Description string
		StartDate   time.Time
		EndDate     time.Time
		IsActive    bool

		RecurrentIncomesCreated  bool
		RecurrentExpensesCreated bool
		RecurrentSavingsCreated  bool
		RecurrentBudgetsCreated  bool
	}

	// SavingType groups savings under a user-defined label. Looked up by the
	// normalized description key, created on first use.
	SavingType struct {
		ID          int64
		UserID      int64
		Description string
	}

	// Category is a user-defined label for classifying expenses. Unlike
	// saving types it is managed explicitly through the API, never created
	// implicitly.
	Category struct {
		ID          int64
		UserID      int64
		Description string
	}

	RecurrentIncome struct {
		ID          int64
		UserID      int64
		Description string
		Amount      Money
		Enabled     bool
	}

	RecurrentExpense struct {
		ID          int64
		UserID      int64
		Description string
		Category    string
		Amount      Money
		Enabled     bool
	}

	RecurrentSaving struct {
		ID           int64
		UserID       int64
		SavingTypeID int64
		Amount       Money
		Enabled      bool
	}

	RecurrentBudget struct {
		ID          int64
		UserID      int64
		Description string
		Amount      Money
		Enabled     bool
	}

	Income struct {
		ID                int64
		CycleID           int64
		Description       string
		Amount            Money
		Date              time.Time
		IsRecurrent       bool
		RecurrentSourceID int64 // zero when not materialized
	}

	Expense struct {
		ID                int64
		CycleID           int64
		BudgetID          int64 // zero when unassigned
		Description       string
		Category          string
		Amount            Money
		Date              time.Time
		IsRecurrent       bool
		Source            ExpenseSource
		RecurrentSourceID int64
		ExternalRef       string // ingestion candidate id, unique when set
	}

	Saving struct {
		ID                  int64
		CycleID             int64
		SavingTypeID        int64
		Amount              Money
		Date                time.Time
		IsRecurrent         bool
		MovementType        SavingMovement
		MovementDescription string
		RecurrentSourceID   int64
	}

	Budget struct {
		ID                int64
		CycleID           int64
		Description       string
		Amount            Money
		IsRecurrent       bool
		RecurrentSourceID int64
	}

	// CycleStatus is the flat summary returned by the aggregation query.
	// Every total defaults to zero when the cycle has no matching rows.
	CycleStatus struct {
		TotalRecurrentExpenses Money
		TotalExpenses          Money
		TotalIncomes           Money
		TotalSavings           Money
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("already exists")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyEmail       = errors.New("empty email")
	ErrEmptySubject     = errors.New("empty subject")
)

func (u User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if strings.TrimSpace(u.Subject) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("empty name")
	}
	return nil
}

func (c Category) Validate() error {
	return validateDescription(c.Description)
}

func (i Income) Validate() error {
	if err := validateDescription(i.Description); err != nil {
		return err
	}
	return i.Amount.Validate()
}

func (e Expense) Validate() error {
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	switch e.Source {
	case SourceManual, SourceRecurrent, SourceEmail:
	default:
		return errors.New("invalid expense source")
	}
	return e.Amount.Validate()
}

func (s Saving) Validate() error {
	switch s.MovementType {
	case MovementIncome, MovementOutcome:
	default:
		return errors.New("invalid saving movement")
	}
	return s.Amount.Validate()
}

func (b Budget) Validate() error {
	if err := validateDescription(b.Description); err != nil {
		return err
	}
	return b.Amount.Validate()
}

func validateDescription(desc string) error {
	if len(strings.TrimSpace(desc)) == 0 {
		return ErrEmptyDescription
	}
	if len(desc) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
