package statement

import (
	"github.com/FACorreiaa/statement-parser/pkg/money"
)

// Summary aggregates a parsed document by direction. Totals are in roubles.
type Summary struct {
	Income       *money.Money `json:"income"`
	Expense      *money.Money `json:"expense"`
	Net          *money.Money `json:"net"`
	IncomeCount  int          `json:"income_count"`
	ExpenseCount int          `json:"expense_count"`
	UnknownCount int          `json:"unknown_count"`
}

// Summarize totals transactions per direction. Unknown-direction amounts are
// counted but left out of every total.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		Income:  money.Zero(money.RUB),
		Expense: money.Zero(money.RUB),
	}

	for _, tx := range txs {
		amount := money.NewFromDecimal(tx.Amount, money.RUB)
		switch tx.Direction {
		case DirectionIncome:
			s.Income = s.Income.MustAdd(amount)
			s.IncomeCount++
		case DirectionExpense:
			s.Expense = s.Expense.MustAdd(amount)
			s.ExpenseCount++
		default:
			s.UnknownCount++
		}
	}

	// Both sides are RUB, so the subtraction cannot fail.
	s.Net, _ = s.Income.Sub(s.Expense)
	return s
}
