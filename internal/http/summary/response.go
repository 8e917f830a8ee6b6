package summary

import (
	"github.com/MrJamesThe3rd/pocket/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type Response struct {
	Income       int64                  `json:"income"`
	Expenses     int64                  `json:"expenses"`
	Balance      int64                  `json:"balance"`
	Accounts     []accountBalance       `json:"accounts"`
	Breakdown    []categoryTotal        `json:"breakdown"`
	Transactions []transaction.Response `json:"transactions"`
}

type accountBalance struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	InitialBalance int64  `json:"initial_balance"`
	Balance        int64  `json:"balance"`
}

type categoryTotal struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Amount int64  `json:"amount"`
}

func ToResponse(s ledger.Summary) Response {
	resp := Response{
		Income:       s.Income,
		Expenses:     s.Expenses,
		Balance:      s.Balance,
		Accounts:     make([]accountBalance, 0, len(s.Accounts)),
		Breakdown:    make([]categoryTotal, 0, len(s.Breakdown)),
		Transactions: transaction.ToResponseList(s.Transactions),
	}

	for _, a := range s.Accounts {
		resp.Accounts = append(resp.Accounts, accountBalance{
			ID:             a.Account.ID,
			Name:           a.Account.Name,
			InitialBalance: a.Account.InitialBalance,
			Balance:        a.Balance,
		})
	}

	for _, c := range s.Breakdown {
		resp.Breakdown = append(resp.Breakdown, categoryTotal{
			ID:     c.Category.ID,
			Name:   c.Category.Name,
			Color:  c.Category.Color,
			Amount: c.Amount,
		})
	}

	return resp
}
