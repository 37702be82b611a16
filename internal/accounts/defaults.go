package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/priku/tilitin/internal/model"
)

// DefaultChart returns the default chart of accounts and its headings for a
// business form.
func DefaultChart(form string) ([]model.Account, []model.COAHeading) {
	switch form {
	case "sole_trader":
		return soleTraderChart()
	default:
		return soleTraderChart()
	}
}

func soleTraderChart() ([]model.Account, []model.COAHeading) {
	vat := decimal.RequireFromString("25.5")
	accounts := []model.Account{
		{Number: "1700", Name: "Trade receivables", Type: model.AccountTypeAsset},
		{Number: "1763", Name: "VAT receivable", Type: model.AccountTypeAsset},
		{Number: "1910", Name: "Bank", Type: model.AccountTypeAsset},
		{Number: "2000", Name: "Owner's capital", Type: model.AccountTypeEquity},
		{Number: "2250", Name: "Profit from previous periods", Type: model.AccountTypePriorProfit},
		{Number: "2370", Name: "Profit for the period", Type: model.AccountTypeCurrentProfit},
		{Number: "2871", Name: "Trade payables", Type: model.AccountTypeLiability},
		{Number: "2939", Name: "VAT payable", Type: model.AccountTypeLiability},
		{Number: "3000", Name: "Sales", Type: model.AccountTypeRevenue, VatCode: 4, VatRate: vat},
		{Number: "4000", Name: "Purchases", Type: model.AccountTypeExpense, VatCode: 5, VatRate: vat},
		{Number: "6800", Name: "Office supplies", Type: model.AccountTypeExpense, VatCode: 5, VatRate: vat},
		{Number: "7680", Name: "Bank charges", Type: model.AccountTypeExpense},
	}
	headings := []model.COAHeading{
		{Number: "1", Text: "ASSETS", Level: 0},
		{Number: "17", Text: "Receivables", Level: 1},
		{Number: "19", Text: "Cash and bank", Level: 1},
		{Number: "2", Text: "EQUITY AND LIABILITIES", Level: 0},
		{Number: "3", Text: "REVENUE", Level: 0},
		{Number: "4", Text: "EXPENSES", Level: 0},
	}
	return accounts, headings
}
