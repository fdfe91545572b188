package web

import (
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/models"
)

type LoginPage struct {
	Error string
	Email string
}

type DashboardPage struct {
	UserName     string
	CanEditStock bool
	Dashboard    *ledger.Dashboard
}

type BillsPage struct {
	Logs []models.BillingRecord
}

type EditStockPage struct {
	Item *models.StockItem
}

type ErrorPage struct {
	Status  int
	Message string
}
