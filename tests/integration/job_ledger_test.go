package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/adapter/repository/postgres"
	"github.com/iho/jobledger/internal/usecase"
	"github.com/iho/jobledger/tests/testutil"
)

func TestJobLedgerAssembly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	jobRepo := postgres.NewJobRepository(testDB.Pool)
	idGen := postgres.NewULIDGenerator()
	jobUC := usecase.NewJobUseCase(jobRepo, nil, idGen, nil)

	job, err := jobUC.CreateJob(ctx, usecase.CreateJobInput{
		Code:       "J-100",
		Name:       "Smith Residence",
		ClientName: "Smith",
		QuoteTotal: decimal.NewFromInt(10000),
	})
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}

	if _, err := jobUC.AddChangeOrder(ctx, job.ID, "Extra vents", decimal.NewFromInt(500)); err != nil {
		t.Fatalf("failed to add change order: %v", err)
	}

	if _, err := jobUC.AddPurchase(ctx, job.ID, usecase.AddPurchaseInput{
		SupplierName: "Acme Supply",
		ShippingCost: decimal.NewFromInt(40),
		Lines: []usecase.AddPurchaseLineInput{
			{Description: "Ducting", Unit: "ft", Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(3)},
			{Description: "Fasteners", Quantity: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(15)},
		},
	}); err != nil {
		t.Fatalf("failed to add purchase: %v", err)
	}

	if _, err := jobUC.AddLaborEntry(ctx, job.ID, "install", decimal.NewFromInt(50), decimal.NewFromInt(10), ""); err != nil {
		t.Fatalf("failed to add labor entry: %v", err)
	}

	if _, err := jobUC.AddTravelEntry(ctx, job.ID, usecase.AddTravelEntryInput{
		Miles:       decimal.NewFromInt(100),
		PerDiemDays: decimal.NewFromInt(2),
		Lodging:     decimal.NewFromInt(150),
	}); err != nil {
		t.Fatalf("failed to add travel entry: %v", err)
	}

	feePct := decimal.RequireFromString("2.9")
	if _, err := jobUC.AddPayment(ctx, job.ID, usecase.AddPaymentInput{
		Kind:   "deposit",
		Amount: decimal.NewFromInt(3000),
		FeePct: &feePct,
	}); err != nil {
		t.Fatalf("failed to add payment: %v", err)
	}

	ledger, err := jobUC.GetLedger(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to get ledger: %v", err)
	}

	if !ledger.QuoteTotal.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected quote total 10000, got %s", ledger.QuoteTotal)
	}
	if len(ledger.ChangeOrders) != 1 {
		t.Fatalf("expected 1 change order, got %d", len(ledger.ChangeOrders))
	}
	if !ledger.ChangeOrders[0].Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected change order amount 500, got %s", ledger.ChangeOrders[0].Amount)
	}
	if len(ledger.Purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(ledger.Purchases))
	}
	if len(ledger.Purchases[0].Lines) != 2 {
		t.Fatalf("expected 2 purchase lines, got %d", len(ledger.Purchases[0].Lines))
	}
	if ledger.Purchases[0].Lines[0].Description != "Ducting" {
		t.Errorf("expected lines in entry order, got %q first", ledger.Purchases[0].Lines[0].Description)
	}
	if len(ledger.LaborEntries) != 1 {
		t.Fatalf("expected 1 labor entry, got %d", len(ledger.LaborEntries))
	}
	if len(ledger.TravelEntries) != 1 {
		t.Fatalf("expected 1 travel entry, got %d", len(ledger.TravelEntries))
	}
	if len(ledger.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(ledger.Payments))
	}
	if ledger.Payments[0].FeePct == nil || !ledger.Payments[0].FeePct.Equal(feePct) {
		t.Errorf("expected payment fee pct 2.9, got %v", ledger.Payments[0].FeePct)
	}
}

func TestListJobsFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	jobRepo := postgres.NewJobRepository(testDB.Pool)
	idGen := postgres.NewULIDGenerator()
	jobUC := usecase.NewJobUseCase(jobRepo, nil, idGen, nil)

	for _, in := range []usecase.CreateJobInput{
		{Code: "J-1", Name: "Jones Install", ClientName: "Jones", Salesperson: "pat", QuoteTotal: decimal.NewFromInt(5000)},
		{Code: "J-2", Name: "Rivera Retrofit", ClientName: "Rivera", Salesperson: "sam", QuoteTotal: decimal.NewFromInt(8000)},
	} {
		if _, err := jobUC.CreateJob(ctx, in); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}
	}

	bySales, err := jobUC.ListJobs(ctx, usecase.JobFilter{Salesperson: "pat"})
	if err != nil {
		t.Fatalf("failed to list jobs: %v", err)
	}
	if len(bySales) != 1 || bySales[0].Code != "J-1" {
		t.Fatalf("expected only pat's job, got %d results", len(bySales))
	}

	bySearch, err := jobUC.ListJobs(ctx, usecase.JobFilter{Search: "rivera"})
	if err != nil {
		t.Fatalf("failed to search jobs: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].Code != "J-2" {
		t.Fatalf("expected Rivera job from search, got %d results", len(bySearch))
	}
}
