package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/vidsynth/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) Provider() string        { return "openai" }
func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

func fixedNow(svc *Service) {
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC) }
}

// --- Tests ---

func TestGetReport_Day(t *testing.T) {
	svc := New(&mockBudgetReader{
		dailyLimit: 10000, dailyUsed: 3000, remainingDaily: 7000,
		monthlyLimit: 100000, monthlyUsed: 50000, remainingMonthly: 50000,
	})
	fixedNow(svc)

	r := svc.GetReport(context.Background(), domusage.PeriodDay)

	start := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != start.UnixMilli() || r.PeriodEnd() != start.Add(24*time.Hour).UnixMilli() {
		t.Errorf("period = [%d, %d)", r.PeriodStart(), r.PeriodEnd())
	}
	if r.TokensUsed() != 3000 || r.Budget().TokensLimit() != 10000 || r.Budget().TokensRemaining() != 7000 {
		t.Errorf("unexpected numbers: used=%d budget=%+v", r.TokensUsed(), r.Budget())
	}
	if r.Budget().IsExhausted() {
		t.Error("budget should not be exhausted")
	}
	if r.Provider() != "openai" {
		t.Errorf("provider = %q", r.Provider())
	}
}

func TestGetReport_MonthExhausted(t *testing.T) {
	svc := New(&mockBudgetReader{monthlyLimit: 500, monthlyUsed: 650, remainingMonthly: 0})
	fixedNow(svc)

	r := svc.GetReport(context.Background(), domusage.PeriodMonth)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != start.UnixMilli() || r.PeriodEnd() != end.UnixMilli() {
		t.Errorf("period = [%d, %d)", r.PeriodStart(), r.PeriodEnd())
	}
	if !r.Budget().IsExhausted() {
		t.Error("expected exhausted budget")
	}
	if r.Budget().ResetsAt() != end.UnixMilli() {
		t.Errorf("resets at %d, want %d", r.Budget().ResetsAt(), end.UnixMilli())
	}
}

func TestGetReport_NoTracker(t *testing.T) {
	svc := New(nil)
	r := svc.GetReport(context.Background(), domusage.PeriodDay)

	if r.Budget().TokensLimit() != 0 || r.Budget().TokensRemaining() != -1 {
		t.Errorf("expected unlimited budget, got %+v", r.Budget())
	}
	if r.Budget().IsExhausted() || r.TokensUsed() != 0 {
		t.Error("nothing should be tracked without a budget reader")
	}
}

func TestGetReport_UnknownPeriodFallsBackToDay(t *testing.T) {
	svc := New(&mockBudgetReader{dailyUsed: 1})
	fixedNow(svc)
	r := svc.GetReport(context.Background(), domusage.Period("total"))
	if r.Period() != domusage.PeriodDay || r.TokensUsed() != 1 {
		t.Errorf("expected day report, got %q used=%d", r.Period(), r.TokensUsed())
	}
}
