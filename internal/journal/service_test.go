package journal

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priku/tilitin/internal/accounts"
	"github.com/priku/tilitin/internal/attachment"
	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
	_ "github.com/priku/tilitin/internal/store/sqlite"
)

type harness struct {
	d      *dispatch.Dispatcher
	svc    *Service
	chart  *accounts.Service
	period model.Period
}

func newHarness(t *testing.T) harness {
	t.Helper()
	log, _ := test.NewNullLogger()
	st, err := store.Open("sqlite:"+filepath.Join(t.TempDir(), "ledger.sqlite"), "", "", store.Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	d := dispatch.New(st, dispatch.Options{Logger: log})
	t.Cleanup(d.Shutdown)

	ctx := context.Background()
	accts, headings := accounts.DefaultChart("")
	require.NoError(t, accounts.Seed(ctx, d, accts, headings))
	chart, err := accounts.Load(ctx, d)
	require.NoError(t, err)

	p := model.Period{StartDate: model.Date(2024, 1, 1), EndDate: model.Date(2024, 12, 31)}
	_, err = dispatch.RunOnStore(d, func(_ context.Context, st store.Store, s store.Session) (struct{}, error) {
		return struct{}{}, st.Periods(s).Save(&p)
	}).Await(ctx)
	require.NoError(t, err)

	return harness{d: d, svc: NewService(d, chart, attachment.NewInspector(log)), chart: chart, period: p}
}

func (h harness) account(t *testing.T, number string) int {
	t.Helper()
	a, ok := h.chart.ByNumber(number)
	require.True(t, ok, number)
	return a.ID
}

func TestAddDouble(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bank, sales := h.account(t, "1910"), h.account(t, "3000")

	doc, err := h.svc.AddDouble(ctx, AddDoubleParams{
		Date:          model.Date(2024, 6, 1),
		Description:   "Invoice 1",
		DebitAccount:  bank,
		CreditAccount: sales,
		Amount:        dec("1000.00"),
		NumberStart:   1,
		NumberEnd:     999,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Number)
	assert.True(t, doc.Date.Equal(model.Date(2024, 6, 1)))

	v, err := h.svc.Document(ctx, h.period.ID, 1)
	require.NoError(t, err)
	require.Len(t, v.Entries, 2)
	debit, credit, err := CheckBalanced(v.Entries)
	require.NoError(t, err)
	assert.True(t, debit.Equal(credit))

	balances, err := h.svc.PeriodBalances(ctx, h.period.ID)
	require.NoError(t, err)
	assert.True(t, balances[bank].Equal(dec("1000")))
	assert.True(t, balances[sales].Equal(dec("-1000")))
}

func TestAddDoubleRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bank, sales := h.account(t, "1910"), h.account(t, "3000")

	_, err := h.svc.AddDouble(ctx, AddDoubleParams{
		Date: model.Date(2024, 6, 1), DebitAccount: bank, CreditAccount: 9999,
		Amount: dec("1"), NumberStart: 1, NumberEnd: 999,
	})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 3, verr.Rule)
	var mverr model.ValidationError
	require.ErrorAs(t, err, &mverr)
	assert.Equal(t, "document", mverr.Entity)
	assert.Contains(t, mverr.Reason, "rule 3")

	_, err = h.svc.AddDouble(ctx, AddDoubleParams{
		Date: model.Date(2030, 1, 1), DebitAccount: bank, CreditAccount: sales,
		Amount: dec("1"), NumberStart: 1, NumberEnd: 999,
	})
	var merr model.ValidationError
	assert.ErrorAs(t, err, &merr, "no period for date")

	_, err = h.svc.AddDouble(ctx, AddDoubleParams{
		Date: model.Date(2024, 6, 1), DebitAccount: bank, CreditAccount: sales,
		Amount: dec("1"), NumberStart: 5, NumberEnd: 5,
	})
	require.NoError(t, err)
	_, err = h.svc.AddDouble(ctx, AddDoubleParams{
		Date: model.Date(2024, 6, 1), DebitAccount: bank, CreditAccount: sales,
		Amount: dec("1"), NumberStart: 5, NumberEnd: 5,
	})
	var rex store.RangeExhaustedError
	assert.ErrorAs(t, err, &rex)
}

func TestConcurrentAddDouble(t *testing.T) {
	h := newHarness(t)
	bank, sales := h.account(t, "1910"), h.account(t, "3000")

	const n = 10
	docs := make([]model.Document, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs[i], errs[i] = h.svc.AddDouble(context.Background(), AddDoubleParams{
				Date: model.Date(2024, 3, 1), DebitAccount: bank, CreditAccount: sales,
				Amount: dec("10"), NumberStart: 1, NumberEnd: 10,
			})
		}()
	}
	wg.Wait()

	seen := map[int]bool{}
	for i := range n {
		require.NoError(t, errs[i])
		assert.False(t, seen[docs[i].Number], "duplicate number %d", docs[i].Number)
		seen[docs[i].Number] = true
	}
	assert.Len(t, seen, n)
}

func TestPostReplacesEntries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bank, sales, fees := h.account(t, "1910"), h.account(t, "3000"), h.account(t, "7680")

	doc, err := h.svc.AddDouble(ctx, AddDoubleParams{
		Date: model.Date(2024, 2, 1), DebitAccount: bank, CreditAccount: sales,
		Amount: dec("100"), NumberStart: 1, NumberEnd: 999,
	})
	require.NoError(t, err)

	entries := []model.Entry{
		{AccountID: bank, Debit: true, Amount: model.Amount("95"), RowNumber: 0},
		{AccountID: fees, Debit: true, Amount: model.Amount("5"), RowNumber: 1},
		{AccountID: sales, Amount: model.Amount("100"), RowNumber: 2},
	}
	require.NoError(t, h.svc.Post(ctx, doc.ID, entries))
	assert.NotZero(t, entries[2].ID)

	v, err := h.svc.Document(ctx, h.period.ID, doc.Number)
	require.NoError(t, err)
	assert.Len(t, v.Entries, 3)

	unbalanced := []model.Entry{{AccountID: bank, Debit: true, Amount: model.Amount("1")}}
	err = h.svc.Post(ctx, doc.ID, unbalanced)
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
	var mverr model.ValidationError
	assert.ErrorAs(t, err, &mverr)
}

func TestFromTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bank, fees := h.account(t, "1910"), h.account(t, "7680")

	_, err := dispatch.RunOnStore(h.d, func(_ context.Context, st store.Store, s store.Session) (struct{}, error) {
		for _, tpl := range []model.EntryTemplate{
			{Number: 1, Name: "Bank fee", AccountID: fees, Debit: true, Amount: model.Amount("4.90"), RowNumber: 0},
			{Number: 1, Name: "Bank fee", AccountID: bank, Amount: model.Amount("4.90"), RowNumber: 1},
		} {
			if err := st.EntryTemplates(s).Save(&tpl); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	}).Await(ctx)
	require.NoError(t, err)

	doc, entries, err := h.svc.FromTemplate(ctx, model.Date(2024, 9, 30), 1, 1, 999)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, doc.ID, entries[0].DocumentID)
	_, _, err = CheckBalanced(entries)
	assert.NoError(t, err)

	_, _, err = h.svc.FromTemplate(ctx, model.Date(2024, 9, 30), 7, 1, 999)
	assert.Error(t, err)
}

func TestAttachAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bank, sales := h.account(t, "1910"), h.account(t, "3000")

	doc, err := h.svc.AddDouble(ctx, AddDoubleParams{
		Date: model.Date(2024, 2, 1), DebitAccount: bank, CreditAccount: sales,
		Amount: dec("100"), NumberStart: 1, NumberEnd: 999,
	})
	require.NoError(t, err)

	_, err = h.svc.Attach(ctx, doc.ID, "notes.txt", []byte("plain text"), "")
	var verr model.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = h.svc.Attach(ctx, doc.ID, "empty.pdf", nil, "")
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, h.svc.DeleteDocument(ctx, doc.ID))
	_, err = h.svc.Document(ctx, h.period.ID, doc.Number)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
