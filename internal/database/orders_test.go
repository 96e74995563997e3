package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzapap/internal/logger"
	"pizzapap/internal/models"
)

const (
	alice = "alice.testnet"
	bob   = "bob.testnet"
	store = "pizzapap.testnet"
)

type storedOrder struct {
	id, account, flavor, size, crust, toppings, name, location, phone string
	total                                                             decimal.Decimal
	delivered                                                         bool
}

// fakeLedger answers the statements in queries.go from memory. A failing
// transaction restores the state it started from.
type fakeLedger struct {
	accounts  map[string]decimal.Decimal
	orders    []storedOrder
	insertErr error
	txCount   int
}

var _ ledger = (*fakeLedger)(nil)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{accounts: make(map[string]decimal.Decimal)}
}

func (f *fakeLedger) inTx(ctx context.Context, fn func(q querier) error) error {
	f.txCount++

	accounts := make(map[string]decimal.Decimal, len(f.accounts))
	for id, balance := range f.accounts {
		accounts[id] = balance
	}
	orders := append([]storedOrder(nil), f.orders...)

	if err := fn(f); err != nil {
		f.accounts = accounts
		f.orders = orders
		return err
	}
	return nil
}

func (f *fakeLedger) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch sql {
	case EnsureAccountSQL:
		id := args[0].(string)
		if _, ok := f.accounts[id]; ok {
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		}
		f.accounts[id] = decimal.RequireFromString(args[1].(string))
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case DebitAccountSQL:
		id := args[1].(string)
		balance, ok := f.accounts[id]
		if !ok {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		f.accounts[id] = balance.Sub(decimal.RequireFromString(args[0].(string)))
		return pgconn.NewCommandTag("UPDATE 1"), nil

	case CreditAccountSQL:
		id := args[0].(string)
		f.accounts[id] = f.accounts[id].Add(decimal.RequireFromString(args[1].(string)))
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case InsertOrderSQL:
		if f.insertErr != nil {
			return pgconn.CommandTag{}, f.insertErr
		}
		account := args[1].(string)
		if _, ok := f.accounts[account]; !ok {
			return pgconn.CommandTag{}, fmt.Errorf("orders_account_id_fkey: %s", account)
		}
		f.orders = append(f.orders, storedOrder{
			id:       args[0].(string),
			account:  account,
			flavor:   args[2].(string),
			size:     args[3].(string),
			crust:    args[4].(string),
			toppings: args[5].(string),
			name:     args[6].(string),
			location: args[7].(string),
			phone:    args[8].(string),
			total:    decimal.RequireFromString(args[9].(string)),
		})
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case ConfirmDeliverySQL:
		for i := range f.orders {
			if f.orders[i].id == args[0].(string) && f.orders[i].account == args[1].(string) {
				f.orders[i].delivered = true
				return pgconn.NewCommandTag("UPDATE 1"), nil
			}
		}
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}

	return pgconn.CommandTag{}, fmt.Errorf("unexpected statement: %s", sql)
}

func (f *fakeLedger) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if sql != ListOrdersByAccountSQL {
		return nil, fmt.Errorf("unexpected query: %s", sql)
	}

	rows := &fakeRows{}
	for _, o := range f.orders {
		if o.account != args[0].(string) {
			continue
		}
		rows.values = append(rows.values, []any{
			o.id, o.flavor, o.size, o.crust, o.toppings, o.name, o.location, o.phone, o.total.String(), o.delivered,
		})
	}
	return rows, nil
}

func (f *fakeLedger) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if sql != LockAccountBalanceSQL && sql != GetAccountBalanceSQL {
		return fakeRow{err: fmt.Errorf("unexpected query: %s", sql)}
	}

	balance, ok := f.accounts[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: []any{balance.String()}}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanValues(dest, r.values)
}

type fakeRows struct {
	values [][]any
	pos    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag("SELECT " + strconv.Itoa(len(r.values)))
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanValues(dest, r.values[r.pos-1])
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

func scanValues(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d targets for %d columns", len(dest), len(values))
	}
	for i, target := range dest {
		switch d := target.(type) {
		case *string:
			v, ok := values[i].(string)
			if !ok {
				return fmt.Errorf("scan column %d: %T into *string", i, values[i])
			}
			*d = v
		case *bool:
			v, ok := values[i].(bool)
			if !ok {
				return fmt.Errorf("scan column %d: %T into *bool", i, values[i])
			}
			*d = v
		default:
			return fmt.Errorf("scan column %d: unsupported target %T", i, target)
		}
	}
	return nil
}

func newTestStore(f *fakeLedger) *OrderStore {
	return newOrderStore(f, logger.Discard(), models.AccountID(store), 50)
}

func tikkaSnapshot(total int64) models.OrderSnapshot {
	return models.OrderSnapshot{
		Flavor:      models.FlavorChickenTikka,
		Size:        models.SizeLarge,
		Crust:       models.CrustStuffed,
		Toppings:    "Olives, Jalapeños",
		Name:        "Amy",
		Location:    "12 Main St",
		PhoneNumber: "555-0100",
		Total:       total,
	}
}

func TestSubmit_MovesPriceToStoreAccount(t *testing.T) {
	f := newFakeLedger()
	f.accounts[alice] = models.ToMinorUnits(50)
	s := newTestStore(f)

	id, err := s.Submit(context.Background(), alice, tikkaSnapshot(12))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, f.txCount)

	assert.Equal(t, "38.00", models.FormatTokens(f.accounts[alice]))
	assert.Equal(t, "12.00", models.FormatTokens(f.accounts[store]))

	require.Len(t, f.orders, 1)
	o := f.orders[0]
	assert.Equal(t, id.String(), o.id)
	assert.Equal(t, alice, o.account)
	assert.Equal(t, "Chicken Tikka", o.flavor)
	assert.Equal(t, "Large", o.size)
	assert.Equal(t, "Stuffed", o.crust)
	assert.Equal(t, "Olives, Jalapeños", o.toppings)
	assert.Equal(t, "555-0100", o.phone)
	assert.True(t, o.total.Equal(models.ToMinorUnits(12)))
	assert.False(t, o.delivered)
}

func TestSubmit_SpendsExactBalance(t *testing.T) {
	f := newFakeLedger()
	f.accounts[alice] = models.ToMinorUnits(12)
	s := newTestStore(f)

	_, err := s.Submit(context.Background(), alice, tikkaSnapshot(12))
	require.NoError(t, err)
	assert.True(t, f.accounts[alice].IsZero())
}

func TestSubmit_InsufficientFunds(t *testing.T) {
	f := newFakeLedger()
	f.accounts[alice] = models.ToMinorUnits(5)
	s := newTestStore(f)

	_, err := s.Submit(context.Background(), alice, tikkaSnapshot(12))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientFunds))
	assert.Contains(t, err.Error(), "have 5.00, need 12.00")

	assert.Equal(t, "5.00", models.FormatTokens(f.accounts[alice]))
	assert.NotContains(t, f.accounts, store)
	assert.Empty(t, f.orders)
}

func TestSubmit_UnknownAccount(t *testing.T) {
	f := newFakeLedger()
	s := newTestStore(f)

	_, err := s.Submit(context.Background(), bob, tikkaSnapshot(12))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAccountNotFound))
	assert.Empty(t, f.orders)
	assert.Empty(t, f.accounts)
}

func TestSubmit_RollsBackWhenInsertFails(t *testing.T) {
	f := newFakeLedger()
	f.accounts[alice] = models.ToMinorUnits(50)
	f.insertErr = errors.New("connection reset")
	s := newTestStore(f)

	_, err := s.Submit(context.Background(), alice, tikkaSnapshot(12))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert order")

	assert.Equal(t, "50.00", models.FormatTokens(f.accounts[alice]))
	assert.NotContains(t, f.accounts, store)
	assert.Empty(t, f.orders)
}

func TestEnsureAccount_GrantsSignupCredit(t *testing.T) {
	f := newFakeLedger()
	s := newTestStore(f)

	require.NoError(t, s.EnsureAccount(context.Background(), bob))
	assert.Equal(t, "50.00", models.FormatTokens(f.accounts[bob]))
}

func TestEnsureAccount_KeepsExistingBalance(t *testing.T) {
	f := newFakeLedger()
	f.accounts[alice] = models.ToMinorUnits(3)
	s := newTestStore(f)

	require.NoError(t, s.EnsureAccount(context.Background(), alice))
	assert.Equal(t, "3.00", models.FormatTokens(f.accounts[alice]))
}

func TestListOrders_FormatsTotalsInTokens(t *testing.T) {
	f := newFakeLedger()
	f.orders = []storedOrder{
		{id: "o-1", account: alice, flavor: "Sunchoke Pizza", size: "Small", crust: "Crispy", total: models.ToMinorUnits(10)},
		{id: "o-2", account: bob, flavor: "PeriPeri Pizza", total: models.ToMinorUnits(7)},
		{id: "o-3", account: alice, flavor: "Chicken Tikka", total: decimal.RequireFromString("1500000000000000000000000"), delivered: true},
	}
	s := newTestStore(f)

	orders, err := s.ListOrders(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, models.OrderID("o-1"), orders[0].ID)
	assert.Equal(t, "Sunchoke Pizza", orders[0].Flavor)
	assert.Equal(t, "Small", orders[0].Size)
	assert.Equal(t, "10.00", orders[0].Total)
	assert.False(t, orders[0].Delivered)

	assert.Equal(t, models.OrderID("o-3"), orders[1].ID)
	assert.Equal(t, "1.50", orders[1].Total)
	assert.True(t, orders[1].Delivered)
}

func TestListOrders_NoOrders(t *testing.T) {
	s := newTestStore(newFakeLedger())

	orders, err := s.ListOrders(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestConfirmDelivery(t *testing.T) {
	f := newFakeLedger()
	f.orders = []storedOrder{{id: "o-1", account: alice, total: models.ToMinorUnits(10)}}
	s := newTestStore(f)

	err := s.ConfirmDelivery(context.Background(), bob, "o-1")
	assert.True(t, errors.Is(err, models.ErrOrderNotFound))
	assert.False(t, f.orders[0].delivered)

	require.NoError(t, s.ConfirmDelivery(context.Background(), alice, "o-1"))
	assert.True(t, f.orders[0].delivered)
}

func TestFetchBalance(t *testing.T) {
	f := newFakeLedger()
	f.accounts[alice] = decimal.RequireFromString("42250000000000000000000000")
	s := newTestStore(f)

	balance, err := s.FetchBalance(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "42.25", balance)

	_, err = s.FetchBalance(context.Background(), bob)
	assert.True(t, errors.Is(err, models.ErrAccountNotFound))
}
