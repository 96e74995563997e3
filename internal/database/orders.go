package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pizzapap/internal/logger"
	"pizzapap/internal/models"
)

// querier is the part of pgx shared by the pool and a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ledger is a querier that can also run a function in one transaction
type ledger interface {
	querier
	inTx(ctx context.Context, fn func(q querier) error) error
}

type poolLedger struct {
	*pgxpool.Pool
}

func (l poolLedger) inTx(ctx context.Context, fn func(q querier) error) error {
	return pgx.BeginFunc(ctx, l.Pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

// OrderStore keeps orders and account balances in PostgreSQL. It stands in
// for the on-chain order contract: placing an order moves the price from the
// customer to the store account.
type OrderStore struct {
	conn         ledger
	logger       *logger.Logger
	storeAccount models.AccountID
	signupCredit int64
}

// NewOrderStore creates an order store paying orders to storeAccount.
// Accounts seen for the first time receive signupCredit tokens.
func NewOrderStore(db *DB, storeAccount models.AccountID, signupCredit int64) *OrderStore {
	return newOrderStore(poolLedger{db.Pool}, db.logger, storeAccount, signupCredit)
}

func newOrderStore(conn ledger, log *logger.Logger, storeAccount models.AccountID, signupCredit int64) *OrderStore {
	return &OrderStore{
		conn:         conn,
		logger:       log,
		storeAccount: storeAccount,
		signupCredit: signupCredit,
	}
}

// Submit charges account for the snapshot and stores the order
func (s *OrderStore) Submit(ctx context.Context, account models.AccountID, snapshot models.OrderSnapshot) (models.OrderID, error) {
	price := models.ToMinorUnits(snapshot.Total)
	orderID := models.NewOrderID()

	err := s.conn.inTx(ctx, func(tx querier) error {
		var balanceText string
		err := tx.QueryRow(ctx, LockAccountBalanceSQL, account.String()).Scan(&balanceText)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", models.ErrAccountNotFound, account)
		}
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		balance, err := models.ParseMinorUnits(balanceText)
		if err != nil {
			return err
		}
		if balance.LessThan(price) {
			return fmt.Errorf("%w: have %s, need %s", models.ErrInsufficientFunds,
				models.FormatTokens(balance), models.FormatTokens(price))
		}

		if _, err := tx.Exec(ctx, DebitAccountSQL, price.String(), account.String()); err != nil {
			return fmt.Errorf("debit account: %w", err)
		}
		if _, err := tx.Exec(ctx, CreditAccountSQL, s.storeAccount.String(), price.String()); err != nil {
			return fmt.Errorf("credit store account: %w", err)
		}

		_, err = tx.Exec(ctx, InsertOrderSQL,
			orderID.String(),
			account.String(),
			snapshot.Flavor.String(),
			snapshot.Size.String(),
			snapshot.Crust.String(),
			snapshot.Toppings,
			snapshot.Name,
			snapshot.Location,
			snapshot.PhoneNumber,
			price.String(),
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug("order_stored", fmt.Sprintf("Stored order %s", orderID), "", map[string]interface{}{
		"order_id":   orderID.String(),
		"account_id": account.String(),
		"price":      price.String(),
	})

	return orderID, nil
}

// ListOrders returns the orders of account, oldest first
func (s *OrderStore) ListOrders(ctx context.Context, account models.AccountID) ([]models.OrderRecord, error) {
	rows, err := s.conn.Query(ctx, ListOrdersByAccountSQL, account.String())
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderRecord
	for rows.Next() {
		var (
			record    models.OrderRecord
			id        string
			totalText string
		)
		err := rows.Scan(
			&id,
			&record.Flavor,
			&record.Size,
			&record.Crust,
			&record.Toppings,
			&record.Name,
			&record.Location,
			&record.PhoneNumber,
			&totalText,
			&record.Delivered,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		total, err := models.ParseMinorUnits(totalText)
		if err != nil {
			return nil, err
		}
		record.ID = models.OrderID(id)
		record.Total = models.FormatTokens(total)

		orders = append(orders, record)
	}

	return orders, rows.Err()
}

// ConfirmDelivery marks an order of account as delivered
func (s *OrderStore) ConfirmDelivery(ctx context.Context, account models.AccountID, orderID models.OrderID) error {
	tag, err := s.conn.Exec(ctx, ConfirmDeliverySQL, orderID.String(), account.String())
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", models.ErrOrderNotFound, orderID)
	}
	return nil
}

// FetchBalance returns the balance of account in tokens
func (s *OrderStore) FetchBalance(ctx context.Context, account models.AccountID) (string, error) {
	var balanceText string
	err := s.conn.QueryRow(ctx, GetAccountBalanceSQL, account.String()).Scan(&balanceText)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", models.ErrAccountNotFound, account)
	}
	if err != nil {
		return "", fmt.Errorf("query balance: %w", err)
	}

	balance, err := models.ParseMinorUnits(balanceText)
	if err != nil {
		return "", err
	}
	return models.FormatTokens(balance), nil
}

// EnsureAccount registers account with the signup credit if it is new
func (s *OrderStore) EnsureAccount(ctx context.Context, account models.AccountID) error {
	credit := models.ToMinorUnits(s.signupCredit)
	if _, err := s.conn.Exec(ctx, EnsureAccountSQL, account.String(), credit.String()); err != nil {
		return fmt.Errorf("register account: %w", err)
	}
	return nil
}
