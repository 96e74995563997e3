package database

// Account queries. Amounts travel as text so NUMERIC precision survives.
const (
	EnsureAccountSQL = `
		INSERT INTO accounts (id, balance)
		VALUES ($1, $2::numeric)
		ON CONFLICT (id) DO NOTHING`

	LockAccountBalanceSQL = `
		SELECT balance::text FROM accounts WHERE id = $1 FOR UPDATE`

	GetAccountBalanceSQL = `
		SELECT balance::text FROM accounts WHERE id = $1`

	DebitAccountSQL = `
		UPDATE accounts SET balance = balance - $1::numeric, updated_at = NOW()
		WHERE id = $2`

	CreditAccountSQL = `
		INSERT INTO accounts (id, balance)
		VALUES ($1, $2::numeric)
		ON CONFLICT (id) DO UPDATE SET
			balance = accounts.balance + EXCLUDED.balance,
			updated_at = NOW()`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (id, account_id, flavor, size, crust, toppings, name, location, phone_number, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric)`

	ListOrdersByAccountSQL = `
		SELECT id::text, flavor, size, crust, toppings, name, location, phone_number, total::text, delivered
		FROM orders
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC`

	ConfirmDeliverySQL = `
		UPDATE orders SET delivered = TRUE, updated_at = NOW()
		WHERE id = $1 AND account_id = $2`
)
