package domain

// Register is a cash register ("caja") tracked independently for closing.
type Register struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Location  string `db:"location" json:"location"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// Product is a catalog item sold through the registers.
type Product struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Category  string  `db:"category" json:"category"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Active    bool    `db:"active" json:"active"`
	CreatedAt string  `db:"created_at" json:"created_at"`
}
