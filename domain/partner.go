package domain

// Partner is a business partner ("negocio"): a client that may buy on a
// running account.
type Partner struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Address   string `db:"address" json:"address"`
	Phone     string `db:"phone" json:"phone"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// AccountSummary is the running-account position of one partner.
type AccountSummary struct {
	Partner        Partner `json:"partner"`
	OpenOrders     []Order `json:"open_orders"`
	TotalOwed      float64 `json:"total_owed"`
	TotalDelivered float64 `json:"total_delivered"`
}
