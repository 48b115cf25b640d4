package domain

// Roles. Admins close registers and patch counted cash; sellers ring up
// sales; drivers collect on deliveries.
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleDriver = "driver"
)

type User struct {
	ID         int64  `json:"id" db:"id"`
	Username   string `json:"username" db:"username"`
	Email      string `json:"email" db:"email"`
	Password   string `json:"password,omitempty" db:"password"`
	Role       string `json:"role" db:"role"`
	RegisterID *int64 `json:"register_id,omitempty" db:"register_id"`
	CreatedAt  string `json:"created_at,omitempty" db:"created_at"`
}
