package backend

type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleBranchManager Role = "branch_manager"
)

// User is the profile summary the backend returns on login and from
// /api/auth/me. BranchID is only set for branch managers.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	BranchID int64  `json:"branch_id,omitempty"`
}

type LoginResult struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}

type Branch struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type Product struct {
	ID          int64   `json:"id"`
	BranchID    int64   `json:"branch_id"`
	CategoryID  int64   `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	IsActive    bool    `json:"is_active"`
}

type StaffUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	BranchID int64  `json:"branch_id,omitempty"`
	Password string `json:"password,omitempty"`
}

// PriceTemplate maps product IDs to branch-independent prices so a chain can
// roll the same price list out to several branches at once.
type PriceTemplate struct {
	ID     int64              `json:"id"`
	Name   string             `json:"name"`
	Prices map[string]float64 `json:"prices"`
}

type Integration struct {
	ID       int64  `json:"id"`
	BranchID int64  `json:"branch_id"`
	Provider string `json:"provider"`
	Enabled  bool   `json:"enabled"`
}

type LoyaltyProgram struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	StampTarget int    `json:"stamp_target"`
	Reward      string `json:"reward"`
	IsActive    bool   `json:"is_active"`
}

type LoyaltyCard struct {
	ID            int64  `json:"id"`
	ProgramID     int64  `json:"program_id"`
	CustomerPhone string `json:"customer_phone"`
	Stamps        int    `json:"stamps"`
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Notes     string  `json:"notes,omitempty"`
}

type Order struct {
	ID        int64       `json:"id"`
	BranchID  int64       `json:"branch_id"`
	TableNo   string      `json:"table_no,omitempty"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at,omitempty"`
}

type Feedback struct {
	BranchID int64  `json:"branch_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}
