package models

// RoleAdmin is the role value that grants administrative rights.
const RoleAdmin = "admin"

// Roles a user may pick for their own account.
var AccountRoles = []string{"user", "owner", RoleAdmin}

type User struct {
	UserID       int64  `json:"user_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	IsStaff      bool   `json:"is_staff"`
	IsActive     bool   `json:"is_active,omitempty"`
	ProfilPic    string `json:"profil_pic,omitempty"`
	OwnerID      *int64 `json:"owner_id,omitempty"`
	OwnerContact string `json:"owner_contact,omitempty"`
}

// OwnerLite is an entry of the active owners lookup used by the creation form.
type OwnerLite struct {
	OwnerID   int64  `json:"owner_id"`
	OwnerName string `json:"owner_name"`
	IsStaff   bool   `json:"is_staff"`
}
