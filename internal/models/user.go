package models

// Vai trò trong hệ thống.
const (
	RoleSuperAdmin = "superadmin"
	RoleManager    = "manager"
	RoleEmployee   = "employee"
)

// User struct matches the document in MongoDB
type User struct {
	Email      string `bson:"email"`
	Name       string `bson:"name"`
	Password   string `bson:"password"`
	Role       string `bson:"role"`
	OfficeID   string `bson:"officeID"`
	EmployeeID string `bson:"employeeID,omitempty"`
	Status     string `bson:"status"`
}
