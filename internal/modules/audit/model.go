package audit

import "time"

// Action tags written by the catalog and auth services.
const (
	ActionLogin                  = "LOGIN"
	ActionLogout                 = "LOGOUT"
	ActionCreateProduct          = "CREATE_PRODUCT"
	ActionUpdateProduct          = "UPDATE_PRODUCT"
	ActionDeleteProduct          = "DELETE_PRODUCT"
	ActionProductValidationError = "PRODUCT_VALIDATION_ERROR"
)

// Record is one append-only audit log entry.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}
