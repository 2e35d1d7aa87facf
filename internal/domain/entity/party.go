package entity

// Roles del back-office.
const (
	RoleAdmin     = "admin"
	RoleOwner     = "owner"
	RoleExecutive = "executive"
	RoleRM        = "rm"
	RoleAssociate = "associate"
)

// ValidRole indica si el rol pertenece al back-office.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOwner, RoleExecutive, RoleRM, RoleAssociate:
		return true
	}
	return false
}

// RelationshipManager RM dado de alta por un admin u owner.
type RelationshipManager struct {
	ID    Text `json:"id"`
	Name  Text `json:"name"`
	Email Text `json:"email,omitempty"`
	Phone Text `json:"phone,omitempty"`
}

// Associate asociado POS; RMID enlaza con el RM que lo dio de alta.
type Associate struct {
	ID    Text `json:"id"`
	Name  Text `json:"name"`
	RMID  Text `json:"rmId"`
	Email Text `json:"email,omitempty"`
	Phone Text `json:"phone,omitempty"`
}
