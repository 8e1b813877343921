package models

// Role defines the fixed set of user roles. There is no dynamic
// role/permission storage; capabilities come from RolePermissions.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleViewer     Role = "viewer"
)

// Capability defines an action a role may perform.
type Capability string

const (
	CanView        Capability = "view"
	CanCreate      Capability = "create"
	CanEdit        Capability = "edit"
	CanDelete      Capability = "delete"
	CanManageUsers Capability = "manage_users"
)

// RolePermissions is the static capability table checked by membership.
var RolePermissions = map[Role][]Capability{
	RoleAdmin:      {CanView, CanCreate, CanEdit, CanDelete, CanManageUsers},
	RoleAccountant: {CanView, CanCreate, CanEdit},
	RoleViewer:     {CanView},
}

// Can reports whether the role grants the given capability.
func (r Role) Can(c Capability) bool {
	for _, granted := range RolePermissions[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}

// PaymentMethod defines the accepted payment channels.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "Cash"
	MethodMPesa        PaymentMethod = "M-Pesa"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	MethodCheque       PaymentMethod = "Cheque"
	MethodCard         PaymentMethod = "Card"
)

// PaymentMethods lists all accepted payment methods.
var PaymentMethods = []PaymentMethod{
	MethodCash, MethodMPesa, MethodBankTransfer, MethodCheque, MethodCard,
}

// IsValid reports whether the payment method is accepted.
func (m PaymentMethod) IsValid() bool {
	for _, method := range PaymentMethods {
		if method == m {
			return true
		}
	}
	return false
}

// Term defines the school terms a fee structure can target.
type Term string

const (
	Term1      Term = "Term 1"
	Term2      Term = "Term 2"
	Term3      Term = "Term 3"
	TermAnnual Term = "Annual"
)

// IsValid reports whether the term is one of the known terms.
func (t Term) IsValid() bool {
	switch t {
	case Term1, Term2, Term3, TermAnnual:
		return true
	}
	return false
}
