package domain

// Role is a canonical column role
type Role string

const (
	RoleDate     Role = "date"
	RoleProduct  Role = "product"
	RolePrice    Role = "price"
	RoleQuantity Role = "quantity"
	RoleCategory Role = "category"
	RoleCustomer Role = "customer"
)

// AllRoles lists the canonical schema in presentation order
var AllRoles = []Role{RoleDate, RoleProduct, RolePrice, RoleQuantity, RoleCategory, RoleCustomer}

// Valid reports whether r is a canonical role
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Mandatory reports whether the role must be mapped before normalization
func (r Role) Mandatory() bool {
	return r == RoleDate || r == RoleProduct || r == RolePrice
}

// ColumnMapping assigns raw column labels to canonical roles
type ColumnMapping map[Role]string

// Column returns the raw label mapped to role
func (m ColumnMapping) Column(role Role) (string, bool) {
	label, ok := m[role]
	if !ok || label == "" {
		return "", false
	}
	return label, true
}

// Missing returns the mandatory roles without a column, in schema order
func (m ColumnMapping) Missing() []Role {
	var missing []Role
	for _, role := range AllRoles {
		if !role.Mandatory() {
			continue
		}
		if _, ok := m.Column(role); !ok {
			missing = append(missing, role)
		}
	}
	return missing
}

// Complete reports whether every mandatory role is mapped
func (m ColumnMapping) Complete() bool {
	return len(m.Missing()) == 0
}

// Conflicts returns raw labels claimed by more than one role
func (m ColumnMapping) Conflicts() map[string][]Role {
	byLabel := make(map[string][]Role)
	for _, role := range AllRoles {
		if label, ok := m.Column(role); ok {
			byLabel[label] = append(byLabel[label], role)
		}
	}
	conflicts := make(map[string][]Role)
	for label, roles := range byLabel {
		if len(roles) > 1 {
			conflicts[label] = roles
		}
	}
	return conflicts
}

// Clone returns an independent copy
func (m ColumnMapping) Clone() ColumnMapping {
	cp := make(ColumnMapping, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Roles returns the mapped roles in schema order
func (m ColumnMapping) Roles() []Role {
	roles := make([]Role, 0, len(m))
	for _, role := range AllRoles {
		if _, ok := m.Column(role); ok {
			roles = append(roles, role)
		}
	}
	return roles
}
