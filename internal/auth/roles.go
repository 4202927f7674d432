package auth

// Role enumerates caller privilege levels.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// rank orders roles so a higher role satisfies a lower requirement.
var rank = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// Satisfies reports whether the role meets the required level.
func (r Role) Satisfies(required Role) bool {
	return rank[r] >= rank[required]
}
