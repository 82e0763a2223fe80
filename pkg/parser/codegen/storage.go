package codegen

import "fmt"

type Role int

// Storage roles a backend has to provide
const (
	RoleBase    Role = iota // address of cell 0
	RoleCursor              // physical index of logical slot 0
	RoleDest                // resolved destination cell
	RoleSource              // resolved source cell
	RoleValue               // loaded operand / arithmetic accumulator
	RoleScratch             // clobbered while resolving
)

func (r Role) String() string {
	switch r {
	case RoleBase:
		return "base"
	case RoleCursor:
		return "cursor"
	case RoleDest:
		return "dest"
	case RoleSource:
		return "source"
	case RoleValue:
		return "value"
	case RoleScratch:
		return "scratch"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Storage binds a role to a backend-specific location name
type Storage struct {
	Role Role
	Name string
}

// StorageTable is an ordered set of storage descriptors
type StorageTable []Storage

// Lookup returns the location bound to role. Backends define complete tables, so a
// missing role is a programming error.
func (t StorageTable) Lookup(role Role) string {
	for _, s := range t {
		if s.Role == role {
			return s.Name
		}
	}

	panic(fmt.Sprintf("codegen: no storage bound to %s", role))
}
