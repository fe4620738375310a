package rbac

// The helpers in this file decide what the admin panel offers. They are UX
// gating only; every mutation is checked again against the caller's current
// permissions, by the route middleware or by the panel gateway.

// ActionMenuVisible reports whether actor may see the action menu for target.
// The menu is hidden for missing parties, for the actor's own row and for
// targets whose role ranks equal to or above the actor's.
func ActionMenuVisible(actor *Actor, target *Subject, h Hierarchy) bool {
	if actor == nil || target == nil {
		return false
	}
	if target.ID == actor.ID {
		return false
	}
	if h.AtLeast(target.Role, actor.Role) {
		return false
	}
	return actor.Grants.HasAny(PermDeleteUser, PermManageRole)
}

// CanBind reports whether actor holds the permission required to bind role.
func CanBind(actor *Actor, role string) bool {
	if actor == nil || role == "" {
		return false
	}
	if role == OwnerRole {
		return actor.Grants.Has(PermManageAll)
	}
	return actor.Grants.Has(PermManageRole)
}

// OfferableRoles lists the roles actor may bind to target, in display order.
// The owner role comes first and only with PermManageAll; the remaining roles
// follow the order of known and need PermManageRole. The target's current
// role is never offered.
func OfferableRoles(actor *Actor, target *Subject, known []string) []string {
	if actor == nil || target == nil {
		return nil
	}
	var offered []string
	if CanBind(actor, OwnerRole) && target.Role != OwnerRole {
		offered = append(offered, OwnerRole)
	}
	if !actor.Grants.Has(PermManageRole) {
		return offered
	}
	seen := make(map[string]struct{}, len(known))
	for _, name := range known {
		if name == "" || name == OwnerRole || name == target.Role {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		offered = append(offered, name)
	}
	return offered
}

// Menu is the set of actions offered for a single target.
type Menu struct {
	Visible     bool
	BindTargets []string
	CanDelete   bool
}

// Offers reports whether role is among the menu's bind targets.
func (m Menu) Offers(role string) bool {
	for _, r := range m.BindTargets {
		if r == role {
			return true
		}
	}
	return false
}

// BuildMenu combines visibility, bindable roles and delete permission.
// A hidden menu is always the zero Menu.
func BuildMenu(actor *Actor, target *Subject, known []string, h Hierarchy) Menu {
	if !ActionMenuVisible(actor, target, h) {
		return Menu{}
	}
	return Menu{
		Visible:     true,
		BindTargets: OfferableRoles(actor, target, known),
		CanDelete:   actor.Grants.Has(PermDeleteUser),
	}
}
