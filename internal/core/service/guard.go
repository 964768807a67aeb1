package service

import "github.com/erptask/taskdeck/internal/core/domain"

// Decision is the guard's verdict for one navigation.
type Decision int

const (
	// DecisionRender allows the route.
	DecisionRender Decision = iota
	// DecisionRedirectLogin sends an absent session to the login route.
	DecisionRedirectLogin
	// DecisionRedirectHome sends the user to the default landing route:
	// authenticated sessions hitting public-only or role-restricted routes,
	// and any unmatched path.
	DecisionRedirectHome
	// DecisionPending defers while the startup credential probe is still in
	// flight; rendering a redirect here would flicker or deny incorrectly.
	DecisionPending
)

func (d Decision) String() string {
	switch d {
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectHome:
		return "redirect-home"
	default:
		return "pending"
	}
}

// Route declares one navigable view and its access policy.
type Route struct {
	Path string
	// PublicOnly inverts the check: the route is for unauthenticated
	// sessions only (login), and an authenticated session is sent home.
	PublicOnly bool
	// AllowedRoles restricts the route to the listed roles. Empty means any
	// authenticated user.
	AllowedRoles []string
}

// RouteLogin and RouteHome are the two redirect targets the guard can choose.
const (
	RouteLogin = "/login"
	RouteHome  = "/dashboard"
)

// DefaultRoutes is the route surface of the dashboard, mirroring the
// backend's own enforcement: audit requires manager or admin, user
// management requires admin.
func DefaultRoutes() []Route {
	return []Route{
		{Path: RouteLogin, PublicOnly: true},
		{Path: RouteHome},
		{Path: "/tasks"},
		{Path: "/notifications"},
		{Path: "/audit", AllowedRoles: []string{domain.RoleAdmin, domain.RoleManager}},
		{Path: "/users", AllowedRoles: []string{domain.RoleAdmin}},
	}
}

// Guard decides, per navigation, whether a route renders or redirects. The
// decision is pure and synchronous over the session snapshot and the route
// table; it performs no I/O.
type Guard struct {
	routes map[string]Route
}

func NewGuard(routes []Route) *Guard {
	m := make(map[string]Route, len(routes))
	for _, r := range routes {
		m[r.Path] = r
	}
	return &Guard{routes: m}
}

// Decide resolves a navigation to path under the given session snapshot.
func (g *Guard) Decide(snap Snapshot, path string) Decision {
	route, ok := g.routes[path]
	if !ok {
		// Unmatched paths and the root path land on the default route.
		return DecisionRedirectHome
	}

	// The initial credential probe hasn't settled; don't redirect yet.
	if snap.State == StateAuthenticating {
		return DecisionPending
	}

	authenticated := snap.State == StateAuthenticated && snap.User != nil

	if route.PublicOnly {
		if authenticated {
			return DecisionRedirectHome
		}
		return DecisionRender
	}

	if !authenticated {
		return DecisionRedirectLogin
	}
	if !snap.User.HasRole(route.AllowedRoles...) {
		return DecisionRedirectHome
	}
	return DecisionRender
}
