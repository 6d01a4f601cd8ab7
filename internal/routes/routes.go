package routes

import "billed/api/internal/models"

// View names the reachable views. The set is closed: navigation resolves
// against this table and nothing else.
type View string

const (
	ViewLogin     View = "Login"
	ViewBills     View = "Bills"
	ViewNewBill   View = "NewBill"
	ViewDashboard View = "Dashboard"
)

// Vertical-layout nav icons. A view with an icon marks it active when
// shown; every other icon stays inactive.
const (
	IconWindow = "icon-window"
	IconMail   = "icon-mail"
)

// Descriptor is one row of the Navigator's table: where a view lives, which
// icon it lights up, and who may reach it. RequiresSession false means
// public; true with no Roles admits any authenticated role.
type Descriptor struct {
	View            View
	Path            string
	Icon            string
	RequiresSession bool
	Roles           []models.UserRole
}

// Table is the single source of truth for navigation. The required-role
// column is deliberately explicit and complete: NewBill is an Employee
// view, the Dashboard an Admin one, Bills is every role's home.
var Table = []Descriptor{
	{View: ViewLogin, Path: "/login"},
	{View: ViewBills, Path: "/bills", Icon: IconWindow, RequiresSession: true},
	{View: ViewNewBill, Path: "/bills/new", Icon: IconMail, RequiresSession: true, Roles: []models.UserRole{models.UserRoleEmployee}},
	{View: ViewDashboard, Path: "/dashboard", RequiresSession: true, Roles: []models.UserRole{models.UserRoleAdmin}},
}

// LoginPath is where gated navigation redirects when the session is absent
// or unauthorized.
const LoginPath = "/login"

// Lookup returns the descriptor for a view.
func Lookup(view View) (Descriptor, bool) {
	for _, d := range Table {
		if d.View == view {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ActiveIcon returns the nav icon the view marks active, or "" when the
// view carries none.
func ActiveIcon(view View) string {
	d, ok := Lookup(view)
	if !ok {
		return ""
	}
	return d.Icon
}

// Home resolves a session role's landing view; both roles land on Bills.
func Home(models.UserRole) View {
	return ViewBills
}

// Allows reports whether the descriptor admits the given record. An
// anonymous record (empty type) only passes public views.
func (d Descriptor) Allows(record models.UserRecord) bool {
	if !d.RequiresSession {
		return true
	}
	if record.Type == "" {
		return false
	}
	if len(d.Roles) == 0 {
		return true
	}
	for _, role := range d.Roles {
		if record.Type == role {
			return true
		}
	}
	return false
}
