package layout

// NavLink is an entry of the top navigation.
type NavLink struct {
	Label   string
	Path    string
	Section string
}

var (
	publicLinks = []NavLink{
		{Label: "Search", Path: "/search", Section: "search"},
		{Label: "Additives", Path: "/additives", Section: "additives"},
	}
	memberLinks = []NavLink{
		{Label: "Contribute", Path: "/contribute", Section: "contribute"},
		{Label: "Profile", Path: "/profile", Section: "profile"},
	}
	adminLinks = []NavLink{
		{Label: "Contributions", Path: "/admin/contributions", Section: "admin-contributions"},
		{Label: "Users", Path: "/admin/users", Section: "admin-users"},
		{Label: "Products", Path: "/admin/products", Section: "admin-products"},
	}
)

// Links returns the navigation visible to a visitor.
func Links(authenticated, admin bool) []NavLink {
	links := append([]NavLink(nil), publicLinks...)
	if authenticated {
		links = append(links, memberLinks...)
	}
	if admin {
		links = append(links, adminLinks...)
	}
	return links
}

func linkState(current, section string) string {
	if current == section {
		return "active"
	}
	return "inactive"
}
