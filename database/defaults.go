package database

import "time"

// DefaultConfig is the fallback configuration used when the stored config
// document is missing or unreadable.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		LogoURL:     "https://via.placeholder.com/150x50?text=PWork",
		CompanyName: "PWork Enterprise",
		Theme: Theme{
			SidebarColor:             "#ffffff",
			SidebarTextColor:         "#4b5563",
			PrimaryColor:             "#4f46e5",
			SecondaryColor:           "#ec4899",
			LoginBackgroundType:      "COLOR",
			LoginBackgroundContent:   "#0f172a",
			LoginCardBackgroundColor: "#ffffff",
		},
		SMTPConfig: SMTPConfig{
			SenderName:  "PWork Team",
			SenderEmail: "no-reply@pwork.com",
			Host:        "smtp.pwork.com",
			Port:        "587",
		},
		EmailTemplates: []EmailTemplate{
			{
				ID:      "1",
				Name:    "Welcome",
				Subject: "Welcome to {companyName}!",
				Body:    "Hello {name}, your access has been granted.",
				Trigger: "WELCOME_PASSWORD",
			},
		},
		Notices: []Notice{},
		Roles: []RoleDefinition{
			{
				ID:            RoleAdmin,
				Name:          "Administrator",
				AllowedRoutes: []string{"dashboard", "tickets", "reports", "team", "directories", "branding", "agents", "settings", "brand-manual", "designs"},
				Capabilities:  []string{"manage_users", "manage_config", "delete_records", "view_all", "edit_tickets", "create_tickets", "edit_fields", "manage_members"},
			},
			{
				ID:            RoleManager,
				Name:          "Manager",
				AllowedRoutes: []string{"dashboard", "tickets", "reports", "team", "branding", "brand-manual", "designs"},
				Capabilities:  []string{"view_reports", "manage_team", "edit_tickets", "create_tickets", "edit_fields", "manage_members"},
			},
			{
				ID:            RoleUser,
				Name:          "User",
				AllowedRoutes: []string{"dashboard", "tickets", "team", "brand-manual", "designs"},
				Capabilities:  []string{"create_tickets", "edit_fields"},
			},
		},
		SidebarMenu: []MenuItemConfig{
			{ID: "dashboard", Label: "Dashboard", Path: "/dashboard", IconKey: "LayoutDashboard", Visible: true, Type: MenuInternal},
			{ID: "tickets", Label: "Tickets", Path: "/tickets", IconKey: "Ticket", Visible: true, Type: MenuInternal},
			{ID: "designs", Label: "Designs", Path: "/designs", IconKey: "Palette", Visible: true, Type: MenuInternal, AllowedRoles: []string{RoleAdmin, RoleManager, RoleUser}},
			{ID: "brand-manual", Label: "Brand Manual", Path: "/brand-manual", IconKey: "BookOpen", Visible: true, Type: MenuInternal, AllowedRoles: []string{RoleAdmin, RoleManager, RoleUser}},
			{ID: "reports", Label: "Reports", Path: "/reports", IconKey: "FileText", Visible: true, Type: MenuInternal, AllowedRoles: []string{RoleAdmin, RoleManager}},
			{ID: "settings", Label: "Settings", Path: "/settings", IconKey: "Settings", Visible: true, Type: MenuInternal, AdminOnly: true},
		},
		BrandManual: []BrandBlock{
			{ID: "b1", Type: "HEADER", Content: BrandBlockContent{Text: "Our Visual Identity"}},
			{ID: "b2", Type: "PARAGRAPH", Content: BrandBlockContent{Text: "This manual is the guide for applying our brand correctly across every communication channel. Visual consistency is what makes the brand recognizable."}},
			{ID: "b3", Type: "HEADER", Content: BrandBlockContent{Text: "Primary Colors"}},
			{ID: "b4", Type: "COLOR_PALETTE", Content: BrandBlockContent{
				Colors: []BrandColor{
					{Hex: "#4f46e5", Name: "Indigo Primary", Usage: "Buttons, links, highlights"},
					{Hex: "#0f172a", Name: "Slate Dark", Usage: "Backgrounds, primary text"},
					{Hex: "#64748b", Name: "Slate Grey", Usage: "Borders, secondary text"},
				},
			}},
			{ID: "b5", Type: "HEADER", Content: BrandBlockContent{Text: "Typography"}},
			{ID: "b6", Type: "TYPOGRAPHY", Content: BrandBlockContent{Text: "Inter", SubText: "Sans-serif family used for UI elements."}},
		},
	}
}

// SeedUsers are the demo accounts created on first run. Passwords are stored
// plaintext on purpose: the login path falls back to a plain comparison when
// the stored value is not a bcrypt hash (demo mode).
func SeedUsers() []User {
	today := time.Now().Format("2006-01-02")
	return []User{
		{
			ID:          "1",
			Username:    "demoadmin",
			Password:    "demo",
			Name:        "Admin User",
			Email:       "admin@pwork.com",
			Role:        RoleAdmin,
			Avatar:      "https://ui-avatars.com/api/?name=Admin+User&background=0D8ABC&color=fff",
			MemberSince: today,
			JobTitle:    "Administrator",
			Location:    "Headquarters",
			Bio:         "System Administrator",
			Permissions: []string{},
		},
		{
			ID:          "2",
			Username:    "demouser",
			Password:    "demo",
			Name:        "Demo User",
			Email:       "user@pwork.com",
			Role:        RoleUser,
			Avatar:      "https://ui-avatars.com/api/?name=Demo+User&background=random",
			MemberSince: today,
			JobTitle:    "Team Member",
			Location:    "Remote",
			Bio:         "Standard system user",
			Permissions: []string{},
		},
	}
}

// SeedProject is the sample board created on first run.
func SeedProject() Project {
	return Project{
		ID:          "p1",
		Title:       "My First Project",
		Description: "Start by adding tasks",
		Columns: []BoardColumn{
			{
				ID: "c1", Title: "Status", Type: ColumnStatus, Width: "150px",
				Options: []ColumnOption{
					{ID: "opt1", Label: "Done", Color: "#4ade80"},
					{ID: "opt2", Label: "In Progress", Color: "#fbbf24"},
					{ID: "opt3", Label: "Stuck", Color: "#f87171"},
				},
			},
			{ID: "c2", Title: "Date", Type: ColumnDate, Width: "130px"},
		},
		Groups:  []BoardGroup{{ID: "g1", Title: "Initial Group", Color: "#3b82f6"}},
		Items:   []Ticket{},
		Members: []string{"1", "2"},
	}
}

// NewProjectScaffold builds the default structure for a freshly created
// project: a status/person/date column set and one starting group.
func NewProjectScaffold(title string) Project {
	return Project{
		Title:       title,
		Description: "New project",
		Columns: []BoardColumn{
			{
				ID: "c1", Title: "Status", Type: ColumnStatus, Width: "150px",
				Options: []ColumnOption{
					{ID: "1", Label: "To Do", Color: "#9ca3af"},
					{ID: "2", Label: "In Progress", Color: "#fbbf24"},
					{ID: "3", Label: "Done", Color: "#4ade80"},
				},
			},
			{ID: "c2", Title: "Owner", Type: ColumnPerson, Width: "120px"},
			{ID: "c3", Title: "Due", Type: ColumnDate, Width: "130px"},
		},
		Groups:      []BoardGroup{{ID: "g1", Title: "Initial Group", Color: "#3b82f6"}},
		Items:       []Ticket{},
		Members:     []string{},
		Automations: []AutomationRule{},
	}
}

// GroupColors is the palette new groups draw a color from.
var GroupColors = []string{
	"#ef4444", "#f97316", "#f59e0b", "#84cc16", "#10b981",
	"#06b6d4", "#3b82f6", "#8b5cf6", "#d946ef", "#f43f5e",
}
