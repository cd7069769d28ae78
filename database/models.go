package database

// Built-in role ids. Role is free-form but these three always exist; anything
// else refers to a custom RoleDefinition in AppConfig.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleUser    = "USER"
)

type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Password    string   `json:"password,omitempty"` // bcrypt hash, or plaintext in demo mode
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Avatar      string   `json:"avatar"`
	MemberSince string   `json:"memberSince"`
	JobTitle    string   `json:"jobTitle"`
	Location    string   `json:"location"`
	BirthDate   string   `json:"birthDate"`
	PhoneNumber string   `json:"phoneNumber"`
	Bio         string   `json:"bio"`
	Permissions []string `json:"permissions"`
}

// RoleDefinition is a named bundle of allowed routes and capability flags.
// The ADMIN role id is always treated as all-access regardless of its stored
// definition content.
type RoleDefinition struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	AllowedRoutes []string `json:"allowedRoutes"`
	Capabilities  []string `json:"capabilities"`
}

// Menu item types: in-app routes vs external links.
const (
	MenuInternal = "INTERNAL"
	MenuExternal = "EXTERNAL"
)

type MenuItemConfig struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Path         string   `json:"path"`
	IconKey      string   `json:"iconKey"`
	Visible      bool     `json:"visible"`
	Type         string   `json:"type"` // INTERNAL or EXTERNAL
	AdminOnly    bool     `json:"adminOnly,omitempty"`
	AllowedRoles []string `json:"allowedRoles,omitempty"`
}

type EmailTemplate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Trigger string `json:"trigger"`
}

type SMTPConfig struct {
	SenderName  string `json:"senderName"`
	SenderEmail string `json:"senderEmail"`
	Host        string `json:"host"`
	Port        string `json:"port"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
}

// Notice is a dismissable banner with an optional active-date window and
// optional role/route targeting. Empty target lists mean "everyone".
type Notice struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Active       bool     `json:"active"`
	Type         string   `json:"type"` // GLOBAL or FIRST_ACCESS
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	TargetRoles  []string `json:"targetRoles"`
	TargetRoutes []string `json:"targetRoutes"`
}

// ColumnType is the semantic kind of a board field. It governs the editor on
// the client and the value shape stored in Ticket.Data.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnPerson   ColumnType = "person"
	ColumnStatus   ColumnType = "status"
	ColumnDate     ColumnType = "date"
	ColumnPriority ColumnType = "priority"
	ColumnLink     ColumnType = "link"
	ColumnDropdown ColumnType = "dropdown"
	ColumnNumber   ColumnType = "number"
	ColumnTags     ColumnType = "tags"
)

// ValueShape describes what a column type stores in a ticket's data map.
type ValueShape int

const (
	ShapeText    ValueShape = iota // scalar string
	ShapeNumber                    // numeric, stored as string or float64
	ShapeDate                      // YYYY-MM-DD string
	ShapeLabel                     // scalar option label (status/priority/dropdown)
	ShapeUserIDs                   // user id or list of user ids
	ShapeLabels                    // list of option labels (tags)
)

var columnShapes = map[ColumnType]ValueShape{
	ColumnText:     ShapeText,
	ColumnPerson:   ShapeUserIDs,
	ColumnStatus:   ShapeLabel,
	ColumnDate:     ShapeDate,
	ColumnPriority: ShapeLabel,
	ColumnLink:     ShapeText,
	ColumnDropdown: ShapeLabel,
	ColumnNumber:   ShapeNumber,
	ColumnTags:     ShapeLabels,
}

// Shape returns the expected value shape for a column type. Unknown types
// behave as plain text.
func (t ColumnType) Shape() ValueShape {
	if s, ok := columnShapes[t]; ok {
		return s
	}
	return ShapeText
}

// HasOptions reports whether the column type carries an editable option list.
func (t ColumnType) HasOptions() bool {
	switch t {
	case ColumnStatus, ColumnDropdown, ColumnTags, ColumnPriority:
		return true
	}
	return false
}

type ColumnOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

type BoardColumn struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Type    ColumnType     `json:"type"`
	Width   string         `json:"width,omitempty"`
	Options []ColumnOption `json:"options,omitempty"`
}

type Comment struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type ChecklistItem struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Done       bool   `json:"done"`
	DueDate    string `json:"dueDate,omitempty"`
	AssigneeID string `json:"assigneeId,omitempty"`
}

// Ticket is a unit of work within a project. Data is the dynamic per-column
// payload keyed by column id; the legacy fixed fields (Status, Priority,
// AssigneeID, dates) are kept in sync informally with it.
type Ticket struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	GroupID     string          `json:"groupId"`
	Description string          `json:"description,omitempty"`
	Checklists  []ChecklistItem `json:"checklists,omitempty"`
	Archived    bool            `json:"archived,omitempty"`
	Data        map[string]any  `json:"data"`
	Comments    []Comment       `json:"comments"` // newest first
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	AssigneeID  string          `json:"assigneeId"`
	StartDate   string          `json:"startDate"`
	DueDate     string          `json:"dueDate"`
}

type BoardGroup struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Color     string `json:"color"`
	Collapsed bool   `json:"collapsed,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
}

// Automation action types.
const (
	ActionAssignUser        = "ASSIGN_USER"
	ActionNotifyUser        = "NOTIFY_USER"
	ActionCompleteChecklist = "COMPLETE_CHECKLIST"
	ActionUpdateField       = "UPDATE_FIELD"
)

// AutomationRule pairs a trigger (column id plus optional required value,
// empty value meaning "any") with an action. Rules are owned by and evaluated
// within a single project.
type AutomationRule struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Active          bool   `json:"active"`
	TriggerColumnID string `json:"triggerColumnId"`
	TriggerValue    string `json:"triggerValue"`
	ActionType      string `json:"actionType"`
	ActionTargetID  string `json:"actionTargetId,omitempty"`
	ActionValue     string `json:"actionValue,omitempty"`
}

// Project owns its items directly; columns, groups, items and automations are
// nested arrays rewritten wholesale on every mutation.
type Project struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Archived    bool             `json:"archived,omitempty"`
	Columns     []BoardColumn    `json:"columns"`
	Groups      []BoardGroup     `json:"groups"`
	Items       []Ticket         `json:"items"`
	Members     []string         `json:"members"`
	Automations []AutomationRule `json:"automations,omitempty"`
}

// StatusColumn returns the project's first status-typed column, or nil.
func (p *Project) StatusColumn() *BoardColumn {
	for i := range p.Columns {
		if p.Columns[i].Type == ColumnStatus {
			return &p.Columns[i]
		}
	}
	return nil
}

// FindItem returns the index of the item with the given id, or -1.
func (p *Project) FindItem(itemID string) int {
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

type BrandColor struct {
	Hex   string `json:"hex"`
	Name  string `json:"name"`
	Usage string `json:"usage,omitempty"`
}

type BrandLink struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type BrandBlockContent struct {
	Text     string       `json:"text,omitempty"`
	SubText  string       `json:"subText,omitempty"`
	ImageURL string       `json:"imageUrl,omitempty"`
	Colors   []BrandColor `json:"colors,omitempty"`
	Links    []BrandLink  `json:"links,omitempty"`
	FileName string       `json:"fileName,omitempty"`
	FileSize string       `json:"fileSize,omitempty"`
	Style    string       `json:"style,omitempty"`
}

// BrandBlock is one block of the visual brand manual. Type is one of HEADER,
// PARAGRAPH, IMAGE, COLOR_PALETTE, TYPOGRAPHY, DOWNLOAD, INFO_BOX, LINK_GROUP
// or DIVIDER; which content fields apply depends on the type.
type BrandBlock struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Content BrandBlockContent `json:"content"`
}

type Theme struct {
	SidebarColor             string `json:"sidebarColor"`
	SidebarTextColor         string `json:"sidebarTextColor"`
	PrimaryColor             string `json:"primaryColor"`
	SecondaryColor           string `json:"secondaryColor"`
	LoginBackgroundType      string `json:"loginBackgroundType"` // COLOR or IMAGE
	LoginBackgroundContent   string `json:"loginBackgroundContent"`
	LoginCardBackgroundColor string `json:"loginCardBackgroundColor"`
}

// AppConfig is the configuration singleton stored as a single document.
// Loaded once per session, patched shallowly on update, and replaced by the
// hard-coded default when storage is empty or unreadable.
type AppConfig struct {
	LogoURL        string           `json:"logoUrl"`
	CompanyName    string           `json:"companyName"`
	Theme          Theme            `json:"theme"`
	EmailTemplates []EmailTemplate  `json:"emailTemplates"`
	SMTPConfig     SMTPConfig       `json:"smtpConfig"`
	Notices        []Notice         `json:"notices"`
	Roles          []RoleDefinition `json:"roles"`
	SidebarMenu    []MenuItemConfig `json:"sidebarMenu"`
	BrandManual    []BrandBlock     `json:"brandManual"`
}

// RoleByID returns the stored definition for a role id, or nil.
func (c *AppConfig) RoleByID(id string) *RoleDefinition {
	for i := range c.Roles {
		if c.Roles[i].ID == id {
			return &c.Roles[i]
		}
	}
	return nil
}
