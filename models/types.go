package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Site request status constants
const (
	RequestStatusNew        = "new"
	RequestStatusInProgress = "in_progress"
	RequestStatusApproved   = "approved"
	RequestStatusRejected   = "rejected"
	RequestStatusClosed     = "closed"
)

// RequestStatuses keeps the display order used by the cabinet sections.
var RequestStatuses = []string{
	RequestStatusNew,
	RequestStatusInProgress,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusClosed,
}

var requestStatusLabels = map[string]string{
	RequestStatusNew:        "New",
	RequestStatusInProgress: "In progress",
	RequestStatusApproved:   "Approved",
	RequestStatusRejected:   "Rejected",
	RequestStatusClosed:     "Closed",
}

// Support (contact) request status and reason constants
const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusClosed     = "closed"

	ReasonSupport = "support"
	ReasonProject = "project"
	ReasonConsult = "consult"
	ReasonOther   = "other"
)

var ContactStatuses = []string{ContactStatusNew, ContactStatusInProgress, ContactStatusClosed}

var ContactReasons = []string{ReasonSupport, ReasonProject, ReasonConsult, ReasonOther}

// Admin project status constants
const (
	ProjectStatusPlanned    = "planned"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
)

var ProjectStatuses = []string{ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusCompleted}

// User type constants
const (
	UserTypeClient  = "client"
	UserTypeCompany = "company"
	UserTypeWorker  = "worker"
)

var UserTypes = []string{UserTypeClient, UserTypeCompany, UserTypeWorker}

// Request stage type constants
const (
	StageTypeHistory = "history"
	StageTypeProject = "project"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 8

// Contains reports whether v is one of choices.
func Contains(choices []string, v string) bool {
	for _, c := range choices {
		if c == v {
			return true
		}
	}
	return false
}

// RequestStatusLabel returns the human label for a request status.
func RequestStatusLabel(status string) string {
	if label, ok := requestStatusLabels[status]; ok {
		return label
	}
	return status
}

// FormatDisplayNumber renders an id as the nine-digit public number.
func FormatDisplayNumber(id int64) string {
	s := fmt.Sprintf("%09d", id)
	if len(s) > 9 {
		s = s[:9]
	}
	return s
}

// Domain types

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsActive     bool       `json:"is_active"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	// PasswordChangedAt invalidates sessions issued before it
	PasswordChangedAt *time.Time `json:"-"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

type UserProfile struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	UserType    string    `json:"user_type"`
	CompanyName string    `json:"company_name"`
	Phone       string    `json:"phone"`
	AvatarType  string    `json:"-"`
	AvatarName  string    `json:"avatar_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category groups admin projects.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	NameEN    string    `json:"name_en"`
	NameDE    string    `json:"name_de"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName prefers the German name, then English, then the base name.
func (c Category) DisplayName() string {
	switch {
	case c.NameDE != "":
		return c.NameDE
	case c.NameEN != "":
		return c.NameEN
	case c.Name != "":
		return c.Name
	}
	return fmt.Sprintf("Category #%d", c.ID)
}

type AdminProject struct {
	ID           int64      `json:"id"`
	ProjectCode  string     `json:"project_code"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	CategoryID   *int64     `json:"category_id"`
	CategoryName string     `json:"category_name,omitempty"`
	Status       string     `json:"status"`
	Year         *int       `json:"year"`
	Type         string     `json:"type"`
	Size         string     `json:"size"`
	Color        string     `json:"color"`
	EndDate      *time.Time `json:"end_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ProjectStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Planned    int `json:"planned"`
}

// Localized names shared by the request taxonomy.
type LocalizedName struct {
	Name   string `json:"name_ru"`
	NameEN string `json:"name_en"`
	NameDE string `json:"name_de"`
}

// In picks the name for lang, falling back de -> en -> base.
func (n LocalizedName) In(lang string) string {
	switch lang {
	case "ru":
		if n.Name != "" {
			return n.Name
		}
	case "en":
		if n.NameEN != "" {
			return n.NameEN
		}
	case "de":
		if n.NameDE != "" {
			return n.NameDE
		}
	}
	for _, s := range []string{n.NameDE, n.NameEN, n.Name} {
		if s != "" {
			return s
		}
	}
	return ""
}

type RequestCategory struct {
	ID int64 `json:"id"`
	LocalizedName
	Slug  string `json:"slug"`
	Order int    `json:"order"`
}

type RequestSubcategory struct {
	ID         int64 `json:"id"`
	CategoryID int64 `json:"category_id"`
	LocalizedName
	Slug  string `json:"slug"`
	Order int    `json:"order"`
}

type RequestQuestion struct {
	ID            int64 `json:"id"`
	SubcategoryID int64 `json:"subcategory_id"`
	LocalizedName
	FieldName string `json:"field_name"`
	Order     int    `json:"order"`
}

// Request is a site request submitted through the cascade form.
type Request struct {
	ID              int64             `json:"id"`
	UserID          *int64            `json:"user_id"`
	Name            string            `json:"name"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Message         string            `json:"message"`
	CategoryID      *int64            `json:"category_id"`
	CategoryName    string            `json:"category_name,omitempty"`
	SubcategoryID   *int64            `json:"subcategory_id"`
	SubcategoryName string            `json:"subcategory_name,omitempty"`
	ExtraAnswers    map[string]string `json:"extra_answers"`
	CreatedAt       time.Time         `json:"created_at"`
	Status          string            `json:"status"`
	Amount          *float64          `json:"amount"`
	MessageAdmin    string            `json:"message_admin"`
	AdminID         *int64            `json:"admin_id"`
}

func (r Request) DisplayNumber() string {
	return FormatDisplayNumber(r.ID)
}

func (r Request) MarshalJSON() ([]byte, error) {
	type plain Request
	return json.Marshal(struct {
		plain
		DisplayNumber string `json:"display_number"`
		StatusDisplay string `json:"status_display"`
	}{plain(r), r.DisplayNumber(), RequestStatusLabel(r.Status)})
}

type RequestStage struct {
	ID          int64     `json:"id"`
	RequestID   int64     `json:"request_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	StageType   string    `json:"stage_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactRequest is a support message from the public form.
type ContactRequest struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Reason       string    `json:"reason"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"`
	MessageAdmin string    `json:"message_admin"`
	AdminID      *int64    `json:"admin_id"`
}

// Public site content

type SiteSettings struct {
	LogoType string `json:"-"`
	LogoName string `json:"logo_name,omitempty"`
	LogoURL  string `json:"logo_url,omitempty"`
}

type HeroImage struct {
	ID        int64  `json:"id"`
	Order     int    `json:"order"`
	Alt       string `json:"alt"`
	ImageType string `json:"-"`
	ImageName string `json:"image_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

type Service struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	ImageType   string `json:"-"`
	ImageName   string `json:"image_name,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// PortfolioProject is a homepage showcase entry.
type PortfolioProject struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Address     string `json:"address"`
	Order       int    `json:"order"`
	ImageType   string `json:"-"`
	ImageName   string `json:"image_name,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"number"`
	NumPages   int  `json:"num_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_previous"`
	TotalCount int  `json:"total_count"`
}

// Request types

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Password1   string `json:"password1"`
	Password2   string `json:"password2"`
	UserType    string `json:"user_type"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
}

type ProfileUpdateRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

type PasswordChangeRequest struct {
	OldPassword  string `json:"old_password"`
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}

type CategoryInput struct {
	Name   string `json:"name"`
	NameEN string `json:"name_en"`
	NameDE string `json:"name_de"`
}

type ProjectInput struct {
	ProjectCode string `json:"project_code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  *int64 `json:"category_id"`
	Status      string `json:"status"`
	Year        *int   `json:"year"`
	Type        string `json:"type"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	EndDate     string `json:"end_date"`
}

type OwnerRequestUpdate struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type AdminRequestUpdate struct {
	Status       string   `json:"status"`
	MessageAdmin string   `json:"message_admin"`
	Amount       *float64 `json:"amount"`
}

type AdminSupportUpdate struct {
	Status       string `json:"status"`
	MessageAdmin string `json:"message_admin"`
}

type StageInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	StageType   string `json:"stage_type"`
}

type TaxonomyInput struct {
	ParentID  int64  `json:"parent_id"`
	Name      string `json:"name_ru"`
	NameEN    string `json:"name_en"`
	NameDE    string `json:"name_de"`
	Slug      string `json:"slug"`
	FieldName string `json:"field_name"`
	Order     int    `json:"order"`
}

// Response types

type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Redirect string `json:"redirect"`
	User     User   `json:"user"`
}

type TokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
}

type ProfileResponse struct {
	User    User        `json:"user"`
	Profile UserProfile `json:"profile"`
}

type NamedOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type QuestionOption struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	FieldName string `json:"field_name"`
}

type DashboardResponse struct {
	TotalProjects      int              `json:"total_projects"`
	CompletedProjects  int              `json:"completed_projects"`
	InProgressProjects int              `json:"in_progress_projects"`
	NewSupport         int              `json:"new_support"`
	NewApplications    int              `json:"new_applications"`
	RecentApplications []Request        `json:"recent_applications"`
	RecentSupport      []ContactRequest `json:"recent_support"`
}

type StatusSection struct {
	Status   string    `json:"status"`
	Label    string    `json:"label"`
	Requests []Request `json:"requests"`
}

type HistoryRow struct {
	ID            int64    `json:"id"`
	Date          string   `json:"date"`
	Amount        *float64 `json:"amount"`
	Status        string   `json:"status"`
	StatusDisplay string   `json:"status_display"`
	DisplayNumber string   `json:"display_number"`
}

type MonthCount struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type AnalyticsResponse struct {
	History  []HistoryRow   `json:"history"`
	ByStatus map[string]int `json:"by_status"`
	ByMonth  []MonthCount   `json:"by_month"`
}

type RequestDetailResponse struct {
	Request Request        `json:"request"`
	Stages  []RequestStage `json:"stages"`
}
