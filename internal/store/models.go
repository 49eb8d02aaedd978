package store

import "time"

// Idea categories.
const (
	CategoryTech     = "tech"
	CategoryBusiness = "business"
	CategoryContent  = "content"
	CategoryLife     = "life"
	CategoryRandom   = "random"
)

// Idea lifecycle statuses.
const (
	IdeaCaptured   = "captured"
	IdeaValidating = "validating"
	IdeaValidated  = "validated"
	IdeaPlanning   = "planning"
	IdeaBuilding   = "building"
	IdeaShipped    = "shipped"
	IdeaArchived   = "archived"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectPaused    = "paused"
	ProjectCompleted = "completed"
	ProjectAbandoned = "abandoned"
)

type Idea struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Status          string    `json:"status"`
	ImpactScore     *int      `json:"impact_score"`
	EffortScore     *int      `json:"effort_score"`
	ExcitementScore *int      `json:"excitement_score"`
	PriorityScore   *float64  `json:"priority_score"`
	Tags            []string  `json:"tags"`
	Mood            string    `json:"mood"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Milestone struct {
	ID          string    `json:"id"`
	IdeaID      string    `json:"idea_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     *string   `json:"due_date"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
}

type Project struct {
	ID        string    `json:"id"`
	IdeaID    string    `json:"idea_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	GithubURL *string   `json:"github_url"`
	LiveURL   *string   `json:"live_url"`
	Status    string    `json:"status"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type TimeLog struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	UserID      string     `json:"user_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Profile struct {
	ID        string    `json:"id"`
	Username  *string   `json:"username"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	APIToken  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IdeaID    *string   `json:"idea_id"`
	Action    string    `json:"action"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
