package model

import "time"

// Event types. EventLog marks a derived event that mirrors a Log.
const (
	EventWater    = "water"
	EventRepot    = "repot"
	EventMove     = "move"
	EventPest     = "pest"
	EventSnapshot = "snapshot"
	EventLog      = "log"
)

// Log types.
const (
	LogDaily   = "daily"
	LogWeekly  = "weekly"
	LogMonthly = "monthly"
	LogCustom  = "custom"
	LogTodo    = "todo"
)

// Knowledge entry types.
const (
	KnowledgeDocument = "document"
	KnowledgeWeb      = "web"
)

var (
	// EventTypes lists every accepted Event.Type.
	EventTypes = []string{EventWater, EventRepot, EventMove, EventPest, EventSnapshot, EventLog}
	// LogTypes lists every accepted Log.Type.
	LogTypes = []string{LogDaily, LogWeekly, LogMonthly, LogCustom, LogTodo}
	// ExpenseTypes lists the expense categories offered by the UI.
	ExpenseTypes = []string{"plant", "soil", "pot", "tool", "fertilizer", "other"}
	// Currencies lists the supported expense currencies.
	Currencies = []string{"CNY", "USD", "EUR"}
	// SuggestedTags is the tag vocabulary offered for events; free-form tags are allowed.
	SuggestedTags = []string{"light pot", "soft leaves", "soil dry", "season change", "rainy spell", "full sun", "poor airflow", "recovering"}
	// DefaultLocations is the starter set used when a state carries no locations.
	DefaultLocations = []string{"South window", "East window", "North window", "Grow light rack"}
)

// ApplicationState is the root aggregate persisted by the structured-state store and
// embedded verbatim in backup archives.
type ApplicationState struct {
	Locations   []string         `json:"locations"`
	Plants      []Plant          `json:"plants"`
	Events      []Event          `json:"events"`
	GeneralLogs []Log            `json:"generalLogs"`
	Expenses    []Expense        `json:"expenses"`
	Knowledges  []KnowledgeEntry `json:"knowledges"`
}

// Plant is a single succulent.
type Plant struct {
	ID            string     `json:"id" validate:"required"`
	Name          string     `json:"name" validate:"required"`
	Location      string     `json:"location"`
	StartDate     time.Time  `json:"startDate"`
	LastWateredAt *time.Time `json:"lastWateredAt"`
	CoverPhotoKey string     `json:"coverPhotoKey"`
}

// Event is a care action recorded against a plant. Events of type "log" are derived
// from a Log and carry its id in LogID.
type Event struct {
	ID        string    `json:"id" validate:"required"`
	PlantID   string    `json:"plantId" validate:"required"`
	Type      string    `json:"type" validate:"oneof=water repot move pest snapshot log"`
	At        time.Time `json:"at"`
	Tags      []string  `json:"tags"`
	Note      string    `json:"note"`
	PhotoKeys []string  `json:"photoKeys"`
	LogID     string    `json:"logId,omitempty"`
}

// Log is a free-form journal entry. SourceEventID is set on logs that mirror an Event.
type Log struct {
	ID            string     `json:"id" validate:"required"`
	Type          string     `json:"type" validate:"oneof=daily weekly monthly custom todo"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Date          time.Time  `json:"date"`
	Tags          []string   `json:"tags"`
	Photos        []string   `json:"photos"`
	Weather       string     `json:"weather"`
	Mood          string     `json:"mood"`
	RelatedPlants []string   `json:"relatedPlants"`
	IsCompleted   bool       `json:"isCompleted"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	IsPinned      bool       `json:"isPinned"`
	PinnedAt      *time.Time `json:"pinnedAt,omitempty"`
	SourceEventID string     `json:"sourceEventId,omitempty"`
}

// Expense is money spent on the collection.
type Expense struct {
	ID             string    `json:"id" validate:"required"`
	Type           string    `json:"type"`
	Category       string    `json:"category" validate:"required"`
	Amount         float64   `json:"amount" validate:"gt=0"`
	Currency       string    `json:"currency" validate:"oneof=CNY USD EUR"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
	RelatedPlantID string    `json:"relatedPlantId"`
	Photos         []string  `json:"photos"`
	Tags           []string  `json:"tags"`
}

// KnowledgeEntry is a note or bookmarked web resource about succulent care.
type KnowledgeEntry struct {
	ID             string    `json:"id" validate:"required"`
	Type           string    `json:"type" validate:"oneof=document web"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	URL            string    `json:"url" validate:"required_if=Type web"`
	Tags           []string  `json:"tags"`
	Source         string    `json:"source"`
	CoverPhotoKeys []string  `json:"coverPhotoKeys"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
