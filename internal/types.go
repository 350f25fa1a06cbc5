package internal

import "time"

type ItemSource string

const (
	SourceCSV      ItemSource = "csv"
	SourceXLSX     ItemSource = "xlsx"
	SourceEML      ItemSource = "eml"
	SourceMbox     ItemSource = "mbox"
	SourceIMAP     ItemSource = "imap"
	SourcePropDump ItemSource = "propdump"
	SourceGTasks   ItemSource = "gtasks"
)

// Field is a canonical output field name.
type Field string

const (
	FieldSubject              Field = "Subject"
	FieldItemClass            Field = "ItemClass"
	FieldBody                 Field = "Body"
	FieldCreationTime         Field = "CreationTime"
	FieldLastModificationTime Field = "LastModificationTime"
	FieldDueDate              Field = "DueDate"
	FieldStartDate            Field = "StartDate"
	FieldCompletedDate        Field = "CompletedDate"
	FieldReminderTime         Field = "ReminderTime"
	FieldIsComplete           Field = "IsComplete"
	FieldCategories           Field = "Categories"
	FieldTaskID               Field = "TaskId"
	FieldPriority             Field = "Priority"
	FieldPercentComplete      Field = "PercentComplete"
	FieldStatus               Field = "Status"
	FieldFolder               Field = "Folder"
	FieldCreator              Field = "Creator"
	FieldLocalID              Field = "LocalId"
)

// Fields lists every canonical field in output order.
var Fields = []Field{
	FieldSubject, FieldItemClass, FieldBody, FieldCreationTime, FieldLastModificationTime,
	FieldDueDate, FieldStartDate, FieldCompletedDate, FieldReminderTime, FieldIsComplete,
	FieldCategories, FieldTaskID, FieldPriority, FieldPercentComplete, FieldStatus,
	FieldFolder, FieldCreator, FieldLocalID,
}

// PropertyStore gives typed access to message properties by 32-bit MAPI tag.
// Lookup reports the stored tag, which may differ from tag in its string type.
type PropertyStore interface {
	Property(tag uint32) (any, bool)
	Lookup(tag uint32) (uint32, any, bool)
}

// SourceRecord is one candidate task as produced by a source adapter.
type SourceRecord struct {
	Source       ItemSource
	Folder       string
	MessageClass string
	Properties   *PropertyBag
	// Store is set only by sources with native typed property access.
	Store PropertyStore
}

// SourceBatch groups records that share a folder and header set.
type SourceBatch struct {
	Source   ItemSource
	Folder   string
	Headers  []string
	AllTasks bool
	Records  []SourceRecord
}

// HeaderNames returns the batch header set, falling back to the union of
// record property names in encounter order.
func (b SourceBatch) HeaderNames() []string {
	if len(b.Headers) > 0 {
		return b.Headers
	}
	seen := map[string]struct{}{}
	var out []string
	for _, rec := range b.Records {
		if rec.Properties == nil {
			continue
		}
		for _, name := range rec.Properties.Names() {
			key := foldKey(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

type FullRecord struct {
	Subject              string           `json:"Subject"`
	ItemClass            string           `json:"ItemClass"`
	Body                 string           `json:"Body"`
	CreationTime         time.Time        `json:"CreationTime"`
	LastModificationTime time.Time        `json:"LastModificationTime"`
	DueDate              *time.Time       `json:"DueDate"`
	StartDate            *time.Time       `json:"StartDate"`
	CompletedDate        *time.Time       `json:"CompletedDate"`
	ReminderTime         *time.Time       `json:"ReminderTime"`
	IsComplete           bool             `json:"IsComplete"`
	Categories           string           `json:"Categories"`
	TaskID               string           `json:"TaskId"`
	Priority             int              `json:"Priority"`
	PercentComplete      float64          `json:"PercentComplete"`
	Status               int              `json:"Status"`
	Folder               string           `json:"Folder"`
	Creator              string           `json:"Creator"`
	LocalID              string           `json:"LocalId"`
	CustomProperties     CustomProperties `json:"CustomProperties"`
}

// SimpleRecord is the reduced projection. Categories, TaskID, Status and LocalID
// are only present for sources with native property access.
type SimpleRecord struct {
	Subject              string    `json:"Subject"`
	ItemClass            string    `json:"ItemClass"`
	Body                 string    `json:"Body"`
	CreationTime         time.Time `json:"CreationTime"`
	LastModificationTime time.Time `json:"LastModificationTime"`
	IsComplete           bool      `json:"IsComplete"`
	Categories           *string   `json:"Categories,omitempty"`
	TaskID               *string   `json:"TaskId,omitempty"`
	Status               *int      `json:"Status,omitempty"`
	Folder               string    `json:"Folder"`
	CreatedTime          string    `json:"CreatedTime"`
	LocalID              *string   `json:"LocalId,omitempty"`
	Creator              string    `json:"Creator"`
}

// RunRow is one recorded conversion run.
type RunRow struct {
	ID         string `db:"id"`
	Source     string `db:"source"`
	Input      string `db:"input"`
	InputHash  string `db:"inputHash"`
	Scanned    int    `db:"scanned"`
	Exported   int    `db:"exported"`
	FullPath   string `db:"fullPath"`
	SimplePath string `db:"simplePath"`
	StartedAt  string `db:"startedAt"`
	FinishedAt string `db:"finishedAt"`
}

// TaskRow is one stored task of a run.
type TaskRow struct {
	RunID      string `db:"runId"`
	Seq        int    `db:"seq"`
	Subject    string `db:"subject"`
	TaskID     string `db:"taskId"`
	Folder     string `db:"folder"`
	IsComplete bool   `db:"isComplete"`
	FullJSON   string `db:"fullJson"`
	SimpleJSON string `db:"simpleJson"`
}
