package pipeline

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"todoreader/internal"
	"todoreader/internal/mapi"
	"todoreader/internal/util"
)

// Well-known export column names for fields that no header rule covers.
var (
	dueDateColumns       = []string{"Due Date", "DueDate"}
	startDateColumns     = []string{"Start Date", "StartDate"}
	completedDateColumns = []string{"Date Completed", "Completed Date", "CompletedDate", "Completion Date", "Completion Time"}
	reminderDateColumns  = []string{"Reminder Date"}
	reminderTimeColumns  = []string{"Reminder Time", "ReminderTime"}
	priorityColumns      = []string{"Priority", "Importance"}
	percentColumns       = []string{"% Complete"}
	statusColumns        = []string{"Status"}
	notesColumns         = []string{"Notes"}
)

// Normalizer turns one property bag into a full and a simple record. It never
// fails: unreadable values fall back to their documented defaults.
type Normalizer struct {
	dates  util.DateParser
	logger *zap.Logger
}

func NewNormalizer(dates util.DateParser, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{dates: dates, logger: logger}
}

// Normalize reads rec through its typed store when it has one, otherwise
// through the batch header map.
func (n *Normalizer) Normalize(rec internal.SourceRecord, headers HeaderMap) (internal.FullRecord, internal.SimpleRecord) {
	var full internal.FullRecord
	var simple internal.SimpleRecord
	if rec.Store != nil {
		full, simple = n.normalizeNative(rec)
	} else {
		full, simple = n.normalizeTabular(rec, headers)
	}
	applyOverrides(&simple, rec.Properties)

	n.logger.Debug("normalized task",
		zap.String("source", string(rec.Source)),
		zap.String("folder", full.Folder),
		zap.String("subject", full.Subject),
		zap.Int("customProperties", full.CustomProperties.Len()),
	)
	return full, simple
}

func (n *Normalizer) normalizeTabular(rec internal.SourceRecord, headers HeaderMap) (internal.FullRecord, internal.SimpleRecord) {
	r := newRowReader(rec.Properties, headers)

	full := internal.FullRecord{}
	full.Subject, _ = r.mapped(internal.FieldSubject)
	full.ItemClass, _ = r.mapped(internal.FieldItemClass)
	if full.ItemClass == "" {
		full.ItemClass = rec.MessageClass
	}
	var ok bool
	if full.Body, ok = r.mapped(internal.FieldBody); !ok {
		full.Body, _ = r.named(notesColumns...)
	}

	createdRaw, _ := r.mapped(internal.FieldCreationTime)
	full.CreationTime = n.requiredTime(internal.FieldCreationTime, createdRaw)
	modifiedRaw, _ := r.mapped(internal.FieldLastModificationTime)
	full.LastModificationTime = n.requiredTime(internal.FieldLastModificationTime, modifiedRaw)

	due, _ := r.named(dueDateColumns...)
	full.DueDate = n.optionalTime(internal.FieldDueDate, due)
	start, _ := r.named(startDateColumns...)
	full.StartDate = n.optionalTime(internal.FieldStartDate, start)
	completed, _ := r.named(completedDateColumns...)
	full.CompletedDate = n.optionalTime(internal.FieldCompletedDate, completed)
	full.ReminderTime = n.reminder(r)

	complete, _ := r.mapped(internal.FieldIsComplete)
	full.IsComplete = util.ParseBool(complete)
	full.Categories, _ = r.mapped(internal.FieldCategories)
	full.TaskID, _ = r.mapped(internal.FieldTaskID)

	priority, _ := r.named(priorityColumns...)
	full.Priority = util.ParsePriority(priority, 0)
	percent, _ := r.named(percentColumns...)
	full.PercentComplete = util.ParseFloat(percent, 0)
	status, _ := r.named(statusColumns...)
	full.Status = util.ParseTaskStatus(status, 0)

	full.Folder, _ = r.mapped(internal.FieldFolder)
	if full.Folder == "" {
		full.Folder = rec.Folder
	}
	full.Creator, _ = r.mapped(internal.FieldCreator)
	full.LocalID, _ = r.mapped(internal.FieldLocalID)
	full.CustomProperties = r.unclaimed()

	simple := internal.SimpleRecord{
		Subject:              full.Subject,
		ItemClass:            full.ItemClass,
		Body:                 full.Body,
		CreationTime:         full.CreationTime,
		LastModificationTime: full.LastModificationTime,
		IsComplete:           full.IsComplete,
		Folder:               full.Folder,
		CreatedTime:          createdRaw,
		Creator:              full.Creator,
	}
	return full, simple
}

func (n *Normalizer) reminder(r *rowReader) *time.Time {
	date, hasDate := r.named(reminderDateColumns...)
	clock, hasClock := r.named(reminderTimeColumns...)
	if hasDate && hasClock && strings.TrimSpace(date) != "" && strings.TrimSpace(clock) != "" {
		if t, ok := n.dates.Parse(date + " " + clock); ok {
			return &t
		}
	}
	if strings.TrimSpace(clock) != "" {
		return n.optionalTime(internal.FieldReminderTime, clock)
	}
	return n.optionalTime(internal.FieldReminderTime, date)
}

func (n *Normalizer) normalizeNative(rec internal.SourceRecord) (internal.FullRecord, internal.SimpleRecord) {
	r := newStoreReader(rec.Store)

	full := internal.FullRecord{}
	full.Subject = util.FormatValue(r.first(mapi.TagSubject))
	full.ItemClass = util.FormatValue(r.first(mapi.TagMessageClass))
	if full.ItemClass == "" {
		full.ItemClass = rec.MessageClass
	}
	full.Body = util.FormatValue(r.first(mapi.TagBody))
	if full.Body == "" {
		if html := r.first(mapi.TagHTML); html != nil {
			full.Body = util.HTMLToText(htmlString(html))
		}
	}

	created := r.first(mapi.TagDeliveryTime, mapi.TagClientSubmitTime, mapi.TagCreationTime)
	full.CreationTime = n.requiredTime(internal.FieldCreationTime, created)
	full.LastModificationTime = n.requiredTime(internal.FieldLastModificationTime, r.first(mapi.TagLastModified))
	full.DueDate = n.optionalTime(internal.FieldDueDate, r.first(mapi.TagTaskDueDate))
	full.StartDate = n.optionalTime(internal.FieldStartDate, r.first(mapi.TagTaskStartDate))
	full.CompletedDate = n.optionalTime(internal.FieldCompletedDate, r.first(mapi.TagTaskDateCompleted))
	full.ReminderTime = n.optionalTime(internal.FieldReminderTime, r.first(mapi.TagReminderTime))

	full.IsComplete = util.CoerceBool(r.first(mapi.TagTaskComplete))
	full.Categories = util.FormatValue(r.first(mapi.TagCategories))
	full.TaskID = util.FormatValue(r.first(mapi.TagTaskID))
	full.Priority = util.CoerceInt(r.first(mapi.TagTaskPriority), 0)
	full.PercentComplete = util.CoerceFloat(r.first(mapi.TagTaskPercent), 0)
	full.Status = util.CoerceInt(r.first(mapi.TagTaskStatus), 0)
	full.Folder = util.FormatValue(r.first(mapi.TagParentDisplay))
	if full.Folder == "" {
		full.Folder = rec.Folder
	}
	full.Creator = util.FormatValue(r.first(mapi.TagCreatorName))
	full.LocalID = util.FormatValue(r.first(mapi.TagLocalID))
	full.CustomProperties = unclaimed(rec.Properties, r.claimed)

	categories := full.Categories
	taskID := full.TaskID
	status := full.Status
	localID := full.LocalID
	simple := internal.SimpleRecord{
		Subject:              full.Subject,
		ItemClass:            full.ItemClass,
		Body:                 full.Body,
		CreationTime:         full.CreationTime,
		LastModificationTime: full.LastModificationTime,
		IsComplete:           full.IsComplete,
		Categories:           &categories,
		TaskID:               &taskID,
		Status:               &status,
		Folder:               full.Folder,
		CreatedTime:          util.FormatValue(created),
		LocalID:              &localID,
		Creator:              full.Creator,
	}
	return full, simple
}

// applyOverrides lets alternately named folder/created/creator properties
// replace the simple projection; the last non-empty match in bag order wins.
func applyOverrides(simple *internal.SimpleRecord, bag *internal.PropertyBag) {
	for _, p := range bag.Properties() {
		value := util.FormatValue(p.Value)
		if strings.TrimSpace(value) == "" {
			continue
		}
		if util.ContainsFold(p.Name, "Folder") {
			simple.Folder = value
		}
		if util.ContainsFold(p.Name, "Created", "Creation") {
			simple.CreatedTime = value
		}
		if util.ContainsFold(p.Name, "Creator", "Owner", "Author") {
			simple.Creator = value
		}
	}
}

func (n *Normalizer) requiredTime(field internal.Field, v any) time.Time {
	t, ok := n.coerceTime(field, v)
	if !ok {
		return time.Time{}
	}
	return t
}

func (n *Normalizer) optionalTime(field internal.Field, v any) *time.Time {
	t, ok := n.coerceTime(field, v)
	if !ok {
		return nil
	}
	return &t
}

func (n *Normalizer) coerceTime(field internal.Field, v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	if s, isText := v.(string); isText && strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, ok := n.dates.Coerce(v)
	if !ok {
		n.logger.Debug("unparseable timestamp",
			zap.String("field", string(field)),
			zap.String("value", util.FormatValue(v)),
		)
	}
	return t, ok
}

func htmlString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return util.FormatValue(v)
}

type rowReader struct {
	props   []internal.Property
	bag     *internal.PropertyBag
	headers HeaderMap
	claimed map[string]struct{}
}

func newRowReader(bag *internal.PropertyBag, headers HeaderMap) *rowReader {
	return &rowReader{
		props:   bag.Properties(),
		bag:     bag,
		headers: headers,
		claimed: map[string]struct{}{},
	}
}

// mapped reads the first non-empty property whose header maps to field, or
// the first mapped property when all are empty. Every property mapped to
// field is claimed, whichever one supplied the value.
func (r *rowReader) mapped(field internal.Field) (string, bool) {
	value, found := "", false
	for _, p := range r.props {
		f, ok := r.headers.Field(p.Name)
		if !ok || f != field {
			continue
		}
		r.claim(p.Name)
		v := util.FormatValue(p.Value)
		if !found || (strings.TrimSpace(value) == "" && strings.TrimSpace(v) != "") {
			value, found = v, true
		}
	}
	return value, found
}

// named consumes the first present column among names, preferring non-empty.
func (r *rowReader) named(names ...string) (string, bool) {
	firstName := ""
	for _, name := range names {
		v, ok := r.bag.Get(name)
		if !ok {
			continue
		}
		if firstName == "" {
			firstName = name
		}
		if value := util.FormatValue(v); strings.TrimSpace(value) != "" {
			r.claim(name)
			return value, true
		}
	}
	if firstName == "" {
		return "", false
	}
	r.claim(firstName)
	v, _ := r.bag.Get(firstName)
	return util.FormatValue(v), true
}

func (r *rowReader) claim(name string) {
	r.claimed[claimKey(name)] = struct{}{}
}

func (r *rowReader) unclaimed() internal.CustomProperties {
	return unclaimed(r.bag, r.claimed)
}

type storeReader struct {
	store   internal.PropertyStore
	claimed map[string]struct{}
}

func newStoreReader(store internal.PropertyStore) *storeReader {
	return &storeReader{store: store, claimed: map[string]struct{}{}}
}

// first returns the value of the first present tag and claims the stored tag.
func (r *storeReader) first(tags ...uint32) any {
	for _, tag := range tags {
		stored, v, ok := r.store.Lookup(tag)
		if !ok || v == nil {
			continue
		}
		r.claimed[claimKey(mapi.Key(stored))] = struct{}{}
		return v
	}
	return nil
}

func unclaimed(bag *internal.PropertyBag, claimed map[string]struct{}) internal.CustomProperties {
	custom := internal.CustomProperties{}
	for _, p := range bag.Properties() {
		if _, ok := claimed[claimKey(p.Name)]; ok {
			continue
		}
		custom.Set(p.Name, util.FormatValue(p.Value))
	}
	return custom
}

func claimKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
