package pipeline

import (
	"path"
	"strings"

	"todoreader/internal"
	"todoreader/internal/util"
)

var (
	DefaultTaskClasses = []string{"IPM.Task", "IPM.Microsoft.Todo", "IPM.Todo.Microsoft.Todo.Roamed"}
	DefaultTaskFolders = []string{"Tasks", "To-Do", "To-Do List"}
)

// DetectResult explains why a record was kept or skipped.
type DetectResult struct {
	IsTask bool
	Reason string
}

// Detector decides which traversed records are tasks.
type Detector struct {
	classes []string
	folders []string
}

func NewDetector(classes, folders []string) Detector {
	if len(classes) == 0 {
		classes = DefaultTaskClasses
	}
	if len(folders) == 0 {
		folders = DefaultTaskFolders
	}
	return Detector{classes: classes, folders: folders}
}

// TaskFolder reports whether folder's last path segment names a task folder.
func (d Detector) TaskFolder(folder string) bool {
	name := strings.TrimSpace(folder)
	if name == "" {
		return false
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return util.EqualsAnyFold(name, d.folders...)
}

func (d Detector) TaskClass(class string) bool {
	return util.EqualsAnyFold(strings.TrimSpace(class), d.classes...)
}

func (d Detector) Detect(batch internal.SourceBatch, rec internal.SourceRecord) DetectResult {
	switch {
	case batch.AllTasks:
		return DetectResult{IsTask: true, Reason: "all_tasks_source"}
	case d.TaskFolder(batch.Folder) || d.TaskFolder(rec.Folder):
		return DetectResult{IsTask: true, Reason: "task_folder"}
	case d.TaskClass(rec.MessageClass):
		return DetectResult{IsTask: true, Reason: "task_class"}
	}
	return DetectResult{IsTask: false, Reason: "not_a_task"}
}
