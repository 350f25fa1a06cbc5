package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"todoreader/internal"
)

func TestDetector(t *testing.T) {
	d := NewDetector(nil, nil)
	cases := []struct {
		name   string
		batch  internal.SourceBatch
		rec    internal.SourceRecord
		isTask bool
		reason string
	}{
		{"all tasks", internal.SourceBatch{AllTasks: true}, internal.SourceRecord{}, true, "all_tasks_source"},
		{"task folder", internal.SourceBatch{Folder: "Outlook/To-Do List"}, internal.SourceRecord{}, true, "task_folder"},
		{"windows path", internal.SourceBatch{Folder: `Top\Tasks`}, internal.SourceRecord{}, true, "task_folder"},
		{"record folder", internal.SourceBatch{}, internal.SourceRecord{Folder: "tasks"}, true, "task_folder"},
		{"todo class", internal.SourceBatch{Folder: "Inbox"}, internal.SourceRecord{MessageClass: "ipm.microsoft.todo"}, true, "task_class"},
		{"roamed class", internal.SourceBatch{}, internal.SourceRecord{MessageClass: "IPM.Todo.Microsoft.Todo.Roamed"}, true, "task_class"},
		{"mail", internal.SourceBatch{Folder: "Inbox"}, internal.SourceRecord{MessageClass: "IPM.Note"}, false, "not_a_task"},
		{"task subfolder name", internal.SourceBatch{Folder: "Tasks/Archive"}, internal.SourceRecord{}, false, "not_a_task"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := d.Detect(tc.batch, tc.rec)
			assert.Equal(t, tc.isTask, got.IsTask)
			assert.Equal(t, tc.reason, got.Reason)
		})
	}
}

func TestDetectorCustomLists(t *testing.T) {
	d := NewDetector([]string{"IPM.Task.Custom"}, []string{"Aufgaben"})
	assert.True(t, d.TaskFolder("Aufgaben"))
	assert.False(t, d.TaskFolder("Tasks"))
	assert.True(t, d.TaskClass("IPM.Task.Custom"))
	assert.False(t, d.TaskClass("IPM.Task"))
}

func TestBatchKeepsOrderAndCopies(t *testing.T) {
	b := NewBatch()
	b.Append(internal.FullRecord{Subject: "1"}, internal.SimpleRecord{Subject: "1"})
	b.Append(internal.FullRecord{Subject: "2"}, internal.SimpleRecord{Subject: "2"})

	full := b.Full()
	full[0].Subject = "changed"
	assert.Equal(t, "1", b.Full()[0].Subject)
	assert.Equal(t, "2", b.Simple()[1].Subject)
	assert.Equal(t, 2, b.Len())
	assert.NotNil(t, NewBatch().Full())
}
