package gtasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

func TestTaskBag(t *testing.T) {
	done := "2024-02-01T12:00:00.000Z"
	bag := TaskBag(&tasks.TaskList{Title: "Groceries"}, &tasks.Task{
		Id:        "abc",
		Title:     "Buy milk",
		Notes:     "2 litres",
		Status:    "completed",
		Completed: &done,
		Updated:   "2024-02-01T12:00:00.000Z",
	})

	v, _ := bag.Get("Complete")
	assert.Equal(t, "true", v)
	v, _ = bag.Get("Status")
	assert.Equal(t, "Completed", v)
	v, _ = bag.Get("Completion Time")
	assert.Equal(t, done, v)
	v, _ = bag.Get("Folder")
	assert.Equal(t, "Groceries", v)
	assert.False(t, bag.Has("Parent Task"))
}

func TestReadPagesThroughListsAndTasks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tasks.TaskLists{Items: []*tasks.TaskList{{Id: "L1", Title: "My Tasks"}}})
	})
	mux.HandleFunc("/tasks/v1/lists/L1/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("showCompleted"))
		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(tasks.Tasks{Items: []*tasks.Task{{Id: "1", Title: "First"}}, NextPageToken: "p2"})
			return
		}
		_ = json.NewEncoder(w).Encode(tasks.Tasks{Items: []*tasks.Task{{Id: "2", Title: "Second", Status: "completed"}}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc, err := tasks.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	batches, err := NewSourceWithService(svc, NewRateLimiter(100)).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "My Tasks", batches[0].Folder)
	assert.True(t, batches[0].AllTasks)
	require.Len(t, batches[0].Records, 2)

	v, _ := batches[0].Records[1].Properties.Get("Title")
	assert.Equal(t, "Second", v)
}
