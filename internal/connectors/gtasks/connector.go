package gtasks

import (
	"context"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"todoreader/internal"
	"todoreader/internal/config"
)

const pageSize = 100

// Source reads every task list of a Google account, hidden and completed
// tasks included. Each list is one batch.
type Source struct {
	service *tasks.Service
	limiter *RateLimiter
}

func NewSource(ctx context.Context, cfg config.Config) (*Source, error) {
	if err := cfg.Require("GTASKS_CLIENT_ID", cfg.GTasksClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GTASKS_CLIENT_SECRET", cfg.GTasksClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GTASKS_REFRESH_TOKEN", cfg.GTasksRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GTasksClientID,
		ClientSecret: cfg.GTasksClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{tasks.TasksReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GTasksRefreshToken})
	svc, err := tasks.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Source{service: svc, limiter: NewRateLimiter(cfg.GTasksRateLimitRPS)}, nil
}

// NewSourceWithService wraps an already configured client. A nil limiter
// disables pacing.
func NewSourceWithService(svc *tasks.Service, limiter *RateLimiter) *Source {
	return &Source{service: svc, limiter: limiter}
}

func (s *Source) Read(ctx context.Context) ([]internal.SourceBatch, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var lists []*tasks.TaskList
	err := s.service.Tasklists.List().MaxResults(pageSize).Pages(ctx, func(page *tasks.TaskLists) error {
		lists = append(lists, page.Items...)
		return s.limiter.Wait(ctx)
	})
	if err != nil {
		return nil, err
	}

	out := make([]internal.SourceBatch, 0, len(lists))
	for _, list := range lists {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		batch := internal.SourceBatch{Source: internal.SourceGTasks, Folder: list.Title, AllTasks: true}
		err := s.service.Tasks.List(list.Id).
			MaxResults(pageSize).
			ShowCompleted(true).
			ShowHidden(true).
			Pages(ctx, func(page *tasks.Tasks) error {
				for _, t := range page.Items {
					batch.Records = append(batch.Records, internal.SourceRecord{
						Source:     internal.SourceGTasks,
						Folder:     list.Title,
						Properties: TaskBag(list, t),
					})
				}
				return s.limiter.Wait(ctx)
			})
		if err != nil {
			return nil, err
		}
		out = append(out, batch)
	}
	return out, nil
}

// TaskBag names task attributes so the header rules and well-known
// columns resolve them.
func TaskBag(list *tasks.TaskList, t *tasks.Task) *internal.PropertyBag {
	bag := internal.NewPropertyBag()
	bag.Set("Title", t.Title)
	bag.Set("Notes", t.Notes)
	bag.Set("Due Date", t.Due)
	bag.Set("Complete", strconv.FormatBool(t.Status == "completed"))
	bag.Set("Completion Time", deref(t.Completed))
	bag.Set("Last Modified", t.Updated)
	bag.Set("Status", status(t.Status))
	bag.Set("Task ID", t.Id)
	if list != nil {
		bag.Set("Folder", list.Title)
	}
	if t.Parent != "" {
		bag.Set("Parent Task", t.Parent)
	}
	bag.Set("Position", t.Position)
	if t.WebViewLink != "" {
		bag.Set("Web Link", t.WebViewLink)
	}
	if t.Hidden {
		bag.Set("Hidden", "true")
	}
	return bag
}

func status(s string) string {
	if s == "completed" {
		return "Completed"
	}
	return "Not Started"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
