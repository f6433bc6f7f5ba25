package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Meetings    *MeetingHandler
	Tasks       *TaskHandler
	Recurrences *RecurrenceHandler
	Users       *UserHandler
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Meetings != nil {
		mux.HandleFunc("/meetings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Meetings.List(w, r)
			case http.MethodPost:
				cfg.Meetings.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/meetings/recurring", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Meetings.CreateRecurring(w, r)
		})
		mux.HandleFunc("/meetings/", func(w http.ResponseWriter, r *http.Request) {
			segments := pathSegments(r.URL.Path, "/meetings/")
			if len(segments) == 0 || segments[0] == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithMeetingID(r.Context(), segments[0])
			r = r.WithContext(ctx)

			switch {
			case len(segments) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Meetings.Get(w, r)
				case http.MethodPut:
					cfg.Meetings.Update(w, r)
				case http.MethodDelete:
					cfg.Meetings.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case len(segments) == 2 && segments[1] == "complete":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Meetings.Complete(w, r)
			case len(segments) == 2 && segments[1] == "next":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Meetings.Next(w, r)
			case len(segments) == 2 && segments[1] == "attendees":
				switch r.Method {
				case http.MethodGet:
					cfg.Meetings.ListAttendees(w, r)
				case http.MethodPost:
					cfg.Meetings.AddAttendees(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case len(segments) == 2 && segments[1] == "tasks" && cfg.Tasks != nil:
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Tasks.ListForMeeting(w, r)
			case len(segments) == 3 && segments[1] == "tasks" && cfg.Tasks != nil:
				r = r.WithContext(ContextWithTaskID(r.Context(), segments[2]))
				switch r.Method {
				case http.MethodPut:
					cfg.Tasks.Attach(w, r)
				case http.MethodDelete:
					cfg.Tasks.Detach(w, r)
				default:
					methodNotAllowed(w, http.MethodPut, http.MethodDelete)
				}
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Tasks != nil {
		mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Tasks.List(w, r)
			case http.MethodPost:
				cfg.Tasks.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
			segments := pathSegments(r.URL.Path, "/tasks/")
			if len(segments) == 0 || segments[0] == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithTaskID(r.Context(), segments[0])
			r = r.WithContext(ctx)

			switch {
			case len(segments) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Tasks.Get(w, r)
				case http.MethodPut:
					cfg.Tasks.Update(w, r)
				case http.MethodDelete:
					cfg.Tasks.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case len(segments) == 2 && segments[1] == "complete":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Tasks.Complete(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Recurrences != nil {
		mux.HandleFunc("/recurrences", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Recurrences.List(w, r)
			case http.MethodPost:
				cfg.Recurrences.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/recurrences/import", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Recurrences.Import(w, r)
		})
		mux.HandleFunc("/recurrences/", func(w http.ResponseWriter, r *http.Request) {
			segments := pathSegments(r.URL.Path, "/recurrences/")
			if len(segments) != 1 || segments[0] == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithRecurrenceID(r.Context(), segments[0])
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Recurrences.Get(w, r)
			case http.MethodPut:
				cfg.Recurrences.Update(w, r)
			case http.MethodDelete:
				cfg.Recurrences.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
			segments := pathSegments(r.URL.Path, "/users/")
			if len(segments) == 0 || segments[0] == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithUserID(r.Context(), segments[0])
			r = r.WithContext(ctx)

			switch {
			case len(segments) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Users.Get(w, r)
				case http.MethodDelete:
					cfg.Users.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodDelete)
				}
			case len(segments) == 2 && segments[1] == "meetings":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Users.ListMeetings(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func pathSegments(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
