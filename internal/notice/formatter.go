package notice

import (
	"fmt"
	"strings"

	"gitlab-relay/internal/model"
)

// IRC control bytes carried verbatim in push notice lines. They are part of
// the wire contract with the IRC server, not display markup.
const (
	bold        = "\x02"
	colorGreen  = "\x033"
	colorYellow = "\x038"
	colorReset  = "\x03"
)

// Message is one formatted notice line. An empty Channel means the configured
// notice channel.
type Message struct {
	Channel string
	Text    string
}

// Formatter renders webhook payloads into notice lines. It is pure: no side
// effects, same payload in, same lines out.
type Formatter struct {
	baseURL string
}

// NewFormatter derives the project base URL from the API endpoint by
// stripping the api/v3 path, so path_with_namespace appends into a browsable
// link.
func NewFormatter(endpoint string) *Formatter {
	return &Formatter{baseURL: strings.Replace(endpoint, "api/v3", "", 1)}
}

// System formats a system hook event into at most one line. Unknown event
// names produce no messages and no error, so new GitLab event types pass
// through harmlessly.
func (f *Formatter) System(ev model.SystemEvent) ([]Message, error) {
	switch ev.EventName {
	case model.EventProjectCreate:
		return f.project("created", ev)
	case model.EventProjectDestroy:
		return f.project("destroyed", ev)
	case model.EventUserAddToTeam:
		return f.team("added to", ev)
	case model.EventUserRemoveFromTeam:
		return f.team("removed from", ev)
	case model.EventUserCreate:
		return f.user("created", ev)
	case model.EventUserDestroy:
		return f.user("destroyed", ev)
	}
	return nil, nil
}

func (f *Formatter) project(verb string, ev model.SystemEvent) ([]Message, error) {
	if err := required(ev.EventName,
		field{"name", ev.Name},
		field{"owner_name", ev.OwnerName},
		field{"owner_email", ev.OwnerEmail},
		field{"path_with_namespace", ev.PathWithNamespace},
	); err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Project: event: %s - name: %s - owner: %s <%s> - %s%s",
		verb, ev.Name, ev.OwnerName, ev.OwnerEmail, f.baseURL, ev.PathWithNamespace)
	return []Message{{Text: text}}, nil
}

func (f *Formatter) team(verb string, ev model.SystemEvent) ([]Message, error) {
	if err := required(ev.EventName,
		field{"project_name", ev.ProjectName},
		field{"project_path", ev.ProjectPath},
		field{"user_name", ev.UserName},
		field{"user_email", ev.UserEmail},
		field{"project_access", ev.ProjectAccess},
	); err != nil {
		return nil, err
	}

	text := fmt.Sprintf("User: event: %s team - name: %s (%s) - user: %s <%s> - access: %s",
		verb, ev.ProjectName, ev.ProjectPath, ev.UserName, ev.UserEmail, ev.ProjectAccess)
	return []Message{{Text: text}}, nil
}

func (f *Formatter) user(verb string, ev model.SystemEvent) ([]Message, error) {
	if err := required(ev.EventName,
		field{"name", ev.Name},
		field{"email", ev.Email},
	); err != nil {
		return nil, err
	}

	text := fmt.Sprintf("User: event: %s - name: %s <%s>", verb, ev.Name, ev.Email)
	return []Message{{Text: text}}, nil
}

// Push formats one line per commit, in payload order, every line addressed
// to target.
func (f *Formatter) Push(target string, n model.PushNotice) ([]Message, error) {
	if n.Repository.Name == "" {
		return nil, fmt.Errorf("push notice: missing field %q", "repository.name")
	}
	if n.Ref == "" {
		return nil, fmt.Errorf("push notice: missing field %q", "ref")
	}

	branch := strings.TrimPrefix(n.Ref, "refs/heads/")

	msgs := make([]Message, 0, len(n.Commits))
	for i, c := range n.Commits {
		if c.ID == "" {
			return nil, fmt.Errorf("push notice: commit %d: missing field %q", i, "id")
		}

		text := fmt.Sprintf("%s%s:%s %s%s <%s>%s %s%s%s * %s%s%s: %s",
			bold, n.Repository.Name, bold,
			colorGreen, c.Author.Name, c.Author.Email, colorReset,
			colorYellow, branch, colorReset,
			bold, shortID(c.ID), bold,
			c.Message)
		msgs = append(msgs, Message{Channel: target, Text: text})
	}
	return msgs, nil
}

// shortID returns the first 9 characters of id, or the whole id when shorter.
func shortID(id string) string {
	if len(id) > 9 {
		return id[:9]
	}
	return id
}

type field struct {
	name  string
	value string
}

func required(eventName string, fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("system event %s: missing field %q", eventName, f.name)
		}
	}
	return nil
}
