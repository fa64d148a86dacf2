package model

// Known system hook event names.
const (
	EventProjectCreate      = "project_create"
	EventProjectDestroy     = "project_destroy"
	EventUserAddToTeam      = "user_add_to_team"
	EventUserRemoveFromTeam = "user_remove_from_team"
	EventUserCreate         = "user_create"
	EventUserDestroy        = "user_destroy"
)

// SystemEvent is a GitLab system hook payload, discriminated by EventName.
// Only the fields a known event formats are ever read; unknown event names
// carry whatever fields they like and are ignored downstream.
type SystemEvent struct {
	EventName string `json:"event_name"`

	// project_create / project_destroy
	Name              string `json:"name"`
	OwnerName         string `json:"owner_name"`
	OwnerEmail        string `json:"owner_email"`
	PathWithNamespace string `json:"path_with_namespace"`

	// user_add_to_team / user_remove_from_team
	ProjectName   string `json:"project_name"`
	ProjectPath   string `json:"project_path"`
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	ProjectAccess string `json:"project_access"`

	// user_create / user_destroy (Name is shared with project events)
	Email string `json:"email"`
}

// PushNotice is a GitLab push hook payload.
type PushNotice struct {
	Ref        string     `json:"ref"`
	Repository Repository `json:"repository"`
	Commits    []Commit   `json:"commits"`
}

type Repository struct {
	Name string `json:"name"`
}

type Commit struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Author  Author `json:"author"`
}

type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
