package console

import "jobboard/internal/models"

// Gate answers permission questions for the signed-in admin.
type Gate interface {
	IsAuthenticated() bool
	IsMainAdmin() bool
	HasPermission(perm models.Permission) bool
}

type Action string

const (
	ActionView         Action = "view"
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionRestore      Action = "restore"
	ActionDeactivate   Action = "deactivate"
	ActionAddJob       Action = "add-job"
	ActionBulkUpload   Action = "bulk-upload"
	ActionSweep        Action = "process-status-changes"
	ActionBulkDelete   Action = "bulk-delete"
	ActionExport       Action = "export"
	ActionManageAdmins Action = "manage-admins"
)

// Actions returns the row actions offered for job. Editing is only offered
// for active jobs.
func Actions(g Gate, job *models.Job) []Action {
	actions := []Action{ActionView}
	if !g.IsAuthenticated() {
		return actions
	}

	canCreate := g.HasPermission(models.PermCreateJobs)
	if canCreate && job.Status == models.StatusActive {
		actions = append(actions, ActionEdit)
	}
	if canCreate && job.Status == models.StatusDump {
		actions = append(actions, ActionRestore, ActionDeactivate)
	}
	if g.HasPermission(models.PermDeleteJobs) {
		actions = append(actions, ActionDelete)
	}
	return actions
}

// ToolbarActions returns the page-level actions of the job screens.
func ToolbarActions(g Gate) []Action {
	var actions []Action
	if g.HasPermission(models.PermCreateJobs) {
		actions = append(actions, ActionAddJob, ActionBulkUpload, ActionSweep)
	}
	if g.HasPermission(models.PermDeleteJobs) {
		actions = append(actions, ActionBulkDelete)
	}
	if g.HasPermission(models.PermViewAnalytics) {
		actions = append(actions, ActionExport)
	}
	if g.IsMainAdmin() {
		actions = append(actions, ActionManageAdmins)
	}
	return actions
}

func HasAction(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

type NavItem struct {
	Name       string
	Path       string
	Permission models.Permission
}

var navigation = []NavItem{
	{Name: "Dashboard", Path: "/admin/dashboard"},
	{Name: "Manage Jobs", Path: "/admin/jobs", Permission: models.PermCreateJobs},
	{Name: "Dump Jobs", Path: "/admin/jobs/dump", Permission: models.PermCreateJobs},
	{Name: "Analytics", Path: "/admin/analytics", Permission: models.PermViewAnalytics},
	{Name: "Manage Admins", Path: "/admin/admins", Permission: models.PermManageAdmins},
}

// Navigation returns the console sections visible to the signed-in admin.
func Navigation(g Gate) []NavItem {
	if !g.IsAuthenticated() {
		return nil
	}
	var items []NavItem
	for _, item := range navigation {
		if item.Permission == "" || g.HasPermission(item.Permission) {
			items = append(items, item)
		}
	}
	return items
}
