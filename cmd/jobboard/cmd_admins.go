package main

import (
	"context"
	"fmt"
	"os"

	apperrors "jobboard/internal/errors"
	"jobboard/internal/models"
)

func runAdmins(ctx context.Context, e *env, args []string) error {
	if _, err := parse(newFlagSet("admins", ""), args, 0, 0); err != nil {
		return err
	}
	admins, err := e.Console.Admins(ctx)
	if err != nil {
		return err
	}

	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tPERMISSIONS\tLAST LOGIN\tSTATUS")
	for _, a := range admins {
		status := successColor.Sprint("active")
		if !a.IsActive {
			status = faintColor.Sprint("inactive")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Username, a.Email, a.Role, permissionSummary(&a), formatDate(a.LastLogin), status)
	}
	return tw.Flush()
}

func permissionSummary(a *models.Admin) string {
	if a.IsMainAdmin() {
		return "all"
	}
	var out string
	for _, p := range models.AllPermissions {
		if a.Permissions.Has(p) {
			if out != "" {
				out += ","
			}
			out += string(p)
		}
	}
	return orDash(out)
}

func runAdminCreate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("admin-create", "-username u -email e -password p [permission flags]")
	a := models.NewAdmin{Permissions: models.DefaultPermissions()}
	fs.StringVar(&a.Username, "username", "", "username")
	fs.StringVar(&a.Email, "email", "", "email")
	fs.StringVar(&a.Password, "password", "", "initial password")
	noCreate := fs.Bool("no-create", false, "withhold "+string(models.PermCreateJobs))
	noDelete := fs.Bool("no-delete", false, "withhold "+string(models.PermDeleteJobs))
	noAnalytics := fs.Bool("no-analytics", false, "withhold "+string(models.PermViewAnalytics))
	manage := fs.Bool("manage-admins", false, "grant "+string(models.PermManageAdmins))
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}
	a.Permissions.CanCreateJobs = !*noCreate
	a.Permissions.CanDeleteJobs = !*noDelete
	a.Permissions.CanViewAnalytics = !*noAnalytics
	a.Permissions.CanManageAdmins = *manage

	created, err := e.Console.CreateAdmin(ctx, a)
	if err != nil {
		return err
	}
	success("Admin %s created", created.Username)
	return nil
}

func runAdminPerms(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("admin-perms", "[-grant p,...] [-revoke p,...] <id>")
	grant := fs.String("grant", "", "permissions to grant")
	revoke := fs.String("revoke", "", "permissions to revoke")
	rest, err := parse(fs, args, 1, 1)
	if err != nil {
		return err
	}

	admins, err := e.Console.Admins(ctx)
	if err != nil {
		return err
	}
	var perms *models.Permissions
	for i := range admins {
		if admins[i].ID == rest[0] {
			perms = &admins[i].Permissions
			break
		}
	}
	if perms == nil {
		return apperrors.NotFound("admin not found: "+rest[0], nil)
	}

	changes := []struct {
		names string
		value bool
	}{{*grant, true}, {*revoke, false}}
	for _, change := range changes {
		for _, name := range splitList(change.names) {
			if !perms.Set(models.Permission(name), change.value) {
				return apperrors.InvalidInput("unknown permission "+name, nil)
			}
		}
	}

	if err := e.Console.UpdateAdminPermissions(ctx, rest[0], *perms); err != nil {
		return err
	}
	success("Permissions updated")
	return nil
}

func runAdminStatus(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("admin-status", "<id> <active|inactive>"), args, 2, 2)
	if err != nil {
		return err
	}
	var active bool
	switch rest[1] {
	case "active":
		active = true
	case "inactive":
	default:
		return apperrors.InvalidInput("status must be active or inactive", nil)
	}

	if err := e.Console.SetAdminActive(ctx, rest[0], active); err != nil {
		return err
	}
	success("Admin %s is now %s", rest[0], rest[1])
	return nil
}

func runAdminDelete(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("admin-delete", "<id>"), args, 1, 1)
	if err != nil {
		return err
	}
	if err := e.Console.DeleteAdmin(ctx, rest[0]); err != nil {
		return err
	}
	success("Admin %s deleted", rest[0])
	return nil
}
