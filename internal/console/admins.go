package console

import (
	"context"
	"net/mail"
	"strings"

	"jobboard/internal/errors"
	"jobboard/internal/events"
	"jobboard/internal/models"
)

func (c *Console) Admins(ctx context.Context) ([]models.Admin, error) {
	if err := c.session.RequireMainAdmin(); err != nil {
		return nil, err
	}
	return c.admins.List(ctx)
}

func validateNewAdmin(a models.NewAdmin) error {
	var missing []string
	if strings.TrimSpace(a.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(a.Email) == "" {
		missing = append(missing, "email")
	}
	if a.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return errors.InvalidInput("Please fill in: "+strings.Join(missing, ", "), nil)
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return errors.InvalidInput("invalid email address", nil)
	}
	return nil
}

func (c *Console) CreateAdmin(ctx context.Context, a models.NewAdmin) (*models.Admin, error) {
	if err := c.session.RequireMainAdmin(); err != nil {
		return nil, err
	}
	if err := validateNewAdmin(a); err != nil {
		return nil, err
	}
	created, err := c.admins.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	target := a.Email
	if created != nil && created.ID != "" {
		target = created.ID
	}
	c.audit(ctx, events.ActionAdminCreate, target, map[string]interface{}{"username": a.Username})
	return created, nil
}

// target loads the admin with id and refuses main admins, which cannot be
// modified through the console.
func (c *Console) target(ctx context.Context, id string) (*models.Admin, error) {
	if err := c.session.RequireMainAdmin(); err != nil {
		return nil, err
	}
	admins, err := c.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		if admins[i].ID != id {
			continue
		}
		if admins[i].IsMainAdmin() {
			return nil, errors.Forbidden("the main admin cannot be modified", nil)
		}
		return &admins[i], nil
	}
	return nil, errors.NotFound("admin not found: "+id, nil)
}

func (c *Console) UpdateAdminPermissions(ctx context.Context, id string, perms models.Permissions) error {
	if _, err := c.target(ctx, id); err != nil {
		return err
	}
	if err := c.admins.UpdatePermissions(ctx, id, perms); err != nil {
		return err
	}
	c.audit(ctx, events.ActionAdminPermissions, id, map[string]interface{}{
		string(models.PermCreateJobs):    perms.CanCreateJobs,
		string(models.PermDeleteJobs):    perms.CanDeleteJobs,
		string(models.PermViewAnalytics): perms.CanViewAnalytics,
		string(models.PermManageAdmins):  perms.CanManageAdmins,
	})
	return nil
}

func (c *Console) SetAdminActive(ctx context.Context, id string, active bool) error {
	if _, err := c.target(ctx, id); err != nil {
		return err
	}
	if err := c.admins.UpdateStatus(ctx, id, active); err != nil {
		return err
	}
	c.audit(ctx, events.ActionAdminStatus, id, map[string]interface{}{"isActive": active})
	return nil
}

func (c *Console) DeleteAdmin(ctx context.Context, id string) error {
	if _, err := c.target(ctx, id); err != nil {
		return err
	}
	if err := c.admins.Delete(ctx, id); err != nil {
		return err
	}
	c.audit(ctx, events.ActionAdminDelete, id, nil)
	return nil
}
