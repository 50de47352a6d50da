package api

import (
	"context"
	"net/http"

	"jobboard/internal/models"
)

type AdminAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Profile(ctx context.Context) (*models.Admin, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Create(ctx context.Context, admin models.NewAdmin) (*models.Admin, error)
	UpdatePermissions(ctx context.Context, id string, perms models.Permissions) error
	UpdateStatus(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	CreateMainAdmin(ctx context.Context, admin models.NewAdmin) (*models.Admin, error)
}

type adminAPI struct {
	c *Client
}

func NewAdminAPI(c *Client) AdminAPI {
	return &adminAPI{c: c}
}

type adminEnvelope struct {
	Admin *models.Admin `json:"admin"`
}

func (a *adminAPI) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := a.c.call(ctx, "admin.Login", http.MethodPost, "/admin/login", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *adminAPI) Profile(ctx context.Context) (*models.Admin, error) {
	var admin models.Admin
	if err := a.c.call(ctx, "admin.Profile", http.MethodGet, "/admin/profile", nil, nil, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (a *adminAPI) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Admin, error) {
	var env adminEnvelope
	if err := a.c.call(ctx, "admin.UpdateProfile", http.MethodPut, "/admin/profile", nil, update, &env); err != nil {
		return nil, err
	}
	return env.Admin, nil
}

func (a *adminAPI) List(ctx context.Context) ([]models.Admin, error) {
	var out struct {
		Admins []models.Admin `json:"admins"`
	}
	if err := a.c.call(ctx, "admin.List", http.MethodGet, "/admin/all", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Admins, nil
}

func (a *adminAPI) Create(ctx context.Context, admin models.NewAdmin) (*models.Admin, error) {
	var env adminEnvelope
	if err := a.c.call(ctx, "admin.Create", http.MethodPost, "/admin/register", nil, admin, &env); err != nil {
		return nil, err
	}
	return env.Admin, nil
}

func (a *adminAPI) UpdatePermissions(ctx context.Context, id string, perms models.Permissions) error {
	body := struct {
		Permissions models.Permissions `json:"permissions"`
	}{Permissions: perms}
	return a.c.call(ctx, "admin.UpdatePermissions", http.MethodPut, idPath("/admin/%s/permissions", id), nil, body, nil)
}

func (a *adminAPI) UpdateStatus(ctx context.Context, id string, active bool) error {
	body := struct {
		IsActive bool `json:"isActive"`
	}{IsActive: active}
	return a.c.call(ctx, "admin.UpdateStatus", http.MethodPut, idPath("/admin/%s/status", id), nil, body, nil)
}

func (a *adminAPI) Delete(ctx context.Context, id string) error {
	return a.c.call(ctx, "admin.Delete", http.MethodDelete, idPath("/admin/%s", id), nil, nil, nil)
}

func (a *adminAPI) CreateMainAdmin(ctx context.Context, admin models.NewAdmin) (*models.Admin, error) {
	var env adminEnvelope
	if err := a.c.call(ctx, "admin.CreateMainAdmin", http.MethodPost, "/admin/create-main-admin", nil, admin, &env); err != nil {
		return nil, err
	}
	return env.Admin, nil
}
