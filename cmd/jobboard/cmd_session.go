package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"jobboard/internal/console"
	apperrors "jobboard/internal/errors"
	"jobboard/internal/events"
	"jobboard/internal/models"
)

func runLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login", "-email <email> [-password <password>]")
	email := fs.String("email", "", "admin email")
	password := fs.String("password", os.Getenv("JOBBOARD_PASSWORD"), "password (defaults to $JOBBOARD_PASSWORD, else read from stdin)")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}
	if *email == "" {
		return stderrors.New("-email is required")
	}
	if *password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	res := e.Session.Login(ctx, *email, *password)
	if !res.Success {
		return stderrors.New(res.Message)
	}
	publish(ctx, e, events.ActionLogin, res.Admin.Username, res.Admin.ID)
	success("Signed in as %s (%s)", res.Admin.Username, res.Admin.Role)
	return nil
}

func runLogout(ctx context.Context, e *env, args []string) error {
	if _, err := parse(newFlagSet("logout", ""), args, 0, 0); err != nil {
		return err
	}
	if a := e.Session.Admin(); a != nil {
		publish(ctx, e, events.ActionLogout, a.Username, a.ID)
	}
	e.Session.Logout()
	success("Signed out")
	return nil
}

func runWhoami(_ context.Context, e *env, args []string) error {
	if _, err := parse(newFlagSet("whoami", ""), args, 0, 0); err != nil {
		return err
	}
	if !e.Session.IsAuthenticated() {
		return apperrors.Unauthorized("not logged in", nil)
	}

	a := e.Session.Admin()
	heading(a.Username)
	fmt.Printf("  email:   %s\n", a.Email)
	fmt.Printf("  role:    %s\n", a.Role)
	if a.LastLogin != nil {
		fmt.Printf("  last login: %s\n", a.LastLogin.Local().Format("2006-01-02 15:04"))
	}

	fmt.Println()
	heading("Permissions")
	for _, p := range models.AllPermissions {
		mark := faintColor.Sprint("no")
		if e.Session.HasPermission(p) {
			mark = successColor.Sprint("yes")
		}
		fmt.Printf("  %-17s %s\n", p, mark)
	}

	fmt.Println()
	heading("Sections")
	for _, item := range console.Navigation(e.Session) {
		fmt.Printf("  %-14s %s\n", item.Name, faintColor.Sprint(item.Path))
	}

	if actions := console.ToolbarActions(e.Session); len(actions) > 0 {
		names := make([]string, len(actions))
		for i, act := range actions {
			names[i] = string(act)
		}
		fmt.Printf("\nActions: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func runProfile(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("profile", "[-username u] [-email e] [-current-password p -new-password p]")
	username := fs.String("username", "", "new username")
	email := fs.String("email", "", "new email")
	current := fs.String("current-password", "", "current password, required to change it")
	next := fs.String("new-password", "", "new password")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	var update models.ProfileUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "username":
			update.Username = username
		case "email":
			update.Email = email
		case "current-password":
			update.CurrentPassword = current
		case "new-password":
			update.NewPassword = next
		}
	})
	if update == (models.ProfileUpdate{}) {
		return stderrors.New("nothing to update")
	}
	if update.NewPassword != nil && update.CurrentPassword == nil {
		return stderrors.New("-current-password is required to change the password")
	}

	res := e.Session.UpdateProfile(ctx, update)
	if !res.Success {
		return stderrors.New(res.Message)
	}
	publish(ctx, e, events.ActionProfileUpdate, res.Admin.Username, res.Admin.ID)
	success("Profile updated")
	return nil
}

func runSetup(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("setup", "-username u -email e -password p")
	var a models.NewAdmin
	fs.StringVar(&a.Username, "username", "", "main admin username")
	fs.StringVar(&a.Email, "email", "", "main admin email")
	fs.StringVar(&a.Password, "password", "", "main admin password")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}
	if a.Username == "" || a.Email == "" || a.Password == "" {
		return stderrors.New("-username, -email and -password are required")
	}

	created, err := e.Admins.CreateMainAdmin(ctx, a)
	if err != nil {
		return err
	}
	publish(ctx, e, events.ActionAdminCreate, "setup", created.ID)
	success("Main admin %s created, run `jobboard login -email %s`", created.Username, created.Email)
	return nil
}
