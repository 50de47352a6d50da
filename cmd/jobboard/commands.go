package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"jobboard/internal/events"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type command struct {
	name    string
	args    string
	summary string
	options func() fx.Option
	run     func(ctx context.Context, e *env, args []string) error
}

func (c *command) wiring() fx.Option {
	if c.options == nil {
		return fx.Options()
	}
	return c.options()
}

var commands []*command

func init() {
	commands = []*command{
		{name: "login", args: "-email <email> [-password <password>]", summary: "sign in and store the session token", run: runLogin},
		{name: "logout", summary: "forget the stored session token", run: runLogout},
		{name: "whoami", summary: "show the signed-in admin and what they can do", run: runWhoami},
		{name: "profile", args: "[-username u] [-email e] [-current-password p -new-password p]", summary: "update your own profile", run: runProfile},
		{name: "setup", args: "-username u -email e -password p", summary: "create the main admin on a fresh install", run: runSetup},

		{name: "jobs", args: "[-keywords k] [-location l] [-role r] [-experience x] [-type t] [-query q] [-page n] [-admin [-tab t] [-search s] [-company c]]", summary: "list jobs", run: runJobs},
		{name: "job", args: "<id>", summary: "show one job", run: runJob},
		{name: "create", args: "[-file job.json] [job flags]", summary: "post a new job", run: runCreate},
		{name: "bulk", args: "<file.json>", summary: "post jobs from a {\"jobs\": [...]} file", run: runBulk},
		{name: "edit", args: "[-file job.json] [job flags] <id>", summary: "edit an active job", run: runEdit},
		{name: "status", args: "<id> <active|dump|inactive>", summary: "move a job to another status", run: runStatus},
		{name: "delete", args: "<id>...", summary: "delete one or more jobs", run: runDelete},
		{name: "dump", args: "[-page n]", summary: "list jobs waiting in dump", run: runDump},
		{name: "sweep", summary: "age jobs into dump and inactive now", run: runSweep},

		{name: "admins", summary: "list admins", run: runAdmins},
		{name: "admin-create", args: "-username u -email e -password p [-no-create] [-no-delete] [-no-analytics] [-manage-admins]", summary: "add an admin", run: runAdminCreate},
		{name: "admin-perms", args: "[-grant p,...] [-revoke p,...] <id>", summary: "change an admin's permissions", run: runAdminPerms},
		{name: "admin-status", args: "<id> <active|inactive>", summary: "activate or deactivate an admin", run: runAdminStatus},
		{name: "admin-delete", args: "<id>", summary: "remove an admin", run: runAdminDelete},

		{name: "analytics", args: "[-days n] [-job id]", summary: "show visit and click analytics", run: runAnalytics},
		{name: "export", args: "[-days n] [-format json|csv]", summary: "download the analytics export", run: runExport},
		{name: "archive", args: "[-days n]", summary: "store an analytics snapshot in ClickHouse", run: runArchive},
		{name: "migrate", summary: "apply pending ClickHouse migrations", run: runMigrate},

		{name: "audit", summary: "tail the audit event stream", options: auditWiring, run: waitForSignal},
		{name: "serve", summary: "serve the public job board and run the status sweeper", options: serveWiring, run: waitForSignal},
	}
}

func lookup(name string) (*command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: jobboard <command> [flags]")
	fmt.Fprintln(w)
	tw := newTable(w)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s\t%s\n", c.name, c.summary)
	}
	tw.Flush()
}

func newFlagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: jobboard %s %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses flags and checks the positional argument count.
func parse(fs *flag.FlagSet, args []string, minArgs, maxArgs int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) < minArgs || (maxArgs >= 0 && len(rest) > maxArgs) {
		fs.Usage()
		return nil, fmt.Errorf("%s: wrong number of arguments", fs.Name())
	}
	return rest, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// publish records an audit event for actions that do not go through the console.
func publish(ctx context.Context, e *env, action events.Action, actor, target string) {
	ev := events.NewAuditEvent(action, actor, target, nil)
	if err := e.Publisher.Publish(ctx, ev); err != nil {
		e.Logger.Warn("failed to publish audit event", zap.String("action", string(action)), zap.Error(err))
	}
}

func waitForSignal(ctx context.Context, e *env, _ []string) error {
	<-ctx.Done()
	e.Logger.Info("shutting down")
	return nil
}
