package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"jobboard/internal/console"
	apperrors "jobboard/internal/errors"
	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/render"
)

// jobFields maps job flags onto the fields they set.
var jobFields = []struct {
	flag  string
	usage string
	field func(*models.Job) *string
}{
	{"company", "company name", func(j *models.Job) *string { return &j.CompanyName }},
	{"logo", "company logo URL", func(j *models.Job) *string { return &j.CompanyLogo }},
	{"role", "role title", func(j *models.Job) *string { return &j.Role }},
	{"location", "location", func(j *models.Job) *string { return &j.Location }},
	{"experience", "experience, one of " + strings.Join(models.ExperienceOptions, ", "), func(j *models.Job) *string { return &j.Experience }},
	{"description", "description, HTML allowed", func(j *models.Job) *string { return &j.Description }},
	{"degree", "required degree", func(j *models.Job) *string { return &j.RequiredDegree }},
	{"type", "employment type, one of " + strings.Join(models.EmploymentTypes, ", "), func(j *models.Job) *string { return &j.EmploymentType }},
	{"link", "hiring link", func(j *models.Job) *string { return &j.HiringLink }},
	{"package", "estimated package", func(j *models.Job) *string { return &j.EstPackage }},
}

type jobFlags struct {
	fs       *flag.FlagSet
	file     *string
	descFile *string
	keywords *string
	suggest  *bool
	values   map[string]*string
}

func bindJobFlags(fs *flag.FlagSet) *jobFlags {
	f := &jobFlags{
		fs:       fs,
		file:     fs.String("file", "", "read the job from a JSON file; flags override its fields"),
		descFile: fs.String("description-file", "", "read the description from a file"),
		keywords: fs.String("keywords", "", "comma separated search keywords to add"),
		suggest:  fs.Bool("suggest-skills", false, "fill skills from well-known names in the description"),
		values:   make(map[string]*string, len(jobFields)),
	}
	for _, jf := range jobFields {
		f.values[jf.flag] = fs.String(jf.flag, "", jf.usage)
	}
	return f
}

// apply overlays the file and the flags that were set onto job.
func (f *jobFlags) apply(job *models.Job) error {
	if *f.file != "" {
		data, err := os.ReadFile(*f.file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *f.file, err)
		}
		if err := json.Unmarshal(data, job); err != nil {
			return apperrors.InvalidInput("Invalid JSON format", err)
		}
	}

	set := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	for _, jf := range jobFields {
		if set[jf.flag] {
			*jf.field(job) = *f.values[jf.flag]
		}
	}

	if *f.descFile != "" {
		data, err := os.ReadFile(*f.descFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *f.descFile, err)
		}
		job.Description = string(data)
	}
	for _, k := range splitList(*f.keywords) {
		job.AddKeyword(k)
	}
	if *f.suggest {
		suggested := render.SuggestSkills(job.Description)
		for _, category := range models.SkillCategories {
			for _, tag := range *suggested.Category(category) {
				job.Skills.Add(category, tag)
			}
		}
	}
	return nil
}

func runJobs(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("jobs", "[filters] [-page n] [-admin [-tab t] [-search s] [-company c]]")
	var filters listing.Filters
	fs.StringVar(&filters.Keywords, "keywords", "", "keywords")
	fs.StringVar(&filters.Location, "location", "", "location")
	fs.StringVar(&filters.Role, "role", "", "role")
	fs.StringVar(&filters.Experience, "experience", "", "experience")
	fs.StringVar(&filters.EmploymentType, "type", "", "employment type")
	rawQuery := fs.String("query", "", "shareable query string, e.g. role=Engineer&location=Remote")
	page := fs.Int("page", 1, "page number")
	admin := fs.Bool("admin", false, "list all jobs as an admin")
	tab := fs.String("tab", string(listing.TabActive), "admin tab: all, active, dump or inactive")
	search := fs.String("search", "", "admin search text")
	company := fs.String("company", "", "admin company filter")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	if *admin {
		return listAdminJobs(ctx, e, listing.Tab(*tab), listing.AdminFilters{
			Search:   *search,
			Company:  *company,
			Location: filters.Location,
		}, *page)
	}

	if *rawQuery != "" {
		seeded, err := listing.ParseFilters(strings.TrimPrefix(*rawQuery, "?"))
		if err != nil {
			return err
		}
		if err := overrideFilters(fs, &seeded); err != nil {
			return err
		}
		filters = seeded
	}

	l := listing.NewListing(e.Jobs, e.Logger, filters)
	snap, err := l.SetPage(ctx, *page)
	if err != nil {
		return err
	}

	printJobs(os.Stdout, snap.Jobs)
	printPager(os.Stdout, snap.Pagination, listing.PublicPageSize)
	if q := l.URLQuery(); q != "" {
		faintColor.Printf("share: ?%s\n", q)
	}
	return nil
}

// overrideFilters copies explicitly set filter flags over filters seeded
// from a query string.
func overrideFilters(fs *flag.FlagSet, filters *listing.Filters) error {
	set := map[string]string{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = f.Value.String() })
	for _, field := range listing.Fields {
		value, ok := set[fieldFlag(field)]
		if !ok {
			continue
		}
		if err := filters.Set(field, value); err != nil {
			return err
		}
	}
	return nil
}

func fieldFlag(field listing.Field) string {
	if field == listing.FieldEmploymentType {
		return "type"
	}
	return string(field)
}

func listAdminJobs(ctx context.Context, e *env, tab listing.Tab, filters listing.AdminFilters, page int) error {
	if err := e.Session.Require(models.PermCreateJobs); err != nil {
		return err
	}
	if !tab.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown tab %q", tab), nil)
	}

	t, err := listing.NewAdminTableAt(e.Jobs, e.Logger, tab, filters, page)
	if err != nil {
		return err
	}
	snap, err := t.Fetch(ctx)
	if err != nil {
		return err
	}

	c := snap.StatusCounts
	fmt.Printf("all %d  active %s  dump %s  inactive %s\n", c.All,
		successColor.Sprint(c.Active), warnColor.Sprint(c.Dump), faintColor.Sprint(c.Inactive))
	printJobs(os.Stdout, snap.Jobs)
	printPager(os.Stdout, snap.Pagination, listing.AdminPageSize)
	return nil
}

func runJob(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("job", "<id>"), args, 1, 1)
	if err != nil {
		return err
	}
	job, err := e.Jobs.Get(ctx, rest[0])
	if err != nil {
		return err
	}

	heading(fmt.Sprintf("%s at %s", job.Role, job.CompanyName))
	fmt.Printf("  location:    %s\n", job.Location)
	fmt.Printf("  experience:  %s\n", job.Experience)
	fmt.Printf("  type:        %s\n", orDash(job.EmploymentType))
	fmt.Printf("  degree:      %s\n", job.RequiredDegree)
	fmt.Printf("  package:     %s\n", orDash(job.EstPackage))
	fmt.Printf("  posted:      %s\n", formatDate(job.DatePosted))
	fmt.Printf("  apply:       %s\n", job.HiringLink)
	if job.Status != "" {
		fmt.Printf("  status:      %s\n", statusColor(job.Status).Sprint(job.Status))
	}
	if job.Status == models.StatusDump {
		now := time.Now()
		u := job.DumpUrgency(now)
		urgencyColor(u).Printf("  in dump %d days, inactive in %d days\n", job.DaysInDump(now), job.DaysUntilInactive(now))
	}
	if job.Analytics != nil {
		fmt.Printf("  views:       %d, clicks %d\n", job.Analytics.Views, job.Analytics.Clicks)
	}
	if len(job.Keywords) > 0 {
		fmt.Printf("  keywords:    %s\n", strings.Join(job.Keywords, ", "))
	}
	printSkills(os.Stdout, job.Skills)

	fmt.Println()
	fmt.Println(render.PlainText(job.Description))

	if e.Session.IsAuthenticated() {
		actions := console.Actions(e.Session, job)
		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = string(a)
		}
		faintColor.Printf("\nactions: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func runCreate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("create", "[-file job.json] [job flags]")
	jf := bindJobFlags(fs)
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	job := &models.Job{}
	if err := jf.apply(job); err != nil {
		return err
	}
	created, err := e.Console.CreateJob(ctx, job)
	if err != nil {
		return err
	}
	success("Created %s at %s (%s)", created.Role, created.CompanyName, created.ID)
	return nil
}

func runBulk(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("bulk", "<file.json>"), args, 1, 1)
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(rest[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", rest[0], err)
	}
	res, err := e.Console.BulkCreate(ctx, payload)
	if err != nil {
		return err
	}
	printBulkResult(os.Stdout, res)
	return nil
}

func runEdit(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("edit", "[-file job.json] [job flags] <id>")
	jf := bindJobFlags(fs)
	rest, err := parse(fs, args, 1, 1)
	if err != nil {
		return err
	}

	job, err := e.Jobs.Get(ctx, rest[0])
	if err != nil {
		return err
	}
	if err := jf.apply(job); err != nil {
		return err
	}
	updated, err := e.Console.UpdateJob(ctx, rest[0], job)
	if err != nil {
		return err
	}
	success("Updated %s at %s", updated.Role, updated.CompanyName)
	return nil
}

func runStatus(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("status", "<id> <active|dump|inactive>"), args, 2, 2)
	if err != nil {
		return err
	}
	status := models.JobStatus(rest[1])
	if err := e.Console.SetStatus(ctx, rest[0], status); err != nil {
		return err
	}
	success("Job %s is now %s", rest[0], status)
	return nil
}

func runDelete(ctx context.Context, e *env, args []string) error {
	ids, err := parse(newFlagSet("delete", "<id>..."), args, 1, -1)
	if err != nil {
		return err
	}
	if len(ids) == 1 {
		if err := e.Console.DeleteJob(ctx, ids[0]); err != nil {
			return err
		}
		success("Deleted %s", ids[0])
		return nil
	}

	res, err := e.Console.BulkDelete(ctx, ids)
	if err != nil {
		return err
	}
	if len(res.Deleted) > 0 {
		success("Deleted %d of %d jobs", len(res.Deleted), len(ids))
	}
	for _, f := range res.Failed {
		errorColor.Printf("  %s: %s\n", f.ID, describeError(f.Err))
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d deletions failed", len(res.Failed))
	}
	return nil
}

func runDump(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("dump", "[-page n]")
	page := fs.Int("page", 1, "page number")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}
	if err := e.Session.Require(models.PermCreateJobs); err != nil {
		return err
	}

	q := listing.NewDumpQueue(e.Jobs, e.Logger)
	snap, err := q.SetPage(ctx, *page)
	if err != nil {
		return err
	}
	faintColor.Printf("jobs move to inactive after %d days in dump\n", models.DumpDays)
	printDumpJobs(os.Stdout, snap.Jobs, time.Now())
	printPager(os.Stdout, snap.Pagination, listing.DumpPageSize)
	return nil
}

func runSweep(ctx context.Context, e *env, args []string) error {
	if _, err := parse(newFlagSet("sweep", ""), args, 0, 0); err != nil {
		return err
	}
	res, err := e.Console.Sweep(ctx)
	if err != nil {
		return err
	}
	success("%d moved to dump, %d moved to inactive", res.MovedToDump, res.MovedToInactive)
	return nil
}
