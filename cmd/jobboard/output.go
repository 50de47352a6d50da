package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	apperrors "jobboard/internal/errors"
	"jobboard/internal/events"
	"jobboard/internal/guard"
	"jobboard/internal/listing"
	"jobboard/internal/models"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen)
	headerColor  = color.New(color.FgCyan, color.Bold)
	warnColor    = color.New(color.FgYellow)
	faintColor   = color.New(color.Faint)
)

func printError(err error) {
	errorColor.Fprintln(os.Stderr, "✗ "+describeError(err))
}

func success(format string, args ...interface{}) {
	successColor.Printf("✓ "+format+"\n", args...)
}

func heading(text string) {
	headerColor.Println(text)
}

// describeError renders err as the single line shown to the user.
func describeError(err error) string {
	var conflict *guard.ConflictError
	if stderrors.As(err, &conflict) {
		if conflict.Existing == nil {
			return conflict.Error()
		}
		ex := conflict.Existing
		var details []string
		if ex.Location != "" {
			details = append(details, ex.Location)
		}
		details = append(details, "posted "+formatDate(ex.DatePosted))
		if ex.ID != "" {
			details = append(details, "id "+ex.ID)
		}
		return fmt.Sprintf("%s (%s)", conflict.Error(), strings.Join(details, ", "))
	}

	var de *apperrors.DomainError
	if !stderrors.As(err, &de) {
		return err.Error()
	}
	switch {
	case de.StatusCode == http.StatusUnauthorized:
		return "session expired, run `jobboard login`"
	case de.Type == apperrors.ErrTypeUnauthorized:
		return de.Message + ", run `jobboard login`"
	case de.Type == apperrors.ErrTypeUnavailable && de.StatusCode == 0:
		return "job board API is unreachable"
	}

	fallback := de.Message
	if de.StatusCode == 0 && de.Err != nil {
		fallback = de.Message + ": " + de.Err.Error()
	}
	return apperrors.Message(err, fallback)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func statusColor(status models.JobStatus) *color.Color {
	switch status {
	case models.StatusActive:
		return successColor
	case models.StatusDump:
		return warnColor
	}
	return faintColor
}

func urgencyColor(u models.DumpUrgency) *color.Color {
	switch u {
	case models.UrgencyCritical:
		return errorColor
	case models.UrgencyWarning:
		return warnColor
	}
	return faintColor
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func printJobs(w io.Writer, jobs []models.Job) {
	if len(jobs) == 0 {
		faintColor.Fprintln(w, "No jobs found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tROLE\tCOMPANY\tLOCATION\tEXPERIENCE\tTYPE\tPOSTED\tSTATUS")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.Role, j.CompanyName, j.Location, j.Experience,
			orDash(j.EmploymentType), formatDate(j.DatePosted),
			statusColor(j.Status).Sprint(orDash(string(j.Status))))
	}
	tw.Flush()
}

func printDumpJobs(w io.Writer, jobs []models.Job, now time.Time) {
	if len(jobs) == 0 {
		faintColor.Fprintln(w, "Dump is empty")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tROLE\tCOMPANY\tIN DUMP\tINACTIVE IN\tURGENCY")
	for _, j := range jobs {
		u := j.DumpUrgency(now)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dd\t%dd\t%s\n",
			j.ID, j.Role, j.CompanyName, j.DaysInDump(now), j.DaysUntilInactive(now),
			urgencyColor(u).Sprint(string(u)))
	}
	tw.Flush()
}

// printPager prints "Showing X to Y of Z" and the page-number window.
func printPager(w io.Writer, p models.Pagination, pageSize int) {
	from, to := listing.Range(p.CurrentPage, pageSize, p.TotalJobs)
	fmt.Fprintf(w, "Showing %d to %d of %d\n", from, to, p.TotalJobs)

	controls := listing.NewControls(p)
	if len(controls.Pages) == 0 {
		return
	}
	parts := make([]string, 0, len(controls.Pages)+2)
	if controls.PrevEnabled {
		parts = append(parts, "‹ prev")
	}
	for _, n := range controls.Pages {
		if n == controls.Current {
			parts = append(parts, headerColor.Sprintf("[%d]", n))
		} else {
			parts = append(parts, fmt.Sprint(n))
		}
	}
	if controls.NextEnabled {
		parts = append(parts, "next ›")
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}

func printSkills(w io.Writer, s models.Skills) {
	for _, category := range models.SkillCategories {
		if tags := *s.Category(category); len(tags) > 0 {
			fmt.Fprintf(w, "  %-13s %s\n", category+":", strings.Join(tags, ", "))
		}
	}
}

func printBulkResult(w io.Writer, res *models.BulkResult) {
	success("%s", guard.Describe(res.Summary))
	for _, d := range res.Duplicates {
		line := fmt.Sprintf("  #%d duplicate %s", d.Index+1, d.HiringLink)
		if d.ExistingJob != nil {
			line += fmt.Sprintf(" (existing: %s at %s)", d.ExistingJob.Role, d.ExistingJob.CompanyName)
		}
		warnColor.Fprintln(w, line)
	}
	for _, e := range res.Errors {
		errorColor.Fprintf(w, "  #%d %s: %s\n", e.Index+1, orDash(e.Role), e.Message)
	}
}

func printAuditEvent(_ context.Context, ev events.AuditEvent) {
	line := fmt.Sprintf("%s  %-18s %-12s %s",
		ev.At.Local().Format(time.RFC3339), ev.Action, orDash(ev.Actor), ev.Target)
	if len(ev.Detail) > 0 {
		line += faintColor.Sprintf("  %v", ev.Detail)
	}
	fmt.Println(line)
}
