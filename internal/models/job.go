package models

import (
	"math"
	"strings"
	"time"
)

type JobStatus string

const (
	StatusActive   JobStatus = "active"
	StatusDump     JobStatus = "dump"
	StatusInactive JobStatus = "inactive"
)

// Valid reports whether s is one of the three lifecycle states.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDump, StatusInactive:
		return true
	}
	return false
}

const (
	EmploymentFullTime   = "Full-Time"
	EmploymentPartTime   = "Part-Time"
	EmploymentContract   = "Contract"
	EmploymentInternship = "Internship"
	EmploymentFreelance  = "Freelance"
)

var EmploymentTypes = []string{
	EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentFreelance,
}

var ExperienceOptions = []string{
	"0-1", "1-2", "2-3", "3+", "4+", "5+", "6+",
	"intern", "2026 passout", "2025 passout", "2027 passout",
}

// Lifecycle thresholds applied by the server's status sweep.
const (
	ActiveDays = 7
	DumpDays   = 30
)

type Skills struct {
	Languages    []string `json:"languages"`
	Technologies []string `json:"technologies"`
	Frameworks   []string `json:"frameworks"`
	Databases    []string `json:"databases"`
	Tools        []string `json:"tools"`
	Others       []string `json:"others"`
}

// SkillCategories lists the fixed skill categories in display order.
var SkillCategories = []string{"languages", "technologies", "frameworks", "databases", "tools", "others"}

// Category returns a pointer to the tag list for the named category, or nil.
func (s *Skills) Category(name string) *[]string {
	switch name {
	case "languages":
		return &s.Languages
	case "technologies":
		return &s.Technologies
	case "frameworks":
		return &s.Frameworks
	case "databases":
		return &s.Databases
	case "tools":
		return &s.Tools
	case "others":
		return &s.Others
	}
	return nil
}

// Add appends tag to category unless it is blank, already present, or the
// category is unknown.
func (s *Skills) Add(category, tag string) bool {
	list := s.Category(category)
	if list == nil {
		return false
	}
	var added bool
	*list, added = appendUnique(*list, tag)
	return added
}

type JobAnalytics struct {
	Views  int `json:"views"`
	Clicks int `json:"clicks"`
}

type Job struct {
	ID             string        `json:"_id,omitempty"`
	CompanyName    string        `json:"companyName"`
	CompanyLogo    string        `json:"companyLogo,omitempty"`
	Role           string        `json:"role"`
	Location       string        `json:"location"`
	Experience     string        `json:"experience"`
	Description    string        `json:"description"`
	RequiredDegree string        `json:"requiredDegree"`
	EmploymentType string        `json:"employmentType"`
	HiringLink     string        `json:"hiringLink"`
	EstPackage     string        `json:"estPackage,omitempty"`
	Skills         Skills        `json:"skills"`
	Keywords       []string      `json:"keywords"`
	DatePosted     *time.Time    `json:"datePosted,omitempty"`
	Status         JobStatus     `json:"status,omitempty"`
	MovedToDumpAt  *time.Time    `json:"movedToDumpAt,omitempty"`
	Analytics      *JobAnalytics `json:"analytics,omitempty"`
}

// FillDefaults replaces nil keyword and skill lists with empty ones so they
// encode as [] rather than null.
func (j *Job) FillDefaults() {
	if j.Keywords == nil {
		j.Keywords = []string{}
	}
	for _, category := range SkillCategories {
		if list := j.Skills.Category(category); *list == nil {
			*list = []string{}
		}
	}
}

// AddKeyword appends a trimmed, non-duplicate search keyword.
func (j *Job) AddKeyword(keyword string) bool {
	var added bool
	j.Keywords, added = appendUnique(j.Keywords, keyword)
	return added
}

// JobSummary is the part of a job surfaced when a hiring link conflicts.
type JobSummary struct {
	ID          string     `json:"_id"`
	Role        string     `json:"role"`
	CompanyName string     `json:"companyName"`
	Location    string     `json:"location,omitempty"`
	DatePosted  *time.Time `json:"datePosted,omitempty"`
}

func (j *Job) Summary() JobSummary {
	return JobSummary{ID: j.ID, Role: j.Role, CompanyName: j.CompanyName, Location: j.Location, DatePosted: j.DatePosted}
}

type DumpUrgency string

const (
	UrgencyNormal   DumpUrgency = "normal"
	UrgencyWarning  DumpUrgency = "warning"
	UrgencyCritical DumpUrgency = "critical"
)

// DaysInDump returns whole days since the job entered dump, 0 if it never did.
func (j *Job) DaysInDump(now time.Time) int {
	if j.MovedToDumpAt == nil {
		return 0
	}
	return int(math.Floor(now.Sub(*j.MovedToDumpAt).Hours() / 24))
}

// DaysUntilInactive returns the days left before the sweep deactivates a dumped job.
func (j *Job) DaysUntilInactive(now time.Time) int {
	left := DumpDays - j.DaysInDump(now)
	if left < 0 {
		return 0
	}
	return left
}

func (j *Job) DumpUrgency(now time.Time) DumpUrgency {
	days := j.DaysInDump(now)
	switch {
	case days >= 25:
		return UrgencyCritical
	case days >= 15:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalJobs   int  `json:"totalJobs"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type StatusCounts struct {
	All      int `json:"all"`
	Active   int `json:"active"`
	Dump     int `json:"dump"`
	Inactive int `json:"inactive"`
}

type JobPage struct {
	Jobs         []Job         `json:"jobs"`
	Pagination   Pagination    `json:"pagination"`
	StatusCounts *StatusCounts `json:"statusCounts,omitempty"`
}

type FilterOptions struct {
	Roles             []string `json:"roles"`
	Locations         []string `json:"locations"`
	Companies         []string `json:"companies"`
	ExperienceOptions []string `json:"experienceOptions"`
	EmploymentTypes   []string `json:"employmentTypes"`
}

type DuplicateCheck struct {
	IsDuplicate bool        `json:"isDuplicate"`
	ExistingJob *JobSummary `json:"existingJob,omitempty"`
}

type BulkSummary struct {
	Total      int `json:"total"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

type BulkDuplicate struct {
	Index       int         `json:"index"`
	HiringLink  string      `json:"hiringLink"`
	ExistingJob *JobSummary `json:"existingJob,omitempty"`
}

type BulkError struct {
	Index   int    `json:"index"`
	Role    string `json:"role,omitempty"`
	Message string `json:"error"`
}

type BulkResult struct {
	Summary    BulkSummary     `json:"summary"`
	Created    []Job           `json:"created,omitempty"`
	Duplicates []BulkDuplicate `json:"duplicates"`
	Errors     []BulkError     `json:"errors"`
}

type SweepResult struct {
	MovedToDump     int `json:"movedToDump"`
	MovedToInactive int `json:"movedToInactive"`
}

func appendUnique(list []string, value string) ([]string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return list, false
	}
	for _, existing := range list {
		if existing == value {
			return list, false
		}
	}
	return append(list, value), true
}
