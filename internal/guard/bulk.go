package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"jobboard/internal/errors"
	"jobboard/internal/models"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

const envelopeSchema = `{
	"type": "object",
	"required": ["jobs"],
	"properties": {
		"jobs": {"type": "array"}
	}
}`

var envelope = gojsonschema.NewStringLoader(envelopeSchema)

// BulkEntry is one element of a bulk payload. Err is set when the entry could
// not be decoded or is missing required fields.
type BulkEntry struct {
	Index int
	Job   models.Job
	Err   string
}

// ParseBulk decodes a {"jobs": [...]} document. Entries are validated one by
// one so a bad entry never rejects the whole payload.
func ParseBulk(payload []byte) ([]BulkEntry, error) {
	if !json.Valid(payload) {
		return nil, errors.InvalidInput("Invalid JSON format", nil)
	}
	result, err := gojsonschema.Validate(envelope, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, errors.InvalidInput("Invalid JSON format", err)
	}
	if !result.Valid() {
		return nil, errors.InvalidInput(`JSON must contain a "jobs" array`, nil)
	}

	var doc struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.InvalidInput("Invalid JSON format", err)
	}

	entries := make([]BulkEntry, len(doc.Jobs))
	for i, raw := range doc.Jobs {
		entries[i].Index = i
		if err := json.Unmarshal(raw, &entries[i].Job); err != nil {
			entries[i].Err = "malformed job entry"
			continue
		}
		if err := Validate(&entries[i].Job); err != nil {
			entries[i].Err = err.Error()
		}
	}
	return entries, nil
}

// Bulk sends the valid entries in one request and merges the server's report
// with the entries rejected locally. Indexes in the result refer to entries.
func (g *Guard) Bulk(ctx context.Context, entries []BulkEntry) (*models.BulkResult, error) {
	var (
		send    []models.Job
		origin  []int
		invalid []models.BulkError
	)
	for _, e := range entries {
		if e.Err != "" {
			invalid = append(invalid, models.BulkError{Index: e.Index, Role: e.Job.Role, Message: e.Err})
			continue
		}
		send = append(send, e.Job)
		origin = append(origin, e.Index)
	}

	result := &models.BulkResult{Duplicates: []models.BulkDuplicate{}, Errors: []models.BulkError{}}
	if len(send) > 0 {
		remote, err := g.jobs.CreateBulk(ctx, send)
		if err != nil {
			return nil, err
		}
		result.Created = remote.Created
		result.Summary.Created = remote.Summary.Created
		for _, d := range remote.Duplicates {
			d.Index = remap(origin, d.Index)
			result.Duplicates = append(result.Duplicates, d)
		}
		for _, e := range remote.Errors {
			e.Index = remap(origin, e.Index)
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, invalid...)
	sort.SliceStable(result.Errors, func(i, j int) bool { return result.Errors[i].Index < result.Errors[j].Index })

	result.Summary.Total = len(entries)
	result.Summary.Duplicates = len(result.Duplicates)
	result.Summary.Errors = len(result.Errors)

	g.logger.Info("bulk upload finished",
		zap.Int("total", result.Summary.Total),
		zap.Int("created", result.Summary.Created),
		zap.Int("duplicates", result.Summary.Duplicates),
		zap.Int("errors", result.Summary.Errors),
		zap.Int("rejected_locally", len(invalid)))
	return result, nil
}

func remap(origin []int, i int) int {
	if i >= 0 && i < len(origin) {
		return origin[i]
	}
	return i
}

// Describe renders a one-line report such as "3 created, 1 duplicates, 2 failed".
func Describe(s models.BulkSummary) string {
	return fmt.Sprintf("%d created, %d duplicates, %d failed", s.Created, s.Duplicates, s.Errors)
}
