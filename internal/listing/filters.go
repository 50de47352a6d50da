package listing

import (
	"net/url"

	"jobboard/internal/errors"

	"github.com/google/go-querystring/query"
)

// Field names a public listing filter. The names double as URL parameters.
type Field string

const (
	FieldKeywords       Field = "keywords"
	FieldLocation       Field = "location"
	FieldRole           Field = "role"
	FieldExperience     Field = "experience"
	FieldEmploymentType Field = "employmentType"
)

var Fields = []Field{FieldKeywords, FieldLocation, FieldRole, FieldExperience, FieldEmploymentType}

// Filters is the public listing criteria. An empty field means no constraint.
type Filters struct {
	Keywords       string `url:"keywords,omitempty" json:"keywords"`
	Location       string `url:"location,omitempty" json:"location"`
	Role           string `url:"role,omitempty" json:"role"`
	Experience     string `url:"experience,omitempty" json:"experience"`
	EmploymentType string `url:"employmentType,omitempty" json:"employmentType"`
}

// ParseFilters seeds filters from a URL query string. Unknown parameters are
// ignored.
func ParseFilters(rawQuery string) (Filters, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Filters{}, errors.InvalidInput("parsing query string", err)
	}
	return FiltersFromValues(values), nil
}

func FiltersFromValues(values url.Values) Filters {
	return Filters{
		Keywords:       values.Get(string(FieldKeywords)),
		Location:       values.Get(string(FieldLocation)),
		Role:           values.Get(string(FieldRole)),
		Experience:     values.Get(string(FieldExperience)),
		EmploymentType: values.Get(string(FieldEmploymentType)),
	}
}

// Encode returns the shareable query string. Empty fields are left out.
func (f Filters) Encode() string {
	values, err := query.Values(f)
	if err != nil {
		return ""
	}
	return values.Encode()
}

func (f Filters) Get(field Field) string {
	switch field {
	case FieldKeywords:
		return f.Keywords
	case FieldLocation:
		return f.Location
	case FieldRole:
		return f.Role
	case FieldExperience:
		return f.Experience
	case FieldEmploymentType:
		return f.EmploymentType
	}
	return ""
}

func (f *Filters) Set(field Field, value string) error {
	switch field {
	case FieldKeywords:
		f.Keywords = value
	case FieldLocation:
		f.Location = value
	case FieldRole:
		f.Role = value
	case FieldExperience:
		f.Experience = value
	case FieldEmploymentType:
		f.EmploymentType = value
	default:
		return errors.InvalidInput("unknown filter: "+string(field), nil)
	}
	return nil
}

func (f Filters) IsZero() bool {
	return f == Filters{}
}
