// Package signup models the two-step signup sequence as an explicit value:
// an immutable form state advanced by a pure reducer, and a flow that moves
// between the identity and academic stages. Nothing here touches the network
// or the database, so stage transitions are unit-testable on their own.
package signup

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

type Stage int

const (
	StageIdentity Stage = 1 // collecting name, email/phone, password
	StageAcademic Stage = 2 // collecting college, university, course, year
)

type Method string

const (
	MethodEmail Method = "email"
	MethodPhone Method = "phone"
)

const MinPasswordLength = 6

var (
	ErrFullNameRequired   = errors.New("full name is required")
	ErrEmailRequired      = errors.New("email address is required")
	ErrEmailInvalid       = errors.New("email address is invalid")
	ErrPhoneRequired      = errors.New("phone number is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrCollegeRequired    = errors.New("college is required")
	ErrUniversityRequired = errors.New("university is required")
	ErrCourseRequired     = errors.New("course is required")
	ErrYearInvalid        = errors.New("year of study must be between 1 and 5")
	ErrWrongStage         = errors.New("signup step out of order")
)

// Field names a single form input across both stages.
type Field string

const (
	FieldFullName    Field = "full_name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldPassword    Field = "password"
	FieldCollege     Field = "college"
	FieldUniversity  Field = "university"
	FieldCourse      Field = "course"
	FieldYearOfStudy Field = "year_of_study"
)

// FormState accumulates every field entered across both stages. Values are
// kept as entered; parsing to storage types happens at commit time.
type FormState struct {
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Password    string   `json:"password"`
	College     string   `json:"college"`
	University  string   `json:"university"`
	Course      string   `json:"course"`
	YearOfStudy string   `json:"year_of_study"`
	Subjects    []string `json:"subjects"`
}

// Apply is the reducer: it returns a copy of the form with one field set.
// The receiver is never mutated.
func Apply(form FormState, field Field, value string) FormState {
	next := form
	switch field {
	case FieldFullName:
		next.FullName = value
	case FieldEmail:
		next.Email = value
	case FieldPhone:
		next.Phone = value
	case FieldPassword:
		next.Password = value
	case FieldCollege:
		next.College = value
	case FieldUniversity:
		next.University = value
	case FieldCourse:
		next.Course = value
	case FieldYearOfStudy:
		next.YearOfStudy = value
	}
	return next
}

// Flow is one in-progress signup, persisted between requests so stepping
// back never loses entered fields.
type Flow struct {
	ID        string    `json:"id"`
	Stage     Stage     `json:"stage"`
	Method    Method    `json:"method"`
	Form      FormState `json:"form"`
	CreatedAt time.Time `json:"created_at"`
}

func NewFlow(id string) Flow {
	return Flow{
		ID:        id,
		Stage:     StageIdentity,
		Method:    MethodEmail,
		CreatedAt: time.Now(),
	}
}

// CompleteIdentity validates the stage-1 fields and advances to the academic
// stage. It performs no remote calls. On error the flow is returned unchanged.
func CompleteIdentity(f Flow, method Method, form FormState) (Flow, error) {
	if f.Stage != StageIdentity {
		return f, ErrWrongStage
	}
	if strings.TrimSpace(form.FullName) == "" {
		return f, ErrFullNameRequired
	}

	switch method {
	case MethodPhone:
		if strings.TrimSpace(form.Phone) == "" {
			return f, ErrPhoneRequired
		}
	default:
		method = MethodEmail
		email := strings.TrimSpace(form.Email)
		if email == "" {
			return f, ErrEmailRequired
		}
		if !strings.Contains(email, "@") {
			return f, ErrEmailInvalid
		}
	}

	if len(form.Password) < MinPasswordLength {
		return f, ErrPasswordTooShort
	}

	next := f
	next.Stage = StageAcademic
	next.Method = method
	next.Form.FullName = form.FullName
	next.Form.Email = strings.TrimSpace(form.Email)
	next.Form.Phone = strings.TrimSpace(form.Phone)
	next.Form.Password = form.Password
	return next, nil
}

// Back returns to the identity stage. Every field entered so far survives.
func Back(f Flow) Flow {
	next := f
	next.Stage = StageIdentity
	return next
}

// CompleteAcademic validates the stage-2 fields and merges them into the
// form. The flow stays at the academic stage; the caller runs the commit
// sequence and discards the flow only after it succeeds.
func CompleteAcademic(f Flow, form FormState) (Flow, error) {
	if f.Stage != StageAcademic {
		return f, ErrWrongStage
	}
	if strings.TrimSpace(form.College) == "" {
		return f, ErrCollegeRequired
	}
	if strings.TrimSpace(form.University) == "" {
		return f, ErrUniversityRequired
	}
	if strings.TrimSpace(form.Course) == "" {
		return f, ErrCourseRequired
	}
	if _, err := ParseYear(form.YearOfStudy); err != nil {
		return f, err
	}

	next := f
	next.Form.College = form.College
	next.Form.University = form.University
	next.Form.Course = form.Course
	next.Form.YearOfStudy = form.YearOfStudy
	return next, nil
}

// ParseYear extracts the year of study from the selected option. The value
// may be a bare digit ("3") or a label ("3rd Year"); only the leading digits
// count, and the result must be 1 through 5.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)

	n := 0
	seen := false
	for _, r := range s {
		if !unicode.IsDigit(r) {
			break
		}
		n = n*10 + int(r-'0')
		seen = true
	}

	if !seen || n < 1 || n > 5 {
		return 0, ErrYearInvalid
	}
	return n, nil
}
