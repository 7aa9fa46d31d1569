package signup

import (
	"errors"
	"testing"
)

func TestApplyDoesNotMutateInput(t *testing.T) {
	form := FormState{FullName: "Jane Doe", Email: "jane@university.edu"}

	next := Apply(form, FieldCourse, "Computer Science")

	if form.College != "" || form.Course != "" {
		t.Fatalf("input form mutated: %+v", form)
	}
	if next.Course != "Computer Science" {
		t.Fatalf("course not applied: %+v", next)
	}
	if next.FullName != "Jane Doe" || next.Email != "jane@university.edu" {
		t.Fatalf("existing fields lost: %+v", next)
	}
}

func TestCompleteIdentityAdvances(t *testing.T) {
	flow := NewFlow("f1")

	next, err := CompleteIdentity(flow, MethodEmail, FormState{
		FullName: "Jane Doe",
		Email:    "jane@university.edu",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Stage != StageAcademic {
		t.Fatalf("stage = %d, want %d", next.Stage, StageAcademic)
	}
	if next.Form.Password != "secret123" {
		t.Fatal("password not carried into flow")
	}
}

func TestCompleteIdentityValidation(t *testing.T) {
	tests := []struct {
		name    string
		method  Method
		form    FormState
		wantErr error
	}{
		{
			name:    "missing name",
			method:  MethodEmail,
			form:    FormState{Email: "jane@uni.edu", Password: "secret123"},
			wantErr: ErrFullNameRequired,
		},
		{
			name:    "missing email",
			method:  MethodEmail,
			form:    FormState{FullName: "Jane", Password: "secret123"},
			wantErr: ErrEmailRequired,
		},
		{
			name:    "invalid email",
			method:  MethodEmail,
			form:    FormState{FullName: "Jane", Email: "not-an-email", Password: "secret123"},
			wantErr: ErrEmailInvalid,
		},
		{
			name:    "phone method requires phone",
			method:  MethodPhone,
			form:    FormState{FullName: "Jane", Password: "secret123"},
			wantErr: ErrPhoneRequired,
		},
		{
			name:    "short password",
			method:  MethodEmail,
			form:    FormState{FullName: "Jane", Email: "jane@uni.edu", Password: "abc"},
			wantErr: ErrPasswordTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := NewFlow("f1")
			next, err := CompleteIdentity(flow, tt.method, tt.form)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if next.Stage != StageIdentity {
				t.Fatalf("failed validation must not advance, stage = %d", next.Stage)
			}
		})
	}
}

func TestBackPreservesFields(t *testing.T) {
	flow := NewFlow("f1")
	flow, err := CompleteIdentity(flow, MethodEmail, FormState{
		FullName: "Jane Doe",
		Email:    "jane@university.edu",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}

	flow.Form = Apply(flow.Form, FieldCollege, "Engineering College")
	back := Back(flow)

	if back.Stage != StageIdentity {
		t.Fatalf("stage = %d, want %d", back.Stage, StageIdentity)
	}
	if back.Form.FullName != "Jane Doe" || back.Form.Email != "jane@university.edu" {
		t.Fatalf("identity fields lost: %+v", back.Form)
	}
	if back.Form.College != "Engineering College" {
		t.Fatalf("academic fields lost: %+v", back.Form)
	}
}

func TestCompleteAcademic(t *testing.T) {
	flow := NewFlow("f1")
	flow, err := CompleteIdentity(flow, MethodEmail, FormState{
		FullName: "Jane Doe",
		Email:    "jane@university.edu",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}

	merged, err := CompleteAcademic(flow, FormState{
		College:     "Engineering College",
		University:  "State University",
		Course:      "Computer Science",
		YearOfStudy: "3rd Year",
	})
	if err != nil {
		t.Fatalf("academic: %v", err)
	}
	if merged.Form.FullName != "Jane Doe" {
		t.Fatal("identity fields lost on merge")
	}
	if merged.Form.College != "Engineering College" || merged.Form.YearOfStudy != "3rd Year" {
		t.Fatalf("academic fields not merged: %+v", merged.Form)
	}
}

func TestCompleteAcademicWrongStage(t *testing.T) {
	flow := NewFlow("f1")

	_, err := CompleteAcademic(flow, FormState{
		College:     "Engineering College",
		University:  "State University",
		Course:      "Computer Science",
		YearOfStudy: "3",
	})
	if !errors.Is(err, ErrWrongStage) {
		t.Fatalf("err = %v, want %v", err, ErrWrongStage)
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"3rd Year", 3, false},
		{"1st year", 1, false},
		{" 2 ", 2, false},
		{"5", 5, false},
		{"0", 0, true},
		{"6", 0, true},
		{"final", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseYear(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseYear(%q) = %d, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseYear(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseYear(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
