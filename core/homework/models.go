package homework

import (
	"io"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Remote collections.
const (
	Collection            = "homeworks"
	SubmissionsCollection = "submissions"
)

// Submission lifecycle.
const (
	StatusPending   = "PENDING"
	StatusSubmitted = "SUBMITTED"
	StatusChecked   = "CHECKED"
)

type (
	// Homework is an assignment published for a tenant and grade.
	Homework struct {
		ID          string    `json:"id"`
		Tenant      string    `json:"tenant_id"`
		Grade       int       `json:"grade"`
		Subject     string    `json:"subject"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		// DueDate is stored as an unvalidated string; existing documents
		// carry free-form values.
		DueDate   string    `json:"due_date"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Submission is the single record per (homework, student). Resubmission
	// updates this record rather than adding another, clearing any prior
	// teacher feedback.
	Submission struct {
		ID             string      `json:"id"`
		HomeworkID     string      `json:"homework_id"`
		StudentID      string      `json:"student_id"`
		Tenant         string      `json:"tenant_id"`
		FileURL        string      `json:"file_url"`
		Status         string      `json:"status"`
		TeacherComment null.String `json:"teacher_comment,omitempty"`
		TeacherFile    null.String `json:"teacher_file,omitempty"`
		SubmittedAt    time.Time   `json:"submitted_at"`
	}

	// LocalFile is a picked, not-yet-uploaded binary asset.
	LocalFile struct {
		Name        string
		ContentType string
		Data        io.Reader
	}

	// Draft holds the in-progress submission. Nothing is persisted until
	// Submit; on failure the draft stays intact for a manual retry.
	Draft struct {
		HomeworkID string `json:"homework_id" validate:"required"`
		File       *LocalFile
	}
)

func (d *Draft) Validate() error {
	d.HomeworkID = core.CleanString(d.HomeworkID)
	if err := core.Validate.Struct(d); err != nil {
		return err
	}
	if d.File == nil || d.File.Name == "" || d.File.Data == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a file is required"})
	}
	return nil
}

// clear drops the draft payload after a successful submit.
func (d *Draft) clear() {
	d.File = nil
}

// SubmissionID is the natural composite key: one record per homework per
// student.
func SubmissionID(homeworkID, studentID string) string {
	return homeworkID + "_" + studentID
}

func FromDocument(doc core.Document) Homework {
	hw := Homework{
		ID:          doc.ID,
		Tenant:      core.DocString(doc.Fields, "tenantId"),
		Grade:       core.DocInt(doc.Fields, "grade"),
		Subject:     core.DocString(doc.Fields, "subject"),
		Title:       core.DocString(doc.Fields, "title"),
		Description: core.DocString(doc.Fields, "description"),
		DueDate:     core.DocString(doc.Fields, "dueDate"),
	}
	if ts, ok := core.DocTime(doc.Fields["createdAt"]); ok {
		hw.CreatedAt = ts
	}
	return hw
}

func SubmissionFromDocument(doc core.Document) Submission {
	sub := Submission{
		ID:         doc.ID,
		HomeworkID: core.DocString(doc.Fields, "homeworkId"),
		StudentID:  core.DocString(doc.Fields, "studentId"),
		Tenant:     core.DocString(doc.Fields, "tenantId"),
		FileURL:    core.DocString(doc.Fields, "fileUrl"),
		Status:     core.DocString(doc.Fields, "status"),
	}
	if c := core.DocString(doc.Fields, "teacherComment"); c != "" {
		sub.TeacherComment = null.StringFrom(c)
	}
	if f := core.DocString(doc.Fields, "teacherFile"); f != "" {
		sub.TeacherFile = null.StringFrom(f)
	}
	if ts, ok := core.DocTime(doc.Fields["submittedAt"]); ok {
		sub.SubmittedAt = ts
	}
	return sub
}
