package models

// UploadRequest is one multipart statement upload.
type UploadRequest struct {
	FileName  string
	Content   []byte
	FileType  string
	ProjectID string
}

// UploadResult is the body of a successful upload. Only Message is relied
// upon; the counters are reported when present.
type UploadResult struct {
	Message            string `json:"message"`
	FileName           string `json:"filename,omitempty"`
	FileType           string `json:"file_type,omitempty"`
	ProjectID          string `json:"project_id,omitempty"`
	TransactionsParsed *int   `json:"transactions_parsed,omitempty"`
	TransactionsSaved  *int   `json:"transactions_saved,omitempty"`
}

// SupportedFileTypes lists the statement formats the backend can parse.
var SupportedFileTypes = []string{
	"chase_checking",
	"chase_credit",
	"stripe",
	"paypal",
	"invoice",
	"freshbooks",
	"clockify",
	"toggl",
}
