package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/client/upload"
)

// Upload submits a statement. With no arguments it prompts for each field,
// offering the values kept from a failed attempt as defaults.
//
//	upload <file.csv> <file_type> [project_id]
func (a *App) Upload(ctx context.Context, args []string) error {
	if !a.guard(ctx) {
		return nil
	}
	a.selector.NavigateToUpload()

	attempt, err := a.uploadAttempt(args)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Uploading...")
	out := a.form.Submit(ctx, attempt)
	renderUploadOutcome(a.out, out)

	switch out.Kind {
	case upload.Succeeded:
		fmt.Fprintln(a.out, "Type 'upload' to add another statement or 'goto dashboard' to see your numbers.")
	case upload.Failed:
		if !a.isLoggedIn() {
			a.settle(ctx)
		}
	}
	return out.Err
}

func (a *App) uploadAttempt(args []string) (upload.Attempt, error) {
	draft := a.form.Draft()
	if len(args) > 0 {
		at := upload.Attempt{File: args[0]}
		if len(args) > 1 {
			at.FileType = args[1]
		}
		if len(args) > 2 {
			at.ProjectID = args[2]
		}
		return at, nil
	}

	prompt := "Path of the CSV statement"
	if draft.File != "" {
		prompt += fmt.Sprintf(" (Enter keeps %s)", draft.File)
	}
	file, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return upload.Attempt{}, err
	}
	if file == "" {
		file = draft.File
	}

	fileType, err := getChoice(a.reader, "File type", models.SupportedFileTypes, draft.FileType, a.out)
	if err != nil {
		return upload.Attempt{}, err
	}

	project, err := getSimpleText(a.reader, "Project id (optional)", a.out)
	if err != nil {
		return upload.Attempt{}, err
	}
	if project == "" {
		project = draft.ProjectID
	}

	return upload.Attempt{File: file, FileType: fileType, ProjectID: project}, nil
}
