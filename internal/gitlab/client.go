// Package gitlab provides functionality for interacting with the GitLab API.
package gitlab

import (
	"context"
	"fmt"
	"log/slog"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/sevigo/merge-warden/internal/core"
)

// Client defines a set of operations for interacting with the source
// control host, focusing on merge requests, comments, and labels.
//
//go:generate mockgen -destination=../../mocks/mock_gitlab_client.go -package=mocks . Client
type Client interface {
	GetMergeRequest(ctx context.Context, projectID, mrIID int) (*core.MergeRequest, error)
	GetMergeRequestDiff(ctx context.Context, projectID, mrIID int) ([]core.FileDiff, error)
	PostComment(ctx context.Context, projectID, mrIID int, comment core.Comment) error
	PostSummaryNote(ctx context.Context, projectID, mrIID int, body string) error
	UpdateLabels(ctx context.Context, projectID, mrIID int, labels []string) error
}

type gitLabClient struct {
	gl     *gitlab.Client
	host   string
	logger *slog.Logger
}

// NewClient wraps the official GitLab client to provide a focused,
// testable interface for application-specific host operations.
func NewClient(baseURL, token string, logger *slog.Logger) (Client, error) {
	gl, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &gitLabClient{gl: gl, host: baseURL, logger: logger}, nil
}

// GetMergeRequest retrieves a single merge request by its project-scoped iid.
func (g *gitLabClient) GetMergeRequest(ctx context.Context, projectID, mrIID int) (*core.MergeRequest, error) {
	mr, _, err := g.gl.MergeRequests.GetMergeRequest(projectID, mrIID, nil, gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to get merge request", "project_id", projectID, "mr_iid", mrIID, "error", err)
		return nil, err
	}

	result := &core.MergeRequest{
		ID:           mr.ID,
		ProjectID:    mr.ProjectID,
		IID:          mr.IID,
		Title:        mr.Title,
		Description:  mr.Description,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		State:        mr.State,
		WebURL:       mr.WebURL,
	}
	if mr.CreatedAt != nil {
		result.CreatedAt = *mr.CreatedAt
	}
	if mr.UpdatedAt != nil {
		result.UpdatedAt = *mr.UpdatedAt
	}
	if mr.Author != nil {
		result.AuthorID = mr.Author.ID
		result.AuthorUsername = mr.Author.Username
		result.AuthorEmail = g.resolveAuthorEmail(ctx, mr.Author.ID, mr.Author.Username)
	}

	return result, nil
}

// resolveAuthorEmail looks up the author's email. The host only exposes
// emails the author has made public, so the lookup falls back to a
// noreply address keyed by username to keep rating updates consistent.
func (g *gitLabClient) resolveAuthorEmail(ctx context.Context, authorID int, username string) string {
	user, _, err := g.gl.Users.GetUser(authorID, gitlab.GetUsersOptions{}, gitlab.WithContext(ctx))
	if err == nil {
		if user.Email != "" {
			return user.Email
		}
		if user.PublicEmail != "" {
			return user.PublicEmail
		}
	} else {
		g.logger.Debug("failed to look up merge request author", "author_id", authorID, "error", err)
	}

	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s@users.noreply.gitlab.local", username)
}

// GetMergeRequestDiff retrieves the per-file diffs of a merge request.
// It handles pagination to ensure all changed files are fetched; the
// host-provided order is preserved.
func (g *gitLabClient) GetMergeRequestDiff(ctx context.Context, projectID, mrIID int) ([]core.FileDiff, error) {
	var allDiffs []core.FileDiff
	opts := &gitlab.ListMergeRequestDiffsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}

	for {
		diffs, resp, err := g.gl.MergeRequests.ListMergeRequestDiffs(projectID, mrIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			g.logger.Error("failed to list merge request diffs", "project_id", projectID, "mr_iid", mrIID, "error", err)
			return nil, err
		}

		for _, diff := range diffs {
			allDiffs = append(allDiffs, core.FileDiff{
				OldPath:     diff.OldPath,
				NewPath:     diff.NewPath,
				Diff:        diff.Diff,
				NewFile:     diff.NewFile,
				DeletedFile: diff.DeletedFile,
				RenamedFile: diff.RenamedFile,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	g.logger.Debug("retrieved merge request diffs", "project_id", projectID, "mr_iid", mrIID, "files", len(allDiffs))
	return allDiffs, nil
}

// PostComment posts one review comment on the merge request. It first
// attempts a positioned discussion on the commented line; if the host
// rejects the position it falls back to a plain note carrying the file
// and line in its body.
func (g *gitLabClient) PostComment(ctx context.Context, projectID, mrIID int, comment core.Comment) error {
	mr, _, err := g.gl.MergeRequests.GetMergeRequest(projectID, mrIID, nil, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to get merge request for comment positioning: %w", err)
	}

	body := comment.Markdown()

	if mr.DiffRefs.BaseSha != "" {
		_, _, err = g.gl.Discussions.CreateMergeRequestDiscussion(projectID, mrIID,
			&gitlab.CreateMergeRequestDiscussionOptions{
				Body: gitlab.Ptr(body),
				Position: &gitlab.PositionOptions{
					PositionType: gitlab.Ptr("text"),
					NewPath:      gitlab.Ptr(comment.FilePath),
					NewLine:      gitlab.Ptr(comment.Line),
					BaseSHA:      gitlab.Ptr(mr.DiffRefs.BaseSha),
					HeadSHA:      gitlab.Ptr(mr.DiffRefs.HeadSha),
					StartSHA:     gitlab.Ptr(mr.DiffRefs.StartSha),
				},
			}, gitlab.WithContext(ctx))
		if err == nil {
			g.logger.Debug("posted inline comment", "file", comment.FilePath, "line", comment.Line)
			return nil
		}
		g.logger.Warn("failed to post inline comment, posting as note",
			"file", comment.FilePath, "line", comment.Line, "error", err)
	}

	noteBody := fmt.Sprintf("**%s:%d**\n\n%s", comment.FilePath, comment.Line, body)
	_, _, err = g.gl.Notes.CreateMergeRequestNote(projectID, mrIID,
		&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.Ptr(noteBody)},
		gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to post comment note", "project_id", projectID, "mr_iid", mrIID, "error", err)
	}
	return err
}

// PostSummaryNote posts the aggregate review summary as a plain note.
func (g *gitLabClient) PostSummaryNote(ctx context.Context, projectID, mrIID int, body string) error {
	_, _, err := g.gl.Notes.CreateMergeRequestNote(projectID, mrIID,
		&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.Ptr(body)},
		gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to post summary note", "project_id", projectID, "mr_iid", mrIID, "error", err)
	}
	return err
}

// UpdateLabels adds labels to the merge request. AddLabels unions with
// the labels already present instead of replacing them.
func (g *gitLabClient) UpdateLabels(ctx context.Context, projectID, mrIID int, labels []string) error {
	add := gitlab.LabelOptions(labels)
	_, _, err := g.gl.MergeRequests.UpdateMergeRequest(projectID, mrIID,
		&gitlab.UpdateMergeRequestOptions{AddLabels: &add},
		gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to update labels", "project_id", projectID, "mr_iid", mrIID, "error", err)
		return err
	}

	g.logger.Info("updated merge request labels", "project_id", projectID, "mr_iid", mrIID, "labels", labels)
	return nil
}
