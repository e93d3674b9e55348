package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erieironllc/erieiron-public-common/common/log"
)

// DefaultRemote receives pushed tags.
const DefaultRemote = "origin"

// ErrInvalidTag is returned when the version cannot form a git tag name.
var ErrInvalidTag = errors.New("invalid tag name")

// Git is the subset of git the release flow needs.
type Git interface {
	CreateTag(ctx context.Context, name string) error
	PushTag(ctx context.Context, remote, name string) error
	ListTags(ctx context.Context) ([]string, error)
}

// Result is the outcome of a release.
type Result struct {
	Tag  string
	Tags []string
}

// Tagger creates and pushes release tags.
type Tagger struct {
	Git    Git
	Remote string
	Logger log.Logger
}

// TagName is "v" followed by version as given.
func TagName(version string) string {
	return "v" + version
}

// Release tags the current commit with TagName(version), pushes the tag and
// lists all local tags. It stops at the first failing step.
func (t *Tagger) Release(ctx context.Context, version string) (Result, error) {
	if strings.TrimSpace(version) == "" {
		return Result{}, ErrVersionNotFound
	}

	if t.Git == nil {
		return Result{}, errors.New("release: git is nil")
	}

	tag := TagName(version)
	if err := validateTag(tag); err != nil {
		return Result{}, err
	}

	remote := t.Remote
	if remote == "" {
		remote = DefaultRemote
	}

	logger := log.OrNop(t.Logger)

	if err := t.Git.CreateTag(ctx, tag); err != nil {
		return Result{}, fmt.Errorf("create tag %s: %w", tag, err)
	}

	logger.Log(ctx, log.LevelInfo, "created tag", log.String("tag", tag))

	if err := t.Git.PushTag(ctx, remote, tag); err != nil {
		return Result{Tag: tag}, fmt.Errorf("push tag %s to %s: %w", tag, remote, err)
	}

	logger.Log(ctx, log.LevelInfo, "pushed tag", log.String("tag", tag), log.String("remote", remote))

	tags, err := t.Git.ListTags(ctx)
	if err != nil {
		return Result{Tag: tag}, fmt.Errorf("list tags: %w", err)
	}

	return Result{Tag: tag, Tags: tags}, nil
}

// validateTag applies the parts of git check-ref-format a version string can
// plausibly break.
func validateTag(tag string) error {
	switch {
	case strings.ContainsAny(tag, " \t\n~^:?*[\\"),
		strings.Contains(tag, ".."),
		strings.Contains(tag, "@{"),
		strings.HasSuffix(tag, "."),
		strings.HasSuffix(tag, ".lock"),
		strings.HasSuffix(tag, "/"):
		return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}

	for _, r := range tag {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
		}
	}

	return nil
}
