// Package git drives the local git binary to clone repositories and read
// their commit history.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gnomegl/githunt/internal/models"
)

// ErrEmptyRepository is returned by Log for a clone without any commit.
var ErrEmptyRepository = errors.New("repository has no commits")

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"

	logFormat = "%H" + "%x1f" + "%an" + "%x1f" + "%ae" + "%x1f" + "%cI" + "%x1f" + "%G?" + "%x1e"
)

// Client runs git in a child process. The zero value uses "git" from PATH.
type Client struct {
	Binary string
}

func (c *Client) binary() string {
	if c.Binary == "" {
		return "git"
	}
	return c.Binary
}

// Clone fetches url into dir without checking out a working tree; only the
// history is needed.
func (c *Client) Clone(ctx context.Context, url, dir string) error {
	_, err := c.run(ctx, "", "clone", "--no-checkout", "--quiet", url, dir)
	return err
}

// Log returns every commit reachable from HEAD, newest first.
func (c *Client) Log(ctx context.Context, dir string) ([]models.Commit, error) {
	out, err := c.run(ctx, dir, "log", "--format="+logFormat)
	if err != nil {
		if strings.Contains(err.Error(), "does not have any commits") {
			return nil, fmt.Errorf("%s: %w", dir, ErrEmptyRepository)
		}
		return nil, err
	}
	return parseLog(out)
}

// executes a git command in the specified directory
func (c *Client) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s failed: %w, output: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func parseLog(out []byte) ([]models.Commit, error) {
	var commits []models.Commit
	for _, record := range strings.Split(string(out), recordSep) {
		record = strings.Trim(record, "\n")
		if record == "" {
			continue
		}

		fields := strings.Split(record, fieldSep)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed log record %q", record)
		}

		committed, err := parseDate(fields[3])
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", fields[0], err)
		}

		commits = append(commits, models.Commit{
			Hash:        fields[0],
			AuthorName:  fields[1],
			AuthorEmail: fields[2],
			CommittedAt: committed,
			Signed:      fields[4] != "N",
		})
	}
	return commits, nil
}

// parseDate keeps the committer's own offset as a fixed zone. time.Parse
// would otherwise hand back time.Local when the offset happens to match the
// host's.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	_, offset := t.Zone()
	return t.In(time.FixedZone("", offset)), nil
}
