package rewrite_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/vsed/pkg/lines"
	"github.com/walteh/vsed/pkg/prompt"
	"github.com/walteh/vsed/pkg/rewrite"
	"github.com/walteh/vsed/pkg/search"
	"gitlab.com/tozd/go/errors"
)

// 🎭 mockPrompter records every decision request.
type mockPrompter struct {
	mock.Mock
}

func (m *mockPrompter) Decide(ctx context.Context, path string, rec lines.Record, candidate string) (bool, error) {
	args := m.Called(ctx, path, rec, candidate)
	return args.Bool(0), args.Error(1)
}

func (m *mockPrompter) Passthrough(ctx context.Context, path string, rec lines.Record) {
	m.Called(ctx, path, rec)
}

// 🧪 createTestEnv writes content to a file in a fresh directory.
func createTestEnv(t *testing.T, content string) (context.Context, string) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return ctx, path
}

func mustParse(t *testing.T, raw string) *search.Spec {
	spec, err := search.Parse(raw)
	require.NoError(t, err)
	return spec
}

func dirEntries(t *testing.T, path string) []string {
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRewriteScenario(t *testing.T) {
	ctx, path := createTestEnv(t, "hello foo\nno match here\nfoo again foo\n")

	p := &mockPrompter{}
	p.On("Decide", mock.Anything, path, lines.Record{Number: 1, Text: "hello foo"}, "hello bar").Return(true, nil).Once()
	p.On("Passthrough", mock.Anything, path, lines.Record{Number: 2, Text: "no match here"}).Return().Once()
	p.On("Decide", mock.Anything, path, lines.Record{Number: 3, Text: "foo again foo"}, "bar again foo").Return(false, nil).Once()

	result, err := rewrite.New(p).Rewrite(ctx, rewrite.Job{Path: path, Spec: mustParse(t, "s/foo/bar/g")})
	require.NoError(t, err)
	p.AssertExpectations(t)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello bar\nno match here\nfoo again foo\n", string(got))

	assert.Equal(t, &rewrite.Result{
		Path:      path,
		Lines:     3,
		Matched:   2,
		Accepted:  1,
		Rejected:  1,
		Committed: true,
	}, result)
	assert.True(t, result.Changed())

	// staging file is gone and permissions are kept
	assert.Equal(t, []string{"input.txt"}, dirEntries(t, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestRewriteUnmatchedNeverPrompts(t *testing.T) {
	content := "alpha\nbeta\ngamma\n"
	ctx, path := createTestEnv(t, content)

	p := &mockPrompter{}
	p.On("Passthrough", mock.Anything, path, mock.Anything).Return().Times(3)

	result, err := rewrite.New(p).Rewrite(ctx, rewrite.Job{Path: path, Spec: mustParse(t, "s/zeta/eta/")})
	require.NoError(t, err)
	p.AssertExpectations(t)
	p.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Equal(t, 0, result.Matched)
	assert.False(t, result.Changed())
}

func TestRewriteRejectAllIsIdempotent(t *testing.T) {
	content := "foo\nbar foo\nbaz\nfoo foo foo\n"
	ctx, path := createTestEnv(t, content)
	spec := mustParse(t, "s/foo/qux/g")

	for i := 0; i < 2; i++ {
		p := &mockPrompter{}
		p.On("Decide", mock.Anything, path, mock.Anything, mock.Anything).Return(false, nil)
		p.On("Passthrough", mock.Anything, path, mock.Anything).Return()

		result, err := rewrite.New(p).Rewrite(ctx, rewrite.Job{Path: path, Spec: spec})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Rejected)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(got), "run %d", i+1)
	}
}

func TestRewriteAcceptReplacesFirstOccurrenceOnly(t *testing.T) {
	ctx, path := createTestEnv(t, "a-a-a\n  a padded a  \n")

	p := &mockPrompter{}
	p.On("Decide", mock.Anything, path, mock.Anything, mock.Anything).Return(true, nil)

	_, err := rewrite.New(p).Rewrite(ctx, rewrite.Job{Path: path, Spec: mustParse(t, "s,a,b,g")})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b-a-a\nb padded a\n", string(got))
}

func TestRewriteReadErrorLeavesOriginal(t *testing.T) {
	content := "foo one\nfoo two\nfoo three\n"
	ctx, path := createTestEnv(t, content)

	boom := errors.New("device went away")
	opener := func(p string) (*lines.Source, error) {
		r := io.MultiReader(strings.NewReader("foo one\nfoo two\n"), iotest.ErrReader(boom))
		return lines.NewFile(p, io.NopCloser(r)), nil
	}

	p := &mockPrompter{}
	p.On("Decide", mock.Anything, path, mock.Anything, mock.Anything).Return(true, nil).Times(2)

	result, err := rewrite.New(p, rewrite.WithOpener(opener)).Rewrite(ctx, rewrite.Job{Path: path, Spec: mustParse(t, "s/foo/bar/")})
	require.Error(t, err)
	p.AssertExpectations(t)

	var rerr *lines.ReadError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 3, rerr.Line)
	assert.False(t, result.Committed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Equal(t, []string{"input.txt"}, dirEntries(t, path))
}

func TestRewriteMissingFile(t *testing.T) {
	ctx, path := createTestEnv(t, "")
	missing := filepath.Join(filepath.Dir(path), "missing.txt")

	p := &mockPrompter{}
	_, err := rewrite.New(p).Rewrite(ctx, rewrite.Job{Path: missing, Spec: mustParse(t, "s/a/b/")})
	require.Error(t, err)

	var oerr *lines.OpenError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, missing, oerr.Path)
	assert.Equal(t, []string{"input.txt"}, dirEntries(t, path))
}

func TestRewritePromptErrorAborts(t *testing.T) {
	content := "foo\n"
	ctx, path := createTestEnv(t, content)

	p := &mockPrompter{}
	p.On("Decide", mock.Anything, path, mock.Anything, mock.Anything).Return(false, prompt.ErrInputClosed)

	_, err := rewrite.New(p).Rewrite(ctx, rewrite.Job{Path: path, Spec: mustParse(t, "s/foo/bar/")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, prompt.ErrInputClosed))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Equal(t, []string{"input.txt"}, dirEntries(t, path))
}

func TestRewriteCommitErrorLeavesOriginal(t *testing.T) {
	ctx, path := createTestEnv(t, "foo\n")
	spec := mustParse(t, "s/foo/bar/")

	p := &mockPrompter{}
	p.On("Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		// the target disappears while the user is deciding
		require.NoError(t, os.Remove(path))
	}).Return(true, nil)

	result, err := rewrite.New(p).Rewrite(ctx, rewrite.Job{Path: path, Spec: spec})
	require.Error(t, err)

	var cerr *rewrite.CommitError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, path, cerr.Path)
	assert.False(t, result.Committed)
	assert.Empty(t, dirEntries(t, path))
}

func TestRewriteCancelledContext(t *testing.T) {
	content := "foo\nfoo\n"
	ctx, path := createTestEnv(t, content)
	ctx, cancel := context.WithCancel(ctx)

	p := &mockPrompter{}
	p.On("Decide", mock.Anything, path, mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(true, nil).Once()

	_, err := rewrite.New(p).Rewrite(ctx, rewrite.Job{Path: path, Spec: mustParse(t, "s/foo/bar/")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestRewriteDryRun(t *testing.T) {
	content := "hello foo\nno match here\nfoo again foo\n"
	ctx, path := createTestEnv(t, content)

	p := &mockPrompter{}
	p.On("Decide", mock.Anything, path, mock.Anything, mock.Anything).Return(true, nil)
	p.On("Passthrough", mock.Anything, path, mock.Anything).Return()

	result, err := rewrite.New(p, rewrite.WithDryRun(true)).Rewrite(ctx, rewrite.Job{Path: path, Spec: mustParse(t, "s/foo/bar/g")})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.False(t, result.Committed)
	assert.Equal(t, 2, result.Accepted)
	assert.Contains(t, result.Diff, "--- "+path)
	assert.Contains(t, result.Diff, "-hello foo\n")
	assert.Contains(t, result.Diff, "+hello bar\n")
	assert.Contains(t, result.Diff, "+bar again foo\n")
	assert.Contains(t, result.Diff, " no match here\n")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Equal(t, []string{"input.txt"}, dirEntries(t, path))
}

func TestRewriteWithTerminal(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx, path := createTestEnv(t, "hello foo\nno match here\nfoo again foo\n")

	var out bytes.Buffer
	term := prompt.NewTerminal(strings.NewReader("what\ny\nN\n"), &out, true)

	_, err := rewrite.New(term).Rewrite(ctx, rewrite.Job{Path: path, Spec: mustParse(t, "s/foo/bar/g")})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello bar\nno match here\nfoo again foo\n", string(got))

	assert.Contains(t, out.String(), "Apply? y/n -> hello bar")
	assert.Contains(t, out.String(), "please enter y or n")
	assert.Contains(t, out.String(), "Line 2: no match here")
	assert.Contains(t, out.String(), "Apply? y/n -> bar again foo")
}
