package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/portfolio/internal/models"
	"github.com/yoockh/portfolio/internal/storage"
	"github.com/yoockh/portfolio/internal/testutil"
	"github.com/yoockh/portfolio/internal/utils"
)

type cvFixture struct {
	store *testutil.Store
	files *storage.LocalStorage
	hook  *test.Hook
	svc   CVService
	owner *models.User
}

func newCVFixture(t *testing.T, maxBytes int64) *cvFixture {
	t.Helper()
	store := testutil.NewStore()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	log, hook := testutil.NewLogger()

	return &cvFixture{
		store: store,
		files: files,
		hook:  hook,
		svc:   NewCVService(store.CVs(), store.Users(), files, log, maxBytes),
		owner: store.SeedUser(t, "Jane Doe", "jane@example.com", models.RoleUser),
	}
}

func upload(data []byte, mimeType, name string) UploadInput {
	return UploadInput{
		Reader:       bytes.NewReader(data),
		Size:         int64(len(data)),
		DeclaredMIME: mimeType,
		DeclaredName: name,
	}
}

func TestCVService_UploadCreates(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()
	data := testutil.PDF("resume")

	cv, created, err := f.svc.Upload(ctx, f.owner, upload(data, "application/pdf", "resume.pdf"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, cv.ID.IsZero())
	assert.Equal(t, f.owner.ID, cv.UserID)
	assert.Equal(t, "Jane Doe", cv.Name)
	assert.Equal(t, "jane@example.com", cv.Email)
	assert.Equal(t, "resume.pdf", cv.OriginalName)
	assert.Equal(t, models.MimePDF, cv.MimeType)
	assert.EqualValues(t, len(data), cv.FileSize)
	assert.False(t, cv.IsApproved)
	assert.True(t, strings.HasPrefix(cv.FileName, "cv-"))
	assert.True(t, strings.HasSuffix(cv.FileName, ".pdf"))

	assert.Equal(t, []string{cv.FileName}, testutil.Files(t, f.files.Dir()))
	stored, err := os.ReadFile(filepath.Join(f.files.Dir(), cv.FileName))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestCVService_UploadReplacesPrevious(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()

	first, created, err := f.svc.Upload(ctx, f.owner, upload(testutil.PDF("v1"), "application/pdf", "v1.pdf"))
	require.NoError(t, err)
	require.True(t, created)

	_, err = f.svc.SetApproval(ctx, first.ID.Hex(), true)
	require.NoError(t, err)

	docx := testutil.DOCX(t)
	second, created, err := f.svc.Upload(ctx, f.owner, upload(docx, models.MimeDOCX, "v2.docx"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsApproved)
	assert.Equal(t, "v2.docx", second.OriginalName)

	assert.Equal(t, 1, f.store.CVCount(f.owner.ID))
	assert.Equal(t, []string{second.FileName}, testutil.Files(t, f.files.Dir()))

	mine, err := f.svc.Mine(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.False(t, mine.IsApproved)
	assert.Equal(t, second.FileName, mine.FileName)
}

func TestCVService_UploadAcceptsMIMEParameters(t *testing.T) {
	f := newCVFixture(t, 0)

	cv, _, err := f.svc.Upload(context.Background(), f.owner,
		upload(testutil.PDF("x"), "application/pdf; charset=binary", "cv.pdf"))
	require.NoError(t, err)
	assert.Equal(t, models.MimePDF, cv.MimeType)
}

func TestCVService_UploadRejectsInvalidType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
	}{
		{"declared image", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
		{"declared pdf but plain text", []byte("just some text pretending to be a pdf"), "application/pdf"},
		{"declared docx but pdf bytes", testutil.PDF("x"), models.MimeDOCX},
		{"empty declared type", testutil.PDF("x"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCVFixture(t, 0)

			_, _, err := f.svc.Upload(context.Background(), f.owner, upload(tt.data, tt.mimeType, "file"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFileType))
			assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
			assert.Contains(t, err.Error(), "Only PDF and Word documents are allowed")

			assert.Empty(t, testutil.Files(t, f.files.Dir()))
			assert.Zero(t, f.store.CVCount(f.owner.ID))
		})
	}
}

func TestCVService_UploadRejectsInvalidTypeKeepsExisting(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()

	first, _, err := f.svc.Upload(ctx, f.owner, upload(testutil.PDF("keep"), "application/pdf", "keep.pdf"))
	require.NoError(t, err)

	_, _, err = f.svc.Upload(ctx, f.owner, upload([]byte("GIF89a....."), "image/gif", "x.gif"))
	require.ErrorIs(t, err, ErrInvalidFileType)

	mine, err := f.svc.Mine(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, first.FileName, mine.FileName)
	assert.Equal(t, []string{first.FileName}, testutil.Files(t, f.files.Dir()))
}

func TestCVService_UploadRejectsDeclaredOversize(t *testing.T) {
	f := newCVFixture(t, 0)

	in := upload(testutil.PDF("x"), "application/pdf", "big.pdf")
	in.Size = DefaultMaxCVBytes + 1

	_, _, err := f.svc.Upload(context.Background(), f.owner, in)
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "Maximum size is 5 MB")
	assert.Empty(t, testutil.Files(t, f.files.Dir()))
}

func TestCVService_UploadRejectsUnderstatedSize(t *testing.T) {
	f := newCVFixture(t, 1024)

	data := testutil.PDF(strings.Repeat("a", 2048))
	in := upload(data, "application/pdf", "big.pdf")
	in.Size = 100

	_, _, err := f.svc.Upload(context.Background(), f.owner, in)
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, testutil.Files(t, f.files.Dir()))
	assert.Zero(t, f.store.CVCount(f.owner.ID))
}

func TestCVService_UploadAtExactLimit(t *testing.T) {
	head := testutil.PDF("")
	f := newCVFixture(t, int64(len(head)+100))

	data := append(head, bytes.Repeat([]byte{' '}, 100)...)
	cv, _, err := f.svc.Upload(context.Background(), f.owner, upload(data, "application/pdf", "edge.pdf"))
	require.NoError(t, err)
	assert.EqualValues(t, len(data), cv.FileSize)
}

func TestCVService_UploadEmptyFile(t *testing.T) {
	f := newCVFixture(t, 0)

	_, _, err := f.svc.Upload(context.Background(), f.owner, upload(nil, "application/pdf", "empty.pdf"))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "Please upload a file")
}

func TestCVService_UploadRequiresOwner(t *testing.T) {
	f := newCVFixture(t, 0)

	_, _, err := f.svc.Upload(context.Background(), nil, upload(testutil.PDF("x"), "application/pdf", "a.pdf"))
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))
}

func TestCVService_UploadMetadataFailureRemovesNewFile(t *testing.T) {
	f := newCVFixture(t, 0)
	f.store.CVUpsertErr = errors.New("write concern timeout")

	_, _, err := f.svc.Upload(context.Background(), f.owner, upload(testutil.PDF("x"), "application/pdf", "a.pdf"))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInternal))
	assert.Empty(t, testutil.Files(t, f.files.Dir()))
}

func TestCVService_DeleteRemovesFileAndRecord(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()

	cv, _, err := f.svc.Upload(ctx, f.owner, upload(testutil.PDF("x"), "application/pdf", "a.pdf"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, cv.ID.Hex()))
	assert.Empty(t, testutil.Files(t, f.files.Dir()))

	_, err = f.svc.Mine(ctx, f.owner.ID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	err = f.svc.Delete(ctx, cv.ID.Hex())
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestCVService_DeleteWithMissingFileWarns(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()

	cv, _, err := f.svc.Upload(ctx, f.owner, upload(testutil.PDF("x"), "application/pdf", "a.pdf"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.files.Dir(), cv.FileName)))

	require.NoError(t, f.svc.Delete(ctx, cv.ID.Hex()))
	assert.Zero(t, f.store.CVCount(f.owner.ID))

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, cv.FileName, entry.Data["path"])
}

func TestCVService_Download(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()
	data := testutil.PDF("download me")

	cv, _, err := f.svc.Upload(ctx, f.owner, upload(data, "application/pdf", "me.pdf"))
	require.NoError(t, err)

	dl, err := f.svc.Download(ctx, cv.ID.Hex())
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.EqualValues(t, len(data), dl.Size)
	assert.Equal(t, "me.pdf", dl.CV.OriginalName)
}

func TestCVService_DownloadMissingFile(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()

	cv, _, err := f.svc.Upload(ctx, f.owner, upload(testutil.PDF("x"), "application/pdf", "a.pdf"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.files.Dir(), cv.FileName)))

	_, err = f.svc.Download(ctx, cv.ID.Hex())
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestCVService_SetApproval(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()

	cv, _, err := f.svc.Upload(ctx, f.owner, upload(testutil.PDF("x"), "application/pdf", "a.pdf"))
	require.NoError(t, err)

	got, err := f.svc.SetApproval(ctx, cv.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)
	require.NotNil(t, got.User)
	assert.Equal(t, "jane@example.com", got.User.Email)

	_, err = f.svc.SetApproval(ctx, "not-an-id", true)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestCVService_ListAllIncludesOwner(t *testing.T) {
	f := newCVFixture(t, 0)
	ctx := context.Background()
	other := f.store.SeedUser(t, "John Roe", "john@example.com", models.RoleUser)

	_, _, err := f.svc.Upload(ctx, f.owner, upload(testutil.PDF("a"), "application/pdf", "a.pdf"))
	require.NoError(t, err)
	_, _, err = f.svc.Upload(ctx, other, upload(testutil.PDF("b"), "application/pdf", "b.pdf"))
	require.NoError(t, err)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "John Roe", all[0].User.Name)
	assert.Equal(t, "Jane Doe", all[1].User.Name)
}
