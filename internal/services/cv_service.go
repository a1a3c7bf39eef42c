package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yoockh/portfolio/internal/models"
	mongorepo "github.com/yoockh/portfolio/internal/repositories/mongo"
	"github.com/yoockh/portfolio/internal/storage"
	"github.com/yoockh/portfolio/internal/utils"
)

// DefaultMaxCVBytes is the upload limit when none is configured (5 MiB).
const DefaultMaxCVBytes int64 = 5 << 20

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// allowed CV types and the extension used when the original name has none
var cvTypes = map[string]string{
	models.MimePDF:  ".pdf",
	models.MimeDOC:  ".doc",
	models.MimeDOCX: ".docx",
}

// Office documents are containers; a truncated head often sniffs as the
// container rather than the document type.
var cvContainers = map[string]string{
	models.MimeDOC:  "application/x-ole-storage",
	models.MimeDOCX: "application/zip",
}

const sniffLen = 3072

type UploadInput struct {
	Reader       io.Reader
	Size         int64
	DeclaredMIME string
	DeclaredName string
}

// CVDownload is an open stored file. Callers must close Body.
type CVDownload struct {
	CV   *models.CV
	Body io.ReadCloser
	Size int64
}

type CVService interface {
	// Upload stores the owner's CV, replacing any previous one. created is
	// false when an existing CV was replaced.
	Upload(ctx context.Context, owner *models.User, in UploadInput) (cv *models.CV, created bool, err error)
	Mine(ctx context.Context, userID primitive.ObjectID) (*models.CV, error)
	Download(ctx context.Context, id string) (*CVDownload, error)
	ListAll(ctx context.Context) ([]models.CV, error)
	SetApproval(ctx context.Context, id string, approved bool) (*models.CV, error)
	Delete(ctx context.Context, id string) error
	RemoveForUser(ctx context.Context, userID primitive.ObjectID) error
}

type cvService struct {
	repo     mongorepo.CVRepository
	users    mongorepo.UserRepository
	files    storage.Storage
	log      *logrus.Logger
	maxBytes int64
	now      func() time.Time
}

func NewCVService(repo mongorepo.CVRepository, users mongorepo.UserRepository, files storage.Storage, log *logrus.Logger, maxBytes int64) CVService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCVBytes
	}
	if log == nil {
		log = logrus.New()
	}
	return &cvService{
		repo:     repo,
		users:    users,
		files:    files,
		log:      log,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (s *cvService) Upload(ctx context.Context, owner *models.User, in UploadInput) (*models.CV, bool, error) {
	const op = "CVService.Upload"

	if owner == nil || owner.ID.IsZero() {
		return nil, false, utils.E(utils.CodeUnauthorized, op, "not authorized", nil)
	}
	if in.Reader == nil || in.Size == 0 {
		return nil, false, utils.E(utils.CodeInvalidArgument, op, "Please upload a file", nil)
	}

	declared, ok := normalizeMIME(in.DeclaredMIME)
	if !ok {
		return nil, false, invalidType(op)
	}
	if in.Size > s.maxBytes {
		return nil, false, s.tooLarge(op)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, false, utils.E(utils.CodeInternal, op, "failed to read upload", err)
	}
	head = head[:n]
	if !sniffMatches(declared, head) {
		return nil, false, invalidType(op)
	}

	key := s.fileName(in.DeclaredName, declared)
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), in.Reader), s.maxBytes+1)

	written, err := s.files.Save(ctx, key, declared, body)
	if err != nil {
		return nil, false, utils.E(utils.CodeInternal, op, "failed to store file", err)
	}
	if written > s.maxBytes {
		s.discard(ctx, key)
		return nil, false, s.tooLarge(op)
	}

	cv := &models.CV{
		UserID:       owner.ID,
		Name:         owner.Name,
		Email:        owner.Email,
		FileName:     key,
		OriginalName: filepath.Base(in.DeclaredName),
		FilePath:     key,
		FileSize:     written,
		MimeType:     declared,
	}

	prev, err := s.repo.Upsert(ctx, cv)
	if err != nil {
		s.discard(ctx, key)
		return nil, false, utils.E(utils.CodeInternal, op, "failed to persist cv metadata", err)
	}

	if prev != nil && prev.FilePath != "" && prev.FilePath != key {
		s.removeFile(ctx, prev.FilePath, prev.ID)
	}

	return cv, prev == nil, nil
}

func (s *cvService) Mine(ctx context.Context, userID primitive.ObjectID) (*models.CV, error) {
	const op = "CVService.Mine"

	cv, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "CV not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get cv", err)
	}
	return cv, nil
}

func (s *cvService) Download(ctx context.Context, id string) (*CVDownload, error) {
	const op = "CVService.Download"

	cv, err := s.get(ctx, op, id)
	if err != nil {
		return nil, err
	}

	rc, size, err := s.files.Open(ctx, cv.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, utils.E(utils.CodeNotFound, op, "File not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to open file", err)
	}
	return &CVDownload{CV: cv, Body: rc, Size: size}, nil
}

func (s *cvService) ListAll(ctx context.Context) ([]models.CV, error) {
	const op = "CVService.ListAll"

	out, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list cvs", err)
	}
	return out, nil
}

func (s *cvService) SetApproval(ctx context.Context, id string, approved bool) (*models.CV, error) {
	const op = "CVService.SetApproval"

	oid, err := parseID(op, id, "CV")
	if err != nil {
		return nil, err
	}

	cv, err := s.repo.SetApproval(ctx, oid, approved)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "CV not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update cv", err)
	}

	cv.User = ownerRef(ctx, s.users, cv.UserID, true)
	return cv, nil
}

func (s *cvService) Delete(ctx context.Context, id string) error {
	const op = "CVService.Delete"

	cv, err := s.get(ctx, op, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, op, cv)
}

func (s *cvService) RemoveForUser(ctx context.Context, userID primitive.ObjectID) error {
	const op = "CVService.RemoveForUser"

	cv, err := s.repo.GetByUser(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to get cv", err)
	}
	return s.remove(ctx, op, cv)
}

// remove deletes the stored file, then the record. A file that is already
// gone does not block removing the record.
func (s *cvService) remove(ctx context.Context, op string, cv *models.CV) error {
	if err := s.files.Delete(ctx, cv.FilePath); err != nil {
		if !errors.Is(err, storage.ErrNotExist) {
			return utils.E(utils.CodeInternal, op, "failed to delete file", err)
		}
		s.log.WithFields(logrus.Fields{
			"cv_id": cv.ID.Hex(),
			"path":  cv.FilePath,
		}).Warn("cv file already missing")
	}

	if err := s.repo.Delete(ctx, cv.ID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "CV not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete cv", err)
	}
	return nil
}

func (s *cvService) get(ctx context.Context, op, id string) (*models.CV, error) {
	oid, err := parseID(op, id, "CV")
	if err != nil {
		return nil, err
	}

	cv, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "CV not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get cv", err)
	}
	return cv, nil
}

// removeFile drops a replaced file. The upload already succeeded, so
// failures are only logged.
func (s *cvService) removeFile(ctx context.Context, key string, cvID primitive.ObjectID) {
	err := s.files.Delete(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotExist):
		s.log.WithFields(logrus.Fields{"cv_id": cvID.Hex(), "path": key}).Warn("replaced cv file already missing")
	default:
		s.log.WithError(err).WithFields(logrus.Fields{"cv_id": cvID.Hex(), "path": key}).Error("failed to delete replaced cv file")
	}
}

func (s *cvService) discard(ctx context.Context, key string) {
	if err := s.files.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, storage.ErrNotExist) {
		s.log.WithError(err).WithField("path", key).Error("failed to discard rejected upload")
	}
}

func (s *cvService) tooLarge(op string) error {
	return FileTooLargeError(op, s.maxBytes)
}

// FileTooLargeError is the validation error for uploads over maxBytes.
func FileTooLargeError(op string, maxBytes int64) error {
	return utils.E(utils.CodeInvalidArgument, op,
		fmt.Sprintf("File too large. Maximum size is %s.", humanSize(maxBytes)), ErrFileTooLarge)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// fileName builds cv-<unix millis>-<random>.<ext>.
func (s *cvService) fileName(original, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		ext = cvTypes[mimeType]
	}
	return fmt.Sprintf("cv-%d-%d%s", s.now().UnixMilli(), rand.Int64N(1_000_000_000), ext)
}

func invalidType(op string) error {
	return utils.E(utils.CodeInvalidArgument, op,
		"Invalid file type. Only PDF and Word documents are allowed.", ErrInvalidFileType)
}

func normalizeMIME(v string) (string, bool) {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return "", false
	}
	_, ok := cvTypes[mt]
	return mt, ok
}

func sniffMatches(declared string, head []byte) bool {
	container, hasContainer := cvContainers[declared]
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		if m.Is(declared) || (hasContainer && m.Is(container)) {
			return true
		}
	}
	return false
}
