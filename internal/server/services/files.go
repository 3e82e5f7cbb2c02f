package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/filex"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/dmitrijs2005/filekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/files"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// AllowedContentTypes is the upload allow-list, in the order shown to clients.
var AllowedContentTypes = []string{
	"image/jpeg", "image/png", "image/gif",
	"application/pdf", "application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"video/mp4", "video/quicktime", "video/avi",
	"audio/mpeg", "audio/wav", "audio/ogg",
}

var allowedContentTypes = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllowedContentTypes))
	for _, t := range AllowedContentTypes {
		m[t] = struct{}{}
	}
	return m
}()

// compensationTimeout bounds cleanup that must run even after the request
// context is gone.
const compensationTimeout = 10 * time.Second

// Upload is one incoming file.
type Upload struct {
	Body         io.Reader
	OriginalName string
	ContentType  string
	Size         int64
}

// Download is an open blob with its record and the store's view of it. The
// caller closes Body.
type Download struct {
	File *models.File
	Info core.Info
	Body io.ReadCloser
}

// FileService ties the metadata catalog to the blob store.
type FileService struct {
	repo    files.Repository
	store   core.Store
	log     logging.Logger
	metrics *metrics.Collector
	maxSize int64
	clock   *uploadClock
}

// NewFileService wires a service over repo and store. maxSize <= 0 means
// common.DefaultMaxUploadSize. m may be nil.
func NewFileService(repo files.Repository, store core.Store, maxSize int64, log logging.Logger, m *metrics.Collector) *FileService {
	if maxSize <= 0 {
		maxSize = common.DefaultMaxUploadSize
	}
	return &FileService{
		repo:    repo,
		store:   store,
		log:     log.With("component", "files", "blob_driver", string(store.Driver())),
		metrics: m,
		maxSize: maxSize,
		clock:   newUploadClock(time.Now),
	}
}

// MaxSize is the upload ceiling in bytes.
func (s *FileService) MaxSize() int64 { return s.maxSize }

// NormalizeContentType strips media type parameters and lower-cases.
func NormalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(ct)
}

// IsAllowedContentType reports whether ct (normalised) is on the allow-list.
func IsAllowedContentType(ct string) bool {
	_, ok := allowedContentTypes[NormalizeContentType(ct)]
	return ok
}

func (s *FileService) validate(u Upload) (string, error) {
	ct := NormalizeContentType(u.ContentType)
	if _, ok := allowedContentTypes[ct]; !ok {
		return "", common.Validationf("Invalid file type: %s. Allowed types: %s",
			u.ContentType, strings.Join(AllowedContentTypes, ", "))
	}
	if u.Size < 0 || u.Size > s.maxSize {
		return "", s.tooLarge(u.Size)
	}
	if strings.TrimSpace(u.OriginalName) == "" {
		return "", common.Validation("File name is required")
	}
	return ct, nil
}

func (s *FileService) tooLarge(size int64) *common.Error {
	if size < 0 {
		return common.Validation("File size is unknown or invalid")
	}
	return common.Validationf("File too large: %s exceeds limit of %s",
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(s.maxSize)))
}

// newStorageKey returns <unix-millis>-<16 hex chars><safe ext>.
func newStorageKey(now time.Time, originalName string) (string, error) {
	suffix, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, filex.SafeExt(originalName)), nil
}

// Ingest validates u, streams it to the blob store and records it in the
// catalog. On any failure neither a blob nor a record is left behind, except
// when compensation itself fails, which is logged as drift.
func (s *FileService) Ingest(ctx context.Context, u Upload) (*models.File, error) {
	ct, err := s.validate(u)
	if err != nil {
		s.metrics.Upload(metrics.OutcomeRejected, 0)
		return nil, err
	}

	key, err := newStorageKey(time.Now(), u.OriginalName)
	if err != nil {
		s.metrics.Upload(metrics.OutcomeFailed, 0)
		return nil, common.Storage("Failed to save file", err)
	}

	g := &guardReader{ctx: ctx, r: u.Body, limit: s.maxSize}
	info, err := s.store.Put(ctx, key, g, core.PutOptions{ContentType: ct})
	if err != nil {
		switch {
		case g.exceeded:
			s.metrics.Upload(metrics.OutcomeRejected, 0)
			return nil, s.tooLarge(g.read)
		case g.bodyErr != nil || ctx.Err() != nil:
			s.metrics.Upload(metrics.OutcomeRejected, 0)
			s.log.Info(ctx, "upload interrupted", "key", key, "error", err)
			return nil, &common.Error{Kind: common.KindValidation, Message: "Upload interrupted", Err: err}
		default:
			s.metrics.Upload(metrics.OutcomeFailed, 0)
			s.log.Error(ctx, "blob write failed", "key", key, "error", err)
			return nil, common.Storage("Failed to save file", err)
		}
	}

	rec := &models.File{
		ID:           uuid.NewString(),
		StorageKey:   key,
		OriginalName: u.OriginalName,
		ContentType:  ct,
		Size:         info.Size,
		UploadedAt:   s.clock.Next(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.metrics.Upload(metrics.OutcomeFailed, 0)
		serr := common.Storage("Failed to save file", err)
		if cerr := s.compensate(ctx, key); cerr != nil {
			serr.Drift = true
			s.metrics.Drift("ingest")
			s.log.Error(ctx, "orphan blob left after failed insert",
				"key", key, "drift", true, "insert_error", err, "error", cerr)
		} else {
			s.log.Warn(ctx, "catalog insert failed, blob removed", "key", key, "error", err)
		}
		return nil, serr
	}

	s.metrics.Upload(metrics.OutcomeOK, rec.Size)
	s.log.Info(ctx, "file stored", "id", rec.ID, "key", key, "size", rec.Size, "content_type", ct)
	return rec, nil
}

func (s *FileService) compensate(ctx context.Context, key string) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	_, err := s.store.Delete(cctx, key)
	return err
}

// List returns all records newest first.
func (s *FileService) List(ctx context.Context) ([]*models.File, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, common.Storage("Failed to fetch files", err)
	}
	return list, nil
}

// Resolve opens the blob named by key. The catalog is consulted first so that
// only recorded blobs are ever served.
func (s *FileService) Resolve(ctx context.Context, key string) (*Download, error) {
	rec, err := s.repo.GetByStorageKey(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("File not found in database")
		}
		return nil, common.Storage("Failed to read file", err)
	}

	info, body, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.metrics.Drift("resolve")
			s.log.Warn(ctx, "record without blob", "id", rec.ID, "key", key, "drift", true)
			nf := common.NotFound("File not found on server")
			nf.Drift = true
			return nil, nf
		}
		return nil, common.Storage("Failed to read file", err)
	}

	return &Download{File: rec, Info: info, Body: body}, nil
}

// Delete removes the blob and then the record. A record that outlives its
// blob is reported as a partial delete.
func (s *FileService) Delete(ctx context.Context, id string) error {
	// Record ids are uuids; anything else cannot name a record.
	if _, err := uuid.Parse(id); err != nil {
		return common.NotFound("File not found.")
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound("File not found.")
		}
		s.metrics.Delete(metrics.OutcomeFailed)
		return common.Storage("Failed to delete file.", err)
	}

	removed, err := s.store.Delete(ctx, rec.StorageKey)
	if err != nil {
		s.metrics.Delete(metrics.OutcomeFailed)
		s.log.Error(ctx, "blob delete failed", "id", id, "key", rec.StorageKey, "error", err)
		return common.Storage("Failed to delete file.", err)
	}
	if !removed {
		s.metrics.Drift("delete")
		s.log.Warn(ctx, "blob already gone", "id", id, "key", rec.StorageKey, "drift", true)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.metrics.Delete(metrics.OutcomePartial)
		s.log.Error(ctx, "record outlived its blob", "id", id, "key", rec.StorageKey, "reconcile", true, "error", err)
		return common.PartialDelete(id, rec.StorageKey, err)
	}

	s.metrics.Delete(metrics.OutcomeOK)
	s.log.Info(ctx, "file deleted", "id", id, "key", rec.StorageKey)
	return nil
}

// guardReader fails once more than limit bytes were read or ctx is done, and
// remembers why.
type guardReader struct {
	ctx      context.Context
	r        io.Reader
	limit    int64
	read     int64
	exceeded bool
	bodyErr  error
}

var errTooLarge = errors.New("upload exceeds size limit")

func (g *guardReader) Read(p []byte) (int, error) {
	if g.exceeded {
		return 0, errTooLarge
	}
	if err := g.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := g.r.Read(p)
	g.read += int64(n)
	if g.read > g.limit {
		g.exceeded = true
		return 0, errTooLarge
	}
	if err != nil && !errors.Is(err, io.EOF) {
		g.bodyErr = err
	}
	return n, err
}

// uploadClock hands out strictly increasing millisecond timestamps.
type uploadClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newUploadClock(now func() time.Time) *uploadClock {
	return &uploadClock{now: now}
}

func (c *uploadClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}
