package rest

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/filex"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the slack allowed on top of the upload ceiling for
// multipart boundaries and part headers.
const multipartOverhead = common.MiB

const (
	dispositionInline     = "inline"
	dispositionAttachment = "attachment"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(c, err, http.StatusNotFound)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := s.users.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		s.writeError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

func (s *Server) handleUpload(c *gin.Context) {
	maxSize := s.files.MaxSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusBadRequest, gin.H{
				"message": fmt.Sprintf("File too large: request exceeds limit of %s", humanize.IBytes(uint64(maxSize))),
			})
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed upload"})
		}
		return
	}

	file, err := fh.Open()
	if err != nil {
		s.writeError(c, common.Storage("Failed to save file", err), http.StatusNotFound)
		return
	}
	defer file.Close()

	ct, err := partContentType(fh, file)
	if err != nil {
		s.writeError(c, common.Storage("Failed to save file", err), http.StatusNotFound)
		return
	}

	rec, err := s.files.Ingest(c.Request.Context(), services.Upload{
		Body:         file,
		OriginalName: fh.Filename,
		ContentType:  ct,
		Size:         fh.Size,
	})
	if err != nil {
		s.writeError(c, err, http.StatusNotFound)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "File uploaded successfully", "file": rec})
}

// partContentType returns the part's declared type, or the sniffed type when
// the client sent none or the generic application/octet-stream. file is
// rewound afterwards.
func partContentType(fh *multipart.FileHeader, file multipart.File) (string, error) {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && services.NormalizeContentType(ct) != "application/octet-stream" {
		return ct, nil
	}

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

func (s *Server) handleList(c *gin.Context) {
	list, err := s.files.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleServe(disposition string) gin.HandlerFunc {
	return func(c *gin.Context) {
		dl, err := s.files.Resolve(c.Request.Context(), c.Param("key"))
		if err != nil {
			s.writeError(c, err, http.StatusNotFound)
			return
		}
		defer dl.Body.Close()

		headers := map[string]string{
			"Content-Disposition": fmt.Sprintf(`%s; filename="%s"`, disposition, filex.EscapeName(dl.File.OriginalName)),
		}
		if dl.Info.ETag != "" {
			headers["ETag"] = `"` + dl.Info.ETag + `"`
		}
		if !dl.Info.LastModified.IsZero() {
			headers["Last-Modified"] = dl.Info.LastModified.UTC().Format(http.TimeFormat)
		}

		c.DataFromReader(http.StatusOK, dl.File.Size, dl.File.ContentType, dl.Body, headers)
	}
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.files.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully."})
}
