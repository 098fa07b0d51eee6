package handler

import (
	"errors"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize caps editor image uploads.
const MaxUploadSize = 5 << 20

const editorUploadDir = "uploads/editor"

var allowedUploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var errUploadTooLarge = errors.New("file exceeds 5 MB limit")

// UploadImage stores an image pasted into the rich-text editor and returns
// its public location.
func (a *API) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*MaxUploadSize)

	file, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusBadRequest, errUploadTooLarge.Error())
			return
		}
		respondError(c, http.StatusBadRequest, "no file uploaded")
		return
	}

	mediaType, _, err := mime.ParseMediaType(file.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid file type")
		return
	}
	defaultExt, ok := allowedUploadTypes[strings.ToLower(mediaType)]
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid file type")
		return
	}
	if file.Size > MaxUploadSize {
		respondError(c, http.StatusBadRequest, errUploadTooLarge.Error())
		return
	}

	ext := uploadExtension(file.Filename, mediaType, defaultExt)

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read upload")
		return
	}
	defer src.Close()

	name := editorUploadDir + "/" + strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	stored, err := a.files.Save(name, src)
	if err != nil {
		log.Printf("failed to store editor upload: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to save file")
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": a.files.URL(stored)})
}

// uploadExtension keeps the client's extension only when it maps to the
// declared media type, so the media route serves the file with that type.
func uploadExtension(filename, mediaType, defaultExt string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return defaultExt
	}
	extType, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil || !strings.EqualFold(extType, mediaType) {
		return defaultExt
	}
	return ext
}
