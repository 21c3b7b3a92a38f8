package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Punk/internal/adapters/blob"
	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
)

func (h *Handler) upload(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	if h.Cfg.Upload.MaxBytes > 0 {
		// multipart framing needs some headroom over the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Cfg.Upload.MaxBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			abortWithError(c, blob.ErrTooLarge)
			return
		}
		abortWithError(c, fmt.Errorf("%w: file field required", core.ErrValidation))
		return
	}
	if h.Cfg.Upload.MaxBytes > 0 && fh.Size > h.Cfg.Upload.MaxBytes {
		abortWithError(c, blob.ErrTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer f.Close()

	att, err := h.Orch.Upload(c.Request.Context(), currentUser(c).ID, code, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(code)).Str("file", att.StoredName).Msg("upload stored")
	c.JSON(http.StatusCreated, att)
}

// parseRange understands "bytes=N-" and "bytes=N-M". ok is false when no
// Range header was sent.
func parseRange(header string) (start, end int64, ok bool, err error) {
	if header == "" {
		return 0, -1, false, nil
	}
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found || strings.Contains(spec, ",") {
		return 0, 0, true, blob.ErrRangeInvalid
	}
	from, to, found := strings.Cut(spec, "-")
	if !found || from == "" {
		return 0, 0, true, blob.ErrRangeInvalid
	}
	start, err = strconv.ParseInt(from, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, true, blob.ErrRangeInvalid
	}
	end = -1
	if to != "" {
		end, err = strconv.ParseInt(to, 10, 64)
		if err != nil || end < start {
			return 0, 0, true, blob.ErrRangeInvalid
		}
	}
	return start, end, true, nil
}

func (h *Handler) media(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	if _, err := h.Orch.GetRoom(code, currentUser(c).ID); errors.Is(err, core.ErrUnauthorized) {
		abortWithError(c, err)
		return
	}

	start, end, ranged, err := parseRange(c.GetHeader("Range"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusRequestedRangeNotSatisfiable, gin.H{"error": err.Error()})
		return
	}
	br, err := h.Orch.Blobs.ReadRange(c.Request.Context(), code, c.Param("name"), start, end)
	if errors.Is(err, blob.ErrRangeInvalid) {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", br.Size))
		abortWithError(c, err)
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer br.Body.Close()

	c.Header("Accept-Ranges", "bytes")
	status := http.StatusOK
	if ranged {
		status = http.StatusPartialContent
		c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.Start, br.End, br.Size))
	}
	mimeType := br.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.DataFromReader(status, max(0, br.End-br.Start+1), mimeType, br.Body, nil)
}
