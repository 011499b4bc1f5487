package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
)

const (
	imageCacheControl = "public, s-maxage=3600, stale-while-revalidate=86400"
	imageProxyHeader  = "X-Image-Proxy"
	imageProxyValue   = "notion-block"
	imageUserAgent    = "aexsite-notion-image-proxy/1.0"
)

var errNotHostedImage = errors.New("block is not a hosted image")

func (h *httpHandler) handleImage(c *gin.Context) {
	rawID, err := url.PathUnescape(c.Param("blockId"))
	if err != nil {
		rawID = c.Param("blockId")
	}
	blockID := notion.NormalizeID(rawID)
	if blockID == "" {
		c.Data(http.StatusBadRequest, contentTypePlain, []byte("Missing block id"))
		return
	}
	if h.blocks == nil {
		c.Data(http.StatusBadGateway, contentTypePlain, []byte("Failed to resolve image source"))
		return
	}

	ctx := c.Request.Context()
	block, err := h.blocks.RetrieveBlock(ctx, blockID)
	if err != nil {
		if notion.IsNotFound(err) {
			c.Data(http.StatusNotFound, contentTypePlain, []byte("Not a hosted image block"))
			return
		}
		h.logger.Error("image block resolution failed", zap.String("block_id", blockID), zap.Error(err))
		c.Data(http.StatusBadGateway, contentTypePlain, []byte("Failed to resolve image source"))
		return
	}
	imageURL, err := hostedImageURL(block)
	if err != nil {
		c.Data(http.StatusNotFound, contentTypePlain, []byte("Not a hosted image block"))
		return
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		h.logger.Error("image request build failed", zap.String("block_id", blockID), zap.Error(err))
		c.Data(http.StatusBadGateway, contentTypePlain, []byte("Failed to fetch image"))
		return
	}
	request.Header.Set("User-Agent", imageUserAgent)
	upstream, err := h.imageClient.Do(request)
	if err != nil {
		h.logger.Error("image fetch failed", zap.String("block_id", blockID), zap.Error(err))
		c.Data(http.StatusBadGateway, contentTypePlain, []byte("Failed to fetch image"))
		return
	}
	defer upstream.Body.Close()
	if upstream.StatusCode < 200 || upstream.StatusCode > 299 {
		h.logger.Warn("image upstream rejected request", zap.String("block_id", blockID), zap.Int("status", upstream.StatusCode))
		c.Data(http.StatusBadGateway, contentTypePlain, []byte("Image fetch failed"))
		return
	}

	if contentType := upstream.Header.Get("Content-Type"); contentType != "" {
		c.Header("Content-Type", contentType)
	}
	if contentLength := upstream.Header.Get("Content-Length"); contentLength != "" {
		c.Header("Content-Length", contentLength)
	}
	c.Header("Cache-Control", imageCacheControl)
	c.Header(imageProxyHeader, imageProxyValue)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, upstream.Body); err != nil {
		h.logger.Warn("image stream interrupted", zap.String("block_id", blockID), zap.Error(err))
	}
}

func hostedImageURL(block notion.Block) (string, error) {
	if !block.IsFull() || block.Type != notion.BlockTypeImage || block.Image == nil || block.Image.Type != notion.FileTypeFile {
		return "", errNotHostedImage
	}
	source := strings.TrimSpace(block.Image.SourceURL())
	if source == "" {
		return "", errNotHostedImage
	}
	return source, nil
}
