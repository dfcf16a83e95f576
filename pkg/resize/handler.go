package resize

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/z1media/bannerpost/pkg/metrics"
	"github.com/z1media/bannerpost/pkg/util"
)

// Request is the POST /resize body.
type Request struct {
	Image      string      `json:"image" validate:"required"`
	Dimensions []Dimension `json:"dimensions" validate:"required,min=1,dive"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	presets []Preset
}

func NewHandler(presets []Preset) *Handler {
	return &Handler{presets: presets}
}

func (h *Handler) MountRoutes(e *echo.Echo) {
	e.POST("/resize", h.Resize)
	e.GET("/dimensions", h.Dimensions)
}

// Resize renders the uploaded image at every requested dimension and
// returns a map of "WxH" labels to PNG data URIs.
func (h *Handler) Resize(c echo.Context) error {
	start := time.Now()

	var req Request
	if err := c.Bind(&req); err != nil {
		metrics.ResizesTotal.WithLabelValues("invalid_request").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing image or dimensions"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.ResizesTotal.WithLabelValues("invalid_request").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing image or dimensions"})
	}

	data, err := util.ParseDataURI(req.Image)
	if err != nil {
		metrics.ResizesTotal.WithLabelValues("invalid_request").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid base64 image format"})
	}

	img, err := Decode(data)
	if err != nil {
		slog.Error("Image processing failed", "error", err)
		metrics.ResizesTotal.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to process image"})
	}

	results, err := RenderAll(img, req.Dimensions)
	if err != nil {
		slog.Error("Image processing failed", "error", err)
		metrics.ResizesTotal.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to process image"})
	}

	metrics.ResizesTotal.WithLabelValues("ok").Inc()
	metrics.ResizeDuration.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, results)
}

// Dimensions returns the banner presets offered to clients.
func (h *Handler) Dimensions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.presets)
}
