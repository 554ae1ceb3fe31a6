package handlers

import (
	"errors"
	"net/http"

	"filling_line/internal/service"
	"filling_line/internal/tags"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errGetTags         = "failed to read tags"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// MethodCallRequest is the body of POST /api/v1/methods/{name}.
type MethodCallRequest struct {
	// Positional arguments in declaration order.
	Args []any `json:"args"`
}

// TagResponse is a single tag with its kind.
type TagResponse struct {
	Name  string     `json:"name" example:"MachineStatus"`
	Kind  string     `json:"kind" example:"String"`
	Value tags.Value `json:"value" swaggertype:"string" example:"Running"`
}

// statusCodeHTTP maps a method result code to the HTTP status returned.
func statusCodeHTTP(code tags.StatusCode) int {
	switch code {
	case tags.Good:
		return http.StatusOK
	case tags.BadMethodInvalid:
		return http.StatusNotFound
	case tags.BadArgumentsMissing, tags.BadTooManyArguments, tags.BadTypeMismatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Read all tags
// @Description  Last published reading of the address space, keyed by tag name.
// @Tags         tags
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, at, tags"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/tags [get]
func (h *Handler) getTags(c *gin.Context) {
	f, err := h.services.Monitoring.GetTags(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetTags, "tags_read_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version": f.Version,
		"at":      f.At,
		"tags":    f.Map(),
	})
}

// @Summary      Read one tag
// @Tags         tags
// @Produce      json
// @Param        name  path      string  true  "Tag name"  example(ActualFillVolume)
// @Success      200   {object}  TagResponse
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/tags/{name} [get]
func (h *Handler) getTag(c *gin.Context) {
	name := c.Param("name")
	v, err := h.services.Monitoring.GetTag(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTag) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown tag " + name})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetTags, "tag_read_failed", err, "tag", name)
		return
	}
	c.JSON(http.StatusOK, TagResponse{Name: name, Kind: v.Kind().String(), Value: v})
}

// @Summary      Machine status
// @Description  Status, cleaning cycle, station, tank level and order progress.
// @Tags         tags
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	f, err := h.services.Monitoring.GetTags(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetTags, "status_read_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"machine_status":            f.Get(tags.MachineStatus),
		"cleaning_cycle_status":     f.Get(tags.CleaningCycleStatus),
		"current_station":           f.Get(tags.CurrentStation),
		"product_level_tank":        f.Get(tags.ProductLevelTank),
		"production_order":          f.Get(tags.ProductionOrder),
		"production_order_progress": f.Get(tags.ProductionOrderProgress),
		"at":                        f.At,
	})
}

// @Summary      Active alarms
// @Tags         tags
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "active_alarms, alarm_count"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alarms [get]
func (h *Handler) getAlarms(c *gin.Context) {
	f, err := h.services.Monitoring.GetTags(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetTags, "alarms_read_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active_alarms": f.Get(tags.ActiveAlarms),
		"alarm_count":   f.Get(tags.AlarmCount),
	})
}

// @Summary      List methods
// @Tags         methods
// @Produce      json
// @Success      200  {array}  tags.Method
// @Router       /api/v1/methods [get]
func (h *Handler) listMethods(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Control.Methods())
}

// @Summary      Call a method
// @Description  Invokes a machine method with positional arguments. Rejected arguments leave the machine untouched.
// @Tags         methods
// @Accept       json
// @Produce      json
// @Param        name  path      string             true   "Method name"  example(AdjustFillVolume)
// @Param        body  body      MethodCallRequest  false  "Arguments"
// @Success      200   {object}  tags.Result
// @Failure      400   {object}  tags.Result
// @Failure      404   {object}  tags.Result
// @Failure      500   {object}  tags.Result
// @Router       /api/v1/methods/{name} [post]
func (h *Handler) callMethod(c *gin.Context) {
	var req MethodCallRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}

	res := h.services.Control.Call(c.Request.Context(), c.Param("name"), req.Args)
	c.JSON(statusCodeHTTP(res.Code), res)
}
