package routes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/socialcause/cause-api/apperror"
	"github.com/socialcause/cause-api/models"
	"github.com/socialcause/cause-api/services"
	"github.com/socialcause/cause-api/utils"
)

// 每个请求的处理超时
const requestTimeout = 10 * time.Second

type APIRoutes struct {
	causes        *services.CauseService
	contributions *services.ContributionService

	// WebSocket相关
	upgrader   websocket.Upgrader
	clients    map[*websocket.Conn]string
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.Mutex
}

func NewAPIRoutes(db *gorm.DB) *APIRoutes {
	ar := &APIRoutes{
		causes:        services.NewCauseService(db),
		contributions: services.NewContributionService(db),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源的WebSocket连接
			},
		},
		clients:    make(map[*websocket.Conn]string),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}

	// 启动WebSocket处理协程
	go ar.runWebSocketHub()

	return ar
}

// SetupRoutes 设置路由
func (ar *APIRoutes) SetupRoutes(router *gin.Engine) {
	router.GET("/", ar.Health)

	causes := router.Group("/causes")
	{
		causes.POST("", ar.CreateCause)
		causes.GET("", ar.ListCauses)
		causes.GET("/:id", ar.GetCause)
		causes.PUT("/:id", ar.UpdateCause)
		causes.DELETE("/:id", ar.DeleteCause)
		causes.POST("/:id/contribute", ar.CreateContribution)
		causes.GET("/:id/contribute", ar.GetContributionSummary)
		causes.GET("/:id/qrcode", ar.CauseQRCode) // 分享二维码
	}

	// WebSocket路由
	router.GET("/ws", ar.WebSocketHandler)
}

// Health 健康检查
func (ar *APIRoutes) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Social Cause API is running"})
}

// causeID parses the :id path segment, writing a 400 on malformed input.
func causeID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Invalid cause ID: %s", raw)})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service errors onto status codes. Every error body is
// {"detail": <message>}; unknown faults are logged and never leaked.
func writeError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": appErr.Detail})
		case errors.Is(err, apperror.ErrConflict):
			c.JSON(http.StatusBadRequest, gin.H{"detail": appErr.Detail})
		case errors.Is(err, apperror.ErrValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": appErr.Detail})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": appErr.Detail})
		}
		return
	}

	log.Printf("Unhandled error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}

// CreateCause 创建募捐项目
func (ar *APIRoutes) CreateCause(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var req models.CauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	cause, err := ar.causes.Create(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cause)
}

// ListCauses 获取所有募捐项目
func (ar *APIRoutes) ListCauses(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	causes, err := ar.causes.ListAll(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, causes)
}

// GetCause 获取单个募捐项目
func (ar *APIRoutes) GetCause(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := causeID(c)
	if !ok {
		return
	}

	cause, err := ar.causes.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cause)
}

// UpdateCause 更新募捐项目，要求完整的payload
func (ar *APIRoutes) UpdateCause(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := causeID(c)
	if !ok {
		return
	}

	var req models.CauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	cause, err := ar.causes.Update(ctx, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cause)
}

// DeleteCause 删除募捐项目（级联删除捐款记录）
func (ar *APIRoutes) DeleteCause(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := causeID(c)
	if !ok {
		return
	}

	message, err := ar.causes.Delete(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: message})
}

// CreateContribution 创建捐款记录
func (ar *APIRoutes) CreateContribution(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := causeID(c)
	if !ok {
		return
	}

	var req models.ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	contribution, err := ar.contributions.Contribute(ctx, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	// 推送实时捐款消息
	ar.broadcastContribution(contribution)

	c.JSON(http.StatusOK, contribution)
}

// GetContributionSummary 获取捐款汇总
func (ar *APIRoutes) GetContributionSummary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := causeID(c)
	if !ok {
		return
	}

	summary, err := ar.contributions.Summarize(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CauseQRCode 生成募捐项目分享二维码
func (ar *APIRoutes) CauseQRCode(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, ok := causeID(c)
	if !ok {
		return
	}

	cause, err := ar.causes.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	shareURL := fmt.Sprintf("%s://%s/causes/%s", scheme, c.Request.Host, cause.ID)

	qrBytes, err := utils.GenerateQRCode(shareURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", qrBytes)
}
