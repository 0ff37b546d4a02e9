package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/internal/availability"
	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/metrics"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingPeriod   = wsPongWait * 9 / 10
	wsReadLimit    = 64 << 10
	wsBuildTimeout = 10 * time.Second
)

// AvailabilityHandler 可用时间与可用性表 HTTP / WebSocket 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
	upgrader        websocket.Upgrader
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// NewAvailabilityHandler 创建 AvailabilityHandler
// allowOrigins 为空或包含 "*" 时不校验 Origin
func NewAvailabilityHandler(
	availabilitySvc service.AvailabilityService,
	allowOrigins []string,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AvailabilityHandler {
	anyOrigin := len(allowOrigins) == 0 || lo.Contains(allowOrigins, "*")
	return &AvailabilityHandler{
		availabilitySvc: availabilitySvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || lo.Contains(allowOrigins, origin)
			},
		},
		metrics: m,
		logger:  logger,
	}
}

// GetMyTimes 查看自己勾选的时间段
// GET /api/v1/officer-times/me
func (h *AvailabilityHandler) GetMyTimes(c *gin.Context) {
	var req dto.OfficerTimesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	officerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	result, err := h.availabilitySvc.GetMine(c.Request.Context(), officerID, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, result)
}

// SetMyTimes 整体替换自己勾选的时间段
// PUT /api/v1/officer-times/me
func (h *AvailabilityHandler) SetMyTimes(c *gin.Context) {
	var req dto.SetOfficerTimesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	officerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	result, err := h.availabilitySvc.SetMine(c.Request.Context(), officerID, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, result)
}

// GetTable 计算可用性表
// GET /api/v1/availability?cycle_id=&officer_ids=&required_ids=&min_officers=
func (h *AvailabilityHandler) GetTable(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.availabilitySvc.Table(c.Request.Context(), &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, result)
}

// ────────────────────── WebSocket ──────────────────────

// wsRequestMeta 记录每个序号对应的周期与阈值，结果返回时回填
type wsRequestMeta struct {
	cycleID     string
	minOfficers int
}

// Live 实时可用性会话：每条客户端消息是一次输入，服务端只推送最新结果
// GET /api/v1/availability/ws
func (h *AvailabilityHandler) Live(c *gin.Context) {
	officerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已写入错误响应
		h.logger.Warn("WebSocket 升级失败", zap.String("officer_id", officerID), zap.Error(err))
		return
	}
	defer conn.Close()

	worker := availability.NewWorker(h.metrics.ObserveCalculation)

	var (
		mu    sync.Mutex
		metas = make(map[uint64]wsRequestMeta)
	)
	errCh := make(chan string, 4)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		h.writeLoop(conn, worker.Results(), errCh, func(seq uint64) (wsRequestMeta, bool) {
			mu.Lock()
			defer mu.Unlock()
			meta, ok := metas[seq]
			// 更早的序号已被覆盖，不会再有结果
			for s := range metas {
				if s <= seq {
					delete(metas, s)
				}
			}
			return meta, ok
		})
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	h.logger.Debug("可用性会话开始", zap.String("officer_id", officerID))

	for {
		var req dto.AvailabilityRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("读取 WebSocket 消息失败", zap.String("officer_id", officerID), zap.Error(err))
			}
			break
		}
		if req.MinOfficers != nil && (*req.MinOfficers < 0 || *req.MinOfficers > 50) {
			pushError(errCh, "min_officers 超出范围")
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), wsBuildTimeout)
		cycleID, in, err := h.availabilitySvc.BuildInput(ctx, &req)
		cancel()
		if err != nil {
			pushError(errCh, availabilityErrorMessage(err))
			continue
		}

		// 先登记再提交，避免结果先于登记到达
		mu.Lock()
		seq := worker.Submit(in)
		metas[seq] = wsRequestMeta{cycleID: cycleID, minOfficers: in.Options.MinOfficers}
		mu.Unlock()
	}

	worker.Close()
	<-writerDone
	h.logger.Debug("可用性会话结束", zap.String("officer_id", officerID))
}

// writeLoop 是连接上唯一的写者
func (h *AvailabilityHandler) writeLoop(
	conn *websocket.Conn,
	results <-chan availability.Result,
	errCh <-chan string,
	lookup func(seq uint64) (wsRequestMeta, bool),
) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	failed := false
	write := func(msg dto.AvailabilityWSMessage) {
		if failed {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Warn("写入 WebSocket 消息失败", zap.Error(err))
			failed = true
			// 让读循环尽快退出
			_ = conn.Close()
		}
	}

	for {
		select {
		case res, ok := <-results:
			if !ok {
				if !failed {
					_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				}
				return
			}
			meta, _ := lookup(res.Seq)
			write(dto.AvailabilityWSMessage{
				Seq: res.Seq,
				Data: &dto.AvailabilityResponse{
					CycleID:     meta.cycleID,
					MinOfficers: meta.minOfficers,
					Table:       res.Table,
				},
			})
		case msg := <-errCh:
			write(dto.AvailabilityWSMessage{Error: msg})
		case <-ticker.C:
			if failed {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				failed = true
				_ = conn.Close()
			}
		}
	}
}

// pushError 错误消息通道满时丢弃
func pushError(ch chan<- string, msg string) {
	select {
	case ch <- msg:
	default:
	}
}

func availabilityErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNoActiveCycle):
		return "当前没有进行中的纳新周期"
	case errors.Is(err, service.ErrCycleNotFound):
		return "纳新周期不存在"
	default:
		return "服务器内部错误"
	}
}

// handleAvailabilityError 统一处理可用时间模块业务错误
func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTimeSlot):
		response.BadRequest(c, 19001, "包含不存在或不属于该周期的时间段")
	case errors.Is(err, service.ErrNoActiveCycle):
		response.NotFound(c, 19002, "当前没有进行中的纳新周期")
	case errors.Is(err, service.ErrCycleNotFound):
		response.NotFound(c, 19003, "纳新周期不存在")
	default:
		response.InternalError(c)
	}
}
