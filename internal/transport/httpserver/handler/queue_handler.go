package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-queue-service/internal/app/service"
	"media-queue-service/internal/playqueue"
	"media-queue-service/internal/transport/httpserver/dto"
	"media-queue-service/internal/validator"
)

// QueueHandler handles play queue session requests.
type QueueHandler struct {
	queues    *service.QueueService
	infos     *service.InfoService
	validator *validator.Validator
	fetchWait time.Duration
	logger    *zap.Logger
}

// NewQueueHandler creates a new QueueHandler. fetchWait bounds how long a
// ?wait=true fetch blocks before answering as dispatched.
func NewQueueHandler(
	queues *service.QueueService,
	infos *service.InfoService,
	v *validator.Validator,
	fetchWait time.Duration,
	logger *zap.Logger,
) *QueueHandler {
	return &QueueHandler{
		queues:    queues,
		infos:     infos,
		validator: v,
		fetchWait: fetchWait,
		logger:    logger,
	}
}

// Create handles POST /api/v1/queues
func (h *QueueHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateQueueRequest
	if err := c.BodyParser(&req); err != nil {
		return validationResponse(c, err)
	}
	if err := h.validator.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	var (
		sess *service.Session
		err  error
	)
	if req.Index == nil {
		sess, err = h.queues.Create(req.Source())
	} else {
		info, infoErr := h.infos.GetInfo(c.UserContext(), req.Source(), false)
		if infoErr != nil {
			return errorResponse(c, infoErr)
		}
		sess, err = h.queues.CreateFromInfo(info, *req.Index)
	}
	if err != nil {
		h.logger.Error("create queue failed", zap.String("url", req.URL), zap.Error(err))
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FromSession(sess))
}

// Get handles GET /api/v1/queues/:id
func (h *QueueHandler) Get(c *fiber.Ctx) error {
	sess, err := h.queues.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(dto.FromSession(sess))
}

// Fetch handles POST /api/v1/queues/:id/fetch
func (h *QueueHandler) Fetch(c *fiber.Ctx) error {
	sess, err := h.queues.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	var q dto.FetchQuery
	if err := c.QueryParser(&q); err != nil {
		return validationResponse(c, err)
	}

	done, ok := sess.Queue.Fetch()
	if !ok {
		state := sess.Queue.State()
		if state == playqueue.StateExhausted {
			return c.JSON(dto.FetchResponse{Status: dto.FetchStatusExhausted, State: state.String()})
		}
		return c.Status(fiber.StatusConflict).JSON(dto.FetchResponse{Status: dto.FetchStatusRejected, State: state.String()})
	}

	dispatched := dto.FetchResponse{Status: dto.FetchStatusDispatched, State: playqueue.StateFetching.String()}
	if !q.Wait {
		return c.Status(fiber.StatusAccepted).JSON(dispatched)
	}

	timer := time.NewTimer(h.fetchWait)
	defer timer.Stop()

	select {
	case res := <-done:
		resp := dto.FromFetchResult(res)
		if res.Err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(resp)
		}
		return c.JSON(resp)
	case <-timer.C:
		return c.Status(fiber.StatusAccepted).JSON(dispatched)
	}
}

// Advance handles POST /api/v1/queues/:id/advance
// When the cursor waits on the next page a fetch is dispatched on the caller's behalf.
func (h *QueueHandler) Advance(c *fiber.Ctx) error {
	sess, err := h.queues.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	move := sess.Queue.Advance()

	resp := moveResponse(sess.Queue, move)
	if move == playqueue.AwaitingFetch {
		_, resp.FetchDispatched = sess.Queue.Fetch()
	}

	return c.JSON(resp)
}

// Retreat handles POST /api/v1/queues/:id/retreat
func (h *QueueHandler) Retreat(c *fiber.Ctx) error {
	sess, err := h.queues.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(moveResponse(sess.Queue, sess.Queue.Retreat()))
}

// Reset handles POST /api/v1/queues/:id/reset
func (h *QueueHandler) Reset(c *fiber.Ctx) error {
	sess, err := h.queues.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	sess.Queue.Reset()

	return c.JSON(dto.FromSession(sess))
}

// Delete handles DELETE /api/v1/queues/:id
func (h *QueueHandler) Delete(c *fiber.Ctx) error {
	if err := h.queues.Dispose(c.Params("id")); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func moveResponse(q *playqueue.Queue, move playqueue.Move) dto.MoveResponse {
	resp := dto.MoveResponse{
		Move:   move.String(),
		Cursor: q.Cursor(),
	}
	if item, ok := q.Current(); ok {
		current := dto.FromQueueItem(item)
		resp.Current = &current
	}

	return resp
}
