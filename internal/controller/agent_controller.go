package controller

import (
	"ai-writer-be/internal/agent/eventbus"
	"ai-writer-be/internal/dto"
	"ai-writer-be/internal/pkg/logger"
	"ai-writer-be/internal/pkg/serverutils"
	"ai-writer-be/internal/service"
	internalWS "ai-writer-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Execute(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
}

type agentController struct {
	service service.IAgentService
	bus     *eventbus.Bus
	logger  logger.ILogger
}

func NewAgentController(service service.IAgentService, bus *eventbus.Bus, log logger.ILogger) IAgentController {
	return &agentController{service: service, bus: bus, logger: log}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	h.Post("/writer/execute", serverutils.JwtMiddleware, c.Execute)
	h.Get("/sessions/:session_id/messages", serverutils.JwtMiddleware, c.History)
	h.Get("/sessions/:session_id/status", serverutils.JwtMiddleware, c.Status)
	// Browsers cannot set headers on websocket handshakes, so the stream
	// route authenticates itself via ?token= instead of the middleware.
	h.Get("/ws/:session_id", c.Stream)
}

func (c *agentController) Execute(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ExecuteAgentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Execute(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Agent session started", res))
}

func (c *agentController) History(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	sessionId := ctx.Params("session_id")

	res, err := c.service.History(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session history", res))
}

func (c *agentController) Status(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	sessionId := ctx.Params("session_id")

	res, err := c.service.Status(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session status", res))
}

func (c *agentController) Stream(ctx *fiber.Ctx) error {
	userId, err := serverutils.ParseWsToken(ctx)
	if err != nil {
		return err
	}
	sessionId := ctx.Params("session_id")

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("AgentController", "Starting agent stream", map[string]interface{}{
				"user_id":    userId,
				"session_id": sessionId,
			})
			internalWS.ServeAgentStream(c.bus, conn, sessionId, c.logger)
			c.logger.Info("AgentController", "Agent stream ended", map[string]interface{}{
				"user_id":    userId,
				"session_id": sessionId,
			})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
