package controller

import (
	"ai-writer-be/internal/dto"
	"ai-writer-be/internal/pkg/serverutils"
	"ai-writer-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ILLMConfigController interface {
	RegisterRoutes(r fiber.Router)
	Upsert(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type llmConfigController struct {
	service service.ILLMConfigService
}

func NewLLMConfigController(service service.ILLMConfigService) ILLMConfigController {
	return &llmConfigController{service: service}
}

func (c *llmConfigController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/llm-config/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Show)
	h.Put("", c.Upsert)
}

func (c *llmConfigController) Upsert(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.UpsertLLMConfigRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Upsert(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save LLM config", res))
}

func (c *llmConfigController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.Show(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get LLM config", res))
}
