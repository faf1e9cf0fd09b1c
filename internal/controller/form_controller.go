// FILE: internal/controller/form_controller.go
package controller

import (
	"errors"
	"fmt"
	"io"

	"voiceform-be/internal/dto"
	"voiceform-be/internal/entity"
	"voiceform-be/internal/pkg/serverutils"
	"voiceform-be/internal/service"
	"voiceform-be/pkg/pdfform"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IFormController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	UpdateState(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
}

type formController struct {
	sessions      service.ISessionService
	syncer        service.ISyncService
	extractor     pdfform.SchemaExtractor
	validate      *validator.Validate
	maxUploadSize int
}

func NewFormController(
	sessions service.ISessionService,
	syncer service.ISyncService,
	extractor pdfform.SchemaExtractor,
	validate *validator.Validate,
	maxUploadSize int,
) IFormController {
	return &formController{
		sessions:      sessions,
		syncer:        syncer,
		extractor:     extractor,
		validate:      validate,
		maxUploadSize: maxUploadSize,
	}
}

func (c *formController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/form")
	h.Post("/upload", c.Upload)
	h.Post("/update_state", c.UpdateState)
	h.Get("/status/:id", c.Status)
	h.Post("/confirm/:id", c.Confirm)
	h.Post("/reset/:id", c.Reset)
	h.Get("/download/:id", c.Download)
}

// Upload accepts a multipart document, extracts its form structure and opens
// a new session for it.
func (c *formController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.TypedErrorResponse(400, "validation_error", "file is required"))
	}
	if fileHeader.Size > int64(c.maxUploadSize) {
		return ctx.Status(fiber.StatusRequestEntityTooLarge).
			JSON(serverutils.TypedErrorResponse(413, "validation_error",
				fmt.Sprintf("file exceeds the %d byte limit", c.maxUploadSize)))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.TypedErrorResponse(500, "internal_error", "failed to read upload"))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.TypedErrorResponse(500, "internal_error", "failed to read upload"))
	}

	extraction, err := c.extractor.Extract(data, fileHeader.Filename)
	if err != nil {
		return uploadError(ctx, err)
	}

	sess, err := c.sessions.Create(ctx.UserContext(), extraction, data)
	if err != nil {
		if errors.Is(err, entity.ErrSchemaEmpty) {
			return uploadError(ctx, pdfform.ErrNoFields)
		}
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.TypedErrorResponse(500, "internal_error", err.Error()))
	}

	schema := sess.Schema
	fields := make([]dto.FieldInfo, 0, schema.Size())
	for _, name := range schema.FieldNames() {
		fields = append(fields, dto.FieldInfo{Name: name, Label: schema.Label(name)})
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.UploadFormResponse{
		FormId:      sess.Id,
		FieldCount:  schema.Size(),
		Fields:      fields,
		Truncated:   schema.Truncated() || extraction.Truncated,
		CatalogHash: schema.CatalogHash(),
	})
}

// UpdateState is the REST submission path for field updates. It serves both
// direct clients and forwarded fallback requests from sibling instances; the
// forwarded header stops a second hop.
func (c *formController) UpdateState(ctx *fiber.Ctx) error {
	var req dto.UpdateFieldsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.TypedErrorResponse(400, "validation_error", "malformed JSON body"))
	}
	if err := c.validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.TypedErrorResponse(400, "validation_error", err.Error()))
	}

	forwarded := ctx.Get(service.ForwardedHeader()) != ""
	resp, err := c.syncer.Sync(ctx.UserContext(), req.FormId, req.Updates, forwarded)
	if err != nil {
		return sessionError(ctx, err)
	}
	return ctx.JSON(resp)
}

func (c *formController) Status(ctx *fiber.Ctx) error {
	res, err := c.sessions.Status(ctx.Params("id"))
	if err != nil {
		return sessionError(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *formController) Confirm(ctx *fiber.Ctx) error {
	if err := c.sessions.Confirm(ctx.UserContext(), ctx.Params("id")); err != nil {
		return sessionError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true})
}

func (c *formController) Reset(ctx *fiber.Ctx) error {
	if err := c.sessions.Reset(ctx.UserContext(), ctx.Params("id")); err != nil {
		return sessionError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true})
}

func (c *formController) Download(ctx *fiber.Ctx) error {
	filled, err := c.sessions.Download(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return sessionError(ctx, err)
	}
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="filled_form.pdf"`)
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	return ctx.Send(filled)
}

// sessionError maps core errors onto the HTTP taxonomy. Unknown or expired
// sessions are indistinguishable to clients.
func sessionError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		return ctx.Status(fiber.StatusNotFound).
			JSON(serverutils.TypedErrorResponse(404, "unknown_session", "session expired or unknown"))
	case errors.Is(err, entity.ErrFormIncomplete):
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.TypedErrorResponse(400, "validation_error", "form not fully filled"))
	case errors.Is(err, entity.ErrNotConfirmed):
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.TypedErrorResponse(400, "validation_error", "completion not confirmed"))
	default:
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.TypedErrorResponse(500, "internal_error", err.Error()))
	}
}

func uploadError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pdfform.ErrNotPDF),
		errors.Is(err, pdfform.ErrEncrypted),
		errors.Is(err, pdfform.ErrNotAcroForm),
		errors.Is(err, pdfform.ErrNoFields),
		errors.Is(err, pdfform.ErrParseFailed):
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.TypedErrorResponse(400, "validation_error", err.Error()))
	default:
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.TypedErrorResponse(500, "internal_error", err.Error()))
	}
}
