package batches

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"twin-sync/core/batch"
	"twin-sync/core/kind"
	"twin-sync/core/logger"
	"twin-sync/core/record"
	"twin-sync/core/report"
	"twin-sync/core/utils"
)

var validate = validator.New()

// Handler handles HTTP requests for batches.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the batch routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/batches")
	group.Get("/", h.HandleListReports)
	group.Post("/", h.HandleSubmitColumns)
	// Registered before /:kind so "upload" is not taken for a kind name.
	group.Post("/upload", h.HandleUpload)
	group.Post("/:kind", h.HandleSubmit)
	group.Get("/:id", h.HandleGetReport)
	group.Get("/:id/failures", h.HandleGetFailures)
	group.Delete("/:id", h.HandleDelete)

	kinds := app.Group("/kinds")
	kinds.Get("/", h.HandleListKinds)
	kinds.Get("/:kind/records/:id", h.HandleGetRecord)
}

// HandleSubmit starts a create batch for a kind.
// @Summary Submit Batch
// @Description Accepts rows of one data kind and reconciles them in the background.
// @Tags batches
// @Accept json
// @Produce json
// @Param kind path string true "Data kind (e.g. 'part-as-planned')"
// @Param request body SubmitRequest true "Rows and sharing metadata"
// @Success 202 {object} AcceptedResponse "Accepted"
// @Failure 400 {object} ErrorResponse "Invalid batch"
// @Failure 500 {object} ErrorResponse "Internal Server Error"
// @Router /batches/{kind} [post]
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	var req SubmitRequest
	if e := bind(c, &req); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	id, err := h.service.Submit(c.Context(), c.Params("kind"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(AcceptedResponse{BatchID: id})
}

// HandleSubmitColumns starts a create batch whose kind is picked by its columns.
// @Summary Submit Batch By Columns
// @Description Selects the first data kind whose columns equal the given columns, then behaves like Submit Batch.
// @Tags batches
// @Accept json
// @Produce json
// @Param request body ColumnsRequest true "Columns, rows and sharing metadata"
// @Success 202 {object} AcceptedResponse "Accepted"
// @Failure 400 {object} ErrorResponse "Invalid batch"
// @Router /batches [post]
func (h *Handler) HandleSubmitColumns(c *fiber.Ctx) error {
	var req ColumnsRequest
	if e := bind(c, &req); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	id, err := h.service.SubmitColumns(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(AcceptedResponse{BatchID: id})
}

// HandleUpload stores a CSV or XLSX file and starts a create batch from it.
// @Summary Upload Batch File
// @Description Stores the file in object storage and reconciles its rows. Without a kind the kind is selected by the file's columns.
// @Tags batches
// @Accept mpfd
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Param kind formData string false "Data kind"
// @Param batch_id formData string false "Batch id"
// @Param metadata formData string false "Sharing metadata as JSON"
// @Success 202 {object} AcceptedResponse "Accepted"
// @Failure 400 {object} ErrorResponse "Invalid file"
// @Router /batches/upload [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "missing file"})
	}

	// Form values alias the request buffer and outlive the handler in the batch.
	req := batch.Request{BatchID: strings.Clone(c.FormValue("batch_id")), Kind: strings.Clone(c.FormValue("kind"))}
	if raw := c.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Meta); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid metadata: " + err.Error()})
		}
	}

	f, err := fh.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer f.Close()

	id, err := h.service.Upload(c.Context(), req, fh.Filename, f, fh.Size)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(AcceptedResponse{BatchID: id})
}

// HandleDelete starts a delete batch undoing a create batch.
// @Summary Delete Batch
// @Description Removes the assets and submodels a create batch produced.
// @Tags batches
// @Produce json
// @Param id path string true "Batch id to undo"
// @Success 202 {object} AcceptedResponse "Accepted"
// @Failure 404 {object} ErrorResponse "Unknown batch"
// @Router /batches/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := h.service.Delete(c.Context(), strings.Clone(c.Params("id")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(AcceptedResponse{BatchID: id})
}

// HandleGetReport returns the process report of a batch.
// @Summary Get Batch Report
// @Tags batches
// @Produce json
// @Param id path string true "Batch id"
// @Success 200 {object} report.ProcessReport "Report"
// @Failure 404 {object} ErrorResponse "Unknown batch"
// @Router /batches/{id} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	r, err := h.service.Report(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(r)
}

// HandleListReports returns the most recent batch reports.
// @Summary List Batch Reports
// @Tags batches
// @Produce json
// @Param limit query int false "Maximum number of reports" default(50)
// @Success 200 {array} report.ProcessReport "Reports"
// @Router /batches [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	reports, err := h.service.Reports(c.Context(), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(reports)
}

// HandleGetFailures returns the failure log of a batch.
// @Summary Get Batch Failures
// @Tags batches
// @Produce json
// @Param id path string true "Batch id"
// @Success 200 {array} failurelog.Entry "Failures"
// @Failure 404 {object} ErrorResponse "Unknown batch"
// @Router /batches/{id}/failures [get]
func (h *Handler) HandleGetFailures(c *fiber.Ctx) error {
	entries, err := h.service.Failures(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(entries)
}

// HandleListKinds returns the registered data kinds.
// @Summary List Data Kinds
// @Tags kinds
// @Produce json
// @Success 200 {array} kind.Schema "Schemas"
// @Router /kinds [get]
func (h *Handler) HandleListKinds(c *fiber.Ctx) error {
	return c.JSON(h.service.Schemas())
}

// HandleGetRecord returns a created record of a kind.
// @Summary Get Record
// @Tags kinds
// @Produce json
// @Param kind path string true "Data kind"
// @Param id path string true "Record id or natural key"
// @Param compact query boolean false "Omit linkage ids"
// @Success 200 {object} map[string]interface{} "Record"
// @Failure 404 {object} ErrorResponse "Unknown record"
// @Router /kinds/{kind}/records/{id} [get]
func (h *Handler) HandleGetRecord(c *fiber.Ctx) error {
	view, err := h.service.Detail(c.Context(), c.Params("kind"), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if utils.ToBool(c.Query("compact")) {
		return c.JSON(fiber.Map{"id": view["id"], "fields": view["fields"]})
	}
	return c.JSON(view)
}

// bind parses and validates a JSON body. It returns the error body of a bad
// request, or nil.
func bind(c *fiber.Ctx, out any) *ErrorResponse {
	if err := c.BodyParser(out); err != nil {
		return &ErrorResponse{Error: "invalid body: " + err.Error()}
	}
	if err := validate.Struct(out); err != nil {
		resp := &ErrorResponse{Error: "validation failed"}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			resp.Fields = make(map[string]string, len(verrs))
			for _, ve := range verrs {
				resp.Fields[ve.Field()] = ve.Tag()
			}
		}
		return resp
	}
	return nil
}

// fail maps err to a status code and writes the error body.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case kind.IsValidation(err):
		status = fiber.StatusBadRequest
	case errors.Is(err, report.ErrNotFound), errors.Is(err, record.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, batch.ErrShuttingDown):
		status = fiber.StatusServiceUnavailable
	default:
		logger.WithRayID(h.service.logger, c).Error("Batch request failed", zap.Error(err))
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
