package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"podapi/internal/http/middleware"
	"podapi/internal/model"
	"podapi/internal/service"
)

const documentURLExpiry = 15 * time.Minute

type createFileRequest struct {
	FileID            string     `json:"file_id" validate:"required"`
	Filename          string     `json:"filename" validate:"required"`
	BLNumber          string     `json:"bl_number" validate:"required"`
	ShipTo            *string    `json:"ship_to"`
	Carrier           *string    `json:"carrier"`
	StampType         *string    `json:"stamp_type"`
	PODDate           *time.Time `json:"pod_date"`
	Signature         *string    `json:"signature"`
	IssuedQty         *int       `json:"issued_qty" validate:"omitnil,gte=0"`
	ReceivedQty       *int       `json:"received_qty" validate:"omitnil,gte=0"`
	NoneQty           *int       `json:"none_qty" validate:"omitnil,gte=0"`
	DamaQty           *int       `json:"dama_qty" validate:"omitnil,gte=0"`
	ShortQty          *int       `json:"short_qty" validate:"omitnil,gte=0"`
	OveraQty          *int       `json:"overa_qty" validate:"omitnil,gte=0"`
	RefusQty          *int       `json:"refus_qty" validate:"omitnil,gte=0"`
	SealI             *string    `json:"seal_i"`
	RecognitionStatus string     `json:"recognition_status" validate:"required"`
	ReviewStatus      string     `json:"review_status" validate:"required"`
	ReviewedBy        *string    `json:"reviewed_by"`
	CreatedOn         *time.Time `json:"created_on"`
	ChangedOn         *time.Time `json:"changed_on"`
}

// updateFileRequest only carries the fields the client sent.
type updateFileRequest struct {
	FileID            *string    `json:"file_id" validate:"omitnil,min=1"`
	Filename          *string    `json:"filename" validate:"omitnil,min=1"`
	BLNumber          *string    `json:"bl_number" validate:"omitnil,min=1"`
	ShipTo            *string    `json:"ship_to"`
	Carrier           *string    `json:"carrier"`
	StampType         *string    `json:"stamp_type"`
	PODDate           *time.Time `json:"pod_date"`
	Signature         *string    `json:"signature"`
	IssuedQty         *int       `json:"issued_qty" validate:"omitnil,gte=0"`
	ReceivedQty       *int       `json:"received_qty" validate:"omitnil,gte=0"`
	NoneQty           *int       `json:"none_qty" validate:"omitnil,gte=0"`
	DamaQty           *int       `json:"dama_qty" validate:"omitnil,gte=0"`
	ShortQty          *int       `json:"short_qty" validate:"omitnil,gte=0"`
	OveraQty          *int       `json:"overa_qty" validate:"omitnil,gte=0"`
	RefusQty          *int       `json:"refus_qty" validate:"omitnil,gte=0"`
	SealI             *string    `json:"seal_i"`
	RecognitionStatus *string    `json:"recognition_status"`
	ReviewStatus      *string    `json:"review_status"`
	ReviewedBy        *string    `json:"reviewed_by"`
	ChangedOn         *time.Time `json:"changed_on"`
}

type documentURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// TotalCountHeader carries the unpaged count of list endpoints.
const TotalCountHeader = "X-Total-Count"

// ListFiles godoc
// @Summary List the caller's files
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param limit query int false "page size, at most 100; omitted returns every file"
// @Param offset query int false "rows to skip" default(0)
// @Success 200 {array} model.File
// @Header 200 {integer} X-Total-Count "number of files the caller owns"
// @Router /files/ [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		limit, err := queryInt(c, "limit", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), user.ID, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(TotalCountHeader, strconv.Itoa(res.Total))
		if res.Items == nil {
			res.Items = []model.File{}
		}
		return c.JSON(res.Items)
	}
}

// CreateFile godoc
// @Summary Create a file record
// @Tags files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} model.File
// @Failure 409 {object} errorPayload
// @Router /files/ [post]
func CreateFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var req createFileRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		f, err := svc.Create(c.UserContext(), user.ID, service.CreateFileInput{
			FileID:            req.FileID,
			Filename:          req.Filename,
			BLNumber:          req.BLNumber,
			ShipTo:            req.ShipTo,
			Carrier:           req.Carrier,
			StampType:         req.StampType,
			PODDate:           req.PODDate,
			Signature:         req.Signature,
			IssuedQty:         req.IssuedQty,
			ReceivedQty:       req.ReceivedQty,
			NoneQty:           req.NoneQty,
			DamaQty:           req.DamaQty,
			ShortQty:          req.ShortQty,
			OveraQty:          req.OveraQty,
			RefusQty:          req.RefusQty,
			SealI:             req.SealI,
			RecognitionStatus: req.RecognitionStatus,
			ReviewStatus:      req.ReviewStatus,
			ReviewedBy:        req.ReviewedBy,
			CreatedOn:         req.CreatedOn,
			ChangedOn:         req.ChangedOn,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// GetFile godoc
// @Summary Fetch one file
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path int true "file id"
// @Success 200 {object} model.File
// @Failure 404 {object} errorPayload
// @Router /files/{id} [get]
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		f, err := svc.Get(c.UserContext(), user.ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// UpdateFile godoc
// @Summary Modify the provided fields of a file
// @Tags files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "file id"
// @Success 200 {object} model.File
// @Failure 404 {object} errorPayload
// @Router /files/{id} [put]
func UpdateFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateFileRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		f, err := svc.Update(c.UserContext(), user.ID, id, service.FileUpdate{
			FileID:            req.FileID,
			Filename:          req.Filename,
			BLNumber:          req.BLNumber,
			ShipTo:            req.ShipTo,
			Carrier:           req.Carrier,
			StampType:         req.StampType,
			PODDate:           req.PODDate,
			Signature:         req.Signature,
			IssuedQty:         req.IssuedQty,
			ReceivedQty:       req.ReceivedQty,
			NoneQty:           req.NoneQty,
			DamaQty:           req.DamaQty,
			ShortQty:          req.ShortQty,
			OveraQty:          req.OveraQty,
			RefusQty:          req.RefusQty,
			SealI:             req.SealI,
			RecognitionStatus: req.RecognitionStatus,
			ReviewStatus:      req.ReviewStatus,
			ReviewedBy:        req.ReviewedBy,
			ChangedOn:         req.ChangedOn,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// EnableAutoConfirm godoc
// @Summary Turn on auto-confirm for a file
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path int true "file id"
// @Success 200 {object} messagePayload
// @Router /files/{id}/auto-confirm [put]
func EnableAutoConfirm(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.EnableAutoConfirm(c.UserContext(), user.ID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: "Auto-confirm enabled"})
	}
}

// DeleteFile godoc
// @Summary Delete a file, its history and its stored document
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path int true "file id"
// @Success 200 {object} messagePayload
// @Failure 404 {object} errorPayload
// @Router /files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), user.ID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: "File deleted successfully"})
	}
}

// SearchFiles godoc
// @Summary Search the caller's files
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param file_id query string false "partial match"
// @Param bl_number query string false "partial match"
// @Param filename query string false "partial match"
// @Param ship_to query string false "partial match"
// @Param carrier query string false "partial match"
// @Param recognition_status query string false "exact match"
// @Param review_status query string false "exact match"
// @Param changed_on query string false "date, YYYY-MM-DD or RFC3339"
// @Param created_on query string false "date, YYYY-MM-DD or RFC3339"
// @Success 200 {array} model.File
// @Router /files/search/ [get]
func SearchFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		filter := model.FileFilter{
			FileID:            c.Query("file_id"),
			BLNumber:          c.Query("bl_number"),
			Filename:          c.Query("filename"),
			RecognitionStatus: c.Query("recognition_status"),
			ReviewStatus:      c.Query("review_status"),
			ShipTo:            c.Query("ship_to"),
			Carrier:           c.Query("carrier"),
		}
		var err error
		if filter.ChangedOn, err = queryDate(c, "changed_on"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "invalid changed_on")
		}
		if filter.CreatedOn, err = queryDate(c, "created_on"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "invalid created_on")
		}

		files, err := svc.Search(c.UserContext(), user.ID, filter)
		if err != nil {
			return writeServiceError(c, err)
		}
		if files == nil {
			files = []model.File{}
		}
		return c.JSON(files)
	}
}

// FileHistory godoc
// @Summary History of a file, newest first
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param file_id path int true "file id"
// @Success 200 {array} model.FileHistory
// @Failure 404 {object} errorPayload
// @Router /history/{file_id} [get]
func FileHistory(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "file_id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		hist, err := svc.History(c.UserContext(), user.ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if hist == nil {
			hist = []model.FileHistory{}
		}
		return c.JSON(hist)
	}
}

// UploadDocument godoc
// @Summary Attach the scanned POD document to a file
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "file id"
// @Param file formData file true "scan"
// @Success 200 {object} model.File
// @Failure 503 {object} errorPayload
// @Router /files/{id}/document [post]
func UploadDocument(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		src, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer src.Close()

		ct := fh.Header.Get(fiber.HeaderContentType)
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}

		f, err := svc.UploadDocument(c.UserContext(), user.ID, id, service.UploadInput{
			Reader:      src,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// DocumentURL godoc
// @Summary Presigned download URL for the file's document
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path int true "file id"
// @Success 200 {object} documentURLResponse
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /files/{id}/document [get]
func DocumentURL(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.DocumentURL(c.UserContext(), user.ID, id, documentURLExpiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(documentURLResponse{URL: url, ExpiresIn: int(documentURLExpiry.Seconds())})
	}
}

// DocumentContent godoc
// @Summary Stream the file's document through the API
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "file id"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /files/{id}/document/content [get]
func DocumentContent(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, info, err := svc.OpenDocument(c.UserContext(), user.ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}

		if name := info.Metadata["original-filename"]; name != "" {
			c.Attachment(name)
		}
		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		// fasthttp closes rc once the body is written
		return c.SendStream(rc, size)
	}
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// queryDate accepts a calendar date or a full RFC3339 timestamp.
func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fiber.ErrBadRequest
}
