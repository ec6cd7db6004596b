package handler

import (
	"github.com/gofiber/fiber/v2"

	"podapi/internal/service"
)

type databaseConnectionRequest struct {
	SystemID    string `json:"system_id" validate:"required"`
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
	IPAddress   string `json:"ip_address" validate:"required"`
	Port        int    `json:"port" validate:"gte=1,lte=65535"`
	ServiceName string `json:"service_name" validate:"required"`
}

type databaseConnectionResponse struct {
	Message      string `json:"message"`
	ConnectionID int64  `json:"connection_id"`
}

// CreateDatabaseConnection godoc
// @Summary Register credentials of an external database
// @Tags database
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} databaseConnectionResponse
// @Failure 409 {object} errorPayload
// @Router /db-connection [post]
func CreateDatabaseConnection(svc service.DatabaseConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req databaseConnectionRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		conn, err := svc.Register(c.UserContext(), service.DatabaseConnectionInput{
			SystemID:    req.SystemID,
			Username:    req.Username,
			Password:    req.Password,
			IPAddress:   req.IPAddress,
			Port:        req.Port,
			ServiceName: req.ServiceName,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(databaseConnectionResponse{
			Message:      "Database connection created successfully",
			ConnectionID: conn.ID,
		})
	}
}
