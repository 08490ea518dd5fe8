package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"user-api/internal/entity"
	"user-api/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type messageResponse struct {
	Message string `json:"Message"`
}

type errorsResponse struct {
	Errors []string `json:"Errors"`
}

var userNotFound = messageResponse{Message: "User not found"}

// GetUsers lists all users --> /users
func (h *UserHandler) GetUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.userService.GetUsers(c.Request().Context()))
}

// GetUserByID retrieves a user by ID --> /users/:id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// CreateUser creates a new user --> /users
func (h *UserHandler) CreateUser(c echo.Context) error {
	user := entity.User{}
	if err := c.Bind(&user); err != nil {
		return bindError(c, err)
	}

	createdUser, err := h.userService.CreateUser(c.Request().Context(), &user)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/users/%d", createdUser.ID))
	return c.JSON(http.StatusCreated, createdUser)
}

// UpdateUser replaces name, email and age of a user --> /users/:id
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	user := entity.User{}
	if err := c.Bind(&user); err != nil {
		return bindError(c, err)
	}

	updatedUser, err := h.userService.UpdateUser(c.Request().Context(), id, &user)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, updatedUser)
}

// DeleteUser removes a user --> /users/:id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted"})
}

// userID parses the :id segment. A non-integer segment is treated like an
// unmatched route.
func userID(c echo.Context) (int, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.ErrNotFound
	}
	return int(id), nil
}

func writeError(c echo.Context, err error) error {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, errorsResponse{Errors: validationErr.Errors})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, userNotFound)
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// bindError keeps echo's own status (415 for a non-JSON body) and answers
// everything else as a bad payload.
func bindError(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnsupportedMediaType {
		return err
	}
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
}
