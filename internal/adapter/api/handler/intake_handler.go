package handler

import (
	"io"

	"github.com/labstack/echo/v4"

	"snapstock/internal/domain/entity"
	"snapstock/internal/infrastructure/storage"
	"snapstock/internal/usecase"
	"snapstock/pkg/errors"
	"snapstock/pkg/logger"
	"snapstock/pkg/response"
)

type IntakeHandler struct {
	intakeUseCase *usecase.IntakeUseCase
}

func NewIntakeHandler(intakeUseCase *usecase.IntakeUseCase) *IntakeHandler {
	return &IntakeHandler{
		intakeUseCase: intakeUseCase,
	}
}

// intakeStateView is the wire shape of the session state: the phase tag plus
// the phase-specific fields.
type intakeStateView struct {
	Phase entity.IntakePhase `json:"phase"`
	State entity.IntakeState `json:"state,omitempty"`
}

func viewOf(state entity.IntakeState) intakeStateView {
	return intakeStateView{Phase: state.Phase(), State: state}
}

func (h *IntakeHandler) GetState(c echo.Context) error {
	uid := c.Get("uid").(string)
	state := h.intakeUseCase.Session(uid).State()
	return response.Success(c, viewOf(state))
}

// SelectImage starts a new intake attempt from an uploaded photo. Item image
// validation happens here, before the blob store is ever called.
func (h *IntakeHandler) SelectImage(c echo.Context) error {
	uid := c.Get("uid").(string)

	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	contentType := file.Header.Get("Content-Type")
	if err := storage.ValidateImage(contentType, file.Size); err != nil {
		logger.Warn("Rejected intake image for user %s: %v", uid, err)
		return response.Error(c, err)
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	defer src.Close()

	image, err := io.ReadAll(src)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}

	state, err := h.intakeUseCase.Session(uid).SelectImage(image, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, viewOf(state))
}

type editDraftRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	SellingPrice *float64 `json:"selling_price"`
}

func (h *IntakeHandler) EditDraft(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req editDraftRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	state, err := h.intakeUseCase.Session(uid).EditDraft(usecase.EditDraftInput{
		Title:        req.Title,
		Description:  req.Description,
		SellingPrice: req.SellingPrice,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, viewOf(state))
}

func (h *IntakeHandler) Submit(c echo.Context) error {
	uid := c.Get("uid").(string)

	item, err := h.intakeUseCase.Session(uid).Submit(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

func (h *IntakeHandler) Cancel(c echo.Context) error {
	uid := c.Get("uid").(string)
	h.intakeUseCase.EndSession(uid)
	return response.Success(c, viewOf(entity.IntakeIdle{}))
}
