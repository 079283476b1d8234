package usecase

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"snapstock/internal/domain/entity"
	"snapstock/internal/domain/repository"
	"snapstock/internal/domain/service"
	"snapstock/pkg/errors"
	"snapstock/pkg/logger"
)

// IntakeUseCase owns one IntakeSession per user. A session is created lazily
// on first use and replaced wholesale when the user starts over.
type IntakeUseCase struct {
	imageStore service.ImageStore
	captioner  service.Captioner
	itemRepo   repository.ItemRepository

	mu       sync.Mutex
	sessions map[string]*IntakeSession
}

func NewIntakeUseCase(
	imageStore service.ImageStore,
	captioner service.Captioner,
	itemRepo repository.ItemRepository,
) *IntakeUseCase {
	return &IntakeUseCase{
		imageStore: imageStore,
		captioner:  captioner,
		itemRepo:   itemRepo,
		sessions:   make(map[string]*IntakeSession),
	}
}

func (uc *IntakeUseCase) Session(userID string) *IntakeSession {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	session, ok := uc.sessions[userID]
	if !ok {
		session = newIntakeSession(userID, uc.imageStore, uc.captioner, uc.itemRepo)
		uc.sessions[userID] = session
	}
	return session
}

// EndSession discards the user's draft and cancels any in-flight attempt.
func (uc *IntakeUseCase) EndSession(userID string) {
	uc.mu.Lock()
	session, ok := uc.sessions[userID]
	delete(uc.sessions, userID)
	uc.mu.Unlock()

	if ok {
		session.Cancel()
	}
}

// IntakeSession drives one item through upload, inference, user editing and
// persistence. All entry points serialize on the session mutex; asynchronous
// completions carry the attempt id they were started under and are discarded
// when a newer image selection has superseded them.
type IntakeSession struct {
	userID     string
	imageStore service.ImageStore
	captioner  service.Captioner
	itemRepo   repository.ItemRepository

	mu            sync.Mutex
	state         entity.IntakeState
	attempt       uint64
	cancelAttempt context.CancelFunc
}

func newIntakeSession(
	userID string,
	imageStore service.ImageStore,
	captioner service.Captioner,
	itemRepo repository.ItemRepository,
) *IntakeSession {
	return &IntakeSession{
		userID:     userID,
		imageStore: imageStore,
		captioner:  captioner,
		itemRepo:   itemRepo,
		state:      entity.IntakeIdle{},
	}
}

func (s *IntakeSession) State() entity.IntakeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectImage begins a new intake attempt. Selecting while an earlier upload
// or analysis is still in flight supersedes it: the old attempt's completions
// will no longer match the current attempt id and fall on the floor.
func (s *IntakeSession) SelectImage(image []byte, mimeType string) (entity.IntakeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, submitting := s.state.(entity.IntakeSubmitting); submitting {
		return s.state, errors.Conflict("An item submission is in progress")
	}

	if s.cancelAttempt != nil {
		s.cancelAttempt()
	}

	s.attempt++
	attempt := s.attempt

	// The upload outlives the HTTP request that started it.
	attemptCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	s.cancelAttempt = cancel

	s.state = entity.IntakeUploading{Attempt: attempt}

	go s.runUpload(attemptCtx, attempt, image, mimeType)

	return s.state, nil
}

func (s *IntakeSession) runUpload(ctx context.Context, attempt uint64, image []byte, mimeType string) {
	url, err := s.imageStore.Upload(ctx, bytes.NewReader(image), int64(len(image)), mimeType, func(fraction float64) {
		s.noteProgress(attempt, fraction)
	})
	if err != nil {
		s.uploadFailed(attempt, err)
		return
	}

	if !s.uploadSucceeded(attempt, url) {
		return
	}

	raw, err := s.captioner.Caption(ctx, image, mimeType)
	s.analysisFinished(attempt, raw, err)
}

func (s *IntakeSession) noteProgress(attempt uint64, fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt != s.attempt {
		return
	}
	if st, ok := s.state.(entity.IntakeUploading); ok {
		st.Progress = fraction
		s.state = st
	}
}

func (s *IntakeSession) uploadFailed(attempt uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt != s.attempt {
		logger.Debug("Discarding stale upload failure for user %s (attempt %d)", s.userID, attempt)
		return
	}

	logger.LogIntakeError(s.userID, "upload", err)
	s.state = entity.IntakeFailed{
		Reason:  entity.IntakeFailUpload,
		Message: userMessage(err, "Image upload failed"),
	}
}

// uploadSucceeded moves the attempt into analysis. It reports whether the
// attempt is still current so the caller knows to carry on with inference.
func (s *IntakeSession) uploadSucceeded(attempt uint64, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt != s.attempt {
		logger.Debug("Discarding stale upload completion for user %s (attempt %d)", s.userID, attempt)
		return false
	}

	s.state = entity.IntakeAnalyzing{Attempt: attempt, ImageURL: url}
	return true
}

// analysisFinished reaches Ready on every path: parsed suggestions on success,
// empty fields plus a warning on inference failure. An uploaded image is never
// held hostage by the AI.
func (s *IntakeSession) analysisFinished(attempt uint64, raw string, inferErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt != s.attempt {
		logger.Debug("Discarding stale analysis completion for user %s (attempt %d)", s.userID, attempt)
		return
	}

	analyzing, ok := s.state.(entity.IntakeAnalyzing)
	if !ok {
		return
	}

	if inferErr != nil {
		logger.LogIntakeError(s.userID, "caption", inferErr)
		s.state = entity.IntakeReady{
			ImageURL: analyzing.ImageURL,
			Warning:  userMessage(inferErr, "Automatic description is unavailable; enter the details manually"),
		}
		return
	}

	caption := service.ParseCaption(raw)
	s.state = entity.IntakeReady{
		ImageURL:             analyzing.ImageURL,
		SuggestedTitle:       caption.Title,
		SuggestedDescription: caption.Description,
		EditedTitle:          caption.Title,
		EditedDescription:    caption.Description,
	}
}

type EditDraftInput struct {
	Title        *string
	Description  *string
	SellingPrice *float64
}

// EditDraft updates the user-owned fields. Editing from a persist failure
// returns the draft to Ready; suggestions are never touched.
func (s *IntakeSession) EditDraft(input EditDraftInput) (entity.IntakeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.editableDraft()
	if err != nil {
		return s.state, err
	}

	if input.Title != nil {
		draft.EditedTitle = *input.Title
	}
	if input.Description != nil {
		draft.EditedDescription = *input.Description
	}
	if input.SellingPrice != nil {
		if *input.SellingPrice < 0 {
			return s.state, errors.Validation("selling price must be zero or greater")
		}
		draft.SellingPrice = *input.SellingPrice
	}

	s.state = draft
	return s.state, nil
}

// Submit persists the draft. The guard rejects a blank title or a missing
// image without changing state; a persistence failure keeps the resolved
// image URL and the edited fields so the retry skips upload and inference.
func (s *IntakeSession) Submit(ctx context.Context) (*entity.Item, error) {
	s.mu.Lock()

	if _, submitting := s.state.(entity.IntakeSubmitting); submitting {
		s.mu.Unlock()
		return nil, errors.Conflict("An item submission is in progress")
	}

	draft, err := s.editableDraft()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if strings.TrimSpace(draft.EditedTitle) == "" {
		s.mu.Unlock()
		return nil, errors.Validation("title is required")
	}
	if draft.ImageURL == "" {
		s.mu.Unlock()
		return nil, errors.Validation("an uploaded image is required")
	}

	s.state = entity.IntakeSubmitting{Draft: draft}
	s.mu.Unlock()

	item := &entity.Item{
		OwnerID:      s.userID,
		Title:        strings.TrimSpace(draft.EditedTitle),
		Description:  strings.TrimSpace(draft.EditedDescription),
		SellingPrice: draft.SellingPrice,
		ImageURL:     draft.ImageURL,
	}

	createErr := s.itemRepo.Create(ctx, item)

	s.mu.Lock()
	defer s.mu.Unlock()

	if createErr != nil {
		logger.LogIntakeError(s.userID, "persist", createErr)
		s.state = entity.IntakeFailed{
			Reason:  entity.IntakeFailPersist,
			Message: userMessage(createErr, "Saving the item failed"),
			Draft:   &draft,
		}
		return nil, createErr
	}

	s.state = entity.IntakeDone{ItemID: item.ID}
	return item, nil
}

// Cancel discards the draft and returns to Idle. Any in-flight attempt is
// superseded, so its completions will be discarded.
func (s *IntakeSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelAttempt != nil {
		s.cancelAttempt()
		s.cancelAttempt = nil
	}
	s.attempt++
	s.state = entity.IntakeIdle{}
}

// editableDraft returns the draft for states that allow editing or submit:
// Ready itself, or a persist failure that preserved the draft.
func (s *IntakeSession) editableDraft() (entity.IntakeReady, error) {
	switch st := s.state.(type) {
	case entity.IntakeReady:
		return st, nil
	case entity.IntakeFailed:
		if st.Reason == entity.IntakeFailPersist && st.Draft != nil {
			return *st.Draft, nil
		}
		return entity.IntakeReady{}, errors.BadRequest("No draft to edit; select an image first", nil)
	default:
		return entity.IntakeReady{}, errors.BadRequest("No editable draft in the current intake step", nil)
	}
}

func userMessage(err error, fallback string) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
