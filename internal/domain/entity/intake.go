package entity

// IntakePhase names the step the intake pipeline is at.
type IntakePhase string

const (
	IntakePhaseIdle       IntakePhase = "idle"
	IntakePhaseUploading  IntakePhase = "uploading"
	IntakePhaseAnalyzing  IntakePhase = "analyzing"
	IntakePhaseReady      IntakePhase = "ready"
	IntakePhaseSubmitting IntakePhase = "submitting"
	IntakePhaseDone       IntakePhase = "done"
	IntakePhaseFailed     IntakePhase = "failed"
)

// IntakeFailReason distinguishes the two recoverable failure entries.
type IntakeFailReason string

const (
	IntakeFailUpload  IntakeFailReason = "upload_error"
	IntakeFailPersist IntakeFailReason = "persist_error"
)

// IntakeState is a tagged variant: each phase carries only the fields that are
// meaningful in that phase, so reading a suggestion while uploading is a type
// error rather than a zero value.
type IntakeState interface {
	Phase() IntakePhase
}

type IntakeIdle struct{}

func (IntakeIdle) Phase() IntakePhase { return IntakePhaseIdle }

type IntakeUploading struct {
	Attempt  uint64  `json:"attempt"`
	Progress float64 `json:"progress"`
}

func (IntakeUploading) Phase() IntakePhase { return IntakePhaseUploading }

type IntakeAnalyzing struct {
	Attempt  uint64 `json:"attempt"`
	ImageURL string `json:"image_url"`
}

func (IntakeAnalyzing) Phase() IntakePhase { return IntakePhaseAnalyzing }

// IntakeReady holds the editable draft. Suggested fields are the parser output
// and never change; edited fields start as copies and belong to the user.
// Warning is non-empty when inference failed and the suggestions are blank.
type IntakeReady struct {
	ImageURL             string  `json:"image_url"`
	SuggestedTitle       string  `json:"suggested_title"`
	SuggestedDescription string  `json:"suggested_description"`
	EditedTitle          string  `json:"edited_title"`
	EditedDescription    string  `json:"edited_description"`
	SellingPrice         float64 `json:"selling_price"`
	Warning              string  `json:"warning,omitempty"`
}

func (IntakeReady) Phase() IntakePhase { return IntakePhaseReady }

type IntakeSubmitting struct {
	Draft IntakeReady `json:"draft"`
}

func (IntakeSubmitting) Phase() IntakePhase { return IntakePhaseSubmitting }

type IntakeDone struct {
	ItemID string `json:"item_id"`
}

func (IntakeDone) Phase() IntakePhase { return IntakePhaseDone }

// IntakeFailed keeps the draft around for persist failures so a retry does not
// re-upload or re-run inference. Draft is nil for upload failures.
type IntakeFailed struct {
	Reason  IntakeFailReason `json:"reason"`
	Message string           `json:"message"`
	Draft   *IntakeReady     `json:"draft,omitempty"`
}

func (IntakeFailed) Phase() IntakePhase { return IntakePhaseFailed }
