package video

// ActionType tags the single recommended next step for a video.
type ActionType string

const (
	ActionAddScript  ActionType = "add_script"
	ActionRecord     ActionType = "record"
	ActionApprove    ActionType = "approve"
	ActionUploadEdit ActionType = "upload_edit"
	ActionPost       ActionType = "post"
	ActionRegenerate ActionType = "re_generate"
	ActionDone       ActionType = "done"
)

// Action is the derived next step. Labels here are defaults; presentation
// layers own the final wording and styling.
type Action struct {
	Type               ActionType
	Label              string
	RequiredCapability string
}

// Snapshot is the read-only slice of a video the status model derives from.
type Snapshot struct {
	Status            RecordingStatus
	HasLockedScript   bool
	ScriptNotRequired bool
	HasFinalVideo     bool
}

// Readiness holds the three binary production-readiness indicators.
type Readiness struct {
	HasScript bool
	HasRaw    bool
	HasFinal  bool
}

// NextAction derives the recommended action for a snapshot. Checks run in a
// fixed order and the first match wins; the function is total over every
// status and flag combination.
func NextAction(v Snapshot) Action {
	switch {
	case v.Status == StatusGeneratingScript:
		// Waiting on generation; surfaced as the script step but not actionable.
		return Action{Type: ActionAddScript, Label: "Generating Script", RequiredCapability: "script"}
	case !v.ScriptNotRequired && (v.Status == StatusNeedsScript || !v.HasLockedScript):
		return Action{Type: ActionAddScript, Label: "Add Script", RequiredCapability: "script"}
	case v.ScriptNotRequired && (v.Status == "" || v.Status == StatusNeedsScript || v.Status == StatusNotRecorded):
		return Action{Type: ActionRecord, Label: "Record", RequiredCapability: "record"}
	case v.Status == StatusNotRecorded:
		return Action{Type: ActionRecord, Label: "Record", RequiredCapability: "record"}
	case v.Status == StatusReadyForReview:
		return Action{Type: ActionApprove, Label: "Review", RequiredCapability: "review"}
	case v.Status == StatusRecorded || v.Status == StatusEdited:
		return Action{Type: ActionApprove, Label: "Review", RequiredCapability: "review"}
	case v.Status == StatusApprovedNeedsEdits:
		return Action{Type: ActionUploadEdit, Label: "Mark Ready to Post", RequiredCapability: "edit"}
	case v.Status == StatusReadyToPost:
		return Action{Type: ActionPost, Label: "Post", RequiredCapability: "post"}
	case v.Status == StatusRejected:
		return Action{Type: ActionRegenerate, Label: "Regenerate", RequiredCapability: "script"}
	default:
		return Action{Type: ActionDone, Label: "Done"}
	}
}

// DeriveReadiness computes the script/raw/final indicators for a snapshot.
func DeriveReadiness(v Snapshot) Readiness {
	preRecording := v.Status == StatusNeedsScript ||
		v.Status == StatusGeneratingScript ||
		v.Status == StatusNotRecorded

	return Readiness{
		HasScript: v.HasLockedScript || v.ScriptNotRequired,
		HasRaw:    v.Status != "" && !preRecording,
		HasFinal: v.HasFinalVideo ||
			v.Status == StatusEdited ||
			v.Status == StatusReadyToPost ||
			v.Status == StatusPosted,
	}
}
