package handlers

// Action is the closed set of inline button callbacks. Keeping it an enum
// with an exhaustive switch in the callback handler means a button without a
// handler is a compile-time mistake, not a runtime warning.
type Action string

const (
	ActionSend            Action = "send"
	ActionCancel          Action = "cancel"
	ActionEdit            Action = "edit"
	ActionEditImage       Action = "edit_image"
	ActionEditText        Action = "edit_text"
	ActionRegenerateImage Action = "regenerate_image"
	ActionUploadImage     Action = "upload_image"
	ActionAIEditText      Action = "ai_edit_text"
	ActionManualEditText  Action = "manual_edit_text"
	ActionBackToPreview   Action = "back_to_preview"
	ActionBackToEdit      Action = "back_to_edit"
	ActionCancelOperation Action = "cancel_operation"
)

// ParseAction maps raw callback data onto the Action enum. Unknown data is
// rejected here so the rest of the handler only ever sees valid actions.
func ParseAction(data string) (Action, bool) {
	switch a := Action(data); a {
	case ActionSend, ActionCancel, ActionEdit,
		ActionEditImage, ActionEditText,
		ActionRegenerateImage, ActionUploadImage,
		ActionAIEditText, ActionManualEditText,
		ActionBackToPreview, ActionBackToEdit,
		ActionCancelOperation:
		return a, true
	default:
		return "", false
	}
}
