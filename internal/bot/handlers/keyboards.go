package handlers

import "github.com/go-telegram/bot/models"

// Inline keyboards for each interaction menu. The menus are purely
// declarative; which one is attached to the preview message is the only
// "menu state" the bot has.

func previewKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Send", CallbackData: string(ActionSend)}},
			{{Text: "Cancel", CallbackData: string(ActionCancel)}},
			{{Text: "Edit", CallbackData: string(ActionEdit)}},
		},
	}
}

func editMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Change image", CallbackData: string(ActionEditImage)}},
			{{Text: "Change text", CallbackData: string(ActionEditText)}},
			{{Text: "« Back", CallbackData: string(ActionBackToPreview)}},
		},
	}
}

func imageEditKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Regenerate", CallbackData: string(ActionRegenerateImage)}},
			{{Text: "Upload my own", CallbackData: string(ActionUploadImage)}},
			{{Text: "« Back", CallbackData: string(ActionBackToEdit)}},
		},
	}
}

func textEditKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "AI edit", CallbackData: string(ActionAIEditText)}},
			{{Text: "Manually", CallbackData: string(ActionManualEditText)}},
			{{Text: "« Back", CallbackData: string(ActionBackToEdit)}},
		},
	}
}

func cancelKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Cancel", CallbackData: string(ActionCancelOperation)}},
		},
	}
}
