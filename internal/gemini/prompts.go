package gemini

// summarizePrompt shortens a raw news submission. The model tends to add
// commentary, hence the trailing constraint.
const summarizePrompt = "Shorten this news item for a social media post: %s. The reply must contain ONLY the news text!"

// imagePromptPrompt asks the text model for a prompt suitable for the image
// model. The format string takes the current post text.
const imagePromptPrompt = "Write an image generation prompt for a photo illustrating this news item, reply with the prompt only: %s"

// editTextPrompt rewrites post text from a user instruction. It always works
// from the original submission, not the latest rewrite, so repeated edits do
// not drift. The format string takes the instruction, then the text.
const editTextPrompt = "Change the text according to this instruction: '%s'. Current text: '%s'. Return only the changed text, without any explanations."
