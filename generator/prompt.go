package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message pair sent to the LLM.
type Prompt struct {
	System string
	User   string
}

// BuildRipplePrompt asks the model to reformat an article into a fixed set of
// platform posts, returned as a single JSON object.
func BuildRipplePrompt(text string) Prompt {
	var sb strings.Builder
	sb.WriteString("Analyze the following article and generate a set of social media posts based on its content.\n")
	sb.WriteString("The output must be a valid JSON object.\n\n")
	sb.WriteString("The JSON object must have a key called \"social_posts\" which is an array of post objects.\n")
	sb.WriteString("Each post object in the array must have these keys:\n")
	sb.WriteString("- \"platform\": The name of the social media platform (e.g., \"Twitter\", \"LinkedIn\").\n")
	sb.WriteString("- \"content\": The text of the post, written in a style appropriate for the platform.\n")
	sb.WriteString("- \"hashtags\": An array of relevant hashtags as strings, without the '#' symbol.\n\n")
	sb.WriteString("Generate the following posts:\n")
	sb.WriteString("1. Two \"Twitter\" posts. They must be engaging and under 280 characters. Use emojis.\n")
	sb.WriteString("2. One \"LinkedIn\" post. It should be professional and insightful.\n")
	sb.WriteString("3. One \"Key Takeaways\" post for a general audience using bullet points. Use \"General\" as the platform.\n")

	user := fmt.Sprintf("Article to analyze:\n---\n%s\n---", text)

	return Prompt{
		System: sb.String(),
		User:   user,
	}
}
