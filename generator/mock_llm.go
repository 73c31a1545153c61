package generator

import "context"

// MockLLM is a placeholder implementation for local runs; it never calls an
// external model and always returns the same fenced JSON reply.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, _ Prompt) (string, error) {
	return "```json\n" + `{
  "social_posts": [
    {
      "platform": "Twitter",
      "content": "Just read a great piece — here is the one idea you should steal from it. 🚀",
      "hashtags": ["reading", "ideas"]
    },
    {
      "platform": "Twitter",
      "content": "Thread-worthy: the article in one tweet. ☕",
      "hashtags": ["tldr"]
    },
    {
      "platform": "LinkedIn",
      "content": "I came across an article worth your time. Three observations stood out to me, and each has a direct application for how we work.",
      "hashtags": ["leadership", "learning"]
    },
    {
      "platform": "General",
      "content": "Key Takeaways:\n- The core argument in one line\n- The supporting evidence\n- What to do next",
      "hashtags": []
    }
  ]
}` + "\n```", nil
}
