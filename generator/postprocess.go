package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

type modelReply struct {
	SocialPosts []Post `json:"social_posts"`
}

// ParsePosts turns the raw model output into a validated Result. Models often
// wrap the JSON in a Markdown code fence even when told not to, so the fence
// is stripped before unmarshalling. Any gap against the required platform set
// fails the whole call.
func ParsePosts(raw string) (Result, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return Result{}, errors.New("model returned empty output")
	}
	cleaned = stripCodeFence(cleaned)

	var reply modelReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return Result{}, fmt.Errorf("unparseable model output: %w", err)
	}
	if len(reply.SocialPosts) == 0 {
		return Result{}, errors.New("model output has no social_posts")
	}

	covered := make(map[string]bool, len(reply.SocialPosts))
	for i, p := range reply.SocialPosts {
		if strings.TrimSpace(p.Platform) == "" {
			return Result{}, fmt.Errorf("post %d has no platform", i)
		}
		if strings.TrimSpace(p.Content) == "" {
			return Result{}, fmt.Errorf("post %d (%s) has no content", i, p.Platform)
		}
		covered[strings.ToLower(strings.TrimSpace(p.Platform))] = true
	}
	for _, want := range RequiredPlatforms {
		if !covered[strings.ToLower(want)] {
			return Result{}, fmt.Errorf("model output missing %s post", want)
		}
	}

	return Result{Posts: reply.SocialPosts}, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// RenderHTML converts post markdown (the Key Takeaways bullets in particular)
// to HTML for the frontend preview.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
