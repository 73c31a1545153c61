package generator

import (
	"sort"
	"strconv"
	"strings"
)

// Post is one reformatted output targeted at a single platform.
type Post struct {
	Platform string   `json:"platform"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// Result holds every post produced for one article.
type Result struct {
	Posts []Post `json:"posts"`
}

// RequiredPlatforms is the set every successful generation must cover.
var RequiredPlatforms = []string{"Twitter", "LinkedIn", "General"}

// PlatformPosts folds the post list into a platform → post-text mapping.
// Keys are lowercased; when the model returns several posts for the same
// platform (two tweets is the normal case) later ones get a _2, _3 suffix.
// Hashtags are rendered into the post text as a trailing line.
func (r Result) PlatformPosts() map[string]string {
	out := make(map[string]string, len(r.Posts))
	seen := make(map[string]int, len(r.Posts))
	for _, p := range r.Posts {
		key := strings.ToLower(strings.TrimSpace(p.Platform))
		if key == "" {
			continue
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key = key + "_" + strconv.Itoa(n)
		}
		out[key] = p.Render()
	}
	return out
}

// Render returns the post text ready to paste: content plus a hashtag line.
func (p Post) Render() string {
	content := strings.TrimSpace(p.Content)
	if len(p.Hashtags) == 0 {
		return content
	}
	tags := make([]string, 0, len(p.Hashtags))
	for _, h := range p.Hashtags {
		h = strings.TrimSpace(strings.TrimPrefix(h, "#"))
		if h != "" {
			tags = append(tags, "#"+h)
		}
	}
	if len(tags) == 0 {
		return content
	}
	return content + "\n\n" + strings.Join(tags, " ")
}

// Platforms lists the distinct platform names present, sorted for stable output.
func (r Result) Platforms() []string {
	set := make(map[string]struct{}, len(r.Posts))
	for _, p := range r.Posts {
		set[strings.ToLower(strings.TrimSpace(p.Platform))] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
