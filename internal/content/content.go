// Package content turns an arbitrated decision into a platform-ready
// social media post, optionally with a generated image.
package content

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/llm"
)

// Platform identifies a supported social network.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
)

const (
	postTemperature = 0.8
	postMaxTokens   = 500
)

type platformSpec struct {
	CharLimit    int
	Style        string
	HashtagCount int
}

var platformSpecs = map[Platform]platformSpec{
	PlatformTwitter: {
		CharLimit:    280,
		Style:        "Punchy, concise, engaging. Use 1-2 relevant hashtags. Make it quotable.",
		HashtagCount: 2,
	},
	PlatformInstagram: {
		CharLimit:    2200,
		Style:        "Visual storytelling, conversational, emoji-friendly. Use 5-10 hashtags.",
		HashtagCount: 8,
	},
	PlatformLinkedIn: {
		CharLimit:    3000,
		Style:        "Professional, value-driven, thought leadership. Use 3-5 hashtags.",
		HashtagCount: 4,
	},
}

// InferPlatform picks the target platform mentioned in the decision's
// implementation text. Keywords are checked in a fixed order and the
// first hit wins; the bare "ig" substring counts as instagram. Anything
// unrecognized posts to twitter.
func InferPlatform(implementation string) Platform {
	lower := strings.ToLower(implementation)
	switch {
	case strings.Contains(lower, "twitter") || strings.Contains(lower, "x.com"):
		return PlatformTwitter
	case strings.Contains(lower, "instagram") || strings.Contains(lower, "ig"):
		return PlatformInstagram
	case strings.Contains(lower, "linkedin"):
		return PlatformLinkedIn
	default:
		return PlatformTwitter
	}
}

var postingTimes = map[Platform]string{
	PlatformTwitter:   "9:00 AM EST",
	PlatformInstagram: "11:00 AM EST",
	PlatformLinkedIn:  "8:00 AM EST",
}

// Post is the finished artifact handed to the pipeline.
type Post struct {
	Platform    Platform `json:"platform"`
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags"`
	PostingTime string   `json:"posting_time"`
	CharCount   int      `json:"char_count"`
	ImagePath   string   `json:"image_path,omitempty"`
}

// Generator drafts post copy from a decision using the configured
// language model.
type Generator struct {
	client llm.Client
	images *ImageClient
}

// Option configures a Generator.
type Option func(*Generator)

// WithImageClient enables image generation for GenerateComplete.
func WithImageClient(ic *ImageClient) Option {
	return func(g *Generator) { g.images = ic }
}

// NewGenerator builds a Generator over the given model client.
func NewGenerator(client llm.Client, opts ...Option) *Generator {
	g := &Generator{client: client}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

const copywriterSystemPrompt = "You are an expert social media copywriter. Write compelling, platform-optimized posts."

// GeneratePost writes the final post text for the given platform. A model
// failure here aborts the pipeline rather than producing placeholder copy.
func (g *Generator) GeneratePost(ctx context.Context, decision *council.Decision, campaign council.CampaignContext, platform Platform) (*Post, error) {
	spec, ok := platformSpecs[platform]
	if !ok {
		spec = platformSpecs[PlatformTwitter]
		platform = PlatformTwitter
	}

	prompt := postPrompt(decision, campaign, platform, spec)
	caption, err := g.client.Complete(ctx, copywriterSystemPrompt, prompt,
		llm.WithTemperature(postTemperature), llm.WithMaxTokens(postMaxTokens))
	if err != nil {
		return nil, fmt.Errorf("content: generate %s post: %w", platform, err)
	}
	caption = strings.TrimSpace(caption)

	return &Post{
		Platform:    platform,
		Caption:     caption,
		Hashtags:    extractHashtags(caption),
		PostingTime: postingTimes[platform],
		CharCount:   utf8.RuneCountInString(caption),
	}, nil
}

// GenerateComplete drafts the post and, when an image client is configured,
// attaches a generated image. Image failures do not fail the post.
func (g *Generator) GenerateComplete(ctx context.Context, decision *council.Decision, campaign council.CampaignContext, platform Platform, imagePath string) (*Post, error) {
	post, err := g.GeneratePost(ctx, decision, campaign, platform)
	if err != nil {
		return nil, err
	}
	if g.images == nil || imagePath == "" {
		return post, nil
	}
	saved, err := g.images.Generate(ctx, ImagePrompt(decision, campaign), imagePath)
	if err != nil {
		return post, nil
	}
	post.ImagePath = saved
	return post, nil
}

// ImagePrompt builds a short diffusion prompt from the campaign. The
// deliberately simple phrasing renders better than the full decision text.
func ImagePrompt(decision *council.Decision, campaign council.CampaignContext) string {
	brand := campaign.BrandName
	if brand == "" {
		brand = "tech"
	}
	product := campaign.ProductInfo
	if product == "" {
		product = "product"
	}
	return fmt.Sprintf("%s %s, modern professional design, marketing photography", brand, product)
}

func postPrompt(decision *council.Decision, campaign council.CampaignContext, platform Platform, spec platformSpec) string {
	brand := campaign.BrandName
	if brand == "" {
		brand = "Tech Startup"
	}
	product := campaign.ProductInfo
	if product == "" {
		product = "AI Product"
	}
	audience := campaign.TargetAudience
	if audience == "" {
		audience = "Tech professionals"
	}
	decided := decision.Decision
	if decided == "" {
		decided = "Create engaging post"
	}
	impl := decision.Implementation
	if impl == "" {
		impl = "Professional approach"
	}

	upper := strings.ToUpper(string(platform))
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s post based on this marketing decision:\n\n", upper)
	fmt.Fprintf(&b, "BRAND: %s\n", brand)
	fmt.Fprintf(&b, "PRODUCT: %s\n", product)
	fmt.Fprintf(&b, "TARGET AUDIENCE: %s\n\n", audience)
	fmt.Fprintf(&b, "DECISION FROM COUNCIL:\n%s\n\n", decided)
	fmt.Fprintf(&b, "IMPLEMENTATION STRATEGY:\n%s\n\n", impl)
	fmt.Fprintf(&b, "PLATFORM: %s\n", upper)
	fmt.Fprintf(&b, "CHARACTER LIMIT: %d\n", spec.CharLimit)
	fmt.Fprintf(&b, "STYLE GUIDE: %s\n\n", spec.Style)
	b.WriteString("Generate a complete post that:\n")
	b.WriteString("1. Captures attention immediately\n")
	b.WriteString("2. Communicates the key value proposition\n")
	fmt.Fprintf(&b, "3. Includes %d relevant hashtags\n", spec.HashtagCount)
	fmt.Fprintf(&b, "4. Stays under %d characters\n", spec.CharLimit)
	b.WriteString("5. Includes a clear call-to-action\n\n")
	b.WriteString("Provide ONLY the post text, ready to publish. No explanations or meta-commentary.")
	return b.String()
}

func extractHashtags(text string) []string {
	var tags []string
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "#") {
			tags = append(tags, word)
		}
	}
	return tags
}
