// Package registry holds the compiled-in prompt catalog: every prompt key the
// product ships with, its placeholders, and its hard-coded default text and
// generation parameters. The catalog is the resolver's last fallback tier and
// the editor's source of truth for "what prompts exist".
package registry

import (
	"github.com/google/uuid"

	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
)

// Category is a fixed topic tag grouping prompts in the editor UI.
type Category string

const (
	CategoryOutreach Category = "outreach"
	CategoryResearch Category = "research"
	CategoryContent  Category = "content"
	CategorySocial   Category = "social"
	CategoryAds      Category = "ads"
)

// Entry is one immutable catalog record. Loaded once, never mutated.
type Entry struct {
	Key                      string   `json:"key"`
	Category                 Category `json:"category"`
	DisplayName              string   `json:"display_name"`
	Description              string   `json:"description"`
	Placeholders             []string `json:"placeholders"`
	DefaultSystemInstruction string   `json:"default_system_instruction"`
	DefaultPromptTemplate    string   `json:"default_prompt_template"`
	DefaultTemperature       float64  `json:"default_temperature"`
	DefaultTopP              float64  `json:"default_top_p"`
}

var entries = []Entry{
	{
		Key:          "sales_outreach",
		Category:     CategoryOutreach,
		DisplayName:  "Sales Outreach Email",
		Description:  "Cold outreach email tailored to a lead's company and role.",
		Placeholders: []string{"{{first_name}}", "{{company}}", "{{role}}", "{{pain_point}}"},
		DefaultSystemInstruction: "You are a senior B2B sales copywriter. Write concise, personable " +
			"outreach that leads with the prospect's problem, never with the product. " +
			"Keep every email under 120 words and end with a single low-friction ask.",
		DefaultPromptTemplate: "Write a cold outreach email to {{first_name}}, {{role}} at {{company}}. " +
			"Their likely pain point: {{pain_point}}. One short paragraph, one question to close.",
		DefaultTemperature: 0.8,
		DefaultTopP:        0.9,
	},
	{
		Key:          "email_followup",
		Category:     CategoryOutreach,
		DisplayName:  "Follow-up Email",
		Description:  "Polite follow-up referencing the previous touch.",
		Placeholders: []string{"{{first_name}}", "{{company}}", "{{last_touch_summary}}"},
		DefaultSystemInstruction: "You are a B2B sales copywriter writing follow-ups. Reference the " +
			"earlier message in one clause, add one new piece of value, and keep it under 80 words. " +
			"Never apologise for following up.",
		DefaultPromptTemplate: "Write a follow-up email to {{first_name}} at {{company}}. " +
			"Previous touch: {{last_touch_summary}}.",
		DefaultTemperature: 0.7,
		DefaultTopP:        0.9,
	},
	{
		Key:          "lead_research",
		Category:     CategoryResearch,
		DisplayName:  "Lead Research Brief",
		Description:  "Structured research summary for a single lead.",
		Placeholders: []string{"{{company}}", "{{industry}}", "{{website}}"},
		DefaultSystemInstruction: "You are a sales research analyst. Produce factual, skimmable briefs. " +
			"Separate verified facts from inference and flag anything uncertain.",
		DefaultPromptTemplate: "Research {{company}} ({{industry}}, {{website}}). Summarise: what they do, " +
			"team size signals, recent news, and three conversation openers.",
		DefaultTemperature: 0.3,
		DefaultTopP:        0.8,
	},
	{
		Key:          "company_brief",
		Category:     CategoryResearch,
		DisplayName:  "Company One-Pager",
		Description:  "One-page account summary for handoffs and call prep.",
		Placeholders: []string{"{{company}}", "{{deal_stage}}", "{{notes}}"},
		DefaultSystemInstruction: "You are a revenue-operations analyst. Compress CRM notes into a " +
			"one-page account brief. Preserve numbers exactly; never invent figures.",
		DefaultPromptTemplate: "Build an account one-pager for {{company}} at stage {{deal_stage}} " +
			"from these notes: {{notes}}.",
		DefaultTemperature: 0.2,
		DefaultTopP:        0.8,
	},
	{
		Key:          "content_blog",
		Category:     CategoryContent,
		DisplayName:  "Blog Draft",
		Description:  "Long-form blog draft from a topic and audience.",
		Placeholders: []string{"{{topic}}", "{{audience}}", "{{keywords}}"},
		DefaultSystemInstruction: "You are a content marketer who writes like a practitioner, not an " +
			"agency. Favour concrete examples over adjectives. Use the given keywords naturally.",
		DefaultPromptTemplate: "Draft a blog post on {{topic}} for {{audience}}. " +
			"Work in these keywords: {{keywords}}. Include an outline, then the draft.",
		DefaultTemperature: 0.9,
		DefaultTopP:        0.95,
	},
	{
		Key:          "content_newsletter",
		Category:     CategoryContent,
		DisplayName:  "Newsletter Issue",
		Description:  "Customer newsletter issue from bullet-point updates.",
		Placeholders: []string{"{{updates}}", "{{audience}}"},
		DefaultSystemInstruction: "You are writing a product newsletter readers actually open. Lead with " +
			"the most useful update, keep sections short, and write subject lines without clickbait.",
		DefaultPromptTemplate: "Turn these updates into a newsletter issue for {{audience}}: {{updates}}. " +
			"Propose three subject lines first.",
		DefaultTemperature: 0.8,
		DefaultTopP:        0.9,
	},
	{
		Key:          "social_post",
		Category:     CategorySocial,
		DisplayName:  "Social Post",
		Description:  "Short social post announcing or repurposing content.",
		Placeholders: []string{"{{platform}}", "{{topic}}", "{{link}}"},
		DefaultSystemInstruction: "You are a social media manager for a B2B brand. Match the platform's " +
			"register, hook in the first line, and use at most two hashtags.",
		DefaultPromptTemplate: "Write a {{platform}} post about {{topic}}. Link to include: {{link}}.",
		DefaultTemperature:    0.9,
		DefaultTopP:           0.95,
	},
	{
		Key:          "ad_copy",
		Category:     CategoryAds,
		DisplayName:  "Ad Copy Variants",
		Description:  "Paid ad copy variants for A/B testing.",
		Placeholders: []string{"{{product}}", "{{audience}}", "{{offer}}"},
		DefaultSystemInstruction: "You are a performance marketer. Produce distinct angles, not " +
			"rewordings. Respect character limits: 30-char headlines, 90-char descriptions.",
		DefaultPromptTemplate: "Write five ad variants for {{product}} targeting {{audience}} " +
			"with offer {{offer}}. Label each variant's angle.",
		DefaultTemperature: 0.85,
		DefaultTopP:        0.9,
	},
}

var byKey = func() map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Key] = e
	}
	return m
}()

// Lookup returns the catalog entry for a prompt key.
func Lookup(key string) (Entry, bool) {
	e, ok := byKey[key]
	return e, ok
}

// All returns the catalog in declaration order. Callers must not mutate
// entries; the returned slice is a copy.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Keys returns every prompt key in declaration order.
func Keys() []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

// SyntheticConfig builds the version-0 stand-in config the editor shows when
// no row exists in the store yet. It is tagged by Version == 0 and must never
// be written back.
func (e Entry) SyntheticConfig() domainprompt.Config {
	return domainprompt.Config{
		ID:                uuid.Nil,
		OwnerID:           nil,
		PromptKey:         e.Key,
		Category:          string(e.Category),
		SystemInstruction: e.DefaultSystemInstruction,
		PromptTemplate:    e.DefaultPromptTemplate,
		Temperature:       e.DefaultTemperature,
		TopP:              e.DefaultTopP,
		Version:           0,
		IsActive:          true,
		IsDefault:         true,
	}
}

// DefaultDraft returns the entry's defaults as an editable draft, used when
// seeding the system default rows.
func (e Entry) DefaultDraft() domainprompt.Draft {
	return domainprompt.Draft{
		SystemInstruction: e.DefaultSystemInstruction,
		PromptTemplate:    e.DefaultPromptTemplate,
		Temperature:       e.DefaultTemperature,
		TopP:              e.DefaultTopP,
	}
}
