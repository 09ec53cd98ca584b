// Package prompt renders structured chat prompts: a persona preamble keyed
// by response style, a fixed set of few-shot example turns for in-context
// behavior shaping, then the live user turn. Rendering is purely functional;
// output depends only on the inputs and the package constants.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/parleylabs/parley/pkg/chat"
)

// ErrEmptyInput is returned when there is no user text to build a prompt
// from. Callers are expected to short-circuit before invoking a model.
var ErrEmptyInput = errors.New("user input is empty")

// searchPolicy instructs the model when to reach for the search tool. It is
// prepended to the persona on the search-augmented path.
const searchPolicy = `You are an intelligent AI assistant with access to real-time internet search capabilities to provide current and accurate information.

## Your Capabilities
- Your knowledge cutoff is from your training data, which may be outdated
- You have access to internet search tools to retrieve current, real-world information
- You can search the web, fetch webpage content, and synthesize information from multiple sources
- You should ALWAYS use internet search when the query involves:
  * Current events, news, or recent developments
  * Real-time data (stock prices, weather, sports scores, etc.)
  * Information that changes frequently (regulations, company financials, product releases)
  * Factual verification of recent claims
  * Any query explicitly asking for "latest", "current", "recent", or "today's" information
  * Technical documentation or API updates
  * Market data, business metrics, or economic indicators

## Decision Framework
Before answering, ask yourself:
1. Does this query require information newer than my training cutoff?
2. Could the answer have changed since my training data?
3. Is this asking for real-time or frequently-updated information?
4. Would current sources provide more accurate or complete information?

If YES to any question -> Use internet search tools
If NO to all questions -> Use your existing knowledge

## Search Strategy
When using internet search:
- Break complex queries into focused search terms
- Use multiple searches for comprehensive coverage
- Prioritize authoritative and recent sources
- Cross-reference information across multiple sources
- Always cite sources with inline references
- Verify information accuracy before presenting

## Response Format
- Lead with the most relevant, current information
- Cite all sources clearly
- Use clear formatting with headers and structure for complex answers
- Be explicit when information comes from real-time search vs. your training data
- If search fails or returns insufficient results, acknowledge limitations`

// Builder renders prompts for a named chatbot.
type Builder struct {
	chatbotName string
}

// NewBuilder creates a prompt builder for the given chatbot name.
func NewBuilder(chatbotName string) *Builder {
	return &Builder{chatbotName: chatbotName}
}

// persona returns the system preamble for a response style. Unknown styles
// fall back to the standard persona.
func (b *Builder) persona(style chat.ResponseStyle) string {
	switch style.Normalize() {
	case chat.StyleCreative:
		return fmt.Sprintf("You are %s, an imaginative AI assistant. Be creative and think outside the box while responding.", b.chatbotName)
	case chat.StyleFactual:
		return fmt.Sprintf("You are %s, a precise AI assistant. Stick to verified facts only. If unsure, explicitly state that.", b.chatbotName)
	default:
		return fmt.Sprintf("You are %s, a helpful AI assistant.", b.chatbotName)
	}
}

// searchPersona is the persona variant used on the search-augmented path.
// The factual persona swaps its hedging instruction for a directive to
// verify recent information with the search tool.
func (b *Builder) searchPersona(style chat.ResponseStyle) string {
	if style.Normalize() == chat.StyleFactual {
		return fmt.Sprintf("You are %s, a precise AI assistant. Stick to verified facts only. Always use search tools to verify recent information.", b.chatbotName)
	}
	return b.persona(style)
}

type exampleTurn struct {
	human string
	ai    string
}

// exampleTurns returns the three canonical example turns, in order.
func (b *Builder) exampleTurns() []exampleTurn {
	return []exampleTurn{
		{
			human: "Can you introduce yourself?",
			ai:    fmt.Sprintf("Of course! I'm %s, your friendly AI helper. I'm here to answer your questions and assist you.", b.chatbotName),
		},
		{
			human: "What can you do for me?",
			ai:    "I can answer your questions, help you brainstorm ideas, and explain concepts in simple terms.",
		},
		{
			human: "Tell me something fun about AI.",
			ai:    "Sure! Did you know some AIs can generate music or art, almost like human creativity?",
		},
	}
}

// Build renders the prompt for one turn: persona, the example turns, then
// the user input. Empty or whitespace-only input returns ErrEmptyInput.
func (b *Builder) Build(userInput string, style chat.ResponseStyle) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", ErrEmptyInput
	}
	return b.render(b.persona(style), userInput), nil
}

// BuildSearch renders the search-augmented prompt: the search policy and
// persona as the system preamble, then the same example and user turns.
func (b *Builder) BuildSearch(userInput string, style chat.ResponseStyle) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", ErrEmptyInput
	}
	system := searchPolicy + "\n\n" + b.searchPersona(style)
	return b.render(system, userInput), nil
}

// render joins the system preamble, example turns, and user input into
// role-prefixed lines.
func (b *Builder) render(system, userInput string) string {
	var sb strings.Builder
	sb.WriteString("System: ")
	sb.WriteString(system)
	for _, turn := range b.exampleTurns() {
		sb.WriteString("\nHuman: ")
		sb.WriteString(turn.human)
		sb.WriteString("\nAI: ")
		sb.WriteString(turn.ai)
	}
	sb.WriteString("\nHuman: ")
	sb.WriteString(userInput)
	return sb.String()
}
