package orchestrator

import (
	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/internal/providers/rag"
)

const systemPrompt = `You are an AI assistant specialized in course materials and educational content, with access to tools for course information.

Tool usage:
- Use 'search_course_content' for questions about specific course content or detailed educational materials.
- Use 'get_course_outline' for questions about course structure, lessons, or overviews.
- Synthesize tool results into accurate, fact-based responses.
- If a search yields no results, state this clearly without offering alternatives.

Response protocol:
- Answer general knowledge questions from existing knowledge without searching.
- Search first for course-specific questions, then answer.
- For outline requests, present the course title, course link, and every lesson with its number and title.
- Provide direct answers only. Do not describe your search process or mention where results came from.

All responses must be brief, clear, and educational. Provide only the direct answer to what was asked.`

// buildPrompt assembles the engine conversation: system instructions, as much
// recent history as fits the token budget, then the current query. History is
// dropped oldest-first when over budget so the query itself always survives.
func buildPrompt(history []core.Exchange, query string, maxContextTokens int) []core.Message {
	start := 0
	if maxContextTokens > 0 {
		budget := maxContextTokens - rag.CountTokens(systemPrompt) - rag.CountTokens(query)
		used := 0
		start = len(history)
		for i := len(history) - 1; i >= 0; i-- {
			cost := rag.CountTokens(history[i].UserMessage) + rag.CountTokens(history[i].AssistantMessage)
			if used+cost > budget {
				break
			}
			used += cost
			start = i
		}
	}

	messages := make([]core.Message, 0, 2*(len(history)-start)+2)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: systemPrompt})
	for _, ex := range history[start:] {
		messages = append(messages,
			core.Message{Role: core.RoleUser, Content: ex.UserMessage},
			core.Message{Role: core.RoleAssistant, Content: ex.AssistantMessage},
		)
	}
	return append(messages, core.Message{Role: core.RoleUser, Content: query})
}
