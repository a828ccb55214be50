package agent

import (
	"fmt"
	"time"
)

// BuildSystemPrompt assembles the system message: the agent's configured
// prompt, a runtime block with the current date and time in the gym's
// timezone, and the knowledge section when present. The model has no clock;
// "is there a spin class tomorrow" only works if we tell it what today is.
func BuildSystemPrompt(agentPrompt string, now time.Time, tz *time.Location, knowledgeContext string) string {
	if tz == nil {
		tz = time.UTC
	}
	local := now.In(tz)

	prompt := agentPrompt
	prompt += fmt.Sprintf("\n\n== RUNTIME ==\nDate: %s\nTime: %s\nTimezone: %s\n",
		local.Format("Monday, 2 January 2006"),
		local.Format("15:04"),
		tz.String(),
	)
	if knowledgeContext != "" {
		prompt += "\n" + knowledgeContext
	}
	return prompt
}
