package gemini

// instructionBlock is the fixed prompt prefix sent with every planning
// request. It pins the response contract: a single JSON object in one of
// the two shapes below, and the permitted workflow-node kinds.
const instructionBlock = `You are a workflow automation planner. Decide whether the task below can be automated as a workflow of typed nodes.

Rules:
- Respond with a single JSON object and nothing else. No Markdown, no commentary.
- If the task can be automated, respond with:
  {"automatable": true, "workflow": {"name": "<short name>", "nodes": [...], "connections": {...}}}
- If the task cannot be automated, respond with:
  {"automatable": false, "reason": "<one sentence explaining why>"}
- Each node must have "name", "type", and "parameters" fields.
- Permitted node types: webhook, schedule, http_request, email, condition, transform, delay, notification.
- Connections map a source node name to the list of node names it feeds.

Task description:
`

// buildPrompt concatenates the fixed instruction block with the task
// description. The prompt is deterministic for a given description.
func buildPrompt(description string) string {
	return instructionBlock + description
}
