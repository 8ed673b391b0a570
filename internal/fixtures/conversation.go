package fixtures

// ConversationDatasetOptions controls WriteConversationDataset.
type ConversationDatasetOptions struct {
	// Size is the number of well-formed conversations. 0 writes only the
	// samples injected by the Add options.
	Size int

	// AddInvalidLastChatMessage appends a conversation whose last message
	// comes from the system role.
	AddInvalidLastChatMessage bool

	// AddInvalidMessageKeyQuantity appends a conversation with a message
	// carrying an extra key.
	AddInvalidMessageKeyQuantity bool

	// AddInvalidRole appends a conversation containing an unknown role.
	AddInvalidRole bool

	// AddInvalidContentType appends a conversation with null content.
	AddInvalidContentType bool

	// AddNotAlternatingRoles appends a conversation with two consecutive
	// assistant messages.
	AddNotAlternatingRoles bool

	// AsConversations converts every sample from the "messages" format to
	// the legacy "conversations" format (from/value keys, with the user
	// and assistant roles renamed to human and gpt).
	AsConversations bool
}

// conversationRoleMap renames chat roles when converting to the legacy
// "conversations" format. Roles without an entry keep their name.
var conversationRoleMap = map[string]string{
	"user":      "human",
	"assistant": "gpt",
}

func message(role string, content any) map[string]any {
	return map[string]any{"role": role, "content": content}
}

func goodConversation() map[string]any {
	return map[string]any{
		"messages": []map[string]any{
			message("system", "A conversation between a user and a helpful assistant."),
			message("user", "Hi there. What's the capital of the moon?"),
			message("assistant", "This question doesn't make sense."),
		},
	}
}

// WriteConversationDataset writes a tiny multi-turn chat JSONL dataset to
// path and returns the number of samples written.
func (g *Generator) WriteConversationDataset(path string, opts ConversationDatasetOptions) (int, error) {
	samples := make([]map[string]any, 0, opts.Size+5)
	for i := 0; i < opts.Size; i++ {
		samples = append(samples, goodConversation())
	}

	if opts.AddInvalidLastChatMessage {
		samples = append(samples, map[string]any{
			"messages": []map[string]any{
				message("system", "A conversation between a user and a helpful assistant."),
				message("user", "Hi there. What's the capital of the moon?"),
				message("system", "This question doesn't make sense."),
			},
		})
	}
	if opts.AddInvalidMessageKeyQuantity {
		samples = append(samples, map[string]any{
			"messages": []map[string]any{{
				"role":      "system",
				"content":   "A conversation between a user and a helpful assistant.",
				"extra_key": "extra value",
			}},
		})
	}
	if opts.AddInvalidRole {
		samples = append(samples, map[string]any{
			"messages": []map[string]any{
				message("system", "A conversation between a user and a helpful assistant."),
				message("foo", "Hi there. What's the capital of the moon?"),
				message("assistant", "This question doesn't make sense."),
			},
		})
	}
	if opts.AddInvalidContentType {
		samples = append(samples, map[string]any{
			"messages": []map[string]any{
				message("system", "A conversation between a user and a helpful assistant."),
				message("user", "Hi there. What's the capital of the moon?"),
				message("assistant", nil),
			},
		})
	}
	if opts.AddNotAlternatingRoles {
		samples = append(samples, map[string]any{
			"messages": []map[string]any{
				message("system", "A conversation between a user and a helpful assistant."),
				message("assistant", "Hi there. What's the capital of the moon?"),
				message("assistant", "This question doesn't make sense."),
			},
		})
	}

	format := FormatMessages
	out := make([]any, 0, len(samples))
	for _, sample := range samples {
		if opts.AsConversations {
			out = append(out, messagesToConversation(sample))
		} else {
			out = append(out, sample)
		}
	}
	if opts.AsConversations {
		format = FormatConversations
	}

	if err := writeJSONL(path, out); err != nil {
		return 0, err
	}
	g.metrics.RecordFixtureSamples(format, len(out))
	return len(out), nil
}

// WriteConversationDataset writes a tiny chat dataset without metrics.
func WriteConversationDataset(path string, opts ConversationDatasetOptions) (int, error) {
	return NewGenerator(nil).WriteConversationDataset(path, opts)
}

func messagesToConversation(sample map[string]any) map[string]any {
	messages, _ := sample["messages"].([]map[string]any)
	conversations := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		role, _ := msg["role"].(string)
		if renamed, ok := conversationRoleMap[role]; ok {
			role = renamed
		}
		conversations = append(conversations, map[string]any{
			"from":  role,
			"value": msg["content"],
		})
	}
	return map[string]any{"conversations": conversations}
}
