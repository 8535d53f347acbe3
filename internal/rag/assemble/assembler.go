package assemble

import (
	"strings"
	"unicode/utf8"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

const (
	contextHeader      = "\n\nContext:"
	conversationHeader = "\n\nConversation so far:"
	chunkSeparator     = "\n---\n"
)

// Prompt is an assembled generation input plus the manifest of what made it
// in. The manifest is what tests and response bodies report.
type Prompt struct {
	Text               string
	IncludedChunkIds   []string
	IncludedMessageIds []string
}

// Assembler builds a bounded prompt from the preamble, the new query, the
// ranked retrieved chunks and the chat history. Budget is in runes. The
// preamble and query are always emitted, so callers bound incoming queries
// (config.MaxQueryLength) to keep that mandatory reservation inside the
// budget.
type Assembler struct {
	preamble string
	budget   int
}

func New(preamble string, budget int) *Assembler {
	if budget <= 0 {
		budget = config.ContextBudget
	}
	return &Assembler{preamble: preamble, budget: budget}
}

// Assemble reserves room for the preamble and the query, then fills what is
// left with chunks in ranked order and finally with history newest-first.
// Items are whole or absent, a chunk is never cut mid-text. The rendered
// history keeps chronological order even though selection runs backwards.
func (a *Assembler) Assemble(query string, chunks []commonModels.ScoredChunk, history []chatModel.Message) Prompt {
	var sb strings.Builder

	sb.WriteString(a.preamble)
	queryBlock := "\n\nuser: " + query
	used := utf8.RuneCountInString(a.preamble) + utf8.RuneCountInString(queryBlock)

	var chunkBlock strings.Builder
	includedChunkIds := []string{}
	for _, scored := range chunks {
		addition := chunkSeparator + scored.Chunk.Chunk
		if chunkBlock.Len() == 0 {
			addition = contextHeader + "\n" + scored.Chunk.Chunk
		}
		cost := utf8.RuneCountInString(addition)
		if used+cost > a.budget {
			break //everything below this rank is dropped
		}
		chunkBlock.WriteString(addition)
		includedChunkIds = append(includedChunkIds, scored.Chunk.ChunkId)
		used += cost
	}

	//selection walks newest to oldest so the budget drops the oldest first
	headerCost := utf8.RuneCountInString(conversationHeader)
	var kept []chatModel.Message
	for i := len(history) - 1; i >= 0; i-- {
		line := "\n" + string(history[i].Role) + ": " + history[i].Content
		cost := utf8.RuneCountInString(line)
		if len(kept) == 0 {
			cost += headerCost
		}
		if used+cost > a.budget {
			break
		}
		kept = append(kept, history[i])
		used += cost
	}

	includedMessageIds := []string{}
	sb.WriteString(chunkBlock.String())
	if len(kept) > 0 {
		sb.WriteString(conversationHeader)
		for i := len(kept) - 1; i >= 0; i-- {
			sb.WriteString("\n" + string(kept[i].Role) + ": " + kept[i].Content)
			includedMessageIds = append(includedMessageIds, kept[i].Id)
		}
	}
	sb.WriteString(queryBlock)

	return Prompt{
		Text:               sb.String(),
		IncludedChunkIds:   includedChunkIds,
		IncludedMessageIds: includedMessageIds,
	}
}
